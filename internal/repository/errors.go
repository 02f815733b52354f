// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// between failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrRestaurantNotFound is returned when a rid does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrUserNotFound is returned when a uid or account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrReviewNotFound is returned when a review_id does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrAccountExists is returned when registering a taken account name.
	ErrAccountExists = errors.New("account already exists")
	// ErrAlreadyBookmarked is returned when the bookmark pair exists.
	ErrAlreadyBookmarked = errors.New("already bookmarked")
	// ErrBookmarkNotFound is returned when deleting a missing bookmark.
	ErrBookmarkNotFound = errors.New("bookmark not found")
	// ErrAlreadyFriends is returned when the friendship edge exists.
	ErrAlreadyFriends = errors.New("already friends")
	// ErrFriendNotFound is returned when deleting a missing edge.
	ErrFriendNotFound = errors.New("friend not found")
	// ErrInvalidVote is returned for vote types outside model.VoteTypes.
	ErrInvalidVote = errors.New("invalid vote type")
)

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

// mysqlErrno returns the server error number of err, or 0 when err is
// not a MySQL server error.
func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
