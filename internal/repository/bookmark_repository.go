package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
)

// BookmarkRepo manages the (uid, rid) pairs of the `bookmarks` table.
type BookmarkRepo struct{ db database.Querier }

func NewBookmarkRepo(q database.Querier) *BookmarkRepo { return &BookmarkRepo{db: q} }

// Exists reports whether uid bookmarked rid.
func (r *BookmarkRepo) Exists(ctx context.Context, uid, rid uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM bookmarks WHERE uid = ? AND rid = ? LIMIT 1", uid, rid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Add records a bookmark. A repeated pair yields ErrAlreadyBookmarked.
func (r *BookmarkRepo) Add(ctx context.Context, uid, rid uint64) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO bookmarks (uid, rid) VALUES (?, ?)", uid, rid)
	switch mysqlErrno(err) {
	case 0:
		return err
	case mysqlDuplicateEntry:
		return ErrAlreadyBookmarked
	case mysqlNoReferencedRow:
		return ErrRestaurantNotFound
	default:
		return err
	}
}

// Remove deletes a bookmark.
func (r *BookmarkRepo) Remove(ctx context.Context, uid, rid uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE uid = ? AND rid = ?", uid, rid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// ListByUser returns the restaurants uid bookmarked, ordered by name.
func (r *BookmarkRepo) ListByUser(ctx context.Context, uid uint64) ([]model.RestaurantSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.rid, r.r_name, r.noiselevel, r.wifi, r.stars
		   FROM bookmarks b JOIN restaurants r ON r.rid = b.rid
		  WHERE b.uid = ? ORDER BY r.r_name, r.rid`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}
