package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
)

// FriendRepo manages the directed edges of the `friends` table. An edge
// (a, b) means a follows b; the reverse edge is independent.
type FriendRepo struct{ db database.Querier }

func NewFriendRepo(q database.Querier) *FriendRepo { return &FriendRepo{db: q} }

// Exists reports whether the edge (uidA, uidB) exists.
func (r *FriendRepo) Exists(ctx context.Context, uidA, uidB uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM friends WHERE uid_a = ? AND uid_b = ? LIMIT 1", uidA, uidB).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Add inserts the edge (uidA, uidB).
func (r *FriendRepo) Add(ctx context.Context, uidA, uidB uint64) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO friends (uid_a, uid_b) VALUES (?, ?)", uidA, uidB)
	switch mysqlErrno(err) {
	case 0:
		return err
	case mysqlDuplicateEntry:
		return ErrAlreadyFriends
	case mysqlNoReferencedRow:
		return ErrUserNotFound
	default:
		return err
	}
}

// Remove deletes the edge (uidA, uidB).
func (r *FriendRepo) Remove(ctx context.Context, uidA, uidB uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM friends WHERE uid_a = ? AND uid_b = ?", uidA, uidB)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFriendNotFound
	}
	return nil
}

// List returns the users uid follows, ordered by name.
func (r *FriendRepo) List(ctx context.Context, uid uint64) ([]model.Friend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.uid, u.u_name FROM friends f JOIN users u ON u.uid = f.uid_b
		  WHERE f.uid_a = ? ORDER BY u.u_name, u.uid`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Friend{}
	for rows.Next() {
		var f model.Friend
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
