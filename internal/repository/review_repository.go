package repository

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
)

// ReviewRepo reads and writes the `reviews` table.
type ReviewRepo struct{ db database.Querier }

func NewReviewRepo(q database.Querier) *ReviewRepo { return &ReviewRepo{db: q} }

// voteStatements maps each vote type to its counter update. The column
// never comes from request input.
var voteStatements = map[string]string{
	"useful": "UPDATE reviews SET useful = useful + 1 WHERE review_id = ?",
	"funny":  "UPDATE reviews SET funny = funny + 1 WHERE review_id = ?",
	"cool":   "UPDATE reviews SET cool = cool + 1 WHERE review_id = ?",
}

// ListByRestaurant returns the reviews of rid, newest first.
func (r *ReviewRepo) ListByRestaurant(ctx context.Context, rid uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT review_id, rid, uid, rating, plaintext, useful, funny, cool, date
		   FROM reviews WHERE rid = ? ORDER BY date DESC, review_id DESC`, rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var v model.Review
		if err := rows.Scan(&v.ID, &v.RestaurantID, &v.UserID, &v.Rating, &v.Text,
			&v.Useful, &v.Funny, &v.Cool, &v.Date); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a review dated today with zeroed counters and returns
// its id.
func (r *ReviewRepo) Create(ctx context.Context, rid, uid uint64, rating int, text string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (rid, uid, rating, plaintext, useful, funny, cool, date) VALUES (?,?,?,?,0,0,0,?)",
		rid, uid, rating, text, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		if mysqlErrno(err) == mysqlNoReferencedRow {
			return 0, ErrRestaurantNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Vote increments one counter of a review.
func (r *ReviewRepo) Vote(ctx context.Context, reviewID uint64, voteType string) error {
	stmt, ok := voteStatements[voteType]
	if !ok {
		return ErrInvalidVote
	}
	res, err := r.db.ExecContext(ctx, stmt, reviewID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
