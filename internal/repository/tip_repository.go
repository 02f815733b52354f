package repository

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
)

// TipRepo reads and writes the `tip_writes` table.
type TipRepo struct{ db database.Querier }

func NewTipRepo(q database.Querier) *TipRepo { return &TipRepo{db: q} }

// ListByRestaurant returns the tips of rid, newest first.
func (r *TipRepo) ListByRestaurant(ctx context.Context, rid uint64) ([]model.Tip, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT tid, rid, uid, t_text, t_date FROM tip_writes WHERE rid = ? ORDER BY t_date DESC, tid DESC", rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tip
	for rows.Next() {
		var t model.Tip
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.UserID, &t.Text, &t.Date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a tip dated today and returns its id.
func (r *TipRepo) Create(ctx context.Context, rid, uid uint64, text string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tip_writes (rid, uid, t_text, t_date) VALUES (?,?,?,?)",
		rid, uid, text, time.Now().UTC().Format("2006-01-02"))
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
