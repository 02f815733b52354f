package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/search"
)

// RestaurantRepo reads restaurants and their related tables.
type RestaurantRepo struct {
	db database.Querier
}

// NewRestaurantRepo constructs a RestaurantRepo on q.
func NewRestaurantRepo(q database.Querier) *RestaurantRepo {
	return &RestaurantRepo{db: q}
}

const summaryColumns = "rid, r_name, noiselevel, wifi, stars"

// scanSummaries reads rows of (rid, r_name, noiselevel, wifi, stars).
func scanSummaries(rows *sql.Rows) ([]model.RestaurantSummary, error) {
	out := []model.RestaurantSummary{}
	for rows.Next() {
		var (
			s     model.RestaurantSummary
			noise sql.NullString
			wifi  sql.NullString
			stars sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &noise, &wifi, &stars); err != nil {
			return nil, err
		}
		if noise.Valid {
			s.NoiseLevel = &noise.String
		}
		if wifi.Valid {
			s.WiFi = &wifi.String
		}
		if stars.Valid {
			s.Stars = &stars.Float64
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIndex returns the first limit restaurants ordered by id.
func (r *RestaurantRepo) ListIndex(ctx context.Context, limit int) ([]model.RestaurantSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+summaryColumns+" FROM restaurants ORDER BY rid LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Search runs a built search query and returns one page of results
// together with the total number of matches.
func (r *RestaurantRepo) Search(ctx context.Context, q search.Query, page, pageSize int) ([]model.RestaurantSummary, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, q.CountSQL(), q.Args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	stmt, args := q.PageSQL(page, pageSize)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// restaurantColumns lists the detail columns in scan order; the
// multi-select groups follow the fixed attributes.
func restaurantColumns() string {
	cols := []string{"rid", "r_name", "noiselevel", "wifi", "alcohol", "stars", "smoking",
		"dogsallowed", "hastv", "accepts_credit_cards", "goodforkids"}
	for _, m := range model.MealTypes {
		cols = append(cols, "meal_"+m)
	}
	for _, a := range model.AmbienceTypes {
		cols = append(cols, "amb_"+a)
	}
	return strings.Join(cols, ", ")
}

// Restaurant fetches one restaurant. It returns nil, nil when rid does
// not exist.
func (r *RestaurantRepo) Restaurant(ctx context.Context, rid uint64) (*model.Restaurant, error) {
	var (
		m        model.Restaurant
		meals    = make([]sql.NullBool, len(model.MealTypes))
		ambience = make([]sql.NullBool, len(model.AmbienceTypes))
	)
	dest := []any{&m.ID, &m.Name, &m.NoiseLevel, &m.WiFi, &m.Alcohol, &m.Stars, &m.Smoking,
		&m.DogsAllowed, &m.HasTV, &m.AcceptsCreditCards, &m.GoodForKids}
	for i := range meals {
		dest = append(dest, &meals[i])
	}
	for i := range ambience {
		dest = append(dest, &ambience[i])
	}

	err := r.db.QueryRowContext(ctx,
		"SELECT "+restaurantColumns()+" FROM restaurants WHERE rid = ?", rid).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m.Meals = make(map[string]sql.NullBool, len(meals))
	for i, name := range model.MealTypes {
		m.Meals[name] = meals[i]
	}
	m.Ambience = make(map[string]sql.NullBool, len(ambience))
	for i, name := range model.AmbienceTypes {
		m.Ambience[name] = ambience[i]
	}
	return &m, nil
}

// Exists reports whether rid names a restaurant.
func (r *RestaurantRepo) Exists(ctx context.Context, rid uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM restaurants WHERE rid = ? LIMIT 1", rid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Categories returns the style strings of rid.
func (r *RestaurantRepo) Categories(ctx context.Context, rid uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT style FROM categories WHERE rid = ? ORDER BY style", rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Photos returns the photos of rid.
func (r *RestaurantRepo) Photos(ctx context.Context, rid uint64) ([]model.Photo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT pid, caption, label FROM has_photo WHERE rid = ? ORDER BY pid", rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.Caption, &p.Label); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// OpenLocation returns the address pair of rid, or nil when none is
// recorded.
func (r *RestaurantRepo) OpenLocation(ctx context.Context, rid uint64) (*model.OpenLocation, error) {
	ol := model.OpenLocation{RestaurantID: rid}
	err := r.db.QueryRowContext(ctx,
		"SELECT address, postal_code FROM open_location WHERE rid = ? LIMIT 1", rid).
		Scan(&ol.Address, &ol.PostalCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ol, nil
}

// Location resolves an address pair, or nil when it is unknown.
func (r *RestaurantRepo) Location(ctx context.Context, address, postalCode string) (*model.Location, error) {
	l := model.Location{Address: address, PostalCode: postalCode}
	err := r.db.QueryRowContext(ctx,
		"SELECT latitude, longitude, city, state FROM location WHERE address = ? AND postal_code = ? LIMIT 1",
		address, postalCode).Scan(&l.Latitude, &l.Longitude, &l.City, &l.State)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// OpenHours returns the recorded weekdays of rid with HH:MM times.
func (r *RestaurantRepo) OpenHours(ctx context.Context, rid uint64) ([]model.OpenHours, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT day, TIME_FORMAT(open, '%H:%i'), TIME_FORMAT(close, '%H:%i') FROM open_hours WHERE rid = ?", rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OpenHours
	for rows.Next() {
		var (
			h           model.OpenHours
			open, close sql.NullString
		)
		if err := rows.Scan(&h.Day, &open, &close); err != nil {
			return nil, err
		}
		h.Open, h.Close = open.String, close.String
		out = append(out, h)
	}
	return out, rows.Err()
}

// CheckIns returns the sparse check-in counts of rid.
func (r *RestaurantRepo) CheckIns(ctx context.Context, rid uint64) ([]model.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT weekday, HOUR(hour), counts FROM checkin WHERE rid = ?", rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CheckIn
	for rows.Next() {
		var c model.CheckIn
		if err := rows.Scan(&c.Weekday, &c.Hour, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
