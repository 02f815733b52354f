// Package search translates the sparse filter form of the restaurant
// search page into a single parameterized SQL statement. The builder is
// pure: it never touches the database, so the same Query can be counted,
// paged and inspected in tests.
package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/restaurant-review/internal/model"
)

// NotSpecified is the value the search form submits for "any".
const NotSpecified = "Not Specified"

// Filter keys understood by Build. Any other key is ignored.
const (
	KeyName       = "r_name"
	KeyNoiseLevel = "noiselevel"
	KeyStars      = "stars"
	KeyWiFi       = "wifi"
	KeyMeal       = "meal"
	KeyAmbience   = "ambience"
	KeyCategory   = "style"
	KeyCity       = "city"
	KeyState      = "state"
)

// ErrInvalidFilter is returned when a filter value cannot be used, such
// as a non-numeric star rating.
var ErrInvalidFilter = errors.New("invalid filter")

// Mode selects equality or substring matching for text filters.
type Mode int

const (
	// Exact compares every filter with equality.
	Exact Mode = iota
	// Fuzzy turns the name, city and state filters into LIKE patterns.
	Fuzzy
)

// Join describes which optional tables a query reads besides restaurants.
type Join int

const (
	// JoinNone reads restaurants alone.
	JoinNone Join = iota
	// JoinLocation adds open_location and location for city and state.
	JoinLocation
	// JoinCategory adds categories for the style filter.
	JoinCategory
	// JoinCategoryLocation adds both.
	JoinCategoryLocation
)

func (j Join) String() string {
	switch j {
	case JoinLocation:
		return "location"
	case JoinCategory:
		return "category"
	case JoinCategoryLocation:
		return "category+location"
	default:
		return "none"
	}
}

// Filters is the raw form input: key to submitted values. url.Values
// converts directly.
type Filters map[string][]string

// first returns the first non-blank value for key, trimmed.
func (f Filters) first(key string) string {
	for _, v := range f[key] {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// specified reports whether key carries a usable scalar value.
func (f Filters) specified(key string) bool {
	v := f.first(key)
	return v != "" && v != NotSpecified
}

// Predicate is one conjunct of the WHERE clause. Arg is bound, never
// spliced into the statement.
type Predicate struct {
	Column string
	Op     string
	Arg    any
}

func (p Predicate) sql() string {
	return p.Column + " " + p.Op + " ?"
}

// Query is the output of Build.
type Query struct {
	Join       Join
	Predicates []Predicate
	// SQL selects the summary columns for every matching restaurant.
	SQL  string
	Args []any
}

const selectColumns = "r.rid, r.r_name, r.noiselevel, r.wifi, r.stars"

// fromClause returns the table expression for a join kind.
func fromClause(j Join) string {
	const (
		base     = "restaurants r"
		category = " JOIN categories c ON c.rid = r.rid"
		location = " JOIN open_location ol ON ol.rid = r.rid" +
			" JOIN location l ON l.address = ol.address AND l.postal_code = ol.postal_code"
	)
	switch j {
	case JoinLocation:
		return base + location
	case JoinCategory:
		return base + category
	case JoinCategoryLocation:
		return base + category + location
	default:
		return base
	}
}

// whereClause renders the predicates, including the leading WHERE, or
// an empty string when there are none.
func whereClause(preds []Predicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.sql()
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

// CountSQL counts the matching restaurants.
func (q Query) CountSQL() string {
	return "SELECT COUNT(DISTINCT r.rid) FROM " + fromClause(q.Join) + whereClause(q.Predicates)
}

// PageSQL returns the select statement ordered by name and limited to
// one page, together with its bound arguments.
func (q Query) PageSQL(page, pageSize int) (string, []any) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	stmt := q.SQL + " ORDER BY r.r_name ASC, r.rid ASC LIMIT ? OFFSET ?"
	args := append(append([]any{}, q.Args...), pageSize, (page-1)*pageSize)
	return stmt, args
}

// Build assembles the search statement for f. Scalar filters that are
// empty or NotSpecified produce no predicate. A multi-select group
// whose key is present produces one boolean predicate per group member,
// true for selected members and false for the rest.
func Build(f Filters, mode Mode) (Query, error) {
	var q Query

	hasCategory := f.specified(KeyCategory)
	hasLocation := f.specified(KeyCity) || f.specified(KeyState)
	switch {
	case hasCategory && hasLocation:
		q.Join = JoinCategoryLocation
	case hasCategory:
		q.Join = JoinCategory
	case hasLocation:
		q.Join = JoinLocation
	}

	text := func(key, column string, fuzzy bool) {
		if !f.specified(key) {
			return
		}
		v := f.first(key)
		if fuzzy {
			q.Predicates = append(q.Predicates, Predicate{Column: column, Op: "LIKE", Arg: "%" + escapeLike(v) + "%"})
			return
		}
		q.Predicates = append(q.Predicates, Predicate{Column: column, Op: "=", Arg: v})
	}

	text(KeyName, "r.r_name", mode == Fuzzy)
	text(KeyNoiseLevel, "r.noiselevel", false)
	if f.specified(KeyStars) {
		raw := f.first(KeyStars)
		stars, err := strconv.ParseFloat(raw, 64)
		if err != nil || stars < 0 || stars > 5 {
			return Query{}, fmt.Errorf("%w: stars must be a number between 0 and 5, got %q", ErrInvalidFilter, raw)
		}
		q.Predicates = append(q.Predicates, Predicate{Column: "r.stars", Op: "=", Arg: stars})
	}
	text(KeyWiFi, "r.wifi", false)
	text(KeyCategory, "c.style", false)
	text(KeyCity, "l.city", mode == Fuzzy)
	text(KeyState, "l.state", mode == Fuzzy)

	group := func(key, prefix string, members []string) {
		if _, present := f[key]; !present {
			return
		}
		selected := make(map[string]bool, len(f[key]))
		for _, v := range f[key] {
			selected[strings.ToLower(strings.TrimSpace(v))] = true
		}
		for _, m := range members {
			q.Predicates = append(q.Predicates, Predicate{Column: "r." + prefix + m, Op: "=", Arg: selected[m]})
		}
	}
	group(KeyMeal, "meal_", model.MealTypes)
	group(KeyAmbience, "amb_", model.AmbienceTypes)

	q.Args = make([]any, len(q.Predicates))
	for i, p := range q.Predicates {
		q.Args[i] = p.Arg
	}
	q.SQL = "SELECT DISTINCT " + selectColumns + " FROM " + fromClause(q.Join) + whereClause(q.Predicates)
	return q, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally inside the surrounding wildcards. Backslash is MySQL's
// default LIKE escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
