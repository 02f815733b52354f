package model

import "database/sql"

// Restaurant represents a row of the `restaurants` table. Attribute
// columns come from crowd-sourced data and any of them may be NULL, so
// they are kept as sql.Null* values here; the detail view normalizes
// them before anything is rendered.
//
// Fields:
//
//	ID         – primary key identifier (rid).
//	Name       – display name (r_name).
//	NoiseLevel – quiet, average, loud or very_loud.
//	WiFi       – free, paid or no.
//	Alcohol    – none, beer_and_wine or full_bar.
//	Stars      – average star rating, 1.0 to 5.0 in half steps.
//	Meals      – good-for-meal flags keyed by meal name.
//	Ambience   – ambience flags keyed by ambience name.
type Restaurant struct {
	ID                 uint64                  // restaurants.rid
	Name               string                  // restaurants.r_name
	NoiseLevel         sql.NullString          // restaurants.noiselevel
	WiFi               sql.NullString          // restaurants.wifi
	Alcohol            sql.NullString          // restaurants.alcohol
	Stars              sql.NullFloat64         // restaurants.stars
	Smoking            sql.NullString          // restaurants.smoking
	DogsAllowed        sql.NullBool            // restaurants.dogsallowed
	HasTV              sql.NullBool            // restaurants.hastv
	AcceptsCreditCards sql.NullBool            // restaurants.accepts_credit_cards
	GoodForKids        sql.NullBool            // restaurants.goodforkids
	Meals              map[string]sql.NullBool // restaurants.meal_* keyed by meal name
	Ambience           map[string]sql.NullBool // restaurants.amb_* keyed by ambience name
}

// MealTypes and AmbienceTypes enumerate the multi-select attribute
// groups in column order. Column names are the member prefixed with
// "meal_" and "amb_" respectively.
var (
	MealTypes     = []string{"breakfast", "brunch", "lunch", "dinner", "dessert", "latenight"}
	AmbienceTypes = []string{"romantic", "intimate", "classy", "hipster", "divey", "touristy", "trendy", "upscale", "casual"}
)

// RestaurantSummary is the compact projection used by list views
// (index, search results, bookmarks).
type RestaurantSummary struct {
	ID         uint64   `json:"rid"`
	Name       string   `json:"r_name"`
	NoiseLevel *string  `json:"noiselevel"`
	WiFi       *string  `json:"wifi"`
	Stars      *float64 `json:"stars"`
}

// Category links a restaurant to one style string (`categories` table).
type Category struct {
	RestaurantID uint64 // categories.rid
	Style        string // categories.style
}

// Photo mirrors the `has_photo` table. The image itself is served as a
// static file named after the photo id.
type Photo struct {
	ID      string         // has_photo.pid
	Caption sql.NullString // has_photo.caption
	Label   sql.NullString // has_photo.label
}
