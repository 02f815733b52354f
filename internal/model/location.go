package model

import "database/sql"

// OpenLocation links a restaurant to one (address, postal code) pair.
type OpenLocation struct {
	RestaurantID uint64 // open_location.rid
	Address      string // open_location.address
	PostalCode   string // open_location.postal_code
}

// Location mirrors the `location` table, keyed by address and postal code.
type Location struct {
	Address    string
	PostalCode string
	Latitude   sql.NullFloat64
	Longitude  sql.NullFloat64
	City       sql.NullString
	State      sql.NullString
}

// OpenHours is one weekday entry of the `open_hours` table. Open and
// Close are already formatted as HH:MM by the query.
type OpenHours struct {
	Day   string
	Open  string
	Close string
}

// CheckIn is one sparse cell of the weekly check-in histogram.
type CheckIn struct {
	Weekday string // checkin.weekday (Monday..Sunday)
	Hour    int    // hour of day, 0..23
	Count   int    // checkin.counts
}
