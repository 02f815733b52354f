package model

import "time"

// Review mirrors the `reviews` table. ReviewID is issued by the store
// (AUTO_INCREMENT).
type Review struct {
	ID           uint64    // reviews.review_id
	RestaurantID uint64    // reviews.rid
	UserID       uint64    // reviews.uid
	Rating       int       // reviews.rating (1..5)
	Text         string    // reviews.plaintext
	Useful       int       // reviews.useful
	Funny        int       // reviews.funny
	Cool         int       // reviews.cool
	Date         time.Time // reviews.date
}

// Tip mirrors the `tip_writes` table.
type Tip struct {
	ID           uint64    // tip_writes.tid
	RestaurantID uint64    // tip_writes.rid
	UserID       uint64    // tip_writes.uid
	Text         string    // tip_writes.t_text
	Date         time.Time // tip_writes.t_date
}

// VoteTypes lists the review counters a vote may increment.
var VoteTypes = []string{"useful", "funny", "cool"}
