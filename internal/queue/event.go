// Package queue defines the activity events exchanged over the message
// broker and the consumer that records them.
package queue

// ActivityQueue is the durable queue member activity is published to.
const ActivityQueue = "restaurant.activity"

// Activity kinds.
const (
	KindUserRegistered  = "user.registered"
	KindReviewCreated   = "review.created"
	KindReviewVoted     = "review.voted"
	KindTipCreated      = "tip.created"
	KindBookmarkAdded   = "bookmark.added"
	KindBookmarkRemoved = "bookmark.removed"
	KindFriendAdded     = "friend.added"
	KindFriendRemoved   = "friend.removed"
)

// ActivityEvent is published after a member write succeeds. It carries
// enough for downstream consumers to log or feed analytics without
// querying the primary database.
type ActivityEvent struct {
	Kind       string `json:"kind"`
	UserID     uint64 `json:"uid"`
	UserName   string `json:"u_name,omitempty"`
	Restaurant uint64 `json:"rid,omitempty"`
	TargetID   uint64 `json:"target_id,omitempty"` // review_id, tid or friend uid
	Detail     string `json:"detail,omitempty"`    // vote type, rating
	At         string `json:"at"`                  // RFC 3339, UTC
}
