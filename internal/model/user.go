package model

import "time"

// User represents an application user record as stored in the
// `users` table. Handlers define their own response types so the
// password hash never leaves the repository layer.
//
// Fields:
//
//	ID           – primary key identifier (uid), issued by the store.
//	Name         – display name shown next to reviews and tips.
//	Account      – unique login name.
//	PasswordHash – bcrypt hashed password.
//	Since        – registration date.
type User struct {
	ID           uint64    // users.uid
	Name         string    // users.u_name
	Account      string    // users.account
	PasswordHash string    // users.password_hash
	Since        time.Time // users.since
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.uid
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
}

// Bookmark is a (user, restaurant) membership pair.
type Bookmark struct {
	UserID       uint64 // bookmarks.uid
	RestaurantID uint64 // bookmarks.rid
}

// Friendship is a directed edge from UserA to UserB.
type Friendship struct {
	UserA uint64 // friends.uid_a
	UserB uint64 // friends.uid_b
}

// Friend is the projection rendered in the friend list.
type Friend struct {
	ID   uint64 `json:"uid"`
	Name string `json:"u_name"`
}

// Session is the request-scoped identity derived from the access token.
// A zero Session is a guest.
type Session struct {
	LoggedIn bool   `json:"logged_in"`
	UID      uint64 `json:"uid"`
	UName    string `json:"u_name"`
	Account  string `json:"account"`
}

// DisplayName returns the user name for logged-in sessions and "guest"
// otherwise.
func (s Session) DisplayName() string {
	if !s.LoggedIn || s.UName == "" {
		return "guest"
	}
	return s.UName
}
