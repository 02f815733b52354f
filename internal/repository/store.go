package repository

import (
	"context"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
)

// Store bundles the repositories of one request connection.
type Store struct {
	Restaurants *RestaurantRepo
	Reviews     *ReviewRepo
	Tips        *TipRepo
	Bookmarks   *BookmarkRepo
	Friends     *FriendRepo
	Users       *UserRepo
	Tokens      *TokenRepo
}

// NewStore builds every repository on q.
func NewStore(q database.Querier) *Store {
	return &Store{
		Restaurants: NewRestaurantRepo(q),
		Reviews:     NewReviewRepo(q),
		Tips:        NewTipRepo(q),
		Bookmarks:   NewBookmarkRepo(q),
		Friends:     NewFriendRepo(q),
		Users:       NewUserRepo(q),
		Tokens:      NewTokenRepo(q),
	}
}

// DetailSource adapts a Store to the read interface of the detail
// aggregator.
type DetailSource struct{ st *Store }

// Detail returns the aggregator view of s.
func (s *Store) Detail() DetailSource { return DetailSource{st: s} }

func (s DetailSource) Restaurant(ctx context.Context, rid uint64) (*model.Restaurant, error) {
	return s.st.Restaurants.Restaurant(ctx, rid)
}

func (s DetailSource) Categories(ctx context.Context, rid uint64) ([]string, error) {
	return s.st.Restaurants.Categories(ctx, rid)
}

func (s DetailSource) Photos(ctx context.Context, rid uint64) ([]model.Photo, error) {
	return s.st.Restaurants.Photos(ctx, rid)
}

func (s DetailSource) OpenLocation(ctx context.Context, rid uint64) (*model.OpenLocation, error) {
	return s.st.Restaurants.OpenLocation(ctx, rid)
}

func (s DetailSource) Location(ctx context.Context, address, postalCode string) (*model.Location, error) {
	return s.st.Restaurants.Location(ctx, address, postalCode)
}

func (s DetailSource) OpenHours(ctx context.Context, rid uint64) ([]model.OpenHours, error) {
	return s.st.Restaurants.OpenHours(ctx, rid)
}

func (s DetailSource) CheckIns(ctx context.Context, rid uint64) ([]model.CheckIn, error) {
	return s.st.Restaurants.CheckIns(ctx, rid)
}

func (s DetailSource) IsBookmarked(ctx context.Context, uid, rid uint64) (bool, error) {
	return s.st.Bookmarks.Exists(ctx, uid, rid)
}

func (s DetailSource) Tips(ctx context.Context, rid uint64) ([]model.Tip, error) {
	return s.st.Tips.ListByRestaurant(ctx, rid)
}

func (s DetailSource) Reviews(ctx context.Context, rid uint64) ([]model.Review, error) {
	return s.st.Reviews.ListByRestaurant(ctx, rid)
}

func (s DetailSource) UserName(ctx context.Context, uid uint64) (string, error) {
	return s.st.Users.Name(ctx, uid)
}

func (s DetailSource) IsFriend(ctx context.Context, uidA, uidB uint64) (bool, error) {
	return s.st.Friends.Exists(ctx, uidA, uidB)
}
