package detail

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-review/internal/model"
)

// fakeSource serves fixed rows and fails the sections listed in fail.
type fakeSource struct {
	restaurant *model.Restaurant
	categories []string
	photos     []model.Photo
	openLoc    *model.OpenLocation
	location   *model.Location
	hours      []model.OpenHours
	checkins   []model.CheckIn
	bookmarks  map[uint64]bool
	tips       []model.Tip
	reviews    []model.Review
	users      map[uint64]string
	friends    map[[2]uint64]bool
	fail       map[string]bool

	bookmarkCalls int
	friendCalls   int
}

var errBoom = errors.New("boom")

func (f *fakeSource) err(section string) error {
	if f.fail[section] {
		return errBoom
	}
	return nil
}

func (f *fakeSource) Restaurant(_ context.Context, _ uint64) (*model.Restaurant, error) {
	if err := f.err("restaurant"); err != nil {
		return nil, err
	}
	return f.restaurant, nil
}

func (f *fakeSource) Categories(_ context.Context, _ uint64) ([]string, error) {
	return f.categories, f.err("categories")
}

func (f *fakeSource) Photos(_ context.Context, _ uint64) ([]model.Photo, error) {
	return f.photos, f.err("photos")
}

func (f *fakeSource) OpenLocation(_ context.Context, _ uint64) (*model.OpenLocation, error) {
	if err := f.err("open_location"); err != nil {
		return nil, err
	}
	return f.openLoc, nil
}

func (f *fakeSource) Location(_ context.Context, _, _ string) (*model.Location, error) {
	if err := f.err("location"); err != nil {
		return nil, err
	}
	return f.location, nil
}

func (f *fakeSource) OpenHours(_ context.Context, _ uint64) ([]model.OpenHours, error) {
	if err := f.err("open_hours"); err != nil {
		return nil, err
	}
	return f.hours, nil
}

func (f *fakeSource) CheckIns(_ context.Context, _ uint64) ([]model.CheckIn, error) {
	if err := f.err("checkin"); err != nil {
		return nil, err
	}
	return f.checkins, nil
}

func (f *fakeSource) IsBookmarked(_ context.Context, uid, _ uint64) (bool, error) {
	f.bookmarkCalls++
	return f.bookmarks[uid], f.err("bookmark")
}

func (f *fakeSource) Tips(_ context.Context, _ uint64) ([]model.Tip, error) {
	if err := f.err("tips"); err != nil {
		return nil, err
	}
	return append([]model.Tip(nil), f.tips...), nil
}

func (f *fakeSource) Reviews(_ context.Context, _ uint64) ([]model.Review, error) {
	if err := f.err("reviews"); err != nil {
		return nil, err
	}
	return append([]model.Review(nil), f.reviews...), nil
}

func (f *fakeSource) UserName(_ context.Context, uid uint64) (string, error) {
	return f.users[uid], f.err("users")
}

func (f *fakeSource) IsFriend(_ context.Context, a, b uint64) (bool, error) {
	f.friendCalls++
	return f.friends[[2]uint64{a, b}], f.err("friends")
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newFixture() *fakeSource {
	return &fakeSource{
		restaurant: &model.Restaurant{
			ID:         7,
			Name:       "Pho Kim Long",
			NoiseLevel: sql.NullString{String: "average", Valid: true},
			Stars:      sql.NullFloat64{Float64: 4.5, Valid: true},
			HasTV:      sql.NullBool{Bool: true, Valid: true},
			Meals:      map[string]sql.NullBool{"lunch": {Bool: true, Valid: true}},
		},
		categories: []string{"Vietnamese", "Soup"},
		photos:     []model.Photo{{ID: "abc", Caption: sql.NullString{String: "bowl", Valid: true}}},
		openLoc:    &model.OpenLocation{RestaurantID: 7, Address: "3429 S Jones Blvd", PostalCode: "89146"},
		location: &model.Location{
			Latitude: sql.NullFloat64{Float64: 36.1, Valid: true},
			City:     sql.NullString{String: "Las Vegas", Valid: true},
		},
		hours: []model.OpenHours{
			{Day: "Monday", Open: "10:00", Close: "22:00"},
			{Day: "saturday", Open: "09:00", Close: "23:30"},
		},
		checkins:  []model.CheckIn{{Weekday: "Monday", Hour: 9, Count: 5}},
		bookmarks: map[uint64]bool{1: true},
		tips: []model.Tip{
			{ID: 1, UserID: 2, Text: "get the brisket", Date: day("2017-01-02")},
			{ID: 2, UserID: 3, Text: "cash only", Date: day("2018-05-06")},
		},
		reviews: []model.Review{
			{ID: 10, UserID: 3, Rating: 4, Text: "solid", Date: day("2016-03-04")},
			{ID: 11, UserID: 2, Rating: 5, Text: "best pho", Date: day("2019-07-08")},
			{ID: 12, UserID: 4, Rating: 2, Text: "slow", Date: day("2019-07-08")},
		},
		users:   map[uint64]string{2: "Ann", 3: "Bo"},
		friends: map[[2]uint64]bool{{1, 2}: true},
	}
}

func member() model.Session {
	return model.Session{LoggedIn: true, UID: 1, UName: "me", Account: "me@example.com"}
}

func TestAggregate_CheckInGridIsDense(t *testing.T) {
	src := newFixture()
	res, err := New(src).Aggregate(context.Background(), 7, model.Session{})
	require.NoError(t, err)

	grid := res.Restaurant.CheckIn
	require.Len(t, grid, HoursPerDay)
	cells, nonZero := 0, 0
	for h, row := range grid {
		assert.Equal(t, hourLabel(h), row.Hour)
		for _, c := range row.Counts {
			cells++
			if c != 0 {
				nonZero++
			}
		}
	}
	assert.Equal(t, 168, cells)
	assert.Equal(t, 1, nonZero)
	assert.Equal(t, "09", grid[9].Hour)
	assert.Equal(t, 5, grid[9].Counts[0])
}

func TestAggregate_CheckInOutOfRangeRowsDropped(t *testing.T) {
	src := newFixture()
	src.checkins = []model.CheckIn{
		{Weekday: "Funday", Hour: 3, Count: 9},
		{Weekday: "Sunday", Hour: 24, Count: 9},
		{Weekday: "sunday", Hour: 23, Count: 2},
	}
	res, err := New(src).Aggregate(context.Background(), 7, model.Session{})
	require.NoError(t, err)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 0, 2}, res.Restaurant.CheckIn[23].Counts)
	assert.Equal(t, [7]int{}, res.Restaurant.CheckIn[3].Counts)
}

func TestAggregate_OpenHoursHasSevenWeekdays(t *testing.T) {
	src := newFixture()
	res, err := New(src).Aggregate(context.Background(), 7, model.Session{})
	require.NoError(t, err)

	hours := res.Restaurant.OpenHours
	require.Len(t, hours, 7)
	for i, h := range hours {
		assert.Equal(t, Weekdays[i], h.Day)
	}
	assert.Equal(t, Hours{Day: "Monday", Open: "10:00", Close: "22:00"}, hours[0])
	assert.Equal(t, Hours{Day: "Tuesday", Open: Unknown, Close: Unknown}, hours[1])
	assert.Equal(t, Hours{Day: "Saturday", Open: "09:00", Close: "23:30"}, hours[5])
}

func TestAggregate_NormalizesNulls(t *testing.T) {
	src := newFixture()
	src.categories = nil
	res, err := New(src).Aggregate(context.Background(), 7, model.Session{})
	require.NoError(t, err)

	v := res.Restaurant
	assert.Equal(t, "Pho Kim Long", v.Name)
	assert.Equal(t, "average", v.NoiseLevel)
	assert.Equal(t, "4.5", v.Stars)
	assert.Equal(t, "true", v.HasTV)
	assert.Equal(t, Unknown, v.WiFi)
	assert.Equal(t, Unknown, v.GoodForKids)
	assert.Equal(t, Unknown, v.Longitude)
	assert.Equal(t, Unknown, v.State)
	assert.Equal(t, "36.1", v.Latitude)
	assert.Equal(t, "Las Vegas", v.City)
	assert.Equal(t, "3429 S Jones Blvd", v.Address)
	assert.Equal(t, []string{None}, v.Categories)
	assert.Equal(t, []Photo{{ID: "abc", Caption: "bowl", Label: Unknown, Path: "/static/photos/abc.jpg"}}, v.Photos)
	assert.Equal(t, Flag{Name: "lunch", Value: "true"}, v.Meals[2])
	assert.Equal(t, Flag{Name: "breakfast", Value: Unknown}, v.Meals[0])
	assert.Len(t, v.Ambience, len(model.AmbienceTypes))
	assert.Empty(t, res.Warnings)
}

func TestAggregate_GuestSession(t *testing.T) {
	src := newFixture()
	res, err := New(src).Aggregate(context.Background(), 7, model.Session{})
	require.NoError(t, err)

	assert.False(t, res.Restaurant.IsBookmark)
	assert.Zero(t, src.bookmarkCalls)
	assert.Zero(t, src.friendCalls)
	for _, tip := range res.Tips {
		assert.Nil(t, tip.IsFriend)
	}
	for _, r := range res.Reviews {
		assert.Nil(t, r.IsFriend)
	}
}

func TestAggregate_MemberSession(t *testing.T) {
	src := newFixture()
	res, err := New(src).Aggregate(context.Background(), 7, member())
	require.NoError(t, err)

	assert.True(t, res.Restaurant.IsBookmark)

	require.Len(t, res.Tips, 2)
	assert.Equal(t, uint64(2), res.Tips[0].ID, "newest tip first")
	assert.Equal(t, "Bo", res.Tips[0].UName)
	require.NotNil(t, res.Tips[0].IsFriend)
	assert.False(t, *res.Tips[0].IsFriend)
	require.NotNil(t, res.Tips[1].IsFriend)
	assert.True(t, *res.Tips[1].IsFriend)

	require.Len(t, res.Reviews, 3)
	assert.Equal(t, []uint64{12, 11, 10}, []uint64{res.Reviews[0].ID, res.Reviews[1].ID, res.Reviews[2].ID})
	assert.Equal(t, "2019-07-08", res.Reviews[0].Date)
	assert.Equal(t, Unknown, res.Reviews[0].UName, "author without a user row")
	assert.True(t, *res.Reviews[1].IsFriend)
}

func TestAggregate_NotFound(t *testing.T) {
	src := newFixture()
	src.restaurant = nil
	_, err := New(src).Aggregate(context.Background(), 99, model.Session{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAggregate_SectionFailuresAreIsolated(t *testing.T) {
	sections := []string{"restaurant", "categories", "photos", "open_location", "location", "open_hours", "checkin", "bookmark", "tips", "reviews"}

	for _, section := range sections {
		t.Run(section, func(t *testing.T) {
			src := newFixture()
			src.fail = map[string]bool{section: true}
			res, err := New(src).Aggregate(context.Background(), 7, member())
			require.NoError(t, err)

			require.Len(t, res.Warnings, 1)
			assert.Equal(t, section, res.Warnings[0].Section)
			assert.Equal(t, "boom", res.Warnings[0].Message)

			v := res.Restaurant
			assert.Len(t, v.OpenHours, 7)
			assert.Len(t, v.CheckIn, HoursPerDay)
			assert.NotEmpty(t, v.Categories)

			switch section {
			case "restaurant":
				assert.Equal(t, Unknown, v.Name)
				assert.Equal(t, Unknown, v.Stars)
			case "categories":
				assert.Equal(t, []string{None}, v.Categories)
			case "photos":
				assert.Empty(t, v.Photos)
			case "open_location":
				assert.Equal(t, Unknown, v.Address)
				assert.Equal(t, Unknown, v.City)
			case "location":
				assert.Equal(t, "3429 S Jones Blvd", v.Address)
				assert.Equal(t, Unknown, v.City)
			case "open_hours":
				assert.Equal(t, Unknown, v.OpenHours[0].Open)
			case "checkin":
				assert.Equal(t, 0, v.CheckIn[9].Counts[0])
			case "bookmark":
				assert.False(t, v.IsBookmark)
			case "tips":
				assert.Empty(t, res.Tips)
				assert.Len(t, res.Reviews, 3)
			case "reviews":
				assert.Empty(t, res.Reviews)
				assert.Len(t, res.Tips, 2)
			}
			if section != "restaurant" {
				assert.Equal(t, "Pho Kim Long", v.Name)
			}
		})
	}
}

func TestAggregate_RowLookupFailuresDegradeRows(t *testing.T) {
	src := newFixture()
	src.fail = map[string]bool{"users": true, "friends": true}
	res, err := New(src).Aggregate(context.Background(), 7, member())
	require.NoError(t, err)

	for _, r := range res.Reviews {
		assert.Equal(t, Unknown, r.UName)
		assert.Nil(t, r.IsFriend)
	}
	// one author and one friend warning per tip and review row
	assert.Len(t, res.Warnings, 2*(len(src.tips)+len(src.reviews)))
}

func TestAggregate_Idempotent(t *testing.T) {
	src := newFixture()
	agg := New(src)
	first, err := agg.Aggregate(context.Background(), 7, member())
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), 7, member())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmpty_HasEveryDefault(t *testing.T) {
	res := Empty(7)
	v := res.Restaurant
	assert.EqualValues(t, 7, v.RID)
	assert.Equal(t, Unknown, v.Name)
	assert.Equal(t, Unknown, v.Stars)
	assert.Equal(t, Unknown, v.City)
	assert.Equal(t, []string{None}, v.Categories)
	assert.NotNil(t, v.Photos)
	assert.Len(t, v.Meals, len(model.MealTypes))
	assert.Len(t, v.Ambience, len(model.AmbienceTypes))
	require.Len(t, v.OpenHours, 7)
	for i, h := range v.OpenHours {
		assert.Equal(t, Hours{Day: Weekdays[i], Open: Unknown, Close: Unknown}, h)
	}
	require.Len(t, v.CheckIn, HoursPerDay)
	for _, row := range v.CheckIn {
		assert.Equal(t, [7]int{}, row.Counts)
	}
	assert.False(t, v.IsBookmark)
	assert.Equal(t, []Tip{}, res.Tips)
	assert.Equal(t, []Review{}, res.Reviews)
	assert.Equal(t, []Warning{}, res.Warnings)
}
