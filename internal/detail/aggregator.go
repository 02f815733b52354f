// Package detail builds the restaurant detail record. It gathers every
// related section from a Source, tolerates the failure of any single
// section, and runs one normalization pass so the rendered record
// contains no nulls.
package detail

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/iliyamo/restaurant-review/internal/model"
)

// ErrNotFound is returned when the restaurant itself does not exist.
var ErrNotFound = errors.New("restaurant not found")

// Source is the read side of the store used by the aggregator. Lookups
// that can legitimately find nothing return a nil pointer and a nil
// error.
type Source interface {
	Restaurant(ctx context.Context, rid uint64) (*model.Restaurant, error)
	Categories(ctx context.Context, rid uint64) ([]string, error)
	Photos(ctx context.Context, rid uint64) ([]model.Photo, error)
	OpenLocation(ctx context.Context, rid uint64) (*model.OpenLocation, error)
	Location(ctx context.Context, address, postalCode string) (*model.Location, error)
	OpenHours(ctx context.Context, rid uint64) ([]model.OpenHours, error)
	CheckIns(ctx context.Context, rid uint64) ([]model.CheckIn, error)
	IsBookmarked(ctx context.Context, uid, rid uint64) (bool, error)
	Tips(ctx context.Context, rid uint64) ([]model.Tip, error)
	Reviews(ctx context.Context, rid uint64) ([]model.Review, error)
	UserName(ctx context.Context, uid uint64) (string, error)
	IsFriend(ctx context.Context, uidA, uidB uint64) (bool, error)
}

// Aggregator assembles detail records from a Source.
type Aggregator struct {
	src Source
	// PhotoPrefix is prepended to "<pid>.jpg" to form photo paths.
	PhotoPrefix string
}

// New returns an Aggregator reading from src.
func New(src Source) *Aggregator {
	return &Aggregator{src: src, PhotoPrefix: "/static/photos/"}
}

// raw holds the sections exactly as the store returned them.
type raw struct {
	rid        uint64
	restaurant *model.Restaurant
	categories []string
	photos     []model.Photo
	location   *model.Location
	openLoc    *model.OpenLocation
	hours      []model.OpenHours
	checkins   []model.CheckIn
	bookmarked bool
}

// Aggregate builds the detail record for rid as seen by sess. Only a
// missing restaurant is an error; every other failure degrades its
// section and is reported in Result.Warnings.
func (a *Aggregator) Aggregate(ctx context.Context, rid uint64, sess model.Session) (Result, error) {
	var res Result
	in := raw{rid: rid}

	r, err := a.src.Restaurant(ctx, rid)
	switch {
	case err != nil:
		res.warn("restaurant", err)
	case r == nil:
		return Result{}, ErrNotFound
	default:
		in.restaurant = r
	}

	if cats, err := a.src.Categories(ctx, rid); err != nil {
		res.warn("categories", err)
	} else {
		in.categories = cats
	}
	if photos, err := a.src.Photos(ctx, rid); err != nil {
		res.warn("photos", err)
	} else {
		in.photos = photos
	}
	if ol, err := a.src.OpenLocation(ctx, rid); err != nil {
		res.warn("open_location", err)
	} else {
		in.openLoc = ol
	}
	if in.openLoc != nil {
		if loc, err := a.src.Location(ctx, in.openLoc.Address, in.openLoc.PostalCode); err != nil {
			res.warn("location", err)
		} else {
			in.location = loc
		}
	}
	if hours, err := a.src.OpenHours(ctx, rid); err != nil {
		res.warn("open_hours", err)
	} else {
		in.hours = hours
	}
	if checkins, err := a.src.CheckIns(ctx, rid); err != nil {
		res.warn("checkin", err)
	} else {
		in.checkins = checkins
	}
	if sess.LoggedIn {
		if ok, err := a.src.IsBookmarked(ctx, sess.UID, rid); err != nil {
			res.warn("bookmark", err)
		} else {
			in.bookmarked = ok
		}
	}

	res.Restaurant = a.normalize(in)
	res.Tips = a.tips(ctx, rid, sess, &res)
	res.Reviews = a.reviews(ctx, rid, sess, &res)
	if res.Warnings == nil {
		res.Warnings = []Warning{}
	}
	return res, nil
}

// Empty is the record rendered when the store cannot be reached at all:
// every section holds its default value.
func Empty(rid uint64) Result {
	var a Aggregator
	return Result{
		Restaurant: a.normalize(raw{rid: rid}),
		Tips:       []Tip{},
		Reviews:    []Review{},
		Warnings:   []Warning{},
	}
}

func (r *Result) warn(section string, err error) {
	r.Warnings = append(r.Warnings, Warning{Section: section, Message: err.Error()})
}

// normalize applies the default rules to every section: unknown
// scalars, a None category marker, seven weekday hours and a dense
// check-in grid.
func (a *Aggregator) normalize(in raw) View {
	v := View{
		RID:        in.rid,
		Name:       Unknown,
		NoiseLevel: Unknown, WiFi: Unknown, Alcohol: Unknown, Stars: Unknown, Smoking: Unknown,
		DogsAllowed: Unknown, HasTV: Unknown, AcceptsCreditCards: Unknown, GoodForKids: Unknown,
		Address: Unknown, PostalCode: Unknown,
		Latitude: Unknown, Longitude: Unknown, City: Unknown, State: Unknown,
	}

	var meals, ambience map[string]nullBool
	if r := in.restaurant; r != nil {
		if r.Name != "" {
			v.Name = r.Name
		}
		v.NoiseLevel = orUnknown(r.NoiseLevel)
		v.WiFi = orUnknown(r.WiFi)
		v.Alcohol = orUnknown(r.Alcohol)
		v.Stars = floatOrUnknown(r.Stars)
		v.Smoking = orUnknown(r.Smoking)
		v.DogsAllowed = boolOrUnknown(r.DogsAllowed)
		v.HasTV = boolOrUnknown(r.HasTV)
		v.AcceptsCreditCards = boolOrUnknown(r.AcceptsCreditCards)
		v.GoodForKids = boolOrUnknown(r.GoodForKids)
		meals, ambience = r.Meals, r.Ambience
	}
	v.Meals = flags(model.MealTypes, meals)
	v.Ambience = flags(model.AmbienceTypes, ambience)

	v.Categories = make([]string, 0, len(in.categories))
	for _, c := range in.categories {
		if c = strings.TrimSpace(c); c != "" {
			v.Categories = append(v.Categories, c)
		}
	}
	if len(v.Categories) == 0 {
		v.Categories = []string{None}
	}

	v.Photos = make([]Photo, 0, len(in.photos))
	for _, p := range in.photos {
		v.Photos = append(v.Photos, Photo{
			ID:      p.ID,
			Caption: orUnknown(p.Caption),
			Label:   orUnknown(p.Label),
			Path:    a.PhotoPrefix + p.ID + ".jpg",
		})
	}

	if ol := in.openLoc; ol != nil {
		v.Address = nonEmpty(ol.Address)
		v.PostalCode = nonEmpty(ol.PostalCode)
	}
	if l := in.location; l != nil {
		v.Latitude = floatOrUnknown(l.Latitude)
		v.Longitude = floatOrUnknown(l.Longitude)
		v.City = orUnknown(l.City)
		v.State = orUnknown(l.State)
	}

	v.OpenHours = openHours(in.hours)
	v.CheckIn = checkInGrid(in.checkins)
	v.IsBookmark = in.bookmarked
	return v
}

// openHours returns exactly one entry per weekday in canonical order.
func openHours(rows []model.OpenHours) []Hours {
	byDay := make(map[int]model.OpenHours, len(rows))
	for _, h := range rows {
		if i := weekdayIndex(h.Day); i >= 0 {
			byDay[i] = h
		}
	}
	out := make([]Hours, len(Weekdays))
	for i, day := range Weekdays {
		out[i] = Hours{Day: day, Open: Unknown, Close: Unknown}
		if h, ok := byDay[i]; ok {
			out[i].Open = nonEmpty(h.Open)
			out[i].Close = nonEmpty(h.Close)
		}
	}
	return out
}

// checkInGrid pivots sparse (weekday, hour, count) rows into 24 hour
// rows of seven weekday counts. Rows outside the grid are dropped.
func checkInGrid(rows []model.CheckIn) []CheckInRow {
	grid := make([]CheckInRow, HoursPerDay)
	for h := range grid {
		grid[h].Hour = hourLabel(h)
	}
	for _, c := range rows {
		d := weekdayIndex(c.Weekday)
		if d < 0 || c.Hour < 0 || c.Hour >= HoursPerDay {
			continue
		}
		grid[c.Hour].Counts[d] = c.Count
	}
	return grid
}

func (a *Aggregator) tips(ctx context.Context, rid uint64, sess model.Session, res *Result) []Tip {
	rows, err := a.src.Tips(ctx, rid)
	if err != nil {
		res.warn("tips", err)
		return []Tip{}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID > rows[j].ID
	})
	out := make([]Tip, 0, len(rows))
	for _, t := range rows {
		out = append(out, Tip{
			ID:       t.ID,
			UID:      t.UserID,
			UName:    a.author(ctx, t.UserID, "tips", res),
			Text:     t.Text,
			Date:     formatDate(t.Date),
			IsFriend: a.friend(ctx, sess, t.UserID, "tips", res),
		})
	}
	return out
}

func (a *Aggregator) reviews(ctx context.Context, rid uint64, sess model.Session, res *Result) []Review {
	rows, err := a.src.Reviews(ctx, rid)
	if err != nil {
		res.warn("reviews", err)
		return []Review{}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID > rows[j].ID
	})
	out := make([]Review, 0, len(rows))
	for _, r := range rows {
		out = append(out, Review{
			ID:       r.ID,
			UID:      r.UserID,
			UName:    a.author(ctx, r.UserID, "reviews", res),
			Rating:   r.Rating,
			Text:     r.Text,
			Useful:   r.Useful,
			Funny:    r.Funny,
			Cool:     r.Cool,
			Date:     formatDate(r.Date),
			IsFriend: a.friend(ctx, sess, r.UserID, "reviews", res),
		})
	}
	return out
}

func (a *Aggregator) author(ctx context.Context, uid uint64, section string, res *Result) string {
	name, err := a.src.UserName(ctx, uid)
	if err != nil {
		res.warn(section+".author", err)
		return Unknown
	}
	return nonEmpty(name)
}

// friend is nil for guests and when the lookup fails.
func (a *Aggregator) friend(ctx context.Context, sess model.Session, uid uint64, section string, res *Result) *bool {
	if !sess.LoggedIn {
		return nil
	}
	ok, err := a.src.IsFriend(ctx, sess.UID, uid)
	if err != nil {
		res.warn(section+".friend", err)
		return nil
	}
	return &ok
}
