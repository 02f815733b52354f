package detail

// Markers substituted for missing data so templates never see nulls.
const (
	Unknown = "Unknown"
	None    = "None"
)

// Weekdays is the canonical weekday order of the hours table and the
// check-in grid columns.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// HoursPerDay is the number of rows in the check-in grid.
const HoursPerDay = 24

// View is the aggregated restaurant record rendered by the detail page.
type View struct {
	RID                uint64 `json:"rid"`
	Name               string `json:"r_name"`
	NoiseLevel         string `json:"noiselevel"`
	WiFi               string `json:"wifi"`
	Alcohol            string `json:"alcohol"`
	Stars              string `json:"stars"`
	Smoking            string `json:"smoking"`
	DogsAllowed        string `json:"dogsallowed"`
	HasTV              string `json:"hastv"`
	AcceptsCreditCards string `json:"accepts_credit_cards"`
	GoodForKids        string `json:"goodforkids"`

	Meals    []Flag `json:"meals"`
	Ambience []Flag `json:"ambience"`

	Categories []string `json:"categories"`
	Photos     []Photo  `json:"has_photo"`

	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	City       string `json:"city"`
	State      string `json:"state"`

	OpenHours []Hours      `json:"open_hours"`
	CheckIn   []CheckInRow `json:"checkin"`

	IsBookmark bool `json:"is_bookmark"`
}

// Flag is one member of a multi-select attribute group.
type Flag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Photo is a photo entry with its static path.
type Photo struct {
	ID      string `json:"pid"`
	Caption string `json:"caption"`
	Label   string `json:"label"`
	Path    string `json:"path"`
}

// Hours is the opening window of one weekday.
type Hours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// CheckInRow is one hour of the check-in grid with the count for every
// weekday, in Weekdays order.
type CheckInRow struct {
	Hour   string `json:"hour"`
	Counts [7]int `json:"counts"`
}

// Tip is a tip annotated with its author. IsFriend is only set for
// logged-in sessions.
type Tip struct {
	ID       uint64 `json:"tid"`
	UID      uint64 `json:"uid"`
	UName    string `json:"u_name"`
	Text     string `json:"t_text"`
	Date     string `json:"t_date"`
	IsFriend *bool  `json:"is_friend,omitempty"`
}

// Review is a review annotated with its author. IsFriend is only set
// for logged-in sessions.
type Review struct {
	ID       uint64 `json:"review_id"`
	UID      uint64 `json:"uid"`
	UName    string `json:"u_name"`
	Rating   int    `json:"rating"`
	Text     string `json:"plaintext"`
	Useful   int    `json:"useful"`
	Funny    int    `json:"funny"`
	Cool     int    `json:"cool"`
	Date     string `json:"date"`
	IsFriend *bool  `json:"is_friend,omitempty"`
}

// Warning reports a section that could not be loaded. The section was
// rendered with its default value.
type Warning struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Result is everything the detail page renders.
type Result struct {
	Restaurant View      `json:"data"`
	Tips       []Tip     `json:"tips"`
	Reviews    []Review  `json:"reviews"`
	Warnings   []Warning `json:"warnings"`
}
