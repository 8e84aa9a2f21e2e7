package models

// Descriptor is the JSON schedule description read from and written back to
// disk by the CLI. Field names mirror the external contract exactly; talk
// records are annotated in place with the solved slot/time/venue/attendee
// fields once a Session has produced a result.
type Descriptor struct {
	Languages []LanguageJSON `json:"languages"`
	Venues    []VenueJSON    `json:"venues"`
	People    []PersonJSON   `json:"people"`
	Talks     []TalkJSON     `json:"talks"`
}

type TimeRangeJSON struct {
	Start FlexibleTime `json:"start"`
	End   FlexibleTime `json:"end"`
}

type LanguageJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type VenueJSON struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Capacity   int             `json:"capacity"`
	TimeRanges []TimeRangeJSON `json:"time_ranges"`
}

type PersonJSON struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	Attending           int             `json:"attending"`
	TimeRanges          []TimeRangeJSON `json:"time_ranges"`
	PreferredTimeRanges []TimeRangeJSON `json:"preferred_time_ranges,omitempty"`
	Preferences         map[string]int  `json:"preferences,omitempty"`
	Languages           []int           `json:"languages,omitempty"`
}

// TalkJSON carries both the input descriptor fields and, once a talk has
// been scheduled, the output annotations (Slot, Time, EndTime, Venue,
// Attendees, PartialAttendees). Output fields are nil/empty on a fresh
// descriptor.
type TalkJSON struct {
	ID                  int             `json:"id"`
	Duration            int             `json:"duration"`
	Durations           []int           `json:"durations,omitempty"`
	ValidVenues         []int           `json:"valid_venues"`
	PreferredVenues     []int           `json:"preferred_venues,omitempty"`
	TimeRanges          []TimeRangeJSON `json:"time_ranges"`
	PreferredTimeRanges []TimeRangeJSON `json:"preferred_time_ranges,omitempty"`
	Speakers            []string        `json:"speakers,omitempty"`
	Plenary             bool            `json:"plenary,omitempty"`
	IrlOnly             bool            `json:"irl_only,omitempty"`
	InviteOnly          bool            `json:"invite_only,omitempty"`
	Meetup              bool            `json:"meetup,omitempty"`
	Rest                bool            `json:"rest,omitempty"`
	BeforeRest          bool            `json:"before_rest,omitempty"`
	AfterRest           bool            `json:"after_rest,omitempty"`
	Prereqs             []int           `json:"prereqs,omitempty"`
	Languages           []int           `json:"languages,omitempty"`
	Similarities map[string]int `json:"similarities,omitempty"`
	// SpacingSlots overrides the global default spacing for this talk alone
	// when present; nil means "use the run's default spacing".
	SpacingSlots *int `json:"spacing_slots,omitempty"`

	// Prior fixed assignment, optionally present on input.
	Time  *FlexibleTime `json:"time,omitempty"`
	Venue *int          `json:"venue,omitempty"`

	// Output annotations, populated by the result projector after a solve.
	Slot             *int          `json:"slot,omitempty"`
	EndTime          *FlexibleTime `json:"end_time,omitempty"`
	Attendees        []int         `json:"attendees,omitempty"`
	PartialAttendees []int         `json:"partial_attendees,omitempty"`
}
