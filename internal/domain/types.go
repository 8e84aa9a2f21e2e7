// Package domain holds the typed records the scheduling model is built
// from: Talk, Person, Venue, Language, and the indexes derived from them.
// No identifier is created here; every ID is domain-assigned in the input
// descriptor.
package domain

// Talk is one conference talk, translated into slot arithmetic.
type Talk struct {
	ID       int
	Duration int   // slots, includes any post-talk spacing
	Durations []int // alternative permitted durations, parsed but not enforced

	Slots  []int // talk_permissions[id].slots
	Venues []int // talk_permissions[id].venues

	PreferredSlots  []int
	PreferredVenues []int

	Speakers []int // Person IDs

	Plenary    bool
	IrlOnly    bool
	InviteOnly bool
	Meetup     bool
	Rest       bool
	BeforeRest bool
	AfterRest  bool

	Prereqs      []int
	Similarities map[int]int // talk ID -> weight
	Languages    []int
}

// Person is an attendee, speaker, or both.
type Person struct {
	ID              int
	Name            string
	Slots           []int
	PreferredSlots  []int
	Preferences     map[int]int // talk ID -> weight
	Attending       int         // 0 remote, 1 in-person
	Languages       []int
}

// Venue is a physical or virtual room.
type Venue struct {
	ID       int
	Name     string
	Capacity int // advisory only; no constraint enforces it
	Slots    []int
}

// Language exists for diagnostics only; no hard constraint references it.
type Language struct {
	ID   int
	Name string
}

// Permission is the allowed (slots, venues) pair for one talk, i.e.
// talk_permissions[tid]. It is always identical to the Talk's own
// Slots/Venues fields; kept as a distinct, explicitly named derived
// structure because the constraint builder and diagnosis output reference
// it by that name.
type Permission struct {
	Slots  []int
	Venues []int
}
