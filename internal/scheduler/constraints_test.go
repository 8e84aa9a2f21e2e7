package scheduler

import (
	"testing"

	"github.com/Language-Creation-Society/slotmachine/internal/loader"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
)

func newTestSession(t *testing.T, d *models.Descriptor) *Session {
	t.Helper()
	res, err := loader.Load(d, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewSession(res, Options{}, nil)
}

func oneVenueOneTalk(window models.TimeRangeJSON) *models.Descriptor {
	return &models.Descriptor{
		Venues: []models.VenueJSON{{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{window}}},
		People: []models.PersonJSON{{ID: 1, Name: "Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{window}}},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Speakers: []string{"Speaker"}, TimeRanges: []models.TimeRangeJSON{window}},
		},
	}
}

// active()'s side effect emits exactly one CONTIGUITY constraint per
// (slot, talk, venue), regardless of how many times it's called.
func TestActiveEmitsContiguityOnce(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")
	s := newTestSession(t, oneVenueOneTalk(window))

	before := s.Problem.NumConstraints()
	s.active(0, 1, 1)
	afterFirst := s.Problem.NumConstraints()
	s.active(0, 1, 1)
	afterSecond := s.Problem.NumConstraints()

	if afterFirst != before+1 {
		t.Fatalf("first active() call added %d constraints, want 1", afterFirst-before)
	}
	if afterSecond != afterFirst {
		t.Fatalf("second active() call added %d constraints, want 0 (memoized)", afterSecond-afterFirst)
	}
}

// A single buildConstraints call produces a nonempty problem whose
// constraint names are all unique.
func TestBuildConstraintsPopulatesProblem(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")
	s := newTestSession(t, oneVenueOneTalk(window))

	if err := s.buildConstraints(); err != nil {
		t.Fatalf("buildConstraints: %v", err)
	}
	if s.Problem.NumConstraints() == 0 {
		t.Fatal("buildConstraints produced zero constraints")
	}
	if s.Problem.NumVariables() == 0 {
		t.Fatal("buildConstraints produced zero variables")
	}

	names := make(map[string]bool)
	for _, c := range s.Problem.Constraints() {
		if names[c.Name] {
			t.Errorf("duplicate constraint name %q", c.Name)
		}
		names[c.Name] = true
	}
}

// A speaker with only one talk never gets a NO_SPEAKER_CONFLICTS constraint;
// it is only emitted when a speaker has more than one talk to conflict with.
func TestNoSpeakerConflictsSkippedForSingleTalkSpeaker(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")
	s := newTestSession(t, oneVenueOneTalk(window))
	s.noSpeakerConflicts()
	if s.Problem.NumConstraints() != 0 {
		t.Errorf("single-talk speaker produced %d NO_SPEAKER_CONFLICTS constraints, want 0", s.Problem.NumConstraints())
	}
}

// inviteOnly must not emit INVITE_ONLY for a person who does have a nonzero
// preference recorded for the talk.
func TestInviteOnlySkipsPreferredPerson(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")
	d := &models.Descriptor{
		Venues: []models.VenueJSON{{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{window}}},
		People: []models.PersonJSON{
			{ID: 1, Name: "Fan", Attending: 1, Preferences: map[string]int{"1": 1}, TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Name: "Stranger", Attending: 1, TimeRanges: []models.TimeRangeJSON{window}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, InviteOnly: true, TimeRanges: []models.TimeRangeJSON{window}},
		},
	}
	s := newTestSession(t, d)
	s.inviteOnly(&s.Loaded.Talks[0])

	var names []string
	for _, c := range s.Problem.Constraints() {
		names = append(names, c.Name)
	}
	if containsString(names, "INVITE_ONLY_1_1") {
		t.Error("INVITE_ONLY emitted for a person with a recorded preference")
	}
	if !containsString(names, "INVITE_ONLY_1_2") {
		t.Error("INVITE_ONLY not emitted for a person with no preference")
	}
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
