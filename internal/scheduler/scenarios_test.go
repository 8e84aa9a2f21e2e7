package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/loader"
	"github.com/Language-Creation-Society/slotmachine/internal/milp"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
)

func timeRange(t *testing.T, start, end string) models.TimeRangeJSON {
	t.Helper()
	var r models.TimeRangeJSON
	if err := r.Start.UnmarshalJSON([]byte(`"` + start + `"`)); err != nil {
		t.Fatalf("parsing %q: %v", start, err)
	}
	if err := r.End.UnmarshalJSON([]byte(`"` + end + `"`)); err != nil {
		t.Fatalf("parsing %q: %v", end, err)
	}
	return r
}

func solve(t *testing.T, d *models.Descriptor) (*loader.Result, *Session, Status) {
	t.Helper()
	res, err := loader.Load(d, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sess := NewSession(res, Options{Threads: 2, TimeLimit: 10000}, nil)
	oracle := NewMILPOracle(milp.BranchMostFractional)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = sess.Solve(ctx, oracle)
	if err == nil {
		return res, sess, StatusOptimal
	}
	var uerr *domain.UnsatisfiableError
	if errors.As(err, &uerr) {
		return res, sess, StatusInfeasible
	}
	t.Fatalf("Solve: %v", err)
	return res, sess, StatusUndefined
}

// S1 — single talk, single venue.
func TestScenarioS1SingleTalk(t *testing.T) {
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Speakers: []string{"Speaker"},
				TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
	}

	_, _, status := solve(t, d)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want Optimal", status)
	}
	talk := d.Talks[0]
	if talk.Slot == nil || *talk.Slot != 0 {
		t.Errorf("Slot = %v, want 0", talk.Slot)
	}
	if talk.Venue == nil || *talk.Venue != 1 {
		t.Errorf("Venue = %v, want 1", talk.Venue)
	}
	if len(talk.Attendees) != 1 || talk.Attendees[0] != 1 {
		t.Errorf("Attendees = %v, want [1]", talk.Attendees)
	}
}

// S3 — prerequisite: start(B) >= start(A) + duration(A).
func TestScenarioS3Prerequisite(t *testing.T) {
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T11:00:00Z")}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "A-Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T11:00:00Z")}},
			{ID: 2, Name: "B-Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T11:00:00Z")}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 60, ValidVenues: []int{1}, Speakers: []string{"A-Speaker"},
				TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T11:00:00Z")}},
			{ID: 2, Duration: 60, ValidVenues: []int{1}, Speakers: []string{"B-Speaker"}, Prereqs: []int{1},
				TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T11:00:00Z")}},
		},
	}

	_, _, status := solve(t, d)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want Optimal", status)
	}
	a, b := d.Talks[0], d.Talks[1]
	if a.Slot == nil || b.Slot == nil {
		t.Fatal("both talks must be scheduled")
	}
	if *b.Slot < *a.Slot+12 {
		t.Errorf("start(B)=%d < start(A)+duration(A)=%d", *b.Slot, *a.Slot+12)
	}
}

// S5 — invite-only: a person with preferences[T]=0 never attends T.
func TestScenarioS5InviteOnly(t *testing.T) {
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "Speaker", Attending: 1, Preferences: map[string]int{"1": 1}, TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
			{ID: 2, Name: "Outsider", Attending: 1, TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Speakers: []string{"Speaker"}, InviteOnly: true,
				TimeRanges: []models.TimeRangeJSON{timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
	}

	_, sess, status := solve(t, d)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want Optimal", status)
	}
	talk := d.Talks[0]
	for _, pid := range talk.Attendees {
		if pid == 2 {
			t.Errorf("Outsider (id 2) attended an invite-only talk they had no preference for")
		}
	}
	_ = sess
}

// S2 — plenary exclusivity: a plenary talk placed at a slot forbids any
// other talk from being active there, even in a different venue.
func TestScenarioS2PlenaryExclusivity(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T09:30:00Z")
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Hall A", TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Name: "Hall B", TimeRanges: []models.TimeRangeJSON{window}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "Plenary Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Name: "Other Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{window}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Speakers: []string{"Plenary Speaker"}, Plenary: true, TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Duration: 30, ValidVenues: []int{2}, Speakers: []string{"Other Speaker"}, TimeRanges: []models.TimeRangeJSON{window}},
		},
	}

	_, _, status := solve(t, d)
	if status == StatusOptimal {
		plenary, other := d.Talks[0], d.Talks[1]
		if plenary.Slot != nil && other.Slot != nil && *plenary.Slot == *other.Slot {
			t.Errorf("plenary talk and non-plenary talk share slot %d", *plenary.Slot)
		}
	} else if status != StatusInfeasible {
		t.Fatalf("status = %v, want Optimal or Infeasible (no slot left for the non-plenary talk)", status)
	}
}

// S6 — speaker double-booking infeasible: two talks by the same speaker
// overlap in every candidate placement.
func TestScenarioS6SpeakerConflict(t *testing.T) {
	window := timeRange(t, "2026-07-31T09:00:00Z", "2026-07-31T09:30:00Z")
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Hall A", TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Name: "Hall B", TimeRanges: []models.TimeRangeJSON{window}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "Busy Speaker", Attending: 1, TimeRanges: []models.TimeRangeJSON{window}},
		},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Speakers: []string{"Busy Speaker"}, TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Duration: 30, ValidVenues: []int{2}, Speakers: []string{"Busy Speaker"}, TimeRanges: []models.TimeRangeJSON{window}},
		},
	}

	_, sess, status := solve(t, d)
	if status != StatusInfeasible {
		t.Fatalf("status = %v, want Infeasible (same speaker, only one slot available for both talks)", status)
	}
	_ = sess
}

// S4 — rest window: two rests R1 then R2, prereq R1; the gap between them
// must land in [duration(R1)+12, duration(R1)+24] slots.
func TestScenarioS4RestWindow(t *testing.T) {
	window := timeRange(t, "2026-07-31T10:00:00Z", "2026-07-31T14:00:00Z")
	d := &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Main", TimeRanges: []models.TimeRangeJSON{window}},
		},
		People: []models.PersonJSON{},
		Talks: []models.TalkJSON{
			{ID: 1, Duration: 30, ValidVenues: []int{1}, Rest: true, TimeRanges: []models.TimeRangeJSON{window}},
			{ID: 2, Duration: 30, ValidVenues: []int{1}, Rest: true, Prereqs: []int{1}, TimeRanges: []models.TimeRangeJSON{window}},
		},
	}

	_, _, status := solve(t, d)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want Optimal", status)
	}
	r1, r2 := d.Talks[0], d.Talks[1]
	if r1.Slot == nil || r2.Slot == nil {
		t.Fatal("both rests must be scheduled")
	}
	gap := *r2.Slot - *r1.Slot
	if gap < 6+12 || gap > 6+24 {
		t.Errorf("gap = %d slots, want within [18, 30]", gap)
	}
}
