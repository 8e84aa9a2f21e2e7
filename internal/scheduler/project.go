package scheduler

import (
	"fmt"

	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
	"github.com/Language-Creation-Society/slotmachine/internal/timegrid"
)

// valueTolerance treats anything within this distance of 1 as true — an LP
// relaxation's integer-feasible solution can carry float noise like
// 0.9999999994 on a nominally binary variable.
const valueTolerance = 1e-6

func isOne(v float64) bool {
	return v > 1-valueTolerance
}

// project reads START/ATTEND/ATTEND_AT valuations out of an Optimal solve
// and writes the per-talk slot, time, end_time, venue, attendees, and
// partial_attendees annotations back onto the original descriptor.
func (s *Session) project(valuation Valuation) error {
	talkByID := make(map[int]*models.TalkJSON, len(s.Loaded.Descriptor.Talks))
	for i := range s.Loaded.Descriptor.Talks {
		talkByID[s.Loaded.Descriptor.Talks[i].ID] = &s.Loaded.Descriptor.Talks[i]
	}

	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		out := talkByID[talk.ID]
		if out == nil {
			continue
		}

		slot, venueID, found := s.findStart(valuation, talk)
		if !found {
			continue
		}

		startTime := timegrid.SlotToTime(s.Loaded.EventStart, slot)
		endTime := timegrid.SlotToTime(s.Loaded.EventStart, slot+talk.Duration)
		timeVal := models.NewFlexibleTime(startTime)
		endVal := models.NewFlexibleTime(endTime)

		slotCopy, venueCopy := slot, venueID
		out.Slot = &slotCopy
		out.Time = &timeVal
		out.EndTime = &endVal
		out.Venue = &venueCopy
		out.Attendees = s.fullAttendees(valuation, talk)
		out.PartialAttendees = s.partialAttendees(valuation, talk, slot)
	}

	return nil
}

// findStart locates the (slot, venue) pair with START(s,t,v)=1, searching
// only the talk's own permitted domain since every other START is forced
// zero.
func (s *Session) findStart(valuation Valuation, talk *domain.Talk) (slot, venueID int, found bool) {
	for _, v := range talk.Venues {
		for _, sl := range talk.Slots {
			name := fmt.Sprintf("START_%d_%d_%d", sl, talk.ID, v)
			if val, ok := valuation.Value(name); ok && isOne(val) {
				return sl, v, true
			}
		}
	}
	return 0, 0, false
}

// fullAttendees returns every person with ATTEND(t,p)=1, in descriptor
// order (the order of s.Loaded.People), not sorted by ID. Looked up by name rather
// than through the attend() factory: an ATTEND variable that was never
// referenced while building constraints or the objective (e.g. a non-
// speaker on a meetup talk) was never part of the solved problem, and
// querying it through the factory post-solve would wrongly fabricate one.
func (s *Session) fullAttendees(valuation Valuation, talk *domain.Talk) []int {
	var out []int
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		name := fmt.Sprintf("ATTEND_%d_%d", talk.ID, person.ID)
		if val, ok := valuation.Value(name); ok && isOne(val) {
			out = append(out, person.ID)
		}
	}
	return out
}

// partialAttendees returns every person with ATTEND_AT(s+offset,t,p)=1 for
// some offset in [0, duration(t)), de-duplicated, for the talk's
// partial_attendees annotation.
func (s *Session) partialAttendees(valuation Valuation, talk *domain.Talk, slot int) []int {
	var out []int
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		attended := false
		for offset := 0; offset < talk.Duration; offset++ {
			name := fmt.Sprintf("ATTEND_AT_%d_%d_%d", slot+offset, talk.ID, person.ID)
			if val, ok := valuation.Value(name); ok && isOne(val) {
				attended = true
				break
			}
		}
		if attended {
			out = append(out, person.ID)
		}
	}
	return out
}
