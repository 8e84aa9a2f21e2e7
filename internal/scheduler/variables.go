package scheduler

import (
	"fmt"

	"github.com/Language-Creation-Society/slotmachine/internal/milp"
)

// get returns the cached variable for key, creating and memoizing it via
// build on first access. build is only ever invoked once per key (spec
// §4.3: "repeated requests return the same object").
func (s *Session) get(key varKey, build func() *milp.Variable) *milp.Variable {
	if v, ok := s.vars[key]; ok {
		return v
	}
	v := build()
	s.vars[key] = v
	return v
}

// start returns START_{slot}_{talk}_{venue}: talk begins at slot in venue.
// Forced zero when the talk's full duration does not fit entirely within
// slots_available starting at slot.
func (s *Session) start(slot, talkID, venueID int) *milp.Variable {
	key := varKey{kind: kindStart, a: slot, b: talkID, c: venueID}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("START_%d_%d_%d", slot, talkID, venueID)
		v := s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
		if !s.intervalFullyAvailable(slot, talkID) {
			v.ForceZero()
		}
		return v
	})
}

// active returns ACTIVE_{slot}_{talk}_{venue}: talk is underway at slot in
// venue. Forced zero when slot or venue is outside the talk's permission
// set. As a side effect, the first time a given (slot, talk, venue) active
// variable is created, its CONTIGUITY constraint is also emitted, so callers
// never need to remember to wire the two up separately.
func (s *Session) active(slot, talkID, venueID int) *milp.Variable {
	key := varKey{kind: kindActive, a: slot, b: talkID, c: venueID}
	v := s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ACTIVE_%d_%d_%d", slot, talkID, venueID)
		av := s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
		perm := s.Loaded.TalkPermissions[talkID]
		if !containsInt(perm.Slots, slot) || !containsInt(perm.Venues, venueID) {
			av.ForceZero()
		}
		return av
	})
	if !s.contiguityDone[key] {
		s.contiguityDone[key] = true
		s.emitContiguity(slot, talkID, venueID, v)
	}
	return v
}

// attend returns ATTEND_{talk}_{person}: person attends the talk in full
// (or, for a meetup, at all).
func (s *Session) attend(talkID, personID int) *milp.Variable {
	key := varKey{kind: kindAttend, a: talkID, b: personID}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ATTEND_%d_%d", talkID, personID)
		return s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
	})
}

// attendAt returns ATTEND_AT_{slot}_{talk}_{person}: person attends the
// talk at slot. Forced zero when slot is outside the person's availability.
func (s *Session) attendAt(slot, talkID, personID int) *milp.Variable {
	key := varKey{kind: kindAttendAt, a: slot, b: talkID, c: personID}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ATTEND_AT_%d_%d_%d", slot, talkID, personID)
		v := s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
		person := s.Loaded.PeopleByID[personID]
		if person == nil || !containsInt(person.Slots, slot) {
			v.ForceZero()
		}
		return v
	})
}

// distance returns DISTANCE_V_{t1}_{t2}: start(t2) - start(t1) in slots.
func (s *Session) distance(t1, t2 int) *milp.Variable {
	key := varKey{kind: kindDistance, a: t1, b: t2}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("DISTANCE_V_%d_%d", t1, t2)
		bound := float64(s.maxSlot + 1)
		return s.Problem.AddVariable(name).SetInteger(true).SetBounds(-bound, bound)
	})
}

// absDistance returns ABS_DISTANCE_V_{t1}_{t2}: |distance(t1,t2)|. Forced
// zero when t1 == t2.
func (s *Session) absDistance(t1, t2 int) *milp.Variable {
	key := varKey{kind: kindAbsDistance, a: t1, b: t2}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ABS_DISTANCE_V_%d_%d", t1, t2)
		bound := float64(s.maxSlot + 1)
		v := s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, bound)
		if t1 == t2 {
			v.ForceZero()
		}
		return v
	})
}

// adjacentOrBefore returns ADJACENT_OR_BEFORE_V_{t1}_{t2}_{v}: may be 1
// only when both talks are placed in venue v and t2 starts no later than
// t1 finishes. ADJACENT_OR_BEFORE_C forces it to 0 otherwise; it is not
// forced to 1 when the condition holds.
func (s *Session) adjacentOrBefore(t1, t2, venueID int) *milp.Variable {
	key := varKey{kind: kindAdjacentOrBefore, a: t1, b: t2, c: venueID}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ADJACENT_OR_BEFORE_V_%d_%d_%d", t1, t2, venueID)
		return s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
	})
}

// adjacent returns ADJACENT_V_{t1}_{t2}_{v}: t1 and t2 are consecutive in
// venue v, in either order.
func (s *Session) adjacent(t1, t2, venueID int) *milp.Variable {
	key := varKey{kind: kindAdjacent, a: t1, b: t2, c: venueID}
	return s.get(key, func() *milp.Variable {
		name := fmt.Sprintf("ADJACENT_V_%d_%d_%d", t1, t2, venueID)
		return s.Problem.AddVariable(name).SetInteger(true).SetBounds(0, 1)
	})
}

// intervalFullyAvailable reports whether [slot, slot+duration(talkID))
// lies entirely within slots_available.
func (s *Session) intervalFullyAvailable(slot, talkID int) bool {
	talk := s.Loaded.TalksByID[talkID]
	if talk == nil {
		return false
	}
	for k := slot; k < slot+talk.Duration; k++ {
		if !s.isSlotAvailable(k) {
			return false
		}
	}
	return true
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
