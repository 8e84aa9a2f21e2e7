package scheduler

import (
	"fmt"

	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/milp"
)

// restMinSpacingMinutes / restMaxSpacingMinutes expressed in slots live in
// session.go as restMinSpacingSlots/restMaxSpacingSlots (60 and 120 minutes
// at 5-minute granularity).

// emitContiguity emits CONTIGUITY_{s}_{t}_{v}: ACTIVE(s,t,v) equals the sum
// of START(k,t,v) over every slot k a talk beginning there would still be
// running at s. Called once per (slot,talk,venue) as a side effect of
// active(); never called directly from buildConstraints.
func (s *Session) emitContiguity(slot, talkID, venueID int, active *milp.Variable) {
	talk := s.Loaded.TalksByID[talkID]
	if talk == nil {
		return
	}
	name := fmt.Sprintf("CONTIGUITY_%d_%d_%d", slot, talkID, venueID)
	c := s.Problem.AddConstraint(name).AddTerm(1, active)
	lo := slot - talk.Duration + 1
	if lo < 0 {
		lo = 0
	}
	for k := lo; k <= slot; k++ {
		c.AddTerm(-1, s.start(k, talkID, venueID))
	}
	c.EqualTo(0)
}

// startExpr adds Σ_{s,v} sign·s·START(s,talkID,v) to c, ranging over every
// globally available slot and every venue — the definition of start(t) used
// throughout §4.4's ordering and distance constraints.
func (s *Session) startExpr(c *milp.Constraint, talkID int, sign float64) {
	for _, slot := range s.Loaded.SlotsAvailable {
		for i := range s.Loaded.Venues {
			c.AddTerm(sign*float64(slot), s.start(slot, talkID, s.Loaded.Venues[i].ID))
		}
	}
}

func (s *Session) buildConstraints() error {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		s.oneStart(talk)
		s.allowedTimePlace(talk)
		s.talkNotInBadSlots(talk)
		s.talkNotInInvalidVenue(talk)
	}
	for i := range s.Loaded.Venues {
		s.venueNotInBadSlots(&s.Loaded.Venues[i])
	}
	for _, vid := range venueIDs(s.Loaded.Venues) {
		for _, slot := range s.Loaded.SlotsAvailable {
			s.oneActive(vid, slot)
		}
	}
	for _, slot := range s.Loaded.SlotsAvailable {
		s.plenaryExclusivity(slot)
	}
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for _, slot := range s.Loaded.SlotsAvailable {
			for j := range s.Loaded.People {
				s.attendAvailability(talk, slot, &s.Loaded.People[j])
			}
		}
	}
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		for _, slot := range s.Loaded.SlotsAvailable {
			s.unipresence(person, slot)
		}
	}

	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		s.speakerAttendsWhole(talk)
		s.speakerAttends(talk)
		s.attendFullTalk(talk)
		s.irlOnly(talk)
		s.inviteOnly(talk)
	}

	for j := range s.Loaded.People {
		s.personAvailability(&s.Loaded.People[j])
	}

	s.noSpeakerConflicts()

	for i := range s.Loaded.Talks {
		talk2 := &s.Loaded.Talks[i]
		for _, t1id := range talk2.Prereqs {
			s.prereq(talk2, t1id)
		}
	}

	for i := range s.Loaded.Talks {
		s.beforeRest(&s.Loaded.Talks[i])
		s.afterRest(&s.Loaded.Talks[i])
	}

	s.distanceAndAdjacency()

	return nil
}

func venueIDs(venues []domain.Venue) []int {
	ids := make([]int, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	return ids
}

// oneStart: ONE_START_{t}: Σ over (s,v) START(s,t,v) = 1.
func (s *Session) oneStart(talk *domain.Talk) {
	name := fmt.Sprintf("ONE_START_%d", talk.ID)
	c := s.Problem.AddConstraint(name)
	for _, vid := range venueIDs(s.Loaded.Venues) {
		for _, slot := range s.Loaded.SlotsAvailable {
			c.AddTerm(1, s.start(slot, talk.ID, vid))
		}
	}
	c.EqualTo(1)
}

// allowedTimePlace: ALLOWED_TIME_PLACE_{t}: Σ over s∈talk.slots, v∈talk.venues
// START(s,t,v) = 1.
func (s *Session) allowedTimePlace(talk *domain.Talk) {
	name := fmt.Sprintf("ALLOWED_TIME_PLACE_%d", talk.ID)
	c := s.Problem.AddConstraint(name)
	for _, vid := range talk.Venues {
		for _, slot := range talk.Slots {
			c.AddTerm(1, s.start(slot, talk.ID, vid))
		}
	}
	c.EqualTo(1)
}

// talkNotInBadSlots: TALK_NOT_IN_BAD_SLOTS_{t}: zero-sum of ACTIVE over
// slots outside the talk's own permission set.
func (s *Session) talkNotInBadSlots(talk *domain.Talk) {
	name := fmt.Sprintf("TALK_NOT_IN_BAD_SLOTS_%d", talk.ID)
	c := s.Problem.AddConstraint(name)
	for _, vid := range talk.Venues {
		for _, slot := range s.Loaded.SlotsAvailable {
			if containsInt(talk.Slots, slot) {
				continue
			}
			c.AddTerm(1, s.active(slot, talk.ID, vid))
		}
	}
	c.EqualTo(0)
}

// talkNotInInvalidVenue: TALK_NOT_IN_INVALID_VENUE_{t}: zero-sum of ACTIVE
// over venues the talk isn't permitted in.
func (s *Session) talkNotInInvalidVenue(talk *domain.Talk) {
	name := fmt.Sprintf("TALK_NOT_IN_INVALID_VENUE_%d", talk.ID)
	c := s.Problem.AddConstraint(name)
	for _, vid := range venueIDs(s.Loaded.Venues) {
		if containsInt(talk.Venues, vid) {
			continue
		}
		for _, slot := range s.Loaded.SlotsAvailable {
			c.AddTerm(1, s.active(slot, talk.ID, vid))
		}
	}
	c.EqualTo(0)
}

// venueNotInBadSlots: VENUE_NOT_IN_BAD_SLOTS_{v}: zero-sum of ACTIVE over
// slots the venue is unavailable in.
func (s *Session) venueNotInBadSlots(venue *domain.Venue) {
	name := fmt.Sprintf("VENUE_NOT_IN_BAD_SLOTS_%d", venue.ID)
	c := s.Problem.AddConstraint(name)
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for _, slot := range s.Loaded.SlotsAvailable {
			if containsInt(venue.Slots, slot) {
				continue
			}
			c.AddTerm(1, s.active(slot, talk.ID, venue.ID))
		}
	}
	c.EqualTo(0)
}

// oneActive: ONE_ACTIVE_{v}_{s}: Σ_t ACTIVE(s,t,v) <= 1.
func (s *Session) oneActive(venueID, slot int) {
	name := fmt.Sprintf("ONE_ACTIVE_%d_%d", venueID, slot)
	c := s.Problem.AddConstraint(name)
	for i := range s.Loaded.Talks {
		c.AddTerm(1, s.active(slot, s.Loaded.Talks[i].ID, venueID))
	}
	c.LessOrEqualTo(1)
}

// unipresence: UNIPRESENCE_{p}_{s}: Σ_t ATTEND_AT(s,t,p) <= 1.
func (s *Session) unipresence(person *domain.Person, slot int) {
	name := fmt.Sprintf("UNIPRESENCE_%d_%d", person.ID, slot)
	c := s.Problem.AddConstraint(name)
	for i := range s.Loaded.Talks {
		c.AddTerm(1, s.attendAt(slot, s.Loaded.Talks[i].ID, person.ID))
	}
	c.LessOrEqualTo(1)
}

// plenaryExclusivity: PLENARY_EXCLUSIVITY_{s}: Σ_{t,v} (plenary(t)·M + 1)·
// ACTIVE(s,t,v) <= M + 1.
func (s *Session) plenaryExclusivity(slot int) {
	name := fmt.Sprintf("PLENARY_EXCLUSIVITY_%d", slot)
	c := s.Problem.AddConstraint(name)
	m := s.Options.BigM
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		coef := 1.0
		if talk.Plenary {
			coef += m
		}
		for _, vid := range venueIDs(s.Loaded.Venues) {
			c.AddTerm(coef, s.active(slot, talk.ID, vid))
		}
	}
	c.LessOrEqualTo(m + 1)
}

// attendAvailability: ATTEND_AVAILABILITY_{t}_{s}_{p}: ATTEND_AT(s,t,p) <=
// Σ_v ACTIVE(s,t,v).
func (s *Session) attendAvailability(talk *domain.Talk, slot int, person *domain.Person) {
	name := fmt.Sprintf("ATTEND_AVAILABILITY_%d_%d_%d", talk.ID, slot, person.ID)
	c := s.Problem.AddConstraint(name).AddTerm(1, s.attendAt(slot, talk.ID, person.ID))
	for _, vid := range venueIDs(s.Loaded.Venues) {
		c.AddTerm(-1, s.active(slot, talk.ID, vid))
	}
	c.LessOrEqualTo(0)
}

// personAvailability: PERSON_AVAILABILITY_{p}: zero-sum of ATTEND_AT over
// slots the person isn't available in.
func (s *Session) personAvailability(person *domain.Person) {
	name := fmt.Sprintf("PERSON_AVAILABILITY_%d", person.ID)
	c := s.Problem.AddConstraint(name)
	for _, slot := range s.Loaded.SlotsAvailable {
		if containsInt(person.Slots, slot) {
			continue
		}
		for i := range s.Loaded.Talks {
			c.AddTerm(1, s.attendAt(slot, s.Loaded.Talks[i].ID, person.ID))
		}
	}
	c.EqualTo(0)
}

// attendFullTalk (meetup(t)=0 only): ATTEND_FULL_TALK_{t}_{p}:
// Σ_{s∈talk.slots} ATTEND_AT(s,t,p) = duration(t)·ATTEND(t,p).
func (s *Session) attendFullTalk(talk *domain.Talk) {
	if talk.Meetup {
		return
	}
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		name := fmt.Sprintf("ATTEND_FULL_TALK_%d_%d", talk.ID, person.ID)
		c := s.Problem.AddConstraint(name)
		for _, slot := range talk.Slots {
			c.AddTerm(1, s.attendAt(slot, talk.ID, person.ID))
		}
		c.AddTerm(-float64(talk.Duration), s.attend(talk.ID, person.ID))
		c.EqualTo(0)
	}
}

// speakerAttendsWhole: SPEAKER_ATTENDS_WHOLE_{t}_{p}: Σ_{s∈talk.slots}
// ATTEND_AT(s,t,p) = duration(t), for each speaker p of t.
func (s *Session) speakerAttendsWhole(talk *domain.Talk) {
	for _, speakerID := range talk.Speakers {
		name := fmt.Sprintf("SPEAKER_ATTENDS_WHOLE_%d_%d", talk.ID, speakerID)
		c := s.Problem.AddConstraint(name)
		for _, slot := range talk.Slots {
			c.AddTerm(1, s.attendAt(slot, talk.ID, speakerID))
		}
		c.EqualTo(float64(talk.Duration))
	}
}

// speakerAttends: SPEAKER_ATTENDS_{t}_{p}: ATTEND(t,p) = 1, for each speaker.
func (s *Session) speakerAttends(talk *domain.Talk) {
	for _, speakerID := range talk.Speakers {
		name := fmt.Sprintf("SPEAKER_ATTENDS_%d_%d", talk.ID, speakerID)
		s.Problem.AddConstraint(name).AddTerm(1, s.attend(talk.ID, speakerID)).EqualTo(1)
	}
}

// irlOnly: IRL_ONLY_{t}_{p} (if irl_only(t)=1 and person.attending=0):
// ATTEND(t,p) = 0.
func (s *Session) irlOnly(talk *domain.Talk) {
	if !talk.IrlOnly {
		return
	}
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		if person.Attending != 0 {
			continue
		}
		name := fmt.Sprintf("IRL_ONLY_%d_%d", talk.ID, person.ID)
		s.Problem.AddConstraint(name).AddTerm(1, s.attend(talk.ID, person.ID)).EqualTo(0)
	}
}

// inviteOnly: INVITE_ONLY_{t}_{p} (if invite_only(t)=1 and p.preferences[t]=0):
// ATTEND(t,p) = 0.
func (s *Session) inviteOnly(talk *domain.Talk) {
	if !talk.InviteOnly {
		return
	}
	for j := range s.Loaded.People {
		person := &s.Loaded.People[j]
		if person.Preferences[talk.ID] != 0 {
			continue
		}
		name := fmt.Sprintf("INVITE_ONLY_%d_%d", talk.ID, person.ID)
		s.Problem.AddConstraint(name).AddTerm(1, s.attend(talk.ID, person.ID)).EqualTo(0)
	}
}

// noSpeakerConflicts: NO_SPEAKER_CONFLICTS_{p}_{s} (only when a speaker has
// more than one talk): Σ over their talks and venues ACTIVE(s,t,v) <= 1.
func (s *Session) noSpeakerConflicts() {
	for speakerID, conflicts := range s.Loaded.TalksBySpeaker {
		if len(conflicts) <= 1 {
			continue
		}
		for _, slot := range s.Loaded.SlotsAvailable {
			name := fmt.Sprintf("NO_SPEAKER_CONFLICTS_%d_%d", speakerID, slot)
			c := s.Problem.AddConstraint(name)
			for _, talkID := range conflicts {
				for _, vid := range venueIDs(s.Loaded.Venues) {
					c.AddTerm(1, s.active(slot, talkID, vid))
				}
			}
			c.LessOrEqualTo(1)
		}
	}
}

// prereq: PREREQS_{t2}_{t1}: start(t2) - start(t1) >= duration(t1).
func (s *Session) prereq(talk2 *domain.Talk, t1id int) {
	talk1 := s.Loaded.TalksByID[t1id]
	if talk1 == nil {
		return
	}
	name := fmt.Sprintf("PREREQS_%d_%d", talk2.ID, t1id)
	c := s.Problem.AddConstraint(name)
	s.startExpr(c, talk2.ID, 1)
	s.startExpr(c, t1id, -1)
	c.GreaterOrEqualTo(float64(talk1.Duration))

	if !talk2.Rest || !talk1.Rest {
		return
	}
	minName := fmt.Sprintf("REST_MIN_SPACING_%d_%d", talk2.ID, t1id)
	minC := s.Problem.AddConstraint(minName)
	s.startExpr(minC, talk2.ID, 1)
	s.startExpr(minC, t1id, -1)
	minC.GreaterOrEqualTo(float64(talk1.Duration + restMinSpacingSlots))

	maxName := fmt.Sprintf("REST_MAX_SPACING_%d_%d", talk2.ID, t1id)
	maxC := s.Problem.AddConstraint(maxName)
	s.startExpr(maxC, talk2.ID, 1)
	s.startExpr(maxC, t1id, -1)
	maxC.LessOrEqualTo(float64(talk1.Duration + restMaxSpacingSlots))
}

// restAdjacency builds the BEFORE_REST/AFTER_REST big-M encoding shared by
// beforeRest and afterRest: when t is active at slot in venueID, the
// adjacent slot must hold either t itself or some rest talk (in any venue);
// if it holds neither, the row cannot be satisfied, so t may not be active
// at slot.
func (s *Session) restAdjacency(name string, talk *domain.Talk, slot, venueID, adjacent int) {
	c := s.Problem.AddConstraint(name).AddTerm(s.Options.BigM, s.active(slot, talk.ID, venueID))
	for i := range s.Loaded.Talks {
		other := &s.Loaded.Talks[i]
		if other.Rest || other.ID == talk.ID {
			continue
		}
		c.AddTerm(1, s.active(adjacent, other.ID, venueID))
	}
	c.AddTerm(-1, s.active(adjacent, talk.ID, venueID))
	for i := range s.Loaded.Talks {
		other := &s.Loaded.Talks[i]
		if !other.Rest {
			continue
		}
		for _, vid2 := range venueIDs(s.Loaded.Venues) {
			c.AddTerm(-1, s.active(adjacent, other.ID, vid2))
		}
	}
	c.LessOrEqualTo(s.Options.BigM - 1)
}

// beforeRest: BEFORE_REST_{t}_{s}_{v}, if before_rest(t)=1.
func (s *Session) beforeRest(talk *domain.Talk) {
	if !talk.BeforeRest {
		return
	}
	for _, slot := range s.Loaded.SlotsAvailable {
		for _, vid := range venueIDs(s.Loaded.Venues) {
			name := fmt.Sprintf("BEFORE_REST_%d_%d_%d", talk.ID, slot, vid)
			s.restAdjacency(name, talk, slot, vid, slot+1)
		}
	}
}

// afterRest: AFTER_REST_{t}_{s}_{v}, if after_rest(t)=1. Uses after_rest
// (not before_rest) consistently.
func (s *Session) afterRest(talk *domain.Talk) {
	if !talk.AfterRest {
		return
	}
	for _, slot := range s.Loaded.SlotsAvailable {
		for _, vid := range venueIDs(s.Loaded.Venues) {
			name := fmt.Sprintf("AFTER_REST_%d_%d_%d", talk.ID, slot, vid)
			s.restAdjacency(name, talk, slot, vid, slot-1)
		}
	}
}

// distanceAndAdjacency emits the definitional distance/adjacency auxiliary
// constraints (DISTANCE_C, ABS_DISTANCE_12/21_C, ADJACENT_OR_BEFORE_C,
// ADJACENT_C/C2) over every ordered pair of talks and every venue.
func (s *Session) distanceAndAdjacency() {
	bigM := s.Options.BigM
	for i := range s.Loaded.Talks {
		talk1 := &s.Loaded.Talks[i]
		for j := range s.Loaded.Talks {
			talk2 := &s.Loaded.Talks[j]

			distName := fmt.Sprintf("DISTANCE_C_%d_%d", talk2.ID, talk1.ID)
			distC := s.Problem.AddConstraint(distName)
			s.startExpr(distC, talk2.ID, 1)
			s.startExpr(distC, talk1.ID, -1)
			distC.AddTerm(-1, s.distance(talk1.ID, talk2.ID))
			distC.EqualTo(0)

			abs12Name := fmt.Sprintf("ABS_DISTANCE_12_C_%d_%d", talk2.ID, talk1.ID)
			s.Problem.AddConstraint(abs12Name).
				AddTerm(-1, s.distance(talk1.ID, talk2.ID)).
				AddTerm(1, s.absDistance(talk1.ID, talk2.ID)).
				GreaterOrEqualTo(0)

			abs21Name := fmt.Sprintf("ABS_DISTANCE_21_C_%d_%d", talk2.ID, talk1.ID)
			s.Problem.AddConstraint(abs21Name).
				AddTerm(-1, s.distance(talk2.ID, talk1.ID)).
				AddTerm(1, s.absDistance(talk1.ID, talk2.ID)).
				GreaterOrEqualTo(0)

			for _, vid := range venueIDs(s.Loaded.Venues) {
				adjobName := fmt.Sprintf("ADJACENT_OR_BEFORE_C_%d_%d_%d", talk2.ID, talk1.ID, vid)
				adjobC := s.Problem.AddConstraint(adjobName)
				s.startExpr(adjobC, talk2.ID, 1)
				s.startExpr(adjobC, talk1.ID, -1)
				adjobC.AddTerm(3*bigM, s.adjacentOrBefore(talk1.ID, talk2.ID, vid))
				for _, slot := range s.Loaded.SlotsAvailable {
					adjobC.AddTerm(-bigM, s.start(slot, talk1.ID, vid))
					adjobC.AddTerm(-bigM, s.start(slot, talk2.ID, vid))
				}
				adjobC.LessOrEqualTo(bigM + float64(talk1.Duration))

				adjName := fmt.Sprintf("ADJACENT_C_%d_%d_%d", talk1.ID, talk2.ID, vid)
				s.Problem.AddConstraint(adjName).
					AddTerm(1, s.adjacentOrBefore(talk1.ID, talk2.ID, vid)).
					AddTerm(1, s.adjacentOrBefore(talk2.ID, talk1.ID, vid)).
					AddTerm(-1, s.adjacent(talk1.ID, talk2.ID, vid)).
					LessOrEqualTo(1)

				adj2Name := fmt.Sprintf("ADJACENT_C2_%d_%d_%d", talk1.ID, talk2.ID, vid)
				s.Problem.AddConstraint(adj2Name).
					AddTerm(1, s.adjacentOrBefore(talk1.ID, talk2.ID, vid)).
					AddTerm(1, s.adjacentOrBefore(talk2.ID, talk1.ID, vid)).
					AddTerm(-2, s.adjacent(talk1.ID, talk2.ID, vid)).
					GreaterOrEqualTo(0)
			}
		}
	}
}
