package scheduler

// buildObjective sums the six weighted linear terms into the coefficients
// of the variables already created by buildConstraints. Terms reference the
// iterated talk/slot/person in every loop rather than a stale outer-scope
// variable, so each preference term varies correctly across iterations.
func (s *Session) buildObjective() {
	s.objectiveAdjacencySimilarity()
	s.objectiveAttendMore()
	s.objectivePreferences()
	s.objectiveSpeakerPreferredSlots()
	s.objectivePreferredVenues()
	s.objectivePreferredSlots()
}

// objectiveAdjacencySimilarity: 10 · Σ_{t1,t2,v} ADJACENT(t1,t2,v) ·
// max(sim(t1,t2), sim(t2,t1)).
func (s *Session) objectiveAdjacencySimilarity() {
	for i := range s.Loaded.Talks {
		talk1 := &s.Loaded.Talks[i]
		for j := range s.Loaded.Talks {
			talk2 := &s.Loaded.Talks[j]
			sim := talk1.Similarities[talk2.ID]
			if other := talk2.Similarities[talk1.ID]; other > sim {
				sim = other
			}
			if sim == 0 {
				continue
			}
			for _, vid := range venueIDs(s.Loaded.Venues) {
				s.adjacent(talk1.ID, talk2.ID, vid).AddCoefficient(10 * float64(sim))
			}
		}
	}
}

// objectiveAttendMore: 1 · Σ_{s,t,p} ATTEND_AT(s,t,p).
func (s *Session) objectiveAttendMore() {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for j := range s.Loaded.People {
			person := &s.Loaded.People[j]
			for _, slot := range s.Loaded.SlotsAvailable {
				s.attendAt(slot, talk.ID, person.ID).AddCoefficient(1)
			}
		}
	}
}

// objectivePreferences: 10 · Σ_{s,t,p} ATTEND_AT(s,t,p) · w_pref(s,t,p),
// with pref(p,t) = person.preferences[t] if defined else 0 when meetup(t)
// else 1, and w_pref = pref·(1 + (0 if invite_only(t) else 1) +
// 𝟙[s∈preferred_slots(p)]) / 14.
func (s *Session) objectivePreferences() {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for j := range s.Loaded.People {
			person := &s.Loaded.People[j]
			pref, defined := person.Preferences[talk.ID]
			if !defined {
				if talk.Meetup {
					pref = 0
				} else {
					pref = 1
				}
			}
			if pref == 0 {
				continue
			}
			inviteBonus := 1.0
			if talk.InviteOnly {
				inviteBonus = 0
			}
			for _, slot := range s.Loaded.SlotsAvailable {
				preferredSlotBonus := 0.0
				if containsInt(person.PreferredSlots, slot) {
					preferredSlotBonus = 1
				}
				weight := float64(pref) * (1 + inviteBonus + preferredSlotBonus) / 14
				if weight == 0 {
					continue
				}
				s.attendAt(slot, talk.ID, person.ID).AddCoefficient(10 * weight)
			}
		}
	}
}

// objectiveSpeakerPreferredSlots: 5 · Σ_{s,t,v} ACTIVE(s,t,v) for s in the
// union of preferred_slots over t's speakers.
func (s *Session) objectiveSpeakerPreferredSlots() {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for _, speakerID := range talk.Speakers {
			speaker := s.Loaded.PeopleByID[speakerID]
			if speaker == nil {
				continue
			}
			for _, slot := range speaker.PreferredSlots {
				for _, vid := range venueIDs(s.Loaded.Venues) {
					s.active(slot, talk.ID, vid).AddCoefficient(5)
				}
			}
		}
	}
}

// objectivePreferredVenues: 5 · Σ_{s,t,v} ACTIVE(s,t,v) for v in
// preferred_venues(t).
func (s *Session) objectivePreferredVenues() {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for _, vid := range talk.PreferredVenues {
			for _, slot := range s.Loaded.SlotsAvailable {
				s.active(slot, talk.ID, vid).AddCoefficient(5)
			}
		}
	}
}

// objectivePreferredSlots: 10 · Σ_{s,t,v} ACTIVE(s,t,v) for s in
// preferred_slots(t).
func (s *Session) objectivePreferredSlots() {
	for i := range s.Loaded.Talks {
		talk := &s.Loaded.Talks[i]
		for _, slot := range talk.PreferredSlots {
			for _, vid := range venueIDs(s.Loaded.Venues) {
				s.active(slot, talk.ID, vid).AddCoefficient(10)
			}
		}
	}
}
