// Package loader translates a JSON descriptor into the typed domain records
// and derived indexes used by the rest of the scheduling model.
package loader

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
	"github.com/Language-Creation-Society/slotmachine/internal/timegrid"
)

// Result holds everything Load derives from a descriptor: the domain
// records themselves plus the indexes the rest of the model requires,
// built once, up front, and treated as immutable thereafter.
type Result struct {
	EventStart time.Time

	// Descriptor is the original parsed input, kept so the result projector
	// can write slot/time/venue/attendee annotations back onto the same
	// TalkJSON records it was loaded from.
	Descriptor *models.Descriptor

	Languages []domain.Language
	Venues    []domain.Venue
	People    []domain.Person
	Talks     []domain.Talk

	TalksByID    map[int]*domain.Talk
	PeopleByID   map[int]*domain.Person
	PeopleByName map[string]*domain.Person
	VenuesByID   map[int]*domain.Venue

	TalksBySpeaker  map[int][]int // person ID -> talk IDs
	TalkPermissions map[int]domain.Permission

	SlotsAvailable []int
}

// Load parses a descriptor into typed domain records, in descriptor order,
// and builds the derived indexes. Variable/constraint creation order later
// depends on this order being stable. defaultSpacingSlots is the run-wide
// spacing applied to any talk that does not set its own spacing_slots.
func Load(d *models.Descriptor, defaultSpacingSlots int) (*Result, error) {
	if len(d.Talks) == 0 {
		return nil, &domain.BadDescriptorError{Reason: "descriptor has no talks"}
	}

	eventStart, err := findEventStart(d.Talks)
	if err != nil {
		return nil, err
	}

	res := &Result{
		EventStart:      eventStart,
		Descriptor:      d,
		TalksByID:       make(map[int]*domain.Talk),
		PeopleByID:      make(map[int]*domain.Person),
		PeopleByName:    make(map[string]*domain.Person),
		VenuesByID:      make(map[int]*domain.Venue),
		TalksBySpeaker:  make(map[int][]int),
		TalkPermissions: make(map[int]domain.Permission),
	}

	for _, l := range d.Languages {
		res.Languages = append(res.Languages, domain.Language{ID: l.ID, Name: l.Name})
	}

	for _, v := range d.Venues {
		venue := domain.Venue{
			ID:       v.ID,
			Name:     v.Name,
			Capacity: v.Capacity,
			Slots:    slotsFromRanges(eventStart, v.TimeRanges, 0),
		}
		res.Venues = append(res.Venues, venue)
	}
	for i := range res.Venues {
		res.VenuesByID[res.Venues[i].ID] = &res.Venues[i]
	}

	peopleByName := make(map[string]int) // name -> id, for speaker resolution
	for _, p := range d.People {
		person := domain.Person{
			ID:             p.ID,
			Name:           p.Name,
			Slots:          slotsFromRanges(eventStart, p.TimeRanges, 0),
			PreferredSlots: slotsFromRanges(eventStart, p.PreferredTimeRanges, 0),
			Preferences:    preferencesFromJSON(p.Preferences),
			Attending:      p.Attending,
			Languages:      p.Languages,
		}
		res.People = append(res.People, person)
		peopleByName[p.Name] = p.ID
	}
	for i := range res.People {
		res.PeopleByID[res.People[i].ID] = &res.People[i]
		res.PeopleByName[res.People[i].Name] = &res.People[i]
	}

	validVenueIDs := make(map[int]bool)
	for _, v := range d.Venues {
		validVenueIDs[v.ID] = true
	}

	for _, t := range d.Talks {
		if len(t.TimeRanges) == 0 {
			return nil, &domain.BadDescriptorError{Reason: fmt.Sprintf("talk %d has no time_ranges", t.ID)}
		}
		for _, vid := range t.ValidVenues {
			if !validVenueIDs[vid] {
				return nil, &domain.BadDescriptorError{Reason: fmt.Sprintf("talk %d references unknown venue %d", t.ID, vid)}
			}
		}

		speakerIDs := make([]int, 0, len(t.Speakers))
		for _, name := range t.Speakers {
			pid, ok := peopleByName[name]
			if !ok {
				return nil, &domain.BadDescriptorError{Reason: fmt.Sprintf("talk %d references unknown speaker %q", t.ID, name)}
			}
			speakerIDs = append(speakerIDs, pid)
		}

		spacing := defaultSpacingSlots
		if t.SpacingSlots != nil {
			spacing = *t.SpacingSlots
		}
		durationSlots := durationToSlots(t.Duration) + spacing
		talk := domain.Talk{
			ID:              t.ID,
			Duration:        durationSlots,
			Durations:       t.Durations,
			Slots:           slotsFromRanges(eventStart, t.TimeRanges, spacing),
			Venues:          append([]int(nil), t.ValidVenues...),
			PreferredSlots:  slotsFromRanges(eventStart, t.PreferredTimeRanges, 0),
			PreferredVenues: append([]int(nil), t.PreferredVenues...),
			Speakers:        speakerIDs,
			Plenary:         t.Plenary,
			IrlOnly:         t.IrlOnly,
			InviteOnly:      t.InviteOnly,
			Meetup:          t.Meetup,
			Rest:            t.Rest,
			BeforeRest:      t.BeforeRest,
			AfterRest:       t.AfterRest,
			Prereqs:         append([]int(nil), t.Prereqs...),
			Similarities:    similaritiesFromJSON(t.Similarities),
			Languages:       t.Languages,
		}
		res.Talks = append(res.Talks, talk)
	}
	for i := range res.Talks {
		t := &res.Talks[i]
		res.TalksByID[t.ID] = t
		res.TalkPermissions[t.ID] = domain.Permission{Slots: t.Slots, Venues: t.Venues}
		for _, sp := range t.Speakers {
			res.TalksBySpeaker[sp] = append(res.TalksBySpeaker[sp], t.ID)
		}
	}

	for talkID, prereqs := range prereqsByTalk(res.Talks) {
		for _, pid := range prereqs {
			if _, ok := res.TalksByID[pid]; !ok {
				return nil, &domain.BadDescriptorError{Reason: fmt.Sprintf("talk %d references unknown prereq %d", talkID, pid)}
			}
		}
	}

	slotSet := make(map[int]bool)
	for _, t := range res.Talks {
		for _, s := range t.Slots {
			slotSet[s] = true
		}
	}
	res.SlotsAvailable = maps.Keys(slotSet)
	slices.Sort(res.SlotsAvailable)

	return res, nil
}

func prereqsByTalk(talks []domain.Talk) map[int][]int {
	m := make(map[int][]int, len(talks))
	for _, t := range talks {
		m[t.ID] = t.Prereqs
	}
	return m
}

func durationToSlots(minutes int) int {
	d := time.Duration(minutes) * time.Minute
	n := d.Minutes() / 5
	whole := int(n)
	if float64(whole) < n {
		whole++
	}
	return whole
}

func slotsFromRanges(eventStart time.Time, ranges []models.TimeRangeJSON, spacing int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range ranges {
		for _, s := range timegrid.CalculateSlots(eventStart, r.Start.Time, r.End.Time, spacing) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	slices.Sort(out)
	return out
}

func preferencesFromJSON(m map[string]int) map[int]int {
	if m == nil {
		return nil
	}
	out := make(map[int]int, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

func similaritiesFromJSON(m map[string]int) map[int]int {
	return preferencesFromJSON(m)
}

// findEventStart derives event_start as the minimum of every talk's
// time_ranges[*].start.
func findEventStart(talks []models.TalkJSON) (time.Time, error) {
	var start time.Time
	found := false
	for _, t := range talks {
		for _, r := range t.TimeRanges {
			if !found || r.Start.Time.Before(start) {
				start = r.Start.Time
				found = true
			}
		}
	}
	if !found {
		return time.Time{}, &domain.BadDescriptorError{Reason: "no talk has a time_ranges entry to derive event_start from"}
	}
	return start, nil
}
