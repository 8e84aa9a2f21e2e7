package loader

import (
	"testing"

	"github.com/Language-Creation-Society/slotmachine/internal/models"
)

func timeRange(start, end string) models.TimeRangeJSON {
	var r models.TimeRangeJSON
	if err := r.Start.UnmarshalJSON([]byte(`"` + start + `"`)); err != nil {
		panic(err)
	}
	if err := r.End.UnmarshalJSON([]byte(`"` + end + `"`)); err != nil {
		panic(err)
	}
	return r
}

func simpleDescriptor() *models.Descriptor {
	return &models.Descriptor{
		Venues: []models.VenueJSON{
			{ID: 1, Name: "Main Hall", Capacity: 100, TimeRanges: []models.TimeRangeJSON{timeRange("2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		People: []models.PersonJSON{
			{ID: 1, Name: "Alice", Attending: 1, TimeRanges: []models.TimeRangeJSON{timeRange("2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")}},
		},
		Talks: []models.TalkJSON{
			{
				ID:          1,
				Duration:    30,
				ValidVenues: []int{1},
				TimeRanges:  []models.TimeRangeJSON{timeRange("2026-07-31T09:00:00Z", "2026-07-31T10:00:00Z")},
				Speakers:    []string{"Alice"},
			},
		},
	}
}

func TestLoadBasic(t *testing.T) {
	res, err := Load(simpleDescriptor(), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Talks) != 1 {
		t.Fatalf("len(Talks) = %d, want 1", len(res.Talks))
	}
	if res.Talks[0].Duration != 6 {
		t.Errorf("Duration = %d, want 6", res.Talks[0].Duration)
	}
	if len(res.Talks[0].Speakers) != 1 || res.Talks[0].Speakers[0] != 1 {
		t.Errorf("Speakers = %v, want [1]", res.Talks[0].Speakers)
	}
	if _, ok := res.TalksBySpeaker[1]; !ok {
		t.Errorf("TalksBySpeaker missing person 1")
	}
	if len(res.SlotsAvailable) == 0 {
		t.Errorf("SlotsAvailable is empty")
	}
}

func TestLoadUnknownSpeaker(t *testing.T) {
	d := simpleDescriptor()
	d.Talks[0].Speakers = []string{"Nobody"}
	_, err := Load(d, 0)
	if err == nil {
		t.Fatal("expected BadDescriptor error for unknown speaker")
	}
}

func TestLoadUnknownVenue(t *testing.T) {
	d := simpleDescriptor()
	d.Talks[0].ValidVenues = []int{99}
	_, err := Load(d, 0)
	if err == nil {
		t.Fatal("expected BadDescriptor error for unknown venue")
	}
}

func TestLoadNoTimeRanges(t *testing.T) {
	d := simpleDescriptor()
	d.Talks[0].TimeRanges = nil
	_, err := Load(d, 0)
	if err == nil {
		t.Fatal("expected BadDescriptor error for missing time_ranges")
	}
}
