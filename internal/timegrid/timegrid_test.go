package timegrid

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

func TestNumSlots(t *testing.T) {
	t0 := mustParse(t, "2026-07-31T09:00:00Z")

	cases := []struct {
		end  string
		want int
	}{
		{"2026-07-31T09:30:00Z", 6},
		{"2026-07-31T09:31:00Z", 7},
		{"2026-07-31T09:00:00Z", 0},
	}
	for _, c := range cases {
		got := NumSlots(t0, mustParse(t, c.end))
		if got != c.want {
			t.Errorf("NumSlots(%s) = %d, want %d", c.end, got, c.want)
		}
	}
}

func TestCalculateSlots(t *testing.T) {
	eventStart := mustParse(t, "2026-07-31T09:00:00Z")
	rangeStart := mustParse(t, "2026-07-31T09:10:00Z")
	rangeEnd := mustParse(t, "2026-07-31T09:40:00Z")

	slots := CalculateSlots(eventStart, rangeStart, rangeEnd, 2)
	want := []int{2, 3, 4, 5, 6, 7, 8, 9}
	if len(slots) != len(want) {
		t.Fatalf("len(slots) = %d, want %d (%v)", len(slots), len(want), slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slots[%d] = %d, want %d", i, slots[i], want[i])
		}
	}
}

func TestSlotToTime(t *testing.T) {
	eventStart := mustParse(t, "2026-07-31T09:00:00Z")
	got := SlotToTime(eventStart, 6)
	want := mustParse(t, "2026-07-31T09:30:00Z")
	if !got.Equal(want) {
		t.Errorf("SlotToTime = %v, want %v", got, want)
	}
}
