package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// flexibleLayouts lists the layouts a permissive time reader tries in
// sequence, extended with a couple of the plain date/time shapes a
// hand-edited descriptor is likely to carry.
var flexibleLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FlexibleTime unmarshals any of flexibleLayouts and always marshals back out
// in RFC3339 UTC, the shape required by the descriptor's output contract.
type FlexibleTime struct {
	time.Time
}

func (ft *FlexibleTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		ft.Time = time.Time{}
		return nil
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}
	return fmt.Errorf("models: unable to parse time %q", s)
}

func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time.UTC().Format("2006-01-02T15:04:05Z"))
}

// NewFlexibleTime wraps a time.Time in UTC.
func NewFlexibleTime(t time.Time) FlexibleTime {
	return FlexibleTime{Time: t.UTC()}
}
