package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts seen in FIDS payloads. Offset-bearing layouts come first.
var (
	zonedLayouts = []string{
		"2006-01-02 15:04Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05Z07:00",
		time.RFC3339,
	}
	naiveLayouts = []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
)

// timestamp is a feed time that arrives either as a bare string or as an
// object with "local" and "utc" renderings. zoneKnown is false when the
// text carried no UTC offset; the value is then a wall-clock reading.
type timestamp struct {
	t         time.Time
	zoneKnown bool
}

func (ts timestamp) IsZero() bool { return ts.t.IsZero() }

func (ts *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return ts.parse(s)
	}
	var obj struct {
		Local string `json:"local"`
		UTC   string `json:"utc"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Local != "" {
		return ts.parse(obj.Local)
	}
	return ts.parse(obj.UTC)
}

func (ts *timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*ts = timestamp{}
		return nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = timestamp{t: t, zoneKnown: true}
			return nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = timestamp{t: t}
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}
