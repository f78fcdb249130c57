package shared

import (
	"strings"
	"time"
)

// DateTimeLayout is the timestamp format used by the web client
const DateTimeLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	time.DateOnly,
	"2006/01/02",
}

// ParseTime accepts the client timestamp format, RFC 3339 and bare dates.
// Values without a zone are read in local time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError("时间格式不正确: %q，应为 yyyy-MM-dd HH:mm:ss", s)
}

// ParseTimeRange parses an optional start/end pair; blank values give nil
func ParseTimeRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if strings.TrimSpace(start) != "" {
		t, err := ParseTime(start)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := ParseTime(end)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, NewValidationError("结束时间不能早于开始时间")
	}
	return from, to, nil
}

// DateTime is a time.Time that unmarshals from any format ParseTime accepts
// and marshals in DateTimeLayout
type DateTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. null and "" leave the zero time.
func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateTimeLayout) + `"`), nil
}
