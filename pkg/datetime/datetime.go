// Package datetime holds the wire format shared by the main and stats services.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the "yyyy-MM-dd HH:mm:ss" format used in every JSON body and query string.
const Layout = "2006-01-02 15:04:05"

// DateTime marshals as Layout in local time.
type DateTime struct {
	time.Time
}

func New(t time.Time) DateTime {
	return DateTime{Time: t}
}

func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q, expected %s", s, Layout)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + Format(d.Time) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid datetime %s", s)
	}
	t, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns nil for nil input, used for nullable columns such as published_on.
func Ptr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	d := New(*t)
	return &d
}
