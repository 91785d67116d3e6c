// Package clock converts absolute instants to a fixed-offset local calendar.
//
// Every calendar computation in the dashboard (week and month starts, week
// ranges, day buckets, date labels) goes through a single Clock so that the
// week boundary and the day classification always agree on the anchor.
package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day keys used for the weekly table, indexed by time.Weekday.
var dayKeys = [7]string{"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado"}

// Long pt-BR weekday names stored on entries, indexed by time.Weekday.
var dayNames = [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

const dateLayout = "2006-01-02"

var ErrUnknownWeekday = errors.New("unknown weekday")

type Clock struct {
	offsetMinutes int
	zone          *time.Location
	weekStart     time.Weekday
	now           func() time.Time
}

type Option func(*Clock)

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWeekStart sets the weekday a week begins on (default Monday).
func WithWeekStart(d time.Weekday) Option {
	return func(c *Clock) {
		c.weekStart = d
	}
}

// New returns a Clock for a fixed offset east of UTC in minutes
// (Brazil is -180). The host timezone is never consulted.
func New(offsetMinutes int, opts ...Option) *Clock {
	c := &Clock{
		offsetMinutes: offsetMinutes,
		zone:          time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60),
		weekStart:     time.Monday,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func zoneName(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

func (c *Clock) Now() time.Time { return c.now() }

func (c *Clock) OffsetMinutes() int { return c.offsetMinutes }

func (c *Clock) WeekStart() time.Weekday { return c.weekStart }

// Location returns the fixed zone used for calendar fields.
func (c *Clock) Location() *time.Location { return c.zone }

// Local returns t expressed in the fixed zone.
func (c *Clock) Local(t time.Time) time.Time {
	return t.In(c.zone)
}

// Weekday numbers local days with Monday=0 through Sunday=6.
func (c *Clock) Weekday(t time.Time) int {
	return (int(c.Local(t).Weekday()) + 6) % 7
}

// Midnight returns local 00:00 of the day containing t.
func (c *Clock) Midnight(t time.Time) time.Time {
	y, m, d := c.Local(t).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.zone)
}

// StartOfWeek returns local 00:00 of the most recent week-start day,
// evaluated against the current time.
func (c *Clock) StartOfWeek() time.Time {
	return c.weekStartOf(c.now())
}

// StartOfMonth returns local 00:00 of day 1 of the current month.
func (c *Clock) StartOfMonth() time.Time {
	y, m, _ := c.Local(c.now()).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, c.zone)
}

// WeekRange returns the half-open week [start, end) containing t.
func (c *Clock) WeekRange(t time.Time) (start, end time.Time) {
	start = c.weekStartOf(t)
	return start, start.AddDate(0, 0, 7)
}

func (c *Clock) weekStartOf(t time.Time) time.Time {
	day := c.Midnight(t)
	back := (int(day.Weekday()) - int(c.weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// DayKey classifies t into its local weekday bucket key.
func (c *Clock) DayKey(t time.Time) string {
	return dayKeys[c.Local(t).Weekday()]
}

// DayKeys lists all seven bucket keys starting at the week-start day.
func (c *Clock) DayKeys() []string {
	keys := make([]string, 0, len(dayKeys))
	for i := 0; i < len(dayKeys); i++ {
		keys = append(keys, dayKeys[(int(c.weekStart)+i)%len(dayKeys)])
	}
	return keys
}

// DateLabel formats the local calendar day of t as YYYY-MM-DD.
func (c *Clock) DateLabel(t time.Time) string {
	return c.Local(t).Format(dateLayout)
}

// DayName returns the pt-BR long weekday name of t, e.g. "terça-feira".
func (c *Clock) DayName(t time.Time) string {
	return dayNames[c.Local(t).Weekday()]
}

// ParseDate interprets YYYY-MM-DD as local midnight.
func (c *Clock) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), c.zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Millis converts t to Unix milliseconds, the unit persisted in documents.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ParseWeekday maps a bucket key (accents optional) or an English weekday
// name to a time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("ç", "c", "á", "a", "-feira", "").Replace(v)
	for i, k := range dayKeys {
		if v == k || v == strings.ToLower(time.Weekday(i).String()) {
			return time.Weekday(i), nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// IsDayKey reports whether s is one of the seven bucket keys.
func IsDayKey(s string) bool {
	for _, k := range dayKeys {
		if k == s {
			return true
		}
	}
	return false
}
