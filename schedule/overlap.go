// Package schedule decides whether a candidate offering's weekly meetings
// collide with the student's current enrollments in the same term, gates
// enrollment on term and offering status, and lays out the weekly timetable.
package schedule

import (
	"strconv"
	"strings"

	"github.com/jrsteele09/go-course-client/catalog"
)

type Weekday int

const (
	InvalidDay Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

func (d Weekday) String() string {
	if !d.Valid() {
		return "INVALID"
	}
	return weekdayNames[d]
}

// Short is the three letter label, e.g. "Mon".
func (d Weekday) Short() string {
	if !d.Valid() {
		return "???"
	}
	name := weekdayNames[d]
	return name[:1] + strings.ToLower(name[1:3])
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// ParseWeekday matches the full English day name case-insensitively. Anything
// else is InvalidDay, which never matches another day.
func ParseWeekday(s string) Weekday {
	name := strings.ToUpper(strings.TrimSpace(s))
	for d := Monday; d <= Sunday; d++ {
		if weekdayNames[d] == name {
			return d
		}
	}
	return InvalidDay
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are ignored.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}
	if hour == 24 && minute != 0 {
		return 0, false
	}
	return hour*60 + minute, true
}

// Interval is a meeting block resolved to a day and a half-open
// [Start, End) range of minutes.
type Interval struct {
	Day   Weekday
	Start int
	End   int
}

// Resolve parses a block. It is not ok when the day is unknown or either time
// is missing or malformed.
func Resolve(b catalog.MeetingBlock) (Interval, bool) {
	day := ParseWeekday(b.DayOfWeek)
	if !day.Valid() {
		return Interval{}, false
	}
	start, ok := ParseClock(b.StartTime)
	if !ok {
		return Interval{}, false
	}
	end, ok := ParseClock(b.EndTime)
	if !ok {
		return Interval{}, false
	}
	return Interval{Day: day, Start: start, End: end}, true
}

// Overlaps reports whether two blocks meet on the same day at intersecting
// times. Touching endpoints do not overlap.
func Overlaps(a, b catalog.MeetingBlock) bool {
	ia, ok := Resolve(a)
	if !ok {
		return false
	}
	ib, ok := Resolve(b)
	if !ok {
		return false
	}
	if ia.Day != ib.Day {
		return false
	}
	return max(ia.Start, ib.Start) < min(ia.End, ib.End)
}

// SameTerm compares term identity by id when both sides have one, otherwise
// by code when both sides have one. Anything else is a different term.
func SameTerm(a, b catalog.TermRef) bool {
	if !a.ID.Empty() && !b.ID.Empty() {
		return a.ID == b.ID
	}
	if a.Code != "" && b.Code != "" {
		return strings.EqualFold(a.Code, b.Code)
	}
	return false
}
