package schedule

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/pkg/errors"
)

const (
	dayStartMinute = 7 * 60
	dayEndMinute   = 20 * 60
)

// Event is one meeting of an enrolled offering on the weekly timetable.
type Event struct {
	OfferingID catalog.ID
	Day        Weekday
	Start      int
	End        int
	Code       string
	Label      string
	Location   string
	Section    string
}

func (e Event) String() string {
	location := e.Location
	if location == "" {
		location = "Room TBA"
	}
	section := e.Section
	if section == "" {
		section = "-"
	}
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d %s @%s (Sec %s)",
		e.Day.Short(), e.Start/60, e.Start%60, e.End/60, e.End%60, e.Label, location, section)
}

// BuildTimetable lays out the meetings of every enrolled offering whose term is
// still active, ordered by day and start time. Offerings that cannot be loaded
// and blocks with an unknown day or time are left out.
func (d *Detector) BuildTimetable(ctx context.Context, idx TermIndex) ([]Event, error) {
	enrollments, err := d.catalog.ListMyEnrollments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Detector.BuildTimetable ListMyEnrollments")
	}

	ids := make([]catalog.ID, 0, len(enrollments))
	seen := make(map[catalog.ID]bool, len(enrollments))
	for _, e := range enrollments {
		if e.OfferingID.Empty() || seen[e.OfferingID] {
			continue
		}
		seen[e.OfferingID] = true
		ids = append(ids, e.OfferingID)
	}

	var events []Event
	for _, o := range d.lookupAll(ctx, ids) {
		if o == nil || !TermActive(ResolveTermStatus(*o, idx)) {
			continue
		}
		code, label := courseLabel(o)
		for _, b := range o.Schedules {
			iv, ok := Resolve(b)
			if !ok {
				continue
			}
			events = append(events, Event{
				OfferingID: o.ID,
				Day:        iv.Day,
				Start:      iv.Start,
				End:        iv.End,
				Code:       code,
				Label:      label,
				Location:   b.Location,
				Section:    o.Section,
			})
		}
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Or(
			cmp.Compare(a.Day, b.Day),
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.Code, b.Code),
		)
	})
	return events, nil
}

// Window is the range of minutes a timetable view should show: whole hours
// covering every event, and never less than 07:00 to 20:00.
func Window(events []Event) (int, int) {
	if len(events) == 0 {
		return dayStartMinute, 18 * 60
	}
	lo, hi := events[0].Start, events[0].End
	for _, e := range events[1:] {
		lo = min(lo, e.Start)
		hi = max(hi, e.End)
	}
	floor := lo / 60 * 60
	ceil := (hi + 59) / 60 * 60
	return min(floor, dayStartMinute), max(ceil, dayEndMinute)
}

func courseLabel(o *catalog.Offering) (string, string) {
	var code, title string
	if o.Course != nil {
		code, title = o.Course.Code, o.Course.Title
	}
	switch {
	case code != "" && title != "":
		return code, code + " - " + title
	case code != "":
		return code, code
	case title != "":
		return "course", title
	default:
		return "course", "TBA"
	}
}
