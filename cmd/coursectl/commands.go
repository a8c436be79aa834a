package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-course-client/auth"
	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/jrsteele09/go-course-client/internal/utils"
	"github.com/jrsteele09/go-course-client/schedule"
	"github.com/pkg/errors"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{"login", "logout", "whoami", "offerings", "check", "enroll", "drop", "schedule", "transcript"}

var commands = map[string]command{
	"login":      {"sign in with -email and -password (or COURSE_PASSWORD)", runLogin},
	"logout":     {"forget the stored session", runLogout},
	"whoami":     {"show the signed-in user and role", runWhoami},
	"offerings":  {"list offerings open for enrollment", runOfferings},
	"check":      {"check an offering against current enrollments", runCheck},
	"enroll":     {"enroll in an offering after a conflict check", runEnroll},
	"drop":       {"drop an enrollment by id", runDrop},
	"schedule":   {"print the weekly timetable", runSchedule},
	"transcript": {"print graded enrollments", runTranscript},
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("COURSE_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	p, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s (%s)\n", p.User.Email, p.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	p, err := a.signedIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s role=%s\n", p.User.FullName, p.User.Email, p.User.ID, p.Role)
	return nil
}

func runOfferings(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("offerings", flag.ContinueOnError)
	q := fs.String("q", "", "search text")
	term := fs.String("term", "", "term id")
	course := fs.String("course", "", "course id")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	all := fs.Bool("all", false, "include offerings that are not enrollable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}

	result, err := a.catalog.ListOfferings(ctx, catalog.ListParams{
		Q:        *q,
		Page:     *page,
		Size:     *size,
		TermID:   catalog.ID(*term),
		CourseID: catalog.ID(*course),
	})
	if err != nil {
		return err
	}
	idx := a.termIndex(ctx)

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOURSE\tTERM\tSTATUS\tMEETS")
	for _, o := range result.Items {
		if !*all && !schedule.Enrollable(o, idx) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, courseCode(o), termLabel(o.Term), o.Status, meetings(o.Schedules))
	}
	return w.Flush()
}

func runCheck(ctx context.Context, a *app, args []string) error {
	id, err := offeringArg("check", args)
	if err != nil {
		return err
	}
	if err := a.authorize(ctx, auth.RoleStudent); err != nil {
		return err
	}

	res, err := a.detector.Check(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case res.Candidate == nil:
		fmt.Fprintf(a.out, "offering %s is unavailable, no conflict detected\n", id)
	case res.AlreadyEnrolled:
		fmt.Fprintf(a.out, "already enrolled in %s\n", id)
	case res.Conflict:
		fmt.Fprintf(a.out, "conflict: %s %s overlaps %s %s\n",
			courseCode(*res.Candidate), meetings([]catalog.MeetingBlock{res.CandidateBlock}),
			courseCode(*res.With), meetings([]catalog.MeetingBlock{res.EnrolledBlock}))
	default:
		fmt.Fprintf(a.out, "no conflict for %s\n", courseCode(*res.Candidate))
	}
	return nil
}

func runEnroll(ctx context.Context, a *app, args []string) error {
	id, err := offeringArg("enroll", args)
	if err != nil {
		return err
	}
	if err := a.authorize(ctx, auth.RoleStudent); err != nil {
		return err
	}

	offering, err := a.catalog.GetOffering(ctx, id)
	if err != nil {
		return err
	}
	enrollment, err := a.enroller.Enroll(ctx, *offering, a.termIndex(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "enrolled in %s (enrollment %s)\n", courseCode(*offering), enrollment.ID)
	return nil
}

func runDrop(ctx context.Context, a *app, args []string) error {
	id, err := offeringArg("drop", args)
	if err != nil {
		return err
	}
	if err := a.authorize(ctx, auth.RoleStudent); err != nil {
		return err
	}
	if err := a.catalog.DropEnrollment(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "dropped enrollment %s\n", id)
	return nil
}

func runSchedule(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(ctx, auth.RoleStudent); err != nil {
		return err
	}

	events, err := a.detector.BuildTimetable(ctx, a.termIndex(ctx))
	if err != nil {
		return err
	}
	start, end := schedule.Window(events)
	fmt.Fprintf(a.out, "week window %02d:00-%02d:00\n", start/60, end/60)
	for _, e := range events {
		fmt.Fprintln(a.out, e.String())
	}
	return nil
}

func runTranscript(ctx context.Context, a *app, _ []string) error {
	if err := a.authorize(ctx, auth.RoleStudent); err != nil {
		return err
	}

	entries, err := a.catalog.GetTranscript(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tTERM\tCREDITS\tGRADE")
	for _, e := range entries {
		code, term := "-", "-"
		switch {
		case e.Course != nil:
			code = e.Course.Code
		case e.Offering != nil:
			code = courseCode(*e.Offering)
		}
		if e.Term != nil {
			term = e.Term.Code
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", code, term, utils.Value(e.Credits), orDash(e.Grade))
	}
	return w.Flush()
}

func (a *app) signedIn(ctx context.Context) (*auth.Principal, error) {
	p, err := a.auth.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("not signed in, run: coursectl login")
	}
	return p, nil
}

func (a *app) authorize(ctx context.Context, roles ...auth.Role) error {
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}
	return a.auth.Authorize(roles...)
}

func offeringArg(name string, args []string) (catalog.ID, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("usage: coursectl %s <id>", name)
	}
	return catalog.ID(strings.TrimSpace(args[0])), nil
}

func courseCode(o catalog.Offering) string {
	if o.Course == nil || o.Course.Code == "" {
		return "offering " + o.ID.String()
	}
	return o.Course.Code
}

func termLabel(t catalog.TermRef) string {
	if t.Code != "" {
		return t.Code
	}
	return orDash(t.ID.String())
}

func meetings(blocks []catalog.MeetingBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		iv, ok := schedule.Resolve(b)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %02d:%02d-%02d:%02d",
			iv.Day.Short(), iv.Start/60, iv.Start%60, iv.End/60, iv.End%60))
	}
	if len(parts) == 0 {
		return "TBA"
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
