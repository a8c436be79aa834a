package schedule

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-course-client/catalog"
	cerrors "github.com/jrsteele09/go-course-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EnrollmentAPI is the catalog surface the enroll flow needs.
type EnrollmentAPI interface {
	Catalog
	Enroll(ctx context.Context, offeringID catalog.ID) (*catalog.Enrollment, error)
}

// ConflictError is the blocking warning returned instead of enrolling.
type ConflictError struct {
	Candidate      *catalog.Offering
	With           *catalog.Offering
	CandidateBlock catalog.MeetingBlock
	EnrolledBlock  catalog.MeetingBlock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s %s conflicts with %s %s",
		cerrors.ErrScheduleConflict,
		offeringLabel(e.Candidate), blockLabel(e.CandidateBlock),
		offeringLabel(e.With), blockLabel(e.EnrolledBlock))
}

func (e *ConflictError) Unwrap() error {
	return cerrors.ErrScheduleConflict
}

type Enroller struct {
	api      EnrollmentAPI
	detector *Detector
	log      zerolog.Logger
}

// NewEnroller builds the guarded enroll flow. The detector's cache is shared
// with other checks made through it.
func NewEnroller(api EnrollmentAPI, detector *Detector, logger zerolog.Logger) *Enroller {
	return &Enroller{
		api:      api,
		detector: detector,
		log:      logger.With().Str("component", "enroller").Logger(),
	}
}

// Enroll runs the eligibility gate, then the conflict check, and only then
// issues the enrollment call.
func (e *Enroller) Enroll(ctx context.Context, offering catalog.Offering, idx TermIndex) (*catalog.Enrollment, error) {
	if offering.ID.Empty() {
		return nil, errors.Wrap(cerrors.ErrInvalidRequest, "Enroller.Enroll: offering has no id")
	}
	if !Enrollable(offering, idx) {
		return nil, errors.Wrapf(cerrors.ErrNotEnrollable, "offering %s", offering.ID)
	}

	result, err := e.detector.Check(ctx, offering.ID)
	if err != nil {
		return nil, err
	}
	if result.AlreadyEnrolled {
		return nil, errors.Wrapf(cerrors.ErrAlreadyEnrolled, "offering %s", offering.ID)
	}
	if result.Conflict {
		e.log.Info().
			Str("offering_id", offering.ID.String()).
			Str("conflicts_with", result.With.ID.String()).
			Msg("enrollment blocked by schedule conflict")
		return nil, &ConflictError{
			Candidate:      result.Candidate,
			With:           result.With,
			CandidateBlock: result.CandidateBlock,
			EnrolledBlock:  result.EnrolledBlock,
		}
	}

	enrollment, err := e.api.Enroll(ctx, offering.ID)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("offering_id", offering.ID.String()).Msg("enrolled")
	return enrollment, nil
}

func offeringLabel(o *catalog.Offering) string {
	if o == nil {
		return "offering"
	}
	if o.Course != nil && o.Course.Code != "" {
		if o.Section != "" {
			return o.Course.Code + "/" + o.Section
		}
		return o.Course.Code
	}
	return "offering " + o.ID.String()
}

func blockLabel(b catalog.MeetingBlock) string {
	return fmt.Sprintf("%s %s-%s", ParseWeekday(b.DayOfWeek).Short(), clockLabel(b.StartTime), clockLabel(b.EndTime))
}

func clockLabel(s string) string {
	m, ok := ParseClock(s)
	if !ok {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
