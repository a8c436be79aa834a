package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-course-client/session"
	"github.com/pkg/errors"
)

// ListMyEnrollments returns every enrollment of the signed-in student.
func (c *Client) ListMyEnrollments(ctx context.Context) ([]Enrollment, error) {
	var page Page[Enrollment]
	if err := c.api.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: RouteEnrollments}, &page); err != nil {
		return nil, errors.Wrap(err, "ListMyEnrollments")
	}
	return page.Items, nil
}

// Enroll enrolls the signed-in student in an offering. It performs no checks;
// see schedule.Enroller for the guarded flow.
func (c *Client) Enroll(ctx context.Context, offeringID ID) (*Enrollment, error) {
	body := struct {
		OfferingID ID `json:"offeringId"`
	}{OfferingID: offeringID}

	var out Enrollment
	if err := c.api.DoJSON(ctx, session.Request{Method: http.MethodPost, Path: RouteEnrollments, Body: body}, &out); err != nil {
		return nil, errors.Wrapf(err, "Enroll %s", offeringID)
	}
	if out.OfferingID.Empty() {
		out.OfferingID = offeringID
	}
	return &out, nil
}

func (c *Client) DropEnrollment(ctx context.Context, enrollmentID ID) error {
	req := session.Request{Method: http.MethodDelete, Path: RouteEnrollments + "/" + url.PathEscape(enrollmentID.String())}
	if err := c.api.DoJSON(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "DropEnrollment %s", enrollmentID)
	}
	return nil
}

// SetGrade records one grade for an enrollment (instructor).
func (c *Client) SetGrade(ctx context.Context, enrollmentID ID, grade string) error {
	req := session.Request{
		Method: http.MethodPost,
		Path:   RouteGrades + "/set/" + url.PathEscape(enrollmentID.String()),
		Query:  url.Values{"grade": []string{grade}},
	}
	if err := c.api.DoJSON(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "SetGrade %s", enrollmentID)
	}
	return nil
}

func (c *Client) SetBulkGrades(ctx context.Context, grades BulkGrades) error {
	req := session.Request{Method: http.MethodPost, Path: RouteGrades + "/bulk", Body: grades}
	if err := c.api.DoJSON(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "SetBulkGrades %s", grades.OfferingID)
	}
	return nil
}

// GetTranscript returns the signed-in student's graded records.
func (c *Client) GetTranscript(ctx context.Context) ([]TranscriptEntry, error) {
	var page Page[TranscriptEntry]
	if err := c.api.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: RouteTranscript}, &page); err != nil {
		return nil, errors.Wrap(err, "GetTranscript")
	}
	return page.Items, nil
}
