package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/jrsteele09/go-course-client/internal/utils"
	"github.com/jrsteele09/go-course-client/session"
	"github.com/stretchr/testify/require"
)

// recordingAPI answers every call with the canned body for its path.
type recordingAPI struct {
	responses map[string]string
	requests  []session.Request
}

func (r *recordingAPI) DoJSON(_ context.Context, req session.Request, out any) error {
	r.requests = append(r.requests, req)
	body, ok := r.responses[req.Method+" "+req.Path]
	if !ok {
		return &session.StatusError{StatusCode: http.StatusNotFound, Method: req.Method, Path: req.Path}
	}
	if out == nil || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func (r *recordingAPI) last() session.Request {
	return r.requests[len(r.requests)-1]
}

func TestIDDecoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want catalog.ID
	}{
		{"number", `12`, "12"},
		{"string", `"abc-1"`, "abc-1"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id catalog.ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			require.Equal(t, tt.want, id)
		})
	}

	data, err := json.Marshal(struct {
		A catalog.ID `json:"a"`
		B catalog.ID `json:"b"`
	}{A: "12", B: "abc"})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":12,"b":"abc"}`, string(data))
}

func TestOfferingDecodesNestedAndFlatShapes(t *testing.T) {
	var nested catalog.Offering
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7,
		"course": {"id": 3, "code": "CS101", "title": "Intro"},
		"term": {"termId": 1, "code": "FALL24", "status": "OPEN"},
		"instructor": {"fullName": "Grace Hopper"},
		"schedules": [{"dayOfWeek": "MONDAY", "startTime": "09:00", "endTime": "10:30", "location": "B12"}],
		"status": "OPEN",
		"capacity": 30,
		"section": 2
	}`), &nested))

	require.Equal(t, catalog.ID("7"), nested.ID)
	require.Equal(t, "CS101", nested.Course.Code)
	require.Equal(t, catalog.TermRef{ID: "1", Code: "FALL24", Status: "OPEN"}, nested.Term)
	require.Equal(t, "Grace Hopper", nested.Instructor.DisplayName())
	require.Len(t, nested.Schedules, 1)
	require.Equal(t, utils.Ptr(30), nested.Capacity)
	require.Equal(t, "2", nested.Section)

	var flat catalog.Offering
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "8", "courseId": 4, "courseCode": "MA201", "termId": 2, "termCode": "SPRING25",
		"instructorName": "Ada", "status": "ENROLLING", "section": "A"
	}`), &flat))

	require.Equal(t, catalog.TermRef{ID: "2", Code: "SPRING25"}, flat.Term)
	require.Equal(t, "MA201", flat.Course.Code)
	require.Equal(t, "Ada", flat.Instructor.DisplayName())
	require.Equal(t, "A", flat.Section)
	require.Nil(t, flat.Capacity)
}

func TestEnrollmentOfferingReference(t *testing.T) {
	var page catalog.Page[catalog.Enrollment]
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "offering": {"id": 10}},
		{"id": 2, "offeringId": 11, "grade": "A"},
		{"id": 3}
	]`), &page))

	require.Len(t, page.Items, 3)
	require.Equal(t, catalog.ID("10"), page.Items[0].OfferingID)
	require.Equal(t, catalog.ID("11"), page.Items[1].OfferingID)
	require.Equal(t, "A", page.Items[1].Grade)
	require.True(t, page.Items[2].OfferingID.Empty())
}

func TestPageShapes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantItems int
		wantTotal int
	}{
		{"content with totalElements", `{"content":[{"id":1},{"id":2}],"totalElements":40}`, 2, 40},
		{"items with total", `{"items":[{"id":1}],"total":9}`, 1, 9},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, 3, 3},
		{"no total", `{"content":[{"id":1}]}`, 1, 1},
		{"empty object", `{}`, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page catalog.Page[catalog.Term]
			require.NoError(t, json.Unmarshal([]byte(tt.in), &page))
			require.Len(t, page.Items, tt.wantItems)
			require.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func TestListOfferingsQuery(t *testing.T) {
	api := &recordingAPI{responses: map[string]string{
		"GET /offerings": `{"content":[{"id":1,"status":"OPEN"}],"totalElements":1}`,
	}}
	c := catalog.New(api)

	page, err := c.ListOfferings(context.Background(), catalog.ListParams{Q: "cs", Size: 20, TermID: "4"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	q := api.last().Query
	require.Equal(t, "cs", q.Get("q"))
	require.Equal(t, "0", q.Get("page"))
	require.Equal(t, "20", q.Get("size"))
	require.Equal(t, "4", q.Get("termId"))
	require.False(t, q.Has("courseId"))
}

func TestAdminCRUDPaths(t *testing.T) {
	api := &recordingAPI{responses: map[string]string{
		"POST /admin/terms":           `{"id":5,"code":"FALL25"}`,
		"PUT /admin/terms/5":          `{"id":5,"code":"FALL25","status":"OPEN"}`,
		"DELETE /admin/terms/5":       ``,
		"GET /courses/3":              `{"id":3,"code":"CS101"}`,
		"POST /admin/offerings":       `{"id":9}`,
		"DELETE /admin/departments/2": ``,
	}}
	c := catalog.New(api)
	ctx := context.Background()

	term, err := c.CreateTerm(ctx, catalog.Term{Code: "FALL25"})
	require.NoError(t, err)
	require.Equal(t, catalog.ID("5"), term.ID)
	require.Equal(t, catalog.Term{Code: "FALL25"}, api.last().Body)

	term, err = c.UpdateTerm(ctx, "5", catalog.Term{Code: "FALL25", Status: "OPEN"})
	require.NoError(t, err)
	require.Equal(t, "OPEN", term.Status)
	require.Equal(t, http.MethodPut, api.last().Method)

	require.NoError(t, c.DeleteTerm(ctx, "5"))

	course, err := c.GetCourse(ctx, "3")
	require.NoError(t, err)
	require.Equal(t, "CS101", course.Code)

	off, err := c.CreateOffering(ctx, catalog.OfferingInput{CourseID: "3", TermID: "5"})
	require.NoError(t, err)
	require.Equal(t, catalog.ID("9"), off.ID)

	require.NoError(t, c.DeleteDepartment(ctx, "2"))

	_, err = c.GetTerm(ctx, "404")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, session.StatusCode(err))
}

func TestListUsersSendsEverySearchName(t *testing.T) {
	api := &recordingAPI{responses: map[string]string{
		"GET /admin/users": `{"content":[
			{"id":1,"role":"ROLE_INSTRUCTOR"},
			{"id":2,"roleCode":"STUDENT"},
			{"id":3,"roleCode":"instructor"},
			{"id":4,"role":"ADMIN"}
		],"totalElements":4}`,
	}}
	c := catalog.New(api)

	users, err := c.ListUsers(context.Background(), catalog.ListParams{Q: "ada"})
	require.NoError(t, err)
	require.Equal(t, 4, users.Total)
	q := api.last().Query
	require.Equal(t, "ada", q.Get("q"))
	require.Equal(t, "ada", q.Get("search"))
	require.Equal(t, "ada", q.Get("keyword"))

	instructors, err := c.ListInstructors(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, instructors.Total)
	require.Equal(t, catalog.ID("1"), instructors.Items[0].ID)
	require.Equal(t, catalog.ID("3"), instructors.Items[1].ID)
}

func TestEnrollmentCalls(t *testing.T) {
	api := &recordingAPI{responses: map[string]string{
		"GET /student/enrollments":      `{"items":[{"id":1,"offeringId":10}]}`,
		"POST /student/enrollments":     `{"id":2}`,
		"DELETE /student/enrollments/2": ``,
		"POST /instructor/grades/set/2": ``,
		"POST /instructor/grades/bulk":  ``,
		"GET /student/transcript":       `[{"enrollmentId":1,"grade":"B+","credits":3}]`,
	}}
	c := catalog.New(api)
	ctx := context.Background()

	mine, err := c.ListMyEnrollments(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, catalog.ID("10"), mine[0].OfferingID)

	enrollment, err := c.Enroll(ctx, "12")
	require.NoError(t, err)
	require.Equal(t, catalog.ID("12"), enrollment.OfferingID)
	body, err := json.Marshal(api.last().Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"offeringId":12}`, string(body))

	require.NoError(t, c.DropEnrollment(ctx, "2"))

	require.NoError(t, c.SetGrade(ctx, "2", "A-"))
	require.Equal(t, "A-", api.last().Query.Get("grade"))

	require.NoError(t, c.SetBulkGrades(ctx, catalog.BulkGrades{OfferingID: "12", Items: []catalog.GradeEntry{{EnrollmentID: "2", Grade: "A"}}}))

	transcript, err := c.GetTranscript(ctx)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, "B+", transcript[0].Grade)
	require.Equal(t, 3, *transcript[0].Credits)
}
