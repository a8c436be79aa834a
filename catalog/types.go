// Package catalog holds the course portal's REST resources and the calls that
// read and write them. Decoding is tolerant: ids arrive as numbers or strings
// and several resources have alternative field names for the same value.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ID is a resource identifier in its string form. Numeric ids are written
// back as JSON numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "ID.UnmarshalJSON")
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "ID.UnmarshalJSON")
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

func (id ID) Empty() bool {
	return id == ""
}

type Term struct {
	ID        ID     `json:"id,omitempty"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// TermRef is a term as an offering refers to it. Any field may be empty.
type TermRef struct {
	ID     ID
	Code   string
	Status string
}

type Course struct {
	ID           ID     `json:"id,omitempty"`
	Code         string `json:"code,omitempty"`
	Title        string `json:"title,omitempty"`
	Credits      *int   `json:"credits,omitempty"`
	DepartmentID ID     `json:"departmentId,omitempty"`
}

type Department struct {
	ID   ID     `json:"id,omitempty"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

type Instructor struct {
	ID       ID     `json:"id,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (i Instructor) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Name
}

// MeetingBlock is one weekly recurring meeting of an offering. Times are
// "HH:MM" or "HH:MM:SS" wall-clock strings.
type MeetingBlock struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location,omitempty"`
}

// Offering is a scheduled section of a course in a term.
type Offering struct {
	ID         ID
	Course     *Course
	Term       TermRef
	Instructor *Instructor
	Schedules  []MeetingBlock
	Status     string
	Capacity   *int
	Section    string
}

type offeringJSON struct {
	ID             ID              `json:"id"`
	Course         *Course         `json:"course"`
	CourseID       ID              `json:"courseId"`
	CourseCode     string          `json:"courseCode"`
	CourseTitle    string          `json:"courseTitle"`
	Term           *termRefJSON    `json:"term"`
	TermID         ID              `json:"termId"`
	TermCode       string          `json:"termCode"`
	TermStatus     string          `json:"termStatus"`
	Instructor     *Instructor     `json:"instructor"`
	InstructorName string          `json:"instructorName"`
	Schedules      []MeetingBlock  `json:"schedules"`
	Status         string          `json:"status"`
	Capacity       *int            `json:"capacity"`
	Section        json.RawMessage `json:"section"`
}

type termRefJSON struct {
	ID     ID     `json:"id"`
	TermID ID     `json:"termId"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

// UnmarshalJSON accepts the nested course, term and instructor objects as well
// as their flat courseId/termId/termCode/instructorName forms.
func (o *Offering) UnmarshalJSON(data []byte) error {
	var raw offeringJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Offering.UnmarshalJSON")
	}

	*o = Offering{
		ID:         raw.ID,
		Course:     raw.Course,
		Instructor: raw.Instructor,
		Schedules:  raw.Schedules,
		Status:     raw.Status,
		Capacity:   raw.Capacity,
		Section:    rawText(raw.Section),
	}

	if o.Course == nil && (!raw.CourseID.Empty() || raw.CourseCode != "" || raw.CourseTitle != "") {
		o.Course = &Course{ID: raw.CourseID, Code: raw.CourseCode, Title: raw.CourseTitle}
	}
	if o.Instructor == nil && raw.InstructorName != "" {
		o.Instructor = &Instructor{Name: raw.InstructorName}
	}

	if raw.Term != nil {
		o.Term = TermRef{ID: raw.Term.ID, Code: raw.Term.Code, Status: raw.Term.Status}
		if o.Term.ID.Empty() {
			o.Term.ID = raw.Term.TermID
		}
	}
	if o.Term.ID.Empty() {
		o.Term.ID = raw.TermID
	}
	if o.Term.Code == "" {
		o.Term.Code = raw.TermCode
	}
	if o.Term.Status == "" {
		o.Term.Status = raw.TermStatus
	}
	return nil
}

// rawText reads a JSON string or number as text.
func rawText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var id ID
	if err := id.UnmarshalJSON(data); err != nil {
		return ""
	}
	return string(id)
}

// OfferingInput is the admin create/update body for an offering.
type OfferingInput struct {
	CourseID     ID             `json:"courseId"`
	TermID       ID             `json:"termId"`
	InstructorID ID             `json:"instructorId,omitempty"`
	Section      string         `json:"section,omitempty"`
	Capacity     *int           `json:"capacity,omitempty"`
	Status       string         `json:"status,omitempty"`
	Schedules    []MeetingBlock `json:"schedules,omitempty"`
}

// Enrollment is one of the student's enrollments. OfferingID is filled from
// either offering.id or offeringId.
type Enrollment struct {
	ID         ID
	OfferingID ID
	Offering   *Offering
	Grade      string
	Status     string
}

func (e *Enrollment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         ID        `json:"id"`
		OfferingID ID        `json:"offeringId"`
		Offering   *Offering `json:"offering"`
		Grade      string    `json:"grade"`
		Status     string    `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Enrollment.UnmarshalJSON")
	}
	*e = Enrollment{
		ID:         raw.ID,
		OfferingID: raw.OfferingID,
		Offering:   raw.Offering,
		Grade:      raw.Grade,
		Status:     raw.Status,
	}
	if raw.Offering != nil && !raw.Offering.ID.Empty() {
		e.OfferingID = raw.Offering.ID
	}
	return nil
}

type User struct {
	ID       ID     `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
	RoleCode string `json:"roleCode,omitempty"`
}

// UserInput is the admin create/update body for a user.
type UserInput struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	RoleCode string `json:"roleCode,omitempty"`
}

// IsInstructor accepts both INSTRUCTOR and prefixed forms such as ROLE_INSTRUCTOR.
func (u User) IsInstructor() bool {
	role := u.Role
	if role == "" {
		role = u.RoleCode
	}
	role = strings.ToUpper(role)
	return role == "INSTRUCTOR" || strings.HasSuffix(role, "_INSTRUCTOR")
}

// GradeEntry is one item of a bulk grade submission.
type GradeEntry struct {
	EnrollmentID ID     `json:"enrollmentId"`
	Grade        string `json:"grade"`
}

type BulkGrades struct {
	OfferingID ID           `json:"offeringId"`
	Items      []GradeEntry `json:"items"`
}

// TranscriptEntry is a graded enrollment as returned by the transcript call.
type TranscriptEntry struct {
	EnrollmentID ID        `json:"enrollmentId,omitempty"`
	OfferingID   ID        `json:"offeringId,omitempty"`
	Offering     *Offering `json:"offering,omitempty"`
	Course       *Course   `json:"course,omitempty"`
	Term         *Term     `json:"term,omitempty"`
	Credits      *int      `json:"credits,omitempty"`
	Grade        string    `json:"grade,omitempty"`
}
