package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-course-client/session"
	"github.com/pkg/errors"
)

const (
	RouteOfferings   = "/offerings"
	RouteTerms       = "/terms"
	RouteCourses     = "/courses"
	RouteDepartments = "/departments"
	RouteAdmin       = "/admin"
	RouteUsers       = "/admin/users"
	RouteEnrollments = "/student/enrollments"
	RouteTranscript  = "/student/transcript"
	RouteGrades      = "/instructor/grades"
)

// API is the authenticated transport the catalog calls go through.
type API interface {
	DoJSON(ctx context.Context, req session.Request, out any) error
}

type Client struct {
	api API

	offerings   resource[Offering]
	terms       resource[Term]
	courses     resource[Course]
	departments resource[Department]
}

func New(api API) *Client {
	c := &Client{api: api}
	c.offerings = resource[Offering]{api: api, name: "Offering", path: RouteOfferings}
	c.terms = resource[Term]{api: api, name: "Term", path: RouteTerms}
	c.courses = resource[Course]{api: api, name: "Course", path: RouteCourses}
	c.departments = resource[Department]{api: api, name: "Department", path: RouteDepartments}
	return c
}

// resource is a collection read from path and managed under /admin/path.
type resource[T any] struct {
	api  API
	name string
	path string
}

func (r resource[T]) list(ctx context.Context, params url.Values) (Page[T], error) {
	var page Page[T]
	if err := r.api.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: r.path, Query: params}, &page); err != nil {
		return Page[T]{}, errors.Wrapf(err, "List%ss", r.name)
	}
	return page, nil
}

func (r resource[T]) get(ctx context.Context, id ID) (*T, error) {
	var out T
	if err := r.api.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: r.path + "/" + url.PathEscape(id.String())}, &out); err != nil {
		return nil, errors.Wrapf(err, "Get%s %s", r.name, id)
	}
	return &out, nil
}

func (r resource[T]) create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := r.api.DoJSON(ctx, session.Request{Method: http.MethodPost, Path: RouteAdmin + r.path, Body: body}, &out); err != nil {
		return nil, errors.Wrapf(err, "Create%s", r.name)
	}
	return &out, nil
}

func (r resource[T]) update(ctx context.Context, id ID, body any) (*T, error) {
	var out T
	path := RouteAdmin + r.path + "/" + url.PathEscape(id.String())
	if err := r.api.DoJSON(ctx, session.Request{Method: http.MethodPut, Path: path, Body: body}, &out); err != nil {
		return nil, errors.Wrapf(err, "Update%s %s", r.name, id)
	}
	return &out, nil
}

func (r resource[T]) delete(ctx context.Context, id ID) error {
	path := RouteAdmin + r.path + "/" + url.PathEscape(id.String())
	if err := r.api.DoJSON(ctx, session.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return errors.Wrapf(err, "Delete%s %s", r.name, id)
	}
	return nil
}

// Offerings

func (c *Client) ListOfferings(ctx context.Context, params ListParams) (Page[Offering], error) {
	return c.offerings.list(ctx, params.values())
}

func (c *Client) GetOffering(ctx context.Context, id ID) (*Offering, error) {
	return c.offerings.get(ctx, id)
}

func (c *Client) CreateOffering(ctx context.Context, in OfferingInput) (*Offering, error) {
	return c.offerings.create(ctx, in)
}

func (c *Client) UpdateOffering(ctx context.Context, id ID, in OfferingInput) (*Offering, error) {
	return c.offerings.update(ctx, id, in)
}

func (c *Client) DeleteOffering(ctx context.Context, id ID) error {
	return c.offerings.delete(ctx, id)
}

// Terms

func (c *Client) ListTerms(ctx context.Context, params ListParams) (Page[Term], error) {
	return c.terms.list(ctx, params.values())
}

func (c *Client) GetTerm(ctx context.Context, id ID) (*Term, error) {
	return c.terms.get(ctx, id)
}

func (c *Client) CreateTerm(ctx context.Context, t Term) (*Term, error) {
	return c.terms.create(ctx, t)
}

func (c *Client) UpdateTerm(ctx context.Context, id ID, t Term) (*Term, error) {
	return c.terms.update(ctx, id, t)
}

func (c *Client) DeleteTerm(ctx context.Context, id ID) error {
	return c.terms.delete(ctx, id)
}

// Courses

func (c *Client) ListCourses(ctx context.Context, params ListParams) (Page[Course], error) {
	return c.courses.list(ctx, params.values())
}

func (c *Client) GetCourse(ctx context.Context, id ID) (*Course, error) {
	return c.courses.get(ctx, id)
}

func (c *Client) CreateCourse(ctx context.Context, course Course) (*Course, error) {
	return c.courses.create(ctx, course)
}

func (c *Client) UpdateCourse(ctx context.Context, id ID, course Course) (*Course, error) {
	return c.courses.update(ctx, id, course)
}

func (c *Client) DeleteCourse(ctx context.Context, id ID) error {
	return c.courses.delete(ctx, id)
}

// Departments

func (c *Client) ListDepartments(ctx context.Context, params ListParams) (Page[Department], error) {
	return c.departments.list(ctx, params.values())
}

func (c *Client) GetDepartment(ctx context.Context, id ID) (*Department, error) {
	return c.departments.get(ctx, id)
}

func (c *Client) CreateDepartment(ctx context.Context, d Department) (*Department, error) {
	return c.departments.create(ctx, d)
}

func (c *Client) UpdateDepartment(ctx context.Context, id ID, d Department) (*Department, error) {
	return c.departments.update(ctx, id, d)
}

func (c *Client) DeleteDepartment(ctx context.Context, id ID) error {
	return c.departments.delete(ctx, id)
}
