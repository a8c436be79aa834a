package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-course-client/session"
	"github.com/pkg/errors"
)

// ListUsers lists accounts (admin). The search text is sent as q, search and
// keyword, since deployments differ in which one they read.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (Page[User], error) {
	query := params.values()
	if params.Q != "" {
		query.Set("search", params.Q)
		query.Set("keyword", params.Q)
	}

	var page Page[User]
	if err := c.api.DoJSON(ctx, session.Request{Method: http.MethodGet, Path: RouteUsers, Query: query}, &page); err != nil {
		return Page[User]{}, errors.Wrap(err, "ListUsers")
	}
	return page, nil
}

// ListInstructors returns the instructor accounts on one page of users. Total
// is the number of instructors kept.
func (c *Client) ListInstructors(ctx context.Context, params ListParams) (Page[User], error) {
	page, err := c.ListUsers(ctx, params)
	if err != nil {
		return Page[User]{}, err
	}
	instructors := make([]User, 0, len(page.Items))
	for _, u := range page.Items {
		if u.IsInstructor() {
			instructors = append(instructors, u)
		}
	}
	return Page[User]{Items: instructors, Total: len(instructors)}, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	var out User
	if err := c.api.DoJSON(ctx, session.Request{Method: http.MethodPost, Path: RouteUsers, Body: in}, &out); err != nil {
		return nil, errors.Wrap(err, "CreateUser")
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id ID, in UserInput) (*User, error) {
	var out User
	req := session.Request{Method: http.MethodPut, Path: RouteUsers + "/" + url.PathEscape(id.String()), Body: in}
	if err := c.api.DoJSON(ctx, req, &out); err != nil {
		return nil, errors.Wrapf(err, "UpdateUser %s", id)
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id ID) error {
	req := session.Request{Method: http.MethodDelete, Path: RouteUsers + "/" + url.PathEscape(id.String())}
	if err := c.api.DoJSON(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "DeleteUser %s", id)
	}
	return nil
}
