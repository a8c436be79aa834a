package catalog

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// Page is one page of a list response. The API answers either with a bare
// array or with an object carrying content or items, and totalElements or total.
type Page[T any] struct {
	Items []T
	Total int
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Page[T]{}
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return errors.Wrap(err, "Page.UnmarshalJSON array")
		}
		*p = Page[T]{Items: items, Total: len(items)}
		return nil
	}

	var raw struct {
		Content       []T  `json:"content"`
		Items         []T  `json:"items"`
		TotalElements *int `json:"totalElements"`
		Total         *int `json:"total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "Page.UnmarshalJSON object")
	}

	items := raw.Content
	if items == nil {
		items = raw.Items
	}
	total := len(items)
	switch {
	case raw.TotalElements != nil:
		total = *raw.TotalElements
	case raw.Total != nil:
		total = *raw.Total
	}
	*p = Page[T]{Items: items, Total: total}
	return nil
}

// ListParams are the shared list filters. Zero values are left out of the query.
type ListParams struct {
	Q            string
	Page         int
	Size         int
	TermID       ID
	CourseID     ID
	InstructorID ID
}

func (lp ListParams) values() url.Values {
	v := url.Values{}
	if lp.Q != "" {
		v.Set("q", lp.Q)
	}
	if lp.Page > 0 || lp.Size > 0 {
		v.Set("page", strconv.Itoa(lp.Page))
	}
	if lp.Size > 0 {
		v.Set("size", strconv.Itoa(lp.Size))
	}
	if !lp.TermID.Empty() {
		v.Set("termId", lp.TermID.String())
	}
	if !lp.CourseID.Empty() {
		v.Set("courseId", lp.CourseID.String())
	}
	if !lp.InstructorID.Empty() {
		v.Set("instructorId", lp.InstructorID.String())
	}
	return v
}
