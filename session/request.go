package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Request describes one logical API call. Path is relative to the client's
// base URL, e.g. "/offerings/12".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is marshalled to JSON unless it is already a []byte
	Body   any
	Header http.Header
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "Response.Decode Unmarshal")
	}
	return nil
}

// prepared is a Request resolved once so its replay is byte-for-byte the same
// call with only the credential changed.
type prepared struct {
	method    string
	path      string
	url       string
	body      []byte
	header    http.Header
	requestID string
}

func (c *Client) prepare(req Request) (*prepared, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body []byte
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, "Client.prepare Marshal")
		}
		body = data
	}

	header := make(http.Header)
	for k, v := range req.Header {
		header[k] = append([]string(nil), v...)
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}
	if body != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	return &prepared{
		method:    method,
		path:      req.Path,
		url:       u,
		body:      body,
		header:    header,
		requestID: c.newRequestID(),
	}, nil
}

func (p *prepared) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "prepared.httpRequest NewRequest")
	}
	for k, v := range p.header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	httpReq.Header.Set(requestIDHeader, p.requestID)
	return httpReq, nil
}
