// Package downstream performs single round trips to internal collaborator services and
// classifies their outcomes. Calls are never retried here.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

const maxBodyBytes = 1 << 20

// Client talks to one collaborator service rooted at a base URL.
type Client struct {
	service string
	baseURL *url.URL
	pool    *httpclient.Pool
}

// New builds a client for service. The pool is shared and owned by the caller.
func New(service, baseURL string, pool *httpclient.Pool) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%s base URL is required", service)
	}
	if pool == nil {
		return nil, fmt.Errorf("%s client requires an http pool", service)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s base URL: %w", service, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s base URL must be absolute: %q", service, baseURL)
	}
	return &Client{service: service, baseURL: parsed, pool: pool}, nil
}

// Service names the collaborator in logs and failure messages.
func (c *Client) Service() string { return c.service }

// Segment is one element of a request path: a literal or a named parameter.
type Segment struct {
	literal string
	name    string
	value   any
	param   bool
}

// Lit is a fixed path segment.
func Lit(s string) Segment { return Segment{literal: s} }

// Param is a caller-supplied path value, escaped as a single segment.
func Param(name string, value any) Segment {
	return Segment{name: name, value: value, param: true}
}

// Call describes one request.
type Call struct {
	Method string
	Path   []Segment
	Query  url.Values
	Body   any
	// Failure is the kind reported when the collaborator cannot be reached.
	Failure fault.Kind
}

// Response is a fully read downstream response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, out)
}

// Message extracts the collaborator's error message from {message} or {detail} bodies.
func (r *Response) Message() string {
	if r == nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		for _, candidate := range []string{body.Message, body.Detail, body.Error} {
			if msg := strings.TrimSpace(candidate); msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(r.Body)); text != "" && len(text) < 256 && !strings.HasPrefix(text, "{") {
		return text
	}
	return strings.ToLower(http.StatusText(r.Status))
}

// Failure classifies a non-2xx response, keeping its status code and message.
func (r *Response) Failure(kind fault.Kind) *fault.Error {
	return fault.New(kind, r.Message()).WithStatus(r.Status)
}

// URL renders the absolute URL for path and query.
func (c *Client) URL(path []Segment, query url.Values) (string, error) {
	parts := make([]string, 0, len(path))
	for _, seg := range path {
		if !seg.param {
			parts = append(parts, strings.Trim(seg.literal, "/"))
			continue
		}
		if s, ok := seg.value.(string); ok && strings.TrimSpace(s) == "" {
			return "", fault.Rejected(fmt.Sprintf("%s is required", seg.name))
		}
		encoded, err := runtime.StyleParamWithLocation("simple", false, seg.name, runtime.ParamLocationPath, seg.value)
		if err != nil {
			return "", fault.Wrap(fault.KindRejected, fmt.Sprintf("invalid %s", seg.name), err)
		}
		parts = append(parts, encoded)
	}
	base := strings.TrimRight(c.baseURL.String(), "/")
	target := base
	if len(parts) > 0 {
		target = base + "/" + strings.Join(parts, "/")
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target, nil
}

// Do executes call with the pool's per-call timeout. Only transport failures are
// returned as errors; status handling is left to the caller.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	if c == nil {
		return nil, errors.New("downstream client not configured")
	}
	httpClient, err := c.pool.Client()
	if err != nil {
		return nil, fault.Wrap(fault.KindInternalError, fmt.Sprintf("%s client unavailable", c.service), err)
	}
	target, err := c.URL(call.Path, call.Query)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fault.Wrap(fault.KindInternalError, fmt.Sprintf("encode %s request", c.service), err)
		}
		body = bytes.NewReader(payload)
	}
	ctx, cancel := context.WithTimeout(ctx, c.pool.Timeout())
	defer cancel()
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fault.Wrap(fault.KindInternalError, fmt.Sprintf("build %s request", c.service), err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.transportFailure(call, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportFailure(call, err)
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func (c *Client) transportFailure(call Call, err error) *fault.Error {
	if isTimeout(err) {
		return fault.Wrap(fault.KindTimeout, fmt.Sprintf("%s did not respond in time", c.service), err)
	}
	kind := call.Failure
	if kind == "" {
		kind = fault.KindInternalError
	}
	return fault.Wrap(kind, fmt.Sprintf("%s unavailable", c.service), err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// KindForStatus classifies a non-2xx status. Statuses with no specific meaning get fallback.
func KindForStatus(status int, fallback fault.Kind) fault.Kind {
	switch status {
	case http.StatusNotFound:
		return fault.KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fault.KindRejected
	case http.StatusConflict:
		return fault.KindConflict
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return fault.KindTimeout
	}
	return fallback
}
