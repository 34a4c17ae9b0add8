// Package httpclient provides the default HTTP collaborator: a resty-backed
// client and a Response implementation that satisfies execctx.Response,
// navigating the decoded JSON body by dotted path via gabs.
package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/go-resty/resty/v2"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// Config mirrors the teacher's HTTP plugin configuration fields.
type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryWaitMS int
	Debug       bool
}

// DefaultConfig matches the teacher's hardcoded Phase 1 defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryWaitMS: 100,
		Debug:       false,
	}
}

// Client wraps a resty.Client configured per Config.
type Client struct {
	resty *resty.Client
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	return &Client{
		resty: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(cfg.MaxRetries).
			SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
			SetDebug(cfg.Debug),
	}
}

// Do executes method against url with the given headers, query parameters,
// and body, returning the fully-buffered Response.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, query map[string]string, body any) (*Response, error) {
	req := c.resty.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParams(query)

	if body != nil {
		req = req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}

	return newResponse(resp)
}

// Response wraps a *resty.Response, exposing status/header/body accessors
// and dotted-path field extraction for the Execution Context's validate().
type Response struct {
	raw     *resty.Response
	decoded *gabs.Container
}

func newResponse(raw *resty.Response) (*Response, error) {
	r := &Response{raw: raw}

	body := raw.Body()
	if len(body) > 0 {
		parsed, err := gabs.ParseJSON(body)
		if err == nil {
			r.decoded = parsed
		}
	}
	return r, nil
}

// StatusCode returns the numeric HTTP status code.
func (r *Response) StatusCode() int { return r.raw.StatusCode() }

// Status returns the HTTP status line (e.g. "200 OK").
func (r *Response) Status() string { return r.raw.Status() }

// Headers returns the response's header set.
func (r *Response) Headers() http.Header { return r.raw.Header() }

// Body returns the raw response bytes.
func (r *Response) Body() []byte { return r.raw.Body() }

// ExtractField resolves a field path against the response:
//   - "status_code" / "status" -> numeric/text status
//   - "headers.<Name>" -> a response header value
//   - "content.<path>" / "body.<path>" -> a dotted path into the decoded
//     JSON body, navigated via gabs
//   - anything else is tried as a direct dotted path into the decoded body
func (r *Response) ExtractField(path string) (any, error) {
	switch {
	case path == "status_code":
		return r.StatusCode(), nil
	case path == "status":
		return r.Status(), nil
	case strings.HasPrefix(path, "headers."):
		return r.Headers().Get(strings.TrimPrefix(path, "headers.")), nil
	case strings.HasPrefix(path, "content."):
		return r.extractFromBody(strings.TrimPrefix(path, "content."))
	case strings.HasPrefix(path, "body."):
		return r.extractFromBody(strings.TrimPrefix(path, "body."))
	default:
		return r.extractFromBody(path)
	}
}

// extractFromBody navigates the decoded JSON body by a gabs dotted path.
// gabs treats purely numeric path segments as array indices, so
// "items.0.id" resolves the same way "items.id" would for an object field.
func (r *Response) extractFromBody(dotted string) (any, error) {
	if r.decoded == nil {
		return nil, httperrors.NewParamError("response body is not valid JSON, cannot extract %q", dotted)
	}

	if !r.decoded.ExistsP(dotted) {
		return nil, httperrors.NewParamError("field not found: %s", dotted)
	}
	return r.decoded.Path(dotted).Data(), nil
}
