package gymapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/gymdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// responses bigger than this are cut, a catalog or a day of logged
// exercises is far below it
const maxResponseBytes = 10 << 20

// Client talks to the remote gym REST API. Every authenticated call takes
// the bearer token of the dashboard user it runs for.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues an authenticated GET and returns the raw body of a 2xx answer.
// Non-2xx answers come back as *APIError.
func (c *Client) Get(ctx context.Context, token, path string) ([]byte, error) {
	return c.Do(ctx, token, http.MethodGet, path, nil)
}

// Do issues an authenticated request with an optional JSON body.
func (c *Client) Do(ctx context.Context, token, method, path string, body any) (respBytes []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gymApi.do")
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("gymapi.path", path),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, ErrNoToken
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, path)
}

func (c *Client) getJSON(ctx context.Context, token, path string, out any) error {
	return c.sendJSON(ctx, token, http.MethodGet, path, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, token, method, path string, in, out any) error {
	respBytes, err := c.Do(ctx, token, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal %s %s response: %w", method, path, err)
	}
	return nil
}

// postForm sends an unauthenticated form POST (used by login only).
func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.send(req, path)
}

func (c *Client) send(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.Method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(req.Method, path, resp.StatusCode, respBytes)
		log.Debugf("gym api: %s %s -> %d: %s", req.Method, path, resp.StatusCode, apiErr)
		return nil, apiErr
	}

	log.Tracef("gym api: %s %s -> %d", req.Method, path, resp.StatusCode)
	return respBytes, nil
}

func idPath(prefix string, id ID) string {
	return prefix + "/" + url.PathEscape(id.String())
}
