package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIError carries a non-2xx wallet API response verbatim.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wallet API returned %d: %s", e.StatusCode, bytes.TrimSpace(e.Body))
}

// IsNotFound reports whether err is an APIError with status 404. This is the
// only recovered error in the whole sequence (object get-or-create).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client issues requests against the wallet objects REST surface for one
// object type. Response bodies are surfaced verbatim; non-2xx statuses become
// *APIError. No retries, by contract.
type Client struct {
	baseURL    string
	typ        ObjectType
	httpClient *http.Client
	log        *zap.SugaredLogger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, typ ObjectType, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		typ:        typ,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateClass POSTs the class payload unconditionally. Duplicate handling is
// the remote API's business.
func (c *Client) CreateClass(ctx context.Context, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+"/"+c.typ.ClassSegment(), payload)
}

// GetObject fetches one object by id.
func (c *Client) GetObject(ctx context.Context, objectID string) ([]byte, error) {
	u := c.baseURL + "/" + c.typ.ObjectSegment() + "/" + url.PathEscape(objectID)
	return c.do(ctx, http.MethodGet, u, nil)
}

// CreateObject POSTs the object payload to the collection endpoint.
func (c *Client) CreateObject(ctx context.Context, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+"/"+c.typ.ObjectSegment(), payload)
}

// GetOrCreateObject fetches the object and falls back to creating it only
// when the GET came back 404. Every other error propagates untouched. The
// returned flag reports whether the fallback POST ran.
func (c *Client) GetOrCreateObject(ctx context.Context, objectID string, payload []byte) ([]byte, bool, error) {
	body, err := c.GetObject(ctx, objectID)
	if err == nil {
		return body, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}
	c.log.Infow("object not found, creating", "object_id", objectID)
	body, err = c.CreateObject(ctx, payload)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// CreateIssuer registers a new issuer account.
func (c *Client) CreateIssuer(ctx context.Context, name, email string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"name":        name,
		"contactInfo": map[string]string{"email": email},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal issuer payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/issuer", payload)
}

// UpdatePermissions replaces the full permissions list on an issuer account.
// Unknown roles are rejected before anything goes on the wire.
func (c *Client) UpdatePermissions(ctx context.Context, issuerID string, perms []Permission) ([]byte, error) {
	for _, p := range perms {
		if !p.Role.Valid() {
			return nil, fmt.Errorf("invalid permission role %q for %s (want READER, WRITER or OWNER)", p.Role, p.EmailAddress)
		}
	}
	payload, err := json.Marshal(map[string]any{
		"issuerId":    issuerID,
		"permissions": perms,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal permissions payload: %w", err)
	}
	return c.do(ctx, http.MethodPut, c.baseURL+"/permissions/"+url.PathEscape(issuerID), payload)
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		if !json.Valid(payload) {
			return nil, fmt.Errorf("%s %s: request payload is not valid JSON", method, u)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, u, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", method, u, err)
	}
	c.log.Debugw("wallet API call", "method", method, "url", u, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}
