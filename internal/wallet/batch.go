package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// BatchResult is one part of the aggregate batch response, passed through
// verbatim. Which items succeeded or failed is encoded in the part bodies by
// the remote API, not interpreted here.
type BatchResult struct {
	ContentID string
	Body      []byte
}

// Batch collects independent object inserts and executes them as one
// multipart/mixed HTTP batch request.
type Batch struct {
	url        string
	objectPath string
	httpClient *http.Client
	payloads   [][]byte
}

type BatchOption func(*Batch)

func WithBatchHTTPClient(h *http.Client) BatchOption {
	return func(b *Batch) { b.httpClient = h }
}

// WithObjectPath overrides the request path embedded in each part. Used when
// the batch endpoint is not the production one.
func WithObjectPath(p string) BatchOption {
	return func(b *Batch) { b.objectPath = p }
}

func NewBatch(batchURL string, typ ObjectType, opts ...BatchOption) *Batch {
	b := &Batch{
		url:        batchURL,
		objectPath: "/walletobjects/v1/" + typ.ObjectSegment(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddObject queues one object insert. Payloads must be valid JSON.
func (b *Batch) AddObject(payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("batch item %d: payload is not valid JSON", len(b.payloads))
	}
	b.payloads = append(b.payloads, payload)
	return nil
}

// Len reports how many inserts are queued.
func (b *Batch) Len() int { return len(b.payloads) }

// Execute frames all queued inserts into a single multipart/mixed request,
// sends it once and returns the per-part responses in order.
func (b *Batch) Execute(ctx context.Context) ([]BatchResult, error) {
	if len(b.payloads) == 0 {
		return nil, fmt.Errorf("batch is empty")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, payload := range b.payloads {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "application/http")
		h.Set("Content-Transfer-Encoding", "binary")
		h.Set("Content-ID", fmt.Sprintf("<item%d>", i+1))
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("frame batch item %d: %w", i+1, err)
		}
		fmt.Fprintf(part, "POST %s HTTP/1.1\r\nContent-Type: application/json\r\n\r\n%s", b.objectPath, payload)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize batch body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute batch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}
	return parseBatchResponse(resp)
}

func parseBatchResponse(resp *http.Response) ([]BatchResult, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// Some gateways answer a batch with a single JSON document; pass it
		// through as one aggregate result.
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read batch response: %w", readErr)
		}
		return []BatchResult{{Body: body}}, nil
	}
	mr := multipart.NewReader(resp.Body, params["boundary"])
	var results []BatchResult
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read batch response part %d: %w", len(results)+1, err)
		}
		body, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("read batch response part %d: %w", len(results)+1, err)
		}
		results = append(results, BatchResult{
			ContentID: part.Header.Get("Content-ID"),
			Body:      body,
		})
	}
	return results, nil
}
