package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

// maxAttempts is the first post plus one re-post of a response that failed
// validation.
const maxAttempts = 2

// Client implements itemgen.Synthesizer against a remote backend.
type Client struct {
	baseURL    string
	http       *http.Client
	validators []itemgen.Validator
}

// NewClient creates a Client for the backend at baseURL. A nil httpClient
// uses one without a timeout; deadlines come from the caller's context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpClient,
		validators: itemgen.DefaultConfig().Validators,
	}
}

// Synthesize posts req to /api/generate and validates the response. A
// response that fails validation is posted once more; a second failure
// returns *exam.BatchInvalidError. A 502 means the backend already spent
// its own retry and is not repeated.
func (c *Client) Synthesize(ctx context.Context, req itemgen.BatchRequest) ([]exam.RawItem, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode batch request: %w", err)
	}

	var reason string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := c.post(ctx, body)
		if err != nil {
			return nil, err
		}
		items, verr := itemgen.Decode(data, req, c.validators)
		if verr == nil {
			return items, nil
		}
		reason = verr.Error()
		if !verr.Retryable {
			return nil, &exam.BatchInvalidError{Attempts: attempt, Reason: reason}
		}
	}
	return nil, &exam.BatchInvalidError{Attempts: maxAttempts, Reason: reason}
}

// post sends one request and returns the body of a 200 reply.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, exam.Cancelled(ctxErr)
		}
		return nil, &exam.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, exam.Cancelled(ctxErr)
		}
		return nil, &exam.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return data, nil
	case http.StatusBadGateway:
		return nil, &exam.BatchInvalidError{Attempts: maxAttempts, Reason: errorMessage(data, resp.Status)}
	default:
		return nil, &exam.TransportError{Err: fmt.Errorf("backend returned %s after %s: %s",
			resp.Status, time.Since(start).Round(time.Millisecond), errorMessage(data, resp.Status))}
	}
}

func errorMessage(data []byte, fallback string) string {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Error != nil {
		return resp.Error.Message
	}
	return fallback
}
