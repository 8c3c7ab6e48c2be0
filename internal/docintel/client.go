package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the Document Intelligence REST API. Analysis is a
// long-running operation: a begin request returns an Operation-Location
// which is polled until the service reports a terminal status.
type Client struct {
	endpoint     string
	key          string
	apiVersion   string
	pollInterval time.Duration
	httpClient   *http.Client
}

func NewClient(endpoint, key, apiVersion string, pollInterval time.Duration) *Client {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		apiVersion:   apiVersion,
		pollInterval: pollInterval,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// AnalyzeOptions controls a single analyze call.
type AnalyzeOptions struct {
	// Model is the analysis model, e.g. "prebuilt-layout".
	Model string
	// OutputFormat requests outputContentFormat=text|markdown|html.
	// Empty (or "default") sends no parameter.
	OutputFormat string
}

// Result is the completed analysis.
type Result struct {
	Content       string
	ContentFormat string
	ModelID       string
	APIVersion    string
	Pages         int
	// FellBack is true when the begin request was rejected with the
	// outputContentFormat parameter and succeeded without it.
	FellBack bool
}

type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *serviceError) Error() string {
	return fmt.Sprintf("service error %s: %s", e.Code, e.Message)
}

type analyzeOperation struct {
	Status        string         `json:"status"`
	Error         *serviceError  `json:"error"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
}

type analyzeResult struct {
	APIVersion    string `json:"apiVersion"`
	ModelID       string `json:"modelId"`
	ContentFormat string `json:"contentFormat"`
	Content       string `json:"content"`
	Pages         []struct {
		PageNumber int `json:"pageNumber"`
	} `json:"pages"`
}

type errorResponse struct {
	Error *serviceError `json:"error"`
}

// Analyze submits document bytes and waits for the operation to finish.
func (c *Client) Analyze(ctx context.Context, data []byte, opts AnalyzeOptions) (*Result, error) {
	format := opts.OutputFormat
	if format == "default" {
		format = ""
	}

	opLocation, err := c.begin(ctx, data, opts.Model, format)
	fellBack := false
	if err != nil && format != "" && isParameterRejection(err) {
		// Some API versions reject outputContentFormat. Match the
		// original harness: retry the begin without the parameter.
		opLocation, err = c.begin(ctx, data, opts.Model, "")
		fellBack = true
	}
	if err != nil {
		return nil, err
	}

	result, err := c.poll(ctx, opLocation)
	if err != nil {
		return nil, err
	}
	result.FellBack = fellBack
	return result, nil
}

// begin starts the analysis and returns the operation URL.
func (c *Client) begin(ctx context.Context, data []byte, model, format string) (string, error) {
	if model == "" {
		model = "prebuilt-layout"
	}
	u := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, url.PathEscape(model), url.QueryEscape(c.apiVersion))
	if format != "" {
		u += "&outputContentFormat=" + url.QueryEscape(format)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("begin analyze: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusAccepted {
		if svcErr := decodeServiceError(respBody); svcErr != nil {
			return "", &BeginError{StatusCode: resp.StatusCode, Err: svcErr}
		}
		return "", &BeginError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
		}
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", fmt.Errorf("begin analyze: 202 response missing Operation-Location header")
	}
	return opLocation, nil
}

// poll queries the operation URL until a terminal status.
func (c *Client) poll(ctx context.Context, opLocation string) (*Result, error) {
	for {
		op, retryAfter, err := c.getOperation(ctx, opLocation)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("operation succeeded but analyzeResult is missing")
			}
			return &Result{
				Content:       op.AnalyzeResult.Content,
				ContentFormat: op.AnalyzeResult.ContentFormat,
				ModelID:       op.AnalyzeResult.ModelID,
				APIVersion:    op.AnalyzeResult.APIVersion,
				Pages:         len(op.AnalyzeResult.Pages),
			}, nil
		case "failed":
			if op.Error != nil {
				return nil, fmt.Errorf("analysis failed: %w", op.Error)
			}
			return nil, fmt.Errorf("analysis failed with no error detail")
		case "notStarted", "running":
			// keep polling
		default:
			return nil, fmt.Errorf("unknown operation status %q", op.Status)
		}

		wait := c.pollInterval
		if retryAfter > 0 {
			wait = retryAfter
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) getOperation(ctx context.Context, opLocation string) (*analyzeOperation, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("poll operation: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read operation response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, 0, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("poll operation: status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var op analyzeOperation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, 0, fmt.Errorf("decode operation: %w", err)
	}

	var retryAfter time.Duration
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
	}
	return &op, retryAfter, nil
}

func decodeServiceError(body []byte) *serviceError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil
	}
	return er.Error
}

// isParameterRejection reports whether a begin failure looks like the
// service refusing a request parameter (a 4xx other than auth failures).
func isParameterRejection(err error) bool {
	var beginErr *BeginError
	if !errors.As(err, &beginErr) {
		return false
	}
	switch beginErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return beginErr.StatusCode >= 400 && beginErr.StatusCode < 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
