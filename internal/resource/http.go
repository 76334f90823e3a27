package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every call when no HTTP client is supplied.
const DefaultTimeout = 5 * time.Second

// maxDrain caps how much of a rejected response body is read before the
// connection is reused.
const maxDrain = 64 << 10

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// accept2xx is the success rule for list, get, create and update.
func accept2xx(status int) bool { return status >= 200 && status < 300 }

// accept200 is the success rule for delete: exactly 200, nothing else.
func accept200(status int) bool { return status == http.StatusOK }

// doJSON sends body (if non-nil) as JSON and decodes the response into
// out (if non-nil). Any status rejected by accept, and any failure to
// reach the store or decode its answer, is returned as *TransportError.
func doJSON(ctx context.Context, hc *http.Client, op, method, url string, body, out any, accept func(int) bool) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if !accept(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		return statusError(op, method, url, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{
			Op:         op,
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}
