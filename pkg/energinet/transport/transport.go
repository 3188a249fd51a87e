// Package transport provides the HTTP capability the client issues requests
// through, plus an optional response cache keyed by request signature.
package transport

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxErrorBody bounds how much of an error response body is kept for the
// error message.
const maxErrorBody = 512

// Getter is the HTTP capability: one parameterized GET returning the raw
// body. Implementations signal non-success status as an error.
type Getter interface {
	Get(rawURL string, params url.Values) ([]byte, error)
}

// Error reports a failed HTTP round trip: either a network failure (Err set)
// or a non-2xx status (Status set, Body holding a snippet of the response).
type Error struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request %s returned status %d: %s", e.URL, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPGetter performs real HTTP requests.
type HTTPGetter struct {
	client *http.Client
}

// NewHTTPGetter returns a Getter backed by an http.Client with the given
// timeout.
func NewHTTPGetter(timeout time.Duration) *HTTPGetter {
	return &HTTPGetter{client: &http.Client{Timeout: timeout}}
}

// Get issues the request and returns the response body. Non-2xx responses
// and network failures are returned as *Error.
func (g *HTTPGetter) Get(rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{URL: u.String(), Status: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	return body, nil
}
