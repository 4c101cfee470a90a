package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
)

// flakyTransport fails the first failures requests at the transport level,
// then answers every request with status and body.
type flakyTransport struct {
	failures int
	status   int
	body     string
	calls    int
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	if t.calls <= t.failures {
		return nil, errors.New("connection reset")
	}
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(t.body))),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(rt http.RoundTripper) *Client {
	return &Client{client: &http.Client{Transport: rt}}
}

func TestPostRetriesTransportErrors(t *testing.T) {
	rt := &flakyTransport{failures: 2, status: http.StatusOK, body: `{"ok":true}`}
	client := newTestClient(rt)

	resp, err := client.Post(context.Background(), "http://gateway.test/payment", map[string]string{"a": "b"}, nil)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	if rt.calls != 3 {
		t.Errorf("transport calls = %d; want 3", rt.calls)
	}
}

func TestPostGivesUpAfterMaxAttempts(t *testing.T) {
	rt := &flakyTransport{failures: 100}
	client := newTestClient(rt)

	_, err := client.Post(context.Background(), "http://gateway.test/payment", map[string]string{"a": "b"}, nil)
	if err == nil {
		t.Fatal("Post returned nil error; want transport failure")
	}
	if rt.calls != maxAttempts {
		t.Errorf("transport calls = %d; want %d", rt.calls, maxAttempts)
	}
}

func TestPostDoesNotRetryHTTPErrors(t *testing.T) {
	rt := &flakyTransport{failures: 0, status: http.StatusForbidden, body: `{"error_code":11}`}
	client := newTestClient(rt)

	resp, err := client.Post(context.Background(), "http://gateway.test/payment", map[string]string{"a": "b"}, nil)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d; want %d", resp.StatusCode, http.StatusForbidden)
	}
	if rt.calls != 1 {
		t.Errorf("transport calls = %d; want 1", rt.calls)
	}
}
