package vmanage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// envelope is the {"data": ...} wrapper every dataservice response uses.
// Data stays nil when the key is absent.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Get issues an authenticated GET against a dataservice path and returns the
// unwrapped "data" payload.
//
// The two nil outcomes are distinct: (nil, nil) means the session is not
// authenticated, the status was not 200, or the response carried no "data"
// key. All of those are expected, non-fatal conditions. A non-nil error
// always means the controller was unreachable at the transport level.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if !c.connected {
		return nil, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// Post issues an authenticated POST with a JSON-encoded body and returns the
// unwrapped "data" payload. Same contract as Get.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (json.RawMessage, error) {
	if !c.connected {
		return nil, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode POST body for %s", path)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, query, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request for %s", method, path)
	}

	// Session headers are immutable; the request gets its own copy.
	req.Header = c.headers.Clone()

	return req, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError("request", "ConnectivityError")
		return nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", req.URL.Path)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// An undecodable 200 body is treated the same as a missing data key.
		return nil, nil
	}

	return env.Data, nil
}

// getRecords fetches a dataservice path and decodes the payload as a list of
// raw records. An absent payload yields a nil slice; a payload that is not a
// JSON array is a fatal decode error.
func (c *Client) getRecords(ctx context.Context, path string, query url.Values) ([]rawRecord, error) {
	data, err := c.Get(ctx, path, query)
	if err != nil || data == nil {
		return nil, err
	}

	var records []rawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "unexpected payload shape from %s", path)
	}

	return records, nil
}
