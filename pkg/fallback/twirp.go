package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/cenkalti/backoff/v4"

	"github.com/glorpus-work/s3cache/pkg/errors"
)

const servicePath = "twirp/github.actions.results.api.v1.CacheService/"

type createEntryRequest struct {
	Key     string `json:"key"`
	Version string `json:"version"`
}

type createEntryResponse struct {
	OK              bool   `json:"ok"`
	SignedUploadURL string `json:"signed_upload_url"`
}

type finalizeRequest struct {
	Key       string `json:"key"`
	Version   string `json:"version"`
	SizeBytes int64  `json:"size_bytes,string"`
}

type finalizeResponse struct {
	OK      bool        `json:"ok"`
	EntryID json.Number `json:"entry_id"`
}

type twirpError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// statusError is returned for non-2xx responses.
type statusError struct {
	op     string
	status int
	detail string
}

func (e *statusError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.op, e.status, e.detail)
	}
	return fmt.Sprintf("%s: HTTP %d", e.op, e.status)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// call invokes one CacheService method, retrying transient failures.
func (c *Client) call(ctx context.Context, method string, in, out interface{}) error {
	endpoint, err := url.JoinPath(c.opts.ResultsURL, servicePath+method)
	if err != nil {
		return errors.Wrapf(errors.ErrCacheServiceUnavailable, "invalid results URL %q", c.opts.ResultsURL)
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s request", method)
	}

	return c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to create request"))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.opts.RuntimeToken)
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrapf(err, "%s request failed", method)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s response", method)
		}

		if resp.StatusCode != http.StatusOK {
			var te twirpError
			_ = json.Unmarshal(body, &te)
			serr := &statusError{op: method, status: resp.StatusCode, detail: te.Msg}
			if retryable(resp.StatusCode) {
				return serr
			}
			return backoff.Permanent(serr)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(errors.Wrapf(err, "failed to decode %s response", method))
		}
		return nil
	})
}

// uploadBlob writes the archive to the signed URL as a single block blob.
func (c *Client) uploadBlob(ctx context.Context, signedURL, filePath string, size int64) error {
	return c.retry(ctx, func() error {
		f, err := os.Open(filePath)
		if err != nil {
			return backoff.Permanent(errors.Wrapf(err, "failed to open %s", filePath))
		}
		defer f.Close()

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, f)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to create upload request"))
		}
		req.ContentLength = size
		req.Header.Set("x-ms-blob-type", "BlockBlob")
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrap(err, "blob upload failed")
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &statusError{op: "blob upload", status: resp.StatusCode}
			if retryable(resp.StatusCode) {
				return serr
			}
			return backoff.Permanent(serr)
		}
		return nil
	})
}

func (c *Client) retry(ctx context.Context, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialInterval
	b.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries)), ctx))
}
