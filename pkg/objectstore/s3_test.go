package objectstore

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *testutil.S3Server, retries int) *Client {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	c, err := New(context.Background(), Options{
		Endpoint:         srv.URL,
		AccessKey:        "minio",
		SecretKey:        "minio123",
		RetryMaxAttempts: retries,
		HTTPClient:       srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cache.tzst")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestClient_Upload(t *testing.T) {
	srv := testutil.NewS3Server(t)
	c := newTestClient(t, srv, 1)

	err := c.Upload(context.Background(), "ci-cache", "linux-deps/cache.tzst", writeArchive(t, "archive-bytes"))
	require.NoError(t, err)

	body, ok := srv.Object("/ci-cache/linux-deps/cache.tzst")
	require.True(t, ok)
	assert.Equal(t, []byte("archive-bytes"), body)
}

func TestClient_UploadOverwritesSameObject(t *testing.T) {
	srv := testutil.NewS3Server(t)
	c := newTestClient(t, srv, 1)

	require.NoError(t, c.Upload(context.Background(), "b", "k/cache.tgz", writeArchive(t, "first")))
	require.NoError(t, c.Upload(context.Background(), "b", "k/cache.tgz", writeArchive(t, "second")))

	assert.Equal(t, []string{"PUT /b/k/cache.tgz", "PUT /b/k/cache.tgz"}, srv.Requests())
	body, _ := srv.Object("/b/k/cache.tgz")
	assert.Equal(t, []byte("second"), body)
}

func TestClient_UploadAccessDenied(t *testing.T) {
	srv := testutil.NewS3Server(t)
	srv.Deny(http.StatusForbidden)
	c := newTestClient(t, srv, 3)

	err := c.Upload(context.Background(), "b", "k/cache.tgz", writeArchive(t, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUploadFailed)
	assert.Contains(t, err.Error(), "s3://b/k/cache.tgz")
	assert.Len(t, srv.Requests(), 1)
}

func TestClient_UploadMissingFile(t *testing.T) {
	c := newTestClient(t, testutil.NewS3Server(t), 1)

	err := c.Upload(context.Background(), "b", "k/cache.tgz", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, errors.ErrUploadFailed)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		port     int
		insecure bool
		want     string
	}{
		{name: "empty", endpoint: "", want: ""},
		{name: "host only", endpoint: "minio.internal", want: "https://minio.internal"},
		{name: "insecure with port", endpoint: "minio.internal", port: 9000, insecure: true, want: "http://minio.internal:9000"},
		{name: "scheme kept", endpoint: "http://127.0.0.1", port: 9000, want: "http://127.0.0.1:9000"},
		{name: "existing port kept", endpoint: "https://s3.local:8443/", port: 9000, want: "https://s3.local:8443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EndpointURL(tt.endpoint, tt.port, tt.insecure))
		})
	}
}

func TestUnavailable(t *testing.T) {
	u := Unavailable{Err: assert.AnError}
	err := u.Upload(context.Background(), "b", "k/cache.tgz", "/tmp/x")
	assert.ErrorIs(t, err, errors.ErrUploadFailed)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
