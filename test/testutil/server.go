// Package testutil provides fake backends for tests that drive a whole save.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/s3cache/pkg/fsutil"
)

// S3Server is a minimal path-style S3 endpoint that accepts object PUTs.
type S3Server struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	requests []string
	objects  map[string][]byte
}

// NewS3Server starts an S3Server that is closed when the test ends.
func NewS3Server(t *testing.T) *S3Server {
	t.Helper()
	s := &S3Server{objects: make(map[string][]byte)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Deny makes every following request fail with status and an S3 error body.
func (s *S3Server) Deny(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Requests returns "METHOD /path" for every request received.
func (s *S3Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Object returns the stored body of /bucket/object.
func (s *S3Server) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[path]
	return b, ok
}

func (s *S3Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	if s.status != 0 {
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.objects[r.URL.Path] = body
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

// CacheService fakes the Actions cache service twirp API and its blob store.
type CacheService struct {
	*httptest.Server

	mu    sync.Mutex
	calls []string
	blobs map[string][]byte
}

// NewCacheService starts a CacheService that is closed when the test ends.
func NewCacheService(t *testing.T) *CacheService {
	t.Helper()
	c := &CacheService{blobs: make(map[string][]byte)}
	c.Server = httptest.NewServer(http.HandlerFunc(c.handle))
	t.Cleanup(c.Close)
	return c
}

// Calls returns the RPC and blob calls received, in order.
func (c *CacheService) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Blob returns the archive uploaded for key.
func (c *CacheService) Blob(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blobs[key]
}

func (c *CacheService) handle(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	var req struct {
		Key string `json:"key"`
	}
	switch {
	case strings.HasSuffix(r.URL.Path, "/CreateCacheEntry"):
		c.calls = append(c.calls, "create")
		_ = json.Unmarshal(body, &req)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":                true,
			"signed_upload_url": c.URL + "/blob/" + req.Key,
		})
	case strings.HasPrefix(r.URL.Path, "/blob/"):
		c.calls = append(c.calls, "blob")
		c.blobs[strings.TrimPrefix(r.URL.Path, "/blob/")] = body
		w.WriteHeader(http.StatusCreated)
	case strings.HasSuffix(r.URL.Path, "/FinalizeCacheEntryUpload"):
		c.calls = append(c.calls, "finalize")
		_, _ = io.WriteString(w, `{"ok":true,"entry_id":"1"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"bad_route","msg":"no handler"}`)
	}
}

// WriteTree creates files under root. Keys are slash separated relative paths.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := fsutil.EnsureFileDir(p); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), fsutil.FileModeDefault); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}
