package fetcher

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pageloader/internal/errors"
	"pageloader/types"
)

// --- Mock HTTP Server Setup ---

type mockResponse struct {
	Body        string
	ContentType string
	StatusCode  int
}

func startMockServer(t *testing.T, responses map[string]mockResponse) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if resp, ok := responses[r.URL.Path]; ok {
			w.Header().Set("Content-Type", resp.ContentType)
			w.WriteHeader(resp.StatusCode)
			_, err := w.Write([]byte(resp.Body))
			require.NoError(t, err, "Failed to write response body in mock server")
		} else {
			w.WriteHeader(http.StatusNotFound)
			_, err := w.Write([]byte("Not Found"))
			require.NoError(t, err, "Failed to write 404 response body in mock server")
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(t *testing.T) Fetcher {
	t.Helper()
	f, err := NewHTTPFetcher(&Config{
		Timeout:    5, // Short timeout for tests
		UserAgent:  "test-agent/1.0",
		MaxWorkers: 5,
	})
	require.NoError(t, err, "Failed to create test fetcher")
	return f
}

func newRef(absURL, fileName string) *types.ResourceReference {
	return &types.ResourceReference{
		OriginalURL:   absURL,
		AbsoluteURL:   absURL,
		Role:          types.RoleImage,
		LocalFileName: fileName,
		LocalPath:     "page_files/" + fileName,
		Attr:          "src",
	}
}

// --- Test Cases for FetchPage ---

func TestFetchPage_Success(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{
		"/courses": {Body: "<html><body>ok</body></html>", ContentType: "text/html", StatusCode: http.StatusOK},
	})
	f := newTestFetcher(t)

	body, err := f.FetchPage(server.URL + "/courses")

	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", string(body))
}

func TestFetchPage_NonOKStatus(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{})
	f := newTestFetcher(t)

	body, err := f.FetchPage(server.URL + "/missing")

	require.Error(t, err)
	assert.Nil(t, body)
	assert.Equal(t, apperrors.KindHTTPStatus, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "404")
}

func TestFetchPage_RedirectNotFollowedToOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/gone", http.StatusFound)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	f := newTestFetcher(t)

	// The redirect target 404s, so the final status is not 200.
	_, err := f.FetchPage(server.URL + "/start")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindHTTPStatus, apperrors.KindOf(err))
}

func TestFetchPage_ConnectionRefused(t *testing.T) {
	f := newTestFetcher(t)

	_, err := f.FetchPage("http://127.0.0.1:1/page")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindConnRefused, apperrors.KindOf(err))
}

// --- Test Cases for FetchAll ---

func TestFetchAll_WritesFiles(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{
		"/a.png": {Body: "PNGDATA", ContentType: "image/png", StatusCode: http.StatusOK},
		"/b.css": {Body: "body{}", ContentType: "text/css", StatusCode: http.StatusOK},
	})
	f := newTestFetcher(t)
	dir := filepath.Join(t.TempDir(), "page_files")

	refs := []*types.ResourceReference{
		newRef(server.URL+"/a.png", "host-a.png"),
		newRef(server.URL+"/b.css", "host-b.css"),
	}

	outcomes := f.FetchAll(refs, dir)

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.True(t, o.Success(), "outcome for %s", o.Reference.AbsoluteURL)
	}

	data, err := os.ReadFile(filepath.Join(dir, "host-a.png"))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "host-b.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}

func TestFetchAll_PartialFailure(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{
		"/ok.png": {Body: "PNGDATA", ContentType: "image/png", StatusCode: http.StatusOK},
		// /broken.png implicitly 404s
	})
	f := newTestFetcher(t)
	dir := filepath.Join(t.TempDir(), "page_files")

	refs := []*types.ResourceReference{
		newRef(server.URL+"/ok.png", "host-ok.png"),
		newRef(server.URL+"/broken.png", "host-broken.png"),
	}

	outcomes := f.FetchAll(refs, dir)

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success())
	assert.False(t, outcomes[1].Success())
	assert.Equal(t, apperrors.KindHTTPStatus, apperrors.KindOf(outcomes[1].Err))

	// The failed resource must not leave a file behind.
	assert.FileExists(t, filepath.Join(dir, "host-ok.png"))
	assert.NoFileExists(t, filepath.Join(dir, "host-broken.png"))
}

func TestFetchAll_DuplicateURLsCollapse(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	t.Cleanup(server.Close)
	f := newTestFetcher(t)
	dir := filepath.Join(t.TempDir(), "page_files")

	refs := []*types.ResourceReference{
		newRef(server.URL+"/logo.png", "host-logo.png"),
		newRef(server.URL+"/logo.png", "host-logo.png"),
	}

	outcomes := f.FetchAll(refs, dir)

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success())
	assert.True(t, outcomes[1].Success())
	assert.Equal(t, 1, hits, "same absolute URL should be downloaded once")
}

func TestFetchAll_EmptyReferences(t *testing.T) {
	f := newTestFetcher(t)
	assert.Nil(t, f.FetchAll(nil, filepath.Join(t.TempDir(), "page_files")))
}

func TestFetchAll_CreatesResourcesDir(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{
		"/a.png": {Body: "PNGDATA", ContentType: "image/png", StatusCode: http.StatusOK},
	})
	f := newTestFetcher(t)
	dir := filepath.Join(t.TempDir(), "nested", "page_files")

	outcomes := f.FetchAll([]*types.ResourceReference{newRef(server.URL+"/a.png", "a.png")}, dir)

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success())
	assert.DirExists(t, dir)
}

func TestFetchAll_UnboundedWorkers(t *testing.T) {
	server := startMockServer(t, map[string]mockResponse{
		"/a.png": {Body: "a", ContentType: "image/png", StatusCode: http.StatusOK},
		"/b.png": {Body: "b", ContentType: "image/png", StatusCode: http.StatusOK},
		"/c.png": {Body: "c", ContentType: "image/png", StatusCode: http.StatusOK},
	})
	f, err := NewHTTPFetcher(&Config{Timeout: 5, UserAgent: "test-agent/1.0", MaxWorkers: 0})
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "page_files")

	refs := []*types.ResourceReference{
		newRef(server.URL+"/a.png", "a.png"),
		newRef(server.URL+"/b.png", "b.png"),
		newRef(server.URL+"/c.png", "c.png"),
	}

	outcomes := f.FetchAll(refs, dir)

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.Success())
	}
}
