package fetcher

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "pageloader/internal/errors"
	"pageloader/types"
)

type Config struct {
	Timeout    int
	UserAgent  string
	MaxWorkers int
}

// Fetcher defines the interface for downloading the page and its resources.
type Fetcher interface {
	// FetchPage performs a GET for the main page and returns the raw body.
	// Anything but HTTP 200 is an error, classified per the download error
	// taxonomy.
	FetchPage(urlStr string) ([]byte, error)

	// FetchAll downloads all references into resourcesDir concurrently and
	// returns one outcome per reference. Individual failures never abort
	// sibling downloads; they are captured in the outcome.
	FetchAll(refs []*types.ResourceReference, resourcesDir string) []types.DownloadOutcome
}

// httpFetcher implements the Fetcher interface using net/http.
type httpFetcher struct {
	client     *http.Client
	userAgent  string
	maxWorkers int
}

// NewHTTPFetcher creates a new httpFetcher.
func NewHTTPFetcher(cfg *Config) (Fetcher, error) {
	zap.S().Debugw("creating new HTTP fetcher",
		"timeout", cfg.Timeout,
		"user_agent", cfg.UserAgent,
		"max_workers", cfg.MaxWorkers)

	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	return &httpFetcher{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxWorkers: cfg.MaxWorkers,
	}, nil
}

// get issues a GET and returns the body. Only HTTP 200 counts as success.
func (f *httpFetcher) get(urlStr string) ([]byte, error) {
	req, err := http.NewRequest("GET", urlStr, nil)
	if err != nil {
		return nil, apperrors.WithKind(err, apperrors.KindInvalidURL, "invalid URL: "+urlStr)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.ClassifyFetch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.KindHTTPStatus,
			"received status code %d for %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read response body")
	}

	zap.S().Debugw("response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"bytes", len(body),
		"content_type", resp.Header.Get("Content-Type"),
	)

	return body, nil
}

// FetchPage fetches the main page body.
func (f *httpFetcher) FetchPage(urlStr string) ([]byte, error) {
	zap.S().Debugw("fetching page", "url", urlStr)
	return f.get(urlStr)
}

// FetchAll downloads every reference into resourcesDir using a bounded worker
// pool. References sharing an absolute URL collapse into a single download;
// each still receives its own outcome.
func (f *httpFetcher) FetchAll(refs []*types.ResourceReference, resourcesDir string) []types.DownloadOutcome {
	if len(refs) == 0 {
		return nil
	}

	zap.S().Debugw("fetching resources",
		"count", len(refs),
		"dir", resourcesDir,
		"workers", f.maxWorkers)

	// Directory creation is idempotent so it is safe to race with a caller
	// that already created it.
	if err := os.MkdirAll(resourcesDir, 0755); err != nil {
		wrapped := apperrors.Wrap(err, "failed to create resources directory")
		outcomes := make([]types.DownloadOutcome, 0, len(refs))
		for _, ref := range refs {
			outcomes = append(outcomes, types.DownloadOutcome{Reference: ref, Err: wrapped})
		}
		return outcomes
	}

	// Unique download targets in document order.
	var order []string
	fileNames := make(map[string]string)
	for _, ref := range refs {
		if _, ok := fileNames[ref.AbsoluteURL]; ok {
			continue
		}
		fileNames[ref.AbsoluteURL] = ref.LocalFileName
		order = append(order, ref.AbsoluteURL)
	}

	results := make(map[string]error, len(order))
	mu := &sync.Mutex{}
	wg := &sync.WaitGroup{}
	jobs := make(chan string, len(order))

	nWorkers := f.maxWorkers
	if nWorkers <= 0 || nWorkers > len(order) {
		nWorkers = len(order)
	}

	for w := 1; w <= nWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for urlStr := range jobs {
				dest := filepath.Join(resourcesDir, fileNames[urlStr])
				err := f.download(urlStr, dest)

				mu.Lock()
				results[urlStr] = err
				mu.Unlock()

				if err != nil {
					zap.S().Warnw("resource download failed",
						"worker_id", workerID, "url", urlStr, "error", err)
				} else {
					zap.S().Debugw("resource saved",
						"worker_id", workerID, "url", urlStr, "file", dest)
				}
			}
		}(w)
	}

	for _, urlStr := range order {
		jobs <- urlStr
	}
	close(jobs)
	wg.Wait()

	outcomes := make([]types.DownloadOutcome, 0, len(refs))
	failed := 0
	for _, ref := range refs {
		err := results[ref.AbsoluteURL]
		if err != nil {
			failed++
		}
		outcomes = append(outcomes, types.DownloadOutcome{Reference: ref, Err: err})
	}

	zap.S().Infow("completed fetching resources",
		"total", len(order),
		"failed", failed)

	return outcomes
}

// download fetches one resource and writes its raw body to dest.
func (f *httpFetcher) download(urlStr, dest string) error {
	body, err := f.get(urlStr)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return apperrors.Wrap(err, "failed to write resource file")
	}
	return nil
}
