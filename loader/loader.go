// Package loader sequences a page download: validate, check the output
// directory, fetch the page, scan and download its resources, rewrite the
// markup and persist the result.
package loader

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"pageloader/assembler"
	"pageloader/fetcher"
	apperrors "pageloader/internal/errors"
	"pageloader/scanner"
	"pageloader/types"
	"pageloader/urlname"
)

// Loader orchestrates the download pipeline.
type Loader struct {
	fetcher fetcher.Fetcher
	verbose bool
}

// New creates a Loader. Verbosity is an explicit construction-time option.
func New(f fetcher.Fetcher, verbose bool) *Loader {
	return &Loader{fetcher: f, verbose: verbose}
}

// Download fetches rawURL with its same-origin resources into outputDir and
// returns the paths of the saved page and its resources directory.
//
// Errors from the directory check or the main page fetch abort the whole
// operation. Individual resource failures do not: those references keep their
// original URLs in the saved page and are reported in
// PageResult.FailedResources.
func (l *Loader) Download(rawURL, outputDir string) (*types.PageResult, error) {
	pageFileName, err := urlname.FileName(rawURL, urlname.Page)
	if err != nil {
		return nil, err
	}
	resourcesDirName, err := urlname.DirName(rawURL)
	if err != nil {
		return nil, err
	}
	// FileName already rejected anything unparseable.
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.WithKind(err, apperrors.KindInvalidURL, "invalid URL: "+rawURL)
	}

	zap.S().Infow("downloading page",
		"url", rawURL,
		"output_dir", outputDir,
		"page_file", pageFileName)

	if err := checkOutputDir(outputDir); err != nil {
		return nil, err
	}

	body, err := l.fetcher.FetchPage(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse page markup")
	}

	refs := scanner.Scan(doc, base, resourcesDirName)

	resourcesDir := filepath.Join(outputDir, resourcesDirName)
	if err := os.MkdirAll(resourcesDir, 0755); err != nil {
		return nil, apperrors.Wrap(err, "failed to create resources directory")
	}

	outcomes := l.fetcher.FetchAll(refs, resourcesDir)

	var failed []string
	for _, outcome := range outcomes {
		if outcome.Success() {
			continue
		}
		failed = append(failed, outcome.Reference.AbsoluteURL)
		if l.verbose {
			zap.S().Infow("resource kept pointing at its remote URL",
				"url", outcome.Reference.AbsoluteURL,
				"error", outcome.Err)
		}
	}

	finalHTML, err := assembler.Rewrite(doc, outcomes)
	if err != nil {
		return nil, err
	}

	htmlPath := filepath.Join(outputDir, pageFileName)
	if err := os.WriteFile(htmlPath, []byte(finalHTML), 0644); err != nil {
		return nil, apperrors.Wrap(err, "failed to write page file")
	}

	absHTMLPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve page path")
	}
	absResourcesDir, err := filepath.Abs(resourcesDir)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve resources directory path")
	}

	zap.S().Infow("page saved",
		"html_path", absHTMLPath,
		"resources_dir", absResourcesDir,
		"resources", len(refs),
		"failed", len(failed))

	return &types.PageResult{
		HTMLPath:        absHTMLPath,
		ResourcesDir:    absResourcesDir,
		FailedResources: failed,
	}, nil
}

// checkOutputDir verifies the output directory exists, is a directory and is
// writable, before any network call is made.
func checkOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return apperrors.Newf(apperrors.KindDirNotFound, "output directory does not exist: %s", dir)
	}
	if err != nil {
		return apperrors.WithKind(err, apperrors.KindUnknown, "failed to stat output directory")
	}
	if !info.IsDir() {
		return apperrors.Newf(apperrors.KindNotADirectory, "output path is not a directory: %s", dir)
	}

	// Probing with a real file avoids second-guessing permission bits across
	// platforms and ACLs.
	probe, err := os.CreateTemp(dir, ".page-loader-probe-*")
	if err != nil {
		return apperrors.WithKind(err, apperrors.KindDirNotWritable, "output directory is not writable: "+dir)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
