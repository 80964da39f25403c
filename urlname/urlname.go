// Package urlname maps URLs onto filesystem-safe names and decides which
// resource references belong to the page's origin.
package urlname

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	apperrors "pageloader/internal/errors"
)

// Role - What the generated name is for
type Role int

const (
	// Page names always carry the .html extension.
	Page Role = iota
	// Resource names keep the extension found in the URL, falling back to
	// .html when there is none.
	Resource
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// FileName derives a deterministic file name from a URL. The host and path
// are joined with every run of non-alphanumeric characters collapsed into a
// single hyphen, so the same URL always yields the same name.
func FileName(rawURL string, role Role) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", apperrors.WithKind(err, apperrors.KindInvalidURL, fmt.Sprintf("invalid URL: %s", rawURL))
	}
	if u.Hostname() == "" {
		return "", apperrors.Newf(apperrors.KindInvalidURL, "invalid URL: %s", rawURL)
	}

	p := strings.TrimSuffix(u.Path, "/")
	ext := path.Ext(p)

	if role == Resource {
		if ext == "" {
			ext = ".html"
		} else {
			// Extension is kept verbatim from the source URL.
			p = strings.TrimSuffix(p, ext)
		}
		return slugify(u.Hostname()+p) + ext, nil
	}

	if ext == ".html" {
		p = strings.TrimSuffix(p, ext)
	}
	return slugify(u.Hostname()+p) + ".html", nil
}

// DirName derives the name of the per-page resources directory from the
// page's file name.
func DirName(rawURL string) (string, error) {
	name, err := FileName(rawURL, Page)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(name, ".html") + "_files", nil
}

// IsLocal reports whether candidate, resolved against base, points at the
// same host as base. Unparseable candidates are non-local, never an error.
func IsLocal(base *url.URL, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.ContainsAny(candidate, " \t\n") {
		return false
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	resolved := base.ResolveReference(ref)
	return resolved.Hostname() != "" && resolved.Hostname() == base.Hostname()
}
