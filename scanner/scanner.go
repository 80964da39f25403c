// Package scanner finds the same-origin resource references of a parsed page.
package scanner

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"pageloader/types"
	"pageloader/urlname"
)

type target struct {
	selector string
	attr     string
	role     types.ResourceRole
}

// Categories are processed in a fixed order so the reference list is
// deterministic: images, stylesheets, scripts, linked pages.
var targets = []target{
	{"img[src]", "src", types.RoleImage},
	{"link[rel=stylesheet][href]", "href", types.RoleStylesheet},
	{"script[src]", "src", types.RoleScript},
	{"a[href]", "href", types.RoleLinkedPage},
}

// Scan walks the document and collects every same-origin reference of
// interest, annotated with the local file name it will be saved under.
// The tree itself is left untouched; attributes are rewritten later, and only
// for references whose download succeeded.
func Scan(doc *goquery.Document, base *url.URL, resourcesDirName string) []*types.ResourceReference {
	var refs []*types.ResourceReference

	for _, tgt := range targets {
		doc.Find(tgt.selector).Each(func(_ int, sel *goquery.Selection) {
			raw, _ := sel.Attr(tgt.attr)
			raw = strings.TrimSpace(raw)
			if shouldIgnoreLink(raw) {
				return
			}
			if tgt.role == types.RoleLinkedPage && !isHTMLLink(raw) {
				return
			}
			if !urlname.IsLocal(base, raw) {
				zap.S().Debugw("skipping cross-origin reference", "url", raw)
				return
			}

			ref, err := url.Parse(raw)
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)

			fileName, err := urlname.FileName(abs.String(), urlname.Resource)
			if err != nil {
				zap.S().Debugw("skipping unnameable reference", "url", abs.String(), "error", err)
				return
			}

			refs = append(refs, &types.ResourceReference{
				OriginalURL:   raw,
				AbsoluteURL:   abs.String(),
				Role:          tgt.role,
				LocalFileName: fileName,
				LocalPath:     path.Join(resourcesDirName, fileName),
				Node:          sel.Get(0),
				Attr:          tgt.attr,
			})
		})
	}

	zap.S().Debugw("scan complete", "references", len(refs))
	return refs
}

// isHTMLLink reports whether an anchor target points at an .html page,
// allowing a trailing query string or fragment.
func isHTMLLink(raw string) bool {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.HasSuffix(raw, ".html")
}

// shouldIgnoreLink filters schemes that never refer to downloadable
// resources.
func shouldIgnoreLink(link string) bool {
	link = strings.ToLower(link)
	if link == "" {
		return true
	}
	for _, prefix := range []string{"#", "data:", "about:", "javascript:", "mailto:", "tel:", "sms:"} {
		if strings.HasPrefix(link, prefix) {
			return true
		}
	}
	return false
}
