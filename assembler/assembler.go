// Package assembler applies the deferred attribute rewrites and serializes
// the final page.
package assembler

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	apperrors "pageloader/internal/errors"
	"pageloader/types"
)

// Rewrite points every successfully downloaded reference at its local copy
// and serializes the document. References whose download failed keep the URL
// exactly as originally authored, so the page stays renderable from the
// network.
func Rewrite(doc *goquery.Document, outcomes []types.DownloadOutcome) (string, error) {
	rewritten := 0
	for _, outcome := range outcomes {
		ref := outcome.Reference
		if !outcome.Success() {
			zap.S().Debugw("keeping original URL for failed resource",
				"url", ref.AbsoluteURL, "error", outcome.Err)
			continue
		}
		setAttr(ref.Node, ref.Attr, ref.LocalPath)
		rewritten++
	}

	out, err := doc.Html()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to serialize document")
	}

	zap.S().Debugw("document assembled",
		"rewritten", rewritten,
		"kept_original", len(outcomes)-rewritten)

	return out, nil
}

func setAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
