// internal/browser/snapshot.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/decompose"
)

// SnapshotProvider implements schemas.PageStateProvider over a live
// session. Every Extract call captures the current outer HTML fresh;
// nothing is ever cached, because stale snapshots are exactly the failure
// mode the decomposition engine exists to avoid.
type SnapshotProvider struct {
	logger  *zap.Logger
	session *Session
}

var _ schemas.PageStateProvider = (*SnapshotProvider)(nil)

// NewSnapshotProvider wires a provider to a session.
func NewSnapshotProvider(logger *zap.Logger, session *Session) *SnapshotProvider {
	return &SnapshotProvider{
		logger:  logger.Named("snapshot_provider"),
		session: session,
	}
}

// Extract captures the page at the requested fidelity.
func (p *SnapshotProvider) Extract(ctx context.Context, fidelity schemas.SnapshotFidelity) (schemas.DomSnapshot, error) {
	var raw string
	if err := p.session.Run(ctx, chromedp.OuterHTML("html", &raw, chromedp.ByQuery)); err != nil {
		return schemas.DomSnapshot{}, fmt.Errorf("failed to capture outer HTML: %w", err)
	}

	reduced, err := Reduce(raw, fidelity)
	if err != nil {
		return schemas.DomSnapshot{}, err
	}

	snap := schemas.DomSnapshot{
		HTML:     reduced,
		Fidelity: fidelity,
		Language: decompose.DetectLanguage(raw).Code,
	}
	p.logger.Debug("Captured DOM snapshot",
		zap.String("fidelity", string(fidelity)),
		zap.Int("raw_bytes", len(raw)),
		zap.Int("reduced_bytes", len(reduced)),
		zap.String("language", snap.Language))
	return snap, nil
}

// Reduce rewrites raw markup down to the requested fidelity. Exported
// separately from the provider so the three-pass engine can also decompose
// against statically captured HTML in tests and tooling.
func Reduce(raw string, fidelity schemas.SnapshotFidelity) (string, error) {
	if fidelity == schemas.FidelityFull {
		return raw, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup for reduction: %w", err)
	}

	switch fidelity {
	case schemas.FidelitySimplified:
		stripNoise(doc)
	case schemas.FidelityVisible:
		stripNoise(doc)
		stripHidden(doc)
	case schemas.FidelityInteractive:
		return renderInteractive(doc), nil
	case schemas.FidelitySemantic:
		stripNoise(doc)
		stripHidden(doc)
		stripNonSemanticAttrs(doc)
	default:
		return "", fmt.Errorf("unknown snapshot fidelity %q", fidelity)
	}

	rendered, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render reduced markup: %w", err)
	}
	return rendered, nil
}

// stripNoise drops markup that carries no testing signal.
func stripNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript, svg, link[rel='stylesheet'], iframe").Remove()
	removeComments(doc)
}

// stripHidden removes subtrees that static evidence says are not rendered.
// Computed visibility is out of reach without a layout engine; inline
// styles and the hidden attribute are what string-level callers get.
func stripHidden(doc *goquery.Document) {
	doc.Find("[hidden], [aria-hidden='true']").Remove()
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		normalized := strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(normalized, "display:none") || strings.Contains(normalized, "visibility:hidden") {
			sel.Remove()
		}
	})
}

// interactiveSelector matches the elements a test can act on.
const interactiveSelector = "a, button, input, select, textarea, form, label, [role], [onclick], [data-testid]"

// renderInteractive flattens the page to one line per interactive element,
// keeping the attributes selector strategies key on.
func renderInteractive(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find(interactiveSelector).Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		sb.WriteString("<" + tag)
		for _, attr := range []string{"id", "class", "name", "type", "href", "role", "placeholder", "value", "data-testid", "aria-label", "for", "action"} {
			if v, ok := sel.Attr(attr); ok {
				fmt.Fprintf(&sb, " %s=%q", attr, v)
			}
		}
		sb.WriteString(">")
		if text := strings.TrimSpace(sel.Text()); text != "" {
			if len(text) > 80 {
				text = text[:80]
			}
			sb.WriteString(text)
		}
		sb.WriteString("</" + tag + ">\n")
	})
	return sb.String()
}

// semanticAttrs are kept by the semantic fidelity; everything else goes.
var semanticAttrs = map[string]bool{
	"id": true, "class": true, "name": true, "type": true, "href": true,
	"role": true, "placeholder": true, "value": true, "data-testid": true,
	"aria-label": true, "aria-hidden": true, "alt": true, "title": true,
	"for": true, "action": true, "method": true, "lang": true,
}

func stripNonSemanticAttrs(doc *goquery.Document) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if semanticAttrs[attr.Key] || strings.HasPrefix(attr.Key, "data-test") {
					kept = append(kept, attr)
				}
			}
			node.Attr = kept
		}
	})
}

func removeComments(doc *goquery.Document) {
	// goquery has no comment selector; walk the raw nodes.
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			for _, node := range child.Nodes {
				if node.Type == html.CommentNode {
					node.Parent.RemoveChild(node)
					return
				}
			}
			walk(child)
		})
	}
	walk(doc.Selection)
}
