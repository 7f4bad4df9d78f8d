// internal/browser/snapshot_test.go
package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/browser"
)

const reducePage = `<html lang="en"><head>
<title>Shop</title>
<style>.x{color:red}</style>
<script>console.log("tracking")</script>
</head><body>
<!-- layout region -->
<div class="banner" style="display: none">seasonal offer</div>
<div hidden>maintenance note</div>
<form action="/search">
  <input id="q" placeholder="Search products" data-analytics="qbox">
  <button type="submit" data-testid="search-btn">Search</button>
</form>
<p>Plain descriptive copy.</p>
</body></html>`

// TestReduce_FullIsVerbatim passes raw markup through untouched.
func TestReduce_FullIsVerbatim(t *testing.T) {
	out, err := browser.Reduce(reducePage, schemas.FidelityFull)
	require.NoError(t, err)
	assert.Equal(t, reducePage, out)
}

// TestReduce_SimplifiedStripsNoise drops scripts, styles and comments but
// keeps hidden content.
func TestReduce_SimplifiedStripsNoise(t *testing.T) {
	out, err := browser.Reduce(reducePage, schemas.FidelitySimplified)
	require.NoError(t, err)

	assert.NotContains(t, out, "console.log")
	assert.NotContains(t, out, "color:red")
	assert.NotContains(t, out, "layout region")
	assert.Contains(t, out, "seasonal offer")
	assert.Contains(t, out, "Search products")
	assert.Contains(t, out, "Plain descriptive copy.")
}

// TestReduce_VisibleDropsHiddenSubtrees removes display:none and the hidden
// attribute.
func TestReduce_VisibleDropsHiddenSubtrees(t *testing.T) {
	out, err := browser.Reduce(reducePage, schemas.FidelityVisible)
	require.NoError(t, err)

	assert.NotContains(t, out, "seasonal offer")
	assert.NotContains(t, out, "maintenance note")
	assert.Contains(t, out, "search-btn")
}

// TestReduce_InteractiveFlattens keeps one line per actionable element with
// the attributes selector strategies key on.
func TestReduce_InteractiveFlattens(t *testing.T) {
	out, err := browser.Reduce(reducePage, schemas.FidelityInteractive)
	require.NoError(t, err)

	assert.Contains(t, out, `placeholder="Search products"`)
	assert.Contains(t, out, `data-testid="search-btn"`)
	assert.Contains(t, out, `action="/search"`)
	assert.NotContains(t, out, "Plain descriptive copy.")
	assert.NotContains(t, out, "<p>")
}

// TestReduce_SemanticKeepsOnlySemanticAttributes drops vendor attributes
// while keeping ids, testids and ARIA.
func TestReduce_SemanticKeepsOnlySemanticAttributes(t *testing.T) {
	out, err := browser.Reduce(reducePage, schemas.FidelitySemantic)
	require.NoError(t, err)

	assert.Contains(t, out, `id="q"`)
	assert.Contains(t, out, `data-testid="search-btn"`)
	assert.NotContains(t, out, "data-analytics")
}

// TestReduce_UnknownFidelity is rejected.
func TestReduce_UnknownFidelity(t *testing.T) {
	_, err := browser.Reduce(reducePage, schemas.SnapshotFidelity("hologram"))
	assert.Error(t, err)
}
