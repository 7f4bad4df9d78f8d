// api/schemas/snapshot.go
package schemas

// SnapshotFidelity selects how much of the raw page markup a DOM snapshot
// retains.
type SnapshotFidelity string

const (
	FidelityFull        SnapshotFidelity = "full"        // Raw outer HTML, untouched.
	FidelitySimplified  SnapshotFidelity = "simplified"  // Scripts, styles and comments stripped.
	FidelityVisible     SnapshotFidelity = "visible"     // Statically hidden subtrees removed as well.
	FidelityInteractive SnapshotFidelity = "interactive" // Only interactive elements, flattened.
	FidelitySemantic    SnapshotFidelity = "semantic"    // Structure plus ARIA/test-id attributes.
)

// DomSnapshot captures a page's markup at one instant. Snapshots are
// immutable and never cached across engine iterations; the provider creates
// a fresh one per call.
type DomSnapshot struct {
	HTML     string           `json:"html"`
	Fidelity SnapshotFidelity `json:"fidelity"`

	// Language is the page language discovered from the markup, "en" when
	// nothing declares one.
	Language string `json:"language"`
}
