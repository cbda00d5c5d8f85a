// Package inspect implements the inspector core: composition
// attribution, the selection cascade, and the value-display state
// machine. It operates purely on the sdf interfaces and holds no
// reference to any presentation concern.
package inspect

import "github.com/JaimeFlorian27/usdinspect/internal/sdf"

// SublayerArc labels a contribution whose layer reached the prim
// without a targeted composition arc.
const SublayerArc = "Sublayer"

// ContributionRecord names one layer's contribution to a prim: the
// layer, the spec path within it, and the arc classification that
// introduced it.
type ContributionRecord struct {
	Layer    sdf.Layer
	SpecPath sdf.Path
	Arc      string
}

// Attribution maps a prim's spec stack onto the composition arcs that
// introduced each spec, strongest first.
//
// Both the prim stack and the arc list are strength-ordered, so a
// two-pointer merge suffices: a spec whose layer matches the next
// pending arc's target layer takes that arc's display name, anything
// else is classified as a sublayer. The arc list never covers
// sublayers because sublayers target the stage, not the prim. A layer
// that has a spec on the prim but is absent from the arc list is
// therefore assumed to be a sublayer; if an engine ever returns arcs
// out of sync with the stack, trailing records get the sublayer label.
//
// A prim with no spec stack (never composed, pseudo-root) yields nil.
func Attribution(prim sdf.Prim) []ContributionRecord {
	stack := prim.PrimStack()
	if len(stack) == 0 {
		return nil
	}
	arcs := prim.CompositionArcs()

	records := make([]ContributionRecord, 0, len(stack))
	j := 0
	for _, spec := range stack {
		layer := spec.Layer()
		label := SublayerArc
		if j < len(arcs) && sameLayer(arcs[j].TargetLayer(), layer) {
			label = arcs[j].ArcType().DisplayName()
			j++
		}
		records = append(records, ContributionRecord{
			Layer:    layer,
			SpecPath: spec.Path(),
			Arc:      label,
		})
	}
	return records
}

func sameLayer(a, b sdf.Layer) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Identifier() == b.Identifier()
}
