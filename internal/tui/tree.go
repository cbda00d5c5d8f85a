package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

// treeNode is one visible row of the stage tree.
type treeNode struct {
	path     sdf.Path
	name     string
	depth    int
	leaf     bool
	expanded bool
}

// stageTree is the navigable prim hierarchy of a stage. Expansion state
// is keyed by prim path so it survives rebuilds and stage reloads.
type stageTree struct {
	stage    sdf.Stage
	expanded map[sdf.Path]bool
	visible  []treeNode
	cursor   int
}

func newStageTree(stage sdf.Stage) *stageTree {
	t := &stageTree{stage: stage, expanded: make(map[sdf.Path]bool)}
	// Start fully expanded so the whole hierarchy is visible on open.
	for _, p := range stage.Traverse() {
		if len(p.Children()) > 0 {
			t.expanded[p.Path()] = true
		}
	}
	t.rebuild()
	return t
}

// setStage swaps in a reloaded stage, keeping expansion state and the
// cursor prim where the paths still exist.
func (t *stageTree) setStage(stage sdf.Stage) {
	current, hadCurrent := t.current()
	t.stage = stage
	t.rebuild()
	if hadCurrent {
		t.jumpTo(current)
	}
	if t.cursor >= len(t.visible) {
		t.cursor = len(t.visible) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *stageTree) rebuild() {
	t.visible = t.visible[:0]
	for _, child := range t.stage.PseudoRoot().Children() {
		t.appendPrim(child, 0)
	}
}

func (t *stageTree) appendPrim(p sdf.Prim, depth int) {
	children := p.Children()
	node := treeNode{
		path:     p.Path(),
		name:     p.Name(),
		depth:    depth,
		leaf:     len(children) == 0,
		expanded: t.expanded[p.Path()],
	}
	t.visible = append(t.visible, node)
	if !node.expanded {
		return
	}
	for _, child := range children {
		t.appendPrim(child, depth+1)
	}
}

// current returns the prim path under the cursor.
func (t *stageTree) current() (sdf.Path, bool) {
	if t.cursor < 0 || t.cursor >= len(t.visible) {
		return "", false
	}
	return t.visible[t.cursor].path, true
}

func (t *stageTree) up() bool {
	if t.cursor > 0 {
		t.cursor--
		return true
	}
	return false
}

func (t *stageTree) down() bool {
	if t.cursor < len(t.visible)-1 {
		t.cursor++
		return true
	}
	return false
}

// toggle flips expansion of the node under the cursor. Leaves are left
// alone.
func (t *stageTree) toggle() {
	path, ok := t.current()
	if !ok {
		return
	}
	if t.visible[t.cursor].leaf {
		return
	}
	t.expanded[path] = !t.expanded[path]
	t.rebuild()
}

// jumpTo expands every ancestor of path and moves the cursor onto it.
// Reports whether the path was found.
func (t *stageTree) jumpTo(path sdf.Path) bool {
	for p := path.Parent(); !p.IsRoot(); p = p.Parent() {
		t.expanded[p] = true
	}
	t.rebuild()
	for i, node := range t.visible {
		if node.path == path {
			t.cursor = i
			return true
		}
	}
	return false
}

// searchMatch is a ranked prim path candidate for the search overlay.
type searchMatch struct {
	path  sdf.Path
	score int
}

// rankPrims scores every prim on the stage against query. Substring
// hits rank ahead of pure edit-distance hits, shorter names ahead of
// longer ones.
func rankPrims(stage sdf.Stage, query string, limit int) []searchMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	// Substring hits get a large negative offset so they always sort
	// before fuzzy-only hits.
	const substringRank = -100
	var matches []searchMatch
	for _, p := range stage.Traverse() {
		name := strings.ToLower(p.Name())
		if strings.Contains(name, q) {
			matches = append(matches, searchMatch{path: p.Path(), score: substringRank + len(name) - len(q)})
			continue
		}
		if dist := levenshtein.ComputeDistance(q, name); dist <= len(q) {
			matches = append(matches, searchMatch{path: p.Path(), score: dist})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score < matches[j].score
		}
		return matches[i].path < matches[j].path
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
