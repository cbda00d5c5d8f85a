package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JaimeFlorian27/usdinspect/internal/inspect"
)

const (
	minWidth  = 60
	minHeight = 20
)

func (a *App) View() string {
	w, h := a.width, a.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	if a.search.active {
		return a.searchView(w, h)
	}

	header := a.headerView(w)
	footer := a.footerView(w)

	// Two columns, three rows of panes. The values pane takes the
	// remaining height.
	bodyH := h - lipgloss.Height(header) - lipgloss.Height(footer)
	topH := bodyH / 3
	midH := bodyH / 3
	valH := bodyH - topH - midH
	halfW := w / 2

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		a.pane(paneTree, a.treeLines(), a.tree.cursor, halfW, topH),
		a.pane(paneLayers, a.layerLines(), a.layerCursor, w-halfW, topH),
	)
	mid := lipgloss.JoinHorizontal(lipgloss.Top,
		a.pane(paneProperties, a.propertyLines(), a.propCursor, halfW, midH),
		a.pane(paneMetadata, a.metadataLines(), a.metaCursor, w-halfW, midH),
	)
	// Row 0 of the values pane is the column header.
	val := a.pane(paneValues, a.valueLines(w-4), a.valueScroll+1, w, valH)

	return lipgloss.JoinVertical(lipgloss.Left, header, top, mid, val, footer)
}

func (a *App) headerView(w int) string {
	title := titleStyle.Render("usdinspect")
	stage := dimStyle.Render(trunc(a.stagePath, w-lipgloss.Width(title)-4))
	return lipgloss.NewStyle().Width(w).Render(title + "  " + stage)
}

func (a *App) footerView(w int) string {
	stage := a.cascade.Stage()
	start, end := int(stage.StartTimeCode()), int(stage.EndTimeCode())
	timeline := a.timelineView(w-2, start, end)

	status := a.status
	style := statusStyle
	if a.statusErr {
		style = statusStyle.Foreground(colorError)
	}
	if status == "" {
		status = "tab: pane  /: search  ,/.: frame  r: reload  q: quit"
		style = statusStyle.Foreground(colorOverlay1)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		timeline,
		style.Width(w).Render(trunc(status, w-2)),
	)
}

// timelineView draws the frame cursor position across the stage's time
// code range.
func (a *App) timelineView(w, start, end int) string {
	label := fmt.Sprintf(" %d [%d..%d] ", a.frame, start, end)
	barW := w - lipgloss.Width(label)
	if barW < 4 {
		return frameStyle.Render(label)
	}
	pos := 0
	if end > start {
		pos = (a.frame - start) * (barW - 1) / (end - start)
	}
	bar := strings.Repeat("─", pos) + "●" + strings.Repeat("─", barW-pos-1)
	return frameStyle.Render(label) + dimStyle.Render(bar)
}

// pane renders one bordered pane with its title, windowing the lines
// around cursor so it stays visible.
func (a *App) pane(p pane, lines []string, cursor int, w, h int) string {
	innerW := w - 4
	innerH := h - 3
	if innerH < 1 {
		innerH = 1
	}

	focused := a.focus == p
	offset := 0
	if cursor >= innerH {
		offset = cursor - innerH + 1
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(trunc(p.title(), innerW)))
	for i := offset; i < len(lines) && i < offset+innerH; i++ {
		b.WriteByte('\n')
		line := trunc(lines[i], innerW)
		if i == cursor && focused {
			line = cursorStyle.Render(padTo(line, innerW))
		}
		b.WriteString(line)
	}

	style := paneStyle
	if focused {
		style = focusPaneStyle
	}
	return style.Width(w - 2).Height(h - 2).Render(b.String())
}

func (a *App) treeLines() []string {
	lines := make([]string, 0, len(a.tree.visible))
	for _, n := range a.tree.visible {
		marker := "  "
		if !n.leaf {
			if n.expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		indent := strings.Repeat(" ", n.depth*a.cfg.UI.TreeIndent)
		lines = append(lines, indent+marker+n.name)
	}
	return lines
}

func (a *App) layerLines() []string {
	lines := make([]string, 0, len(a.layerRows))
	for _, r := range a.layerRows {
		name := r.Display
		if r.Key != inspect.ComposedRowKey {
			name = lipgloss.NewStyle().Foreground(layerColor(r.Identifier)).Render(name)
		} else {
			name = titleStyle.Render(name)
		}
		lines = append(lines, name+" "+arcStyle.Render("("+r.Arc+")"))
	}
	return lines
}

func (a *App) propertyLines() []string {
	lines := make([]string, 0, len(a.propRows))
	for _, r := range a.propRows {
		lines = append(lines, dimStyle.Render(r.Kind)+" "+r.Name+" "+dimStyle.Render(r.TypeName))
	}
	return lines
}

func (a *App) metadataLines() []string {
	lines := make([]string, 0, len(a.metaRows))
	for _, r := range a.metaRows {
		lines = append(lines, r.Key+" "+dimStyle.Render(r.TypeName)+" "+trunc(r.Display, 40))
	}
	return lines
}

// valueLines flattens the value table into aligned text rows, header
// first.
func (a *App) valueLines(w int) []string {
	widths := make([]int, len(a.values.Columns))
	for i, c := range a.values.Columns {
		widths[i] = len(c)
	}
	for _, row := range a.values.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	lines := make([]string, 0, len(a.values.Rows)+1)
	var hdr strings.Builder
	for i, c := range a.values.Columns {
		hdr.WriteString(padTo(c, widths[i]+2))
	}
	lines = append(lines, headerStyle.Render(trunc(hdr.String(), w)))
	for _, row := range a.values.Rows {
		var b strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				b.WriteString(padTo(cell, widths[i]+2))
			}
		}
		lines = append(lines, trunc(b.String(), w))
	}
	return lines
}

func (a *App) searchView(w, h int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Go to prim"))
	b.WriteString("\n\n> ")
	b.WriteString(a.search.query)
	b.WriteString("\n\n")
	for i, m := range a.search.matches {
		line := string(m.path)
		if i == a.search.cursor {
			line = cursorStyle.Render(padTo(line, w-6))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(a.search.matches) == 0 && a.search.query != "" {
		b.WriteString(dimStyle.Render("no matches"))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: go  esc: cancel"))
	return focusPaneStyle.Width(w - 2).Height(h - 2).Render(b.String())
}

// trunc cuts s to at most w cells, rune-wise. Styled strings are left
// alone since cutting escape codes would corrupt them.
func trunc(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if strings.ContainsRune(s, '\x1b') || lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

func padTo(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}
