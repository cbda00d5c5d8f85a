// Package tui is the terminal front end. It is a thin shell over
// inspect.Cascade: every key press turns into a cascade selection and
// the panes re-render from the cascade's rows.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/JaimeFlorian27/usdinspect/internal/config"
	"github.com/JaimeFlorian27/usdinspect/internal/inspect"
	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
)

type pane int

const (
	paneTree pane = iota
	paneLayers
	paneProperties
	paneMetadata
	paneValues
	paneCount
)

func (p pane) title() string {
	switch p {
	case paneTree:
		return "Stage"
	case paneLayers:
		return "Layer Stack"
	case paneProperties:
		return "Properties"
	case paneMetadata:
		return "Metadata"
	case paneValues:
		return "Values"
	}
	return ""
}

type keyMap struct {
	Quit       key.Binding
	NextPane   key.Binding
	PrevPane   key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Search     key.Binding
	Reload     key.Binding
	FrameBack  key.Binding
	FrameFwd   key.Binding
	FrameStart key.Binding
	FrameEnd   key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		PrevPane:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search prims")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		FrameBack:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "frame back")),
		FrameFwd:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "frame forward")),
		FrameStart: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "first frame")),
		FrameEnd:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "last frame")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to prim")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

type searchState struct {
	active  bool
	query   string
	matches []searchMatch
	cursor  int
}

type (
	watchEventMsg    struct{}
	stageReloadedMsg struct{ stage sdf.Stage }
	reloadFailedMsg  struct{ err error }
)

const maxSearchMatches = 12

// App is the root bubbletea model.
type App struct {
	cfg       config.Config
	log       zerolog.Logger
	stagePath string
	reopen    func() (sdf.Stage, error)
	watcher   *fsnotify.Watcher

	cascade *inspect.Cascade
	tree    *stageTree

	layerRows   []inspect.LayerRow
	layerCursor int
	propRows    []inspect.PropertyRow
	propCursor  int
	metaRows    []inspect.MetadataRow
	metaCursor  int
	values      inspect.TableData
	valueScroll int

	frame  int
	focus  pane
	search searchState

	status    string
	statusErr bool

	width  int
	height int
	keys   keyMap
}

// New builds the app around an already opened stage. reopen is invoked
// to re-read the stage from disk when a reload is requested; watcher
// may be nil to disable file watching.
func New(cfg config.Config, logger zerolog.Logger, stagePath string, stage sdf.Stage, reopen func() (sdf.Stage, error), watcher *fsnotify.Watcher) *App {
	a := &App{
		cfg:       cfg,
		log:       logger,
		stagePath: stagePath,
		reopen:    reopen,
		watcher:   watcher,
		cascade:   inspect.NewCascade(stage),
		tree:      newStageTree(stage),
		frame:     int(stage.StartTimeCode()),
		keys:      defaultKeyMap(),
	}
	a.cascade.SetFrame(float64(a.frame))
	a.selectCurrentPrim()
	return a
}

func (a *App) Init() tea.Cmd {
	return a.watchCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case watchEventMsg:
		a.log.Debug().Str("stage", a.stagePath).Msg("stage changed on disk")
		return a, tea.Batch(a.reloadCmd(), a.watchCmd())

	case stageReloadedMsg:
		a.applyStage(msg.stage)
		a.setStatus("stage reloaded", false)
		return a, nil

	case reloadFailedMsg:
		a.log.Error().Err(msg.err).Msg("stage reload failed")
		a.setStatus("reload failed: "+msg.err.Error(), true)
		return a, nil

	case tea.KeyMsg:
		if a.search.active {
			return a.updateSearch(msg)
		}
		return a.updateMain(msg)
	}
	return a, nil
}

func (a *App) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.NextPane):
		a.focus = (a.focus + 1) % paneCount

	case key.Matches(msg, a.keys.PrevPane):
		a.focus = (a.focus + paneCount - 1) % paneCount

	case key.Matches(msg, a.keys.Search):
		a.search = searchState{active: true}

	case key.Matches(msg, a.keys.Reload):
		return a, a.reloadCmd()

	case key.Matches(msg, a.keys.FrameBack):
		a.setFrame(a.frame - a.cfg.UI.FrameStep)

	case key.Matches(msg, a.keys.FrameFwd):
		a.setFrame(a.frame + a.cfg.UI.FrameStep)

	case key.Matches(msg, a.keys.FrameStart):
		a.setFrame(int(a.cascade.Stage().StartTimeCode()))

	case key.Matches(msg, a.keys.FrameEnd):
		a.setFrame(int(a.cascade.Stage().EndTimeCode()))

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)

	case key.Matches(msg, a.keys.Toggle):
		if a.focus == paneTree {
			a.tree.toggle()
		}
	}
	return a, nil
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.search = searchState{}
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		if a.search.cursor < len(a.search.matches) {
			target := a.search.matches[a.search.cursor].path
			if a.tree.jumpTo(target) {
				a.focus = paneTree
				a.selectCurrentPrim()
			}
		}
		a.search = searchState{}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.search.cursor > 0 {
			a.search.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.search.cursor < len(a.search.matches)-1 {
			a.search.cursor++
		}
		return a, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if a.search.query != "" {
			a.search.query = a.search.query[:len(a.search.query)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		a.search.query += string(msg.Runes)
	default:
		return a, nil
	}
	a.search.matches = rankPrims(a.cascade.Stage(), a.search.query, maxSearchMatches)
	a.search.cursor = 0
	return a, nil
}

// moveCursor moves the focused pane's cursor and re-runs the selection
// chain below it.
func (a *App) moveCursor(delta int) {
	switch a.focus {
	case paneTree:
		var moved bool
		if delta < 0 {
			moved = a.tree.up()
		} else {
			moved = a.tree.down()
		}
		if moved {
			a.selectCurrentPrim()
		}

	case paneLayers:
		if next := a.layerCursor + delta; next >= 0 && next < len(a.layerRows) {
			a.layerCursor = next
			a.syncLayerRow()
		}

	case paneProperties:
		if next := a.propCursor + delta; next >= 0 && next < len(a.propRows) {
			a.propCursor = next
			a.syncProperty()
		}

	case paneMetadata:
		if next := a.metaCursor + delta; next >= 0 && next < len(a.metaRows) {
			a.metaCursor = next
			a.cascade.SelectMetadataRow(a.metaCursor)
			a.refreshValues()
		}

	case paneValues:
		if next := a.valueScroll + delta; next >= 0 && next < len(a.values.Rows) {
			a.valueScroll = next
		}
	}
}

func (a *App) selectCurrentPrim() {
	path, _ := a.tree.current()
	a.cascade.SelectPrim(path)
	a.layerRows = a.cascade.LayerStackRows()
	a.layerCursor = 0
	a.syncLayerRow()
}

func (a *App) syncLayerRow() {
	if a.layerCursor >= 0 && a.layerCursor < len(a.layerRows) {
		a.cascade.SelectLayerRow(a.layerRows[a.layerCursor].Key)
	}
	a.propRows = a.cascade.PropertyRows()
	a.propCursor = 0
	a.syncProperty()
}

func (a *App) syncProperty() {
	name := ""
	if a.propCursor < len(a.propRows) {
		name = a.propRows[a.propCursor].Name
	}
	a.cascade.SelectProperty(name)
	a.metaRows = a.cascade.MetadataRows()
	a.metaCursor = 0
	a.refreshValues()
}

func (a *App) refreshValues() {
	a.values = a.cascade.ValueTable()
	a.valueScroll = 0
}

func (a *App) setFrame(frame int) {
	start := int(a.cascade.Stage().StartTimeCode())
	end := int(a.cascade.Stage().EndTimeCode())
	if frame < start {
		frame = start
	}
	if frame > end {
		frame = end
	}
	if frame == a.frame {
		return
	}
	a.frame = frame
	a.cascade.SetFrame(float64(frame))
	a.refreshValues()
}

// applyStage swaps in a freshly loaded stage, keeping the cursor prim,
// the frame, and tree expansion where they still apply.
func (a *App) applyStage(stage sdf.Stage) {
	a.cascade = inspect.NewCascade(stage)
	a.tree.setStage(stage)
	a.setFrameClamped()
	a.selectCurrentPrim()
}

func (a *App) setFrameClamped() {
	start := int(a.cascade.Stage().StartTimeCode())
	end := int(a.cascade.Stage().EndTimeCode())
	if a.frame < start {
		a.frame = start
	}
	if a.frame > end {
		a.frame = end
	}
	a.cascade.SetFrame(float64(a.frame))
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
}

func (a *App) reloadCmd() tea.Cmd {
	if a.reopen == nil {
		return nil
	}
	reopen := a.reopen
	return func() tea.Msg {
		stage, err := reopen()
		if err != nil {
			return reloadFailedMsg{err: err}
		}
		return stageReloadedMsg{stage: stage}
	}
}

// watchCmd blocks on the watcher until a relevant filesystem event
// arrives. It is re-armed after every event.
func (a *App) watchCmd() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	w := a.watcher
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 &&
					strings.HasSuffix(ev.Name, ".hcl") {
					return watchEventMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}
