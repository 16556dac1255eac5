// Package tui implements the terminal selective sync picker.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/selsync"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// queueReadyMsg reports that listing results are waiting to be applied.
type queueReadyMsg struct{}

// Result is the outcome of a picker run.
type Result struct {
	// Committed is true when the excluded set was written to the daemon.
	Committed bool
	// Excluded is the set that was written.
	Excluded []string
}

// Picker is the bubbletea model for a selective sync session.
// All tree access happens in Update, which owns the session's tree.
type Picker struct {
	ctx      context.Context
	session  *selsync.Session
	queue    *selsync.Queue
	expanded map[string]bool
	rows     []selsync.VisibleRow
	cursor   int

	sortColumn int
	sortOrder  selsync.SortOrder

	spin   spinner.Model
	help   help.Model
	keys   keyMap
	height int

	status    string
	statusErr bool
	result    Result
	quit      chan struct{}
	quitting  bool
}

// New creates a picker over session. queue must be the dispatcher the
// session was built with.
func New(ctx context.Context, session *selsync.Session, queue *selsync.Queue) *Picker {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	p := &Picker{
		ctx:      ctx,
		session:  session,
		queue:    queue,
		expanded: make(map[string]bool),
		spin:     sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
		quit:     make(chan struct{}),
	}
	p.refresh()
	return p
}

// Run shows the picker until the user commits or cancels.
func Run(ctx context.Context, session *selsync.Session, queue *selsync.Queue) (Result, error) {
	p := New(ctx, session, queue)
	prog := tea.NewProgram(p, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return Result{}, fmt.Errorf("selective sync picker: %w", err)
	}
	return p.Result(), nil
}

// Result returns the outcome once the picker has quit.
func (p *Picker) Result() Result {
	return p.result
}

// waitQueue delivers a queueReadyMsg once listing results are queued.
func (p *Picker) waitQueue() tea.Cmd {
	ready, quit := p.queue.Ready(), p.quit
	return func() tea.Msg {
		select {
		case <-quit:
			return nil
		default:
		}
		select {
		case <-ready:
			return queueReadyMsg{}
		case <-quit:
			return nil
		}
	}
}

// Init implements tea.Model.
func (p *Picker) Init() tea.Cmd {
	return tea.Batch(p.spin.Tick, p.waitQueue())
}

// Update implements tea.Model.
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queueReadyMsg:
		p.queue.Drain()
		p.refresh()
		return p, p.waitQueue()

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tea.WindowSizeMsg:
		p.height = msg.Height
		p.help.Width = msg.Width
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *Picker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Quit):
		return p, p.stop()

	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}

	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}

	case key.Matches(msg, p.keys.Toggle):
		if row, ok := p.current(); ok {
			p.toggle(row.Node)
		}

	case key.Matches(msg, p.keys.Expand):
		if row, ok := p.current(); ok && row.Node.IsFolder() {
			p.expanded[row.Node.PathLower()] = !row.Expanded
		}

	case key.Matches(msg, p.keys.Collapse):
		p.collapse()

	case key.Matches(msg, p.keys.SelectAll):
		p.session.SelectAll(!p.session.AllTopLevelChecked())

	case key.Matches(msg, p.keys.Sort):
		p.resort(selsync.ColumnName)

	case key.Matches(msg, p.keys.SortState):
		p.resort(selsync.ColumnIncluded)

	case key.Matches(msg, p.keys.Commit):
		if cmd := p.commit(); cmd != nil {
			return p, cmd
		}
	}

	p.refresh()
	return p, nil
}

func (p *Picker) stop() tea.Cmd {
	if !p.quitting {
		p.quitting = true
		close(p.quit)
	}
	return tea.Quit
}

func (p *Picker) current() (selsync.VisibleRow, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return selsync.VisibleRow{}, false
	}
	return p.rows[p.cursor], true
}

// toggle excludes an included row. Excluded and partly included rows
// become fully included.
func (p *Picker) toggle(n *selsync.Node) {
	state, ok := p.session.Model().CheckState(n)
	if !ok {
		return
	}
	p.session.Model().SetCheckState(n, state.Toggled())
}

// collapse closes the current folder or moves to its parent.
func (p *Picker) collapse() {
	row, ok := p.current()
	if !ok {
		return
	}
	if row.Expanded {
		p.expanded[row.Node.PathLower()] = false
		return
	}
	parent := p.session.Model().Parent(row.Node)
	if parent == nil {
		return
	}
	for i, r := range p.rows {
		if r.Node == parent {
			p.cursor = i
			return
		}
	}
}

func (p *Picker) resort(column int) {
	if p.sortColumn == column && p.sortOrder == selsync.Ascending {
		p.sortOrder = selsync.Descending
	} else {
		p.sortOrder = selsync.Ascending
	}
	p.sortColumn = column
	p.session.Model().Sort(column, p.sortOrder)
}

// commit writes the selection. It returns tea.Quit on success.
func (p *Picker) commit() tea.Cmd {
	if !p.session.SelectionModified() {
		p.setStatus("Nothing to change.", false)
		return nil
	}

	ctx, cancel := context.WithTimeout(p.ctx, common.DaemonCallTimeout)
	defer cancel()

	items, err := p.session.Commit(ctx)
	switch {
	case err == nil:
		p.result = Result{Committed: true, Excluded: items}
		return p.stop()
	case errors.Is(err, common.ErrBusy):
		p.setStatus("Maestral is busy. Please try again later.", true)
	case errors.Is(err, common.ErrNotConnected):
		p.setStatus("Not connected to Dropbox.", true)
	case errors.Is(err, common.ErrDaemonUnavailable):
		p.setStatus("Could not load folders. Nothing was changed.", true)
	default:
		p.setStatus(err.Error(), true)
	}
	return nil
}

func (p *Picker) setStatus(text string, isErr bool) {
	p.status = text
	p.statusErr = isErr
}

// refresh rebuilds the visible rows after the tree changed.
func (p *Picker) refresh() {
	p.rows = selsync.VisibleRows(p.session.Model(), p.expanded)
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func checkGlyph(s selsync.CheckState) string {
	switch s {
	case selsync.Checked:
		return "[x]"
	case selsync.PartiallyChecked:
		return "[-]"
	default:
		return "[ ]"
	}
}

func (p *Picker) renderRow(row selsync.VisibleRow) string {
	indent := strings.Repeat("  ", row.Depth)
	n := row.Node

	if n.Kind() == selsync.KindMessage {
		text := n.Message()
		if text == selsync.LoadingMessage {
			return indent + "    " + p.spin.View() + " " + faintStyle.Render(text)
		}
		return indent + "    " + errorStyle.Render(text)
	}

	marker := " "
	name := n.Basename()
	if n.IsFolder() {
		marker = "▸"
		if row.Expanded {
			marker = "▾"
		}
		name = folderStyle.Render(name + "/")
	}
	return fmt.Sprintf("%s%s %s %s", indent, marker, checkGlyph(n.CheckState()), name)
}

// visibleWindow returns the row range that fits the terminal.
func (p *Picker) visibleWindow() (start, end int) {
	avail := p.height - 6
	if p.height == 0 || avail >= len(p.rows) {
		return 0, len(p.rows)
	}
	if avail < 1 {
		avail = 1
	}
	start = p.cursor - avail/2
	if start < 0 {
		start = 0
	}
	end = start + avail
	if end > len(p.rows) {
		end = len(p.rows)
		start = end - avail
	}
	return start, end
}

// View implements tea.Model.
func (p *Picker) View() string {
	if p.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Selective Sync: " + p.session.ConfigName()))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("Choose which folders to sync to this computer."))
	b.WriteString("\n\n")

	start, end := p.visibleWindow()
	for i := start; i < end; i++ {
		line := p.renderRow(p.rows[i])
		if i == p.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case p.status != "" && p.statusErr:
		b.WriteString(errorStyle.Render(p.status))
	case p.status != "":
		b.WriteString(successStyle.Render(p.status))
	case p.session.SelectionModified():
		b.WriteString(faintStyle.Render(fmt.Sprintf("Modified: %d excluded after update", len(p.session.ExcludedItems()))))
	}
	b.WriteString("\n")
	b.WriteString(p.help.View(p.keys))
	return b.String()
}
