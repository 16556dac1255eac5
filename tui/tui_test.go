package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon/daemontest"
	"github.com/yllada/maestral-gtk/selsync"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func newPicker(t *testing.T, d *daemontest.Daemon) *Picker {
	t.Helper()
	q := selsync.NewQueue()
	client := d.Client()
	session, err := selsync.BuildSession(context.Background(), client, d.Dialer(), q.Dispatch, selsync.Options{Workers: 2})
	require.NoError(t, err)
	t.Cleanup(func() {
		session.Close()
		client.Close()
	})
	return New(context.Background(), session, q)
}

// settle applies listing results until the tree stops changing.
func settle(t *testing.T, p *Picker) {
	t.Helper()
	for i := 0; i < 10; i++ {
		p.session.Fetcher().Wait()
		select {
		case <-p.queue.Ready():
			p.Update(queueReadyMsg{})
		default:
			return
		}
	}
	t.Fatal("picker did not settle")
}

func rowNames(p *Picker) []string {
	var out []string
	for _, r := range p.rows {
		out = append(out, r.Node.Data(selsync.ColumnName))
	}
	return out
}

func sampleDaemon() *daemontest.Daemon {
	d := daemontest.New("maestral")
	d.AddFile("/Documents/notes.txt")
	d.AddFolder("/Documents/Taxes")
	d.AddFolder("/Photos")
	d.AddFile("/readme.md")
	return d
}

func TestPickerLoadsTopLevel(t *testing.T) {
	p := newPicker(t, sampleDaemon())
	assert.Equal(t, []string{selsync.LoadingMessage}, rowNames(p))
	assert.Contains(t, p.View(), selsync.LoadingMessage)

	settle(t, p)
	assert.Equal(t, []string{"Documents", "Photos", "readme.md"}, rowNames(p))
}

func TestPickerExpandAndToggle(t *testing.T) {
	d := sampleDaemon()
	p := newPicker(t, d)
	settle(t, p)

	p.Update(enter)
	settle(t, p)
	assert.Equal(t, []string{"Documents", "Taxes", "notes.txt", "Photos", "readme.md"}, rowNames(p))

	p.Update(down)
	p.Update(space)
	assert.Equal(t, selsync.Unchecked, p.rows[1].Node.CheckState())
	assert.Equal(t, selsync.PartiallyChecked, p.rows[0].Node.CheckState())
	assert.Contains(t, p.View(), "[-]")

	_, cmd := p.Update(runes("u"))
	require.NotNil(t, cmd)
	assert.True(t, p.Result().Committed)
	assert.Equal(t, []string{"/documents/taxes"}, d.Excluded())
	assert.Empty(t, p.View())
}

func TestPickerTogglePartialIncludesAll(t *testing.T) {
	d := sampleDaemon()
	d.SetExcluded("/documents/taxes")
	p := newPicker(t, d)
	settle(t, p)
	require.Equal(t, selsync.PartiallyChecked, p.rows[0].Node.CheckState())

	p.Update(space)
	assert.Equal(t, selsync.Checked, p.rows[0].Node.CheckState())

	p.Update(space)
	assert.Equal(t, selsync.Unchecked, p.rows[0].Node.CheckState())
}

func TestPickerCommitAfterListingFailure(t *testing.T) {
	d := sampleDaemon()
	d.FailListing("/documents", common.ErrDaemonUnavailable)
	p := newPicker(t, d)
	settle(t, p)

	p.Update(down)
	p.Update(space)
	p.Update(runes("k"))
	p.Update(enter)
	settle(t, p)
	require.Equal(t, []string{selsync.FailureMessage}, rowNames(p))

	_, cmd := p.Update(runes("u"))
	assert.Nil(t, cmd)
	assert.True(t, p.statusErr)
	assert.False(t, p.Result().Committed)
	assert.Zero(t, d.Stats().Commits)
	assert.Contains(t, p.View(), "Nothing was changed")
}

func TestPickerCollapse(t *testing.T) {
	p := newPicker(t, sampleDaemon())
	settle(t, p)

	p.Update(enter)
	settle(t, p)
	p.Update(down)
	p.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, p.cursor)

	p.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, []string{"Documents", "Photos", "readme.md"}, rowNames(p))
}

func TestPickerSelectAll(t *testing.T) {
	p := newPicker(t, sampleDaemon())
	settle(t, p)

	p.Update(runes("a"))
	assert.False(t, p.session.AllTopLevelChecked())
	for _, r := range p.rows {
		assert.Equal(t, selsync.Unchecked, r.Node.CheckState())
	}

	p.Update(runes("a"))
	assert.True(t, p.session.AllTopLevelChecked())
}

func TestPickerSort(t *testing.T) {
	p := newPicker(t, sampleDaemon())
	settle(t, p)

	p.Update(runes("s"))
	assert.Equal(t, []string{"Photos", "Documents", "readme.md"}, rowNames(p))

	p.Update(runes("s"))
	assert.Equal(t, []string{"Documents", "Photos", "readme.md"}, rowNames(p))
}

func TestPickerCommitNothing(t *testing.T) {
	d := sampleDaemon()
	p := newPicker(t, d)
	settle(t, p)

	_, cmd := p.Update(runes("u"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to change.", p.status)
	assert.Zero(t, d.Stats().Commits)
}

func TestPickerCommitBusy(t *testing.T) {
	d := sampleDaemon()
	d.FailCommit(common.ErrBusy)
	p := newPicker(t, d)
	settle(t, p)

	p.Update(space)
	_, cmd := p.Update(runes("u"))
	assert.Nil(t, cmd)
	assert.True(t, p.statusErr)
	assert.False(t, p.Result().Committed)
	assert.Contains(t, p.View(), "busy")
}

func TestPickerListingFailure(t *testing.T) {
	d := sampleDaemon()
	d.FailListing("/", common.ErrDaemonUnavailable)
	p := newPicker(t, d)
	settle(t, p)

	assert.Equal(t, []string{selsync.FailureMessage}, rowNames(p))
	p.Update(space)
	p.Update(runes("a"))
	assert.False(t, p.session.SelectionModified())
}

func TestPickerQuit(t *testing.T) {
	p := newPicker(t, sampleDaemon())

	_, cmd := p.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.False(t, p.Result().Committed)
	assert.Nil(t, p.waitQueue()())
}
