package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/config"
	"github.com/yllada/maestral-gtk/daemon"
	"github.com/yllada/maestral-gtk/daemon/daemontest"
	"github.com/yllada/maestral-gtk/journal"
)

func newTestCLI(t *testing.T, d *daemontest.Daemon, withJournal bool) (*CLI, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	var j *journal.Journal
	if withJournal {
		var err error
		j, err = journal.Open(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
	}

	out := &bytes.Buffer{}
	c := NewWithClient(config.DefaultConfig(), d.Client(), d.Dialer(), j, out)
	t.Cleanup(func() { c.Close() })
	return c, out
}

func sampleDaemon() *daemontest.Daemon {
	d := daemontest.New("maestral")
	d.AddFile("/Documents/Work/plan.txt")
	d.AddFolder("/Documents/Taxes")
	d.AddFile("/Documents/notes.txt")
	d.AddFolder("/Photos/2024")
	d.AddFile("/readme.md")
	return d
}

func TestStatus(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.Status(context.Background()))
	assert.Contains(t, out.String(), "maestral")
	assert.Contains(t, out.String(), daemon.IdleStatusText)
	assert.Contains(t, out.String(), "Credentials:")
}

func TestStatusError(t *testing.T) {
	d := sampleDaemon()
	d.FailStatus(common.ErrDaemonUnavailable)
	c, _ := newTestCLI(t, d, false)

	err := c.Status(context.Background())
	assert.ErrorIs(t, err, common.ErrDaemonUnavailable)
}

func TestPrintConfigs(t *testing.T) {
	c, out := newTestCLI(t, sampleDaemon(), false)

	require.NoError(t, c.printConfigs(nil))
	assert.Contains(t, out.String(), "No Maestral configurations found.")

	out.Reset()
	require.NoError(t, c.printConfigs([]daemon.ConfigInfo{
		{Name: "maestral", Path: "/home/u/Dropbox", AccountID: "dbid:1"},
		{Name: "work", Path: "/home/u/Work"},
	}))
	assert.Contains(t, out.String(), "CONFIG")
	assert.Contains(t, out.String(), "dbid:1")
	assert.Contains(t, out.String(), "/home/u/Work")
}

func TestPauseResume(t *testing.T) {
	c, out := newTestCLI(t, sampleDaemon(), false)

	require.NoError(t, c.Pause(context.Background()))
	assert.Contains(t, out.String(), "paused")

	require.NoError(t, c.Resume(context.Background()))
	assert.Contains(t, out.String(), "resumed")
}

func TestIssues(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.Issues(context.Background()))
	assert.Contains(t, out.String(), "No sync issues.")

	out.Reset()
	d.SetSyncIssues(daemon.SyncIssue{Title: "Could not upload", Message: "File too large", DbxPath: "/big.iso"})
	require.NoError(t, c.Issues(context.Background()))
	assert.Contains(t, out.String(), "/big.iso")
	assert.Contains(t, out.String(), "Could not upload: File too large")
}

func TestActivity(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.Activity(context.Background(), 10))
	assert.Contains(t, out.String(), "No recent changes.")

	base := time.Unix(1700000000, 0)
	d.AddEvent(daemon.SyncEvent{ID: "1", ChangeType: "added", DbxPath: "/Photos/old.jpg", Time: base})
	d.AddEvent(daemon.SyncEvent{ID: "2", ChangeType: "changed", DbxPath: "/readme.md", Time: base.Add(time.Hour)})
	d.AddEvent(daemon.SyncEvent{ID: "3", ChangeType: "removed", DbxPath: "/notes.txt", Time: base.Add(-time.Hour)})

	out.Reset()
	require.NoError(t, c.Activity(context.Background(), 2))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "readme.md"))
	assert.True(t, strings.HasPrefix(lines[1], "old.jpg"))
	assert.Contains(t, lines[1], "Added")
}

func TestUnlinkAndRebuild(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.RebuildIndex(context.Background()))
	assert.Equal(t, 1, d.Stats().Rebuilds)

	require.NoError(t, c.Unlink(context.Background()))
	assert.False(t, d.Linked())
	assert.Contains(t, out.String(), "Account unlinked")

	out.Reset()
	require.NoError(t, c.Status(context.Background()))
	assert.Contains(t, out.String(), "not linked")
}

func TestExcluded(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.Excluded(context.Background()))
	assert.Contains(t, out.String(), "No excluded folders.")

	out.Reset()
	d.SetExcluded("/Photos", "/Documents/Taxes")
	require.NoError(t, c.Excluded(context.Background()))
	assert.Equal(t, "/documents/taxes\n/photos\n", out.String())
}

func TestSelectExclude(t *testing.T) {
	d := sampleDaemon()
	c, out := newTestCLI(t, d, true)
	ctx := context.Background()

	require.NoError(t, c.Select(ctx, []string{"/Documents/Taxes", "photos/"}, false))
	assert.Equal(t, []string{"/documents/taxes", "/photos"}, d.Excluded())
	assert.Contains(t, out.String(), "2 excluded")

	changes, err := c.Journal().List(ctx, "maestral", 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"/documents/taxes", "/photos"}, changes[0].Added)
	assert.Empty(t, changes[0].Removed)
}

func TestSelectInclude(t *testing.T) {
	d := sampleDaemon()
	d.SetExcluded("/documents/taxes", "/photos")
	c, _ := newTestCLI(t, d, false)

	require.NoError(t, c.Select(context.Background(), []string{"/Photos"}, true))
	assert.Equal(t, []string{"/documents/taxes"}, d.Excluded())
}

func TestSelectUnchanged(t *testing.T) {
	d := sampleDaemon()
	d.SetExcluded("/photos")
	c, out := newTestCLI(t, d, false)

	require.NoError(t, c.Select(context.Background(), []string{"/Photos"}, false))
	assert.Contains(t, out.String(), "Nothing to change.")
	assert.Zero(t, d.Stats().Commits)
}

func TestSelectErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing path", func(t *testing.T) {
		c, _ := newTestCLI(t, sampleDaemon(), false)
		err := c.Select(ctx, []string{"/Nope"}, false)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("below a file", func(t *testing.T) {
		c, _ := newTestCLI(t, sampleDaemon(), false)
		err := c.Select(ctx, []string{"/readme.md/x"}, false)
		assert.ErrorIs(t, err, common.ErrNotAFolder)
	})

	t.Run("root", func(t *testing.T) {
		c, _ := newTestCLI(t, sampleDaemon(), false)
		assert.Error(t, c.Select(ctx, []string{"/"}, false))
	})

	t.Run("listing failure", func(t *testing.T) {
		d := sampleDaemon()
		d.FailListing("/", common.ErrDaemonUnavailable)
		c, _ := newTestCLI(t, d, false)
		err := c.Select(ctx, []string{"/Photos"}, false)
		assert.ErrorIs(t, err, common.ErrDaemonUnavailable)
	})

	t.Run("offline commit", func(t *testing.T) {
		d := sampleDaemon()
		d.SetConnected(false)
		c, _ := newTestCLI(t, d, false)
		err := c.Select(ctx, []string{"/Photos"}, false)
		assert.ErrorIs(t, err, common.ErrNotConnected)
		assert.Empty(t, d.Excluded())
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestCLI(t, sampleDaemon(), false)
	assert.Error(t, c.History(ctx, 10))

	d := sampleDaemon()
	c, out := newTestCLI(t, d, true)
	require.NoError(t, c.History(ctx, 10))
	assert.Contains(t, out.String(), "No selective sync changes recorded.")

	require.NoError(t, c.Select(ctx, []string{"/Photos"}, false))
	out.Reset()
	require.NoError(t, c.History(ctx, 10))
	assert.Contains(t, out.String(), "FINGERPRINT")
	assert.Contains(t, out.String(), "/photos")
}
