package daemontest

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

func drain(t *testing.T, it daemon.FolderIterator) [][]daemon.Entry {
	t.Helper()
	var pages [][]daemon.Entry
	for {
		page, err := it.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return pages
		}
		require.NoError(t, err)
		pages = append(pages, page)
	}
}

func TestListingPages(t *testing.T) {
	d := New("maestral")
	d.AddFile("/Docs/a.txt")
	d.AddFile("/Docs/b.txt")
	d.AddFolder("/Docs/Sub")
	d.SetPageSize(2)

	c := d.Client()
	defer c.Close()

	it, err := c.ListFolderIterator(context.Background(), "/docs")
	require.NoError(t, err)

	pages := drain(t, it)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0], 2)
	assert.Len(t, pages[1], 1)
	assert.Equal(t, "/Docs/Sub", pages[1][0].PathDisplay)
	assert.Equal(t, "/docs/sub", pages[1][0].PathLower)
	assert.True(t, pages[1][0].IsFolder)
}

func TestListingRootCreatesParents(t *testing.T) {
	d := New("maestral")
	d.AddFile("/Photos/2024/img.jpg")

	it, err := d.Client().ListFolderIterator(context.Background(), "/")
	require.NoError(t, err)

	pages := drain(t, it)
	require.Len(t, pages, 1)
	require.Len(t, pages[0], 1)
	assert.Equal(t, "Photos", pages[0][0].Name)
	assert.True(t, pages[0][0].IsFolder)
}

func TestListingDomainErrors(t *testing.T) {
	d := New("maestral")
	d.AddFile("/file.txt")
	c := d.Client()

	it, _ := c.ListFolderIterator(context.Background(), "/file.txt")
	_, err := it.Next(context.Background())
	assert.ErrorIs(t, err, common.ErrNotAFolder)

	it, _ = c.ListFolderIterator(context.Background(), "/missing")
	_, err = it.Next(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestHoldBlocksUntilRelease(t *testing.T) {
	d := New("maestral")
	d.AddFolder("/a")
	release := d.Hold()

	it, _ := d.Client().ListFolderIterator(context.Background(), "/")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := it.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	page, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestDialerCountsConnections(t *testing.T) {
	d := New("maestral")
	dial := d.Dialer()

	c1, err := dial(context.Background())
	require.NoError(t, err)
	c2, err := dial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats().OpenClients)

	require.NoError(t, c1.Close())
	require.NoError(t, c1.Close())
	require.NoError(t, c2.Close())
	assert.Equal(t, Stats{Dials: 2}, d.Stats())

	_, err = c1.Status(context.Background())
	assert.ErrorIs(t, err, common.ErrDaemonUnavailable)
}

func TestCommitFailure(t *testing.T) {
	d := New("maestral")
	d.SetExcluded("/old")
	d.FailCommit(common.ErrBusy)
	c := d.Client()

	err := c.SetExcludedItems(context.Background(), []string{"/new"})
	assert.ErrorIs(t, err, common.ErrBusy)
	assert.Equal(t, []string{"/old"}, d.Excluded())

	d.FailCommit(nil)
	require.NoError(t, c.SetExcludedItems(context.Background(), []string{"/new"}))
	assert.Equal(t, []string{"/new"}, d.Excluded())
	assert.Equal(t, 2, d.Stats().Commits)
}

func TestSyncIssuesAndHistory(t *testing.T) {
	d := New("maestral")
	d.SetSyncIssues(daemon.SyncIssue{Title: "Could not upload", Message: "File too large", DbxPath: "/big.iso"})
	when := time.Unix(1700000000, 0)
	d.AddEvent(daemon.SyncEvent{ID: "1", ChangeType: "added", DbxPath: "/a.txt", Time: when})

	c := d.Client()
	defer c.Close()
	ctx := context.Background()

	issues, err := c.SyncErrors(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "/big.iso", issues[0].DbxPath)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.SyncErrors)
	assert.Equal(t, common.StateError, status.State)

	events, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, when, events[0].Time)

	boom := errors.New("bus gone")
	d.FailStatus(boom)
	_, err = c.SyncErrors(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = c.History(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestUnlinkAndRebuild(t *testing.T) {
	d := New("maestral")
	c := d.Client()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.RebuildIndex(ctx))
	require.NoError(t, c.Unlink(ctx))

	assert.False(t, d.Linked())
	assert.Equal(t, 1, d.Stats().Unlinks)
	assert.Equal(t, 1, d.Stats().Rebuilds)
	account, err := c.AccountInfo(ctx)
	require.NoError(t, err)
	assert.Empty(t, account.ID)
	connected, err := c.Connected(ctx)
	require.NoError(t, err)
	assert.False(t, connected)
}
