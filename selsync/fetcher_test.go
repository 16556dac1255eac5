package selsync

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
	"github.com/yllada/maestral-gtk/daemon/daemontest"
)

// recorder counts what a listing delivers.
type recorder struct {
	mu     sync.Mutex
	pages  [][]daemon.Entry
	done   int
	failed []error
}

func (r *recorder) handler() ListingHandler {
	return ListingHandler{
		OnPage: func(entries []daemon.Entry) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.pages = append(r.pages, entries)
		},
		OnDone: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.done++
		},
		OnFailed: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failed = append(r.failed, err)
		},
	}
}

func (r *recorder) deliveries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages) + r.done + len(r.failed)
}

func bigFolder(n int) *daemontest.Daemon {
	d := daemontest.New("maestral")
	for i := 0; i < n; i++ {
		d.AddFile(fmt.Sprintf("/big/file-%03d", i))
	}
	return d
}

func TestFetcherDeliversSortedPages(t *testing.T) {
	d := daemontest.New("maestral")
	d.AddFile("/f/b")
	d.AddFile("/f/C")
	d.AddFile("/f/a")
	d.AddFile("/f/d")
	d.SetPageSize(3)

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 2)
	defer f.Close()

	var r recorder
	l := f.ListChildren("/f", r.handler())
	assert.Equal(t, "/f", l.Path())
	settle(t, q, f)

	<-l.Done()
	require.NoError(t, l.Err())
	require.Len(t, r.pages, 2)
	assert.Equal(t, []string{"a", "b", "C"}, []string{r.pages[0][0].Name, r.pages[0][1].Name, r.pages[0][2].Name})
	assert.Equal(t, "d", r.pages[1][0].Name)
	assert.Equal(t, 1, r.done)
	assert.Empty(t, r.failed)
	assert.Equal(t, 0, d.Stats().OpenClients)
}

func TestFetcherFailure(t *testing.T) {
	d := daemontest.New("maestral")
	d.AddFolder("/f")
	boom := errors.New("connection reset")
	d.FailListing("/f", boom)

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 1)
	defer f.Close()

	var r recorder
	l := f.ListChildren("/f", r.handler())
	settle(t, q, f)

	assert.ErrorIs(t, l.Err(), boom)
	require.Len(t, r.failed, 1)
	assert.ErrorIs(t, r.failed[0], boom)
	assert.Equal(t, 0, r.done)
	assert.Empty(t, r.pages)
}

func TestFetcherDomainErrorIsEmptySuccess(t *testing.T) {
	d := daemontest.New("maestral")

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 1)
	defer f.Close()

	var r recorder
	l := f.ListChildren("/does/not/exist", r.handler())
	settle(t, q, f)

	require.NoError(t, l.Err())
	require.Len(t, r.pages, 1)
	assert.Empty(t, r.pages[0])
	assert.Equal(t, 1, r.done)
}

func TestFetcherAbortIsIdempotentAndStopsDelivery(t *testing.T) {
	d := bigFolder(50)
	d.SetPageSize(1)

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 2)

	var r recorder
	l := f.ListChildren("/big", r.handler())

	require.Eventually(t, func() bool { return q.len() > 0 }, time.Second, time.Millisecond)

	assert.NotPanics(t, func() {
		f.Abort()
		f.Abort()
	})
	assert.True(t, f.Aborted())
	f.Close()

	<-l.Done()
	assert.NoError(t, l.Err())

	q.drain()
	assert.Equal(t, 0, r.deliveries(), "no results may be delivered after abort")
	assert.Equal(t, 0, d.Stats().OpenClients)
}

func TestFetcherAbortUnblocksHeldListings(t *testing.T) {
	d := bigFolder(3)
	release := d.Hold()
	defer release()

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 2)

	var r recorder
	listings := []*Listing{
		f.ListChildren("/big", r.handler()),
		f.ListChildren("/big", r.handler()),
		f.ListChildren("/big", r.handler()),
	}

	f.Close()

	for _, l := range listings {
		select {
		case <-l.Done():
		default:
			t.Fatal("listing still running after Close")
		}
		assert.NoError(t, l.Err())
	}
	q.drain()
	assert.Equal(t, 0, r.deliveries())
	assert.Equal(t, 0, d.Stats().OpenClients)
}

func TestFetcherListAfterAbort(t *testing.T) {
	d := bigFolder(1)
	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 1)
	f.Abort()

	l := f.ListChildren("/big", ListingHandler{})
	<-l.Done()
	f.Close()

	assert.Equal(t, 0, d.Stats().Dials)
	assert.Equal(t, 0, q.len())
}

func TestListingCancel(t *testing.T) {
	d := bigFolder(2)
	release := d.Hold()

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 2)
	defer f.Close()

	var cancelled, kept recorder
	l1 := f.ListChildren("/big", cancelled.handler())
	l2 := f.ListChildren("/big", kept.handler())

	l1.Cancel()
	<-l1.Done()
	release()
	settle(t, q, f)

	assert.Equal(t, 0, cancelled.deliveries())
	assert.Equal(t, 1, kept.done)
	assert.NoError(t, l2.Err())
	assert.False(t, f.Aborted())
}

func TestFetcherBoundsConcurrency(t *testing.T) {
	d := bigFolder(1)
	release := d.Hold()

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 2)
	defer f.Close()

	for i := 0; i < 5; i++ {
		f.ListChildren("/big", ListingHandler{})
	}

	require.Eventually(t, func() bool { return d.Stats().Dials == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, d.Stats().OpenClients)

	release()
	settle(t, q, f)
	assert.Equal(t, 5, d.Stats().Dials)
	assert.Equal(t, 0, d.Stats().OpenClients)
}

func TestFetcherDialFailure(t *testing.T) {
	d := bigFolder(1)
	d.FailDial(common.ErrDaemonUnavailable)

	q := &queue{}
	f := NewFetcher(d.Dialer(), q.dispatch, 1)
	defer f.Close()

	var r recorder
	l := f.ListChildren("/big", r.handler())
	settle(t, q, f)

	assert.ErrorIs(t, l.Err(), common.ErrDaemonUnavailable)
	require.Len(t, r.failed, 1)
}
