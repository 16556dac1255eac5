package selsync

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/cases"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// Dispatcher runs fn on the goroutine that owns the tree.
type Dispatcher func(fn func())

// ListingHandler receives the results of one listing on the owning goroutine.
// Zero or more pages are followed by exactly one of OnDone or OnFailed,
// unless the listing is aborted first, in which case nothing more is delivered.
type ListingHandler struct {
	OnPage   func(entries []daemon.Entry)
	OnDone   func()
	OnFailed func(err error)
}

// Fetcher lists remote folders in the background for one session.
type Fetcher struct {
	dial     daemon.Dialer
	dispatch Dispatcher
	sem      *semaphore.Weighted
	ctx      context.Context
	cancel   context.CancelFunc
	aborted  atomic.Bool
	wg       sync.WaitGroup
	log      *common.ComponentLogger
}

// NewFetcher creates a fetcher running at most workers listings at a time.
// Each listing dials its own connection with dial.
func NewFetcher(dial daemon.Dialer, dispatch Dispatcher, workers int) *Fetcher {
	if workers < 1 {
		workers = common.DefaultListingWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher{
		dial:     dial,
		dispatch: dispatch,
		sem:      semaphore.NewWeighted(int64(workers)),
		ctx:      ctx,
		cancel:   cancel,
		log:      common.GetLogger().Named("fetcher"),
	}
}

// Listing is a handle on one background folder listing.
type Listing struct {
	path      string
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}
	err       error
}

// Path returns the listed folder.
func (l *Listing) Path() string {
	return l.path
}

// Cancel stops this listing. No further results are delivered for it.
func (l *Listing) Cancel() {
	l.cancelled.Store(true)
	l.cancel()
}

// Done is closed when the worker has finished.
func (l *Listing) Done() <-chan struct{} {
	return l.done
}

// Err returns the failure that ended the listing, once Done is closed.
// Cancelled and aborted listings report nil.
func (l *Listing) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// ListChildren starts listing path and returns immediately.
func (f *Fetcher) ListChildren(path string, h ListingHandler) *Listing {
	ctx, cancel := context.WithCancel(f.ctx)
	l := &Listing{
		path:   path,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if f.aborted.Load() {
		cancel()
		close(l.done)
		return l
	}

	f.wg.Add(1)
	go f.run(l, h)
	return l
}

// Abort stops every listing started by this fetcher. It is safe to call
// more than once.
func (f *Fetcher) Abort() {
	if f.aborted.CompareAndSwap(false, true) {
		f.log.Debug("aborting listings")
	}
	f.cancel()
}

// Aborted reports whether Abort has been called.
func (f *Fetcher) Aborted() bool {
	return f.aborted.Load()
}

// Wait blocks until every started listing has finished its worker.
// Results may still be queued on the dispatcher.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// Close aborts all listings and waits for their workers to exit.
func (f *Fetcher) Close() {
	f.Abort()
	f.wg.Wait()
}

func (f *Fetcher) stopped(l *Listing) bool {
	return f.aborted.Load() || l.cancelled.Load()
}

// deliver hands fn to the owning goroutine, dropping it if the listing has
// been stopped by the time it runs.
func (f *Fetcher) deliver(l *Listing, fn func()) {
	f.dispatch(func() {
		if f.stopped(l) {
			return
		}
		fn()
	})
}

func (f *Fetcher) run(l *Listing, h ListingHandler) {
	defer f.wg.Done()
	defer close(l.done)
	defer l.cancel()

	if err := f.sem.Acquire(l.ctx, 1); err != nil {
		return
	}
	defer f.sem.Release(1)

	if f.stopped(l) {
		return
	}

	err := f.list(l, h)
	if f.stopped(l) {
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotAFolder), errors.Is(err, common.ErrNotFound):
		f.log.Debug("%s is gone or not a folder: %v", l.path, err)
		f.deliver(l, func() {
			if h.OnPage != nil {
				h.OnPage(nil)
			}
		})
	default:
		f.log.Warn("listing %s failed: %v", l.path, err)
		l.err = err
		f.deliver(l, func() {
			if h.OnFailed != nil {
				h.OnFailed(err)
			}
		})
		return
	}

	f.deliver(l, func() {
		if h.OnDone != nil {
			h.OnDone()
		}
	})
}

// list streams the pages of l to h until the listing ends or is stopped.
func (f *Fetcher) list(l *Listing, h ListingHandler) error {
	client, err := f.dial(l.ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	it, err := client.ListFolderIterator(l.ctx, l.path)
	if err != nil {
		return err
	}

	for !f.stopped(l) {
		page, err := it.Next(l.ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		sortEntries(page)
		f.deliver(l, func() {
			if h.OnPage != nil {
				h.OnPage(page)
			}
		})
	}
	return nil
}

// sortEntries orders a page by case-folded name.
func sortEntries(entries []daemon.Entry) {
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Name] = foldCase(e.Name)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return keys[entries[i].Name] < keys[entries[j].Name]
	})
}

// foldCase returns s with Unicode case folding applied.
func foldCase(s string) string {
	return cases.Fold().String(s)
}
