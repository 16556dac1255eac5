package selsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yllada/maestral-gtk/daemon/daemontest"
)

// queue is a Dispatcher that holds closures until the test drains it.
type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) dispatch(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fns = append(q.fns, fn)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// drain runs queued closures until none are left and returns how many ran.
func (q *queue) drain() int {
	ran := 0
	for {
		q.mu.Lock()
		fns := q.fns
		q.fns = nil
		q.mu.Unlock()
		if len(fns) == 0 {
			return ran
		}
		for _, fn := range fns {
			fn()
			ran++
		}
	}
}

// settle waits for all workers and applies their results.
func settle(t *testing.T, q *queue, f *Fetcher) {
	t.Helper()
	for i := 0; i < 10; i++ {
		f.Wait()
		if q.drain() == 0 {
			return
		}
	}
	t.Fatal("tree did not settle")
}

type fixture struct {
	d       *daemontest.Daemon
	q       *queue
	fetcher *Fetcher
	model   *Model
	events  []Event
}

func newFixture(t *testing.T, d *daemontest.Daemon, excluded ...string) *fixture {
	t.Helper()
	fx := &fixture{d: d, q: &queue{}}
	fx.fetcher = NewFetcher(d.Dialer(), fx.q.dispatch, 2)
	t.Cleanup(fx.fetcher.Close)
	fx.model = NewModel(NewRoot(fx.fetcher, excluded))
	fx.model.Subscribe(func(e Event) { fx.events = append(fx.events, e) })
	return fx
}

// load lists n and returns its children once the listing has been applied.
func (fx *fixture) load(t *testing.T, n *Node) []*Node {
	t.Helper()
	n.Children()
	settle(t, fx.q, fx.fetcher)
	return n.LoadedChildren()
}

func (fx *fixture) eventTypes() []EventType {
	types := make([]EventType, len(fx.events))
	for i, e := range fx.events {
		types[i] = e.Type
	}
	return types
}

// child returns the loaded child of parent called name, listing parent first if needed.
func (fx *fixture) child(t *testing.T, parent *Node, name string) *Node {
	t.Helper()
	if parent.LoadState() == NotStarted {
		fx.load(t, parent)
	}
	for _, c := range parent.LoadedChildren() {
		if c.Kind() == KindPath && c.Basename() == name {
			return c
		}
	}
	require.FailNowf(t, "missing child", "%s has no loaded child %q", parent.PathDisplay(), name)
	return nil
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Data(ColumnName)
	}
	return out
}

// sampleDaemon serves a small Dropbox:
//
//	/Documents/{Work/, Taxes/, notes.txt}
//	/Photos/2024/
//	/readme.md
func sampleDaemon() *daemontest.Daemon {
	d := daemontest.New("maestral")
	d.AddFolder("/Documents/Work")
	d.AddFolder("/Documents/Taxes")
	d.AddFile("/Documents/notes.txt")
	d.AddFolder("/Photos/2024")
	d.AddFile("/readme.md")
	return d
}
