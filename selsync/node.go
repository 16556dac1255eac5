package selsync

import (
	"path"

	"github.com/yllada/maestral-gtk/common"
	"github.com/yllada/maestral-gtk/daemon"
)

// Kind distinguishes folder and file entries from message rows.
type Kind int

const (
	// KindPath is a remote file or folder.
	KindPath Kind = iota
	// KindMessage is a text row such as "Loading..." shown in place of contents.
	KindMessage
)

// EventType identifies a change notification.
type EventType int

const (
	// EventDataChanged means a node's check state or text changed. A nil
	// node means any row may have changed.
	EventDataChanged EventType = iota
	// EventLayoutChanged means rows were added, removed or reordered.
	EventLayoutChanged
	// EventLoadingDone means a node finished loading its children.
	EventLoadingDone
	// EventLoadingFailed means a listing failed and the tree was replaced by a message.
	EventLoadingFailed
	// EventModelReset means every row should be re-read from the root.
	EventModelReset
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventDataChanged:
		return "DataChanged"
	case EventLayoutChanged:
		return "LayoutChanged"
	case EventLoadingDone:
		return "LoadingDone"
	case EventLoadingFailed:
		return "LoadingFailed"
	case EventModelReset:
		return "ModelReset"
	default:
		return "Unknown"
	}
}

// Event is a change notification from the tree.
type Event struct {
	Type EventType
	Node *Node
	Err  error
}

// Observer receives tree events on the owning goroutine.
type Observer func(Event)

// tree holds what every node of one session shares.
type tree struct {
	fetcher     *Fetcher
	excluded    []string
	excludedSet map[string]struct{}
	sink        Observer
}

func (t *tree) emit(e Event) {
	if t.sink != nil {
		t.sink(e)
	}
}

// originalState computes a new node's state from the excluded snapshot.
func (t *tree) originalState(pathLower string, parent *Node) CheckState {
	if _, ok := t.excludedSet[pathLower]; ok {
		return Unchecked
	}
	if parent != nil && parent.originalCheckState == Unchecked {
		return Unchecked
	}
	for _, excluded := range t.excluded {
		if common.IsChild(excluded, pathLower) {
			return PartiallyChecked
		}
	}
	return Checked
}

// Node is one row of the selective sync tree: either a remote path or a
// message. Message nodes have no check state and no children.
type Node struct {
	kind   Kind
	tree   *tree
	parent *Node

	children  []*Node
	loadState LoadState

	pathLower          string
	pathDisplay        string
	basename           string
	isFolder           bool
	checkState         CheckState
	originalCheckState CheckState
	checkStateChanged  bool

	message string
}

// NewRoot creates the root folder "/" of a tree. excluded is the daemon's
// excluded set at the start of the session.
func NewRoot(fetcher *Fetcher, excluded []string) *Node {
	set := common.StringSet(excluded)
	t := &tree{
		fetcher:     fetcher,
		excluded:    common.SortedKeys(set),
		excludedSet: set,
	}
	return newPathNode(t, daemon.Entry{PathLower: "/", PathDisplay: "/", IsFolder: true}, nil)
}

func newPathNode(t *tree, e daemon.Entry, parent *Node) *Node {
	n := &Node{
		kind:        KindPath,
		tree:        t,
		parent:      parent,
		pathLower:   e.PathLower,
		pathDisplay: e.PathDisplay,
		basename:    basename(e.PathDisplay),
		isFolder:    e.IsFolder,
	}
	if e.IsFolder {
		n.children = []*Node{newMessageNode(n, LoadingMessage)}
	}

	n.originalCheckState = t.originalState(n.pathLower, parent)

	if parent != nil && parent.checkStateChanged && parent.checkState != PartiallyChecked {
		n.checkState = parent.checkState
		n.checkStateChanged = true
	} else {
		n.checkState = n.originalCheckState
	}
	return n
}

func newMessageNode(parent *Node, message string) *Node {
	return &Node{
		kind:      KindMessage,
		tree:      parent.tree,
		parent:    parent,
		loadState: Loaded,
		message:   message,
	}
}

func basename(p string) string {
	if p == "/" || p == "" {
		return ""
	}
	return path.Base(p)
}

// Kind returns whether this is a path or a message node.
func (n *Node) Kind() Kind { return n.kind }

// PathLower returns the case-folded remote path.
func (n *Node) PathLower() string { return n.pathLower }

// PathDisplay returns the remote path as displayed by Dropbox.
func (n *Node) PathDisplay() string { return n.pathDisplay }

// Basename returns the last element of the display path.
func (n *Node) Basename() string { return n.basename }

// IsFolder reports whether the node is a remote folder.
func (n *Node) IsFolder() bool { return n.kind == KindPath && n.isFolder }

// Message returns the text of a message node.
func (n *Node) Message() string { return n.message }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// CheckState returns the current selection.
func (n *Node) CheckState() CheckState { return n.checkState }

// OriginalCheckState returns the selection derived from the excluded snapshot.
func (n *Node) OriginalCheckState() CheckState { return n.originalCheckState }

// CheckStateChanged reports whether an edit in this session touched the node.
func (n *Node) CheckStateChanged() bool { return n.checkStateChanged }

// LoadState returns the state of the node's own listing.
func (n *Node) LoadState() LoadState { return n.loadState }

// CanHaveChildren reports whether the node is a folder.
func (n *Node) CanHaveChildren() bool { return n.IsFolder() }

// Data returns the display text for column.
func (n *Node) Data(column int) string {
	if column != ColumnName {
		return ""
	}
	if n.kind == KindMessage {
		return n.message
	}
	return n.basename
}

// Row returns the node's index among its parent's children.
func (n *Node) Row() int {
	if n.parent == nil {
		return 0
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Children returns the current children, starting the listing on first use.
// While the listing runs the result holds a "Loading..." message node.
func (n *Node) Children() []*Node {
	if n.kind == KindPath && n.loadState == NotStarted {
		n.startLoading()
	}
	return n.children
}

// LoadedChildren returns the current children without starting a listing.
func (n *Node) LoadedChildren() []*Node {
	if n.loadState == NotStarted {
		return nil
	}
	return n.children
}

func (n *Node) startLoading() {
	n.loadState = Loading
	if !n.isFolder || n.tree.fetcher == nil {
		n.loadingDone()
		return
	}
	n.tree.fetcher.ListChildren(n.pathLower, ListingHandler{
		OnPage:   n.appendEntries,
		OnDone:   n.loadingDone,
		OnFailed: n.loadingFailed,
	})
}

// appendEntries adds a page of children ahead of the placeholder.
func (n *Node) appendEntries(entries []daemon.Entry) {
	if n.loadState != Loading || len(entries) == 0 {
		return
	}
	var paths, messages []*Node
	for _, c := range n.children {
		if c.kind == KindMessage {
			messages = append(messages, c)
		} else {
			paths = append(paths, c)
		}
	}
	for _, e := range entries {
		paths = append(paths, newPathNode(n.tree, e, n))
	}
	n.children = append(paths, messages...)
	n.tree.emit(Event{Type: EventLayoutChanged, Node: n})
}

func (n *Node) dropMessages() {
	kept := n.children[:0]
	for _, c := range n.children {
		if c.kind == KindPath {
			kept = append(kept, c)
		}
	}
	n.children = kept
}

func (n *Node) loadingDone() {
	if n.loadState != Loading {
		return
	}
	n.dropMessages()
	n.loadState = Loaded
	n.Sort(ColumnName, Ascending)
	n.tree.emit(Event{Type: EventLoadingDone, Node: n})
}

func (n *Node) loadingFailed(err error) {
	if n.loadState != Loading {
		return
	}
	n.dropMessages()
	n.loadState = Failed
	n.tree.emit(Event{Type: EventLoadingFailed, Node: n, Err: err})
}

// SetCheckState sets the node's selection and propagates it through the
// loaded part of the tree. It is a no-op on message nodes.
func (n *Node) SetCheckState(state CheckState) {
	if n.kind != KindPath {
		return
	}
	n.checkStateChanged = true
	n.checkState = state
	n.tree.emit(Event{Type: EventDataChanged, Node: n})

	n.propagateToChildren(state)
	n.propagateToParent()
}

// propagateToChildren pushes a definite state into every loaded descendant.
func (n *Node) propagateToChildren(state CheckState) {
	if state == PartiallyChecked {
		return
	}
	for _, c := range n.children {
		if c.kind != KindPath {
			continue
		}
		c.checkStateChanged = true
		c.checkState = state
		n.tree.emit(Event{Type: EventDataChanged, Node: c})
		c.propagateToChildren(state)
	}
}

// propagateToParent recomputes every ancestor as max(PartiallyChecked, min(children)).
func (n *Node) propagateToParent() {
	p := n.parent
	if p == nil {
		return
	}
	p.checkStateChanged = true

	lowest := Checked
	for _, c := range p.children {
		if c.kind == KindPath && c.checkState < lowest {
			lowest = c.checkState
		}
	}
	p.checkState = max(lowest, PartiallyChecked)
	n.tree.emit(Event{Type: EventDataChanged, Node: p})

	p.propagateToParent()
}

// SelectionModified reports whether this node or any loaded descendant
// differs from its original state.
func (n *Node) SelectionModified() bool {
	if n.kind != KindPath {
		return false
	}
	if n.checkState != n.originalCheckState {
		return true
	}
	for _, c := range n.children {
		if c.SelectionModified() {
			return true
		}
	}
	return false
}

// Sort orders the children and, recursively, every loaded subtree.
func (n *Node) Sort(column int, order SortOrder) {
	sortNodes(n.children, column, order)
	for _, c := range n.children {
		c.Sort(column, order)
	}
}
