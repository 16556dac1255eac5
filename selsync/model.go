package selsync

import (
	"github.com/yllada/maestral-gtk/common"
)

// Model exposes a tree through row and column addressing for list and tree
// views. A nil parent stands for the invisible root.
type Model struct {
	root      *Node
	header    []string
	observers []observerEntry
	nextID    int
	message   string
	log       *common.ComponentLogger
}

type observerEntry struct {
	id int
	fn Observer
}

// NewModel wraps root. The model receives all events raised by the tree.
func NewModel(root *Node) *Model {
	m := &Model{
		root:   root,
		header: []string{"Name", "Included"},
		log:    common.GetLogger().Named("selsync"),
	}
	root.tree.sink = m.handleTreeEvent
	return m
}

// Root returns the invisible root node "/".
func (m *Model) Root() *Node {
	return m.root
}

// Subscribe registers an observer and returns a function removing it.
func (m *Model) Subscribe(o Observer) (unsubscribe func()) {
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, observerEntry{id: id, fn: o})
	return func() {
		for i, e := range m.observers {
			if e.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) emit(e Event) {
	observers := append([]observerEntry(nil), m.observers...)
	for _, o := range observers {
		o.fn(e)
	}
}

func (m *Model) handleTreeEvent(e Event) {
	switch e.Type {
	case EventLoadingDone:
		m.emit(Event{Type: EventDataChanged})
		m.emit(Event{Type: EventLayoutChanged})
		m.emit(e)
	case EventLoadingFailed:
		m.log.Warn("listing %s failed: %v", e.Node.PathDisplay(), e.Err)
		m.displayMessage(FailureMessage, e.Err)
	default:
		m.emit(e)
	}
}

// DisplayMessage replaces the whole tree with a single message row.
func (m *Model) DisplayMessage(message string) {
	m.displayMessage(message, nil)
}

func (m *Model) displayMessage(message string, err error) {
	m.message = message
	m.root.children = []*Node{newMessageNode(m.root, message)}
	if m.root.loadState != Loaded {
		m.root.loadState = Failed
	}
	m.emit(Event{Type: EventLoadingFailed, Err: err})
	m.emit(Event{Type: EventModelReset})
}

// DisplayedMessage returns the message shown instead of the tree, if any.
func (m *Model) DisplayedMessage() (string, bool) {
	return m.message, m.message != ""
}

func (m *Model) nodeOrRoot(n *Node) *Node {
	if n == nil {
		return m.root
	}
	return n
}

// ColumnCount returns the number of columns.
func (m *Model) ColumnCount() int {
	return len(m.header)
}

// RowCount returns the number of children of parent. It starts loading
// parent's children if that has not happened yet.
func (m *Model) RowCount(parent *Node) int {
	return len(m.nodeOrRoot(parent).Children())
}

// Index returns the child at row of parent, or nil if out of range.
// The column is validated but every column addresses the same node.
func (m *Model) Index(row, column int, parent *Node) *Node {
	if column < 0 || column >= m.ColumnCount() || row < 0 {
		return nil
	}
	children := m.nodeOrRoot(parent).Children()
	if row >= len(children) {
		return nil
	}
	return children[row]
}

// Parent returns the parent of n, nil for top-level rows.
func (m *Model) Parent(n *Node) *Node {
	if n == nil || n.parent == nil || n.parent == m.root {
		return nil
	}
	return n.parent
}

// Row returns the position of n among its siblings.
func (m *Model) Row(n *Node) int {
	if n == nil {
		return -1
	}
	return n.Row()
}

// HasChildren reports whether n may have rows below it.
func (m *Model) HasChildren(n *Node) bool {
	if n == nil {
		return true
	}
	return n.CanHaveChildren()
}

// Data returns the display text of n for column.
func (m *Model) Data(n *Node, column int) string {
	if n == nil {
		return ""
	}
	return n.Data(column)
}

// HeaderData returns the title of column.
func (m *Model) HeaderData(column int) (string, bool) {
	if column < 0 || column >= len(m.header) {
		return "", false
	}
	return m.header[column], true
}

// CheckState returns the selection of n. Message rows have none.
func (m *Model) CheckState(n *Node) (CheckState, bool) {
	if n == nil || n.kind != KindPath {
		return Unchecked, false
	}
	return n.checkState, true
}

// SetCheckState sets the selection of n and notifies observers.
// It returns false for message rows and nil.
func (m *Model) SetCheckState(n *Node, value CheckState) bool {
	if n == nil || n.kind != KindPath {
		return false
	}
	n.SetCheckState(value)
	m.emit(Event{Type: EventLayoutChanged})
	return true
}

// Sort orders every loaded level of the tree.
func (m *Model) Sort(column int, order SortOrder) {
	m.root.Sort(column, order)
	m.emit(Event{Type: EventDataChanged})
	m.emit(Event{Type: EventLayoutChanged})
}

// TopLevel returns the loaded rows directly under the root.
func (m *Model) TopLevel() []*Node {
	return m.root.LoadedChildren()
}
