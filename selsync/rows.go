package selsync

// VisibleRow is one line of a flattened tree view.
type VisibleRow struct {
	Node     *Node
	Depth    int
	Expanded bool
}

// VisibleRows flattens the tree for list-based views. Folders whose
// PathLower is in expanded show their children, which starts loading them.
func VisibleRows(m *Model, expanded map[string]bool) []VisibleRow {
	var rows []VisibleRow
	var walk func(parent *Node, depth int)
	walk = func(parent *Node, depth int) {
		for _, n := range parent.Children() {
			open := n.IsFolder() && expanded[n.pathLower]
			rows = append(rows, VisibleRow{Node: n, Depth: depth, Expanded: open})
			if open {
				walk(n, depth+1)
			}
		}
	}
	walk(m.root, 0)
	return rows
}
