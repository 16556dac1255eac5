package selsync

import "sort"

// sortKey is the comparable form of a node for one column.
type sortKey struct {
	text  string
	state int
}

// keyFor builds the sort key of n. In the name column folders carry a
// prefix that sorts them before files in either direction.
func keyFor(n *Node, column int, reverse bool) sortKey {
	switch {
	case column == ColumnName && n.kind == KindPath:
		prefix := ""
		if n.isFolder != reverse {
			prefix = "\x00"
		}
		return sortKey{text: prefix + foldCase(n.basename)}
	case column == ColumnIncluded:
		if n.kind != KindPath {
			return sortKey{state: -1}
		}
		return sortKey{state: int(n.checkState)}
	default:
		return sortKey{text: n.Data(column)}
	}
}

func (k sortKey) less(other sortKey) bool {
	if k.state != other.state {
		return k.state < other.state
	}
	return k.text < other.text
}

// sortNodes orders siblings in place. Equal keys keep their order.
func sortNodes(nodes []*Node, column int, order SortOrder) {
	if len(nodes) < 2 {
		return
	}
	reverse := order == Descending

	keys := make(map[*Node]sortKey, len(nodes))
	for _, n := range nodes {
		keys[n] = keyFor(n, column, reverse)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if reverse {
			return keys[nodes[j]].less(keys[nodes[i]])
		}
		return keys[nodes[i]].less(keys[nodes[j]])
	})
}
