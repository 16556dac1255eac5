package selsync

import "github.com/yllada/maestral-gtk/common"

// CollectExcluded returns the excluded set after the edits made in the tree
// under root. It starts from original so exclusions below folders that were
// never loaded are kept.
func CollectExcluded(root *Node, original []string) map[string]struct{} {
	excluded := common.StringSet(original)

	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		switch n.checkState {
		case Unchecked:
			excluded[n.pathLower] = struct{}{}
		case PartiallyChecked:
			delete(excluded, n.pathLower)
		case Checked:
			// Descendants that were never loaded are included too.
			for p := range excluded {
				if common.IsEqualOrChild(p, n.pathLower) {
					delete(excluded, p)
				}
			}
		}

		for _, c := range n.children {
			if c.kind == KindPath {
				queue = append(queue, c)
			}
		}
	}
	return excluded
}

// CollectUnchecked returns the topmost unchecked paths under root. It is
// used on first run, when the tree starts fully included.
func CollectUnchecked(root *Node) []string {
	var paths []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			if c.kind != KindPath {
				continue
			}
			if c.checkState == Unchecked {
				paths = append(paths, c.pathLower)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return paths
}
