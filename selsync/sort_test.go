package selsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yllada/maestral-gtk/daemon"
)

// loadedFolder builds a root whose children are already loaded.
func loadedFolder(entries ...daemon.Entry) *Node {
	root := NewRoot(nil, nil)
	root.loadState = Loaded
	root.children = nil
	for _, e := range entries {
		root.children = append(root.children, newPathNode(root.tree, e, root))
	}
	return root
}

func folder(name string) daemon.Entry {
	return daemon.Entry{Name: name, PathLower: "/" + foldCase(name), PathDisplay: "/" + name, IsFolder: true}
}

func file(name string) daemon.Entry {
	return daemon.Entry{Name: name, PathLower: "/" + foldCase(name), PathDisplay: "/" + name}
}

func TestSortFoldersFirstCaseInsensitive(t *testing.T) {
	root := loadedFolder(folder("b"), folder("A"), file("a2"))

	root.Sort(ColumnName, Ascending)

	assert.Equal(t, []string{"A", "b", "a2"}, names(root.LoadedChildren()))
}

func TestSortDescendingKeepsFoldersFirst(t *testing.T) {
	root := loadedFolder(file("a2"), folder("A"), file("c"), folder("b"))

	root.Sort(ColumnName, Descending)

	assert.Equal(t, []string{"b", "A", "c", "a2"}, names(root.LoadedChildren()))
}

func TestSortByCheckState(t *testing.T) {
	root := loadedFolder(folder("one"), folder("two"), folder("three"))
	kids := root.LoadedChildren()
	kids[0].checkState = Checked
	kids[1].checkState = Unchecked
	kids[2].checkState = PartiallyChecked

	root.Sort(ColumnIncluded, Ascending)
	assert.Equal(t, []string{"two", "three", "one"}, names(root.LoadedChildren()))

	root.Sort(ColumnIncluded, Descending)
	assert.Equal(t, []string{"one", "three", "two"}, names(root.LoadedChildren()))
}

func TestSortRecursesIntoLoadedChildren(t *testing.T) {
	root := loadedFolder(folder("z"))
	z := root.LoadedChildren()[0]
	z.loadState = Loaded
	z.children = []*Node{
		newPathNode(root.tree, daemon.Entry{Name: "y", PathLower: "/z/y", PathDisplay: "/z/y"}, z),
		newPathNode(root.tree, daemon.Entry{Name: "X", PathLower: "/z/x", PathDisplay: "/z/X"}, z),
	}

	root.Sort(ColumnName, Ascending)

	assert.Equal(t, []string{"X", "y"}, names(z.LoadedChildren()))
}

func TestSortEntries(t *testing.T) {
	entries := []daemon.Entry{
		{Name: "beta"}, {Name: "Alpha"}, {Name: "alpha2"}, {Name: "ÉCOLE"}, {Name: "école-b"},
	}

	sortEntries(entries)

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Name
	}
	assert.Equal(t, []string{"Alpha", "alpha2", "beta", "ÉCOLE", "école-b"}, got)
}
