package selsync

// CheckState is the tri-state selection of a node.
type CheckState int

const (
	Unchecked CheckState = iota
	PartiallyChecked
	Checked
)

// String returns a human-readable check state.
func (s CheckState) String() string {
	switch s {
	case Unchecked:
		return "Unchecked"
	case PartiallyChecked:
		return "PartiallyChecked"
	case Checked:
		return "Checked"
	default:
		return "Unknown"
	}
}

// Toggled returns the state a click on a check box leads to. Only a fully
// included row becomes excluded.
func (s CheckState) Toggled() CheckState {
	if s == Checked {
		return Unchecked
	}
	return Checked
}

// LoadState tracks the listing of a node's children.
type LoadState int

const (
	NotStarted LoadState = iota
	Loading
	Loaded
	Failed
)

// String returns a human-readable load state.
func (s LoadState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// SortOrder is the direction of a sort.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// Columns exposed by the model.
const (
	ColumnName     = 0
	ColumnIncluded = 1
)

// Messages shown in place of folder contents.
const (
	LoadingMessage = "Loading..."
	FailureMessage = "Could not connect to Dropbox. Please check your internet connection."
)
