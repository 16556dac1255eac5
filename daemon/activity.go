package daemon

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PreviewBaseURL is where dropbox.com shows a file by its Dropbox path.
const PreviewBaseURL = "https://www.dropbox.com/preview"

const eventTimeLayout = "02 Jan 2006 15:04"

var titleCase = cases.Title(language.English)

// Name returns the file or folder name of the event.
func (e SyncEvent) Name() string {
	return baseName(e.LocalPath, e.DbxPath)
}

// Summary describes the change, e.g. "Added 14 Nov 2023 22:13 • Photos".
func (e SyncEvent) Summary() string {
	change := titleCase.String(e.ChangeType)
	when := e.Time.Local().Format(eventTimeLayout)
	parent := path.Base(path.Dir(firstNonEmpty(e.LocalPath, e.DbxPath)))
	if parent == "/" || parent == "." {
		return change + " " + when
	}
	return change + " " + when + " • " + parent
}

// Name returns the file or folder name of the issue.
func (i SyncIssue) Name() string {
	return baseName(i.LocalPath, i.DbxPath)
}

// Summary joins the issue title and message.
func (i SyncIssue) Summary() string {
	if i.Message == "" {
		return i.Title
	}
	return i.Title + ": " + i.Message
}

// PreviewURL returns the dropbox.com page for a Dropbox path.
func PreviewURL(dbxPath string) string {
	if dbxPath == "" {
		return ""
	}
	u := url.URL{Path: "/" + strings.TrimPrefix(dbxPath, "/")}
	return PreviewBaseURL + u.EscapedPath()
}

// ActivityFeed remembers which sync events were already shown.
type ActivityFeed struct {
	seen map[string]struct{}
}

// NewActivityFeed returns an empty feed.
func NewActivityFeed() *ActivityFeed {
	return &ActivityFeed{seen: make(map[string]struct{})}
}

// Update returns the events not returned before, newest first.
func (f *ActivityFeed) Update(events []SyncEvent) []SyncEvent {
	var fresh []SyncEvent
	for _, e := range events {
		if _, ok := f.seen[e.ID]; ok {
			continue
		}
		f.seen[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Time.After(fresh[j].Time)
	})
	return fresh
}

// Len returns how many events the feed has seen.
func (f *ActivityFeed) Len() int {
	return len(f.seen)
}

func baseName(localPath, dbxPath string) string {
	p := firstNonEmpty(localPath, dbxPath)
	if p == "" {
		return ""
	}
	return path.Base(p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
