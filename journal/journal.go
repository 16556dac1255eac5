// Package journal keeps a local history of committed selective sync changes.
//
// Every successful commit is stored in a SQLite database under the user's
// data directory together with the paths that were added to and removed from
// the excluded set and a fingerprint of the resulting set.
package journal

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/yllada/maestral-gtk/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS selection_changes (
	id           TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	config_name  TEXT NOT NULL,
	committed_at INTEGER NOT NULL,
	added        TEXT NOT NULL,
	removed      TEXT NOT NULL,
	excluded     INTEGER NOT NULL,
	fingerprint  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS selection_changes_config
	ON selection_changes (config_name, committed_at);
`

// Change is one committed edit of the excluded set.
type Change struct {
	ID          string
	SessionID   string
	ConfigName  string
	CommittedAt time.Time
	// Added holds paths that became excluded.
	Added []string
	// Removed holds paths that are synced again.
	Removed []string
	// Excluded is the size of the resulting excluded set.
	Excluded int
	// Fingerprint identifies the resulting excluded set.
	Fingerprint string
}

// Journal is a handle on the history database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// OpenDefault opens the journal in the application data directory.
func OpenDefault() (*Journal, error) {
	dir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, common.JournalFileName))
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// NewSessionID returns an identifier for one selective sync session.
func NewSessionID() string {
	return uuid.NewString()
}

// Record stores the change from before to after.
func (j *Journal) Record(ctx context.Context, sessionID, configName string, before, after []string) (Change, error) {
	added, removed := Diff(before, after)
	c := Change{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		ConfigName:  configName,
		CommittedAt: j.now().UTC(),
		Added:       added,
		Removed:     removed,
		Excluded:    len(common.StringSet(after)),
		Fingerprint: Fingerprint(after),
	}

	addedJSON, err := json.Marshal(c.Added)
	if err != nil {
		return Change{}, fmt.Errorf("encode added paths: %w", err)
	}
	removedJSON, err := json.Marshal(c.Removed)
	if err != nil {
		return Change{}, fmt.Errorf("encode removed paths: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO selection_changes
			(id, session_id, config_name, committed_at, added, removed, excluded, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.ConfigName, c.CommittedAt.UnixNano(),
		string(addedJSON), string(removedJSON), c.Excluded, c.Fingerprint)
	if err != nil {
		return Change{}, fmt.Errorf("record change: %w", err)
	}

	common.LogInfo("Recorded selection change for %s: +%d -%d", configName, len(added), len(removed))
	return c, nil
}

// List returns up to limit changes, newest first. An empty configName
// lists every config.
func (j *Journal) List(ctx context.Context, configName string, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, session_id, config_name, committed_at, added, removed, excluded, fingerprint
		FROM selection_changes`
	args := []interface{}{}
	if configName != "" {
		query += ` WHERE config_name = ?`
		args = append(args, configName)
	}
	query += ` ORDER BY committed_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			c                 Change
			nanos             int64
			added, removedStr string
		)
		if err := rows.Scan(&c.ID, &c.SessionID, &c.ConfigName, &nanos,
			&added, &removedStr, &c.Excluded, &c.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.CommittedAt = time.Unix(0, nanos).UTC()
		if err := json.Unmarshal([]byte(added), &c.Added); err != nil {
			return nil, fmt.Errorf("decode added paths: %w", err)
		}
		if err := json.Unmarshal([]byte(removedStr), &c.Removed); err != nil {
			return nil, fmt.Errorf("decode removed paths: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return changes, nil
}

// Diff returns the lowercased paths only in after (added) and only in
// before (removed), both sorted.
func Diff(before, after []string) (added, removed []string) {
	b := common.StringSet(before)
	a := common.StringSet(after)

	added = []string{}
	removed = []string{}
	for p := range a {
		if _, ok := b[p]; !ok {
			added = append(added, p)
		}
	}
	for p := range b {
		if _, ok := a[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// Fingerprint returns a BLAKE2b-256 digest of the excluded set. Order and
// case of items do not matter.
func Fingerprint(items []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(common.SortedKeys(common.StringSet(items)), "\n")))
	return hex.EncodeToString(sum[:])
}
