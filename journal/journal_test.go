package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "db", "selections.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestDiff(t *testing.T) {
	added, removed := Diff([]string{"/a", "/B"}, []string{"/b", "/c", "/D"})

	assert.Equal(t, []string{"/c", "/d"}, added)
	assert.Equal(t, []string{"/a"}, removed)

	added, removed = Diff(nil, nil)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]string{"/a", "/b"}), Fingerprint([]string{"/B", "/a"}))
	assert.NotEqual(t, Fingerprint([]string{"/a"}), Fingerprint([]string{"/a", "/b"}))
	assert.Len(t, Fingerprint(nil), 64)
}

func TestRecordAndList(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	session := NewSessionID()
	first, err := j.Record(ctx, session, "maestral", nil, []string{"/photos"})
	require.NoError(t, err)
	_, err = j.Record(ctx, session, "work", []string{"/x"}, nil)
	require.NoError(t, err)
	third, err := j.Record(ctx, NewSessionID(), "maestral", []string{"/photos"}, []string{"/music"})
	require.NoError(t, err)

	all, err := j.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)

	mine, err := j.List(ctx, "maestral", 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	got := mine[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, session, got.SessionID)
	assert.Equal(t, []string{"/photos"}, got.Added)
	assert.Empty(t, got.Removed)
	assert.Equal(t, 1, got.Excluded)
	assert.Equal(t, Fingerprint([]string{"/photos"}), got.Fingerprint)
	assert.True(t, got.CommittedAt.Equal(base.Add(time.Minute)))

	assert.Equal(t, []string{"/music"}, mine[0].Added)
	assert.Equal(t, []string{"/photos"}, mine[0].Removed)

	limited, err := j.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(ctx, NewSessionID(), "maestral", nil, []string{"/a"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	changes, err := j.List(ctx, "maestral", 0)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}
