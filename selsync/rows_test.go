package selsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowNames(rows []VisibleRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Node.Data(ColumnName)
	}
	return out
}

func TestVisibleRows(t *testing.T) {
	fx := newFixture(t, sampleDaemon())

	rows := VisibleRows(fx.model, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, LoadingMessage, rows[0].Node.Message())
	settle(t, fx.q, fx.fetcher)

	rows = VisibleRows(fx.model, nil)
	assert.Equal(t, []string{"Documents", "Photos", "readme.md"}, rowNames(rows))

	expanded := map[string]bool{"/documents": true}
	rows = VisibleRows(fx.model, expanded)
	assert.Equal(t, []string{"Documents", LoadingMessage, "Photos", "readme.md"}, rowNames(rows))
	assert.True(t, rows[0].Expanded)
	assert.Equal(t, 1, rows[1].Depth)
	settle(t, fx.q, fx.fetcher)

	rows = VisibleRows(fx.model, expanded)
	assert.Equal(t, []string{"Documents", "Taxes", "Work", "notes.txt", "Photos", "readme.md"}, rowNames(rows))
	assert.Equal(t, []int{0, 1, 1, 1, 0, 0}, []int{rows[0].Depth, rows[1].Depth, rows[2].Depth, rows[3].Depth, rows[4].Depth, rows[5].Depth})
	assert.False(t, rows[4].Expanded)
}

func TestVisibleRowsIgnoresExpandedFiles(t *testing.T) {
	fx := newFixture(t, sampleDaemon())
	fx.load(t, fx.model.Root())

	rows := VisibleRows(fx.model, map[string]bool{"/readme.md": true})

	assert.Len(t, rows, 3)
	assert.False(t, rows[2].Expanded)
}
