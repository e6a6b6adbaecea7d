package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

func seedLogs(t *testing.T, m *memStore, accountID string, times ...int64) {
	t.Helper()
	repo := m.LogEntries(nil)
	for _, ts := range times {
		require.NoError(t, repo.Append(context.Background(), &models.LogEntry{AccountID: accountID, Event: models.EventSession, Time: ts}))
	}
}

func times(entries []models.LogEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Time
	}
	return out
}

func span(from, to int64) []int64 {
	var out []int64
	if from >= to {
		for v := from; v >= to; v-- {
			out = append(out, v)
		}
		return out
	}
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func TestLogPager_Page(t *testing.T) {
	m := newMemStore()
	seedLogs(t, m, "acc", span(1, 25)...)
	seedLogs(t, m, "other", span(1, 25)...)
	p := NewLogPager(nil, m)
	ctx := context.Background()

	first, err := p.Page(ctx, "acc", 25)
	require.NoError(t, err)
	assert.Equal(t, span(25, 16), times(first.Entries))
	require.NotNil(t, first.Next)
	assert.Equal(t, int64(15), *first.Next)
	assert.Nil(t, first.Prev)

	second, err := p.Page(ctx, "acc", *first.Next)
	require.NoError(t, err)
	assert.Equal(t, span(15, 6), times(second.Entries))
	require.NotNil(t, second.Next)
	assert.Equal(t, int64(5), *second.Next)
	require.NotNil(t, second.Prev)
	assert.Equal(t, int64(25), *second.Prev)

	last, err := p.Page(ctx, "acc", *second.Next)
	require.NoError(t, err)
	assert.Equal(t, span(5, 1), times(last.Entries))
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Prev)
	assert.Equal(t, int64(15), *last.Prev)
}

func TestLogPager_ExactlyOnePage(t *testing.T) {
	m := newMemStore()
	seedLogs(t, m, "acc", span(1, 10)...)

	page, err := NewLogPager(nil, m).Page(context.Background(), "acc", 10)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 10)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Prev)
}

func TestLogPager_TiesKeepInsertionOrder(t *testing.T) {
	m := newMemStore()
	seedLogs(t, m, "acc", 7, 7, 7)

	page, err := NewLogPager(nil, m).Page(context.Background(), "acc", 7)
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{page.Entries[0].ID, page.Entries[1].ID, page.Entries[2].ID})
}

func TestLogPager_Empty(t *testing.T) {
	page, err := NewLogPager(nil, newMemStore()).Page(context.Background(), "acc", 100)
	require.NoError(t, err)
	assert.NotNil(t, page.Entries)
	assert.Empty(t, page.Entries)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Prev)
}
