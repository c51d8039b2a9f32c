package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ifmtech/event-planning/store"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func tsAt(hour int) int64 {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC).Unix()
}

func titles(list []*store.Session) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Title)
	}
	return out
}

func TestSessionCRUD(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateSession(ctx, &store.Session{
		Title:    "Opening Keynote",
		Speaker:  "Ada",
		Priority: 3,
		StartTs:  int64Ptr(tsAt(9)),
		EndTs:    int64Ptr(tsAt(10)),
		VIP:      true,
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int32(0))
	require.NotZero(t, created.CreatedTs)

	got, err := ts.GetSession(ctx, &store.FindSession{ID: &created.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Opening Keynote", got.Title)
	require.Equal(t, tsAt(9), *got.StartTs)
	require.True(t, got.VIP)

	// Partial update: only the title changes.
	newTitle := "Closing Keynote"
	updated, err := ts.UpdateSession(ctx, &store.UpdateSession{ID: created.ID, Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "Closing Keynote", updated.Title)
	require.Equal(t, "Ada", updated.Speaker)
	require.Equal(t, int32(3), updated.Priority)
	require.Equal(t, tsAt(9), *updated.StartTs)
	require.Equal(t, tsAt(10), *updated.EndTs)
	require.True(t, updated.VIP)

	require.NoError(t, ts.DeleteSession(ctx, &store.DeleteSession{ID: created.ID}))
	got, err = ts.GetSession(ctx, &store.FindSession{ID: &created.ID})
	require.NoError(t, err)
	require.Nil(t, got)

	// Deleting the same id again is a no-op.
	require.NoError(t, ts.DeleteSession(ctx, &store.DeleteSession{ID: created.ID}))
}

func TestSessionWithoutTimeRange(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateSession(ctx, &store.Session{Title: "TBD slot"})
	require.NoError(t, err)

	got, err := ts.GetSession(ctx, &store.FindSession{ID: &created.ID})
	require.NoError(t, err)
	require.Nil(t, got.StartTs)
	require.Nil(t, got.EndTs)
	require.False(t, got.HasTimeRange())
}

func TestListSessionsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	seed := []struct {
		title    string
		hour     int
		priority int32
	}{
		{"late", 15, 1},
		{"early", 9, 2},
		{"middle", 12, 5},
	}
	for _, s := range seed {
		_, err := ts.CreateSession(ctx, &store.Session{
			Title:    s.title,
			Priority: s.priority,
			StartTs:  int64Ptr(tsAt(s.hour)),
			EndTs:    int64Ptr(tsAt(s.hour + 1)),
		})
		require.NoError(t, err)
	}

	list, err := ts.ListSessions(ctx, &store.FindSession{})
	require.NoError(t, err)
	require.Equal(t, []string{"early", "middle", "late"}, titles(list))

	list, err = ts.ListSessions(ctx, &store.FindSession{OrderBy: store.OrderByPriority})
	require.NoError(t, err)
	require.Equal(t, []string{"middle", "early", "late"}, titles(list))

	// Inclusive bounds on start_ts.
	list, err = ts.ListSessions(ctx, &store.FindSession{
		StartFrom: int64Ptr(tsAt(9)),
		StartTo:   int64Ptr(tsAt(12)),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"early", "middle"}, titles(list))
}

func TestSearchSessionsPagination(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for hour := 8; hour < 13; hour++ {
		_, err := ts.CreateSession(ctx, &store.Session{
			Title:   "slot",
			StartTs: int64Ptr(tsAt(hour)),
			EndTs:   int64Ptr(tsAt(hour + 1)),
		})
		require.NoError(t, err)
	}

	page, err := ts.SearchSessions(ctx, &store.FindSession{Limit: intPtr(2), Offset: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, int64(5), page.Total)
	require.Len(t, page.Sessions, 2)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.Size)
	require.Equal(t, tsAt(10), *page.Sessions[0].StartTs)
}

func TestSearchSessionsQueryCache(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateSession(ctx, &store.Session{
		Title:   "cached",
		StartTs: int64Ptr(tsAt(9)),
		EndTs:   int64Ptr(tsAt(10)),
	})
	require.NoError(t, err)

	find := &store.FindSession{Limit: intPtr(20), Offset: intPtr(0)}

	page, err := ts.SearchSessions(ctx, find)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	// Mutate the underlying table directly: the cached page must keep being
	// served until a store-level mutation invalidates it.
	_, err = ts.GetDriver().GetDB().ExecContext(ctx,
		"UPDATE session SET title = 'changed-behind-the-cache' WHERE id = ?", created.ID)
	require.NoError(t, err)

	page, err = ts.SearchSessions(ctx, find)
	require.NoError(t, err)
	require.Equal(t, "cached", page.Sessions[0].Title)

	// Any write-through mutation clears the whole query cache.
	_, err = ts.CreateSession(ctx, &store.Session{
		Title:   "other",
		StartTs: int64Ptr(tsAt(14)),
		EndTs:   int64Ptr(tsAt(15)),
	})
	require.NoError(t, err)

	page, err = ts.SearchSessions(ctx, find)
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Equal(t, "changed-behind-the-cache", page.Sessions[0].Title)
}

func TestSessionSnapshotAndWarm(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateSession(ctx, &store.Session{
		Title:   "warm me",
		StartTs: int64Ptr(tsAt(9)),
		EndTs:   int64Ptr(tsAt(10)),
	})
	require.NoError(t, err)
	require.Len(t, ts.SessionSnapshot(ctx), 1)

	n, err := ts.WarmSessionCache(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	snapshot := ts.SessionSnapshot(ctx)
	require.Len(t, snapshot, 1)
	require.Equal(t, created.ID, snapshot[0].ID)

	require.NoError(t, ts.DeleteSession(ctx, &store.DeleteSession{ID: created.ID}))
	require.Empty(t, ts.SessionSnapshot(ctx))
}
