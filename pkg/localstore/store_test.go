package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokens_SaveLoadClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	exp := time.Unix(1714521600, 0)
	require.NoError(t, s.Save(ctx, session.Tokens{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: exp}))
	require.NoError(t, s.Save(ctx, session.Tokens{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: exp}))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)
	assert.True(t, exp.Equal(got.ExpiresAt))

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokens_SurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tripwise.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), session.Tokens{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
	assert.True(t, got.ExpiresAt.IsZero())
}

func TestDrafts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clock := time.Unix(1714521600, 0)
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	doc := &itinerary.Document{
		Metadata:       &itinerary.Metadata{Destination: "Hangzhou", StartDate: "2024-05-01", EndDate: "2024-05-01", PeopleCount: 2},
		DailyItinerary: []itinerary.Day{{Day: 1, Date: "2024-05-01", Items: []itinerary.Item{{Title: "West Lake", Type: itinerary.ActivityAttraction}}}},
	}
	require.NoError(t, s.SaveDraft(ctx, "preview", doc))
	doc.Metadata.Destination = "Suzhou"
	require.NoError(t, s.SaveDraft(ctx, "it-1", doc))

	d, err := s.LoadDraft(ctx, "preview")
	require.NoError(t, err)
	assert.Equal(t, "Hangzhou", d.Destination)
	assert.Equal(t, "West Lake", d.Document.DailyItinerary[0].Items[0].Title)

	list, err := s.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "it-1", list[0].Key)

	require.NoError(t, s.DeleteDraft(ctx, "preview"))
	_, err = s.LoadDraft(ctx, "preview")
	assert.ErrorIs(t, err, itinerary.ErrNotFound)

	assert.ErrorIs(t, s.SaveDraft(ctx, "x", nil), itinerary.ErrNoDocument)
}
