package itinerary

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]*Record
	getErr    error
	updateErr error
	creates   []SaveRequest
	updates   []SaveRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*Record{}}
}

func (s *fakeStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.records[id], nil
}

func (s *fakeStore) Create(_ context.Context, req SaveRequest) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, req)
	return &Record{ID: "new-id", Destination: req.Destination}, nil
}

func (s *fakeStore) Update(_ context.Context, id string, req SaveRequest) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, req)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &Record{ID: id}, nil
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

type fakePresenter struct {
	mu          sync.Mutex
	successes   []string
	warnings    []string
	errors      []string
	loginPrompt int
	listShown   int
}

func (p *fakePresenter) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes = append(p.successes, msg)
}

func (p *fakePresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings = append(p.warnings, msg)
}

func (p *fakePresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, msg)
}

func (p *fakePresenter) PromptLogin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginPrompt++
}

func (p *fakePresenter) ShowList() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listShown++
}

type staticAuth bool

func (a staticAuth) IsAuthenticated() bool { return bool(a) }

type draftRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (d *draftRecorder) SaveDraft(_ context.Context, key string, _ *Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, key)
	return nil
}

func previewContainer(t *testing.T) (*Container, *fakeStore, *fakePresenter) {
	t.Helper()
	store := newFakeStore()
	presenter := &fakePresenter{}
	c := NewContainer(store, staticAuth(true), presenter)
	require.NoError(t, c.SetPreview(sampleDocument()))
	return c, store, presenter
}

func persistedContainer(t *testing.T) (*Container, *fakeStore, *fakePresenter) {
	t.Helper()
	store := newFakeStore()
	store.records["it-1"] = &Record{
		ID:          "it-1",
		Destination: "Hangzhou",
		StartDate:   "2024-05-01",
		EndDate:     "2024-05-03",
		Budget:      5000,
		PeopleCount: 2,
		AIResponse:  sampleDocument(),
	}
	presenter := &fakePresenter{}
	c := NewContainer(store, staticAuth(true), presenter)
	require.NoError(t, c.Load(context.Background(), "it-1"))
	return c, store, presenter
}

func TestLoad_EnvelopeFactsOverrideEmbeddedMetadata(t *testing.T) {
	embedded := sampleDocument()
	embedded.Metadata.Destination = "Shanghai"
	embedded.Metadata.StartDate = "2024-06-01"
	embedded.Metadata.EndDate = "2024-06-03"
	embedded.Metadata.Budget = 1
	embedded.Metadata.PeopleCount = 9

	store := newFakeStore()
	store.records["abc"] = &Record{
		ID:          "abc",
		Destination: "Hangzhou",
		StartDate:   "2024-05-01",
		EndDate:     "2024-05-03",
		Budget:      5000,
		PeopleCount: 2,
		Preferences: map[string]string{"food": "local"},
		AIResponse:  embedded,
	}
	c := NewContainer(store, staticAuth(true), &fakePresenter{})

	require.NoError(t, c.Load(context.Background(), "abc"))

	m := c.Document().Metadata
	assert.Equal(t, "Hangzhou", m.Destination)
	assert.Equal(t, "2024-05-01", m.StartDate)
	assert.Equal(t, "2024-05-03", m.EndDate)
	assert.Equal(t, 5000.0, m.Budget)
	assert.Equal(t, 2, m.PeopleCount)
	assert.Equal(t, map[string]string{"food": "local"}, m.Preferences)
	assert.Equal(t, "abc", c.ID())
}

func TestLoad_NotFoundShowsErrorAndList(t *testing.T) {
	presenter := &fakePresenter{}
	c := NewContainer(newFakeStore(), staticAuth(true), presenter)

	err := c.Load(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, presenter.errors, 1)
	assert.Equal(t, 1, presenter.listShown)
	assert.Nil(t, c.Document())
}

func TestLoad_BackendErrorShowsList(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	presenter := &fakePresenter{}
	c := NewContainer(store, staticAuth(true), presenter)

	assert.Error(t, c.Load(context.Background(), "x"))
	assert.Equal(t, 1, presenter.listShown)
}

func TestReplaceWhole_InvalidJSONLeavesDocumentUnchanged(t *testing.T) {
	c, _, presenter := previewContainer(t)
	before := c.Document()
	rev := c.Revision()

	err := c.ReplaceWhole(`{"metadata": {"destination": "Paris",`)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, before, c.Document())
	assert.Equal(t, rev, c.Revision())
	require.Len(t, presenter.errors, 1)
	assert.Contains(t, presenter.errors[0], "invalid itinerary JSON")
}

func TestReplaceWhole_RequiresMetadata(t *testing.T) {
	c, _, _ := previewContainer(t)
	before := c.Document()

	err := c.ReplaceWhole(`{"summary": "no metadata here", "daily_itinerary": []}`)

	assert.ErrorIs(t, err, ErrMetadataRequired)
	assert.Equal(t, before, c.Document())
}

func TestReplaceWhole_Accepts(t *testing.T) {
	c := NewContainer(newFakeStore(), staticAuth(true), &fakePresenter{})

	err := c.ReplaceWhole(`{
		"metadata": {"destination": "Kyoto", "start_date": "2024-10-01", "end_date": "2024-10-02", "budget": 900, "people_count": 1},
		"daily_itinerary": [
			{"day": 1, "date": "2024-10-01", "theme": "Temples", "items": [{"time": "09:00", "type": "attraction", "title": "Kiyomizu-dera"}]},
			{"day": 2, "date": "2024-10-02", "theme": "Arashiyama", "items": []}
		]
	}`)

	require.NoError(t, err)
	doc := c.Document()
	assert.Equal(t, "Kyoto", doc.Metadata.Destination)
	assert.Len(t, doc.DailyItinerary, 2)
}

func TestDeleteItem_SameIndexTwiceRemovesNeighbour(t *testing.T) {
	c, _, _ := previewContainer(t)

	require.NoError(t, c.DeleteItem(1, 0))
	assert.Equal(t, "Lou Wai Lou", c.Document().DailyItinerary[0].Items[0].Title)

	require.NoError(t, c.DeleteItem(1, 0))
	items := c.Document().DailyItinerary[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, "Leifeng Pagoda", items[0].Title)
}

func TestDeleteItem_OutOfRange(t *testing.T) {
	c, _, _ := previewContainer(t)

	assert.ErrorIs(t, c.DeleteItem(2, 1), ErrItemOutOfRange)
	assert.ErrorIs(t, c.DeleteItem(4, 0), ErrDayOutOfRange)
	assert.Len(t, c.Document().DailyItinerary[1].Items, 1)
}

func TestInsertItem_Appends(t *testing.T) {
	c, _, _ := previewContainer(t)

	require.NoError(t, c.InsertItem(3, Item{Time: "18:00", Type: ActivityTransportation, Title: "Train home"}))

	items := c.Document().DailyItinerary[2].Items
	require.Len(t, items, 1)
	assert.Equal(t, "Train home", items[0].Title)
}

func TestInsertItem_RejectsUnknownType(t *testing.T) {
	c, _, _ := previewContainer(t)

	err := c.InsertItem(3, Item{Title: "??", Type: "spaceflight"})

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, c.Document().DailyItinerary[2].Items)
}

func TestApply_MetadataEditIsIdempotent(t *testing.T) {
	c, _, _ := previewContainer(t)
	dest := "Suzhou"
	budget := 3200.0
	edit := MetadataEdit{Destination: &dest, Budget: &budget, Preferences: map[string]string{"pace": "fast"}}

	require.NoError(t, c.Apply(edit))
	once := c.Document()
	require.NoError(t, c.Apply(edit))

	assert.Equal(t, once, c.Document())
	assert.Equal(t, "Suzhou", once.Metadata.Destination)
	assert.Equal(t, once.Summary, sampleDocument().Summary)
}

func TestApply_MetadataEditRejectsInvertedDates(t *testing.T) {
	c, _, _ := previewContainer(t)
	end := "2024-04-01"

	err := c.Apply(MetadataEdit{EndDate: &end})

	assert.Error(t, err)
	assert.Equal(t, "2024-05-03", c.Document().Metadata.EndDate)
}

func TestApply_TravelTipsSplitsLines(t *testing.T) {
	c, _, _ := previewContainer(t)

	require.NoError(t, c.Apply(TravelTipsEdit{Text: "Carry cash\n\n  Try Longjing tea  \n"}))

	assert.Equal(t, []string{"Carry cash", "Try Longjing tea"}, c.Document().TravelTips)
}

func TestApply_ItemEditTouchesOnlyAddressedItem(t *testing.T) {
	c, _, _ := previewContainer(t)
	before := c.Document()
	title := "Su Causeway"
	cost := 0.0

	require.NoError(t, c.Apply(ItemEdit{Day: 1, Item: 2, Patch: ItemPatch{Title: &title, EstimatedCost: &cost}}))

	after := c.Document()
	assert.Equal(t, "Su Causeway", after.DailyItinerary[0].Items[2].Title)
	assert.Equal(t, before.DailyItinerary[0].Items[2].Location, after.DailyItinerary[0].Items[2].Location)
	assert.Equal(t, before.DailyItinerary[0].Items[:2], after.DailyItinerary[0].Items[:2])
	assert.Equal(t, before.DailyItinerary[1:], after.DailyItinerary[1:])
	assert.Equal(t, before.Metadata, after.Metadata)
}

func TestApply_DayAndBudgetAndAccommodation(t *testing.T) {
	c, _, _ := previewContainer(t)
	theme := "Markets"

	require.NoError(t, c.Apply(DayEdit{Day: 2, Theme: &theme}))
	require.NoError(t, c.Apply(BudgetEdit{Amounts: map[Category]float64{CategoryFood: 1500}}))
	require.NoError(t, c.Apply(AccommodationEdit{Suggestions: []Accommodation{{Name: "Hostel"}}}))
	require.NoError(t, c.Apply(SummaryEdit{Summary: "updated"}))

	doc := c.Document()
	assert.Equal(t, "Markets", doc.DailyItinerary[1].Theme)
	assert.Equal(t, "2024-05-02", doc.DailyItinerary[1].Date)
	assert.Equal(t, 1500.0, doc.BudgetBreakdown.Get(CategoryFood))
	assert.Equal(t, 800.0, doc.BudgetBreakdown.Get(CategoryTransportation))
	assert.Equal(t, []Accommodation{{Name: "Hostel"}}, doc.AccommodationSuggestions)
	assert.Equal(t, "updated", doc.Summary)

	assert.ErrorIs(t, c.Apply(BudgetEdit{Amounts: map[Category]float64{"fuel": 1}}), ErrUnknownCategory)
}

func TestApply_UnsavedDocumentDoesNotSync(t *testing.T) {
	c, store, presenter := previewContainer(t)
	summary := SummaryEdit{Summary: "draft"}

	require.NoError(t, c.Apply(summary))
	c.Wait()

	assert.Zero(t, store.updateCount())
	assert.Equal(t, []string{MsgSavedLocally}, presenter.successes)
}

func TestApply_PersistedDocumentSyncs(t *testing.T) {
	c, store, presenter := persistedContainer(t)

	require.NoError(t, c.Apply(SummaryEdit{Summary: "synced"}))
	c.Wait()

	require.Equal(t, 1, store.updateCount())
	assert.Equal(t, "synced", store.updates[0].AIResponse.Summary)
	assert.Equal(t, "Trip to Hangzhou", store.updates[0].Title)
	assert.Equal(t, []string{MsgSyncSucceeded}, presenter.successes)
	assert.Empty(t, presenter.warnings)
}

func TestApply_SyncFailureKeepsLocalEdit(t *testing.T) {
	c, store, presenter := persistedContainer(t)
	store.updateErr = errors.New("server said success=false")

	require.NoError(t, c.Apply(SummaryEdit{Summary: "kept"}))
	c.Wait()

	assert.Equal(t, "kept", c.Document().Summary)
	assert.Equal(t, []string{MsgSyncFailed}, presenter.warnings)
	assert.Empty(t, presenter.errors)
}

func TestApply_SyncsSendLatestSnapshotLast(t *testing.T) {
	c, store, _ := persistedContainer(t)

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, c.Apply(SummaryEdit{Summary: s}))
	}
	c.Wait()

	n := store.updateCount()
	require.GreaterOrEqual(t, n, 1)
	assert.Equal(t, "three", store.updates[n-1].AIResponse.Summary)
}

func TestPersist_UnauthenticatedPromptsLogin(t *testing.T) {
	store := newFakeStore()
	presenter := &fakePresenter{}
	c := NewContainer(store, staticAuth(false), presenter)
	require.NoError(t, c.SetPreview(sampleDocument()))

	_, err := c.Persist(context.Background())

	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, 1, presenter.loginPrompt)
	assert.Empty(t, store.creates)
}

func TestPersist_CreatesThenUpdates(t *testing.T) {
	c, store, _ := previewContainer(t)

	id, err := c.Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.Equal(t, "new-id", c.ID())
	require.Len(t, store.creates, 1)
	assert.Equal(t, "Hangzhou", store.creates[0].Destination)

	_, err = c.Persist(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.creates, 1)
	assert.Equal(t, 1, store.updateCount())
}

func TestLocalSaverReceivesDrafts(t *testing.T) {
	drafts := &draftRecorder{}
	c := NewContainer(newFakeStore(), staticAuth(true), &fakePresenter{}, WithLocalSaver(drafts))
	require.NoError(t, c.SetPreview(sampleDocument()))

	require.NoError(t, c.Apply(SummaryEdit{Summary: "x"}))

	assert.Equal(t, []string{"preview"}, drafts.keys)
}
