package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tripwise/internal/models/db_models"
	"tripwise/internal/models/request_models"
	"tripwise/pkg/itinerary"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

const hangzhouResponse = "```json\n" + `{
  "summary": "Three relaxed days around West Lake.",
  "budget_breakdown": {"transportation": 500, "accommodation": "1800元", "food": 1200, "attractions": 600, "shopping": 300, "other": 100},
  "daily_itinerary": [
    {"day": 7, "date": "2020-01-01", "theme": "West Lake", "items": [
      {"time": "09:00", "duration": "2h", "type": "attraction", "title": "Broken Bridge", "description": "Walk the causeway", "location": "Beishan Rd", "estimated_cost": 0},
      {"time": "12:00", "duration": "1h", "type": "lunch", "title": "Lou Wai Lou", "description": "West Lake fish", "location": "Gushan Rd", "estimated_cost": -20}
    ]},
    {"day": 8, "theme": "Tea villages", "items": []},
    {"day": 9, "theme": "Hefang Street", "items": []},
    {"day": 10, "theme": "Extra day the model invented", "items": []}
  ],
  "accommodation_suggestions": [{"name": "Lakeside Inn", "location": "Hubin", "price_range": "600/night", "features": "view"}],
  "travel_tips": ["Rent a bike",],
}` + "\n```"

func hangzhouRequest() request_models.GenerateItineraryRequest {
	return request_models.GenerateItineraryRequest{
		Destination: "Hangzhou",
		StartDate:   "2024-05-01",
		EndDate:     "2024-05-03",
		Budget:      5000,
		PeopleCount: 2,
		Preferences: map[string]string{"pace": "relaxed", "interests": "food"},
	}
}

type itineraryFixture struct {
	svc         ItineraryServiceInterface
	ai          *fakeAI
	itineraries *fakeItineraryRepo
	embeddings  *fakeEmbeddingRepo
}

func newItineraryFixture(ai *fakeAI) itineraryFixture {
	its := newFakeItineraryRepo()
	embs := newFakeEmbeddingRepo()
	its.embeddings = embs
	return itineraryFixture{
		svc:         NewItineraryService(its, embs, ai, mem.NewTTLCache[*itinerary.Document](), zap.NewNop()),
		ai:          ai,
		itineraries: its,
		embeddings:  embs,
	}
}

func TestItineraryService_GenerateNormalizesDays(t *testing.T) {
	f := newItineraryFixture(&fakeAI{responses: []string{hangzhouResponse}})

	doc, err := f.svc.Generate(context.Background(), hangzhouRequest())
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	require.Len(t, doc.DailyItinerary, 3)
	for i, day := range doc.DailyItinerary {
		assert.Equal(t, i+1, day.Day)
	}
	assert.Equal(t, "2024-05-01", doc.DailyItinerary[0].Date)
	assert.Equal(t, "2024-05-03", doc.DailyItinerary[2].Date)
	assert.Equal(t, "Hefang Street", doc.DailyItinerary[2].Theme)

	items := doc.DailyItinerary[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, itinerary.ActivityOther, items[1].Type)
	assert.Equal(t, itinerary.Amount(0), items[1].EstimatedCost)

	assert.Equal(t, 1800.0, doc.BudgetBreakdown.Get(itinerary.CategoryAccommodation))
	assert.Equal(t, "Hangzhou", doc.Metadata.Destination)
	assert.Equal(t, 3, doc.Metadata.TotalDays)
	assert.Equal(t, 2, doc.Metadata.PeopleCount)
	assert.NotEmpty(t, doc.Metadata.GeneratedAt)
	assert.Equal(t, []string{"Rent a bike"}, doc.TravelTips)
}

func TestItineraryService_GenerateServesRepeatsFromCache(t *testing.T) {
	f := newItineraryFixture(&fakeAI{responses: []string{hangzhouResponse}})
	ctx := context.Background()

	first, err := f.svc.Generate(ctx, hangzhouRequest())
	require.NoError(t, err)
	first.Summary = "mutated by caller"

	second, err := f.svc.Generate(ctx, hangzhouRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.ai.calls)
	assert.Equal(t, "Three relaxed days around West Lake.", second.Summary)
}

func TestItineraryService_GenerateFallsBackOnGarbage(t *testing.T) {
	f := newItineraryFixture(&fakeAI{responses: []string{"I'm sorry, I can't plan that trip."}})
	ctx := context.Background()

	doc, err := f.svc.Generate(ctx, hangzhouRequest())
	require.NoError(t, err)
	require.Len(t, doc.DailyItinerary, 3)
	for _, day := range doc.DailyItinerary {
		assert.Empty(t, day.Items)
	}
	assert.NoError(t, doc.Validate())

	_, err = f.svc.Generate(ctx, hangzhouRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, f.ai.calls, "fallback documents are not cached")
}

func TestItineraryService_GenerateErrors(t *testing.T) {
	f := newItineraryFixture(&fakeAI{err: errors.New("upstream 503")})
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, hangzhouRequest())
	assert.ErrorIs(t, err, utils.ErrAIServiceUnavailable)

	req := hangzhouRequest()
	req.EndDate = "2024-04-30"
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	req = hangzhouRequest()
	req.EndDate = "2024-07-01"
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestItineraryService_GenerateRejectsBlankDestination(t *testing.T) {
	ai := &fakeAI{responses: []string{hangzhouResponse}}
	f := newItineraryFixture(ai)

	req := hangzhouRequest()
	req.Destination = "   "
	doc, err := f.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	assert.Nil(t, doc)
	assert.Zero(t, ai.calls, "no model call for an unusable request")
}

func saveRequest(doc *itinerary.Document) request_models.SaveItineraryRequest {
	return request_models.SaveItineraryRequest{
		Destination: "Hangzhou",
		StartDate:   "2024-05-01",
		EndDate:     "2024-05-03",
		Budget:      5000,
		PeopleCount: 2,
		Preferences: map[string]string{"pace": "relaxed"},
		AIResponse:  doc,
	}
}

func TestItineraryService_SaveOverlaysEnvelopeAndIndexes(t *testing.T) {
	f := newItineraryFixture(&fakeAI{})
	ctx := context.Background()
	userID := uuid.NewString()

	doc := &itinerary.Document{
		Metadata:       &itinerary.Metadata{Destination: "Suzhou", StartDate: "2024-01-01", EndDate: "2024-01-01", PeopleCount: 9},
		Summary:        "Gardens",
		DailyItinerary: []itinerary.Day{{Day: 1, Theme: "Gardens", Items: []itinerary.Item{{Type: itinerary.ActivityAttraction, Title: "Humble Administrator's Garden"}}}},
	}
	rec, err := f.svc.Save(ctx, userID, saveRequest(doc))
	require.NoError(t, err)

	assert.Equal(t, "Trip to Hangzhou", rec.Title)
	assert.Equal(t, userID, rec.UserID)
	require.NotNil(t, rec.AIResponse)
	assert.Equal(t, "Hangzhou", rec.AIResponse.Metadata.Destination)
	assert.Equal(t, 2, rec.AIResponse.Metadata.PeopleCount)
	assert.Equal(t, 3, rec.AIResponse.Metadata.TotalDays)

	emb := f.embeddings.byID[rec.ID]
	require.NotNil(t, emb)
	assert.Contains(t, []string(emb.Keywords), "Hangzhou")
	assert.Contains(t, []string(emb.Keywords), "Humble Administrator's Garden")
	assert.Len(t, emb.Embedding.Slice(), utils.EmbeddingDimensions)

	list, err := f.svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestItineraryService_SaveRejectsInvalidDocument(t *testing.T) {
	f := newItineraryFixture(&fakeAI{})
	doc := &itinerary.Document{
		DailyItinerary: []itinerary.Day{{Day: 2}},
	}
	_, err := f.svc.Save(context.Background(), uuid.NewString(), saveRequest(doc))
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	assert.Empty(t, f.itineraries.byID)
}

func TestItineraryService_OwnerOnlyUpdateAndDelete(t *testing.T) {
	f := newItineraryFixture(&fakeAI{embedErr: errors.New("no embeddings")})
	ctx := context.Background()
	owner := uuid.NewString()

	rec, err := f.svc.Save(ctx, owner, saveRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, f.embeddings.byID[rec.ID], "hash vector used when embedding fails")

	req := saveRequest(nil)
	req.Title = "Spring break"
	_, err = f.svc.Update(ctx, uuid.NewString(), rec.ID, req)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, uuid.NewString(), rec.ID), utils.ErrForbidden)

	updated, err := f.svc.Update(ctx, owner, rec.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Spring break", updated.Title)

	require.NoError(t, f.svc.Delete(ctx, owner, rec.ID))
	_, err = f.svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, utils.ErrItineraryNotFound)
	assert.Nil(t, f.embeddings.byID[rec.ID])

	_, err = f.svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, utils.ErrItineraryNotFound)
}

func TestItineraryService_Similar(t *testing.T) {
	f := newItineraryFixture(&fakeAI{})
	ctx := context.Background()
	owner := uuid.NewString()

	rec, err := f.svc.Save(ctx, owner, saveRequest(nil))
	require.NoError(t, err)

	otherID := uuid.New()
	f.embeddings.similar = []db_models.ItineraryEmbedding{
		{ItineraryID: otherID, Destination: "Suzhou", Keywords: []string{"Suzhou", "gardens"}, Similarity: 0.91, CreatedAt: time.Now()},
	}

	got, err := f.svc.Similar(ctx, owner, rec.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, otherID.String(), got[0].ID)
	assert.Equal(t, []string{"Suzhou", "gardens"}, got[0].Keywords)
	assert.InDelta(t, 0.91, got[0].Similarity, 1e-9)

	_, err = f.svc.Similar(ctx, uuid.NewString(), rec.ID, 5)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}
