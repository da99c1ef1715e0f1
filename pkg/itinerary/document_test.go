package itinerary

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		Metadata: &Metadata{
			Destination: "Hangzhou",
			StartDate:   "2024-05-01",
			EndDate:     "2024-05-03",
			Budget:      5000,
			PeopleCount: 2,
			Preferences: map[string]string{"pace": "relaxed"},
			TotalDays:   3,
		},
		Summary: "Three days around West Lake",
		BudgetBreakdown: BudgetBreakdown{
			Transportation: 800,
			Accommodation:  1800,
			Food:           1200,
			Attractions:    600,
			Shopping:       400,
			Other:          200,
		},
		DailyItinerary: []Day{
			{Day: 1, Date: "2024-05-01", Theme: "West Lake", Items: []Item{
				{Time: "09:00", Duration: "2h", Type: ActivityAttraction, Title: "Broken Bridge", Location: "Broken Bridge, Hangzhou"},
				{Time: "12:00", Duration: "1h", Type: ActivityRestaurant, Title: "Lou Wai Lou", Location: "30 Gushan Rd", EstimatedCost: 300},
				{Time: "15:00", Duration: "2h", Type: ActivityAttraction, Title: "Leifeng Pagoda", Location: "Leifeng Pagoda"},
			}},
			{Day: 2, Date: "2024-05-02", Theme: "Tea fields", Items: []Item{
				{Time: "10:00", Duration: "3h", Type: ActivityAttraction, Title: "Longjing Village"},
			}},
			{Day: 3, Date: "2024-05-03", Theme: "Departure", Items: []Item{}},
		},
		AccommodationSuggestions: []Accommodation{{Name: "Lakeside Inn", Location: "Beishan Rd", PriceRange: "500-800", Features: "lake view"}},
		TravelTips:               []string{"Book tea tastings early", "Rent a bike"},
	}
}

func TestValidate_AcceptsSample(t *testing.T) {
	assert.NoError(t, sampleDocument().Validate())
}

func TestValidate_MissingMetadata(t *testing.T) {
	doc := sampleDocument()
	doc.Metadata = nil
	assert.ErrorIs(t, doc.Validate(), ErrMetadataRequired)
}

func TestValidate_CollectsProblems(t *testing.T) {
	doc := sampleDocument()
	doc.Metadata.EndDate = "2024-04-30"
	doc.Metadata.PeopleCount = 0
	doc.DailyItinerary[1].Day = 5
	doc.DailyItinerary[0].Items[0].Type = "museum"

	err := doc.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 4)
	assert.Contains(t, err.Error(), "end_date must not be before start_date")
	assert.Contains(t, err.Error(), `"museum"`)
}

func TestParseDocument_SyntaxError(t *testing.T) {
	_, err := ParseDocument([]byte(`{"metadata": {`))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Error(), "invalid itinerary JSON")
}

func TestAmount_DecodesLooseValues(t *testing.T) {
	var item Item
	require.NoError(t, json.Unmarshal([]byte(`{"type":"other","estimated_cost":"about 1,200 CNY"}`), &item))
	assert.Equal(t, Amount(1200), item.EstimatedCost)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"other","estimated_cost":"free"}`), &item))
	assert.Equal(t, Amount(0), item.EstimatedCost)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"other","estimated_cost":45.5}`), &item))
	assert.Equal(t, Amount(45.5), item.EstimatedCost)
}

func TestClone_IsDeep(t *testing.T) {
	doc := sampleDocument()
	cp := doc.Clone()
	cp.Metadata.Preferences["pace"] = "fast"
	cp.DailyItinerary[0].Items[0].Title = "changed"
	cp.TravelTips[0] = "changed"

	assert.Equal(t, "relaxed", doc.Metadata.Preferences["pace"])
	assert.Equal(t, "Broken Bridge", doc.DailyItinerary[0].Items[0].Title)
	assert.Equal(t, "Book tea tastings early", doc.TravelTips[0])
}

func TestTripDays(t *testing.T) {
	n, err := TripDays("2024-05-01", "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = TripDays("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = TripDays("2024-05-03", "2024-05-01")
	assert.Error(t, err)
}

func TestSplitTips(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTips("a\n\n   \n b \n"))
	assert.Empty(t, SplitTips("\n\n"))
}

func TestDocumentFromRecord_EnvelopeWins(t *testing.T) {
	embedded := sampleDocument()
	embedded.Metadata.Destination = "Suzhou"
	embedded.Metadata.Budget = 100

	doc := DocumentFromRecord(&Record{
		ID:          "it-1",
		Destination: "Hangzhou",
		StartDate:   "2024-05-01",
		EndDate:     "2024-05-03",
		Budget:      5000,
		PeopleCount: 2,
		AIResponse:  embedded,
	})

	assert.Equal(t, "Hangzhou", doc.Metadata.Destination)
	assert.Equal(t, 5000.0, doc.Metadata.Budget)
	assert.Equal(t, 3, doc.Metadata.TotalDays)
	assert.Equal(t, "Suzhou", embedded.Metadata.Destination, "record's document must not be modified")
}

func TestContactList_AcceptsObjectsAndStrings(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"emergency_contacts":["110",{"name":"Police","phone":"110"},{"phone":"120"}]}`), &doc)
	require.NoError(t, err)
	assert.Equal(t, ContactList{"110", "Police: 110", "120"}, doc.EmergencyContacts)
}
