package pdfexport

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripwise/pkg/itinerary"
)

func sampleDocument() *itinerary.Document {
	return &itinerary.Document{
		Metadata: &itinerary.Metadata{
			Destination: "Hangzhou",
			StartDate:   "2024-05-01",
			EndDate:     "2024-05-03",
			Budget:      5000,
			PeopleCount: 2,
		},
		Summary: "Three days around West Lake.",
		BudgetBreakdown: itinerary.BudgetBreakdown{
			Transportation: 600,
			Accommodation:  1800,
			Food:           1200,
		},
		DailyItinerary: []itinerary.Day{
			{Day: 1, Date: "2024-05-01", Theme: "West Lake", Items: []itinerary.Item{
				{Time: "09:00", Type: itinerary.ActivityAttraction, Title: "Broken Bridge", Location: "Beishan Rd", EstimatedCost: 0, Duration: "1h"},
				{Time: "12:00", Type: itinerary.ActivityRestaurant, Title: "Lou Wai Lou", EstimatedCost: 300, Tips: "Book ahead"},
			}},
			{Day: 2, Date: "2024-05-02", Theme: "Tea fields"},
			{Day: 3, Date: "2024-05-03", Theme: "Departure"},
		},
		AccommodationSuggestions: []itinerary.Accommodation{{Name: "Lakeside Inn", PriceRange: "500-700 CNY/night"}},
		TravelTips:               []string{"Rent a bike", "Carry an umbrella"},
		EmergencyContacts:        itinerary.ContactList{"Police: 110"},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestRender_ProducesPDF(t *testing.T) {
	data, err := Render(sampleDocument(), Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRender_WithMapAndShareLink(t *testing.T) {
	plain, err := Render(sampleDocument(), Options{})
	require.NoError(t, err)

	rich, err := Render(sampleDocument(), Options{
		MapImage: pngBytes(t, 1600, 800),
		ShareURL: "https://tripwise.example/itinerary/123",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(rich, []byte("%PDF-")))
	assert.Greater(t, len(rich), len(plain))
}

func TestRender_SkipsUndecodableMap(t *testing.T) {
	data, err := Render(sampleDocument(), Options{MapImage: []byte("not an image")})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRender_RequiresMetadata(t *testing.T) {
	_, err := Render(&itinerary.Document{}, Options{})
	assert.ErrorIs(t, err, itinerary.ErrMetadataRequired)
}
