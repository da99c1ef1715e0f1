package services

import (
	"fmt"
	"sort"
	"strings"

	"tripwise/internal/models/request_models"
)

const itinerarySystemPrompt = `You are a professional travel planner who writes detailed, practical itineraries.
Write every text field in Simplified Chinese unless the traveler's preferences name another language.
Answer with a single JSON object and nothing else.`

const itinerarySchema = `{
  "summary": "highlights of the trip in 50-100 characters",
  "budget_breakdown": {
    "transportation": 800,
    "accommodation": 1200,
    "food": 1500,
    "attractions": 800,
    "shopping": 500,
    "other": 200
  },
  "daily_itinerary": [
    {
      "day": 1,
      "date": "%s",
      "theme": "theme of the day",
      "items": [
        {
          "time": "09:00",
          "type": "attraction",
          "title": "place or activity",
          "description": "50-100 characters",
          "location": "full street address",
          "estimated_cost": 100,
          "duration": "2 hours",
          "tips": "practical advice"
        }
      ]
    }
  ],
  "accommodation_suggestions": [
    {
      "name": "hotel name",
      "location": "full street address",
      "price_range": "300-500 CNY/night",
      "features": "near metro, breakfast included",
      "booking_tips": "booking advice"
    }
  ],
  "travel_tips": ["tip 1", "tip 2", "tip 3"],
  "emergency_contacts": ["Police: 110", "Ambulance: 120"]
}`

func buildItineraryPrompt(req request_models.GenerateItineraryRequest, days int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan a trip with these facts:\n")
	fmt.Fprintf(&sb, "- Destination: %s\n", req.Destination)
	fmt.Fprintf(&sb, "- Dates: %s to %s (%d days)\n", req.StartDate, req.EndDate, days)
	fmt.Fprintf(&sb, "- Budget: %.0f CNY\n", req.Budget)
	fmt.Fprintf(&sb, "- Travelers: %d\n", req.PeopleCount)
	fmt.Fprintf(&sb, "- Preferences: %s\n\n", describePreferences(req.Preferences))

	sb.WriteString("Return JSON with exactly this structure:\n\n")
	fmt.Fprintf(&sb, itinerarySchema, req.StartDate)
	sb.WriteString("\n\nRules:\n")
	fmt.Fprintf(&sb, "1. daily_itinerary has exactly %d entries, day numbered from 1, dates consecutive from %s.\n", days, req.StartDate)
	sb.WriteString("2. Numeric fields (day, estimated_cost, budget_breakdown values) are JSON numbers, never strings.\n")
	sb.WriteString("3. type is one of: attraction, restaurant, hotel, transportation, shopping, other.\n")
	sb.WriteString("4. Plan 4-6 items per day with realistic timing and travel between stops.\n")
	sb.WriteString("5. The budget breakdown must not exceed the total budget.\n")
	sb.WriteString("6. Give concrete addresses so every stop can be found on a map.\n")
	fmt.Fprintf(&sb, "7. Recommend local food and must-see sights of %s.\n", req.Destination)
	return sb.String()
}

func describePreferences(prefs map[string]string) string {
	if len(prefs) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(prefs[k]); v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}
