package request_models

import "tripwise/pkg/itinerary"

// GenerateItineraryRequest is the trip form, typed or produced by voice.
type GenerateItineraryRequest struct {
	Destination string            `json:"destination" binding:"required"`
	StartDate   string            `json:"start_date" binding:"required"`
	EndDate     string            `json:"end_date" binding:"required"`
	Budget      float64           `json:"budget" binding:"gte=0"`
	PeopleCount int               `json:"people_count" binding:"required,gte=1"`
	Preferences map[string]string `json:"preferences"`
}

type SaveItineraryRequest struct {
	Title       string              `json:"title"`
	Destination string              `json:"destination" binding:"required"`
	StartDate   string              `json:"start_date" binding:"required"`
	EndDate     string              `json:"end_date" binding:"required"`
	Budget      float64             `json:"budget" binding:"gte=0"`
	PeopleCount int                 `json:"people_count" binding:"required,gte=1"`
	Preferences map[string]string   `json:"preferences"`
	AIResponse  *itinerary.Document `json:"ai_response"`
}

type SimilarItineraryQuery struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=20"`
}
