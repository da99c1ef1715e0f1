package itinerary

import "fmt"

// Record is the persisted envelope: trip facts stored next to the generated
// document they were produced from.
type Record struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id,omitempty"`
	Title       string            `json:"title"`
	Destination string            `json:"destination"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Budget      float64           `json:"budget"`
	PeopleCount int               `json:"people_count"`
	Preferences map[string]string `json:"preferences,omitempty"`
	AIResponse  *Document         `json:"ai_response,omitempty"`
	CreatedAt   string            `json:"created_at,omitempty"`
	UpdatedAt   string            `json:"updated_at,omitempty"`
}

// SaveRequest is the body for both create and full update.
type SaveRequest struct {
	Title       string            `json:"title"`
	Destination string            `json:"destination"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Budget      float64           `json:"budget"`
	PeopleCount int               `json:"people_count"`
	Preferences map[string]string `json:"preferences,omitempty"`
	AIResponse  *Document         `json:"ai_response"`
}

func DefaultTitle(destination string) string {
	return fmt.Sprintf("Trip to %s", destination)
}

// NewSaveRequest builds the full-replacement body for doc.
func NewSaveRequest(doc *Document) SaveRequest {
	m := doc.Metadata
	return SaveRequest{
		Title:       DefaultTitle(m.Destination),
		Destination: m.Destination,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Budget:      m.Budget,
		PeopleCount: m.PeopleCount,
		Preferences: m.Preferences,
		AIResponse:  doc,
	}
}

// DocumentFromRecord unwraps the envelope. The envelope's trip facts overwrite
// whatever the embedded document's metadata says.
func DocumentFromRecord(rec *Record) *Document {
	doc := rec.AIResponse.Clone()
	if doc == nil {
		doc = &Document{}
	}
	if doc.Metadata == nil {
		doc.Metadata = &Metadata{}
	}
	m := doc.Metadata
	m.Destination = rec.Destination
	m.StartDate = rec.StartDate
	m.EndDate = rec.EndDate
	m.Budget = rec.Budget
	m.PeopleCount = rec.PeopleCount
	if rec.Preferences != nil {
		m.Preferences = make(map[string]string, len(rec.Preferences))
		for k, v := range rec.Preferences {
			m.Preferences[k] = v
		}
	}
	if n, err := TripDays(m.StartDate, m.EndDate); err == nil {
		m.TotalDays = n
	}
	return doc
}
