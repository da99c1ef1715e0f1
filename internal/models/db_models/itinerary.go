package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Itinerary is the persisted envelope. The trip facts are duplicated in
// AIResponse's metadata; the columns are authoritative.
type Itinerary struct {
	BaseModel
	AccountID   uuid.UUID `gorm:"type:uuid;index"`
	Title       string
	Destination string `gorm:"index"`
	StartDate   string `gorm:"size:10"`
	EndDate     string `gorm:"size:10"`
	Budget      float64
	PeopleCount int
	Preferences datatypes.JSONType[map[string]string]
	AIResponse  datatypes.JSON `gorm:"type:jsonb"`
}
