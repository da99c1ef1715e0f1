package db_models

import "github.com/google/uuid"

type Expense struct {
	BaseModel
	AccountID     uuid.UUID  `gorm:"type:uuid;index"`
	ItineraryID   *uuid.UUID `gorm:"type:uuid;index"`
	Category      string     `gorm:"size:32;index"`
	Amount        float64
	Description   string
	ExpenseDate   string `gorm:"size:10;index"`
	Location      string
	PaymentMethod string `gorm:"size:16"`
	VoiceInput    bool
}
