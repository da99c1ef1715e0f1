package request_models

type CreateExpenseRequest struct {
	ItineraryID   string  `json:"itinerary_id"`
	Category      string  `json:"category" binding:"required"`
	Amount        float64 `json:"amount" binding:"gte=0"`
	Description   string  `json:"description"`
	ExpenseDate   string  `json:"expense_date"`
	Location      string  `json:"location"`
	PaymentMethod string  `json:"payment_method"`
	VoiceInput    bool    `json:"voice_input"`
}

// UpdateExpenseRequest is partial: nil fields are left alone.
type UpdateExpenseRequest struct {
	Category      *string  `json:"category"`
	Amount        *float64 `json:"amount" binding:"omitempty,gte=0"`
	Description   *string  `json:"description"`
	ExpenseDate   *string  `json:"expense_date"`
	Location      *string  `json:"location"`
	PaymentMethod *string  `json:"payment_method"`
}

type ExpenseQuery struct {
	ItineraryID string `form:"itinerary_id"`
	Category    string `form:"category"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
}

type BudgetComparisonQuery struct {
	ItineraryID string `form:"itinerary_id" binding:"required"`
}

type VoiceParseRequest struct {
	Text string `json:"text" binding:"required"`
}

type BudgetAnalysisRequest struct {
	ItineraryID string `json:"itinerary_id" binding:"required"`
}
