package response_models

type ExpenseResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	ItineraryID   string  `json:"itinerary_id,omitempty"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	ExpenseDate   string  `json:"expense_date"`
	Location      string  `json:"location"`
	PaymentMethod string  `json:"payment_method"`
	VoiceInput    bool    `json:"voice_input"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type CategoryStat struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

type ExpenseStats struct {
	TotalSpent   float64                 `json:"total_spent"`
	ByCategory   map[string]CategoryStat `json:"by_category"`
	ExpenseCount int64                   `json:"expense_count"`
	AvgExpense   float64                 `json:"avg_expense"`
}

type BudgetLine struct {
	Budget     float64 `json:"budget"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// BudgetComparison is keyed by category plus a "total" row.
type BudgetComparison map[string]BudgetLine

type ParsedExpense struct {
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	PaymentMethod string  `json:"payment_method"`
	Confidence    float64 `json:"confidence"`
}

type OverspentCategory struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Actual     float64 `json:"actual"`
	Overspent  float64 `json:"overspent"`
	Percentage float64 `json:"percentage"`
}

type OverspendingAlert struct {
	HasOverspending bool                `json:"has_overspending"`
	Categories      []OverspentCategory `json:"categories"`
	Message         string              `json:"message"`
}

type SavingSuggestion struct {
	Suggestion      string  `json:"suggestion"`
	Category        string  `json:"category"`
	EstimatedSaving float64 `json:"estimated_saving"`
}

type OptimizedBudget struct {
	Allocation map[string]float64 `json:"allocation"`
	Rationale  string             `json:"rationale"`
}

type TrendPrediction struct {
	PredictedTotal        float64 `json:"predicted_total"`
	PredictedOverspending float64 `json:"predicted_overspending"`
	WarningLevel          string  `json:"warning_level"`
	Message               string  `json:"message"`
}

type BudgetAnalysis struct {
	OverspendingAlert OverspendingAlert  `json:"overspending_alert"`
	SavingSuggestions []SavingSuggestion `json:"saving_suggestions"`
	OptimizedBudget   OptimizedBudget    `json:"optimized_budget"`
	TrendPrediction   TrendPrediction    `json:"trend_prediction"`
	RemainingDays     int                `json:"remaining_days"`
	// Generated is false when the figures come from the local fallback.
	Generated bool `json:"ai_generated"`
}

type TranscriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
