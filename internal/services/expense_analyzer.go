package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"tripwise/internal/models/response_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/metrics"
	"tripwise/pkg/utils"
)

const (
	parseTemperature    = 0.3
	analysisTemperature = 0.3
	recentExpenseLimit  = 20
	defaultConfidence   = 0.5
)

// ExpenseAnalyzerInterface covers the model-backed expense features: turning a
// spoken sentence into an expense and reviewing spend against the budget.
type ExpenseAnalyzerInterface interface {
	ParseVoiceExpense(ctx context.Context, text string) (*response_models.ParsedExpense, error)
	AnalyzeBudget(ctx context.Context, userID, itineraryID string) (*response_models.BudgetAnalysis, error)
}

type ExpenseAnalyzer struct {
	ai            utils.AIClientInterface
	expenseRepo   repositories.ExpenseRepository
	itineraryRepo repositories.ItineraryRepository
	expenses      ExpenseServiceInterface
	logger        *zap.Logger
	now           func() time.Time
}

func NewExpenseAnalyzer(
	ai utils.AIClientInterface,
	expenseRepo repositories.ExpenseRepository,
	itineraryRepo repositories.ItineraryRepository,
	expenses ExpenseServiceInterface,
	logger *zap.Logger,
) ExpenseAnalyzerInterface {
	return &ExpenseAnalyzer{
		ai:            ai,
		expenseRepo:   expenseRepo,
		itineraryRepo: itineraryRepo,
		expenses:      expenses,
		logger:        logger,
		now:           time.Now,
	}
}

const voiceParseSystemPrompt = `You are an expense-recording assistant. The user describes one purchase in a sentence.
Extract:
1. category: one of transportation, accommodation, food, attractions, shopping, other
2. amount: number, required
3. description: short text
4. location: place mentioned, if any
5. payment_method: cash, wechat, alipay or card, if mentioned
6. confidence: your confidence in the parse, between 0 and 1
Answer with a single JSON object and nothing else.`

func voiceParsePrompt(text string) string {
	return fmt.Sprintf(`Sentence: %q

Examples:
"刚打车去西湖花了30块" -> {"category":"transportation","amount":30,"description":"打车去西湖","location":"西湖","confidence":0.95}
"中午在楼外楼吃饭80元用微信付的" -> {"category":"food","amount":80,"description":"楼外楼吃饭","location":"楼外楼","payment_method":"wechat","confidence":0.98}
"买了雷峰塔门票40" -> {"category":"attractions","amount":40,"description":"雷峰塔门票","location":"雷峰塔","confidence":0.9}
"住宿500" -> {"category":"accommodation","amount":500,"description":"住宿","confidence":0.85}

Omit fields you cannot determine, except category and amount.`, text)
}

type rawParsedExpense struct {
	Category      string            `json:"category"`
	Amount        itinerary.Amount  `json:"amount"`
	Description   string            `json:"description"`
	Location      string            `json:"location"`
	PaymentMethod string            `json:"payment_method"`
	Confidence    *itinerary.Amount `json:"confidence"`
}

// ParseVoiceExpense never fails on model trouble: an unusable answer becomes
// an "other" expense of 0 with the sentence as description and confidence 0.
func (a *ExpenseAnalyzer) ParseVoiceExpense(ctx context.Context, text string) (*response_models.ParsedExpense, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.InvalidInput("text is required")
	}

	raw, err := a.ai.CompleteJSON(ctx, voiceParseSystemPrompt, voiceParsePrompt(text), parseTemperature)
	metrics.RecordExternalCall(a.ai.Provider(), "voice_parse", err)
	if err != nil {
		a.logger.Warn("voice expense parse failed", zap.Error(err))
		return unparsedExpense(text), nil
	}

	var parsed rawParsedExpense
	if err := utils.DecodeModelJSON(raw, &parsed); err != nil {
		a.logger.Warn("voice expense parse returned invalid JSON", zap.Error(err))
		return unparsedExpense(text), nil
	}
	return normalizeParsedExpense(parsed, text), nil
}

func unparsedExpense(text string) *response_models.ParsedExpense {
	return &response_models.ParsedExpense{
		Category:      string(itinerary.CategoryOther),
		Amount:        0,
		Description:   text,
		PaymentMethod: PaymentCash,
		Confidence:    0,
	}
}

func normalizeParsedExpense(p rawParsedExpense, text string) *response_models.ParsedExpense {
	category, ok := parseCategory(p.Category)
	if !ok {
		category = itinerary.CategoryOther
	}
	amount := float64(p.Amount)
	if amount < 0 || math.IsNaN(amount) {
		amount = 0
	}
	method, ok := parsePaymentMethod(p.PaymentMethod)
	if !ok {
		method = PaymentCash
	}
	confidence := defaultConfidence
	if p.Confidence != nil {
		confidence = math.Max(0, math.Min(1, float64(*p.Confidence)))
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = text
	}
	return &response_models.ParsedExpense{
		Category:      string(category),
		Amount:        amount,
		Description:   description,
		Location:      strings.TrimSpace(p.Location),
		PaymentMethod: method,
		Confidence:    confidence,
	}
}

const budgetAnalysisSystemPrompt = `You are a travel budget analyst. Given a trip's budget and its actual expenses:
1. identify overspent categories and by how much
2. give concrete, actionable saving suggestions
3. propose a re-balanced allocation based on actual spending
4. predict the final spend from the current trend
Answer with a single JSON object and nothing else.`

const budgetAnalysisSchema = `{
  "overspending_alert": {
    "has_overspending": true,
    "categories": [{"category": "food", "budget": 0, "actual": 0, "overspent": 0, "percentage": 0}],
    "message": "short warning"
  },
  "saving_suggestions": [{"suggestion": "text", "category": "food", "estimated_saving": 0}],
  "optimized_budget": {
    "allocation": {"transportation": 0, "accommodation": 0, "food": 0, "attractions": 0, "shopping": 0, "other": 0},
    "rationale": "why"
  },
  "trend_prediction": {
    "predicted_total": 0,
    "predicted_overspending": 0,
    "warning_level": "low",
    "message": "trend and advice"
  }
}`

// AnalyzeBudget reviews an itinerary's spend. When the model is unavailable
// the analysis is computed locally from the same figures.
func (a *ExpenseAnalyzer) AnalyzeBudget(ctx context.Context, userID, itineraryID string) (*response_models.BudgetAnalysis, error) {
	comparison, err := a.expenses.BudgetComparison(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	expenses, err := a.expenseRepo.List(ctx, userID, repositories.ExpenseFilter{ItineraryID: itineraryID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	record, err := a.itineraryFacts(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	remaining := utils.DaysUntil(record.EndDate, a.now())
	fallback := localBudgetAnalysis(comparison, record, remaining)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Destination: %s\nTotal budget: %.2f CNY\nRemaining days: %d\n\n", record.Destination, record.Budget, remaining)
	sb.WriteString("Budget vs actual by category:\n")
	for _, c := range itinerary.Categories {
		line := comparison[string(c)]
		fmt.Fprintf(&sb, "- %s: budget %.2f, actual %.2f\n", c, line.Budget, line.Actual)
	}
	fmt.Fprintf(&sb, "\nRecent expenses (%d total, %.2f spent):\n", len(expenses), comparison["total"].Actual)
	for i, e := range expenses {
		if i == recentExpenseLimit {
			break
		}
		desc := e.Description
		if desc == "" {
			desc = "no description"
		}
		fmt.Fprintf(&sb, "- %s %s: %.2f (%s)\n", e.ExpenseDate, e.Category, e.Amount, desc)
	}
	sb.WriteString("\nReturn JSON with this structure:\n")
	sb.WriteString(budgetAnalysisSchema)

	raw, err := a.ai.CompleteJSON(ctx, budgetAnalysisSystemPrompt, sb.String(), analysisTemperature)
	metrics.RecordExternalCall(a.ai.Provider(), "budget_analysis", err)
	if err != nil {
		a.logger.Warn("budget analysis failed, using local analysis", zap.String("itinerary_id", itineraryID), zap.Error(err))
		return fallback, nil
	}

	var analysis response_models.BudgetAnalysis
	if err := utils.DecodeModelJSON(raw, &analysis); err != nil {
		a.logger.Warn("budget analysis returned invalid JSON, using local analysis", zap.Error(err))
		return fallback, nil
	}
	analysis.RemainingDays = remaining
	analysis.Generated = true
	if !validWarningLevel(analysis.TrendPrediction.WarningLevel) {
		analysis.TrendPrediction.WarningLevel = fallback.TrendPrediction.WarningLevel
	}
	if analysis.OverspendingAlert.Categories == nil {
		analysis.OverspendingAlert.Categories = []response_models.OverspentCategory{}
	}
	if analysis.SavingSuggestions == nil {
		analysis.SavingSuggestions = []response_models.SavingSuggestion{}
	}
	if len(analysis.OptimizedBudget.Allocation) == 0 {
		analysis.OptimizedBudget = fallback.OptimizedBudget
	}
	return &analysis, nil
}

type tripFacts struct {
	Destination string
	StartDate   string
	EndDate     string
	Budget      float64
}

func (a *ExpenseAnalyzer) itineraryFacts(ctx context.Context, userID, itineraryID string) (*tripFacts, error) {
	model, err := a.itineraryRepo.FindByID(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if model == nil {
		return nil, utils.ErrItineraryNotFound
	}
	if model.AccountID.String() != userID {
		return nil, utils.ErrForbidden
	}
	return &tripFacts{
		Destination: model.Destination,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		Budget:      model.Budget,
	}, nil
}

func validWarningLevel(level string) bool {
	switch level {
	case "low", "medium", "high":
		return true
	}
	return false
}

// localBudgetAnalysis derives the same report from arithmetic alone. The trend
// extrapolates the average daily spend so far over the whole trip.
func localBudgetAnalysis(comparison response_models.BudgetComparison, trip *tripFacts, remainingDays int) *response_models.BudgetAnalysis {
	total := comparison["total"]
	budget := trip.Budget
	if budget <= 0 {
		budget = total.Budget
	}

	analysis := &response_models.BudgetAnalysis{
		OverspendingAlert: response_models.OverspendingAlert{Categories: []response_models.OverspentCategory{}},
		SavingSuggestions: []response_models.SavingSuggestion{},
		OptimizedBudget:   response_models.OptimizedBudget{Allocation: map[string]float64{}},
		RemainingDays:     remainingDays,
	}

	var overNames []string
	for _, c := range itinerary.Categories {
		line := comparison[string(c)]
		if line.Status == "over" && line.Budget > 0 {
			analysis.OverspendingAlert.Categories = append(analysis.OverspendingAlert.Categories, response_models.OverspentCategory{
				Category:   string(c),
				Budget:     line.Budget,
				Actual:     line.Actual,
				Overspent:  line.Difference,
				Percentage: round2(line.Difference / line.Budget * 100),
			})
			overNames = append(overNames, string(c))
			analysis.SavingSuggestions = append(analysis.SavingSuggestions, response_models.SavingSuggestion{
				Suggestion:      fmt.Sprintf("Cut back on %s for the rest of the trip to recover the %.0f CNY overspend.", c, line.Difference),
				Category:        string(c),
				EstimatedSaving: round2(line.Difference),
			})
		}
	}
	analysis.OverspendingAlert.HasOverspending = len(overNames) > 0 || total.Status == "over"
	switch {
	case len(overNames) > 0:
		analysis.OverspendingAlert.Message = "Over budget in: " + strings.Join(overNames, ", ")
	case total.Status == "over":
		analysis.OverspendingAlert.Message = "Total spending is over budget."
	default:
		analysis.OverspendingAlert.Message = "Spending is within budget."
	}

	// Spread what is left of the budget over categories by their current share.
	left := math.Max(0, budget-total.Actual)
	for _, c := range itinerary.Categories {
		line := comparison[string(c)]
		share := 1.0 / float64(len(itinerary.Categories))
		if total.Budget > 0 {
			share = line.Budget / total.Budget
		}
		analysis.OptimizedBudget.Allocation[string(c)] = round2(line.Actual + left*share)
	}
	analysis.OptimizedBudget.Rationale = "Actual spend so far plus the remaining budget split by the original allocation."

	tripDays, err := itinerary.TripDays(trip.StartDate, trip.EndDate)
	if err != nil || tripDays < 1 {
		tripDays = 1
	}
	elapsed := tripDays - remainingDays
	if elapsed < 1 {
		elapsed = 1
	}
	predicted := total.Actual
	if remainingDays > 0 {
		predicted = total.Actual / float64(elapsed) * float64(tripDays)
	}
	over := math.Max(0, predicted-budget)

	level := "low"
	switch {
	case budget > 0 && predicted > budget*1.1:
		level = "high"
	case budget > 0 && predicted > budget*0.9:
		level = "medium"
	}
	analysis.TrendPrediction = response_models.TrendPrediction{
		PredictedTotal:        round2(predicted),
		PredictedOverspending: round2(over),
		WarningLevel:          level,
		Message:               trendMessage(level, predicted, budget),
	}
	return analysis
}

func trendMessage(level string, predicted, budget float64) string {
	switch level {
	case "high":
		return fmt.Sprintf("At the current pace the trip will cost about %.0f CNY, well above the %.0f CNY budget.", predicted, budget)
	case "medium":
		return fmt.Sprintf("At the current pace the trip will cost about %.0f CNY, close to the %.0f CNY budget.", predicted, budget)
	default:
		return fmt.Sprintf("At the current pace the trip will cost about %.0f CNY, comfortably within budget.", predicted)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
