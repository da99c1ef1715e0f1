package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tripwise/pkg/utils"
)

func TestParseVoiceExpense_Normalizes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		category string
		amount   float64
		method   string
		conf     float64
		desc     string
	}{
		{
			name:     "well formed",
			response: `{"category":"food","amount":80,"description":"楼外楼吃饭","location":"楼外楼","payment_method":"wechat","confidence":0.98}`,
			category: "food", amount: 80, method: "wechat", conf: 0.98, desc: "楼外楼吃饭",
		},
		{
			name:     "unknown category and negative amount",
			response: `{"category":"souvenir","amount":-5,"confidence":3}`,
			category: "other", amount: 0, method: "cash", conf: 1, desc: "买纪念品",
		},
		{
			name:     "chinese labels, string amount, missing confidence",
			response: "```json\n{\"category\":\"交通\",\"amount\":\"30元\",\"payment_method\":\"支付宝\"}\n```",
			category: "transportation", amount: 30, method: "alipay", conf: 0.5, desc: "买纪念品",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewExpenseAnalyzer(&fakeAI{responses: []string{tt.response}}, newFakeExpenseRepo(), newFakeItineraryRepo(), nil, zap.NewNop())
			got, err := a.ParseVoiceExpense(context.Background(), "买纪念品")
			require.NoError(t, err)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.method, got.PaymentMethod)
			assert.InDelta(t, tt.conf, got.Confidence, 1e-9)
			assert.Equal(t, tt.desc, got.Description)
		})
	}
}

func TestParseVoiceExpense_FailureYieldsZeroConfidence(t *testing.T) {
	for name, ai := range map[string]*fakeAI{
		"model error":  {err: errors.New("timeout")},
		"invalid json": {responses: []string{"sorry, no idea"}},
	} {
		t.Run(name, func(t *testing.T) {
			a := NewExpenseAnalyzer(ai, newFakeExpenseRepo(), newFakeItineraryRepo(), nil, zap.NewNop())
			got, err := a.ParseVoiceExpense(context.Background(), "打车30")
			require.NoError(t, err)
			assert.Equal(t, "other", got.Category)
			assert.Equal(t, 0.0, got.Amount)
			assert.Equal(t, "打车30", got.Description)
			assert.Equal(t, 0.0, got.Confidence)
		})
	}

	a := NewExpenseAnalyzer(&fakeAI{}, newFakeExpenseRepo(), newFakeItineraryRepo(), nil, zap.NewNop())
	_, err := a.ParseVoiceExpense(context.Background(), "   ")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func newAnalyzerFixture(t *testing.T, ai *fakeAI) (*ExpenseAnalyzer, expenseFixture) {
	t.Helper()
	f := newExpenseFixture(t)
	f.add(t, "food", 500, "2024-05-01")
	f.add(t, "food", 400, "2024-05-02")
	f.add(t, "accommodation", 1200, "2024-05-01")
	f.add(t, "transportation", 100, "2024-05-02")
	f.add(t, "shopping", 200, "2024-05-02")

	a := NewExpenseAnalyzer(ai, f.expenses, f.itineraries, f.svc, zap.NewNop()).(*ExpenseAnalyzer)
	// Midday on the second day: one day left of three.
	a.now = func() time.Time { return time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC) }
	return a, f
}

func TestAnalyzeBudget_LocalFallback(t *testing.T) {
	a, f := newAnalyzerFixture(t, &fakeAI{err: errors.New("quota exceeded")})

	got, err := a.AnalyzeBudget(context.Background(), f.userID, f.tripID)
	require.NoError(t, err)
	assert.False(t, got.Generated)
	assert.Equal(t, 1, got.RemainingDays)

	require.True(t, got.OverspendingAlert.HasOverspending)
	require.Len(t, got.OverspendingAlert.Categories, 1)
	food := got.OverspendingAlert.Categories[0]
	assert.Equal(t, "food", food.Category)
	assert.Equal(t, 100.0, food.Overspent)
	assert.Equal(t, 12.5, food.Percentage)
	require.Len(t, got.SavingSuggestions, 1)

	assert.Equal(t, 3600.0, got.TrendPrediction.PredictedTotal)
	assert.Equal(t, 600.0, got.TrendPrediction.PredictedOverspending)
	assert.Equal(t, "high", got.TrendPrediction.WarningLevel)
	assert.Len(t, got.OptimizedBudget.Allocation, 6)
}

func TestAnalyzeBudget_ModelAnswerIsSanitized(t *testing.T) {
	response := `{
	  "overspending_alert": {"has_overspending": true, "message": "Food is over"},
	  "optimized_budget": {"allocation": {}},
	  "trend_prediction": {"predicted_total": 3500, "warning_level": "severe", "message": "Slow down"}
	}`
	ai := &fakeAI{responses: []string{response}}
	a, f := newAnalyzerFixture(t, ai)

	got, err := a.AnalyzeBudget(context.Background(), f.userID, f.tripID)
	require.NoError(t, err)
	assert.True(t, got.Generated)
	assert.Equal(t, "high", got.TrendPrediction.WarningLevel)
	assert.Equal(t, 3500.0, got.TrendPrediction.PredictedTotal)
	assert.NotNil(t, got.OverspendingAlert.Categories)
	assert.NotNil(t, got.SavingSuggestions)
	assert.Len(t, got.OptimizedBudget.Allocation, 6)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "Destination: Hangzhou")
	assert.Contains(t, ai.prompts[0], "- food: budget 800.00, actual 900.00")
}

func TestAnalyzeBudget_Forbidden(t *testing.T) {
	a, f := newAnalyzerFixture(t, &fakeAI{})
	_, err := a.AnalyzeBudget(context.Background(), "4b0f3c4e-2f7e-4f55-9d55-0d3f2a1b9c10", f.tripID)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}
