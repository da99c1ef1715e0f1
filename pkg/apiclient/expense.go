package apiclient

import (
	"context"
	"net/url"

	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/gateway"
)

type ExpenseService struct {
	gw *gateway.Client
}

func NewExpenseService(gw *gateway.Client) *ExpenseService {
	return &ExpenseService{gw: gw}
}

func (s *ExpenseService) Create(ctx context.Context, req request_models.CreateExpenseRequest) (*response_models.ExpenseResponse, error) {
	var out response_models.ExpenseResponse
	if err := s.gw.Post(ctx, "/expenses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ExpenseService) List(ctx context.Context, q request_models.ExpenseQuery) ([]response_models.ExpenseResponse, error) {
	v := url.Values{}
	setIf(v, "itinerary_id", q.ItineraryID)
	setIf(v, "category", q.Category)
	setIf(v, "start_date", q.StartDate)
	setIf(v, "end_date", q.EndDate)

	var out []response_models.ExpenseResponse
	if err := s.gw.Get(ctx, withQuery("/expenses", v), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*response_models.ExpenseResponse, error) {
	var out response_models.ExpenseResponse
	if err := s.gw.Get(ctx, "/expenses/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ExpenseService) Update(ctx context.Context, id string, req request_models.UpdateExpenseRequest) (*response_models.ExpenseResponse, error) {
	var out response_models.ExpenseResponse
	if err := s.gw.Put(ctx, "/expenses/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, "/expenses/"+url.PathEscape(id), nil)
}

// Stats summarizes spending, optionally for a single itinerary.
func (s *ExpenseService) Stats(ctx context.Context, itineraryID string) (*response_models.ExpenseStats, error) {
	v := url.Values{}
	setIf(v, "itinerary_id", itineraryID)
	var out response_models.ExpenseStats
	if err := s.gw.Get(ctx, withQuery("/expenses/stats", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ExpenseService) BudgetComparison(ctx context.Context, itineraryID string) (response_models.BudgetComparison, error) {
	v := url.Values{"itinerary_id": {itineraryID}}
	var out response_models.BudgetComparison
	if err := s.gw.Get(ctx, withQuery("/expenses/budget-comparison", v), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseVoice turns a transcript into a structured expense.
func (s *ExpenseService) ParseVoice(ctx context.Context, text string) (*response_models.ParsedExpense, error) {
	var out response_models.ParsedExpense
	if err := s.gw.Post(ctx, "/expenses/voice-parse", request_models.VoiceParseRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ExpenseService) Analyze(ctx context.Context, itineraryID string) (*response_models.BudgetAnalysis, error) {
	var out response_models.BudgetAnalysis
	req := request_models.BudgetAnalysisRequest{ItineraryID: itineraryID}
	if err := s.gw.Post(ctx, "/expenses/ai-analysis", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
