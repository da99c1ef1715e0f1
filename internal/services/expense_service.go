package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tripwise/internal/models/db_models"
	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/utils"
)

type ExpenseServiceInterface interface {
	Create(ctx context.Context, userID string, request request_models.CreateExpenseRequest) (*response_models.ExpenseResponse, error)
	List(ctx context.Context, userID string, query request_models.ExpenseQuery) ([]response_models.ExpenseResponse, error)
	Get(ctx context.Context, userID, id string) (*response_models.ExpenseResponse, error)
	Update(ctx context.Context, userID, id string, request request_models.UpdateExpenseRequest) (*response_models.ExpenseResponse, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID, itineraryID string) (*response_models.ExpenseStats, error)
	BudgetComparison(ctx context.Context, userID, itineraryID string) (response_models.BudgetComparison, error)
}

type ExpenseService struct {
	expenseRepo   repositories.ExpenseRepository
	itineraryRepo repositories.ItineraryRepository
	logger        *zap.Logger
}

func NewExpenseService(
	expenseRepo repositories.ExpenseRepository,
	itineraryRepo repositories.ItineraryRepository,
	logger *zap.Logger,
) ExpenseServiceInterface {
	return &ExpenseService{
		expenseRepo:   expenseRepo,
		itineraryRepo: itineraryRepo,
		logger:        logger,
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID string, request request_models.CreateExpenseRequest) (*response_models.ExpenseResponse, error) {
	accountID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	category, ok := parseCategory(request.Category)
	if !ok {
		return nil, utils.InvalidInput("invalid category %q", request.Category)
	}
	if request.Amount < 0 {
		return nil, utils.InvalidInput("amount must not be negative")
	}
	method, ok := parsePaymentMethod(request.PaymentMethod)
	if !ok {
		return nil, utils.InvalidInput("invalid payment_method %q", request.PaymentMethod)
	}
	date, err := expenseDate(request.ExpenseDate)
	if err != nil {
		return nil, err
	}

	expense := &db_models.Expense{
		AccountID:     accountID,
		Category:      string(category),
		Amount:        request.Amount,
		Description:   strings.TrimSpace(request.Description),
		ExpenseDate:   date,
		Location:      strings.TrimSpace(request.Location),
		PaymentMethod: method,
		VoiceInput:    request.VoiceInput,
	}
	if request.ItineraryID != "" {
		itineraryID, err := s.ownedItineraryID(ctx, userID, request.ItineraryID)
		if err != nil {
			return nil, err
		}
		expense.ItineraryID = &itineraryID
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	s.logger.Debug("expense recorded",
		zap.String("user_id", userID),
		zap.String("category", expense.Category),
		zap.Bool("voice_input", expense.VoiceInput))
	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *ExpenseService) List(ctx context.Context, userID string, query request_models.ExpenseQuery) ([]response_models.ExpenseResponse, error) {
	filter := repositories.ExpenseFilter{
		ItineraryID: query.ItineraryID,
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
	}
	if query.Category != "" {
		category, ok := parseCategory(query.Category)
		if !ok {
			return nil, utils.InvalidInput("invalid category %q", query.Category)
		}
		filter.Category = string(category)
	}
	for _, d := range []string{query.StartDate, query.EndDate} {
		if d == "" {
			continue
		}
		if _, err := itinerary.ParseDate(d); err != nil {
			return nil, utils.InvalidInput("%v", err)
		}
	}

	expenses, err := s.expenseRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	out := make([]response_models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseResponse(&expenses[i]))
	}
	return out, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*response_models.ExpenseResponse, error) {
	expense, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, request request_models.UpdateExpenseRequest) (*response_models.ExpenseResponse, error) {
	expense, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if request.Category != nil {
		category, ok := parseCategory(*request.Category)
		if !ok {
			return nil, utils.InvalidInput("invalid category %q", *request.Category)
		}
		expense.Category = string(category)
	}
	if request.Amount != nil {
		if *request.Amount < 0 {
			return nil, utils.InvalidInput("amount must not be negative")
		}
		expense.Amount = *request.Amount
	}
	if request.Description != nil {
		expense.Description = strings.TrimSpace(*request.Description)
	}
	if request.ExpenseDate != nil {
		date, err := expenseDate(*request.ExpenseDate)
		if err != nil {
			return nil, err
		}
		expense.ExpenseDate = date
	}
	if request.Location != nil {
		expense.Location = strings.TrimSpace(*request.Location)
	}
	if request.PaymentMethod != nil {
		method, ok := parsePaymentMethod(*request.PaymentMethod)
		if !ok {
			return nil, utils.InvalidInput("invalid payment_method %q", *request.PaymentMethod)
		}
		expense.PaymentMethod = method
	}

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	resp := toExpenseResponse(expense)
	return &resp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

func (s *ExpenseService) Stats(ctx context.Context, userID, itineraryID string) (*response_models.ExpenseStats, error) {
	totals, err := s.expenseRepo.TotalsByCategory(ctx, userID, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	stats := &response_models.ExpenseStats{ByCategory: make(map[string]response_models.CategoryStat, len(totals))}
	for _, t := range totals {
		stats.ByCategory[t.Category] = response_models.CategoryStat{Total: t.Total, Count: t.Count}
		stats.TotalSpent += t.Total
		stats.ExpenseCount += t.Count
	}
	if stats.ExpenseCount > 0 {
		stats.AvgExpense = stats.TotalSpent / float64(stats.ExpenseCount)
	}
	return stats, nil
}

// BudgetComparison sets each category's spend against the itinerary's
// budget breakdown, plus a "total" row over all categories.
func (s *ExpenseService) BudgetComparison(ctx context.Context, userID, itineraryID string) (response_models.BudgetComparison, error) {
	doc, err := s.ownedDocument(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	comparison := make(response_models.BudgetComparison, len(itinerary.Categories)+1)
	var totalBudget float64
	for _, c := range itinerary.Categories {
		budget := doc.BudgetBreakdown.Get(c)
		actual := stats.ByCategory[string(c)].Total
		totalBudget += budget
		comparison[string(c)] = budgetLine(budget, actual)
	}
	comparison["total"] = budgetLine(totalBudget, stats.TotalSpent)
	return comparison, nil
}

func budgetLine(budget, actual float64) response_models.BudgetLine {
	return response_models.BudgetLine{
		Budget:     budget,
		Actual:     actual,
		Difference: actual - budget,
		Percentage: percentOf(actual, budget),
		Status:     comparisonStatus(actual, budget),
	}
}

func (s *ExpenseService) findOwned(ctx context.Context, userID, id string) (*db_models.Expense, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrExpenseNotFound
	}
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if expense == nil {
		return nil, utils.ErrExpenseNotFound
	}
	if expense.AccountID.String() != userID {
		return nil, utils.ErrForbidden
	}
	return expense, nil
}

func (s *ExpenseService) ownedItinerary(ctx context.Context, userID, itineraryID string) (*db_models.Itinerary, error) {
	if _, err := uuid.Parse(itineraryID); err != nil {
		return nil, utils.ErrItineraryNotFound
	}
	model, err := s.itineraryRepo.FindByID(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if model == nil {
		return nil, utils.ErrItineraryNotFound
	}
	if model.AccountID.String() != userID {
		return nil, utils.ErrForbidden
	}
	return model, nil
}

func (s *ExpenseService) ownedItineraryID(ctx context.Context, userID, itineraryID string) (uuid.UUID, error) {
	model, err := s.ownedItinerary(ctx, userID, itineraryID)
	if err != nil {
		return uuid.Nil, err
	}
	return model.ID, nil
}

func (s *ExpenseService) ownedDocument(ctx context.Context, userID, itineraryID string) (*itinerary.Document, error) {
	model, err := s.ownedItinerary(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	return itinerary.DocumentFromRecord(toRecord(model)), nil
}

func expenseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return utils.Today(), nil
	}
	if _, err := itinerary.ParseDate(s); err != nil {
		return "", utils.InvalidInput("%v", err)
	}
	return s, nil
}

func toExpenseResponse(e *db_models.Expense) response_models.ExpenseResponse {
	resp := response_models.ExpenseResponse{
		ID:            e.ID.String(),
		UserID:        e.AccountID.String(),
		Category:      e.Category,
		Amount:        e.Amount,
		Description:   e.Description,
		ExpenseDate:   e.ExpenseDate,
		Location:      e.Location,
		PaymentMethod: e.PaymentMethod,
		VoiceInput:    e.VoiceInput,
		CreatedAt:     utils.FormatUnixRFC3339(e.CreatedAt),
		UpdatedAt:     utils.FormatUnixRFC3339(e.UpdatedAt),
	}
	if e.ItineraryID != nil {
		resp.ItineraryID = e.ItineraryID.String()
	}
	return resp
}
