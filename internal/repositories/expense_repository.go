package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"tripwise/internal/models/db_models"
)

type ExpenseFilter struct {
	ItineraryID string
	Category    string
	StartDate   string
	EndDate     string
}

type CategoryTotal struct {
	Category string
	Total    float64
	Count    int64
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *db_models.Expense) error
	FindByID(ctx context.Context, id string) (*db_models.Expense, error)
	List(ctx context.Context, accountID string, filter ExpenseFilter) ([]db_models.Expense, error)
	Update(ctx context.Context, expense *db_models.Expense) error
	Delete(ctx context.Context, id string) error
	TotalsByCategory(ctx context.Context, accountID, itineraryID string) ([]CategoryTotal, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *db_models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id string) (*db_models.Expense, error) {
	var expense db_models.Expense
	err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, accountID string, filter ExpenseFilter) ([]db_models.Expense, error) {
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if filter.ItineraryID != "" {
		q = q.Where("itinerary_id = ?", filter.ItineraryID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.StartDate != "" {
		q = q.Where("expense_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("expense_date <= ?", filter.EndDate)
	}

	var expenses []db_models.Expense
	err := q.Order("expense_date DESC").Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Update(ctx context.Context, expense *db_models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db_models.Expense{}, "id = ?", id).Error
}

func (r *expenseRepository) TotalsByCategory(ctx context.Context, accountID, itineraryID string) ([]CategoryTotal, error) {
	q := r.db.WithContext(ctx).
		Model(&db_models.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("account_id = ?", accountID)
	if itineraryID != "" {
		q = q.Where("itinerary_id = ?", itineraryID)
	}

	var totals []CategoryTotal
	err := q.Group("category").Scan(&totals).Error
	return totals, err
}
