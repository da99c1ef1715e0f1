package expense_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tripwise/internal/repositories"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(
	provideExpenseRepo,
	provideExpenseService,
	provideExpenseAnalyzer)

func provideExpenseRepo(db *gorm.DB) repositories.ExpenseRepository {
	return repositories.NewExpenseRepository(db)
}

func provideExpenseService(
	expenseRepo repositories.ExpenseRepository,
	itineraryRepo repositories.ItineraryRepository,
	log *zap.Logger,
) services.ExpenseServiceInterface {
	return services.NewExpenseService(expenseRepo, itineraryRepo, log.Named("expense"))
}

func provideExpenseAnalyzer(
	ai utils.AIClientInterface,
	expenseRepo repositories.ExpenseRepository,
	itineraryRepo repositories.ItineraryRepository,
	expenses services.ExpenseServiceInterface,
	log *zap.Logger,
) services.ExpenseAnalyzerInterface {
	return services.NewExpenseAnalyzer(ai, expenseRepo, itineraryRepo, expenses, log.Named("expense-analyzer"))
}
