package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type ExpenseController struct {
	expenseService services.ExpenseServiceInterface
	analyzer       services.ExpenseAnalyzerInterface
}

func NewExpenseController(expenseService services.ExpenseServiceInterface, analyzer services.ExpenseAnalyzerInterface) *ExpenseController {
	return &ExpenseController{
		expenseService: expenseService,
		analyzer:       analyzer,
	}
}

// Create godoc
// @Summary Record an expense
// @Description Category and payment method accept English or Chinese labels
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body request_models.CreateExpenseRequest true "Expense"
// @Success 201 {object} utils.APIResponse{data=response_models.ExpenseResponse}
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /expenses [post]
func (e *ExpenseController) Create(c *gin.Context) {
	var req request_models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	expense, err := e.expenseService.Create(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, expense, "Expense recorded")
}

// List godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Param itinerary_id query string false "Itinerary ID"
// @Param category query string false "Category"
// @Param start_date query string false "YYYY-MM-DD, inclusive"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} utils.APIResponse{data=[]response_models.ExpenseResponse}
// @Security BearerAuth
// @Router /expenses [get]
func (e *ExpenseController) List(c *gin.Context) {
	var query request_models.ExpenseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query")
		return
	}

	expenses, err := e.expenseService.List(c.Request.Context(), utils.CurrentUserID(c), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, expenses, "")
}

// Get godoc
// @Summary Get an expense
// @Tags Expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} utils.APIResponse{data=response_models.ExpenseResponse}
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (e *ExpenseController) Get(c *gin.Context) {
	expense, err := e.expenseService.Get(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, expense, "")
}

// Update godoc
// @Summary Update an expense
// @Description Only the fields present in the body change
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body request_models.UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse{data=response_models.ExpenseResponse}
// @Security BearerAuth
// @Router /expenses/{id} [put]
func (e *ExpenseController) Update(c *gin.Context) {
	var req request_models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	expense, err := e.expenseService.Update(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, expense, "Expense updated")
}

// Delete godoc
// @Summary Delete an expense
// @Tags Expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /expenses/{id} [delete]
func (e *ExpenseController) Delete(c *gin.Context) {
	if err := e.expenseService.Delete(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Expense deleted")
}

// Stats godoc
// @Summary Spending statistics
// @Tags Expenses
// @Produce json
// @Param itinerary_id query string false "Restrict to one itinerary"
// @Success 200 {object} utils.APIResponse{data=response_models.ExpenseStats}
// @Security BearerAuth
// @Router /expenses/stats [get]
func (e *ExpenseController) Stats(c *gin.Context) {
	stats, err := e.expenseService.Stats(c.Request.Context(), utils.CurrentUserID(c), c.Query("itinerary_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, stats, "")
}

// BudgetComparison godoc
// @Summary Budget versus actual spend
// @Tags Expenses
// @Produce json
// @Param itinerary_id query string true "Itinerary ID"
// @Success 200 {object} utils.APIResponse{data=response_models.BudgetComparison}
// @Security BearerAuth
// @Router /expenses/budget-comparison [get]
func (e *ExpenseController) BudgetComparison(c *gin.Context) {
	var query request_models.BudgetComparisonQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "itinerary_id is required")
		return
	}

	comparison, err := e.expenseService.BudgetComparison(c.Request.Context(), utils.CurrentUserID(c), query.ItineraryID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, comparison, "")
}

// VoiceParse godoc
// @Summary Parse a spoken expense
// @Description Turns a transcribed sentence into expense fields with a confidence score
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body request_models.VoiceParseRequest true "Transcribed text"
// @Success 200 {object} utils.APIResponse{data=response_models.ParsedExpense}
// @Router /expenses/voice-parse [post]
func (e *ExpenseController) VoiceParse(c *gin.Context) {
	var req request_models.VoiceParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "text is required")
		return
	}

	parsed, err := e.analyzer.ParseVoiceExpense(c.Request.Context(), req.Text)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, parsed, "")
}

// Analyze godoc
// @Summary AI budget analysis
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body request_models.BudgetAnalysisRequest true "Itinerary to analyze"
// @Success 200 {object} utils.APIResponse{data=response_models.BudgetAnalysis}
// @Security BearerAuth
// @Router /expenses/ai-analysis [post]
func (e *ExpenseController) Analyze(c *gin.Context) {
	var req request_models.BudgetAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "itinerary_id is required")
		return
	}

	analysis, err := e.analyzer.AnalyzeBudget(c.Request.Context(), utils.CurrentUserID(c), req.ItineraryID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, analysis, "")
}
