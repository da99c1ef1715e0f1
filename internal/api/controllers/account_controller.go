package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
}

func NewAccountController(accountService services.AccountServiceInterface) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create an account and sign it in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 201 {object} utils.APIResponse{data=response_models.AuthResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /auth/register [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	auth, err := a.accountService.Register(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, auth, "Account created successfully")
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse{data=response_models.AuthResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /auth/login [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	auth, err := a.accountService.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, auth, "Login successful")
}

// Refresh godoc
// @Summary Rotate tokens
// @Description Exchange a refresh token for a new token pair. The old refresh token stops working.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} utils.APIResponse{data=response_models.AuthResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /auth/refresh [post]
func (a *AccountController) Refresh(c *gin.Context) {
	var req request_models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	auth, err := a.accountService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, auth, "Token refreshed")
}

// Logout godoc
// @Summary Logout
// @Description Revoke the given refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (a *AccountController) Logout(c *gin.Context) {
	var req request_models.LogoutRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&req)

	if err := a.accountService.Logout(c.Request.Context(), utils.CurrentUserID(c), req.RefreshToken); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Logged out")
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=response_models.UserResponse}
// @Failure 401 {object} utils.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (a *AccountController) Me(c *gin.Context) {
	user, err := a.accountService.Me(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, user, "")
}
