package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tripwise/internal/models/db_models"
	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/internal/repositories"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, request request_models.SignUpRequest) (*response_models.AuthResponse, error)
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*response_models.AuthResponse, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	Me(ctx context.Context, userID string) (*response_models.UserResponse, error)
}

type AccountService struct {
	accountRepo   repositories.AccountRepository
	tokens        *utils.TokenIssuer
	refreshTokens mem.RefreshTokenStore
	refreshTTL    time.Duration
	logger        *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	tokens *utils.TokenIssuer,
	refreshTokens mem.RefreshTokenStore,
	refreshTTL time.Duration,
	logger *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		accountRepo:   accountRepo,
		tokens:        tokens,
		refreshTokens: refreshTokens,
		refreshTTL:    refreshTTL,
		logger:        logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AccountService) Register(ctx context.Context, request request_models.SignUpRequest) (*response_models.AuthResponse, error) {
	email := normalizeEmail(request.Email)

	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	displayName := strings.TrimSpace(request.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	newAccount := &db_models.Account{
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         "user",
	}

	if err := a.accountRepo.InsertTx(ctx, newAccount); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	a.logger.Info("account registered", zap.String("user_id", newAccount.ID.String()))
	return a.issueTokens(newAccount)
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AuthResponse, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	resp, err := a.issueTokens(account)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("login completed", zap.String("user_id", account.ID.String()), zap.Duration("took", time.Since(startTime)))
	return resp, nil
}

// Refresh rotates the refresh token: the presented token is consumed whether
// or not the rest of the exchange succeeds.
func (a *AccountService) Refresh(ctx context.Context, refreshToken string) (*response_models.AuthResponse, error) {
	userID := a.refreshTokens.Consume(refreshToken)
	if userID == "" {
		return nil, utils.ErrInvalidToken
	}

	account, err := a.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, utils.ErrInvalidToken
	}
	return a.issueTokens(account)
}

// Logout revokes refreshToken if it belongs to userID. Access tokens simply
// expire.
func (a *AccountService) Logout(_ context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if owner, ok := a.refreshTokens.Peek(refreshToken); ok && owner == userID {
		a.refreshTokens.Revoke(refreshToken)
	}
	return nil
}

func (a *AccountService) Me(ctx context.Context, userID string) (*response_models.UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, utils.ErrInvalidToken
	}
	account, err := a.accountRepo.FindById(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	user := toUserResponse(account)
	return &user, nil
}

func (a *AccountService) issueTokens(account *db_models.Account) (*response_models.AuthResponse, error) {
	accessToken, expiresAt, err := a.tokens.CreateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}
	a.refreshTokens.Set(refreshToken, account.ID.String(), a.refreshTTL)

	return &response_models.AuthResponse{
		User:         toUserResponse(account),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.tokens.TTL().Seconds()),
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

func toUserResponse(account *db_models.Account) response_models.UserResponse {
	return response_models.UserResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		CreatedAt:   utils.FormatUnixRFC3339(account.CreatedAt),
	}
}
