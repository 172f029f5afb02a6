package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sailorswift/sailor-swift-api/internal/application"
	"github.com/sailorswift/sailor-swift-api/internal/domain/entity"
	"github.com/sailorswift/sailor-swift-api/internal/interface/middleware"
	"github.com/sailorswift/sailor-swift-api/pkg/response"
	"github.com/sailorswift/sailor-swift-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,pwd"`
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type googleAuthRequest struct {
	GoogleToken string `json:"google_token" binding:"required"`
}

// walletAuthRequest fields are all optional at the binding layer; the
// resolver decides which are required so the missing-address case keeps
// its historical message.
type walletAuthRequest struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// userResponse is the public user shape. The password hash never leaves
// the service.
type userResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Username      *string `json:"username"`
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	FullName      string  `json:"fullName"`
	WalletAddress *string `json:"walletAddress"`
	IsActive      bool    `json:"isActive"`
	IsVerified    bool    `json:"isVerified"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	User         userResponse `json:"user"`
}

func newUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		WalletAddress: u.WalletAddress,
		IsActive:      u.IsActive,
		IsVerified:    u.IsVerified,
		CreatedAt:     u.CreatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
		UpdatedAt:     u.UpdatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}

func newTokenResponse(u *entity.User, pair application.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         newUserResponse(u),
	}
}

// fail maps resolver failure kinds to HTTP statuses with one fixed message
// per kind. Anything unrecognized is an internal fault and stays opaque.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrUsernameTaken),
		errors.Is(err, application.ErrWalletRequired),
		errors.Is(err, application.ErrSignatureRequired):
		response.Error[any](c, http.StatusBadRequest, capitalized(err), nil)
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrAccountDeactivated),
		errors.Is(err, application.ErrInvalidGoogleToken),
		errors.Is(err, application.ErrInvalidToken),
		errors.Is(err, application.ErrInvalidSignature):
		response.Error[any](c, http.StatusUnauthorized, capitalized(err), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("auth request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func capitalized(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// Signup POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTokenResponse(u, pair), "signup successful", nil)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTokenResponse(u, pair), "login successful", nil)
}

// Google POST /auth/google
func (h *AuthHandler) Google(c *gin.Context) {
	var req googleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.GoogleLogin(c.Request.Context(), req.GoogleToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTokenResponse(u, pair), "google login successful", nil)
}

// Wallet POST /auth/wallet
func (h *AuthHandler) Wallet(c *gin.Context) {
	var req walletAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.WalletLogin(c.Request.Context(), application.WalletLoginInput{
		Address:   req.WalletAddress,
		Message:   req.Message,
		Signature: req.Signature,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTokenResponse(u, pair), "wallet login successful", nil)
}

// WalletNonce GET /auth/wallet/nonce?address=0x...
func (h *AuthHandler) WalletNonce(c *gin.Context) {
	message, err := h.Svc.WalletChallenge(c.Request.Context(), c.Query("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message}, "wallet challenge", nil)
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		// A missing or unreadable token is indistinguishable from an
		// invalid one on the outside.
		h.fail(c, application.ErrInvalidToken)
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newTokenResponse(u, pair), "token refreshed", nil)
}

// Me GET /auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, newUserResponse(u), "current user", nil)
}

// Logout POST /auth/logout. Tokens are stateless, so logout is a no-op the
// client acts on by dropping its pair.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success[any](c, http.StatusOK, gin.H{"message": "Successfully logged out"}, "Successfully logged out", nil)
}
