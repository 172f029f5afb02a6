package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailorswift/sailor-swift-api/internal/application"
	"github.com/sailorswift/sailor-swift-api/internal/domain/entity"
	repo "github.com/sailorswift/sailor-swift-api/internal/domain/repository"
	"github.com/sailorswift/sailor-swift-api/internal/interface/middleware"
	"github.com/sailorswift/sailor-swift-api/pkg/helpers"
	"github.com/sailorswift/sailor-swift-api/pkg/validation"
)

// stubRepo is a minimal in-memory store, enough for routing tests; the
// resolver's own behavior is covered in its package.
type stubRepo struct {
	seq   int
	users []entity.User
}

func (r *stubRepo) Create(_ context.Context, u *entity.User) error {
	for _, e := range r.users {
		if e.Email == u.Email {
			return repo.ErrDuplicateKey
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users = append(r.users, *u)
	return nil
}

func (r *stubRepo) Update(_ context.Context, u *entity.User) error {
	for i, e := range r.users {
		if e.ID == u.ID {
			r.users[i] = *u
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *stubRepo) find(match func(entity.User) bool) (*entity.User, error) {
	for _, e := range r.users {
		if match(e) {
			copied := e
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *stubRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return str(u.Username) == username })
}

func (r *stubRepo) GetByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return str(u.GoogleID) == googleID })
}

func (r *stubRepo) GetByWallet(_ context.Context, walletAddress string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return str(u.WalletAddress) == walletAddress })
}

type stubGoogle struct{ claims *application.GoogleClaims }

func (s stubGoogle) Verify(context.Context, string) (*application.GoogleClaims, error) {
	if s.claims == nil {
		return nil, fmt.Errorf("tokeninfo status 400")
	}
	return s.claims, nil
}

type stubWallet struct{}

func (stubWallet) Verify(string, string, string) bool { return true }

type stubNonces struct{ last string }

func (s *stubNonces) Issue(context.Context, string) (string, error) {
	s.last = "nonce-1"
	return s.last, nil
}

func (s *stubNonces) Consume(_ context.Context, _, nonce string) bool { return nonce == s.last }

// envelope mirrors the wire shape for assertions.
type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type tokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	User         struct {
		ID       string  `json:"id"`
		Email    string  `json:"email"`
		Username *string `json:"username"`
		FullName string  `json:"fullName"`
	} `json:"user"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	jwt, err := helpers.NewJWTManager("test-secret", 30*time.Minute, 168*time.Hour)
	require.NoError(t, err)
	svc := application.NewService(&stubRepo{}, jwt, stubGoogle{}, stubWallet{}, &stubNonces{}, false, nil)
	h := NewAuthHandler(svc, nil)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/google", h.Google)
	r.POST("/auth/wallet", h.Wallet)
	r.GET("/auth/wallet/nonce", h.WalletNonce)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)

	auth := r.Group("/")
	auth.Use(middleware.Auth(jwt))
	auth.GET("/auth/me", h.Me)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func decodeTokens(t *testing.T, env envelope) tokenData {
	t.Helper()
	var data tokenData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func signupBody() gin.H {
	return gin.H{"email": "a@x.com", "password": "password123", "username": "swiftie"}
}

func TestSignupEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/signup", signupBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data := decodeTokens(t, env)
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)
	assert.Equal(t, "bearer", data.TokenType)
	assert.Equal(t, "a@x.com", data.User.Email)
	assert.Equal(t, "swiftie", data.User.FullName)
}

func TestSignupEndpointValidation(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/signup", gin.H{"email": "not-an-email", "password": "short"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "min length 8", details["password"])
}

func TestSignupEndpointDuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	_, _ = doJSON(t, r, http.MethodPost, "/auth/signup", signupBody(), nil)

	w, env := doJSON(t, r, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, signupEnv := doJSON(t, r, http.MethodPost, "/auth/signup", signupBody(), nil)
	created := decodeTokens(t, signupEnv)

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.User.ID, decodeTokens(t, env).User.ID)

	w, env = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "wrong-password"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

func TestGoogleEndpointInvalidToken(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/google", gin.H{"google_token": "bad"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid google token", env.Message)
}

func TestWalletEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/wallet", gin.H{"wallet_address": "0xAbC123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeTokens(t, env)
	assert.Equal(t, "0xabc123@wallet.local", data.User.Email)

	w, env = doJSON(t, r, http.MethodPost, "/auth/wallet", gin.H{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Wallet address is required", env.Message)
}

func TestWalletNonceEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/auth/wallet/nonce?address=0xabc", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, strings.HasPrefix(data.Message, "Sign this message to authenticate with Sailor Swift: "))
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, signupEnv := doJSON(t, r, http.MethodPost, "/auth/signup", signupBody(), nil)
	created := decodeTokens(t, signupEnv)

	w, env := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": created.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decodeTokens(t, env)
	assert.NotEqual(t, created.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, created.User.ID, rotated.User.ID)

	w, env = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", env.Message)

	w, env = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": "garbage"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestMeEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, signupEnv := doJSON(t, r, http.MethodPost, "/auth/signup", signupBody(), nil)
	created := decodeTokens(t, signupEnv)

	w, env := doJSON(t, r, http.MethodGet, "/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + created.AccessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "a@x.com", user.Email)
}

func TestMeEndpointRejectsAnonymous(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/auth/me", nil, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authenticated", env.Message)

	w, env = doJSON(t, r, http.MethodGet, "/auth/me", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", env.Message)
}

func TestLogoutEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully logged out", env.Message)
}
