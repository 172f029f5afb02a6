package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/sailorswift/sailor-swift-api/internal/interface/http"
	"github.com/sailorswift/sailor-swift-api/internal/interface/middleware"
	"github.com/sailorswift/sailor-swift-api/pkg/helpers"
)

// AuthModule wires the authentication handlers into routes.
// Public: signup, login, google, wallet (+nonce), refresh, logout.
// Protected: me.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", m.Handler.Signup)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/google", m.Handler.Google)
	rg.POST("/auth/wallet", m.Handler.Wallet)
	rg.GET("/auth/wallet/nonce", m.Handler.WalletNonce)
	rg.POST("/auth/refresh", m.Handler.Refresh)
	// Logout is stateless; the optional bearer token is not inspected.
	rg.POST("/auth/logout", m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/auth/me", m.Handler.Me)
	}
}
