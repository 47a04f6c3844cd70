package middleware

import (
	"knowledgebot/internal/config"
	"knowledgebot/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "unit-test-secret",
			ExpireTime: time.Hour,
		},
		Gateway: config.GatewayConfig{
			Token: "unit-test-gateway-token",
		},
	}
}

func gatewayRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", GatewayMiddleware(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestGatewayMiddleware(t *testing.T) {
	cfg := testConfig()
	router := gatewayRouter(cfg)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid token", "unit-test-gateway-token", http.StatusOK},
		{"wrong token", "not-the-token", http.StatusUnauthorized},
		{"missing token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.token != "" {
				req.Header.Set("X-Gateway-Token", tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func authRouter(cfg *config.Config, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if adminOnly {
		handlers = append(handlers, AdminMiddleware())
	}
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/secure", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg, false)

	token, err := util.GenerateJWT(1, "admin@example.com", true, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer token", "Bearer " + token, http.StatusOK},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg, false)

	forged, err := util.GenerateJWT(1, "admin@example.com", true, "some-other-secret", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminMiddleware(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg, true)

	adminToken, err := util.GenerateJWT(1, "admin@example.com", true, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	userToken, err := util.GenerateJWT(2, "user@example.com", false, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		t.Fatalf("generate user token: %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"admin allowed", adminToken, http.StatusOK},
		{"non-admin forbidden", userToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
