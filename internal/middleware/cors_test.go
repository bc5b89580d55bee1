package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/arcadeline/backend/internal/config"
	"github.com/gin-gonic/gin"
)

func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{
		Environment: "production",
		FrontendURL: "https://arcade.example.com/app",
		BaseURL:     "http://kiosk.lan:8080",
	}
	want := []string{"https://arcade.example.com", "http://kiosk.lan:8080"}
	if got := AllowedOrigins(cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	cfg.Environment = "development"
	cfg.BaseURL = "https://arcade.example.com"
	want = []string{"https://arcade.example.com", "http://localhost:5173", "http://127.0.0.1:5173"}
	if got := AllowedOrigins(cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "production", FrontendURL: "https://arcade.example.com"}
	r := gin.New()
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		origin string
		want   int
	}{
		{"https://arcade.example.com", http.StatusNoContent},
		{"http://example.test", http.StatusNoContent},
		{"https://evil.example", http.StatusForbidden},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://example.test/ws", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		req.Header.Set("Origin", c.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != c.want {
			t.Errorf("origin %s: got %d, want %d", c.origin, w.Code, c.want)
		}
	}
}
