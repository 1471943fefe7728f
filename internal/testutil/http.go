package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/models"
)

const TestSecret = "test-secret"

// TestConfig returns a config suitable for route tests.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:           TestSecret,
		JWTAccessExpiry:     15 * time.Minute,
		JWTRefreshExpiry:    24 * time.Hour,
		CORSOrigins:         "http://localhost:5173",
		LeaderboardCacheTTL: time.Minute,
		LeaderboardTZ:       "UTC",
		UploadDir:           t.TempDir(),
		MaxUploadMB:         1,
	}
}

// Token signs an access token for user the way AuthService does.
func Token(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Response is a decoded envelope.
type Response struct {
	Status  int
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// Decode unmarshals the envelope's data into v.
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", string(r.Data), err)
	}
}

// Do sends a JSON request through app.Test and decodes the envelope.
func Do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return Send(t, app, req)
}

// Send runs a prepared request and decodes the envelope.
func Send(t *testing.T, app *fiber.App, req *http.Request) *Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	out := &Response{Status: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode envelope %q: %v", string(raw), err)
		}
	}
	return out
}
