// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/cliparse"
	"github.com/danielhkuo/shadow-board/db"
)

// TestJWTSecret signs the tokens minted by Token
const TestJWTSecret = "test-jwt-secret"

func init() {
	goose.SetLogger(goose.NopLogger())
}

// SetupTestDB creates a fresh, migrated SQLite database in a temp dir.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, TestDBURL(t))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// TestDBURL returns a SQLite DSN for a file in the test's temp dir
func TestDBURL(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: db.DriverSQLite,
		JWTSecret:    TestJWTSecret,
		FrontendURL:  "http://localhost:5173",
		InviteTTL:    7 * 24 * time.Hour,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// User returns an identity whose email is derived from name
func User(userID, name string) auth.Identity {
	return auth.Identity{
		UserID: userID,
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
	}
}

// Token mints a bearer token for id signed with cfg.JWTSecret
func Token(t *testing.T, cfg cliparse.Config, id auth.Identity) string {
	t.Helper()

	token, err := auth.Issue(cfg.JWTSecret, id, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// AuthHeader returns request headers carrying a bearer token for id
func AuthHeader(t *testing.T, cfg cliparse.Config, id auth.Identity) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + Token(t, cfg, id)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the error code of a failed response
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v. Body: %s", err, w.Body.String())
	}
	if resp.Success {
		t.Errorf("Expected success false, body: %s", w.Body.String())
	}
	if resp.Error != code {
		t.Errorf("Expected error code '%s', got '%s'", code, resp.Error)
	}
}
