package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories/memory"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
	"github.com/SAP-F-2025/academic-records-service/internal/utils"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

const (
	adminEmail    = "admin@school.test"
	adminPassword = "admin-secret"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenManager(auth.Config{
		Secret:     []byte("handler-test-secret-handler-test-secret"),
		Issuer:     "academic-records-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	sm := services.NewServiceManager(memory.NewRepositoryManager(), slogger, validator.New(), services.ServiceManagerConfig{
		Tokens:    tokens,
		Publisher: events.NewMockEventPublisher(slogger),
		SeedAdmin: &services.SeedAdmin{Name: "Admin", Email: adminEmail, Password: adminPassword},
	})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = sm.Shutdown(context.Background()) })

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, logger, false).SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine, email, password string) auth.TokenPair {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/auth/login", "", services.LoginRequest{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var pair auth.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode token pair: %v", err)
	}
	return pair
}

func createUser(t *testing.T, router *gin.Engine, adminToken, email, role string) {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/admin/users", adminToken, services.CreateUserRequest{
		Name: "Test " + role, Email: email, Password: "secret123", Role: role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user status = %d, body = %s", w.Code, w.Body.String())
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind services.ErrorKind
		want int
	}{
		{services.KindConflict, http.StatusConflict},
		{services.KindUnauthorized, http.StatusUnauthorized},
		{services.KindForbidden, http.StatusForbidden},
		{services.KindNotFound, http.StatusBadRequest},
		{services.KindInvalidState, http.StatusBadRequest},
		{services.KindValidation, http.StatusBadRequest},
		{services.ErrorKind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := statusForKind(tt.kind); got != tt.want {
				t.Errorf("statusForKind(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_HidesUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	base := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	base.handleServiceError(c, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != unexpectedErrorMessage {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)
	pair := login(t, router, adminEmail, adminPassword)

	if pair.Role != "ADMIN" {
		t.Errorf("role = %s, want ADMIN", pair.Role)
	}

	w := doRequest(router, http.MethodPost, "/auth/login", "", services.LoginRequest{Email: adminEmail, Password: adminPassword})
	cookies := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	for _, name := range []string{accessTokenCookie, refreshTokenCookie, userRoleCookie} {
		if cookies[name] == nil || cookies[name].Value == "" {
			t.Errorf("cookie %s not set", name)
		}
	}
	if !cookies[accessTokenCookie].HttpOnly || cookies[userRoleCookie].HttpOnly {
		t.Error("access token cookie should be httpOnly and role cookie readable")
	}

	w = doRequest(router, http.MethodGet, "/auth/me", pair.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: pair.AccessToken})
	cw := httptest.NewRecorder()
	router.ServeHTTP(cw, req)
	if cw.Code != http.StatusOK {
		t.Errorf("me via cookie status = %d", cw.Code)
	}

	w = doRequest(router, http.MethodPost, "/auth/login", "", services.LoginRequest{Email: adminEmail, Password: "wrong-password"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/auth/logout", pair.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/auth/me", pair.AccessToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", w.Code)
	}
}

func TestRefreshBody(t *testing.T) {
	router := newTestRouter(t)
	pair := login(t, router, adminEmail, adminPassword)

	refresh := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: pair.RefreshToken})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := refresh("{"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
	if w := refresh(`{"refresh_token": 42}`); w.Code != http.StatusBadRequest {
		t.Errorf("mistyped body status = %d, want 400", w.Code)
	}
	if w := refresh(""); w.Code != http.StatusOK {
		t.Errorf("empty body with cookie status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRoleGates(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken
	createUser(t, router, admin, "student@school.test", "STUDENT")
	createUser(t, router, admin, "teacher@school.test", "TEACHER")
	student := login(t, router, "student@school.test", "secret123").AccessToken
	teacher := login(t, router, "teacher@school.test", "secret123").AccessToken

	tests := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"no token", "", "/admin/users", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", "/admin/users", http.StatusUnauthorized},
		{"student on admin", student, "/admin/users", http.StatusForbidden},
		{"teacher on admin", teacher, "/admin/reports/summary", http.StatusForbidden},
		{"student on teacher", student, "/teacher/classes", http.StatusForbidden},
		{"teacher on student", teacher, "/student/results", http.StatusForbidden},
		{"admin on admin", admin, "/admin/reports/summary", http.StatusOK},
		{"admin on teacher", admin, "/teacher/subjects", http.StatusOK},
		{"teacher on teacher", teacher, "/teacher/classes", http.StatusOK},
		{"student on student", student, "/student/results", http.StatusOK},
		{"student timetable", student, "/student/timetables", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.path, tt.token, nil)
			if w.Code != tt.want {
				t.Errorf("GET %s status = %d, want %d (%s)", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAdminErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken
	createUser(t, router, admin, "dup@school.test", "STUDENT")

	w := doRequest(router, http.MethodPost, "/admin/users", admin, services.CreateUserRequest{
		Name: "Dup", Email: "DUP@school.test", Password: "secret123", Role: "STUDENT",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != services.ErrEmailTaken.Message {
		t.Errorf("message = %q", resp.Message)
	}

	w = doRequest(router, http.MethodPost, "/admin/users", admin, services.CreateUserRequest{
		Name: "Bad", Email: "bad@school.test", Password: "1", Role: "JANITOR",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("validation status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Details == nil {
		t.Error("validation failure should carry field details")
	}

	w = doRequest(router, http.MethodDelete, "/admin/classes/999", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing class status = %d, want 400", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/admin/users/abc", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestSubmitResultsAcceptsBothPayloads(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken

	for _, body := range []any{[]uint{1, 2}, map[string][]uint{"result_ids": {3}}} {
		w := doRequest(router, http.MethodPost, "/teacher/results/submit", admin, body)
		if w.Code != http.StatusOK {
			t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
		}
		var resp services.SubmitResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Submitted != 0 {
			t.Errorf("submit response = %+v, %v", resp, err)
		}
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}
