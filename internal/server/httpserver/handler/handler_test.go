package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/storage/memory"
)

type testEnv struct {
	handler *Handler
	guard   *service.GuardService
	store   *memory.Store
	now     time.Time
}

func newTestEnv(t *testing.T, ready func(context.Context) error) *testEnv {
	t.Helper()

	env := &testEnv{store: memory.New(), now: time.Unix(1_700_000_000, 0)}
	guard, err := service.NewGuardService(env.store, &service.GuardConfig{
		Secret: []byte("handler-test-secret"),
		TTL:    time.Minute,
	}, service.WithClock(func() time.Time { return env.now }))
	if err != nil {
		t.Fatalf("NewGuardService() error = %v", err)
	}
	env.guard = guard

	env.handler = New(Config{
		Guard:   guard,
		Units:   service.NewUnitService(memory.NewUnitStore("tablet", "capsule")),
		Ready:   ready,
		Backend: "memory",
	})
	return env
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandleIssueToken(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/csrf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var body IssueTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.CSRFToken, domain.TokenPrefix) {
		t.Errorf("csrfToken = %q, want prefix %q", body.CSRFToken, domain.TokenPrefix)
	}
	if want := env.now.Add(time.Minute).UnixMilli(); body.ExpiresAt != want {
		t.Errorf("expires_at = %d, want %d", body.ExpiresAt, want)
	}

	if err := env.guard.Consume(context.Background(), body.CSRFToken); err != nil {
		t.Errorf("issued token did not consume: %v", err)
	}
}

func TestHandleVerifyToken(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/csrf/verify", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("success = false")
	}
	data, _ := resp.Data.(map[string]any)
	if data["valid"] != true {
		t.Errorf("data = %v, want valid=true", resp.Data)
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleReady(t *testing.T) {
	tests := []struct {
		name   string
		ready  func(context.Context) error
		status int
	}{
		{"no check", nil, http.StatusOK},
		{"store up", func(context.Context) error { return nil }, http.StatusOK},
		{"store down", func(context.Context) error { return errors.New("dial tcp: refused") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.ready)
			rec := env.do(http.MethodGet, "/ready", "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if strings.Contains(rec.Body.String(), "refused") {
				t.Errorf("body leaks store error: %s", rec.Body.String())
			}
		})
	}
}

func TestHandleListUnits(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/admin/unit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Data    []*domain.Unit `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Data) != 2 {
		t.Fatalf("resp = %+v, want 2 units", resp)
	}
	if resp.Data[0].UnitType != "tablet" || resp.Data[1].UnitType != "capsule" {
		t.Errorf("units = %+v", resp.Data)
	}
}

func TestHandleListUnits_Empty(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.units = service.NewUnitService(memory.NewUnitStore())

	rec := env.do(http.MethodGet, "/api/admin/unit", "")
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestHandleCreateUnit(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"created", `{"unit_type":"bottle"}`, http.StatusOK, ""},
		{"duplicate", `{"unit_type":"tablet"}`, http.StatusBadRequest, domain.ErrUnitConflict.Code},
		{"blank", `{"unit_type":"   "}`, http.StatusBadRequest, domain.ErrMissingArgument.Code},
		{"malformed", `{"unit_type":`, http.StatusBadRequest, domain.ErrBadRequest.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(http.MethodPost, "/api/admin/unit", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if tt.code == "" && !resp.Success {
				t.Error("success = false")
			}
		})
	}
}

func TestHandleUpdateUnit(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"renamed", `{"unit_id":1,"unit_type":"tab"}`, http.StatusOK, ""},
		{"not found", `{"unit_id":99,"unit_type":"tab"}`, http.StatusNotFound, domain.ErrUnitNotFound.Code},
		{"taken", `{"unit_id":1,"unit_type":"capsule"}`, http.StatusBadRequest, domain.ErrUnitConflict.Code},
		{"bad id", `{"unit_id":0,"unit_type":"tab"}`, http.StatusBadRequest, domain.ErrInvalidArgument.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(http.MethodPut, "/api/admin/unit", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if resp := decodeResponse(t, rec); resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}

func TestHandleDeleteUnit(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"deleted", "?unit_id=2", http.StatusOK, ""},
		{"missing id", "", http.StatusBadRequest, domain.ErrMissingArgument.Code},
		{"non-numeric", "?unit_id=abc", http.StatusBadRequest, domain.ErrInvalidArgument.Code},
		{"not found", "?unit_id=42", http.StatusNotFound, domain.ErrUnitNotFound.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(http.MethodDelete, "/api/admin/unit"+tt.query, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if tt.code == "" && resp.Message != "Unit deleted successfully" {
				t.Errorf("message = %q", resp.Message)
			}
		})
	}
}

func TestHandleAdminStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/csrf", "")
	env.do(http.MethodGet, "/csrf", "")

	rec := env.do(http.MethodGet, "/admin/v1/status/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data StatusSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.OutstandingTokens != 2 {
		t.Errorf("outstanding_tokens = %d, want 2", resp.Data.OutstandingTokens)
	}
	if resp.Data.TokenTTLSeconds != 60 {
		t.Errorf("token_ttl_seconds = %d, want 60", resp.Data.TokenTTLSeconds)
	}
	if resp.Data.StorageBackend != "memory" {
		t.Errorf("storage_backend = %q", resp.Data.StorageBackend)
	}
	if resp.Data.InstanceID != env.handler.InstanceID() {
		t.Errorf("instance_id = %q, want %q", resp.Data.InstanceID, env.handler.InstanceID())
	}
}

func TestHandleGCTrigger(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/csrf", "")
	env.now = env.now.Add(2 * time.Minute)
	env.do(http.MethodGet, "/csrf", "")

	rec := env.do(http.MethodPost, "/admin/v1/gc/trigger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data GCResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ExpiredCount != 1 {
		t.Errorf("expired_count = %d, want 1", resp.Data.ExpiredCount)
	}
	if env.store.Len() != 1 {
		t.Errorf("store len = %d, want 1", env.store.Len())
	}
}

func TestHandleServiceError_HidesInternalDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	env.handler.handleServiceError(rec, req, domain.ErrStorageError.WithCause(errors.New("redis: connection refused")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "redis") {
		t.Errorf("body leaks cause: %s", rec.Body.String())
	}
	if resp := decodeResponse(t, rec); resp.Code != domain.ErrStorageError.Code {
		t.Errorf("code = %q, want %q", resp.Code, domain.ErrStorageError.Code)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.ErrBadRequest.Code, http.StatusBadRequest},
		{domain.ErrMissingArgument.Code, http.StatusBadRequest},
		{domain.ErrTokenRejected.Code, http.StatusForbidden},
		{domain.ErrIPNotAllowed.Code, http.StatusForbidden},
		{domain.ErrUnitNotFound.Code, http.StatusNotFound},
		{domain.ErrUnitConflict.Code, http.StatusBadRequest},
		{domain.ErrRateLimited.Code, http.StatusTooManyRequests},
		{domain.ErrStorageError.Code, http.StatusInternalServerError},
		{domain.ErrServiceUnavailable.Code, http.StatusServiceUnavailable},
		{"CG-X-1000", http.StatusInternalServerError},
		{"bogus", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
