package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/observability"
	"github.com/yungbote/careerladder-backend/internal/platform/ctxutil"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger(t)
	auth := services.NewAuthService(log, "secret", "")
	want := identity.Actor{ID: uuid.New(), Role: identity.RoleStudent, CompanyID: uuid.New()}
	tok, err := auth.MintToken(want, time.Minute)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	r := gin.New()
	r.Use(NewAuthMiddleware(log, auth).RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		got, _ := ctxutil.ActorFrom(c.Request.Context())
		c.JSON(http.StatusOK, got)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"non-bearer scheme", "Token " + tok, http.StatusUnauthorized},
		{"valid", "bearer " + tok, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: status %d want %d", tc.name, rec.Code, tc.status)
		}
		if tc.status == http.StatusOK {
			var got identity.Actor
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got != want {
				t.Fatalf("actor not attached: %+v %v", got, err)
			}
		} else {
			var env response.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Error.Code != "unauthorized" {
				t.Fatalf("%s: unexpected envelope %s", tc.name, rec.Body.String())
			}
		}
	}
}

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if !l.Allow(ctx, "k", 2, time.Minute) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow(ctx, "k", 2, time.Minute) {
		t.Fatalf("third request in window should be limited")
	}
	if !l.Allow(ctx, "other", 2, time.Minute) {
		t.Fatalf("keys are independent")
	}
	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "k", 2, time.Minute) {
		t.Fatalf("new window should reset")
	}
	if _, ok := l.buckets["other"]; ok {
		t.Fatalf("expired bucket for an idle actor should be evicted")
	}
	if len(l.buckets) != 1 {
		t.Fatalf("expected only the active bucket, got %d", len(l.buckets))
	}
}

func TestRateLimitMutationsOnlyLimitsWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actor := identity.Actor{ID: uuid.New(), Role: identity.RoleStudent}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{Actor: actor})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(RateLimitMutations(NewMemoryLimiter(), nil, 1, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method string) int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/x", nil))
		return rec.Code
	}
	if do(http.MethodPost) != http.StatusOK {
		t.Fatalf("first write should pass")
	}
	if got := do(http.MethodPost); got != http.StatusTooManyRequests {
		t.Fatalf("second write should be limited, got %d", got)
	}
	if do(http.MethodGet) != http.StatusOK {
		t.Fatalf("reads are never limited")
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not propagated: %q", rec.Body.String())
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id should be minted")
	}
}

func TestAuthTagsTraceWithActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger(t)
	auth := services.NewAuthService(log, "secret", "")
	coach := identity.Actor{ID: uuid.New(), Role: identity.RoleCoach}
	tok, err := auth.MintToken(coach, time.Minute)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	r := gin.New()
	r.Use(AttachTraceContext(), NewAuthMiddleware(log, auth).RequireAuth())
	var seen ctxutil.TraceData
	r.GET("/api/threads/awaiting-review", func(c *gin.Context) {
		seen = *ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/threads/awaiting-review", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	if seen.ActorID != coach.ID || seen.Role != identity.RoleCoach || seen.RequestID == "" {
		t.Fatalf("trace data not tagged with the caller: %+v", seen)
	}
}

func TestMetricsSkipsHealthAndGroupsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("METRICS_ENABLED", "true")
	m := observability.Init(testLogger(t))
	if m == nil {
		t.Fatalf("metrics should be enabled")
	}
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	for _, path := range []string{"/healthcheck", "/no/such/route"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `route="/healthcheck"`) {
		t.Fatalf("healthcheck requests should not be recorded:\n%s", out)
	}
	if !strings.Contains(out, `cl_api_requests_total{method="GET",route="unmatched",status="404"} 1`) {
		t.Fatalf("unmatched route series missing:\n%s", out)
	}
}
