package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/albadia/villachat/internal/chat"
	"github.com/albadia/villachat/internal/evidence"
	"github.com/albadia/villachat/internal/lead"
	"github.com/albadia/villachat/internal/metrics"
)

type fakeChatService struct {
	processFn func(ctx context.Context, req *chat.Request) (*chat.Result, error)
}

func (f *fakeChatService) ProcessMessage(ctx context.Context, req *chat.Request) (*chat.Result, error) {
	return f.processFn(ctx, req)
}

type fakeEvidenceCounter struct {
	countFn func(ctx context.Context, class evidence.Class) (int, error)
}

func (f *fakeEvidenceCounter) Count(ctx context.Context, class evidence.Class) (int, error) {
	return f.countFn(ctx, class)
}

type fakeSweeper struct {
	sweepFn func() int
}

func (f *fakeSweeper) SweepExpired() int { return f.sweepFn() }

func testDeps() Deps {
	return Deps{
		Chat: &fakeChatService{
			processFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
				return &chat.Result{
					Response:  "Hello from Al Badia",
					SessionID: req.SessionID,
					LeadSignals: lead.Signals{
						Intent:            lead.LevelLow,
						RecommendedAction: "continue_conversation",
					},
				}, nil
			},
		},
		Evidence: &fakeEvidenceCounter{
			countFn: func(_ context.Context, _ evidence.Class) (int, error) { return 42, nil },
		},
		Sessions: &fakeSweeper{sweepFn: func() int { return 0 }},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %q", rec.Body.String())
	}
	typ, _ := errObj["type"].(string)
	return typ
}

func TestRootEndpoint(t *testing.T) {
	rec := doRequest(t, NewHandler(testDeps()), http.MethodGet, "/", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["name"] != "Real Estate RAG Chatbot API" {
		t.Errorf("name = %v", body["name"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("version = %v", body["version"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		rec := doRequest(t, NewHandler(testDeps()), http.MethodGet, "/health", "", nil)
		body := decodeBody(t, rec)
		if body["status"] != "healthy" || body["vectorstore_loaded"] != true {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("empty index", func(t *testing.T) {
		deps := testDeps()
		deps.Evidence = &fakeEvidenceCounter{
			countFn: func(_ context.Context, _ evidence.Class) (int, error) { return 0, nil },
		}
		rec := doRequest(t, NewHandler(deps), http.MethodGet, "/health", "", nil)
		body := decodeBody(t, rec)
		if body["vectorstore_loaded"] != false {
			t.Errorf("vectorstore_loaded = %v, want false", body["vectorstore_loaded"])
		}
	})
}

func TestChatEndpoint_OK(t *testing.T) {
	rec := doRequest(t, NewHandler(testDeps()), http.MethodPost, "/chat",
		`{"message":"hello","session_id":"s1"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["response"] != "Hello from Al Badia" {
		t.Errorf("response = %v", body["response"])
	}
	if body["session_id"] != "s1" {
		t.Errorf("session_id = %v", body["session_id"])
	}
}

func TestChatEndpoint_FallbackTurnCounted(t *testing.T) {
	deps := testDeps()
	deps.Chat = &fakeChatService{
		processFn: func(_ context.Context, req *chat.Request) (*chat.Result, error) {
			return &chat.Result{
				Response:  "canned reply",
				SessionID: req.SessionID,
				Fallback:  true,
			}, nil
		},
	}

	before := testutil.ToFloat64(metrics.TurnsTotal.WithLabelValues("fallback"))
	rec := doRequest(t, NewHandler(deps), http.MethodPost, "/chat",
		`{"message":"hello","session_id":"s1"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (fallback turns still succeed)", rec.Code)
	}
	after := testutil.ToFloat64(metrics.TurnsTotal.WithLabelValues("fallback"))
	if after != before+1 {
		t.Errorf("fallback turns counter = %v, want %v", after, before+1)
	}
}

func TestChatEndpoint_BadJSON(t *testing.T) {
	rec := doRequest(t, NewHandler(testDeps()), http.MethodPost, "/chat", `{not json`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if typ := errType(t, rec); typ != "invalid_request_error" {
		t.Errorf("error type = %q", typ)
	}
}

func TestChatEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", chat.ErrInvalidRequest, http.StatusBadRequest, "invalid_request_error"},
		{"index unavailable", evidence.ErrUnavailable, http.StatusServiceUnavailable, "api_error"},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError, "api_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := testDeps()
			deps.Chat = &fakeChatService{
				processFn: func(_ context.Context, _ *chat.Request) (*chat.Result, error) {
					return nil, tc.err
				},
			}
			rec := doRequest(t, NewHandler(deps), http.MethodPost, "/chat",
				`{"message":"hello","session_id":"s1"}`, nil)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if typ := errType(t, rec); typ != tc.wantType {
				t.Errorf("error type = %q, want %q", typ, tc.wantType)
			}
		})
	}
}

func TestChatEndpoint_UnavailableMessage(t *testing.T) {
	deps := testDeps()
	deps.Chat = &fakeChatService{
		processFn: func(_ context.Context, _ *chat.Request) (*chat.Result, error) {
			return nil, evidence.ErrUnavailable
		},
	}
	rec := doRequest(t, NewHandler(deps), http.MethodPost, "/chat",
		`{"message":"hello","session_id":"s1"}`, nil)

	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	want := "Service not ready. Please ensure data ingestion has been completed."
	if errObj["message"] != want {
		t.Errorf("message = %q, want %q", errObj["message"], want)
	}
}

func TestCleanupSessionsEndpoint(t *testing.T) {
	deps := testDeps()
	deps.Sessions = &fakeSweeper{sweepFn: func() int { return 3 }}

	rec := doRequest(t, NewHandler(deps), http.MethodPost, "/admin/cleanup-sessions", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["cleaned_up"] != float64(3) {
		t.Errorf("cleaned_up = %v, want 3", body["cleaned_up"])
	}
	if body["message"] != "Cleaned up 3 expired sessions" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestBearerAuth(t *testing.T) {
	deps := testDeps()
	deps.AdminToken = "s3cret"
	handler := NewHandler(deps)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/admin/cleanup-sessions", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if typ := errType(t, rec); typ != "authentication_error" {
			t.Errorf("error type = %q", typ)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		h := http.Header{}
		h.Set("Authorization", "Bearer nope")
		rec := doRequest(t, handler, http.MethodPost, "/admin/cleanup-sessions", "", h)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		h := http.Header{}
		h.Set("Authorization", "Bearer s3cret")
		rec := doRequest(t, handler, http.MethodPost, "/admin/cleanup-sessions", "", h)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
