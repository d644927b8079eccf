package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/corebank/banking/shared/middleware"
	"github.com/gin-gonic/gin"
)

func newGatewayRouter(target string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	up := NewUpstream(target, time.Second, nil)
	r.POST("/api/bank/v1/account/current", up.Handle)
	r.GET("/api/bank/v1/transaction", up.Handle)
	return r
}

func TestUpstream_ForwardsRequestAndResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.URL.Path != "/api/bank/v1/account/current" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if string(body) != `{"customerId":1,"initialCredit":5}` {
			t.Errorf("unexpected body %s", body)
		}
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			t.Errorf("request id not forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"rolled back","code":"ACCOUNT_CREATION_ROLLED_BACK"}`))
	}))
	defer backend.Close()

	router := newGatewayRouter(backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/bank/v1/account/current", strings.NewReader(`{"customerId":1,"initialCredit":5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected upstream status 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ACCOUNT_CREATION_ROLLED_BACK") {
		t.Errorf("upstream body not forwarded: %s", w.Body.String())
	}
}

func TestUpstream_ForwardsQuery(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("accountId") != "4" {
			t.Errorf("query not forwarded: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	w := httptest.NewRecorder()
	newGatewayRouter(backend.URL).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bank/v1/transaction?accountId=4", nil))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("expected 200 [], got %d %s", w.Code, w.Body.String())
	}
}

func TestUpstream_Unreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	w := httptest.NewRecorder()
	newGatewayRouter(target).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bank/v1/transaction?accountId=4", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestUpstream_GatewayOwnsCORSHeaders(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer backend.Close()

	gateway := middleware.CORS([]string{"http://localhost:3000"})(newGatewayRouter(backend.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/bank/v1/transaction?accountId=1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	gateway.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Values("Access-Control-Allow-Origin"); len(got) != 1 || got[0] != "http://localhost:3000" {
		t.Errorf("expected exactly one allow-origin header, got %v", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/bank/v1/account/current", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	gateway.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected preflight 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allow-origin on preflight, got %q", got)
	}
}
