package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpmiddleware "github.com/delsurprop/backoffice/internal/http/middleware"
	"github.com/delsurprop/backoffice/internal/leads"
	"github.com/delsurprop/backoffice/internal/properties"
	"github.com/delsurprop/backoffice/internal/scheduling"
	"github.com/delsurprop/backoffice/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	loc, err := time.LoadLocation(scheduling.DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	scheduler := scheduling.NewScheduler(
		scheduling.NewMemoryStore(nil),
		scheduling.NewStaticDirectory(),
		scheduling.NewBusinessHours(loc, nil),
		logger,
	)

	cfg := &Config{
		Logger:            logger,
		SchedulingHandler: scheduling.NewHandler(scheduler, logger),
		PropertiesHandler: properties.NewHandler(properties.NewInMemoryRepository(), logger),
		LeadsHandler:      leads.NewHandler(leads.NewInMemoryRepository(), nil, logger),
		LeadRateLimiter:   httpmiddleware.RateLimit(100, 100),
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterPublicLeadEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{
		"name":  "Marta Quiroga",
		"email": "marta@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterMountsBackofficeRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("properties list should be mounted, got %d", rr.Code)
	}

	// Unconfigured groups are simply absent.
	req = httptest.NewRequest(http.MethodGet, "/api/owners", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unmounted owners, got %d", rr.Code)
	}
}
