package properties

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/delsurprop/backoffice/pkg/logging"
)

func newTestServer() http.Handler {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())
	r := chi.NewRouter()
	r.Route("/properties", handler.Mount)
	return r
}

func createProperty(t *testing.T, h http.Handler, req CreateRequest) *Property {
	t.Helper()
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest(http.MethodPost, "/properties", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httpReq)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var prop Property
	if err := json.NewDecoder(rec.Body).Decode(&prop); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &prop
}

func TestPropertyCreateDefaults(t *testing.T) {
	h := newTestServer()
	prop := createProperty(t, h, CreateRequest{
		Title:       "PH en Palermo",
		Address:     "Gorriti 4800, CABA",
		OwnerID:     uuid.New(),
		Operation:   OperationSale,
		PriceAmount: 185000,
		Rooms:       3,
		AreaM2:      78.5,
	})
	if prop.Status != StatusDraft {
		t.Fatalf("new listing should start as draft, got %s", prop.Status)
	}
	if prop.PriceCurrency != "ARS" {
		t.Fatalf("expected default currency ARS, got %s", prop.PriceCurrency)
	}
}

func TestPropertyCreateValidation(t *testing.T) {
	h := newTestServer()
	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing title", CreateRequest{Operation: OperationSale}},
		{"bad operation", CreateRequest{Title: "Depto", Operation: "lease"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/properties", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestPropertyPublishAndFilter(t *testing.T) {
	h := newTestServer()
	prop := createProperty(t, h, CreateRequest{
		Title:     "Depto en Caballito",
		OwnerID:   uuid.New(),
		Operation: OperationRent,
	})
	createProperty(t, h, CreateRequest{
		Title:     "Casa en Lanús",
		OwnerID:   uuid.New(),
		Operation: OperationSale,
	})

	patch, _ := json.Marshal(map[string]any{"status": "published"})
	req := httptest.NewRequest(http.MethodPatch, "/properties/"+prop.ID.String(), bytes.NewReader(patch))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch failed: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/properties?status=published", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}
	var resp ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || resp.Properties[0].ID != prop.ID {
		t.Fatalf("expected only the published listing: %+v", resp)
	}
}

func TestPropertyUpdateInvalidStatus(t *testing.T) {
	h := newTestServer()
	prop := createProperty(t, h, CreateRequest{
		Title:     "Depto en Caballito",
		OwnerID:   uuid.New(),
		Operation: OperationRent,
	})

	patch, _ := json.Marshal(map[string]any{"status": "sold"})
	req := httptest.NewRequest(http.MethodPatch, "/properties/"+prop.ID.String(), bytes.NewReader(patch))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestPropertyDeleteNotFound(t *testing.T) {
	h := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/properties/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
