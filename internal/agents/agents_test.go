package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/delsurprop/backoffice/pkg/logging"
)

func TestAgentLifecycle(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())
	r := chi.NewRouter()
	r.Route("/agents", handler.Mount)

	body, _ := json.Marshal(CreateRequest{
		Name:          "Julián Paredes",
		Email:         "julian@delsurprop.com.ar",
		LicenseNumber: "CUCICBA 1234",
	})
	req := httptest.NewRequest(http.MethodPost, "/agents", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var agent Agent
	if err := json.NewDecoder(rec.Body).Decode(&agent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if agent.LicenseNumber != "CUCICBA 1234" {
		t.Fatalf("unexpected agent: %+v", agent)
	}

	req = httptest.NewRequest(http.MethodGet, "/agents/"+agent.ID.String(), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d", rec.Code)
	}
}

func TestAgentValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.Create(context.Background(), &CreateRequest{Email: "x@example.com"}); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := repo.Delete(context.Background(), uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
