package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/northfiber/fiberops-backend/internal/intake"
)

func TestIntakeExtractReturnsPrefill(t *testing.T) {
	payload := map[string]string{
		"text": "Service Order: 451208\nBill To:\nHarrison Mark\n1420 Pine St\nRochester IN 46975\n",
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/extract", bytes.NewReader(raw))
	rec := httptest.NewRecorder()

	IntakeExtract(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Prefill intake.Prefill `json:"prefill"`
			Address string         `json:"address"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Prefill.ServiceOrderNumber != "451208" {
		t.Fatalf("expected order number, got %q", envelope.Data.Prefill.ServiceOrderNumber)
	}
	if envelope.Data.Prefill.City != "Rochester" {
		t.Fatalf("expected city, got %q", envelope.Data.Prefill.City)
	}
}

func TestIntakeExtractRequiresText(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/extract", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	IntakeExtract(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
