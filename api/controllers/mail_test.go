package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/northfiber/fiberops-backend/internal/mailer"
	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/pagination"
)

type stubMailService struct {
	lastInput  mailer.EnqueueInput
	lastParams pagination.Params
	page       *mailer.Page
	err        error
}

func (s *stubMailService) SendWelcome(ctx context.Context, input mailer.EnqueueInput) (*models.MailMessage, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.MailMessage{ID: uuid.New(), To: input.Recipients}, nil
}

func (s *stubMailService) ListRecent(ctx context.Context, params pagination.Params) (*mailer.Page, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	if s.page != nil {
		return s.page, nil
	}
	return &mailer.Page{}, nil
}

func TestMailSendWelcomeReturns202(t *testing.T) {
	id := uuid.New()
	svc := &stubMailService{}

	body := bytes.NewBufferString(`{"recipients":["harrison@example.com"]}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/customers/"+id.String()+"/welcome-email", body), "customerId", id.String())
	rec := httptest.NewRecorder()

	MailSendWelcome(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.CustomerID != id {
		t.Fatalf("expected customer %s, got %s", id, svc.lastInput.CustomerID)
	}
	if len(svc.lastInput.Recipients) != 1 {
		t.Fatalf("expected one recipient, got %v", svc.lastInput.Recipients)
	}
}

func TestMailSendWelcomeRequiresRecipients(t *testing.T) {
	id := uuid.New()
	svc := &stubMailService{}

	body := bytes.NewBufferString(`{"recipients":[]}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/customers/"+id.String()+"/welcome-email", body), "customerId", id.String())
	rec := httptest.NewRecorder()

	MailSendWelcome(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMailListForwardsCursorParams(t *testing.T) {
	svc := &stubMailService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mail?limit=25&cursor=abc123", nil)
	rec := httptest.NewRecorder()

	MailList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastParams.Limit != 25 {
		t.Fatalf("expected limit 25, got %d", svc.lastParams.Limit)
	}
	if svc.lastParams.Cursor != "abc123" {
		t.Fatalf("expected cursor passthrough, got %q", svc.lastParams.Cursor)
	}
}

func TestMailListClampsLimit(t *testing.T) {
	svc := &stubMailService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mail?limit=999", nil)
	rec := httptest.NewRecorder()

	MailList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range limit, got %d", rec.Code)
	}
}
