package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/service"
)

type mockKidRepo struct {
	byID    map[string]domain.Kid
	byEmail map[string]string
}

func newMockKidRepo() *mockKidRepo {
	return &mockKidRepo{
		byID:    make(map[string]domain.Kid),
		byEmail: make(map[string]string),
	}
}

func (m *mockKidRepo) Create(_ context.Context, kid domain.Kid) error {
	m.byID[kid.ID] = kid
	if kid.ParentEmail != "" {
		m.byEmail[kid.ParentEmail] = kid.ID
	}
	return nil
}

func (m *mockKidRepo) GetByID(_ context.Context, id string) (domain.Kid, error) {
	kid, ok := m.byID[id]
	if !ok {
		return domain.Kid{}, pgx.ErrNoRows
	}
	return kid, nil
}

func (m *mockKidRepo) GetByParentEmail(_ context.Context, parentEmail string) (domain.Kid, error) {
	id, ok := m.byEmail[parentEmail]
	if !ok {
		return domain.Kid{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockKidRepo) SaveOTP(_ context.Context, id, otpHash string, expiresAt sql.NullTime) error {
	kid, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	kid.OtpCodeHash = otpHash
	if expiresAt.Valid {
		t := expiresAt.Time
		kid.OtpExpiresAt = &t
	}
	m.byID[id] = kid
	return nil
}

func (m *mockKidRepo) MarkParentVerified(_ context.Context, id string) error {
	kid, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	kid.ParentVerifiedAt = &now
	kid.OtpCodeHash = ""
	kid.OtpExpiresAt = nil
	m.byID[id] = kid
	return nil
}

func (m *mockKidRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type mockEmailSender struct {
	lastTo   string
	lastCode string
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, _ time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	return nil
}

func (m *mockEmailSender) SendSafetyAlert(_ context.Context, _ string, _ string, _ domain.SafetyFlag) error {
	return nil
}

func newKidRouter(t *testing.T) (*gin.Engine, *mockKidRepo, *mockEmailSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMockKidRepo()
	sender := &mockEmailSender{}
	kidSvc := service.NewKidService(zap.NewNop(), repo, nil, sender, nil)
	jwtSvc := service.NewJWTService("secret", 15*time.Minute, 30*time.Minute)
	h := NewKidHandler(zap.NewNop(), kidSvc, jwtSvc)

	r := gin.New()
	r.POST("/kids", h.CreateKid)
	r.POST("/auth/otp/request", h.RequestOTP)
	r.POST("/auth/otp/verify", h.VerifyOTP)
	return r, repo, sender
}

func TestCreateKidHandler(t *testing.T) {
	r, repo, _ := newKidRouter(t)

	body := bytes.NewBufferString(`{"name":"Mila","age":8,"parent_email":"parent@example.com","parent_pin":"4321"}`)
	req := httptest.NewRequest(http.MethodPost, "/kids", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Kid    domain.Kid        `json:"kid"`
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Kid.Name != "Mila" || resp.Tokens.AccessToken == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, err := repo.GetByParentEmail(context.Background(), "parent@example.com"); err != nil {
		t.Fatalf("expected kid stored, got %v", err)
	}
}

func TestCreateKidHandlerRejectsBadBody(t *testing.T) {
	r, _, _ := newKidRouter(t)

	body := bytes.NewBufferString(`{"name":"Mila"}`)
	req := httptest.NewRequest(http.MethodPost, "/kids", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOTPHandlersRoundTrip(t *testing.T) {
	r, repo, sender := newKidRouter(t)

	kid := domain.Kid{ID: "kid-1", Name: "Mila", ParentEmail: "parent@example.com", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), kid); err != nil {
		t.Fatalf("seed kid: %v", err)
	}

	body := bytes.NewBufferString(`{"kid_id":"kid-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/otp/request", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sender.lastCode == "" {
		t.Fatalf("expected otp code sent")
	}

	body = bytes.NewBufferString(`{"kid_id":"kid-1","code":"` + sender.lastCode + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/auth/otp/verify", body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Kid    domain.Kid        `json:"kid"`
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Kid.ParentVerifiedAt == nil {
		t.Fatalf("expected verified parent in response")
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatalf("expected tokens after verification")
	}
}

func TestOTPRequestUnknownKid(t *testing.T) {
	r, _, _ := newKidRouter(t)

	body := bytes.NewBufferString(`{"kid_id":"ghost"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/otp/request", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
