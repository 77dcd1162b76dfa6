package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/polilog/internal/auth"
	"github.com/hitoshi/polilog/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	signUpFn      func(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error)
	signInFn      func(ctx context.Context, email, password string) (*model.Profile, *model.Session, error)
	signOutFn     func(ctx context.Context, token string) error
	currentUserFn func(ctx context.Context, token string) (*model.Profile, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, displayName)
	}
	return nil, nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Profile, *model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, token string) (*model.Profile, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return nil, nil
}

func testProfile(now time.Time) *model.Profile {
	return &model.Profile{
		ID:          "11111111-1111-4111-8111-111111111111",
		Email:       "hanako@example.com",
		DisplayName: "hanako",
		IsAdmin:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testSession(now time.Time) *model.Session {
	return &model.Session{
		ID:        "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		UserID:    "11111111-1111-4111-8111-111111111111",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
}

// --- POST /auth/signup テスト ---

func TestAuthHandler_SignUp_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error) {
			if email != "hanako@example.com" {
				t.Errorf("email = %q", email)
			}
			if displayName != "hanako" {
				t.Errorf("displayName = %q", displayName)
			}
			return testProfile(now), testSession(now), nil
		},
	}

	h := NewAuthHandler(svc)

	reqBody := `{"email":"hanako@example.com","password":"secret-pass","display_name":"hanako"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object: %v", body)
	}
	if data["token"] == "" {
		t.Error("token should be present")
	}
	user, ok := data["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object: %v", data)
	}
	if user["email"] != "hanako@example.com" {
		t.Errorf("user.email = %v", user["email"])
	}
	if user["is_admin"] != false {
		t.Errorf("user.is_admin = %v, want false", user["is_admin"])
	}
}

func TestAuthHandler_SignUp_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error) {
			return nil, nil, auth.ErrUserExists
		},
	}

	h := NewAuthHandler(svc)

	reqBody := `{"email":"hanako@example.com","password":"secret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errObj := errorFromBody(t, w)
	if errObj["code"] != model.ErrCodeValidation {
		t.Errorf("code = %v, want %s", errObj["code"], model.ErrCodeValidation)
	}
	want := "An account with this email already exists. Please sign in instead."
	if errObj["message"] != want {
		t.Errorf("message = %v, want %q", errObj["message"], want)
	}
}

func TestAuthHandler_SignUp_WeakPassword(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error) {
			return nil, nil, auth.ErrWeakPassword
		},
	}

	h := NewAuthHandler(svc)

	reqBody := `{"email":"hanako@example.com","password":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errObj := errorFromBody(t, w)
	want := "Password must be at least 6 characters long."
	if errObj["message"] != want {
		t.Errorf("message = %v, want %q", errObj["message"], want)
	}
}

func TestAuthHandler_SignUp_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{broken`))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// --- POST /auth/signin テスト ---

func TestAuthHandler_SignIn_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*model.Profile, *model.Session, error) {
			return testProfile(now), testSession(now), nil
		},
	}

	h := NewAuthHandler(svc)

	reqBody := `{"email":"hanako@example.com","password":"secret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()

	h.SignIn(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*model.Profile, *model.Session, error) {
			return nil, nil, auth.ErrInvalidCredentials
		},
	}

	h := NewAuthHandler(svc)

	reqBody := `{"email":"hanako@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()

	h.SignIn(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	errObj := errorFromBody(t, w)
	if errObj["code"] != model.ErrCodeAuthRequired {
		t.Errorf("code = %v, want %s", errObj["code"], model.ErrCodeAuthRequired)
	}
	want := "Invalid email or password. Please try again."
	if errObj["message"] != want {
		t.Errorf("message = %v, want %q", errObj["message"], want)
	}
}

// --- POST /auth/signout テスト ---

func TestAuthHandler_SignOut_Success(t *testing.T) {
	called := false
	svc := &mockAuthService{
		signOutFn: func(ctx context.Context, token string) error {
			called = true
			if token != "token-abc" {
				t.Errorf("token = %q", token)
			}
			return nil
		},
	}

	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()

	h.SignOut(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !called {
		t.Error("service SignOut should be called")
	}
}

func TestAuthHandler_SignOut_NoToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	w := httptest.NewRecorder()

	h.SignOut(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// --- GET /auth/me テスト ---

func TestAuthHandler_Me_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, token string) (*model.Profile, error) {
			return testProfile(now), nil
		},
	}

	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["display_name"] != "hanako" {
		t.Errorf("display_name = %v", data["display_name"])
	}
}

func TestAuthHandler_Me_InvalidToken(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, token string) (*model.Profile, error) {
			return nil, nil
		},
	}

	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
