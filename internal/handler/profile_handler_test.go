package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/profile"
)

// --- モック定義 ---

// mockProfileService はProfileServiceInterfaceのモック実装。
type mockProfileService struct {
	meFn                func(ctx context.Context, userID string) (*model.Profile, error)
	updateDisplayNameFn func(ctx context.Context, userID, displayName string) (*model.Profile, error)
	publicByIDFn        func(ctx context.Context, id string) (*profile.PublicProfile, error)
}

func (m *mockProfileService) Me(ctx context.Context, userID string) (*model.Profile, error) {
	if m.meFn != nil {
		return m.meFn(ctx, userID)
	}
	return nil, model.NewNotFoundError("Profile", userID)
}

func (m *mockProfileService) UpdateDisplayName(ctx context.Context, userID, displayName string) (*model.Profile, error) {
	if m.updateDisplayNameFn != nil {
		return m.updateDisplayNameFn(ctx, userID, displayName)
	}
	return nil, nil
}

func (m *mockProfileService) PublicByID(ctx context.Context, id string) (*profile.PublicProfile, error) {
	if m.publicByIDFn != nil {
		return m.publicByIDFn(ctx, id)
	}
	return nil, model.NewNotFoundError("Profile", id)
}

// --- GET /api/profiles/me テスト ---

func TestProfileHandler_Me_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockProfileService{
		meFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			return testProfile(now), nil
		},
	}

	h := NewProfileHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/me", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["email"] != "hanako@example.com" {
		t.Errorf("email = %v", data["email"])
	}
}

func TestProfileHandler_Me_Unauthenticated(t *testing.T) {
	h := NewProfileHandler(&mockProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// --- PATCH /api/profiles/me テスト ---

func TestProfileHandler_UpdateMe_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockProfileService{
		updateDisplayNameFn: func(ctx context.Context, userID, displayName string) (*model.Profile, error) {
			if displayName != "新しい名前" {
				t.Errorf("displayName = %q", displayName)
			}
			p := testProfile(now)
			p.DisplayName = displayName
			return p, nil
		},
	}

	h := NewProfileHandler(svc)

	reqBody := `{"display_name":"新しい名前"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles/me", bytes.NewBufferString(reqBody))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.UpdateMe(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["display_name"] != "新しい名前" {
		t.Errorf("display_name = %v", data["display_name"])
	}
}

func TestProfileHandler_UpdateMe_ValidationError(t *testing.T) {
	svc := &mockProfileService{
		updateDisplayNameFn: func(ctx context.Context, userID, displayName string) (*model.Profile, error) {
			return nil, model.NewValidationError("Validation failed.", map[string]any{
				"display_name": "is required and must be at most 50 characters",
			})
		},
	}

	h := NewProfileHandler(svc)

	reqBody := `{"display_name":""}`
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles/me", bytes.NewBufferString(reqBody))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.UpdateMe(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// --- GET /api/profiles/:id テスト ---

func TestProfileHandler_Public_HidesPrivateFields(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockProfileService{
		publicByIDFn: func(ctx context.Context, id string) (*profile.PublicProfile, error) {
			return &profile.PublicProfile{
				ID:          id,
				DisplayName: "hanako",
				CreatedAt:   now,
			}, nil
		},
	}

	h := NewProfileHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/11111111-1111-4111-8111-111111111111", nil)
	req = withChiURLParam(req, "id", "11111111-1111-4111-8111-111111111111")
	w := httptest.NewRecorder()

	h.Public(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["display_name"] != "hanako" {
		t.Errorf("display_name = %v", data["display_name"])
	}
	// 公開プロフィールにメールアドレスと管理者フラグは含まれない
	if _, exists := data["email"]; exists {
		t.Error("public profile must not expose email")
	}
	if _, exists := data["is_admin"]; exists {
		t.Error("public profile must not expose is_admin")
	}
}

func TestProfileHandler_Public_NotFound(t *testing.T) {
	h := NewProfileHandler(&mockProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/99999999-9999-4999-8999-999999999999", nil)
	req = withChiURLParam(req, "id", "99999999-9999-4999-8999-999999999999")
	w := httptest.NewRecorder()

	h.Public(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
