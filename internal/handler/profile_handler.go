package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Me(ctx context.Context, userID string) (*model.Profile, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) (*model.Profile, error)
	PublicByID(ctx context.Context, id string) (*profile.PublicProfile, error)
}

// ProfileHandler はプロフィールのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// publicProfileResponse は他ユーザーにも公開されるプロフィールのAPIレスポンス。
type publicProfileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Me は本人のプロフィールを返す。
// GET /api/profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	p, err := h.service.Me(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toProfileResponse(p))
}

// UpdateMe は本人の表示名を更新する。
// PATCH /api/profiles/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	p, err := h.service.UpdateDisplayName(r.Context(), userID, req.DisplayName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toProfileResponse(p))
}

// Public は公開プロフィールを返す。メールアドレス等は含まれない。
// GET /api/profiles/:id
func (h *ProfileHandler) Public(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	p, err := h.service.PublicByID(r.Context(), profileID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, publicProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	})
}
