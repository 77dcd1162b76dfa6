package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hitoshi/polilog/internal/auth"
	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// SignUp は新規ユーザーを登録し、セッションを発行する。
	SignUp(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error)
	// SignIn は資格情報を検証し、セッションを発行する。
	SignIn(ctx context.Context, email, password string) (*model.Profile, *model.Session, error)
	// SignOut はセッションを破棄する。
	SignOut(ctx context.Context, token string) error
	// CurrentUser はセッショントークンから現在のユーザーを取得する。
	CurrentUser(ctx context.Context, token string) (*model.Profile, error)
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// signUpRequest は新規登録リクエストのボディ。
type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// signInRequest はログインリクエストのボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse は認証成功時のレスポンス。
type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      profileResponse `json:"user"`
}

// profileResponse は本人向けプロフィールのAPIレスポンス。
type profileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// toProfileResponse はドメインのProfileをAPIレスポンスに変換する。
func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		IsAdmin:     p.IsAdmin,
		CreatedAt:   p.CreatedAt,
	}
}

// SignUp は新規ユーザー登録を処理する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	profile, session, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeData(w, http.StatusCreated, sessionResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toProfileResponse(profile),
	})
}

// SignIn はログインを処理する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	profile, session, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeData(w, http.StatusOK, sessionResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toProfileResponse(profile),
	})
}

// SignOut はログアウトを処理する。
// トークンが無効な場合でも冪等に204を返す。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.WriteAuthRequiredError(w)
		return
	}

	if err := h.service.SignOut(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.WriteAuthRequiredError(w)
		return
	}

	profile, err := h.service.CurrentUser(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if profile == nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	writeData(w, http.StatusOK, toProfileResponse(profile))
}

// handleAuthError は認証フローの既知エラーをユーザー向けメッセージ付きの
// 統一エラーレスポンスに変換する。メッセージはFriendlyMessageで整形される。
func handleAuthError(w http.ResponseWriter, err error) {
	friendly := auth.FriendlyMessage(err.Error())

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
			Code:    model.ErrCodeAuthRequired,
			Message: friendly,
		})
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrCodeValidation,
			Message: friendly,
		})
	default:
		handleServiceError(w, err)
	}
}
