package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/party"
)

// PartyServiceInterface は政党ハンドラーが必要とするサービスインターフェース。
type PartyServiceInterface interface {
	List(ctx context.Context) ([]*model.Party, error)
	Get(ctx context.Context, id string) (*model.Party, error)
	Create(ctx context.Context, params party.CreateParams) (*model.Party, error)
}

// PartyHandler は政党管理のHTTPハンドラー。
type PartyHandler struct {
	service PartyServiceInterface
}

// NewPartyHandler はPartyHandlerを生成する。
func NewPartyHandler(service PartyServiceInterface) *PartyHandler {
	return &PartyHandler{service: service}
}

// createPartyRequest は政党登録リクエストのボディ。
type createPartyRequest struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Description  string `json:"description"`
	ColorHex     string `json:"color_hex"`
}

// partyResponse は政党のAPIレスポンス。
type partyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation,omitempty"`
	Description  string    `json:"description,omitempty"`
	ColorHex     string    `json:"color_hex,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// toPartyResponse はドメインのPartyをAPIレスポンスに変換する。
func toPartyResponse(p *model.Party) partyResponse {
	return partyResponse{
		ID:           p.ID,
		Name:         p.Name,
		Abbreviation: p.Abbreviation,
		Description:  p.Description,
		ColorHex:     p.ColorHex,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// List は全政党の一覧を返す。
// GET /api/parties
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]partyResponse, len(parties))
	for i, p := range parties {
		results[i] = toPartyResponse(p)
	}

	writeData(w, http.StatusOK, results)
}

// Get は政党詳細を返す。
// GET /api/parties/:id
func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), partyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toPartyResponse(p))
}

// Create は政党の登録を処理する。
// POST /api/parties
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	var req createPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	p, err := h.service.Create(r.Context(), party.CreateParams{
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		Description:  req.Description,
		ColorHex:     req.ColorHex,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, toPartyResponse(p))
}
