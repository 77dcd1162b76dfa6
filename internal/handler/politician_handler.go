package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/politician"
	"github.com/hitoshi/polilog/internal/statement"
)

// PoliticianServiceInterface は政治家ハンドラーが必要とするサービスインターフェース。
type PoliticianServiceInterface interface {
	List(ctx context.Context, params politician.ListParams) (*politician.ListResult, error)
	Get(ctx context.Context, id string) (*model.PoliticianWithParty, error)
	Create(ctx context.Context, params politician.CreateParams) (*model.Politician, error)
}

// PoliticianHandler は政治家管理のHTTPハンドラー。
type PoliticianHandler struct {
	service          PoliticianServiceInterface
	statementService StatementServiceInterface
}

// NewPoliticianHandler はPoliticianHandlerを生成する。
func NewPoliticianHandler(service PoliticianServiceInterface, statementService StatementServiceInterface) *PoliticianHandler {
	return &PoliticianHandler{
		service:          service,
		statementService: statementService,
	}
}

// createPoliticianRequest は政治家登録リクエストのボディ。
type createPoliticianRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PartyID   string `json:"party_id"`
	Biography string `json:"biography"`
}

// politicianResponse は政治家のAPIレスポンス。所属政党情報を含む。
type politicianResponse struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PartyID           string    `json:"party_id"`
	PartyName         string    `json:"party_name,omitempty"`
	PartyAbbreviation string    `json:"party_abbreviation,omitempty"`
	PartyColorHex     string    `json:"party_color_hex,omitempty"`
	Biography         string    `json:"biography,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// toPoliticianResponse はPoliticianWithPartyをAPIレスポンスに変換する。
func toPoliticianResponse(p *model.PoliticianWithParty) politicianResponse {
	return politicianResponse{
		ID:                p.ID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		PartyID:           p.PartyID,
		PartyName:         p.PartyName,
		PartyAbbreviation: p.PartyAbbreviation,
		PartyColorHex:     p.PartyColorHex,
		Biography:         p.Biography,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// List は政治家一覧を返す。検索・政党絞り込み・ソートに対応する。
// GET /api/politicians
func (h *PoliticianHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.service.List(r.Context(), politician.ListParams{
		Search:  q.Get("search"),
		PartyID: q.Get("party_id"),
		SortBy:  q.Get("sort_by"),
		Order:   q.Get("order"),
		Page:    queryInt(r, "page"),
		Limit:   queryInt(r, "limit"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]politicianResponse, len(result.Politicians))
	for i, p := range result.Politicians {
		results[i] = toPoliticianResponse(p)
	}

	writeList(w, results, result.Page, result.Limit, result.Total)
}

// Get は政治家詳細を返す。
// GET /api/politicians/:id
func (h *PoliticianHandler) Get(w http.ResponseWriter, r *http.Request) {
	politicianID := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), politicianID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toPoliticianResponse(p))
}

// Timeline は政治家の発言タイムラインを返す。期間フィルタに対応する。
// GET /api/politicians/:id/statements
func (h *PoliticianHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	politicianID := chi.URLParam(r, "id")
	q := r.URL.Query()

	result, err := h.statementService.TimelineByPolitician(r.Context(), statement.TimelineParams{
		PoliticianID: politicianID,
		Range:        q.Get("range"),
		Order:        q.Get("order"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeList(w, toStatementResponses(result.Statements), result.Page, result.Limit, result.Total)
}

// Create は政治家の登録を処理する。
// POST /api/politicians
func (h *PoliticianHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	var req createPoliticianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	p, err := h.service.Create(r.Context(), politician.CreateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PartyID:   req.PartyID,
		Biography: req.Biography,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, politicianResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		PartyID:   p.PartyID,
		Biography: p.Biography,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}
