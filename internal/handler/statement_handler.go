package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/statement"
)

// StatementServiceInterface は発言ハンドラーが必要とするサービスインターフェース。
type StatementServiceInterface interface {
	List(ctx context.Context, params statement.ListParams) (*statement.ListResult, error)
	TimelineByPolitician(ctx context.Context, params statement.TimelineParams) (*statement.ListResult, error)
	Get(ctx context.Context, id string) (*model.Statement, error)
	Create(ctx context.Context, userID string, params statement.CreateParams) (*model.Statement, error)
	Update(ctx context.Context, userID, id string, params statement.UpdateParams) (*model.Statement, error)
	Delete(ctx context.Context, userID, id string) (*model.Statement, error)
}

// StatementHandler は発言記録のHTTPハンドラー。
type StatementHandler struct {
	service StatementServiceInterface
}

// NewStatementHandler はStatementHandlerを生成する。
func NewStatementHandler(service StatementServiceInterface) *StatementHandler {
	return &StatementHandler{service: service}
}

// createStatementRequest は発言作成リクエストのボディ。
type createStatementRequest struct {
	PoliticianID       string `json:"politician_id"`
	StatementText      string `json:"statement_text"`
	StatementTimestamp string `json:"statement_timestamp"`
}

// updateStatementRequest は発言更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type updateStatementRequest struct {
	StatementText      *string `json:"statement_text"`
	StatementTimestamp *string `json:"statement_timestamp"`
}

// statementResponse は発言のAPIレスポンス。
type statementResponse struct {
	ID                 string     `json:"id"`
	PoliticianID       string     `json:"politician_id"`
	StatementText      string     `json:"statement_text"`
	StatementTimestamp time.Time  `json:"statement_timestamp"`
	Summary            string     `json:"summary,omitempty"`
	SummaryFetchedAt   *time.Time `json:"summary_fetched_at,omitempty"`
	CreatedByUserID    string     `json:"created_by_user_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// toStatementResponse はドメインのStatementをAPIレスポンスに変換する。
func toStatementResponse(s *model.Statement) statementResponse {
	return statementResponse{
		ID:                 s.ID,
		PoliticianID:       s.PoliticianID,
		StatementText:      s.StatementText,
		StatementTimestamp: s.StatementTimestamp,
		Summary:            s.Summary,
		SummaryFetchedAt:   s.SummaryFetchedAt,
		CreatedByUserID:    s.CreatedByUserID,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// toStatementResponses は発言スライスをAPIレスポンスに変換する。
// nilスライスは空配列としてシリアライズされるようにする。
func toStatementResponses(statements []*model.Statement) []statementResponse {
	results := make([]statementResponse, len(statements))
	for i, s := range statements {
		results[i] = toStatementResponse(s)
	}
	return results
}

// queryInt はクエリパラメータを整数として読み取る。不正な値は0を返す。
func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

// List は発言一覧を返す。
// GET /api/statements
func (h *StatementHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.service.List(r.Context(), statement.ListParams{
		PoliticianID: q.Get("politician_id"),
		SortBy:       q.Get("sort_by"),
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

// Get は発言詳細を返す。
// GET /api/statements/:id
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	statementID := chi.URLParam(r, "id")

	s, err := h.service.Get(r.Context(), statementID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toStatementResponse(s))
}

// Create は発言の作成を処理する。
// POST /api/statements
func (h *StatementHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	var req createStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	s, err := h.service.Create(r.Context(), userID, statement.CreateParams{
		PoliticianID:       req.PoliticianID,
		StatementText:      req.StatementText,
		StatementTimestamp: req.StatementTimestamp,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, toStatementResponse(s))
}

// Update は発言の編集を処理する。投稿者本人が猶予期間内のみ実行できる。
// PATCH /api/statements/:id
func (h *StatementHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	statementID := chi.URLParam(r, "id")

	var req updateStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyError(w)
		return
	}

	s, err := h.service.Update(r.Context(), userID, statementID, statement.UpdateParams{
		StatementText:      req.StatementText,
		StatementTimestamp: req.StatementTimestamp,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, toStatementResponse(s))
}

// deletedStatementResponse は発言削除成功時のレスポンス。
type deletedStatementResponse struct {
	ID        string     `json:"id"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Delete は発言のソフトデリートを処理する。投稿者本人が猶予期間内のみ実行できる。
// DELETE /api/statements/:id
func (h *StatementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthRequiredError(w)
		return
	}

	statementID := chi.URLParam(r, "id")

	s, err := h.service.Delete(r.Context(), userID, statementID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, deletedStatementResponse{
		ID:        s.ID,
		DeletedAt: s.DeletedAt,
	})
}
