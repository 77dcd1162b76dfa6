// Package handler はHTTP APIハンドラーを提供する。
//
// すべてのレスポンスは統一エンベロープに従う。
// 成功は {"data": ...}（一覧は "pagination" 付き）、
// エラーは {"error": {"message", "code", "details"?}} の形式で返す。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/hitoshi/polilog/internal/middleware"
	"github.com/hitoshi/polilog/internal/model"
)

// dataResponse は単一リソースの成功レスポンス。
type dataResponse struct {
	Data any `json:"data"`
}

// listResponse は一覧の成功レスポンス。ページネーション情報を含む。
type listResponse struct {
	Data       any            `json:"data"`
	Pagination paginationInfo `json:"pagination"`
}

// paginationInfo は一覧レスポンスのページネーション情報。
type paginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// writeData は成功レスポンスを書き込む。
func writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

// writeList はページネーション付きの一覧レスポンスを書き込む。
// total_pagesはtotal/limitの切り上げで、totalが0の場合は0になる。
func writeList(w http.ResponseWriter, data any, page, limit, total int) {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(listResponse{
		Data: data,
		Pagination: paginationInfo{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// statusForCode はAPIエラーコードをHTTPステータスコードに対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層のエラーを統一エラーレスポンスに変換する。
// APIError以外のエラーは内部エラーとしてログに記録し、
// 詳細を隠した500レスポンスを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, statusForCode(apiErr.Code), apiErr)
		return
	}

	slog.Error("unexpected service error",
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// writeInvalidBodyError はリクエストボディのパース失敗を400で返す。
func writeInvalidBodyError(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(
		"Request body must be valid JSON.", nil,
	))
}
