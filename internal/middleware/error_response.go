package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/polilog/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// すべてのエラーは {"error": {...}} のエンベロープで返される。
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail はエラーの内容。detailsはフィールド別のエラーや
// 補足情報（reason等）を持つ場合のみ出力される。
type ErrorDetail struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error: ErrorDetail{
			Message: apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		},
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// WriteAuthRequiredError は認証が必要なことを示す401レスポンスを書き込む。
func WriteAuthRequiredError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
}
