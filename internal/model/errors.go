// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// レスポンスの error オブジェクトにそのまま変換される。
type APIError struct {
	Code    string         // エラーコード
	Message string         // ユーザー向けメッセージ
	Details map[string]any // 補足情報（フィールド名、理由など）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeAuthRequired       = "AUTHENTICATION_REQUIRED"
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeGracePeriodExpired = "GRACE_PERIOD_EXPIRED"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
// detailsには不正だったフィールド名と理由を格納する。
func NewValidationError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// NewAuthRequiredError は未認証エラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthRequired,
		Message: "Authentication is required. Please sign in.",
	}
}

// NewPermissionDeniedError は権限エラーを生成する。
func NewPermissionDeniedError(message string) *APIError {
	return &APIError{
		Code:    ErrCodePermissionDenied,
		Message: message,
	}
}

// NewGracePeriodExpiredError は猶予期間切れによる権限エラーを生成する。
// ステータスとコードは PERMISSION_DENIED のまま、details.reason で
// 猶予期間切れであることをクライアントに伝える。
func NewGracePeriodExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodePermissionDenied,
		Message: "The editing window for this statement has expired.",
		Details: map[string]any{"reason": ErrCodeGracePeriodExpired},
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found.", resource),
		Details: map[string]any{"id": id},
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: "Too many attempts. Please wait a moment and try again.",
	}
}

// NewInternalError は内部エラーを生成する。
// 内部の詳細はログのみに記録し、メッセージには含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred. Please try again.",
	}
}
