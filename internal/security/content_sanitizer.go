// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザー投稿の発言本文や経歴をサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 発言本文はプレーンテキストとして扱うため、bluemondayの
// StrictPolicyで全てのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストコンテンツのサニタイズ機能のインターフェースを定義する。
// 発言・経歴・プロフィールの保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力からHTMLタグを全て除去し、前後の空白を取り除いた
	// プレーンテキストを返す。
	// script, iframe, styleタグおよびon*イベント属性を含む全てのタグが除去される。
	// HTMLエンティティはデコードされる（&amp; → &）。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのHTML要素と属性を除去し、テキストノードのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyはテキストをエスケープして返すため、
// html.UnescapeStringで元のプレーンテキストに戻す。
// 例: "<b>重要</b>な発言" → "重要な発言"
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
