package auth

import "strings"

// friendlyRule は生エラーメッセージの判定条件とユーザー向けメッセージの対。
// 認証プロバイダーのエラー文字列は契約ではないため、ここでの変換は
// UX向上のためのベストエフォートであり正当性の境界ではない。
type friendlyRule struct {
	match   func(lower string) bool
	message string
}

// genericErrorMessage は入力が空の場合のフォールバックメッセージ。
const genericErrorMessage = "An unexpected error occurred. Please try again."

// friendlyRules は先頭から順に評価され、最初にマッチしたルールが採用される。
var friendlyRules = []friendlyRule{
	{
		match:   anyOf("invalid login credentials", "invalid email or password"),
		message: "Invalid email or password. Please try again.",
	},
	{
		match:   anyOf("user already registered", "email already exists", "already been registered"),
		message: "An account with this email already exists. Please sign in instead.",
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "password") &&
				anyOf("weak", "short", "at least")(lower)
		},
		message: "Password must be at least 6 characters long.",
	},
	{
		match:   anyOf("invalid email"),
		message: "Please enter a valid email address.",
	},
	{
		match:   anyOf("rate limit", "too many requests"),
		message: "Too many attempts. Please wait a moment and try again.",
	},
	{
		match:   anyOf("email not confirmed", "confirm your email"),
		message: "Please check your email and confirm your account before signing in.",
	},
	{
		match:   anyOf("network", "fetch", "connection"),
		message: "Unable to connect. Please check your internet connection and try again.",
	},
}

// anyOf はいずれかの部分文字列を含むかを判定する述語を生成する。
func anyOf(substrs ...string) func(string) bool {
	return func(lower string) bool {
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// FriendlyMessage は認証エラーの生メッセージをユーザー向けメッセージに変換する。
// 大文字小文字を区別しない部分一致で、先頭のルールから順に評価する。
// どのルールにもマッチしない非空の入力はそのまま返す（パススルー）。
// 空の入力には汎用メッセージを返す。
func FriendlyMessage(raw string) string {
	if raw == "" {
		return genericErrorMessage
	}

	lower := strings.ToLower(raw)
	for _, rule := range friendlyRules {
		if rule.match(lower) {
			return rule.message
		}
	}

	return raw
}
