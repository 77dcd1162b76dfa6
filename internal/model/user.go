// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はサービス利用ユーザーを表す。
// 認証情報（email/password_hash）と公開プロフィールを1テーブルで保持する。
type Profile struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはBearerトークンとしてそのままクライアントに渡される不透明トークン。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
