// Package model はドメインモデルを定義する。
package model

import "time"

// Party は政党を表す。
type Party struct {
	ID           string
	Name         string
	Abbreviation string // 任意。空文字列は未設定を表す
	Description  string
	ColorHex     string // #RRGGBB 形式。空文字列は未設定を表す
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
