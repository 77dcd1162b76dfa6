// Package model はドメインモデルを定義する。
package model

import "time"

// Politician は政治家を表す。
// (first_name, last_name, party_id) の組で一意。
type Politician struct {
	ID        string
	FirstName string
	LastName  string
	PartyID   string
	Biography string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PoliticianWithParty は政治家と所属政党の表示情報を結合したモデル。
// 一覧APIで politicians と parties をJOINして取得される。
type PoliticianWithParty struct {
	Politician
	PartyName         string
	PartyAbbreviation string
	PartyColorHex     string
}
