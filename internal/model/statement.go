// Package model はドメインモデルを定義する。
package model

import "time"

// 発言本文の長さ制限（サニタイズ・トリム後の文字数）。
const (
	StatementTextMinLen = 10
	StatementTextMaxLen = 5000
)

// Statement は政治家の発言記録を表す。
// deleted_at による論理削除を採用し、参照系クエリは削除済み行を除外する。
// politician_id は作成後に変更できない。
type Statement struct {
	ID                 string
	PoliticianID       string
	StatementText      string
	StatementTimestamp time.Time // 発言日時。created_at以前であること
	Summary            string    // 外部要約APIによる要約。未取得は空文字列
	SummaryFetchedAt   *time.Time
	CreatedByUserID    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Deleted は論理削除済みかどうかを返す。
func (s *Statement) Deleted() bool {
	return s.DeletedAt != nil
}

// TimeRange は発言タイムラインの期間フィルタを表す。
type TimeRange string

const (
	// TimeRange7d は直近7日間のフィルタ。
	TimeRange7d TimeRange = "7d"
	// TimeRange30d は直近30日間のフィルタ。
	TimeRange30d TimeRange = "30d"
	// TimeRange365d は直近365日間のフィルタ。
	TimeRange365d TimeRange = "365d"
	// TimeRangeAll は全期間を表すフィルタ。
	TimeRangeAll TimeRange = "all"
)
