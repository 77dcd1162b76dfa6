// Package authz は所有権と猶予期間に基づく変更可否の判定を提供する。
// 発言は作成者本人のみが、作成から一定時間内に限り編集・削除できる。
package authz

import "time"

// DefaultGracePeriod は作成後に編集・削除を許可するデフォルトの猶予期間。
const DefaultGracePeriod = 15 * time.Minute

// Decision は変更可否の判定結果を表す。
type Decision int

const (
	// Allowed は変更が許可されたことを示す。
	Allowed Decision = iota
	// DeniedUnauthenticated は操作ユーザーが未指定のため拒否されたことを示す。
	DeniedUnauthenticated
	// DeniedNotOwner は操作ユーザーが作成者でないため拒否されたことを示す。
	DeniedNotOwner
	// DeniedExpired は猶予期間を超過したため拒否されたことを示す。
	DeniedExpired
)

// Rule は猶予期間付き所有権チェックの判定器。
// nowを差し替えることでテスト時に時刻を固定できる。
type Rule struct {
	grace time.Duration
	now   func() time.Time
}

// NewRule は指定した猶予期間のRuleを生成する。
func NewRule(grace time.Duration) *Rule {
	return &Rule{grace: grace, now: time.Now}
}

// NewRuleWithClock は時刻取得関数を差し替えたRuleを生成する。テスト用。
func NewRuleWithClock(grace time.Duration, now func() time.Time) *Rule {
	return &Rule{grace: grace, now: now}
}

// Grace は設定されている猶予期間を返す。
func (r *Rule) Grace() time.Duration {
	return r.grace
}

// Check は変更可否を判定し、拒否の場合はその理由を返す。
// 判定順序: 未認証 → 所有権 → 経過時間。
// 経過時間の比較は境界値を含む（経過時間 == 猶予期間 は許可）。
// createdAtが未来の場合、経過時間は負になり許可される。これは
// クロックスキュー時の既知のエッジケースであり、意図した仕様ではない。
func (r *Rule) Check(ownerID, actorID string, createdAt time.Time) Decision {
	if actorID == "" {
		return DeniedUnauthenticated
	}
	if actorID != ownerID {
		return DeniedNotOwner
	}
	if r.now().Sub(createdAt) > r.grace {
		return DeniedExpired
	}
	return Allowed
}

// CanModify はCheckがAllowedを返すかどうかを返す。
func (r *Rule) CanModify(ownerID, actorID string, createdAt time.Time) bool {
	return r.Check(ownerID, actorID, createdAt) == Allowed
}
