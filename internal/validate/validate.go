// Package validate は入力検証のための純粋関数を提供する。
// すべての関数は副作用を持たず、不正な入力に対してもpanicしない。
// ハンドラー層で外部呼び出しの前に同期的に実行されることを想定している。
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ページネーションのデフォルト値と上限。
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// uuidPattern は正規形UUID（8-4-4-4-12の16進数）にマッチする。
// 大文字小文字は区別しない。URN形式や波括弧形式は受け付けない。
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// colorHexPattern は #RRGGBB 形式のカラーコードにマッチする。
var colorHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsUUID はsが正規形UUIDかどうかを返す。
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// IsColorHex はsが #RRGGBB 形式のカラーコードかどうかを返す。
func IsColorHex(s string) bool {
	return colorHexPattern.MatchString(s)
}

// Pagination はページ番号と件数を安全な範囲に正規化して返す。
// page < 1 は1に、limit == 0 はDefaultPageSizeに置き換え、
// limitは [1, MaxPageSize] にクランプする。エラーは返さない。
func Pagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// TimeRange はrが有効な期間フィルタ（7d/30d/365d/all）であればそのまま、
// それ以外は "all" を返す。
func TimeRange(r string) string {
	switch r {
	case "7d", "30d", "365d", "all":
		return r
	default:
		return "all"
	}
}

// TimeRangeDuration は期間フィルタに対応する遡及幅を返す。
// "all"（および無効値）は期間制限なしを表し、okはfalseになる。
func TimeRangeDuration(r string) (time.Duration, bool) {
	switch r {
	case "7d":
		return 7 * 24 * time.Hour, true
	case "30d":
		return 30 * 24 * time.Hour, true
	case "365d":
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// SortField はfieldがallowedに含まれていればそのまま、
// 含まれていなければdefaultValを返す。
func SortField(field string, allowed []string, defaultVal string) string {
	for _, a := range allowed {
		if field == a {
			return field
		}
	}
	return defaultVal
}

// SortOrder はorderが "asc" または "desc" であればそのまま、
// それ以外は "desc" を返す。
func SortOrder(order string) string {
	if order == "asc" || order == "desc" {
		return order
	}
	return "desc"
}

// IsISOTime はsが時刻成分を含むISO-8601（RFC3339）文字列かどうかを返す。
// パース結果を再シリアライズした文字列が入力と一致することを要求する
// ラウンドトリップ検証を行うため、"2024-01-15" のような日付のみの入力や
// 正規化で形が変わる入力は拒否される。ミリ秒3桁表記は許容する。
func IsISOTime(s string) bool {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return false
	}
	if s == t.Format(time.RFC3339) {
		return true
	}
	// JavaScriptのtoISOString形式（ミリ秒3桁固定）もラウンドトリップとみなす
	return s == t.Format("2006-01-02T15:04:05.000Z07:00")
}

// IsFilledString はsがトリム後に空でなく、かつ（maxLen > 0 の場合）
// トリム後の文字数がmaxLen以下かどうかを返す。文字数はルーン数で数える。
func IsFilledString(s string, maxLen int) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return false
	}
	return true
}
