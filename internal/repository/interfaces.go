// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/polilog/internal/model"
)

// ProfileRepository はユーザープロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)

	// FindByEmail はメールアドレスでプロフィールを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)

	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// UpdateDisplayName は表示名を更新する。
	UpdateDisplayName(ctx context.Context, id, displayName string, updatedAt time.Time) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// PartyRepository は政党データの永続化インターフェース。
type PartyRepository interface {
	// FindByID は指定IDの政党を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Party, error)

	// FindByName は名称で政党を検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Party, error)

	// List は全政党を名称昇順で返す。
	List(ctx context.Context) ([]*model.Party, error)

	// Create は政党を作成する。
	Create(ctx context.Context, party *model.Party) error
}

// ListPoliticiansParams は政治家一覧の検索条件。
// SortとOrderは検証済みの値を渡すこと（SQLに直接展開されるため）。
type ListPoliticiansParams struct {
	Search  string // 姓または名の部分一致（空なら条件なし）
	PartyID string // 空なら全政党
	Sort    string // last_name | first_name | created_at
	Order   string // asc | desc
	Offset  int
	Limit   int
}

// PoliticianRepository は政治家データの永続化インターフェース。
type PoliticianRepository interface {
	// FindByID は指定IDの政治家を政党情報付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PoliticianWithParty, error)

	// FindByNameAndParty は氏名と政党の組で政治家を検索する。見つからない場合はnilを返す。
	FindByNameAndParty(ctx context.Context, firstName, lastName, partyID string) (*model.Politician, error)

	// List は検索条件に一致する政治家一覧と総件数を返す。
	List(ctx context.Context, params ListPoliticiansParams) ([]*model.PoliticianWithParty, int, error)

	// Create は政治家を作成する。
	Create(ctx context.Context, politician *model.Politician) error
}

// ListStatementsParams は発言一覧の検索条件。
// SortByとOrderは検証済みの値を渡すこと（SQLに直接展開されるため）。
type ListStatementsParams struct {
	PoliticianID string    // 空なら全政治家
	Since        time.Time // ゼロ値なら期間制限なし（statement_timestamp >= Since）
	SortBy       string    // statement_timestamp | created_at
	Order        string    // asc | desc
	Offset       int
	Limit        int
}

// StatementRepository は発言データの永続化インターフェース。
// 参照系メソッドは論理削除済みの行を除外する。
type StatementRepository interface {
	// FindByID は指定IDの発言を取得する。論理削除済みまたは未検出の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Statement, error)

	// FindByIDIncludingDeleted は論理削除済みを含めて指定IDの発言を取得する。
	// 変更系操作の所有権判定で使用する。見つからない場合はnilを返す。
	FindByIDIncludingDeleted(ctx context.Context, id string) (*model.Statement, error)

	// List は検索条件に一致する発言一覧と総件数を返す。
	List(ctx context.Context, params ListStatementsParams) ([]*model.Statement, int, error)

	// Create は発言を作成する。
	Create(ctx context.Context, statement *model.Statement) error

	// UpdateContent は発言の本文と発言日時を更新する。
	// politician_idと作成者は変更されない。
	UpdateContent(ctx context.Context, id, text string, statementTimestamp, updatedAt time.Time) error

	// SoftDelete は発言を論理削除する。冪等ではなく、対象が存在しない場合はエラーを返す。
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error

	// ListNeedingSummary は要約が未取得で本文がminChars文字以上の発言を
	// 作成日時の古い順に最大limit件返す。
	ListNeedingSummary(ctx context.Context, minChars, limit int) ([]*model.Statement, error)

	// UpdateSummary は発言の要約と取得日時を更新する。
	UpdateSummary(ctx context.Context, id, summary string, fetchedAt time.Time) error
}
