// Package politician は政治家管理のドメインロジックを提供する。
package politician

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/repository"
	"github.com/hitoshi/polilog/internal/security"
	"github.com/hitoshi/polilog/internal/validate"
)

// 氏名（姓・名それぞれ）の最大文字数。
const maxNameLen = 50

// 経歴の最大文字数。
const maxBiographyLen = 2000

// sortFields は政治家一覧で許可されるソートキー。
var sortFields = []string{"last_name", "first_name", "created_at"}

// defaultSortField は政治家一覧のデフォルトソートキー。
const defaultSortField = "last_name"

// ListParams は政治家一覧取得の入力。
// ページ番号・件数は正規化前の生の値を受け取る。
type ListParams struct {
	Search  string
	PartyID string
	SortBy  string
	Order   string
	Page    int
	Limit   int
}

// ListResult は政治家一覧とページネーション情報。
type ListResult struct {
	Politicians []*model.PoliticianWithParty
	Total       int
	Page        int
	Limit       int
}

// CreateParams は政治家登録の入力。
type CreateParams struct {
	FirstName string
	LastName  string
	PartyID   string
	Biography string
}

// Service は政治家管理のサービス層。
type Service struct {
	politicianRepo repository.PoliticianRepository
	partyRepo      repository.PartyRepository
	sanitizer      security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	politicianRepo repository.PoliticianRepository,
	partyRepo repository.PartyRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		politicianRepo: politicianRepo,
		partyRepo:      partyRepo,
		sanitizer:      sanitizer,
	}
}

// List は検索・絞り込み・ソート条件付きで政治家一覧を返す。
// 不正なソートキーやページ番号はデフォルト値に正規化される。
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.PartyID != "" && !validate.IsUUID(params.PartyID) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"party_id": "must be a valid UUID",
		})
	}

	page, limit := validate.Pagination(params.Page, params.Limit)
	sortBy := validate.SortField(params.SortBy, sortFields, defaultSortField)
	order := validate.SortOrder(params.Order)

	politicians, total, err := s.politicianRepo.List(ctx, repository.ListPoliticiansParams{
		Search:  s.sanitizer.Sanitize(params.Search),
		PartyID: params.PartyID,
		Sort:    sortBy,
		Order:   order,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("政治家一覧の取得に失敗しました: %w", err)
	}

	return &ListResult{
		Politicians: politicians,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}, nil
}

// Get は政治家を所属政党情報付きで取得する。
// 存在しない場合はNOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.PoliticianWithParty, error) {
	if !validate.IsUUID(id) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"id": "must be a valid UUID",
		})
	}

	politician, err := s.politicianRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("政治家の取得に失敗しました: %w", err)
	}
	if politician == nil {
		return nil, model.NewNotFoundError("Politician", id)
	}
	return politician, nil
}

// Create は新しい政治家を登録する。
// 指定された政党が存在しない場合はNOT_FOUND、
// 同一政党内に同姓同名が既に存在する場合はVALIDATION_ERRORを返す。
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Politician, error) {
	firstName := s.sanitizer.Sanitize(params.FirstName)
	lastName := s.sanitizer.Sanitize(params.LastName)
	biography := s.sanitizer.Sanitize(params.Biography)

	details := map[string]any{}
	if !validate.IsFilledString(firstName, maxNameLen) {
		details["first_name"] = fmt.Sprintf("is required and must be at most %d characters", maxNameLen)
	}
	if !validate.IsFilledString(lastName, maxNameLen) {
		details["last_name"] = fmt.Sprintf("is required and must be at most %d characters", maxNameLen)
	}
	if !validate.IsUUID(params.PartyID) {
		details["party_id"] = "must be a valid UUID"
	}
	if biography != "" && !validate.IsFilledString(biography, maxBiographyLen) {
		details["biography"] = fmt.Sprintf("must be at most %d characters", maxBiographyLen)
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("Validation failed.", details)
	}

	party, err := s.partyRepo.FindByID(ctx, params.PartyID)
	if err != nil {
		return nil, fmt.Errorf("政党の取得に失敗しました: %w", err)
	}
	if party == nil {
		return nil, model.NewNotFoundError("Party", params.PartyID)
	}

	existing, err := s.politicianRepo.FindByNameAndParty(ctx, firstName, lastName, params.PartyID)
	if err != nil {
		return nil, fmt.Errorf("政治家の重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"name": "a politician with this name already exists in this party",
		})
	}

	now := time.Now()
	politician := &model.Politician{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		PartyID:   params.PartyID,
		Biography: biography,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.politicianRepo.Create(ctx, politician); err != nil {
		return nil, fmt.Errorf("政治家の登録に失敗しました: %w", err)
	}

	return politician, nil
}
