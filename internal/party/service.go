// Package party は政党管理のドメインロジックを提供する。
package party

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

// 政党名の最大文字数。
const maxNameLen = 100

// 略称の最大文字数。
const maxAbbreviationLen = 20

// CreateParams は政党作成の入力。
type CreateParams struct {
	Name         string
	Abbreviation string
	Description  string
	ColorHex     string
}

// Service は政党管理のサービス層。
// 政党一覧取得、個別取得、作成のビジネスロジックを提供する。
type Service struct {
	partyRepo repository.PartyRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(partyRepo repository.PartyRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		partyRepo: partyRepo,
		sanitizer: sanitizer,
	}
}

// List は全政党を名前順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Party, error) {
	parties, err := s.partyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("政党一覧の取得に失敗しました: %w", err)
	}
	return parties, nil
}

// Get は政党をIDで取得する。存在しない場合はNOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Party, error) {
	if !validate.IsUUID(id) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"id": "must be a valid UUID",
		})
	}

	party, err := s.partyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("政党の取得に失敗しました: %w", err)
	}
	if party == nil {
		return nil, model.NewNotFoundError("Party", id)
	}
	return party, nil
}

// Create は新しい政党を登録する。
// 政党名は必須かつ一意で、色はHex形式（#RRGGBB）のみ許可される。
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Party, error) {
	name := s.sanitizer.Sanitize(params.Name)
	abbreviation := s.sanitizer.Sanitize(params.Abbreviation)
	description := s.sanitizer.Sanitize(params.Description)

	details := map[string]any{}
	if !validate.IsFilledString(name, maxNameLen) {
		details["name"] = fmt.Sprintf("is required and must be at most %d characters", maxNameLen)
	}
	if abbreviation != "" && !validate.IsFilledString(abbreviation, maxAbbreviationLen) {
		details["abbreviation"] = fmt.Sprintf("must be at most %d characters", maxAbbreviationLen)
	}
	if params.ColorHex != "" && !validate.IsColorHex(params.ColorHex) {
		details["color_hex"] = "must be a hex color like #1A2B3C"
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("Validation failed.", details)
	}

	existing, err := s.partyRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("政党名の重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"name": "a party with this name already exists",
		})
	}

	now := time.Now()
	party := &model.Party{
		ID:           uuid.New().String(),
		Name:         name,
		Abbreviation: abbreviation,
		Description:  description,
		ColorHex:     params.ColorHex,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, fmt.Errorf("政党の登録に失敗しました: %w", err)
	}

	return party, nil
}
