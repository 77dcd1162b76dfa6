// Package profile はユーザープロフィールのドメインロジックを提供する。
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/repository"
	"github.com/hitoshi/polilog/internal/security"
	"github.com/hitoshi/polilog/internal/validate"
)

// 表示名の最大文字数。
const maxDisplayNameLen = 50

// PublicProfile は他ユーザーにも公開されるプロフィールの部分集合。
// メールアドレスや管理者フラグは含まない。
type PublicProfile struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}

// Service はプロフィール管理のサービス層。
type Service struct {
	profileRepo repository.ProfileRepository
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(profileRepo repository.ProfileRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		profileRepo: profileRepo,
		sanitizer:   sanitizer,
	}
}

// Me は本人のプロフィール全体を返す。
func (s *Service) Me(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("Profile", userID)
	}
	return profile, nil
}

// UpdateDisplayName は本人の表示名を更新する。
// 表示名はサニタイズ後に1〜50文字でなければならない。
func (s *Service) UpdateDisplayName(ctx context.Context, userID, displayName string) (*model.Profile, error) {
	displayName = s.sanitizer.Sanitize(displayName)

	if !validate.IsFilledString(displayName, maxDisplayNameLen) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"display_name": fmt.Sprintf("is required and must be at most %d characters", maxDisplayNameLen),
		})
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("Profile", userID)
	}

	updatedAt := time.Now()
	if err := s.profileRepo.UpdateDisplayName(ctx, userID, displayName, updatedAt); err != nil {
		return nil, fmt.Errorf("表示名の更新に失敗しました: %w", err)
	}

	profile.DisplayName = displayName
	profile.UpdatedAt = updatedAt
	return profile, nil
}

// PublicByID は公開プロフィールをIDで取得する。
// メールアドレス等の非公開フィールドは含まれない。
func (s *Service) PublicByID(ctx context.Context, id string) (*PublicProfile, error) {
	if !validate.IsUUID(id) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"id": "must be a valid UUID",
		})
	}

	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("Profile", id)
	}

	return &PublicProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		CreatedAt:   profile.CreatedAt,
	}, nil
}
