// Package auth はメール/パスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/repository"
)

// パスワードの最小文字数。
const MinPasswordLength = 6

// 認証フローで返される既知のエラー。
// メッセージ文字列はFriendlyMessageの変換テーブルにマッチする形式にしている。
var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードの不一致を示す。
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrUserExists は同一メールアドレスのユーザーが登録済みであることを示す。
	ErrUserExists = errors.New("user already registered")
	// ErrWeakPassword はパスワードが短すぎることを示す。
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrInvalidEmail はメールアドレスの形式不正を示す。
	ErrInvalidEmail = errors.New("invalid email address")
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	BcryptCost    int // 0の場合はbcrypt.DefaultCost
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	profileRepo repository.ProfileRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	profileRepo repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// SignUp は新規ユーザーを登録し、セッションを発行する。
// display_nameが空の場合はメールアドレスのローカル部を使用する。
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*model.Profile, *model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = localPart(email)
	}

	now := time.Now()
	profile := &model.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}

	session, err := s.createSession(ctx, profile.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("new user signed up",
		slog.String("user_id", profile.ID),
	)

	return profile, session, nil
}

// SignIn はメールアドレスとパスワードを検証し、セッションを発行する。
// ユーザーが存在しない場合もパスワード不一致と同じエラーを返す
// （アカウントの存在を漏らさないため）。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Profile, *model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, profile.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user signed in",
		slog.String("user_id", profile.ID),
	)

	return profile, session, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
// トークンが無効または期限切れの場合はnilを返す。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.Profile, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	profile, err := s.profileRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// localPart はメールアドレスの@より前の部分を返す。
func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
