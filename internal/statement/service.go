// Package statement は発言記録のドメインロジックを提供する。
//
// 発言の作成・編集・削除・一覧取得を扱う。編集と削除は投稿者本人のみ、
// かつ投稿から15分の猶予期間内に限り許可される。削除はソフトデリートで、
// 一覧・取得系の操作からは削除済み発言が常に除外される。
package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/polilog/internal/authz"
	"github.com/hitoshi/polilog/internal/model"
	"github.com/hitoshi/polilog/internal/repository"
	"github.com/hitoshi/polilog/internal/security"
	"github.com/hitoshi/polilog/internal/validate"
)

// sortFields は発言一覧で許可されるソートキー。
var sortFields = []string{"statement_timestamp", "created_at"}

// defaultSortField は発言一覧のデフォルトソートキー。
const defaultSortField = "statement_timestamp"

// MetricsRecorder はサービスが使用するメトリクス記録の部分インターフェース。
type MetricsRecorder interface {
	RecordStatementCreated()
	RecordStatementDeleted()
}

// noopMetrics はメトリクス未設定時のフォールバック。
type noopMetrics struct{}

func (noopMetrics) RecordStatementCreated() {}
func (noopMetrics) RecordStatementDeleted() {}

// ListParams は発言一覧取得の入力。
type ListParams struct {
	PoliticianID string
	SortBy       string
	Order        string
	Page         int
	Limit        int
}

// TimelineParams は政治家別タイムライン取得の入力。
type TimelineParams struct {
	PoliticianID string
	Range        string
	Order        string
	Page         int
	Limit        int
}

// ListResult は発言一覧とページネーション情報。
type ListResult struct {
	Statements []*model.Statement
	Total      int
	Page       int
	Limit      int
}

// CreateParams は発言作成の入力。
// StatementTimestampはISO 8601形式の文字列で受け取る。
type CreateParams struct {
	PoliticianID       string
	StatementText      string
	StatementTimestamp string
}

// UpdateParams は発言更新の入力。nilのフィールドは変更しない。
type UpdateParams struct {
	StatementText      *string
	StatementTimestamp *string
}

// Service は発言記録のサービス層。
type Service struct {
	statementRepo  repository.StatementRepository
	politicianRepo repository.PoliticianRepository
	rule           *authz.Rule
	sanitizer      security.TextSanitizerService
	metrics        MetricsRecorder
	now            func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsにnilを渡した場合は記録を行わない。
func NewService(
	statementRepo repository.StatementRepository,
	politicianRepo repository.PoliticianRepository,
	rule *authz.Rule,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		statementRepo:  statementRepo,
		politicianRepo: politicianRepo,
		rule:           rule,
		sanitizer:      sanitizer,
		metrics:        metrics,
		now:            time.Now,
	}
}

// List は発言一覧を返す。削除済み発言は含まれない。
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.PoliticianID != "" && !validate.IsUUID(params.PoliticianID) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"politician_id": "must be a valid UUID",
		})
	}

	page, limit := validate.Pagination(params.Page, params.Limit)
	sortBy := validate.SortField(params.SortBy, sortFields, defaultSortField)
	order := validate.SortOrder(params.Order)

	statements, total, err := s.statementRepo.List(ctx, repository.ListStatementsParams{
		PoliticianID: params.PoliticianID,
		SortBy:       sortBy,
		Order:        order,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("発言一覧の取得に失敗しました: %w", err)
	}

	return &ListResult{
		Statements: statements,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// TimelineByPolitician は政治家の発言タイムラインを期間指定付きで返す。
// rangeは7d/30d/365d/allのいずれかで、不正な値はallとして扱われる。
func (s *Service) TimelineByPolitician(ctx context.Context, params TimelineParams) (*ListResult, error) {
	if !validate.IsUUID(params.PoliticianID) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"politician_id": "must be a valid UUID",
		})
	}

	politician, err := s.politicianRepo.FindByID(ctx, params.PoliticianID)
	if err != nil {
		return nil, fmt.Errorf("政治家の取得に失敗しました: %w", err)
	}
	if politician == nil {
		return nil, model.NewNotFoundError("Politician", params.PoliticianID)
	}

	page, limit := validate.Pagination(params.Page, params.Limit)
	order := validate.SortOrder(params.Order)

	var since time.Time
	timeRange := validate.TimeRange(params.Range)
	if d, bounded := validate.TimeRangeDuration(timeRange); bounded {
		since = s.now().Add(-d)
	}

	statements, total, err := s.statementRepo.List(ctx, repository.ListStatementsParams{
		PoliticianID: params.PoliticianID,
		Since:        since,
		SortBy:       defaultSortField,
		Order:        order,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("発言タイムラインの取得に失敗しました: %w", err)
	}

	return &ListResult{
		Statements: statements,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// Get は発言をIDで取得する。削除済みまたは存在しない場合はNOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Statement, error) {
	if !validate.IsUUID(id) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"id": "must be a valid UUID",
		})
	}

	statement, err := s.statementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("発言の取得に失敗しました: %w", err)
	}
	if statement == nil {
		return nil, model.NewNotFoundError("Statement", id)
	}
	return statement, nil
}

// Create は新しい発言を記録する。
// 発言本文はサニタイズ後に10〜5000文字でなければならない。
// 発言日時はISO 8601形式で、未来の日時は許可されない。
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*model.Statement, error) {
	if userID == "" {
		return nil, model.NewAuthRequiredError()
	}

	text := s.sanitizer.Sanitize(params.StatementText)

	details := map[string]any{}
	if !validate.IsUUID(params.PoliticianID) {
		details["politician_id"] = "must be a valid UUID"
	}
	if textLen := len([]rune(text)); textLen < model.StatementTextMinLen || textLen > model.StatementTextMaxLen {
		details["statement_text"] = fmt.Sprintf("must be between %d and %d characters",
			model.StatementTextMinLen, model.StatementTextMaxLen)
	}
	var statementTimestamp time.Time
	if !validate.IsISOTime(params.StatementTimestamp) {
		details["statement_timestamp"] = "must be an ISO 8601 timestamp"
	} else {
		statementTimestamp, _ = time.Parse(time.RFC3339, params.StatementTimestamp)
		if statementTimestamp.After(s.now()) {
			details["statement_timestamp"] = "must not be in the future"
		}
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("Validation failed.", details)
	}

	politician, err := s.politicianRepo.FindByID(ctx, params.PoliticianID)
	if err != nil {
		return nil, fmt.Errorf("政治家の取得に失敗しました: %w", err)
	}
	if politician == nil {
		return nil, model.NewNotFoundError("Politician", params.PoliticianID)
	}

	now := s.now()
	statement := &model.Statement{
		ID:                 uuid.New().String(),
		PoliticianID:       params.PoliticianID,
		StatementText:      text,
		StatementTimestamp: statementTimestamp,
		CreatedByUserID:    userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.statementRepo.Create(ctx, statement); err != nil {
		return nil, fmt.Errorf("発言の登録に失敗しました: %w", err)
	}

	s.metrics.RecordStatementCreated()

	return statement, nil
}

// Update は発言の本文または発言日時を更新する。
// 投稿者本人が猶予期間内に限り実行できる。
// 本文を更新すると既存の要約は破棄され、再生成の対象になる。
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateParams) (*model.Statement, error) {
	statement, err := s.authorizeMutation(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	text := statement.StatementText
	statementTimestamp := statement.StatementTimestamp

	details := map[string]any{}
	if params.StatementText != nil {
		text = s.sanitizer.Sanitize(*params.StatementText)
		if textLen := len([]rune(text)); textLen < model.StatementTextMinLen || textLen > model.StatementTextMaxLen {
			details["statement_text"] = fmt.Sprintf("must be between %d and %d characters",
				model.StatementTextMinLen, model.StatementTextMaxLen)
		}
	}
	if params.StatementTimestamp != nil {
		if !validate.IsISOTime(*params.StatementTimestamp) {
			details["statement_timestamp"] = "must be an ISO 8601 timestamp"
		} else {
			statementTimestamp, _ = time.Parse(time.RFC3339, *params.StatementTimestamp)
			// 発言日時は記録時点（created_at）を超えられない
			if statementTimestamp.After(s.now()) {
				details["statement_timestamp"] = "must not be in the future"
			} else if statementTimestamp.After(statement.CreatedAt) {
				details["statement_timestamp"] = "must not be later than the time the statement was recorded"
			}
		}
	}
	if params.StatementText == nil && params.StatementTimestamp == nil {
		details["body"] = "at least one of statement_text or statement_timestamp is required"
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("Validation failed.", details)
	}

	updatedAt := s.now()
	if err := s.statementRepo.UpdateContent(ctx, id, text, statementTimestamp, updatedAt); err != nil {
		return nil, fmt.Errorf("発言の更新に失敗しました: %w", err)
	}

	statement.StatementText = text
	statement.StatementTimestamp = statementTimestamp
	statement.UpdatedAt = updatedAt
	statement.Summary = ""
	statement.SummaryFetchedAt = nil

	return statement, nil
}

// Delete は発言をソフトデリートし、削除済みの発言を返す。
// 投稿者本人が猶予期間内に限り実行できる。
func (s *Service) Delete(ctx context.Context, userID, id string) (*model.Statement, error) {
	statement, err := s.authorizeMutation(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	deletedAt := s.now()
	if err := s.statementRepo.SoftDelete(ctx, id, deletedAt); err != nil {
		return nil, fmt.Errorf("発言の削除に失敗しました: %w", err)
	}

	statement.DeletedAt = &deletedAt

	s.metrics.RecordStatementDeleted()

	return statement, nil
}

// authorizeMutation は編集・削除に共通の権限チェックを行う。
// 存在しない発言はNOT_FOUND、削除済み発言はPERMISSION_DENIED、
// 投稿者以外はPERMISSION_DENIED、猶予期間切れは
// details.reasonにGRACE_PERIOD_EXPIREDを含むPERMISSION_DENIEDを返す。
func (s *Service) authorizeMutation(ctx context.Context, userID, id string) (*model.Statement, error) {
	if !validate.IsUUID(id) {
		return nil, model.NewValidationError("Validation failed.", map[string]any{
			"id": "must be a valid UUID",
		})
	}

	statement, err := s.statementRepo.FindByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("発言の取得に失敗しました: %w", err)
	}
	if statement == nil {
		return nil, model.NewNotFoundError("Statement", id)
	}
	if statement.Deleted() {
		return nil, model.NewPermissionDeniedError("This statement has been deleted.")
	}

	switch s.rule.Check(statement.CreatedByUserID, userID, statement.CreatedAt) {
	case authz.Allowed:
		return statement, nil
	case authz.DeniedUnauthenticated:
		return nil, model.NewAuthRequiredError()
	case authz.DeniedExpired:
		return nil, model.NewGracePeriodExpiredError()
	default:
		return nil, model.NewPermissionDeniedError("You do not have permission to modify this statement.")
	}
}
