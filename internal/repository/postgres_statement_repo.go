package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/polilog/internal/model"
)

// PostgresStatementRepo はPostgreSQLを使用した発言リポジトリ。
type PostgresStatementRepo struct {
	db *sql.DB
}

// NewPostgresStatementRepo はPostgresStatementRepoを生成する。
func NewPostgresStatementRepo(db *sql.DB) *PostgresStatementRepo {
	return &PostgresStatementRepo{db: db}
}

const statementColumns = `id, politician_id, statement_text, statement_timestamp,
	summary, summary_fetched_at, created_by_user_id, created_at, updated_at, deleted_at`

// scanStatement は1行分の発言をスキャンする。
func scanStatement(scan func(dest ...any) error) (*model.Statement, error) {
	st := &model.Statement{}
	err := scan(&st.ID, &st.PoliticianID, &st.StatementText, &st.StatementTimestamp,
		&st.Summary, &st.SummaryFetchedAt, &st.CreatedByUserID,
		&st.CreatedAt, &st.UpdatedAt, &st.DeletedAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// FindByID は指定IDの発言を取得する。論理削除済みまたは未検出の場合はnilを返す。
func (r *PostgresStatementRepo) FindByID(ctx context.Context, id string) (*model.Statement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE id = $1 AND deleted_at IS NULL`, id)
	st, err := scanStatement(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find statement by ID: %w", err)
	}
	return st, nil
}

// FindByIDIncludingDeleted は論理削除済みを含めて指定IDの発言を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresStatementRepo) FindByIDIncludingDeleted(ctx context.Context, id string) (*model.Statement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE id = $1`, id)
	st, err := scanStatement(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find statement by ID: %w", err)
	}
	return st, nil
}

// statementSortColumn は検証済みソートキーをORDER BY句の列名に変換する。
// 未知の値はstatement_timestampにフォールバックする。
func statementSortColumn(sortBy string) string {
	switch sortBy {
	case "created_at":
		return "created_at"
	default:
		return "statement_timestamp"
	}
}

// List は検索条件に一致する発言一覧と総件数を返す。論理削除済みは除外する。
func (r *PostgresStatementRepo) List(ctx context.Context, params ListStatementsParams) ([]*model.Statement, int, error) {
	where := `WHERE deleted_at IS NULL`
	args := []any{}

	if params.PoliticianID != "" {
		args = append(args, params.PoliticianID)
		where += fmt.Sprintf(` AND politician_id = $%d`, len(args))
	}
	if !params.Since.IsZero() {
		args = append(args, params.Since)
		where += fmt.Sprintf(` AND statement_timestamp >= $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM statements `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count statements: %w", err)
	}

	direction := "DESC"
	if params.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		`SELECT `+statementColumns+` FROM statements %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		where, statementSortColumn(params.SortBy), direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list statements: %w", err)
	}
	defer rows.Close()

	var statements []*model.Statement
	for rows.Next() {
		st, err := scanStatement(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate statements: %w", err)
	}

	return statements, total, nil
}

// Create は発言を作成する。
func (r *PostgresStatementRepo) Create(ctx context.Context, statement *model.Statement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO statements
		 (id, politician_id, statement_text, statement_timestamp, summary, summary_fetched_at,
		  created_by_user_id, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		statement.ID, statement.PoliticianID, statement.StatementText, statement.StatementTimestamp,
		statement.Summary, statement.SummaryFetchedAt,
		statement.CreatedByUserID, statement.CreatedAt, statement.UpdatedAt, statement.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert statement: %w", err)
	}
	return nil
}

// UpdateContent は発言の本文と発言日時を更新する。
// 本文が変わるため取得済みの要約もリセットする。
func (r *PostgresStatementRepo) UpdateContent(ctx context.Context, id, text string, statementTimestamp, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE statements
		 SET statement_text = $2, statement_timestamp = $3, summary = '', summary_fetched_at = NULL, updated_at = $4
		 WHERE id = $1 AND deleted_at IS NULL`,
		id, text, statementTimestamp, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update statement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("statement not found: %s", id)
	}
	return nil
}

// SoftDelete は発言を論理削除する。
func (r *PostgresStatementRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE statements SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, deletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete statement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("statement not found: %s", id)
	}
	return nil
}

// ListNeedingSummary は要約が未取得で本文がminChars文字以上の発言を
// 作成日時の古い順に最大limit件返す。
func (r *PostgresStatementRepo) ListNeedingSummary(ctx context.Context, minChars, limit int) ([]*model.Statement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statementColumns+`
		 FROM statements
		 WHERE summary = '' AND deleted_at IS NULL AND char_length(statement_text) >= $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		minChars, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements needing summary: %w", err)
	}
	defer rows.Close()

	var statements []*model.Statement
	for rows.Next() {
		st, err := scanStatement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate statements: %w", err)
	}

	return statements, nil
}

// UpdateSummary は発言の要約と取得日時を更新する。
func (r *PostgresStatementRepo) UpdateSummary(ctx context.Context, id, summary string, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE statements SET summary = $2, summary_fetched_at = $3 WHERE id = $1`,
		id, summary, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return nil
}

// compile-time interface check
var _ StatementRepository = (*PostgresStatementRepo)(nil)
