// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 有効期限を過ぎたセッションと、保持期間（デフォルト30日）を超過した
// ソフトデリート済み発言を日次バッチで物理削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SessionMetrics はクリーンアップが記録するメトリクスの部分インターフェース。
type SessionMetrics interface {
	RecordSessionsPurged(count int)
}

// CleanupJob は期限切れセッションと削除済み発言の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	metrics       SessionMetrics
	RetentionDays int // ソフトデリート済み発言の保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は30日。metricsにnilを渡した場合は記録を行わない。
func NewCleanupJob(db Executor, logger *slog.Logger, metrics SessionMetrics) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		metrics:       metrics,
		RetentionDays: 30,
	}
}

// Run は期限切れセッションと保持期間超過の削除済み発言を物理削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purgedSessions, err := j.purgeExpiredSessions(ctx)
	if err != nil {
		return err
	}

	purgedStatements, err := j.purgeDeletedStatements(ctx)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("purged_sessions", purgedSessions),
		slog.Int64("purged_statements", purgedStatements),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// purgeExpiredSessions は有効期限を過ぎたセッションを削除する。
func (j *CleanupJob) purgeExpiredSessions(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsPurged(int(count))
	}

	return count, nil
}

// purgeDeletedStatements は保持期間を超過したソフトデリート済み発言を物理削除する。
// deleted_atがRetentionDays日前より古い発言のみが対象になる。
func (j *CleanupJob) purgeDeletedStatements(ctx context.Context) (int64, error) {
	interval := fmt.Sprintf("%d days", j.RetentionDays)

	query := `DELETE FROM statements WHERE deleted_at IS NOT NULL AND deleted_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("削除済み発言のパージに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return 0, fmt.Errorf("削除済み発言のパージに失敗: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	return count, nil
}
