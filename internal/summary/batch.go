package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/polilog/internal/repository"
)

// Summarizer は要約取得のインターフェース。
// テスト時にモックに差し替え可能。
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// BatchMetrics はバッチジョブが記録するメトリクスの部分インターフェース。
type BatchMetrics interface {
	RecordSummarySuccess()
	RecordSummaryFailure(reason string)
	RecordSummaryLatency(duration time.Duration)
}

// noopMetrics はメトリクス未設定時のフォールバック。
type noopMetrics struct{}

func (noopMetrics) RecordSummarySuccess()                      {}
func (noopMetrics) RecordSummaryFailure(reason string)         {}
func (noopMetrics) RecordSummaryLatency(duration time.Duration) {}

// BatchConfig はバッチジョブの設定パラメータ。
// 環境変数から設定可能。
type BatchConfig struct {
	// BatchInterval はバッチジョブの実行間隔（デフォルト: 10分）。
	BatchInterval time.Duration
	// APIInterval はAPI呼び出しの最低間隔（デフォルト: 2秒）。
	APIInterval time.Duration
	// MinChars は要約対象とする発言本文の最低文字数（デフォルト: 1000）。
	MinChars int
	// MaxPerCycle は1サイクルあたりの最大処理件数（デフォルト: 50）。
	MaxPerCycle int
}

// DefaultBatchConfig はデフォルトのバッチジョブ設定を返す。
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchInterval: 10 * time.Minute,
		APIInterval:   2 * time.Second,
		MinChars:      1000,
		MaxPerCycle:   50,
	}
}

// BatchJob は未要約発言のバッチ要約ジョブ。
// 定期的に要約が未生成の長文発言を取得し、
// 要約APIを呼び出して結果を保存する。
type BatchJob struct {
	statementRepo repository.StatementRepository
	client        Summarizer
	logger        *slog.Logger
	metrics       BatchMetrics
	config        BatchConfig
}

// NewBatchJob はBatchJobの新しいインスタンスを生成する。
// metricsにnilを渡した場合は記録を行わない。
func NewBatchJob(
	statementRepo repository.StatementRepository,
	client Summarizer,
	logger *slog.Logger,
	metrics BatchMetrics,
	config BatchConfig,
) *BatchJob {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &BatchJob{
		statementRepo: statementRepo,
		client:        client,
		logger:        logger,
		metrics:       metrics,
		config:        config,
	}
}

// Start はバッチジョブをティッカーで定期実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (b *BatchJob) Start(ctx context.Context) {
	ticker := time.NewTicker(b.config.BatchInterval)
	defer ticker.Stop()

	b.logger.Info("要約バッチジョブを開始しました",
		slog.Duration("batch_interval", b.config.BatchInterval),
		slog.Duration("api_interval", b.config.APIInterval),
		slog.Int("min_chars", b.config.MinChars),
		slog.Int("max_per_cycle", b.config.MaxPerCycle),
	)

	// 起動直後に1回実行
	if err := b.RunOnce(ctx); err != nil {
		b.logger.Error("要約バッチサイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("要約バッチジョブを停止しました")
			return
		case <-ticker.C:
			if err := b.RunOnce(ctx); err != nil {
				b.logger.Error("要約バッチサイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は1回のバッチサイクルを実行する。
// 要約対象の発言を取得し、1件ずつAPIを呼び出して要約を保存する。
// 個々の発言の失敗はログに記録してスキップし、サイクル全体は継続する。
func (b *BatchJob) RunOnce(ctx context.Context) error {
	statements, err := b.statementRepo.ListNeedingSummary(ctx, b.config.MinChars, b.config.MaxPerCycle)
	if err != nil {
		return fmt.Errorf("要約対象発言の取得に失敗しました: %w", err)
	}

	if len(statements) == 0 {
		b.logger.Info("要約対象の発言はありません")
		return nil
	}

	b.logger.Info("要約バッチサイクルを開始します",
		slog.Int("target_statements", len(statements)),
	)

	succeeded, failed := 0, 0
	for i, statement := range statements {
		// API呼び出しの最低間隔を空ける（先頭は待たない）
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.config.APIInterval):
			}
		}

		start := time.Now()
		summaryText, err := b.client.Summarize(ctx, statement.StatementText)
		b.metrics.RecordSummaryLatency(time.Since(start))

		if err != nil {
			failed++
			b.metrics.RecordSummaryFailure("api_error")
			b.logger.Warn("発言の要約生成に失敗しました",
				slog.String("statement_id", statement.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := b.statementRepo.UpdateSummary(ctx, statement.ID, summaryText, time.Now()); err != nil {
			failed++
			b.metrics.RecordSummaryFailure("store_error")
			b.logger.Error("要約の保存に失敗しました",
				slog.String("statement_id", statement.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		succeeded++
		b.metrics.RecordSummarySuccess()
	}

	b.logger.Info("要約バッチサイクルが完了しました",
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)

	return nil
}
