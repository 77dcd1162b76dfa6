package cleanup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type fakeResult struct {
	rowsAffected int64
}

func (r *fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// mockExecutor はExecutorのモック実装。
// 実行されたクエリと引数を記録し、クエリ内容を検証できるようにする。
type mockExecutor struct {
	queries []string
	args    [][]interface{}
	result  sql.Result
	err     error
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.queries = append(m.queries, query)
	m.args = append(m.args, args)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// countingMetrics はセッション削除数を記録するSessionMetrics。
type countingMetrics struct {
	purged int
}

func (c *countingMetrics) RecordSessionsPurged(count int) { c.purged += count }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewCleanupJob_SetsRetentionDays(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{}}

	job := NewCleanupJob(mock, newTestLogger(&buf), nil)

	if job.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", job.RetentionDays)
	}
}

func TestRun_PurgesSessionsAndStatements(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 3}}
	metrics := &countingMetrics{}

	job := NewCleanupJob(mock, newTestLogger(&buf), metrics)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(mock.queries) != 2 {
		t.Fatalf("executed %d queries, want 2", len(mock.queries))
	}

	// 1本目: 期限切れセッションの削除
	if !strings.Contains(mock.queries[0], "DELETE FROM sessions") {
		t.Errorf("1st query should delete sessions: %s", mock.queries[0])
	}
	if !strings.Contains(mock.queries[0], "expires_at") {
		t.Errorf("1st query should filter on expires_at: %s", mock.queries[0])
	}

	// 2本目: 保持期間超過のソフトデリート済み発言のパージ
	if !strings.Contains(mock.queries[1], "DELETE FROM statements") {
		t.Errorf("2nd query should delete statements: %s", mock.queries[1])
	}
	if !strings.Contains(mock.queries[1], "deleted_at IS NOT NULL") {
		t.Errorf("2nd query should only target soft-deleted rows: %s", mock.queries[1])
	}
	if len(mock.args[1]) != 1 || mock.args[1][0] != "30 days" {
		t.Errorf("2nd query args = %v, want [30 days]", mock.args[1])
	}

	if metrics.purged != 3 {
		t.Errorf("metrics purged = %d, want 3", metrics.purged)
	}
}

func TestRun_CustomRetentionDays(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{}}

	job := NewCleanupJob(mock, newTestLogger(&buf), nil)
	job.RetentionDays = 90

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if mock.args[1][0] != "90 days" {
		t.Errorf("interval arg = %v, want 90 days", mock.args[1][0])
	}
}

func TestRun_ReturnsErrorOnFailure(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{err: fmt.Errorf("db down")}

	job := NewCleanupJob(mock, newTestLogger(&buf), nil)

	if err := job.Run(context.Background()); err == nil {
		t.Error("expected error when delete fails")
	}
}

func TestRun_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 2}}

	job := NewCleanupJob(mock, newTestLogger(&buf), nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "purged_sessions") {
		t.Errorf("completion log should contain purged_sessions: %s", buf.String())
	}
}
