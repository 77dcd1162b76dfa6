// Package summary は発言の自動要約機能を提供する。
// 外部要約APIの呼び出しと、未要約発言のバッチ処理ジョブを含む。
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxResponseBytes は要約APIレスポンスの最大読み取りサイズ。
const maxResponseBytes = 1 << 20

// summarizeRequest は要約APIへのリクエストボディ。
type summarizeRequest struct {
	Text string `json:"text"`
}

// summarizeResponse は要約APIのレスポンスボディ。
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Client は外部要約APIのクライアント。
// SSRF防止付きHTTPクライアントを介して呼び出すことを想定している。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Summarize は発言テキストの要約を取得する。
// 空の要約が返された場合はエラーとして扱う。
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("要約対象のテキストが空です")
	}

	payload, err := json.Marshal(summarizeRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("リクエストボディの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("要約APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("要約APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", fmt.Errorf("要約APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result summarizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("レスポンスのパースに失敗しました: %w", err)
	}

	if result.Summary == "" {
		return "", fmt.Errorf("要約APIが空の要約を返しました")
	}

	return result.Summary, nil
}
