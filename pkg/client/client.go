package client

import (
	"context"
	"fmt"

	"github.com/nao1215/tournament-notification/pkg/event"
	"github.com/nao1215/tournament-notification/pkg/httpclient"
)

// Client は通知サービスAPIの型付きクライアント。
// トーナメント関連サービスが通知の送信に、フロントエンド向けBFFが
// 通知の取得・既読管理に使用する。
type Client struct {
	// http はJSON通信を行うHTTPクライアント。
	http *httpclient.Client
}

// New は新しい通知サービスクライアントを生成する。
// baseURLには通知サービスのベースURL（例: "http://notification:8086"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		http: httpclient.New(baseURL),
	}
}

// SendNotificationRequest は通知作成リクエスト。
type SendNotificationRequest struct {
	// TournamentID は通知の発生元トーナメントのID。
	TournamentID string `json:"tournament_id"`
	// TournamentName はトーナメント名。
	TournamentName string `json:"tournament_name"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Type は通知の種別。
	Type event.Type `json:"type"`
	// Category は通知の重要度カテゴリ。
	Category event.Category `json:"category"`
	// Recipients は受信者の識別子のリスト。
	Recipients []string `json:"recipients"`
}

// Send は通知を作成し、購読中の受信者へのリアルタイム配信を依頼する。
// 永続化された通知を返す。
func (c *Client) Send(ctx context.Context, req SendNotificationRequest) (event.OutgoingNotification, error) {
	var result event.OutgoingNotification
	if err := c.http.PostJSON(ctx, "/api/v1/notifications", req, &result); err != nil {
		return event.OutgoingNotification{}, fmt.Errorf("通知の送信に失敗: %w", err)
	}
	return result, nil
}

// List は認証済みユーザー宛の全通知を取得する。
func (c *Client) List(ctx context.Context) ([]event.OutgoingNotification, error) {
	var result []event.OutgoingNotification
	if err := c.http.GetJSON(ctx, "/api/v1/notifications", &result); err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	return result, nil
}

// ListUnread は認証済みユーザー宛の未読通知を取得する。
func (c *Client) ListUnread(ctx context.Context) ([]event.OutgoingNotification, error) {
	var result []event.OutgoingNotification
	if err := c.http.GetJSON(ctx, "/api/v1/notifications/unread", &result); err != nil {
		return nil, fmt.Errorf("未読通知一覧の取得に失敗: %w", err)
	}
	return result, nil
}

// MarkRead は指定された通知を既読にし、更新後の通知を返す。
func (c *Client) MarkRead(ctx context.Context, id string) (event.OutgoingNotification, error) {
	var result event.OutgoingNotification
	if err := c.http.PutJSON(ctx, fmt.Sprintf("/api/v1/notifications/%s/read", id), nil, &result); err != nil {
		return event.OutgoingNotification{}, fmt.Errorf("通知の既読化に失敗: %w", err)
	}
	return result, nil
}

// MarkUnread は指定された通知を未読に戻し、更新後の通知を返す。
func (c *Client) MarkUnread(ctx context.Context, id string) (event.OutgoingNotification, error) {
	var result event.OutgoingNotification
	if err := c.http.PutJSON(ctx, fmt.Sprintf("/api/v1/notifications/%s/unread", id), nil, &result); err != nil {
		return event.OutgoingNotification{}, fmt.Errorf("通知の未読化に失敗: %w", err)
	}
	return result, nil
}
