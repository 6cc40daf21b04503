// Package event は通知サービスが扱う通知ペイロードの型を提供する。
//
// トーナメント関連サービスから受け取る通知の種別・カテゴリの列挙と、
// APIレスポンスおよびSSEイベントとして配信する送出用ペイロードを含む。
package event

import (
	"fmt"
	"strings"
)

// Type は通知の種別を表す。
type Type string

const (
	// TypeTournamentStart はトーナメント開始の通知を表す。
	TypeTournamentStart Type = "tournament_start"
	// TypeRoundStart は新しいラウンド開始の通知を表す。
	TypeRoundStart Type = "round_start"
	// TypeMatchResult は対戦結果確定の通知を表す。
	TypeMatchResult Type = "match_result"
	// TypeAnnouncement は運営からのお知らせ通知を表す。
	TypeAnnouncement Type = "announcement"
)

// ParseType は文字列を通知種別に変換する。
// 大文字小文字は区別しない。未知の種別はエラーを返す。
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(s)); t {
	case TypeTournamentStart, TypeRoundStart, TypeMatchResult, TypeAnnouncement:
		return t, nil
	default:
		return "", fmt.Errorf("不正な通知種別: %s", s)
	}
}

// Category は通知の重要度カテゴリを表す。
type Category string

const (
	// CategoryInfo は情報通知を表す。
	CategoryInfo Category = "info"
	// CategorySuccess は成功通知を表す。
	CategorySuccess Category = "success"
	// CategoryWarning は警告通知を表す。
	CategoryWarning Category = "warning"
	// CategoryError はエラー通知を表す。
	CategoryError Category = "error"
)

// ParseCategory は文字列を通知カテゴリに変換する。
// 大文字小文字は区別しない。未知のカテゴリはエラーを返す。
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(s)); c {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError:
		return c, nil
	default:
		return "", fmt.Errorf("不正な通知カテゴリ: %s", s)
	}
}

// OutgoingNotification は永続化済み通知の送出用ペイロード。
//
// 通知作成・既読更新APIのレスポンスボディ、およびSSEイベントの
// データ部として使用する。id・created_at・is_readはサーバー側で
// 付与した値であり、作成リクエストの内容からは決して採らない。
type OutgoingNotification struct {
	// ID は通知の一意識別子（UUID）。
	ID string `json:"id"`
	// TournamentID は通知の発生元トーナメントのID。
	TournamentID string `json:"tournament_id"`
	// TournamentName はトーナメント名。
	TournamentName string `json:"tournament_name"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Type は通知の種別。
	Type Type `json:"type"`
	// Category は通知の重要度カテゴリ。
	Category Category `json:"category"`
	// CreatedAt は通知の作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
	// IsRead は通知の既読状態。
	IsRead bool `json:"is_read"`
}
