package db

import "time"

// Notification はnotificationsテーブルの1行を表す。
type Notification struct {
	// ID は通知の一意識別子（UUID）。
	ID string
	// TournamentID は通知の発生元トーナメントのID。
	TournamentID string
	// TournamentName はトーナメント名。
	TournamentName string
	// Message は通知メッセージ。
	Message string
	// Type は通知の種別。
	Type string
	// Category は通知の重要度カテゴリ。
	Category string
	// IsRead は通知の既読状態（0=未読、1=既読）。
	IsRead int64
	// CreatedAt は通知の作成日時。
	CreatedAt time.Time
}

// NotificationRecipient はnotification_recipientsテーブルの1行を表す。
type NotificationRecipient struct {
	// NotificationID は対象通知のID。
	NotificationID string
	// Recipient は受信者の識別子。
	Recipient string
	// Position は作成リクエスト内での受信者の並び順。
	Position int64
}
