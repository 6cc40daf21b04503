package db

import (
	"context"
)

const createNotification = `
INSERT INTO notifications (id, tournament_id, tournament_name, message, type, category)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateNotificationParams はCreateNotificationのパラメータ。
type CreateNotificationParams struct {
	ID             string
	TournamentID   string
	TournamentName string
	Message        string
	Type           string
	Category       string
}

// CreateNotification は通知レコードを1件挿入する。
// is_readとcreated_atはスキーマのデフォルト値（未読・現在時刻）が適用される。
func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) error {
	_, err := q.db.ExecContext(ctx, createNotification,
		arg.ID,
		arg.TournamentID,
		arg.TournamentName,
		arg.Message,
		arg.Type,
		arg.Category,
	)
	return err
}

const addNotificationRecipient = `
INSERT INTO notification_recipients (notification_id, recipient, position)
VALUES (?, ?, ?)
`

// AddNotificationRecipientParams はAddNotificationRecipientのパラメータ。
type AddNotificationRecipientParams struct {
	NotificationID string
	Recipient      string
	Position       int64
}

// AddNotificationRecipient は通知に受信者を1人追加する。
func (q *Queries) AddNotificationRecipient(ctx context.Context, arg AddNotificationRecipientParams) error {
	_, err := q.db.ExecContext(ctx, addNotificationRecipient,
		arg.NotificationID,
		arg.Recipient,
		arg.Position,
	)
	return err
}

const getNotificationByID = `
SELECT id, tournament_id, tournament_name, message, type, category, is_read, created_at
FROM notifications
WHERE id = ?
`

// GetNotificationByID はIDで通知を1件取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetNotificationByID(ctx context.Context, id string) (Notification, error) {
	row := q.db.QueryRowContext(ctx, getNotificationByID, id)
	var n Notification
	err := row.Scan(
		&n.ID,
		&n.TournamentID,
		&n.TournamentName,
		&n.Message,
		&n.Type,
		&n.Category,
		&n.IsRead,
		&n.CreatedAt,
	)
	return n, err
}

const listNotificationRecipients = `
SELECT recipient
FROM notification_recipients
WHERE notification_id = ?
ORDER BY position
`

// ListNotificationRecipients は通知の受信者を登録順に取得する。
func (q *Queries) ListNotificationRecipients(ctx context.Context, notificationID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listNotificationRecipients, notificationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recipients []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

const getNotificationRecipient = `
SELECT recipient
FROM notification_recipients
WHERE notification_id = ? AND recipient = ?
`

// GetNotificationRecipientParams はGetNotificationRecipientのパラメータ。
type GetNotificationRecipientParams struct {
	NotificationID string
	Recipient      string
}

// GetNotificationRecipient は指定された受信者が通知の宛先に含まれるかを確認する。
// 含まれない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetNotificationRecipient(ctx context.Context, arg GetNotificationRecipientParams) (string, error) {
	row := q.db.QueryRowContext(ctx, getNotificationRecipient, arg.NotificationID, arg.Recipient)
	var r string
	err := row.Scan(&r)
	return r, err
}

const listNotificationsByRecipient = `
SELECT n.id, n.tournament_id, n.tournament_name, n.message, n.type, n.category, n.is_read, n.created_at
FROM notifications n
JOIN notification_recipients r ON r.notification_id = n.id
WHERE r.recipient = ?
ORDER BY n.created_at DESC, n.id
`

// ListNotificationsByRecipient は指定された受信者宛の全通知を新しい順に取得する。
func (q *Queries) ListNotificationsByRecipient(ctx context.Context, recipient string) ([]Notification, error) {
	return q.queryNotifications(ctx, listNotificationsByRecipient, recipient)
}

const listUnreadNotificationsByRecipient = `
SELECT n.id, n.tournament_id, n.tournament_name, n.message, n.type, n.category, n.is_read, n.created_at
FROM notifications n
JOIN notification_recipients r ON r.notification_id = n.id
WHERE r.recipient = ? AND n.is_read = 0
ORDER BY n.created_at DESC, n.id
`

// ListUnreadNotificationsByRecipient は指定された受信者宛の未読通知を新しい順に取得する。
func (q *Queries) ListUnreadNotificationsByRecipient(ctx context.Context, recipient string) ([]Notification, error) {
	return q.queryNotifications(ctx, listUnreadNotificationsByRecipient, recipient)
}

const updateNotificationReadState = `
UPDATE notifications SET is_read = ? WHERE id = ?
`

// UpdateNotificationReadStateParams はUpdateNotificationReadStateのパラメータ。
type UpdateNotificationReadStateParams struct {
	IsRead int64
	ID     string
}

// UpdateNotificationReadState は通知の既読状態を更新する。
func (q *Queries) UpdateNotificationReadState(ctx context.Context, arg UpdateNotificationReadStateParams) error {
	_, err := q.db.ExecContext(ctx, updateNotificationReadState, arg.IsRead, arg.ID)
	return err
}

// queryNotifications は通知を複数件取得するクエリの共通処理。
func (q *Queries) queryNotifications(ctx context.Context, query string, args ...any) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID,
			&n.TournamentID,
			&n.TournamentName,
			&n.Message,
			&n.Type,
			&n.Category,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
