package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	notificationdb "github.com/nao1215/tournament-notification/internal/notification/db"
)

// ErrNotificationNotFound は指定されたIDの通知が存在しないことを表す。
var ErrNotificationNotFound = errors.New("通知が見つかりません")

// Store は通知の永続化を担うストアゲートウェイ。
//
// ID・作成日時・既読初期値はすべてここで付与し、作成リクエストの
// 内容からは採らない。リアルタイム配信とは意図的に分離しており、
// トランザクションがレジストリに跨ることはない。
type Store struct {
	// db はSQLiteデータベース接続。トランザクション開始に使用する。
	db *sql.DB
	// queries はクエリ実行オブジェクト。
	queries *notificationdb.Queries
}

// NewStore は指定されたデータベース接続の上にストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		queries: notificationdb.New(db),
	}
}

// CreateParams は通知作成のパラメータ。
type CreateParams struct {
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
	// Recipients は受信者の識別子のリスト（順序保持）。
	Recipients []string
}

// Create は通知レコードと受信者リストを1トランザクションで永続化する。
// IDはここで採番し、既読状態と作成日時はスキーマのデフォルト値を適用する。
// 永続化された通知を返す。
func (s *Store) Create(ctx context.Context, arg CreateParams) (notificationdb.Notification, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return notificationdb.Notification{}, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	qtx := s.queries.WithTx(tx)
	if err := qtx.CreateNotification(ctx, notificationdb.CreateNotificationParams{
		ID:             id,
		TournamentID:   arg.TournamentID,
		TournamentName: arg.TournamentName,
		Message:        arg.Message,
		Type:           arg.Type,
		Category:       arg.Category,
	}); err != nil {
		return notificationdb.Notification{}, fmt.Errorf("通知レコードの作成に失敗: %w", err)
	}

	for i, recipient := range arg.Recipients {
		if err := qtx.AddNotificationRecipient(ctx, notificationdb.AddNotificationRecipientParams{
			NotificationID: id,
			Recipient:      recipient,
			Position:       int64(i),
		}); err != nil {
			return notificationdb.Notification{}, fmt.Errorf("受信者の登録に失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return notificationdb.Notification{}, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}

	created, err := s.queries.GetNotificationByID(ctx, id)
	if err != nil {
		return notificationdb.Notification{}, fmt.Errorf("作成した通知の取得に失敗: %w", err)
	}
	return created, nil
}

// FindByRecipient は指定された受信者宛の全通知を取得する。
func (s *Store) FindByRecipient(ctx context.Context, recipient string) ([]notificationdb.Notification, error) {
	return s.queries.ListNotificationsByRecipient(ctx, recipient)
}

// FindUnreadByRecipient は指定された受信者宛の未読通知を取得する。
func (s *Store) FindUnreadByRecipient(ctx context.Context, recipient string) ([]notificationdb.Notification, error) {
	return s.queries.ListUnreadNotificationsByRecipient(ctx, recipient)
}

// Get はIDで通知を1件取得する。
// 存在しない場合はErrNotificationNotFoundを返す。
func (s *Store) Get(ctx context.Context, id string) (notificationdb.Notification, error) {
	n, err := s.queries.GetNotificationByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return notificationdb.Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return notificationdb.Notification{}, fmt.Errorf("通知の取得に失敗: %w", err)
	}
	return n, nil
}

// SetReadState は通知の既読状態を更新し、更新後の通知を返す。
// 指定されたIDの通知が存在しない場合はErrNotificationNotFoundを返す。
// 既に目的の状態である場合もそのまま成功する（冪等）。
func (s *Store) SetReadState(ctx context.Context, id string, read bool) (notificationdb.Notification, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return notificationdb.Notification{}, err
	}

	isRead := int64(0)
	if read {
		isRead = 1
	}
	if err := s.queries.UpdateNotificationReadState(ctx, notificationdb.UpdateNotificationReadStateParams{
		IsRead: isRead,
		ID:     id,
	}); err != nil {
		return notificationdb.Notification{}, fmt.Errorf("既読状態の更新に失敗: %w", err)
	}

	updated, err := s.queries.GetNotificationByID(ctx, id)
	if err != nil {
		return notificationdb.Notification{}, fmt.Errorf("更新後の通知の取得に失敗: %w", err)
	}
	return updated, nil
}

// IsRecipient は指定された受信者が通知の宛先に含まれるかを返す。
func (s *Store) IsRecipient(ctx context.Context, id, recipient string) (bool, error) {
	_, err := s.queries.GetNotificationRecipient(ctx, notificationdb.GetNotificationRecipientParams{
		NotificationID: id,
		Recipient:      recipient,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Recipients は通知の受信者リストを登録順に返す。
func (s *Store) Recipients(ctx context.Context, id string) ([]string, error) {
	return s.queries.ListNotificationRecipients(ctx, id)
}
