package notification

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	notificationdb "github.com/nao1215/tournament-notification/internal/notification/db"
	"github.com/nao1215/tournament-notification/internal/realtime"
	"github.com/nao1215/tournament-notification/pkg/event"
	"github.com/nao1215/tournament-notification/pkg/middleware"
	"github.com/nao1215/tournament-notification/pkg/migration"
)

//go:embed db/migrations/*.sql
var migrations embed.FS

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store は通知の永続化を担うストアゲートウェイ。
	store *Store
	// registry は受信者とライブ接続のマッピング。
	registry *realtime.Registry
	// dispatcher は新規通知を購読者へファンアウトするディスパッチャ。
	dispatcher *realtime.Dispatcher
	// streamTimeout はSSE接続の最大維持時間。0の場合は無期限。
	streamTimeout time.Duration
}

// NewServer は新しい通知サーバーを生成する。
// SQLiteデータベースの初期化とマイグレーションの適用を行う。
func NewServer(port string) (*Server, error) {
	dsn := os.Getenv("NOTIFICATION_DB")
	if dsn == "" {
		dsn = "/data/notification.db?_journal_mode=WAL&_busy_timeout=5000"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := migration.Run(sqlDB, migrations, "db/migrations"); err != nil {
		return nil, fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(allowedOrigins()))

	registry := realtime.NewRegistry()
	s := &Server{
		router:        router,
		port:          port,
		db:            sqlDB,
		store:         NewStore(sqlDB),
		registry:      registry,
		dispatcher:    realtime.NewDispatcher(registry),
		streamTimeout: streamTimeout(),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// allowedOrigins はCORSで許可するオリジンを環境変数から取得する。
func allowedOrigins() []string {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}
	return strings.Split(origins, ",")
}

// streamTimeout はSSE接続の最大維持時間を環境変数から取得する。
// 未設定または0の場合は無期限とする。
func streamTimeout() time.Duration {
	raw := os.Getenv("STREAM_TIMEOUT")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		log.Printf("STREAM_TIMEOUTの値が不正なため無期限として扱います: %s", raw)
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		notifications := api.Group("/notifications")
		{
			// 通知作成（トーナメント関連サービスから呼び出される）
			notifications.POST("", s.handleCreate())
			// 通知一覧取得
			notifications.GET("", s.handleList())
			// 未読通知一覧取得
			notifications.GET("/unread", s.handleListUnread())
			// リアルタイム通知の購読（SSE）
			notifications.GET("/subscribe", s.handleSubscribe())
			// 通知を既読にする
			notifications.PUT("/:id/read", s.handleMarkAsRead())
			// 通知を未読に戻す
			notifications.PUT("/:id/unread", s.handleMarkAsUnread())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	})
}

// createNotificationRequest は通知作成リクエストのJSON構造。
// 既読状態と作成日時は受け取らず、サーバー側で付与する。
type createNotificationRequest struct {
	// TournamentID は通知の発生元トーナメントのID。
	TournamentID string `json:"tournament_id" binding:"required"`
	// TournamentName はトーナメント名。
	TournamentName string `json:"tournament_name" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// Type は通知の種別。
	Type string `json:"type" binding:"required"`
	// Category は通知の重要度カテゴリ。
	Category string `json:"category" binding:"required"`
	// Recipients は受信者の識別子のリスト。空は許可しない。
	Recipients []string `json:"recipients" binding:"required,min=1,dive,required"`
}

// toOutgoingNotification はDB行を送出用ペイロードに変換する。
func toOutgoingNotification(n notificationdb.Notification) event.OutgoingNotification {
	return event.OutgoingNotification{
		ID:             n.ID,
		TournamentID:   n.TournamentID,
		TournamentName: n.TournamentName,
		Message:        n.Message,
		Type:           event.Type(n.Type),
		Category:       event.Category(n.Category),
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
		IsRead:         n.IsRead != 0,
	}
}

// toOutgoingNotifications はDB行のスライスを送出用ペイロードのスライスに変換する。
func toOutgoingNotifications(notifications []notificationdb.Notification) []event.OutgoingNotification {
	responses := make([]event.OutgoingNotification, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toOutgoingNotification(n))
	}
	return responses
}

// handleCreate は通知作成を処理するハンドラを返す。
//
// 検証→永続化→配信の順に処理する。検証エラーは副作用なしで返す。
// 永続化の失敗はリクエストエラーとして返すが、永続化が成功した後の
// 配信失敗はログに記録するだけでレスポンスには影響させない。レコードは
// 作成済みであり、受信者は後から一覧APIで取得できる。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		notificationType, err := event.ParseType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := event.ParseCategory(req.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		created, err := s.store.Create(c.Request.Context(), CreateParams{
			TournamentID:   req.TournamentID,
			TournamentName: req.TournamentName,
			Message:        req.Message,
			Type:           string(notificationType),
			Category:       string(category),
			Recipients:     req.Recipients,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の作成に失敗しました"})
			log.Printf("通知作成エラー: %v", err)
			return
		}

		// 永続化済みの通知を購読中の受信者へファンアウトする
		s.dispatcher.Dispatch(req.Recipients, toOutgoingNotification(created))

		c.JSON(http.StatusCreated, toOutgoingNotification(created))
	}
}

// handleList は認証済みユーザー宛の通知一覧を返すハンドラを返す。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名が取得できません"})
			return
		}

		notifications, err := s.store.FindByRecipient(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toOutgoingNotifications(notifications))
	}
}

// handleListUnread は認証済みユーザー宛の未読通知一覧を返すハンドラを返す。
func (s *Server) handleListUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名が取得できません"})
			return
		}

		notifications, err := s.store.FindUnreadByRecipient(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読通知一覧の取得に失敗しました"})
			log.Printf("未読通知一覧取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toOutgoingNotifications(notifications))
	}
}

// handleSubscribe はリアルタイム通知の購読を処理するハンドラを返す。
//
// SSEストリームを開き、接続をレジストリに登録する。同じユーザーが
// 再購読した場合は新しい接続で置き換える（後勝ち）。接続はクライアント
// の切断・タイムアウト・送信失敗のいずれかで終了し、どの経路でも
// レジストリから自動的に削除される。
func (s *Server) handleSubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名が取得できません"})
			return
		}

		conn := realtime.NewConnection(username)
		s.registry.Register(username, conn)
		log.Printf("購読を開始しました: recipient=%s", username)

		var timeoutCh <-chan time.Time
		if s.streamTimeout > 0 {
			timer := time.NewTimer(s.streamTimeout)
			defer timer.Stop()
			timeoutCh = timer.C
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case n := <-conn.Events():
				c.SSEvent("notification", n)
				return true
			case <-timeoutCh:
				conn.Timeout()
				log.Printf("購読がタイムアウトしました: recipient=%s", username)
				return false
			case <-c.Request.Context().Done():
				conn.Complete()
				log.Printf("購読が終了しました: recipient=%s", username)
				return false
			case <-conn.Done():
				return false
			}
		})
	}
}

// handleMarkAsRead は指定された通知を既読にするハンドラを返す。
func (s *Server) handleMarkAsRead() gin.HandlerFunc {
	return s.handleSetReadState(true)
}

// handleMarkAsUnread は指定された通知を未読に戻すハンドラを返す。
func (s *Server) handleMarkAsUnread() gin.HandlerFunc {
	return s.handleSetReadState(false)
}

// handleSetReadState は既読状態の更新を処理するハンドラを返す。
// 通知の存在確認と、呼び出しユーザーが宛先に含まれるかの確認を行う。
func (s *Server) handleSetReadState(read bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名が取得できません"})
			return
		}

		notificationID := c.Param("id")
		if notificationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "通知IDが必要です"})
			return
		}

		// 通知の存在確認と宛先チェック
		if _, err := s.store.Get(c.Request.Context(), notificationID); err != nil {
			if errors.Is(err, ErrNotificationNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}

		isRecipient, err := s.store.IsRecipient(c.Request.Context(), notificationID, username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
			log.Printf("受信者確認エラー: %v", err)
			return
		}
		if !isRecipient {
			c.JSON(http.StatusForbidden, gin.H{"error": "この通知を操作する権限がありません"})
			return
		}

		updated, err := s.store.SetReadState(c.Request.Context(), notificationID, read)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の更新に失敗しました"})
			log.Printf("既読状態更新エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toOutgoingNotification(updated))
	}
}
