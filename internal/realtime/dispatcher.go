package realtime

import (
	"log"

	"github.com/nao1215/tournament-notification/pkg/event"
)

// Dispatcher は新規作成された通知を受信者のライブ接続へファンアウトする。
//
// 配信は永続化と意図的に分離しており、ここでの失敗が通知作成リクエスト
// へ波及することはない。オフラインの受信者はスキップし、レコードは
// ストア経由で後から取得できる。
type Dispatcher struct {
	// registry は受信者の接続を解決するためのレジストリ。
	registry *Registry
}

// NewDispatcher は指定されたレジストリを参照するディスパッチャを生成する。
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch は通知を各受信者の接続へ配信する。
//
// 受信者は渡された順に処理する。未登録の受信者は何もせずスキップし、
// 送信失敗はログに記録して次の受信者の処理を続行する。エラーは呼び出し
// 元へ返さない。失敗した接続の後始末はPush自身が行う。
func (d *Dispatcher) Dispatch(recipients []string, n event.OutgoingNotification) {
	for _, recipient := range recipients {
		conn, ok := d.registry.Lookup(recipient)
		if !ok {
			// オフラインの受信者への配信はスキップする
			continue
		}

		log.Printf("通知を配信します: recipient=%s, payload=%s", recipient, n.JSON())
		if err := conn.Push(n); err != nil {
			log.Printf("通知 %s の %s への配信に失敗: %v", n.ID, recipient, err)
		}
	}
}
