package realtime

import (
	"sync"
)

// Registry は受信者識別子からライブ接続への並行安全なマッピング。
//
// 接続の所有は行わず、索引のみを保持する。エントリは購読時に作成され、
// 接続の完了・タイムアウト・エラーのいずれかの終端シグナルで削除される。
// register/lookup/unregisterは任意の数のgoroutineから同時に呼び出せる。
type Registry struct {
	// mu はconnsへのアクセスを保護する。
	mu sync.RWMutex
	// conns は受信者識別子をキーとする接続のマップ。
	// 1識別子につき常に高々1接続を保持する。
	conns map[string]*Connection
}

// NewRegistry は空のレジストリを生成する。
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
	}
}

// Register は受信者の接続を登録する。
//
// 同じ識別子のエントリが既に存在する場合は新しい接続で置き換える
// （後勝ち）。置き換えられた古い接続を強制切断はせず、自身の
// タイムアウト・エラー経路での終了に任せる。登録と同時に、接続の
// 終端遷移時にレジストリから自己解除するフックを仕込む。
func (r *Registry) Register(recipient string, conn *Connection) {
	conn.setOnTerminal(func() {
		r.release(recipient, conn)
	})

	r.mu.Lock()
	r.conns[recipient] = conn
	r.mu.Unlock()
}

// Lookup は受信者の現在の接続を返す。未登録の場合はfalseを返す。
func (r *Registry) Lookup(recipient string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[recipient]
	return conn, ok
}

// Unregister は受信者のエントリを削除する。
// エントリが存在しない場合も何もせず成功する（冪等）。
func (r *Registry) Unregister(recipient string) {
	r.mu.Lock()
	delete(r.conns, recipient)
	r.mu.Unlock()
}

// Len は現在登録されている接続数を返す。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// release は現在のエントリがconn自身である場合に限り削除する。
//
// 置き換えで索引から外れた古い接続が後から終端遷移しても、
// 新しい接続のエントリを誤って削除しないためのガード。
func (r *Registry) release(recipient string, conn *Connection) {
	r.mu.Lock()
	if current, ok := r.conns[recipient]; ok && current == conn {
		delete(r.conns, recipient)
	}
	r.mu.Unlock()
}
