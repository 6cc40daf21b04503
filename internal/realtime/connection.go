package realtime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nao1215/tournament-notification/pkg/event"
)

// State は接続のライフサイクル状態を表す。
type State int

const (
	// StateOpen は接続が確立済みで配信可能な状態。
	StateOpen State = iota
	// StateCompleted はクライアントが正常に切断した終端状態。
	StateCompleted
	// StateTimedOut はタイムアウトにより終了した終端状態。
	StateTimedOut
	// StateErrored は送信失敗により終了した終端状態。
	StateErrored
)

// String は状態のログ表示用文字列を返す。
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrConnectionClosed は終端状態の接続への送信を表すエラー。
var ErrConnectionClosed = errors.New("接続は既に終了しています")

// sendBufferSize は接続ごとの送信バッファに保持できる通知数。
// クライアントの読み出しが追いつかずバッファが満杯になった場合、
// その接続は切断されたものとみなす。
const sendBufferSize = 16

// Connection は1人の受信者に紐づくサーバーからクライアントへの
// 単方向プッシュチャネルを表す。
//
// 状態遷移は Open から Completed / TimedOut / Errored のいずれかへの
// 一方向のみで、終端状態から抜けることはない。どの goroutine が先に
// 終端条件を観測しても安全なように、遷移は単一の transition 関数に
// 集約し、終端フックは一度だけ呼び出す。
type Connection struct {
	// recipient は登録時に紐づけられた受信者の識別子。
	recipient string
	// events は配信待ち通知を保持する送信バッファ。
	events chan event.OutgoingNotification
	// done は終端状態への遷移時にクローズされるチャネル。
	done chan struct{}
	// mu はstateとonTerminalを保護する。
	mu sync.Mutex
	// state は接続の現在状態。
	state State
	// onTerminal は終端遷移時に一度だけ呼ばれるフック。
	// レジストリが登録時に自己解除処理を設定する。
	onTerminal func()
}

// NewConnection は指定された受信者に紐づく新しい接続を生成する。
// 生成直後の状態はOpenで、有効期限は持たない。
func NewConnection(recipient string) *Connection {
	return &Connection{
		recipient: recipient,
		events:    make(chan event.OutgoingNotification, sendBufferSize),
		done:      make(chan struct{}),
		state:     StateOpen,
	}
}

// Recipient はこの接続に紐づく受信者の識別子を返す。
func (c *Connection) Recipient() string {
	return c.recipient
}

// Events は配信された通知を受け取るチャネルを返す。
// SSEハンドラがこのチャネルを読み出してクライアントへ書き込む。
func (c *Connection) Events() <-chan event.OutgoingNotification {
	return c.events
}

// Done は接続が終端状態へ遷移したときにクローズされるチャネルを返す。
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// State は接続の現在状態を返す。
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Push は通知を1件配信する。
//
// 接続が既に終端状態の場合はErrConnectionClosedを返す。送信バッファが
// 満杯の場合はクライアントが切断済みか読み出し不能とみなし、接続を
// Erroredへ遷移させてエラーを返す。遷移の副作用としてレジストリからの
// 自己解除が行われるため、呼び出し側の後始末は不要。
func (c *Connection) Push(n event.OutgoingNotification) error {
	c.mu.Lock()
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state=%s", ErrConnectionClosed, state)
	}

	select {
	case c.events <- n:
		c.mu.Unlock()
		return nil
	default:
		c.mu.Unlock()
		c.transition(StateErrored)
		return fmt.Errorf("送信バッファが満杯のため接続を切断しました: recipient=%s", c.recipient)
	}
}

// Complete はクライアントの正常切断による終端遷移を行う。
// 既に終端状態の場合は何もしない。
func (c *Connection) Complete() {
	c.transition(StateCompleted)
}

// Timeout はタイムアウトによる終端遷移を行う。
// 既に終端状態の場合は何もしない。
func (c *Connection) Timeout() {
	c.transition(StateTimedOut)
}

// transition は接続を終端状態へ遷移させる。
// 最初に終端条件を観測した呼び出しだけが遷移とフック呼び出しを行い、
// 以降の呼び出しは何もしないため、複数経路からの競合は無害。
func (c *Connection) transition(to State) bool {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return false
	}
	c.state = to
	hook := c.onTerminal
	close(c.done)
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true
}

// setOnTerminal は終端遷移時のフックを設定する。レジストリが登録時に使用する。
func (c *Connection) setOnTerminal(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTerminal = hook
}
