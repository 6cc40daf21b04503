package realtime

import (
	"testing"
)

// TestDispatcherDispatch はディスパッチャのファンアウト配信を検証する。
func TestDispatcherDispatch(t *testing.T) {
	t.Parallel()

	t.Run("購読中の受信者に通知が届く", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		d := NewDispatcher(r)

		conn := NewConnection("alice")
		r.Register("alice", conn)

		d.Dispatch([]string{"alice"}, testNotification("notif-1"))

		select {
		case n := <-conn.Events():
			if n.ID != "notif-1" {
				t.Errorf("通知ID: got %s, want notif-1", n.ID)
			}
		default:
			t.Fatal("購読中の受信者に通知が届いていません")
		}
	})

	t.Run("未購読の受信者はスキップされる", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		d := NewDispatcher(r)

		// 誰も購読していない状態での配信はパニックせず何もしない
		d.Dispatch([]string{"alice", "bob"}, testNotification("notif-1"))

		if r.Len() != 0 {
			t.Errorf("Len(): got %d, want 0", r.Len())
		}
	})

	t.Run("購読中の受信者のみに届き未購読の受信者は影響しない", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		d := NewDispatcher(r)

		alice := NewConnection("alice")
		r.Register("alice", alice)

		// aliceは購読中、bobはオフライン
		d.Dispatch([]string{"alice", "bob"}, testNotification("notif-1"))

		select {
		case n := <-alice.Events():
			if n.ID != "notif-1" {
				t.Errorf("通知ID: got %s, want notif-1", n.ID)
			}
		default:
			t.Fatal("aliceに通知が届いていません")
		}
	})

	t.Run("一部の受信者への送信失敗後も残りの受信者へ配信を続行する", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		d := NewDispatcher(r)

		// aliceのバッファを満杯にして送信失敗を引き起こす
		alice := NewConnection("alice")
		r.Register("alice", alice)
		for i := 0; i < sendBufferSize; i++ {
			if err := alice.Push(testNotification("filler")); err != nil {
				t.Fatalf("バッファ充填中にエラーが発生: %v", err)
			}
		}

		bob := NewConnection("bob")
		r.Register("bob", bob)

		d.Dispatch([]string{"alice", "bob"}, testNotification("notif-1"))

		// aliceは切断され、レジストリから解除される
		if got := alice.State(); got != StateErrored {
			t.Errorf("aliceのstate: got %s, want %s", got, StateErrored)
		}
		if _, ok := r.Lookup("alice"); ok {
			t.Error("送信失敗したaliceのエントリが残っています")
		}

		// bobには配信が継続される
		select {
		case n := <-bob.Events():
			if n.ID != "notif-1" {
				t.Errorf("通知ID: got %s, want notif-1", n.ID)
			}
		default:
			t.Fatal("bobに通知が届いていません")
		}
	})

	t.Run("複数回の配信が順番にバッファへ積まれる", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		d := NewDispatcher(r)

		conn := NewConnection("alice")
		r.Register("alice", conn)

		d.Dispatch([]string{"alice"}, testNotification("notif-1"))
		d.Dispatch([]string{"alice"}, testNotification("notif-2"))

		first := <-conn.Events()
		second := <-conn.Events()
		if first.ID != "notif-1" || second.ID != "notif-2" {
			t.Errorf("配信順: got %s, %s, want notif-1, notif-2", first.ID, second.ID)
		}
	})
}
