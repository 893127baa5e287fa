package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// slowConn counts writes and trips a flag if two writers ever overlap.
type slowConn struct {
	writes     int64
	inFlight   int64
	overlapped int64
}

func (c *slowConn) WriteJSON(v interface{}) error {
	if atomic.AddInt64(&c.inFlight, 1) > 1 {
		atomic.StoreInt64(&c.overlapped, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt64(&c.inFlight, -1)
	atomic.AddInt64(&c.writes, 1)
	return nil
}

func TestBroadcastChatEventSerializesWrites(t *testing.T) {
	conn := &slowConn{}
	sub := subscribeChat("sess-serial", conn)
	defer unsubscribeChat("sess-serial", sub)

	const posts = 10
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			broadcastChatEvent(chatEvent{SessionID: "sess-serial", Role: "user", Content: "hi"})
		}()
	}
	wg.Wait()

	if atomic.LoadInt64(&conn.overlapped) != 0 {
		t.Error("concurrent broadcasts must not write to one connection at the same time")
	}
	if got := atomic.LoadInt64(&conn.writes); got != posts {
		t.Errorf("expected %d writes, got %d", posts, got)
	}
}

func TestBroadcastChatEventScopedToSession(t *testing.T) {
	inSession := &slowConn{}
	otherSession := &slowConn{}

	sub1 := subscribeChat("sess-a", inSession)
	sub2 := subscribeChat("sess-b", otherSession)
	defer unsubscribeChat("sess-a", sub1)
	defer unsubscribeChat("sess-b", sub2)

	broadcastChatEvent(chatEvent{SessionID: "sess-a", Role: "assistant", Content: "reply"})

	if atomic.LoadInt64(&inSession.writes) != 1 {
		t.Errorf("session subscriber should receive the event, got %d writes", inSession.writes)
	}
	if atomic.LoadInt64(&otherSession.writes) != 0 {
		t.Errorf("other sessions must not receive the event, got %d writes", otherSession.writes)
	}
}

func TestUnsubscribeChatStopsDelivery(t *testing.T) {
	conn := &slowConn{}
	sub := subscribeChat("sess-gone", conn)
	unsubscribeChat("sess-gone", sub)

	broadcastChatEvent(chatEvent{SessionID: "sess-gone", Role: "user", Content: "hi"})

	if atomic.LoadInt64(&conn.writes) != 0 {
		t.Errorf("unsubscribed connection must not receive events, got %d writes", conn.writes)
	}

	chatHub.mu.RLock()
	_, present := chatHub.subs["sess-gone"]
	chatHub.mu.RUnlock()
	if present {
		t.Error("empty session should be dropped from the hub")
	}
}
