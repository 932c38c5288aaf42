// Package stream はお客様の声フィードのリアルタイム配信を提供する。
//
// データベースの変更通知を購読し、接続中の全クライアントへ
// フィード全体のスナップショットをSSEで配信する。差分配信は行わず、
// 変更のたびに全件を置き換える。
package stream

import (
	"sync"

	"github.com/seniortech/backend/internal/model"
)

// EventType は配信イベントの種別。
type EventType string

const (
	// EventSnapshot はフィード全件のスナップショット配信。
	EventSnapshot EventType = "snapshot"
	// EventFault は購読障害の通知。クライアントは直前のスナップショットを保持したまま
	// エラー表示を行う。
	EventFault EventType = "fault"
)

// Event はクライアントへ配信されるイベント。
type Event struct {
	Type         EventType            `json:"type"`
	Testimonials []*model.Testimonial `json:"testimonials,omitempty"`
	Error        *model.APIError      `json:"error,omitempty"`
}

// subscriberBufferSize は購読チャネルのバッファサイズ。
// バッファが満杯のクライアントへの配信はスキップされる（最新のスナップショットは
// 次回の配信で必ず届くため、取りこぼしは自己修復する）。
const subscriberBufferSize = 8

// Hub は購読クライアントの管理とイベントのブロードキャストを行う。
// 全メソッドはスレッドセーフ。
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	lastEvent   *Event
}

// NewHub はHubを生成する。
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe は新しい購読チャネルを登録して返す。
// 直近のスナップショットがあれば即座にチャネルへ送る（接続直後から
// 現在のフィードを表示できる）。
// 返されるunsubscribe関数は何度呼んでも安全（冪等）。
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	if h.lastEvent != nil {
		ch <- *h.lastEvent
	}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
		})
	}

	return ch, unsubscribe
}

// Broadcast は全購読クライアントへイベントを配信する。
// スナップショットイベントは直近イベントとして保持され、以降の新規購読者へ
// 即座に配信される。フォールトイベントは保持しない（直前のスナップショットを
// 新規購読者にも見せるため）。
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	if event.Type == EventSnapshot {
		h.lastEvent = &event
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// 受信が追いついていないクライアントはスキップ
		}
	}
	h.mu.Unlock()
}

// SubscriberCount は現在の購読クライアント数を返す。メトリクス用。
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
