package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/stream"
)

// recordingStreamMetrics は購読者数の記録を捕捉する。
type recordingStreamMetrics struct {
	mu     sync.Mutex
	counts []int
}

func (m *recordingStreamMetrics) SetStreamSubscribers(count int) {
	m.mu.Lock()
	m.counts = append(m.counts, count)
	m.mu.Unlock()
}

func (m *recordingStreamMetrics) recorded() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.counts...)
}

// runStream はキャンセル可能なコンテキストでStreamを実行し、
// done後のレスポンスボディを返す。
func runStream(t *testing.T, h *StreamHandler, before func(), during func(cancel context.CancelFunc)) *httptest.ResponseRecorder {
	t.Helper()

	if before != nil {
		before()
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/testimonials/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Stream(w, req)
		close(done)
	}()

	during(cancel)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ハンドラーが終了しない")
	}
	return w
}

func TestStream_DeliversLastSnapshotOnConnect(t *testing.T) {
	hub := stream.NewHub()
	h := NewStreamHandler(hub, nil)

	w := runStream(t, h,
		func() {
			hub.Broadcast(stream.Event{
				Type: stream.EventSnapshot,
				Testimonials: []*model.Testimonial{
					{ID: "t-1", Quote: "タブレットの使い方が分かるようになりました", Author: "Margaret", City: "Springfield"},
				},
			})
		},
		func(cancel context.CancelFunc) {
			time.Sleep(50 * time.Millisecond)
			cancel()
		},
	)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: snapshot\n") {
		t.Errorf("スナップショットフレームが含まれるべき: %s", body)
	}
	if !strings.Contains(body, `"type":"snapshot"`) {
		t.Errorf("イベント種別がデータに含まれるべき: %s", body)
	}
	if !strings.Contains(body, `"id":"t-1"`) {
		t.Errorf("体験談レコードが含まれるべき: %s", body)
	}
}

func TestStream_BroadcastReachesConnectedClient(t *testing.T) {
	hub := stream.NewHub()
	h := NewStreamHandler(hub, nil)

	w := runStream(t, h, nil,
		func(cancel context.CancelFunc) {
			// 購読登録を待ってから配信する
			waitForSubscribers(t, hub, 1)
			hub.Broadcast(stream.Event{
				Type: stream.EventSnapshot,
				Testimonials: []*model.Testimonial{
					{ID: "t-9", Quote: "孫とビデオ通話ができました", Author: "Harold", City: "Dayton"},
				},
			})
			time.Sleep(50 * time.Millisecond)
			cancel()
		},
	)

	if !strings.Contains(w.Body.String(), `"id":"t-9"`) {
		t.Errorf("配信されたスナップショットが届くべき: %s", w.Body.String())
	}
}

func TestStream_FaultEventDelivered(t *testing.T) {
	hub := stream.NewHub()
	h := NewStreamHandler(hub, nil)

	w := runStream(t, h, nil,
		func(cancel context.CancelFunc) {
			waitForSubscribers(t, hub, 1)
			hub.Broadcast(stream.Event{
				Type:  stream.EventFault,
				Error: model.NewSubscriptionFaultError("listener disconnected"),
			})
			time.Sleep(50 * time.Millisecond)
			cancel()
		},
	)

	body := w.Body.String()
	if !strings.Contains(body, "event: fault\n") {
		t.Errorf("フォールトフレームが含まれるべき: %s", body)
	}
	if !strings.Contains(body, model.ErrCodeSubscriptionFault) {
		t.Errorf("エラーコードが含まれるべき: %s", body)
	}
}

func TestStream_RecordsSubscriberCount(t *testing.T) {
	hub := stream.NewHub()
	metrics := &recordingStreamMetrics{}
	h := NewStreamHandler(hub, metrics)

	runStream(t, h, nil,
		func(cancel context.CancelFunc) {
			waitForSubscribers(t, hub, 1)
			cancel()
		},
	)

	counts := metrics.recorded()
	if len(counts) != 2 {
		t.Fatalf("記録回数 = %d, want 2 (接続時と切断時)", len(counts))
	}
	if counts[0] != 1 {
		t.Errorf("接続時の購読者数 = %d, want 1", counts[0])
	}
	if counts[1] != 0 {
		t.Errorf("切断時の購読者数 = %d, want 0", counts[1])
	}
}

func waitForSubscribers(t *testing.T, hub *stream.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("購読者数が%dに達しない", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
