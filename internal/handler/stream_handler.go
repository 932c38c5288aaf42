package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/stream"
)

// StreamMetrics はSSE購読者数を記録するインターフェース。
type StreamMetrics interface {
	SetStreamSubscribers(count int)
}

// StreamHandler は体験談フィードのSSE配信ハンドラー。
// 購読中のクライアントにはフィード変更のたびに全件スナップショットが配信される。
type StreamHandler struct {
	hub     *stream.Hub
	metrics StreamMetrics
}

// NewStreamHandler はStreamHandlerを生成する。metricsはnil可。
func NewStreamHandler(hub *stream.Hub, metrics StreamMetrics) *StreamHandler {
	return &StreamHandler{
		hub:     hub,
		metrics: metrics,
	}
}

// Stream はSSE接続を確立し、スナップショット/障害イベントを配信する。
// GET /api/testimonials/stream
// 購読解除はクライアントの切断（リクエストコンテキストのキャンセル）。
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     "STREAMING_UNSUPPORTED",
			Message:  "Live updates are not available on this connection.",
			Category: "system",
			Action:   "Please reload the page to see the latest testimonials.",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsubscribe := h.hub.Subscribe()
	defer func() {
		unsubscribe()
		h.recordSubscribers()
	}()
	h.recordSubscribers()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Warn("SSEイベントの書き込みに失敗しました",
					slog.String("error", err.Error()),
				)
				return
			}
			flusher.Flush()
		}
	}
}

// recordSubscribers は現在の購読者数をメトリクスに反映する。
func (h *StreamHandler) recordSubscribers() {
	if h.metrics != nil {
		h.metrics.SetStreamSubscribers(h.hub.SubscriberCount())
	}
}

// writeSSEEvent はイベントをSSEフレームとして書き込む。
func writeSSEEvent(w http.ResponseWriter, event stream.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("イベントの書き込みに失敗: %w", err)
	}
	return nil
}
