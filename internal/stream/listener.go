package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/seniortech/backend/internal/model"
)

// NotifyChannel はデータベーストリガーが通知を送るチャネル名。
// マイグレーションで定義されたトリガー関数と一致している必要がある。
const NotifyChannel = "testimonials_changed"

// SnapshotProvider はフィード全件のスナップショットを取得するインターフェース。
// testimonial.Serviceの部分集合として定義する。
type SnapshotProvider interface {
	Snapshot(ctx context.Context) ([]*model.Testimonial, error)
}

// ListenerConfig はデータベース変更リスナーの設定。
type ListenerConfig struct {
	DatabaseURL          string
	AppID                string        // 通知ペイロードとの照合に使用
	MinReconnectInterval time.Duration // 再接続の最小間隔
	MaxReconnectInterval time.Duration // 再接続の最大間隔
	PingInterval         time.Duration // 接続維持のPing間隔
}

// DefaultListenerConfig は標準のリスナー設定を返す。
func DefaultListenerConfig(databaseURL, appID string) ListenerConfig {
	return ListenerConfig{
		DatabaseURL:          databaseURL,
		AppID:                appID,
		MinReconnectInterval: 10 * time.Second,
		MaxReconnectInterval: time.Minute,
		PingInterval:         90 * time.Second,
	}
}

// Listener はPostgreSQLのLISTEN/NOTIFYで変更通知を受け取り、
// フィードを再取得してHubへブロードキャストする。
// 通知は「変更があった」という合図としてのみ扱い、配信内容は常に
// データベースから読み直した全件スナップショットを使う。
type Listener struct {
	config   ListenerConfig
	provider SnapshotProvider
	hub      *Hub
}

// NewListener はListenerを生成する。
func NewListener(config ListenerConfig, provider SnapshotProvider, hub *Hub) *Listener {
	return &Listener{
		config:   config,
		provider: provider,
		hub:      hub,
	}
}

// Run は変更通知の購読ループを開始する。
// 起動時にまず初回スナップショットを配信し、その後は通知のたびに再配信する。
// 接続断はpq.Listenerが自動的に再接続し、再接続後は取りこぼしを補うため
// スナップショットを再取得する。
// コンテキストのキャンセルで正常終了する。
func (l *Listener) Run(ctx context.Context) error {
	pqListener := pq.NewListener(
		l.config.DatabaseURL,
		l.config.MinReconnectInterval,
		l.config.MaxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				slog.Error("testimonial listener connection event",
					slog.Int("event", int(event)),
					slog.String("error", err.Error()),
				)
			}
		},
	)
	defer pqListener.Close()

	if err := pqListener.Listen(NotifyChannel); err != nil {
		return err
	}

	slog.Info("testimonial change listener started",
		slog.String("channel", NotifyChannel),
		slog.String("app_id", l.config.AppID),
	)

	// 初回スナップショットの配信
	l.refresh(ctx)

	pingTicker := time.NewTicker(l.config.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("testimonial change listener stopped")
			return nil

		case notification := <-pqListener.Notify:
			// nil通知は再接続を意味する。取りこぼしを補うため再取得する。
			if notification == nil {
				l.refresh(ctx)
				continue
			}
			// 他のデプロイメント宛の通知はスキップ
			if notification.Extra != "" && notification.Extra != l.config.AppID {
				continue
			}
			l.refresh(ctx)

		case <-pingTicker.C:
			if err := pqListener.Ping(); err != nil {
				slog.Warn("testimonial listener ping failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// refresh はフィード全件を再取得してブロードキャストする。
// 取得に失敗した場合はフォールトイベントを配信する。直前のスナップショットは
// Hubが保持したままにするため、クライアントの表示は消えない。
func (l *Listener) refresh(ctx context.Context) {
	testimonials, err := l.provider.Snapshot(ctx)
	if err != nil {
		slog.Error("failed to refresh testimonial snapshot",
			slog.String("error", err.Error()),
		)
		l.hub.Broadcast(Event{
			Type:  EventFault,
			Error: model.NewSubscriptionFaultError("failed to load testimonials"),
		})
		return
	}

	l.hub.Broadcast(Event{
		Type:         EventSnapshot,
		Testimonials: testimonials,
	})
}
