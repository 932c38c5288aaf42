package tips

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

// FeedResolver はソースURLからフィードURLを解決するインターフェース。
// Detectorの抽象化。
type FeedResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// SourceBootstrapper は設定ファイルで指定されたソースURLを
// tip_sourcesテーブルへ登録する。ワーカー起動時に1回実行される。
type SourceBootstrapper struct {
	sourceRepo repository.TipSourceRepository
	resolver   FeedResolver
}

// NewSourceBootstrapper はSourceBootstrapperを生成する。
func NewSourceBootstrapper(sourceRepo repository.TipSourceRepository, resolver FeedResolver) *SourceBootstrapper {
	return &SourceBootstrapper{
		sourceRepo: sourceRepo,
		resolver:   resolver,
	}
}

// EnsureSources は設定されたURLごとにソースレコードの存在を保証する。
// URLがHTMLページの場合はフィードURLを自動検出する。検出に失敗した場合は
// 指定されたURLをそのままフィードURLとして登録する（初回フェッチで
// パース失敗としてカウントされ、最終的に停止される）。
// 既に登録済みのURLはスキップする。冪等。
func (b *SourceBootstrapper) EnsureSources(ctx context.Context, sourceURLs []string) error {
	for _, rawURL := range sourceURLs {
		feedURL, err := b.resolver.Resolve(ctx, rawURL)
		if err != nil {
			slog.Warn("フィードURLの自動検出に失敗、指定URLをそのまま使用します",
				slog.String("source_url", rawURL),
				slog.String("error", err.Error()),
			)
			feedURL = rawURL
		}

		existing, err := b.sourceRepo.FindByFeedURL(ctx, feedURL)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		now := time.Now()
		source := &model.TipSource{
			ID:          uuid.New().String(),
			SiteURL:     rawURL,
			FeedURL:     feedURL,
			FetchStatus: model.FetchStatusActive,
			NextFetchAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := b.sourceRepo.Create(ctx, source); err != nil {
			return err
		}

		slog.Info("ティップスソースを登録しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", feedURL),
		)
	}

	return nil
}
