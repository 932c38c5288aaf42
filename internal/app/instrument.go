package app

import (
	"context"
	"time"

	"github.com/seniortech/backend/internal/model"
	fetchpkg "github.com/seniortech/backend/internal/worker/fetch"
)

// fetchMetricsRecorder はフェッチ結果をメトリクスとして記録するインターフェース。
type fetchMetricsRecorder interface {
	RecordFetchSuccess(sourceID string)
	RecordFetchFailure(sourceID, reason string)
	RecordFetchLatency(duration time.Duration)
}

// instrumentedFetcher はフェッチャーをラップし、成否とレイテンシを記録する。
type instrumentedFetcher struct {
	inner   fetchpkg.SourceFetcherService
	metrics fetchMetricsRecorder
}

func newInstrumentedFetcher(inner fetchpkg.SourceFetcherService, metrics fetchMetricsRecorder) *instrumentedFetcher {
	return &instrumentedFetcher{
		inner:   inner,
		metrics: metrics,
	}
}

// Fetch は内側のフェッチャーへ委譲し、結果をメトリクスに記録する。
func (f *instrumentedFetcher) Fetch(ctx context.Context, source *model.TipSource) error {
	start := time.Now()
	err := f.inner.Fetch(ctx, source)
	f.metrics.RecordFetchLatency(time.Since(start))

	if err != nil {
		f.metrics.RecordFetchFailure(source.ID, "fetch_error")
		return err
	}
	f.metrics.RecordFetchSuccess(source.ID)
	return nil
}

var _ fetchpkg.SourceFetcherService = (*instrumentedFetcher)(nil)

// upsertMetricsRecorder はアップサートされた記事数を記録するインターフェース。
type upsertMetricsRecorder interface {
	RecordTipsUpserted(count int)
}

// instrumentedUpserter はアップサートサービスをラップし、反映件数を記録する。
type instrumentedUpserter struct {
	inner   fetchpkg.TipsUpserter
	metrics upsertMetricsRecorder
}

func newInstrumentedUpserter(inner fetchpkg.TipsUpserter, metrics upsertMetricsRecorder) *instrumentedUpserter {
	return &instrumentedUpserter{
		inner:   inner,
		metrics: metrics,
	}
}

// UpsertTips は内側のサービスへ委譲し、挿入・更新の合計件数を記録する。
func (u *instrumentedUpserter) UpsertTips(ctx context.Context, sourceID string, parsedTips []model.ParsedTip) (int, int, error) {
	inserted, updated, err := u.inner.UpsertTips(ctx, sourceID, parsedTips)
	if err == nil && inserted+updated > 0 {
		u.metrics.RecordTipsUpserted(inserted + updated)
	}
	return inserted, updated, err
}

var _ fetchpkg.TipsUpserter = (*instrumentedUpserter)(nil)
