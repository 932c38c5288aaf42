package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

// TipsUpserter はティップス記事のUPSERT処理のインターフェース。
type TipsUpserter interface {
	UpsertTips(ctx context.Context, sourceID string, parsedTips []model.ParsedTip) (int, int, error)
}

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Fetcher は個別ティップスソースのHTTPフェッチとパースを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証、
// gofeedによるパース、UpsertServiceによる記事保存を実行する。
type Fetcher struct {
	sourceRepo    repository.TipSourceRepository
	upsertSvc     TipsUpserter
	ssrfGuard     SSRFValidator
	logger        *slog.Logger
	timeout       time.Duration
	maxBodySize   int64
	fetchInterval time.Duration
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(
	sourceRepo repository.TipSourceRepository,
	upsertSvc TipsUpserter,
	ssrfGuard SSRFValidator,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
	fetchInterval time.Duration,
) *Fetcher {
	if fetchInterval <= 0 {
		fetchInterval = time.Hour
	}
	return &Fetcher{
		sourceRepo:    sourceRepo,
		upsertSvc:     upsertSvc,
		ssrfGuard:     ssrfGuard,
		logger:        logger,
		timeout:       timeout,
		maxBodySize:   maxBodySize,
		fetchInterval: fetchInterval,
	}
}

// Fetch はソースをフェッチし、結果に応じてソース状態を更新する。
// SourceFetcherServiceインターフェースを実装する。
func (f *Fetcher) Fetch(ctx context.Context, source *model.TipSource) error {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(source.FeedURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyStopSource(source, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		if updateErr := f.sourceRepo.UpdateFetchState(ctx, source); updateErr != nil {
			f.logger.Error("ソース状態の更新に失敗しました",
				slog.String("source_id", source.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// HTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", "SeniorTech/1.0 Tips Fetcher")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	// 条件付きGET: ETag
	if source.Etag != "" {
		req.Header.Set("If-None-Match", source.Etag)
	}
	// 条件付きGET: Last-Modified
	if source.LastModified != "" {
		req.Header.Set("If-Modified-Since", source.LastModified)
	}

	// HTTPリクエスト実行
	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(source, fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		if updateErr := f.sourceRepo.UpdateFetchState(ctx, source); updateErr != nil {
			f.logger.Error("ソース状態の更新に失敗しました",
				slog.String("source_id", source.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	// HTTPステータスに基づく処理分岐
	result := ClassifyHTTPStatus(resp.StatusCode)

	switch result {
	case FetchResultNotModified:
		// 304: コンテンツ未変更 - next_fetch_atのみ更新
		f.logger.Info("ソースは未変更です（304）",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		ApplySuccess(source, f.fetchInterval)
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultStop:
		// 404/410/401/403: フェッチ停止
		reason := fmt.Sprintf("HTTPステータス %d によりフェッチを停止しました", resp.StatusCode)
		f.logger.Warn("ソースフェッチを停止します",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.String("reason", reason),
		)
		ApplyStopSource(source, reason)
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultBackoff:
		// 429/5xx: バックオフ
		reason := fmt.Sprintf("HTTPステータス %d によりバックオフを適用しました", resp.StatusCode)
		f.logger.Warn("ソースフェッチにバックオフを適用します",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("consecutive_errors", source.ConsecutiveErrors+1),
		)
		ApplyBackoff(source, reason)
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultOK:
		// 200: 正常フェッチ - 以下で処理を続行
	default:
		// その他のステータスコード
		f.logger.Warn("予期しないHTTPステータスコード",
			slog.String("source_id", source.ID),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyBackoff(source, fmt.Sprintf("予期しないHTTPステータス: %d", resp.StatusCode))
		return f.sourceRepo.UpdateFetchState(ctx, source)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(source, fmt.Sprintf("レスポンス読み取り失敗: %s", err.Error()))
		return f.sourceRepo.UpdateFetchState(ctx, source)
	}

	// ETag/Last-Modifiedを保存
	if etag := resp.Header.Get("ETag"); etag != "" {
		source.Etag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		source.LastModified = lastMod
	}

	// gofeedでフィードをパース
	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		f.logger.Error("ソースのパースに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(source, err.Error())
		if updateErr := f.sourceRepo.UpdateFetchState(ctx, source); updateErr != nil {
			f.logger.Error("ソース状態の更新に失敗しました",
				slog.String("source_id", source.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil // パース失敗はフェッチエラーとしない（カウントして継続）
	}

	// ソースタイトルを更新
	if parsedFeed.Title != "" {
		source.Title = parsedFeed.Title
	}
	if parsedFeed.Link != "" {
		source.SiteURL = parsedFeed.Link
	}

	// gofeedの記事をParsedTipに変換
	parsedTips := convertGofeedItems(parsedFeed.Items)

	// UpsertServiceで記事を保存
	inserted, updated, err := f.upsertSvc.UpsertTips(ctx, source.ID, parsedTips)
	if err != nil {
		f.logger.Error("記事のUPSERTに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(source, fmt.Sprintf("記事UPSERT失敗: %s", err.Error()))
		if updateErr := f.sourceRepo.UpdateFetchState(ctx, source); updateErr != nil {
			f.logger.Error("ソース状態の更新に失敗しました",
				slog.String("source_id", source.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil
	}

	ApplySuccess(source, f.fetchInterval)

	// ソース状態を更新
	if updateErr := f.sourceRepo.UpdateFetchState(ctx, source); updateErr != nil {
		f.logger.Error("ソース状態の更新に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("error", updateErr.Error()),
		)
		return updateErr
	}

	f.logger.Info("ソースフェッチが完了しました",
		slog.String("source_id", source.ID),
		slog.String("feed_url", source.FeedURL),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("tips_inserted", inserted),
		slog.Int("tips_updated", updated),
		slog.Int("tips_total", len(parsedTips)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// convertGofeedItems はgofeedの記事をmodel.ParsedTipに変換する。
func convertGofeedItems(items []*gofeed.Item) []model.ParsedTip {
	parsedTips := make([]model.ParsedTip, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		parsed := model.ParsedTip{
			Title:   item.Title,
			Link:    item.Link,
			Summary: item.Description,
		}

		// GUIDの設定: gofeedはGUIDをitem.GUIDに格納
		if item.GUID != "" {
			parsed.GuidOrID = item.GUID
		}

		// 公開日時
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			parsed.PublishedAt = &t
		} else if item.UpdatedParsed != nil {
			t := *item.UpdatedParsed
			parsed.PublishedAt = &t
		}

		// SummaryがなくContentがある場合はContentを使用
		if parsed.Summary == "" && item.Content != "" {
			parsed.Summary = item.Content
		}

		// LinkがなくGUIDがURL形式の場合はGUIDをLinkとして使用
		if parsed.Link == "" && parsed.GuidOrID != "" &&
			(strings.HasPrefix(parsed.GuidOrID, "http://") || strings.HasPrefix(parsed.GuidOrID, "https://")) {
			parsed.Link = parsed.GuidOrID
		}

		parsedTips = append(parsedTips, parsed)
	}

	return parsedTips
}
