package tips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
	"github.com/seniortech/backend/internal/security"
)

// UpsertService は記事の同一性判定とUPSERT処理を提供する。
// 2段階の同一性判定ロジックにより、重複登録を防ぎつつ既存記事の上書き更新を行う。
type UpsertService struct {
	tipRepo   repository.TipRepository
	sanitizer security.ContentSanitizerService
}

// NewUpsertService はUpsertServiceの新しいインスタンスを生成する。
func NewUpsertService(
	tipRepo repository.TipRepository,
	sanitizer security.ContentSanitizerService,
) *UpsertService {
	return &UpsertService{
		tipRepo:   tipRepo,
		sanitizer: sanitizer,
	}
}

// UpsertTips はフィードから取得した記事をUPSERTする。
// 2段階の同一性判定ロジック:
//  1. (source_id, guid_or_id) - 最優先
//  2. (source_id, link) - 第2優先
//
// 戻り値は挿入数、更新数、エラー。
func (s *UpsertService) UpsertTips(
	ctx context.Context,
	sourceID string,
	parsedTips []model.ParsedTip,
) (inserted int, updated int, err error) {
	if len(parsedTips) == 0 {
		return 0, 0, nil
	}

	now := time.Now()

	for _, parsed := range parsedTips {
		// タイトルのない記事はスキップ
		if parsed.Title == "" {
			continue
		}

		sanitizedSummary := s.sanitizer.SanitizeSummary(parsed.Summary)

		existing, findErr := s.findExistingTip(ctx, sourceID, parsed)
		if findErr != nil {
			slog.Error("記事の同一性判定でエラー",
				"source_id", sourceID,
				"guid_or_id", parsed.GuidOrID,
				"error", findErr,
			)
			return inserted, updated, fmt.Errorf("記事の同一性判定に失敗: %w", findErr)
		}

		if existing != nil {
			// 既存記事を上書き更新
			existing.GuidOrID = parsed.GuidOrID
			existing.Title = parsed.Title
			existing.Link = parsed.Link
			existing.Summary = sanitizedSummary
			existing.UpdatedAt = now
			if parsed.PublishedAt != nil {
				existing.PublishedAt = parsed.PublishedAt
			}
			// 既存記事の更新時、parsed.PublishedAtがnilの場合は既存の値を維持

			if updateErr := s.tipRepo.Update(ctx, existing); updateErr != nil {
				slog.Error("記事の更新でエラー",
					"source_id", sourceID,
					"tip_id", existing.ID,
					"error", updateErr,
				)
				return inserted, updated, fmt.Errorf("記事の更新に失敗: %w", updateErr)
			}
			updated++
		} else {
			tip := &model.Tip{
				ID:          uuid.New().String(),
				SourceID:    sourceID,
				GuidOrID:    parsed.GuidOrID,
				Title:       parsed.Title,
				Link:        parsed.Link,
				Summary:     sanitizedSummary,
				PublishedAt: parsed.PublishedAt,
				FetchedAt:   now,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			// 公開日未設定の場合は取得時刻を代用する
			if tip.PublishedAt == nil {
				tip.PublishedAt = &now
			}

			if createErr := s.tipRepo.Create(ctx, tip); createErr != nil {
				slog.Error("記事の挿入でエラー",
					"source_id", sourceID,
					"guid_or_id", parsed.GuidOrID,
					"error", createErr,
				)
				return inserted, updated, fmt.Errorf("記事の挿入に失敗: %w", createErr)
			}
			inserted++
		}
	}

	slog.Info("記事UPSERT完了",
		"source_id", sourceID,
		"inserted", inserted,
		"updated", updated,
	)

	return inserted, updated, nil
}

// findExistingTip は2段階の同一性判定で既存記事を検索する。
// 優先順位: (source_id, guid_or_id) > (source_id, link)
func (s *UpsertService) findExistingTip(
	ctx context.Context,
	sourceID string,
	parsed model.ParsedTip,
) (*model.Tip, error) {
	// 第1優先: source_id + guid_or_id
	if parsed.GuidOrID != "" {
		tip, err := s.tipRepo.FindBySourceAndGUID(ctx, sourceID, parsed.GuidOrID)
		if err != nil {
			return nil, err
		}
		if tip != nil {
			return tip, nil
		}
	}

	// 第2優先: source_id + link
	if parsed.Link != "" {
		tip, err := s.tipRepo.FindBySourceAndLink(ctx, sourceID, parsed.Link)
		if err != nil {
			return nil, err
		}
		if tip != nil {
			return tip, nil
		}
	}

	return nil, nil
}
