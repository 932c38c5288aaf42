// Package tips はシニア向けテックヒント記事の管理機能を提供する。
//
// 記事は運営がキュレーションした少数の外部フィードからワーカーが取得し、
// サニタイズ済みの要約とともにサイトの「テックヒント」コーナーで配信される。
package tips

import (
	"context"
	"fmt"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

const (
	// defaultListLimit はListRecentのデフォルト件数。
	defaultListLimit = 20
	// maxListLimit はListRecentの最大件数。
	maxListLimit = 100
)

// Service はヒント記事の読み取りロジックを提供する。
type Service struct {
	tipRepo repository.TipRepository
}

// NewService はServiceを生成する。
func NewService(tipRepo repository.TipRepository) *Service {
	return &Service{tipRepo: tipRepo}
}

// ListRecent は公開日の新しい順に記事を返す。
// limitが0以下の場合はデフォルト件数、最大件数を超える場合は最大件数に丸める。
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*model.Tip, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	tips, err := s.tipRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	return tips, nil
}
