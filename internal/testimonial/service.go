// Package testimonial はお客様の声フィードのビジネスロジックを提供する。
//
// フィードは常に新しい順の全件リストとして扱う。投稿はプレーンテキストに
// サニタイズされ、投稿者の主体ID（匿名・認証済みを問わない）が記録される。
package testimonial

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
	"github.com/seniortech/backend/internal/security"
)

// フィールドごとの最大文字数。
const (
	maxQuoteLength  = 1000
	maxAuthorLength = 100
	maxCityLength   = 100
)

// ServiceConfig はお客様の声サービスの設定。
type ServiceConfig struct {
	AppID string // デプロイメント識別子。フィードのスコープに使用する。
}

// Service はお客様の声に関するビジネスロジックを提供する。
type Service struct {
	repo      repository.TestimonialRepository
	sanitizer security.ContentSanitizerService
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	repo repository.TestimonialRepository,
	sanitizer security.ContentSanitizerService,
	config ServiceConfig,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		config:    config,
	}
}

// List はフィード全件を新しい順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Testimonial, error) {
	testimonials, err := s.repo.ListNewestFirst(ctx, s.config.AppID)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}

// Snapshot はリアルタイム配信用のフィード全件スナップショットを返す。
// stream.SnapshotProviderの実装。
func (s *Service) Snapshot(ctx context.Context) ([]*model.Testimonial, error) {
	return s.List(ctx)
}

// Submit は新しいお客様の声を投稿する。
// principalIDは投稿主体のID（匿名のguest_idまたは認証済みのuser_id）。
// 主体が未解決の場合はNOT_READYエラーを返す。
// 全フィールドはサニタイズ後に空白のみでないことを検証し、
// 失敗したフィールド名を含むVALIDATION_ERRORを返す。
// 作成時刻はデータベースが採番するため、結果のCreatedAtはサーバー時刻になる。
func (s *Service) Submit(ctx context.Context, principalID string, draft model.TestimonialDraft) (*model.Testimonial, error) {
	if principalID == "" {
		return nil, model.NewNotReadyError()
	}

	quote, err := s.cleanField("quote", draft.Quote, maxQuoteLength)
	if err != nil {
		return nil, err
	}
	author, err := s.cleanField("author", draft.Author, maxAuthorLength)
	if err != nil {
		return nil, err
	}
	city, err := s.cleanField("city", draft.City, maxCityLength)
	if err != nil {
		return nil, err
	}

	testimonial := &model.Testimonial{
		ID:          uuid.New().String(),
		Quote:       quote,
		Author:      author,
		City:        city,
		SubmittedBy: principalID,
	}

	if err := s.repo.Create(ctx, s.config.AppID, testimonial); err != nil {
		slog.Error("failed to persist testimonial",
			slog.String("principal_id", principalID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewNetworkError()
	}

	slog.Info("testimonial submitted",
		slog.String("testimonial_id", testimonial.ID),
		slog.String("principal_id", principalID),
	)

	return testimonial, nil
}

// cleanField はフィールドをサニタイズし、空白のみ・長さ超過を拒否する。
func (s *Service) cleanField(field, value string, maxLength int) (string, error) {
	cleaned := s.sanitizer.SanitizeText(value)
	if strings.TrimSpace(cleaned) == "" {
		return "", model.NewValidationError(field)
	}
	if utf8.RuneCountInString(cleaned) > maxLength {
		return "", model.NewValidationError(field)
	}
	return cleaned, nil
}
