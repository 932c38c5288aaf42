// Package portal は認証済みクライアント向けポータルのドメインロジックを提供する。
package portal

import (
	"context"
	"log/slog"

	"github.com/seniortech/backend/internal/model"
)

// TestimonialLister はプリンシパル別の体験談取得インターフェース。
type TestimonialLister interface {
	ListBySubmitter(ctx context.Context, appID, submittedBy string) ([]*model.Testimonial, error)
}

// Summary はポータルのトップ画面に表示するデータ。
// 現在のプリンシパルと、そのプリンシパルが投稿した体験談の一覧。
type Summary struct {
	Principal    *model.Principal
	Testimonials []*model.Testimonial
}

// ServiceConfig はポータルサービスの設定。
type ServiceConfig struct {
	AppID string
}

// Service はクライアントポータルのサービス層。
type Service struct {
	lister TestimonialLister
	config ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(lister TestimonialLister, config ServiceConfig) *Service {
	return &Service{
		lister: lister,
		config: config,
	}
}

// Summary はプリンシパルのポータルサマリーを取得する。
// 認証済みプリンシパルのみが対象。匿名の場合はUNAUTHORIZEDを返す。
func (s *Service) Summary(ctx context.Context, principal *model.Principal) (*Summary, error) {
	if principal == nil || !principal.IsAuthenticated() {
		return nil, model.NewUnauthorizedError()
	}

	testimonials, err := s.lister.ListBySubmitter(ctx, s.config.AppID, principal.ID)
	if err != nil {
		slog.Error("投稿済み体験談の取得に失敗しました",
			slog.String("principal_id", principal.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewNetworkError()
	}

	return &Summary{
		Principal:    principal,
		Testimonials: testimonials,
	}, nil
}
