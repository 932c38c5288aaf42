// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/seniortech/backend/internal/model"
)

// UserRepository は登録ユーザーの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithSession はユーザーの作成とセッションへの紐付けを
	// 同一トランザクションで行う。途中で失敗した場合はユーザーも残らない。
	// メールアドレスが既に登録されている場合はErrDuplicateEmailを返す。
	CreateWithSession(ctx context.Context, user *model.User, sessionID string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
// セッションのプリンシパル遷移（匿名⇔認証済み）はAttachUser/DetachUserの
// 単一経路のみで行われる。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// AttachUser はセッションにユーザーを紐付け、プリンシパルを認証済みに遷移させる。
	AttachUser(ctx context.Context, sessionID, userID string) error

	// DetachUser はセッションからユーザーの紐付けを外し、匿名プリンシパルに戻す。
	DetachUser(ctx context.Context, sessionID string) error

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TestimonialRepository は体験談データの永続化インターフェース。
// 体験談は追記専用で、更新・削除のメソッドは存在しない。
type TestimonialRepository interface {
	// Create は体験談を作成する。created_atはデータベースが採番し、
	// 呼び出し後にtestimonial.ID / CreatedAtが設定される。
	Create(ctx context.Context, appID string, testimonial *model.Testimonial) error

	// ListNewestFirst はデプロイメントの全体験談を新しい順で返す。
	// 同時刻の場合はID降順で安定化する。
	ListNewestFirst(ctx context.Context, appID string) ([]*model.Testimonial, error)
}

// TipSourceRepository はティップスソースの永続化インターフェース。
type TipSourceRepository interface {
	// FindByFeedURL はフィードURLでソースを検索する。見つからない場合はnilを返す。
	FindByFeedURL(ctx context.Context, feedURL string) (*model.TipSource, error)

	// Create はソースを作成する。
	Create(ctx context.Context, source *model.TipSource) error

	// ListDueForFetch はフェッチ対象のソースを取得する。
	// next_fetch_at <= now() かつ fetch_status = 'active' のソースを
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForFetch(ctx context.Context) ([]*model.TipSource, error)

	// UpdateFetchState はソースのフェッチ状態を更新する。
	// fetch_status、consecutive_errors、error_message、next_fetch_at、
	// etag、last_modified、titleを更新する。
	UpdateFetchState(ctx context.Context, source *model.TipSource) error
}

// TipRepository はティップス記事の永続化インターフェース。
type TipRepository interface {
	// FindBySourceAndGUID はsource_idとguid_or_idで記事を検索する。
	// 同一性判定の最優先手段。見つからない場合はnilを返す。
	FindBySourceAndGUID(ctx context.Context, sourceID, guid string) (*model.Tip, error)

	// FindBySourceAndLink はsource_idとlinkで記事を検索する。
	// 同一性判定の第2手段。見つからない場合はnilを返す。
	FindBySourceAndLink(ctx context.Context, sourceID, link string) (*model.Tip, error)

	// Create は新規記事を作成する。
	Create(ctx context.Context, tip *model.Tip) error

	// Update は既存記事を上書き更新する。履歴は保持しない。
	Update(ctx context.Context, tip *model.Tip) error

	// ListRecent は公開日の新しい順に最大limit件の記事を返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Tip, error)
}
