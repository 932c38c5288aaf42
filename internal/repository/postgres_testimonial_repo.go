package repository

import (
	"context"
	"fmt"

	"database/sql"

	"github.com/seniortech/backend/internal/model"
)

// PostgresTestimonialRepo はPostgreSQLを使用した体験談リポジトリ。
// INSERTは移行で定義されたトリガー経由でtestimonials_changedチャネルに
// NOTIFYを発行し、ストリームリスナーが全スナップショットを再配信する。
type PostgresTestimonialRepo struct {
	db *sql.DB
}

// NewPostgresTestimonialRepo はPostgresTestimonialRepoを生成する。
func NewPostgresTestimonialRepo(db *sql.DB) *PostgresTestimonialRepo {
	return &PostgresTestimonialRepo{db: db}
}

// Create は体験談を作成する。
// created_atはデータベースのnow()で採番し、RETURNINGで呼び出し元に反映する。
func (r *PostgresTestimonialRepo) Create(ctx context.Context, appID string, testimonial *model.Testimonial) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO testimonials (id, app_id, quote, author, city, submitted_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		testimonial.ID, appID, testimonial.Quote, testimonial.Author,
		testimonial.City, testimonial.SubmittedBy,
	).Scan(&testimonial.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}
	return nil
}

// ListNewestFirst はデプロイメントの全体験談を新しい順で返す。
// 同一時刻の並びはID降順で安定化する。
func (r *PostgresTestimonialRepo) ListNewestFirst(ctx context.Context, appID string) ([]*model.Testimonial, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quote, author, city, submitted_by, created_at
		 FROM testimonials
		 WHERE app_id = $1
		 ORDER BY created_at DESC, id DESC`,
		appID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var testimonials []*model.Testimonial
	for rows.Next() {
		t := &model.Testimonial{}
		if err := rows.Scan(&t.ID, &t.Quote, &t.Author, &t.City, &t.SubmittedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate testimonials: %w", err)
	}

	return testimonials, nil
}

// ListBySubmitter は指定プリンシパルが投稿した体験談を新しい順で返す。
// クライアントポータルの「自分の投稿」表示で使用する。
func (r *PostgresTestimonialRepo) ListBySubmitter(ctx context.Context, appID, submittedBy string) ([]*model.Testimonial, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quote, author, city, submitted_by, created_at
		 FROM testimonials
		 WHERE app_id = $1 AND submitted_by = $2
		 ORDER BY created_at DESC, id DESC`,
		appID, submittedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials by submitter: %w", err)
	}
	defer rows.Close()

	var testimonials []*model.Testimonial
	for rows.Next() {
		t := &model.Testimonial{}
		if err := rows.Scan(&t.ID, &t.Quote, &t.Author, &t.City, &t.SubmittedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate testimonials: %w", err)
	}

	return testimonials, nil
}

// compile-time interface check
var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)
