package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seniortech/backend/internal/model"
)

// PostgresTipSourceRepo はPostgreSQLを使用したティップスソースリポジトリ。
type PostgresTipSourceRepo struct {
	db *sql.DB
}

// NewPostgresTipSourceRepo はPostgresTipSourceRepoを生成する。
func NewPostgresTipSourceRepo(db *sql.DB) *PostgresTipSourceRepo {
	return &PostgresTipSourceRepo{db: db}
}

const tipSourceColumns = `id, title, site_url, feed_url, fetch_status, consecutive_errors,
	error_message, next_fetch_at, etag, last_modified, created_at, updated_at`

// scanTipSource は1行をTipSourceにスキャンする。
func scanTipSource(row interface {
	Scan(dest ...interface{}) error
}) (*model.TipSource, error) {
	s := &model.TipSource{}
	var status string
	err := row.Scan(
		&s.ID, &s.Title, &s.SiteURL, &s.FeedURL, &status, &s.ConsecutiveErrors,
		&s.ErrorMessage, &s.NextFetchAt, &s.Etag, &s.LastModified, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.FetchStatus = model.FetchStatus(status)
	return s, nil
}

// FindByFeedURL はフィードURLでソースを検索する。見つからない場合はnilを返す。
func (r *PostgresTipSourceRepo) FindByFeedURL(ctx context.Context, feedURL string) (*model.TipSource, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tipSourceColumns+` FROM tip_sources WHERE feed_url = $1`,
		feedURL,
	)
	source, err := scanTipSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tip source: %w", err)
	}
	return source, nil
}

// Create はソースを作成する。
func (r *PostgresTipSourceRepo) Create(ctx context.Context, source *model.TipSource) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tip_sources
		 (id, title, site_url, feed_url, fetch_status, consecutive_errors,
		  error_message, next_fetch_at, etag, last_modified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		source.ID, source.Title, source.SiteURL, source.FeedURL, string(source.FetchStatus),
		source.ConsecutiveErrors, source.ErrorMessage, source.NextFetchAt,
		source.Etag, source.LastModified, source.CreatedAt, source.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tip source: %w", err)
	}
	return nil
}

// ListDueForFetch はフェッチ対象のソースを排他的に取得する。
// FOR UPDATE SKIP LOCKEDにより複数ワーカーの二重フェッチを防ぐ。
func (r *PostgresTipSourceRepo) ListDueForFetch(ctx context.Context) ([]*model.TipSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tipSourceColumns+`
		 FROM tip_sources
		 WHERE next_fetch_at <= now() AND fetch_status = 'active'
		 FOR UPDATE SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due tip sources: %w", err)
	}
	defer rows.Close()

	var sources []*model.TipSource
	for rows.Next() {
		s, err := scanTipSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tip source: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tip sources: %w", err)
	}

	return sources, nil
}

// UpdateFetchState はソースのフェッチ状態を更新する。
func (r *PostgresTipSourceRepo) UpdateFetchState(ctx context.Context, source *model.TipSource) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tip_sources
		 SET title = $2, fetch_status = $3, consecutive_errors = $4, error_message = $5,
		     next_fetch_at = $6, etag = $7, last_modified = $8, updated_at = $9
		 WHERE id = $1`,
		source.ID, source.Title, string(source.FetchStatus), source.ConsecutiveErrors,
		source.ErrorMessage, source.NextFetchAt, source.Etag, source.LastModified,
		source.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tip source fetch state: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TipSourceRepository = (*PostgresTipSourceRepo)(nil)
