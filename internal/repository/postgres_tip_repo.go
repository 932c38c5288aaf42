package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seniortech/backend/internal/model"
)

// PostgresTipRepo はPostgreSQLを使用したティップスリポジトリ。
type PostgresTipRepo struct {
	db *sql.DB
}

// NewPostgresTipRepo はPostgresTipRepoを生成する。
func NewPostgresTipRepo(db *sql.DB) *PostgresTipRepo {
	return &PostgresTipRepo{db: db}
}

const tipColumns = `id, source_id, guid_or_id, title, link, summary,
	published_at, fetched_at, created_at, updated_at`

// scanTip は1行をTipにスキャンする。
func scanTip(row interface {
	Scan(dest ...interface{}) error
}) (*model.Tip, error) {
	tip := &model.Tip{}
	var publishedAt sql.NullTime
	err := row.Scan(
		&tip.ID, &tip.SourceID, &tip.GuidOrID, &tip.Title, &tip.Link, &tip.Summary,
		&publishedAt, &tip.FetchedAt, &tip.CreatedAt, &tip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		tip.PublishedAt = &publishedAt.Time
	}
	return tip, nil
}

// FindBySourceAndGUID はsource_idとguid_or_idで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresTipRepo) FindBySourceAndGUID(ctx context.Context, sourceID, guid string) (*model.Tip, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tipColumns+` FROM tips WHERE source_id = $1 AND guid_or_id = $2`,
		sourceID, guid,
	)
	tip, err := scanTip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tip by guid: %w", err)
	}
	return tip, nil
}

// FindBySourceAndLink はsource_idとlinkで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresTipRepo) FindBySourceAndLink(ctx context.Context, sourceID, link string) (*model.Tip, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tipColumns+` FROM tips WHERE source_id = $1 AND link = $2`,
		sourceID, link,
	)
	tip, err := scanTip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tip by link: %w", err)
	}
	return tip, nil
}

// Create は新規記事を作成する。
func (r *PostgresTipRepo) Create(ctx context.Context, tip *model.Tip) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tips
		 (id, source_id, guid_or_id, title, link, summary, published_at,
		  fetched_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tip.ID, tip.SourceID, tip.GuidOrID, tip.Title, tip.Link, tip.Summary,
		tip.PublishedAt, tip.FetchedAt, tip.CreatedAt, tip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tip: %w", err)
	}
	return nil
}

// Update は既存記事を上書き更新する。
func (r *PostgresTipRepo) Update(ctx context.Context, tip *model.Tip) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tips
		 SET title = $2, link = $3, summary = $4, published_at = $5,
		     fetched_at = $6, updated_at = $7
		 WHERE id = $1`,
		tip.ID, tip.Title, tip.Link, tip.Summary, tip.PublishedAt,
		tip.FetchedAt, tip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tip: %w", err)
	}
	return nil
}

// ListRecent は公開日の新しい順に最大limit件の記事を返す。
func (r *PostgresTipRepo) ListRecent(ctx context.Context, limit int) ([]*model.Tip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tipColumns+`
		 FROM tips
		 ORDER BY published_at DESC NULLS LAST, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	defer rows.Close()

	var tips []*model.Tip
	for rows.Next() {
		tip, err := scanTip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, tip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tips: %w", err)
	}

	return tips, nil
}

// compile-time interface check
var _ TipRepository = (*PostgresTipRepo)(nil)
