// Package model はドメインモデルを定義する。
package model

import "time"

// FetchStatus はティップスソースのフェッチ状態を表す。
type FetchStatus string

const (
	// FetchStatusActive はフェッチ継続中の状態。
	FetchStatusActive FetchStatus = "active"
	// FetchStatusStopped はフェッチ停止状態（404/410/401/403等）。
	FetchStatusStopped FetchStatus = "stopped"
)

// TipSource はティップス（シニア向けテック記事）の取得元フィードを表す。
// 運営が設定ファイルで指定した少数のキュレーション済みソースのみを扱う。
type TipSource struct {
	ID                string
	Title             string
	SiteURL           string
	FeedURL           string
	FetchStatus       FetchStatus
	ConsecutiveErrors int
	ErrorMessage      string
	NextFetchAt       time.Time
	Etag              string
	LastModified      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Tip はティップスソースから取得した記事を表す。
type Tip struct {
	ID          string
	SourceID    string
	GuidOrID    string
	Title       string
	Link        string
	Summary     string // サニタイズ済み
	PublishedAt *time.Time
	FetchedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParsedTip はフィードパーサーから取得した未保存の記事データを表す。
// ワーカーがソースをパースした後、TipUpsertServiceに渡される。
type ParsedTip struct {
	GuidOrID    string
	Title       string
	Link        string
	Summary     string // 未サニタイズ
	PublishedAt *time.Time
}
