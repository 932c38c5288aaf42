package tips

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

// nopSSRFValidator は検証を常に通過させるテスト用のSSRFValidator。
type nopSSRFValidator struct{}

func (nopSSRFValidator) ValidateURL(_ string) error { return nil }
func (nopSSRFValidator) NewSafeClient(timeout time.Duration, _ int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newTestDetector() *Detector {
	return NewDetector(nopSSRFValidator{}, 10*time.Second, 5*1024*1024)
}

func TestIsDirectFeed(t *testing.T) {
	detector := newTestDetector()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        bool
	}{
		{
			name:        "RSS Content-Type",
			contentType: "application/rss+xml",
			body:        "",
			want:        true,
		},
		{
			name:        "Atom Content-Type",
			contentType: "application/atom+xml; charset=utf-8",
			body:        "",
			want:        true,
		},
		{
			name:        "汎用XMLでRSSボディ",
			contentType: "text/xml",
			body:        `<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`,
			want:        true,
		},
		{
			name:        "汎用XMLでAtomボディ",
			contentType: "application/xml",
			body:        `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`,
			want:        true,
		},
		{
			name:        "HTMLページ",
			contentType: "text/html",
			body:        "<html><head></head><body></body></html>",
			want:        false,
		},
		{
			name:        "汎用XMLで非フィードボディ",
			contentType: "text/xml",
			body:        `<?xml version="1.0"?><sitemap></sitemap>`,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.IsDirectFeed(tt.contentType, []byte(tt.body))
			if got != tt.want {
				t.Errorf("IsDirectFeed(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestParseFeedLinksFromHTML(t *testing.T) {
	detector := newTestDetector()

	htmlBody := `<!DOCTYPE html>
<html>
<head>
  <title>Senior Tech Tips Blog</title>
  <link rel="alternate" type="application/rss+xml" title="RSS" href="/feed.xml">
  <link rel="alternate" type="application/atom+xml" title="Atom" href="https://other.example.com/atom.xml">
  <link rel="stylesheet" href="/style.css">
</head>
<body>
  <link rel="alternate" type="application/rss+xml" href="/body-feed.xml">
</body>
</html>`

	candidates := detector.ParseFeedLinksFromHTML([]byte(htmlBody), "https://blog.example.com/tips")

	if len(candidates) != 2 {
		t.Fatalf("candidate count = %d, want 2 (body links are ignored)", len(candidates))
	}

	if candidates[0].URL != "https://blog.example.com/feed.xml" {
		t.Errorf("first candidate URL = %q, want resolved relative URL", candidates[0].URL)
	}
	if candidates[0].FeedType != FeedTypeRSS {
		t.Errorf("first candidate type = %q, want rss", candidates[0].FeedType)
	}
	if candidates[1].URL != "https://other.example.com/atom.xml" {
		t.Errorf("second candidate URL = %q, want absolute URL kept", candidates[1].URL)
	}
	if candidates[1].FeedType != FeedTypeAtom {
		t.Errorf("second candidate type = %q, want atom", candidates[1].FeedType)
	}
}

func TestSelectBestFeed(t *testing.T) {
	detector := newTestDetector()

	tests := []struct {
		name       string
		candidates []FeedCandidate
		inputURL   string
		wantURL    string
	}{
		{
			name:       "候補なしはnil",
			candidates: nil,
			inputURL:   "https://example.com",
			wantURL:    "",
		},
		{
			name: "同一ホストが優先される",
			candidates: []FeedCandidate{
				{URL: "https://other.example.com/atom.xml", FeedType: FeedTypeAtom},
				{URL: "https://example.com/feed.xml", FeedType: FeedTypeRSS},
			},
			inputURL: "https://example.com",
			wantURL:  "https://example.com/feed.xml",
		},
		{
			name: "同一ホスト同士ではAtomが優先される",
			candidates: []FeedCandidate{
				{URL: "https://example.com/feed.xml", FeedType: FeedTypeRSS},
				{URL: "https://example.com/atom.xml", FeedType: FeedTypeAtom},
			},
			inputURL: "https://example.com",
			wantURL:  "https://example.com/atom.xml",
		},
		{
			name: "同スコアでは先頭が優先される",
			candidates: []FeedCandidate{
				{URL: "https://example.com/a.xml", FeedType: FeedTypeRSS},
				{URL: "https://example.com/b.xml", FeedType: FeedTypeRSS},
			},
			inputURL: "https://example.com",
			wantURL:  "https://example.com/a.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := detector.SelectBestFeed(tt.candidates, tt.inputURL)
			if tt.wantURL == "" {
				if best != nil {
					t.Errorf("best = %+v, want nil", best)
				}
				return
			}
			if best == nil {
				t.Fatal("best = nil, want a candidate")
			}
			if best.URL != tt.wantURL {
				t.Errorf("best URL = %q, want %q", best.URL, tt.wantURL)
			}
		})
	}
}

// mockTipSourceRepo はTipSourceRepositoryのモック。
type mockTipSourceRepo struct {
	findByFeedURLFn func(ctx context.Context, feedURL string) (*model.TipSource, error)
	createFn        func(ctx context.Context, source *model.TipSource) error
	listDueFn       func(ctx context.Context) ([]*model.TipSource, error)
	updateFn        func(ctx context.Context, source *model.TipSource) error
}

var _ repository.TipSourceRepository = (*mockTipSourceRepo)(nil)

func (m *mockTipSourceRepo) FindByFeedURL(ctx context.Context, feedURL string) (*model.TipSource, error) {
	if m.findByFeedURLFn != nil {
		return m.findByFeedURLFn(ctx, feedURL)
	}
	return nil, nil
}

func (m *mockTipSourceRepo) Create(ctx context.Context, source *model.TipSource) error {
	if m.createFn != nil {
		return m.createFn(ctx, source)
	}
	return nil
}

func (m *mockTipSourceRepo) ListDueForFetch(ctx context.Context) ([]*model.TipSource, error) {
	if m.listDueFn != nil {
		return m.listDueFn(ctx)
	}
	return nil, nil
}

func (m *mockTipSourceRepo) UpdateFetchState(ctx context.Context, source *model.TipSource) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, source)
	}
	return nil
}

// mockResolver はFeedResolverのモック。
type mockResolver struct {
	resolveFn func(ctx context.Context, rawURL string) (string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, rawURL)
	}
	return rawURL, nil
}

func TestEnsureSources_CreatesMissingSources(t *testing.T) {
	var created []*model.TipSource
	repo := &mockTipSourceRepo{
		createFn: func(_ context.Context, source *model.TipSource) error {
			created = append(created, source)
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFn: func(_ context.Context, rawURL string) (string, error) {
			return rawURL + "/feed.xml", nil
		},
	}

	bootstrapper := NewSourceBootstrapper(repo, resolver)

	err := bootstrapper.EnsureSources(context.Background(), []string{
		"https://blog-a.example.com",
		"https://blog-b.example.com",
	})
	if err != nil {
		t.Fatalf("EnsureSources failed: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created count = %d, want 2", len(created))
	}
	if created[0].FeedURL != "https://blog-a.example.com/feed.xml" {
		t.Errorf("feed URL = %q, want resolved feed URL", created[0].FeedURL)
	}
	if created[0].SiteURL != "https://blog-a.example.com" {
		t.Errorf("site URL = %q, want the configured URL", created[0].SiteURL)
	}
	if created[0].FetchStatus != model.FetchStatusActive {
		t.Errorf("fetch status = %q, want active", created[0].FetchStatus)
	}
}

func TestEnsureSources_SkipsExisting(t *testing.T) {
	repo := &mockTipSourceRepo{
		findByFeedURLFn: func(_ context.Context, _ string) (*model.TipSource, error) {
			return &model.TipSource{ID: "src-1"}, nil
		},
		createFn: func(_ context.Context, _ *model.TipSource) error {
			t.Error("existing source must not be re-created")
			return nil
		},
	}

	bootstrapper := NewSourceBootstrapper(repo, &mockResolver{})

	if err := bootstrapper.EnsureSources(context.Background(), []string{"https://blog.example.com/feed.xml"}); err != nil {
		t.Fatalf("EnsureSources failed: %v", err)
	}
}

func TestEnsureSources_FallsBackToRawURLOnResolveFailure(t *testing.T) {
	var created *model.TipSource
	repo := &mockTipSourceRepo{
		createFn: func(_ context.Context, source *model.TipSource) error {
			created = source
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFn: func(_ context.Context, _ string) (string, error) {
			return "", context.DeadlineExceeded
		},
	}

	bootstrapper := NewSourceBootstrapper(repo, resolver)

	if err := bootstrapper.EnsureSources(context.Background(), []string{"https://blog.example.com/feed.xml"}); err != nil {
		t.Fatalf("EnsureSources failed: %v", err)
	}

	if created == nil {
		t.Fatal("source should still be created on resolve failure")
	}
	if created.FeedURL != "https://blog.example.com/feed.xml" {
		t.Errorf("feed URL = %q, want the raw URL", created.FeedURL)
	}
}
