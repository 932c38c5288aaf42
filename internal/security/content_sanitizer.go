// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は利用者から投稿されるお客様の声と、
// 外部サイトから取得するヒント記事のコンテンツをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なコンテンツのみを通過させる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はコンテンツのサニタイズ機能のインターフェースを定義する。
// お客様の声の投稿受付時とヒント記事の保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText は入力から全てのHTMLタグを除去し、プレーンテキストを返す。
	// お客様の声（引用文、氏名、市区町村）のように、マークアップを一切
	// 含むべきでないフィールドに使用する。
	// HTMLエンティティはデコードされ、前後の空白は除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizeSummary はヒント記事の要約HTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, strong, em）のみを通過させ、
	// script, iframe, img, styleタグおよびon*イベント属性を除去する。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	SanitizeSummary(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// 2種類のbluemondayポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	textPolicy    *bluemonday.Policy
	summaryPolicy *bluemonday.Policy
}

// コンパイル時のインターフェース実装チェック
var _ ContentSanitizerService = (*contentSanitizer)(nil)

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時に2種類のbluemondayポリシーを構築する。
//   - textPolicy: StrictPolicyで全タグを除去（お客様の声用）
//   - summaryPolicy: p, br, a, ul, ol, li, strong, em のみ許可（ヒント記事用）
func NewContentSanitizer() *contentSanitizer {
	summary := bluemonday.NewPolicy()

	// ヒント記事の要約に必要な最小限のタグのみ許可する。
	// script, iframe, style, img等は許可リストに含めないことで自動的に除去される。
	// on*イベント属性はbluemondayのデフォルトで許可されないため除去される。
	summary.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	// aタグの設定:
	// - href属性を許可、相対URLは不許可
	// - target="_blank" と rel="noreferrer noopener" を強制付与
	summary.AllowAttrs("href").OnElements("a")
	summary.AllowRelativeURLs(false)
	summary.AddTargetBlankToFullyQualifiedLinks(true)
	summary.RequireNoReferrerOnLinks(true)
	summary.AllowURLSchemes("https", "http")

	return &contentSanitizer{
		textPolicy:    bluemonday.StrictPolicy(),
		summaryPolicy: summary,
	}
}

// SanitizeText は入力から全てのHTMLタグを除去し、プレーンテキストを返す。
// StrictPolicyの出力はHTMLエスケープされるため、表示用の素のテキストに
// 戻すためにエンティティをデコードしてから前後の空白を除去する。
func (s *contentSanitizer) SanitizeText(raw string) string {
	stripped := s.textPolicy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// SanitizeSummary はヒント記事の要約HTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeSummary(rawHTML string) string {
	return s.summaryPolicy.Sanitize(rawHTML)
}
