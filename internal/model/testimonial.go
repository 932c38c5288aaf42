// Package model はドメインモデルを定義する。
package model

import "time"

// Testimonial は訪問者が投稿した体験談を表す。
// 作成のみ可能で、更新・削除の操作は存在しない。
// CreatedAtはデータベースが書き込み時に採番するサーバー時刻。
type Testimonial struct {
	ID          string    `json:"id"`
	Quote       string    `json:"quote"`
	Author      string    `json:"author"`
	City        string    `json:"city"`
	SubmittedBy string    `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TestimonialDraft は投稿フォームから受け取った未保存の体験談を表す。
// バリデーションとサニタイズを通過した後にTestimonialとして永続化される。
type TestimonialDraft struct {
	Quote  string
	Author string
	City   string
}
