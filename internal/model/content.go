// Package model はドメインモデルを定義する。
package model

// ServiceOffering はサービス紹介ページの1項目を表す。
type ServiceOffering struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

// TeamMember は会社紹介ページのスタッフ1名を表す。
type TeamMember struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio"`
}

// FAQItem はよくある質問の1項目を表す。
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HomeHighlight はトップページのサービスハイライト1項目を表す。
type HomeHighlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContactInfo は問い合わせページの連絡先情報を表す。
type ContactInfo struct {
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ServiceArea string `json:"service_area"`
	Hours       string `json:"hours"`
}
