// Package model はドメインモデルを定義する。
package model

import "time"

// PrincipalState はプリンシパルの資格状態を表す。
type PrincipalState string

const (
	// PrincipalAnonymous は匿名セッションのプリンシパルを示す。
	PrincipalAnonymous PrincipalState = "anonymous"
	// PrincipalAuthenticated はメール/パスワード認証済みのプリンシパルを示す。
	PrincipalAuthenticated PrincipalState = "authenticated"
)

// Principal は現在の訪問者の身元を表す。
// 匿名セッションではセッションごとに安定したゲストIDを持ち、
// 認証済みセッションではユーザーIDを持つ。
type Principal struct {
	ID    string
	Email string // 匿名の場合は空
	State PrincipalState
}

// IsAuthenticated は認証済みプリンシパルかどうかを返す。
func (p Principal) IsAuthenticated() bool {
	return p.State == PrincipalAuthenticated
}

// User は登録済みユーザーを表す。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session は訪問者のセッションを表す。
// 匿名セッションではGuestIDがプリンシパルIDとなり、
// サインインするとUserIDが設定されプリンシパルが置き換わる。
// サインアウトではUserIDをクリアして匿名に戻す（nullにはしない）。
type Session struct {
	ID        string
	GuestID   string
	UserID    string // 未認証の場合は空
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PrincipalID はセッションが指すプリンシパルの識別子を返す。
// 認証済みの場合はUserID、そうでなければGuestID。
func (s *Session) PrincipalID() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.GuestID
}
