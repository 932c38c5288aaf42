// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string `json:"code"`     // エラーコード
	Message  string `json:"message"`  // エラーメッセージ
	Category string `json:"category"` // カテゴリ: auth, validation, feed, system
	Action   string `json:"action"`   // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotReady           = "NOT_READY"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailInUse         = "EMAIL_IN_USE"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeSubscriptionFault  = "SUBSCRIPTION_FAULT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidBootstrap   = "INVALID_BOOTSTRAP_TOKEN"
)

// NewValidationError は入力値検証エラーを生成する。
// fieldには空または空白のみだったフィールド名を指定する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("The %s field must not be empty.", field),
		Category: "validation",
		Action:   "Please fill in all fields and try again.",
	}
}

// NewNotReadyError はセッション未解決エラーを生成する。
// プリンシパルが確定する前に書き込み操作が要求された場合に使用する。
func NewNotReadyError() *APIError {
	return &APIError{
		Code:     ErrCodeNotReady,
		Message:  "Your session is still being set up.",
		Category: "auth",
		Action:   "Please wait a moment and try again.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレスの存在有無は漏らさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "The email or password you entered is incorrect.",
		Category: "auth",
		Action:   "Please check your email and password and try again.",
	}
}

// NewEmailInUseError はメールアドレス重複エラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "An account with this email address already exists.",
		Category: "auth",
		Action:   "Sign in instead, or use a different email address.",
	}
}

// NewWeakPasswordError はパスワードポリシー違反エラーを生成する。
func NewWeakPasswordError(minLength int) *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  fmt.Sprintf("Your password must be at least %d characters long.", minLength),
		Category: "validation",
		Action:   "Please choose a longer password and try again.",
	}
}

// NewNetworkError はバックエンドストア到達不能エラーを生成する。
// 一時的な障害として扱い、リトライ可能であることをユーザーに伝える。
func NewNetworkError() *APIError {
	return &APIError{
		Code:     ErrCodeNetworkError,
		Message:  "We could not complete your request right now.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}

// NewSubscriptionFaultError は購読ストリームの劣化エラーを生成する。
// 致命的ではなく、ストリームは自動的に復旧を試み続ける。
func NewSubscriptionFaultError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionFault,
		Message:  fmt.Sprintf("The live testimonial feed was interrupted: %s", reason),
		Category: "feed",
		Action:   "The connection will recover automatically. The list shown may be briefly out of date.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "You must be signed in to view this page.",
		Category: "auth",
		Action:   "Please sign in and try again.",
	}
}

// NewInvalidBootstrapTokenError はブートストラップトークン不正エラーを生成する。
func NewInvalidBootstrapTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBootstrap,
		Message:  "The provided bootstrap token was not accepted.",
		Category: "auth",
		Action:   "Reload the page to start a new session.",
	}
}
