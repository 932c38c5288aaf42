// Package auth はセッションのブートストラップ、メールアドレスとパスワードによる
// 認証、セッション管理を提供する。
//
// 全ての訪問者はまず匿名セッションを取得し、その後サインアップまたはサインインで
// 同一セッションにユーザーを紐付ける。サインアウトはセッションを破棄せず、
// ユーザーの紐付けのみを解除して匿名状態に戻す。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge     int           // セッション有効期間（秒）
	AuthTimeout       time.Duration // ブートストラップ処理の上限時間
	PasswordMinLength int           // パスワードの最小文字数
	BootstrapToken    string        // 環境から供給されるブートストラップトークン（空なら匿名のみ）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Bootstrap は匿名セッションを発行する。
// providedTokenが空でない場合は設定済みのブートストラップトークンと照合し、
// 不一致ならINVALID_BOOTSTRAP_TOKENエラーを返す。トークンの照合に成功しても
// 失敗時のフォールバックは行わない（照合モードと匿名モードは排他）。
// 処理全体にAuthTimeoutを適用し、タイムアウトやセッション保存の失敗は
// NETWORK_ERRORとして返す。
func (s *Service) Bootstrap(ctx context.Context, providedToken string) (*model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.AuthTimeout)
	defer cancel()

	if providedToken != "" {
		if s.config.BootstrapToken == "" ||
			subtle.ConstantTimeCompare([]byte(providedToken), []byte(s.config.BootstrapToken)) != 1 {
			slog.Warn("bootstrap token mismatch")
			return nil, model.NewInvalidBootstrapTokenError()
		}
	}

	guestID := uuid.New().String()
	session, err := s.createSession(ctx, guestID)
	if err != nil {
		slog.Error("failed to create anonymous session", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}

	slog.Info("anonymous session bootstrapped", slog.String("guest_id", guestID))
	return session, nil
}

// SignUp は新規ユーザーを登録し、現在のセッションに紐付ける。
// メールアドレスの形式とパスワードの長さを検証し、重複メールアドレスは
// EMAIL_IN_USEエラーを返す。ユーザーの作成とセッション紐付けは同一
// トランザクションで行われ、紐付けに失敗した場合はユーザーも残らない。
// 完了後のセッションは認証済み状態になる。
func (s *Service) SignUp(ctx context.Context, sessionID, email, password string) (*model.Principal, error) {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, model.NewValidationError("email")
	}
	if len(password) < s.config.PasswordMinLength {
		return nil, model.NewWeakPasswordError(s.config.PasswordMinLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateWithSession(ctx, user, session.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailInUseError()
		}
		slog.Error("failed to create user", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("session_id", session.ID),
	)

	return &model.Principal{
		ID:    user.ID,
		Email: user.Email,
		State: model.PrincipalAuthenticated,
	}, nil
}

// SignIn はメールアドレスとパスワードで認証し、現在のセッションにユーザーを紐付ける。
// ユーザーが存在しない場合とパスワードが一致しない場合は、どちらも同一の
// INVALID_CREDENTIALSエラーを返す（存在有無を漏らさない）。
func (s *Service) SignIn(ctx context.Context, sessionID, email, password string) (*model.Principal, error) {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find user", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := s.sessionRepo.AttachUser(ctx, session.ID, user.ID); err != nil {
		slog.Error("failed to attach user to session", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}

	slog.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("session_id", session.ID),
	)

	return &model.Principal{
		ID:    user.ID,
		Email: user.Email,
		State: model.PrincipalAuthenticated,
	}, nil
}

// SignOut はセッションからユーザーの紐付けを解除し、匿名状態に戻す。
// セッション自体とguest_idは維持されるため、サインアウト後も
// 同じ匿名主体として投稿の閲覧を継続できる。
func (s *Service) SignOut(ctx context.Context, sessionID string) (*model.Principal, error) {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.DetachUser(ctx, session.ID); err != nil {
		slog.Error("failed to detach user from session", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}

	slog.Info("user signed out", slog.String("session_id", session.ID))

	return &model.Principal{
		ID:    session.GuestID,
		State: model.PrincipalAnonymous,
	}, nil
}

// CurrentPrincipal はセッションから現在の認証主体を解決する。
// ユーザーが紐付いていれば認証済み主体を、そうでなければ匿名主体を返す。
// セッションが存在しないか期限切れの場合はUNAUTHORIZEDエラーを返す。
func (s *Service) CurrentPrincipal(ctx context.Context, sessionID string) (*model.Principal, error) {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID == "" {
		return &model.Principal{
			ID:    session.GuestID,
			State: model.PrincipalAnonymous,
		}, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		slog.Error("failed to find user", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}
	if user == nil {
		// ユーザーが削除済みでもセッションは匿名として扱う
		return &model.Principal{
			ID:    session.GuestID,
			State: model.PrincipalAnonymous,
		}, nil
	}

	return &model.Principal{
		ID:    user.ID,
		Email: user.Email,
		State: model.PrincipalAuthenticated,
	}, nil
}

// requireSession はセッションIDから有効なセッションを取得する。
// 存在しないか期限切れの場合はUNAUTHORIZEDエラーを返す。
func (s *Service) requireSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to find session", slog.String("error", err.Error()))
		return nil, model.NewNetworkError()
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	return session, nil
}

// createSession は匿名セッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, guestID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		GuestID:   guestID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// validateEmail はメールアドレスの形式を検証する。
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
