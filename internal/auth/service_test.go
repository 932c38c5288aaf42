package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	createWithSessionFn func(ctx context.Context, user *model.User, sessionID string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) CreateWithSession(ctx context.Context, user *model.User, sessionID string) error {
	if m.createWithSessionFn != nil {
		return m.createWithSessionFn(ctx, user, sessionID)
	}
	return nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, session *model.Session) error
	findByIDFn      func(ctx context.Context, id string) (*model.Session, error)
	attachUserFn    func(ctx context.Context, sessionID, userID string) error
	detachUserFn    func(ctx context.Context, sessionID string) error
	deleteByIDFn    func(ctx context.Context, id string) error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) AttachUser(ctx context.Context, sessionID, userID string) error {
	if m.attachUserFn != nil {
		return m.attachUserFn(ctx, sessionID, userID)
	}
	return nil
}

func (m *mockSessionRepo) DetachUser(ctx context.Context, sessionID string) error {
	if m.detachUserFn != nil {
		return m.detachUserFn(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

// --- テストヘルパー ---

func testConfig() ServiceConfig {
	return ServiceConfig{
		SessionMaxAge:     3600,
		AuthTimeout:       10 * time.Second,
		PasswordMinLength: 8,
		BootstrapToken:    "",
	}
}

// activeSession は期限内の匿名セッションを返すFindByIDモック関数を生成する。
func activeSession(sessionID, guestID, userID string) func(ctx context.Context, id string) (*model.Session, error) {
	return func(_ context.Context, id string) (*model.Session, error) {
		if id != sessionID {
			return nil, nil
		}
		return &model.Session{
			ID:        sessionID,
			GuestID:   guestID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}, nil
	}
}

// assertErrorCode はエラーが指定コードのAPIErrorであることを検証する。
func assertErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code = %q, want %q", apiErr.Code, wantCode)
	}
}

// --- Bootstrap ---

func TestBootstrap_CreatesAnonymousSession(t *testing.T) {
	var created *model.Session
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}

	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	session, err := service.Bootstrap(context.Background(), "")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if session.ID == "" {
		t.Error("session ID should not be empty")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 (32 bytes hex)", len(session.ID))
	}
	if session.GuestID == "" {
		t.Error("guest ID should not be empty")
	}
	if session.UserID != "" {
		t.Errorf("new session should be anonymous, got user ID %q", session.UserID)
	}
	if created == nil {
		t.Fatal("session was not persisted")
	}
	if created.ID != session.ID {
		t.Errorf("persisted session ID = %q, want %q", created.ID, session.ID)
	}
}

func TestBootstrap_EachCallCreatesDistinctGuest(t *testing.T) {
	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	first, err := service.Bootstrap(context.Background(), "")
	if err != nil {
		t.Fatalf("first Bootstrap failed: %v", err)
	}
	second, err := service.Bootstrap(context.Background(), "")
	if err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}

	if first.GuestID == second.GuestID {
		t.Error("each bootstrap should produce a distinct guest ID")
	}
	if first.ID == second.ID {
		t.Error("each bootstrap should produce a distinct session ID")
	}
}

func TestBootstrap_WithValidToken(t *testing.T) {
	config := testConfig()
	config.BootstrapToken = "deploy-token-123"

	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, config)

	session, err := service.Bootstrap(context.Background(), "deploy-token-123")
	if err != nil {
		t.Fatalf("Bootstrap with valid token failed: %v", err)
	}
	if session.GuestID == "" {
		t.Error("guest ID should not be empty")
	}
}

func TestBootstrap_WithInvalidToken(t *testing.T) {
	config := testConfig()
	config.BootstrapToken = "deploy-token-123"

	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, config)

	_, err := service.Bootstrap(context.Background(), "wrong-token")
	if err == nil {
		t.Fatal("expected error for invalid bootstrap token")
	}
	assertErrorCode(t, err, "INVALID_BOOTSTRAP_TOKEN")
}

func TestBootstrap_TokenProvidedButNoneConfigured(t *testing.T) {
	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := service.Bootstrap(context.Background(), "some-token")
	if err == nil {
		t.Fatal("expected error when token is provided but none is configured")
	}
	assertErrorCode(t, err, "INVALID_BOOTSTRAP_TOKEN")
}

func TestBootstrap_SessionStoreFailure(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, _ *model.Session) error {
			return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		},
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	_, err := service.Bootstrap(context.Background(), "")
	if err == nil {
		t.Fatal("expected network error when the session store is unreachable")
	}
	assertErrorCode(t, err, "NETWORK_ERROR")
}

// --- SignUp ---

func TestSignUp_Success(t *testing.T) {
	var createdUser *model.User
	var attachedSessionID string
	userRepo := &mockUserRepo{
		createWithSessionFn: func(_ context.Context, user *model.User, sessionID string) error {
			createdUser = user
			attachedSessionID = sessionID
			return nil
		},
	}

	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
		attachUserFn: func(_ context.Context, _, _ string) error {
			t.Error("サインアップの紐付けはCreateWithSessionの単一経路で行うこと")
			return nil
		},
	}

	service := NewService(userRepo, sessionRepo, testConfig())

	principal, err := service.SignUp(context.Background(), "sess-1", "Margaret@Example.com", "sunflower42")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if principal.State != model.PrincipalAuthenticated {
		t.Errorf("principal state = %q, want authenticated", principal.State)
	}
	if principal.Email != "margaret@example.com" {
		t.Errorf("principal email = %q, want lowercased address", principal.Email)
	}
	if createdUser == nil {
		t.Fatal("user was not persisted")
	}
	if createdUser.PasswordHash == "sunflower42" {
		t.Error("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("sunflower42")); err != nil {
		t.Errorf("stored hash does not verify against the original password: %v", err)
	}
	if attachedSessionID != "sess-1" {
		t.Errorf("attached session ID = %q, want sess-1", attachedSessionID)
	}
}

func TestSignUp_InvalidEmail(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	tests := []struct {
		name  string
		email string
	}{
		{name: "空のメールアドレス", email: ""},
		{name: "アットマークなし", email: "margaret.example.com"},
		{name: "ドメインなし", email: "margaret@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SignUp(context.Background(), "sess-1", tt.email, "sunflower42")
			if err == nil {
				t.Fatal("expected validation error")
			}
			assertErrorCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestSignUp_WeakPassword(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	_, err := service.SignUp(context.Background(), "sess-1", "margaret@example.com", "short")
	if err == nil {
		t.Fatal("expected weak password error")
	}
	assertErrorCode(t, err, "WEAK_PASSWORD")
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		createWithSessionFn: func(_ context.Context, _ *model.User, _ string) error {
			return repository.ErrDuplicateEmail
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	_, err := service.SignUp(context.Background(), "sess-1", "margaret@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	assertErrorCode(t, err, "EMAIL_IN_USE")
}

func TestSignUp_StoreFailure(t *testing.T) {
	userRepo := &mockUserRepo{
		createWithSessionFn: func(_ context.Context, _ *model.User, _ string) error {
			return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	_, err := service.SignUp(context.Background(), "sess-1", "margaret@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected network error when the user store is unreachable")
	}
	// 重複とは区別され、リトライ可能なエラーとして返ること
	assertErrorCode(t, err, "NETWORK_ERROR")
}

func TestSignUp_WithoutSession(t *testing.T) {
	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := service.SignUp(context.Background(), "", "margaret@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	assertErrorCode(t, err, "UNAUTHORIZED")
}

// --- SignIn ---

func signInFixture(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}
	return &model.User{
		ID:           "user-1",
		Email:        "margaret@example.com",
		PasswordHash: string(hash),
	}
}

func TestSignIn_Success(t *testing.T) {
	user := signInFixture(t, "sunflower42")
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}

	var attachedUserID string
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
		attachUserFn: func(_ context.Context, _, userID string) error {
			attachedUserID = userID
			return nil
		},
	}

	service := NewService(userRepo, sessionRepo, testConfig())

	principal, err := service.SignIn(context.Background(), "sess-1", "MARGARET@example.com", "sunflower42")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if principal.ID != "user-1" {
		t.Errorf("principal ID = %q, want user-1", principal.ID)
	}
	if principal.State != model.PrincipalAuthenticated {
		t.Errorf("principal state = %q, want authenticated", principal.State)
	}
	if attachedUserID != "user-1" {
		t.Errorf("attached user ID = %q, want user-1", attachedUserID)
	}
}

func TestSignIn_UnknownEmail(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	_, err := service.SignIn(context.Background(), "sess-1", "nobody@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected invalid credentials error")
	}
	assertErrorCode(t, err, "INVALID_CREDENTIALS")
}

func TestSignIn_WrongPassword(t *testing.T) {
	user := signInFixture(t, "sunflower42")
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	_, err := service.SignIn(context.Background(), "sess-1", "margaret@example.com", "wrong-password")
	if err == nil {
		t.Fatal("expected invalid credentials error")
	}
	// 未登録メールアドレスと同じエラーであること（存在有無を漏らさない）
	assertErrorCode(t, err, "INVALID_CREDENTIALS")
}

func TestSignIn_UserStoreFailure(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	_, err := service.SignIn(context.Background(), "sess-1", "margaret@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected network error when the user store is unreachable")
	}
	// INVALID_CREDENTIALSでもINTERNAL_ERRORでもなくNETWORK_ERRORであること
	assertErrorCode(t, err, "NETWORK_ERROR")
}

func TestSignIn_AttachFailure(t *testing.T) {
	user := signInFixture(t, "sunflower42")
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return user, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
		attachUserFn: func(_ context.Context, _, _ string) error {
			return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		},
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	_, err := service.SignIn(context.Background(), "sess-1", "margaret@example.com", "sunflower42")
	if err == nil {
		t.Fatal("expected network error when the session store is unreachable")
	}
	assertErrorCode(t, err, "NETWORK_ERROR")
}

// --- SignOut ---

func TestSignOut_RevertsToAnonymous(t *testing.T) {
	var detachedSessionID string
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", "user-1"),
		detachUserFn: func(_ context.Context, sessionID string) error {
			detachedSessionID = sessionID
			return nil
		},
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	principal, err := service.SignOut(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if detachedSessionID != "sess-1" {
		t.Errorf("detached session ID = %q, want sess-1", detachedSessionID)
	}
	if principal.State != model.PrincipalAnonymous {
		t.Errorf("principal state = %q, want anonymous", principal.State)
	}
	if principal.ID != "guest-1" {
		t.Errorf("principal ID = %q, want the original guest ID", principal.ID)
	}
}

func TestSignOut_StoreFailure(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", "user-1"),
		detachUserFn: func(_ context.Context, _ string) error {
			return errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
		},
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	_, err := service.SignOut(context.Background(), "sess-1")
	if err == nil {
		t.Fatal("expected network error when the session store is unreachable")
	}
	assertErrorCode(t, err, "NETWORK_ERROR")
}

func TestSignOut_WithoutSession(t *testing.T) {
	service := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := service.SignOut(context.Background(), "")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	assertErrorCode(t, err, "UNAUTHORIZED")
}

// --- CurrentPrincipal ---

func TestCurrentPrincipal_Anonymous(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", ""),
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	principal, err := service.CurrentPrincipal(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("CurrentPrincipal failed: %v", err)
	}

	if principal.State != model.PrincipalAnonymous {
		t.Errorf("principal state = %q, want anonymous", principal.State)
	}
	if principal.ID != "guest-1" {
		t.Errorf("principal ID = %q, want guest-1", principal.ID)
	}
	if principal.Email != "" {
		t.Errorf("anonymous principal should have no email, got %q", principal.Email)
	}
}

func TestCurrentPrincipal_Authenticated(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			if id == "user-1" {
				return &model.User{ID: "user-1", Email: "margaret@example.com"}, nil
			}
			return nil, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: activeSession("sess-1", "guest-1", "user-1"),
	}
	service := NewService(userRepo, sessionRepo, testConfig())

	principal, err := service.CurrentPrincipal(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("CurrentPrincipal failed: %v", err)
	}

	if principal.State != model.PrincipalAuthenticated {
		t.Errorf("principal state = %q, want authenticated", principal.State)
	}
	if principal.ID != "user-1" {
		t.Errorf("principal ID = %q, want user-1", principal.ID)
	}
	if principal.Email != "margaret@example.com" {
		t.Errorf("principal email = %q, want margaret@example.com", principal.Email)
	}
}

func TestCurrentPrincipal_ExpiredSession(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			// リポジトリは期限切れセッションをnilとして返す
			return nil, nil
		},
	}
	service := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	_, err := service.CurrentPrincipal(context.Background(), "expired-session")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	assertErrorCode(t, err, "UNAUTHORIZED")
}
