package repository

import (
	"testing"
)

// 各Postgresリポジトリが対応するインターフェースを満たすことを検証

func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

func TestPostgresTestimonialRepo_ImplementsInterface(t *testing.T) {
	var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)
}

func TestPostgresTipSourceRepo_ImplementsInterface(t *testing.T) {
	var _ TipSourceRepository = (*PostgresTipSourceRepo)(nil)
}

func TestPostgresTipRepo_ImplementsInterface(t *testing.T) {
	var _ TipRepository = (*PostgresTipRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	if NewPostgresSessionRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresTestimonialRepo_Initializes(t *testing.T) {
	if NewPostgresTestimonialRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresTipSourceRepo_Initializes(t *testing.T) {
	if NewPostgresTipSourceRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresTipRepo_Initializes(t *testing.T) {
	if NewPostgresTipRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}
