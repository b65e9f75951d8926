package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameTaken      = errors.New("username taken")
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Store is the account provider: it owns usernames, password hashes and
// roles. Roles never change after creation.
type Store struct {
	db   *sql.DB
	cost int
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, cost: bcrypt.DefaultCost} }

func (s *Store) Create(ctx context.Context, username, password, role string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Account{}, fmt.Errorf("%w: username and password required", ErrInvalidCredentials)
	}
	if role != RoleTeacher && role != RoleStudent {
		return Account{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := Account{Username: username, Role: role}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username,password_hash,role,created_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (username) DO NOTHING RETURNING id`,
		username, string(hash), role, time.Now().Unix(),
	).Scan(&a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	if err != nil {
		return Account{}, fmt.Errorf("insert user: %w", err)
	}
	return a, nil
}

// Ensure creates the account unless the username already exists.
func (s *Store) Ensure(ctx context.Context, username, password, role string) (Account, bool, error) {
	a, err := s.Create(ctx, username, password, role)
	if errors.Is(err, ErrUsernameTaken) {
		a, err = s.ByUsername(ctx, username)
		return a, false, err
	}
	return a, err == nil, err
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (Account, error) {
	var (
		a    Account
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id,username,role,password_hash FROM users WHERE username=$1`, strings.TrimSpace(username),
	).Scan(&a.ID, &a.Username, &a.Role, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, id int64) (Account, error) {
	return s.one(ctx, `SELECT id,username,role FROM users WHERE id=$1`, id)
}

func (s *Store) ByUsername(ctx context.Context, username string) (Account, error) {
	return s.one(ctx, `SELECT id,username,role FROM users WHERE username=$1`, username)
}

func (s *Store) one(ctx context.Context, query string, arg any) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Username, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("load user: %w", err)
	}
	return a, nil
}
