package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/pkg/redisclient"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
	// ErrSessionNotFound 已登出或过期
	ErrSessionNotFound = errors.New("session not found")
)

const keyPrefix = "storefront:admin:session:"

// Session 显式的后台登录会话，由 Login 创建、Logout 销毁
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 是否过期
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Options 会话管理配置
type Options struct {
	Secret       string
	Issuer       string
	TTL          time.Duration
	Username     string
	PasswordHash string
}

// Manager 会话以 Redis 为准，JWT 只携带会话ID
type Manager struct {
	client *redisclient.Client
	opts   Options
	now    func() time.Time
}

// NewManager 创建会话管理器
func NewManager(client *redisclient.Client, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	return &Manager{client: client, opts: opts, now: time.Now}
}

// Login 校验账号后创建会话并签发令牌
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, string, error) {
	if m.opts.PasswordHash == "" || username != m.opts.Username {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.opts.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.client.SetJSON(ctx, keyPrefix+s.ID, s, m.opts.TTL); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	token, err := m.sign(s)
	if err != nil {
		_ = m.client.Delete(ctx, keyPrefix+s.ID)
		return nil, "", err
	}
	return s, token, nil
}

// Resolve 由令牌找回会话
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.opts.Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	var s Session
	if err := m.client.GetJSON(ctx, keyPrefix+claims.ID, &s); err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if s.Expired(m.now()) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Logout 销毁会话，之后同一令牌不再有效
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	return m.client.Delete(ctx, keyPrefix+s.ID)
}

func (m *Manager) sign(s *Session) (string, error) {
	if m.opts.Secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.Username,
		Issuer:    m.opts.Issuer,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.opts.Secret))
}
