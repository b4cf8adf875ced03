package app

import (
	"context"
	"errors"
	"sync"

	"storefront-service/ddd/application/cqe"
	"storefront-service/ddd/application/dto"
	"storefront-service/internal/resource"
	"storefront-service/pkg/assert"
	"storefront-service/pkg/config"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/session"
)

var (
	singleAdminApp AdminApp
	onceAdminApp   sync.Once
)

type AdminApp interface {
	// Login 创建显式会话
	Login(ctx context.Context, req *cqe.LoginReq) (*dto.LoginDto, error)
	// Logout 销毁会话，令牌随之失效
	Logout(ctx context.Context, s *session.Session) error
	// Resolve 供鉴权中间件使用
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type adminAppImpl struct {
	sessions *session.Manager
}

func DefaultAdminApp() AdminApp {
	assert.NotCircular()
	onceAdminApp.Do(func() {
		cfg := config.GetGlobalConfig()
		assert.NotNil(cfg)
		manager := session.NewManager(resource.DefaultRedisResource().Wrapped(), session.Options{
			Secret:       cfg.JWT.Secret,
			Issuer:       cfg.JWT.Issuer,
			TTL:          cfg.JWT.ExpireTime,
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
		})
		singleAdminApp = NewAdminAppWith(manager)
	})
	assert.NotNil(singleAdminApp)
	return singleAdminApp
}

func NewAdminAppWith(sessions *session.Manager) AdminApp {
	return &adminAppImpl{sessions: sessions}
}

func (a *adminAppImpl) Login(ctx context.Context, req *cqe.LoginReq) (*dto.LoginDto, error) {
	s, token, err := a.sessions.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			logger.Warnf("Admin login rejected username=%s", req.Username)
			return nil, errno.ErrInvalidCredential
		}
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}
	logger.Info("Admin session created", map[string]interface{}{
		"session_id": s.ID,
		"username":   s.Username,
		"expires_at": s.ExpiresAt,
	})
	return &dto.LoginDto{Token: token, SessionID: s.ID, Username: s.Username, ExpiresAt: s.ExpiresAt}, nil
}

func (a *adminAppImpl) Logout(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errno.ErrUnauthorized
	}
	if err := a.sessions.Logout(ctx, s); err != nil {
		return errno.NewBizError(errno.ErrInternalServer, err)
	}
	logger.Infof("Admin session closed session_id=%s", s.ID)
	return nil
}

func (a *adminAppImpl) Resolve(ctx context.Context, token string) (*session.Session, error) {
	return a.sessions.Resolve(ctx, token)
}
