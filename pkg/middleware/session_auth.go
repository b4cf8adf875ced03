package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/pkg/errno"
	"storefront-service/pkg/restapi"
	"storefront-service/pkg/session"
)

const sessionKey = "admin_session"

// SessionResolver 由令牌找回会话
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// SessionAuthMiddleware 要求请求携带有效的后台会话令牌
func SessionAuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			restapi.Failed(c, errno.ErrUnauthorized)
			c.Abort()
			return
		}

		s, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrInvalidToken) {
				restapi.Failed(c, errno.ErrUnauthorized)
			} else if errors.Is(err, session.ErrSessionNotFound) {
				restapi.Failed(c, errno.ErrSessionExpired)
			} else {
				restapi.Failed(c, errno.NewBizError(errno.ErrInternalServer, err))
			}
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Set("user_uuid", s.Username)
		c.Next()
	}
}

// CurrentSession 取出中间件挂载的会话
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}

// BearerToken 从 Authorization 头解析令牌
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
