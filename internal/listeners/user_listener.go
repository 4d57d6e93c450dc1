// Package listeners wires signal handlers that react to domain events
// outside the request path.
package listeners

import (
	"context"
	"time"

	"go.uber.org/zap"

	"SignBridge/internal/models"
	"SignBridge/pkg/cache"
	"SignBridge/pkg/logger"
	"SignBridge/pkg/util"
)

const profileCacheTTL = 5 * time.Minute

// RegisterUserListeners hooks the account events. The cache warm-up means
// the first profile read after sign-up never hits the database.
func RegisterUserListeners(c cache.Cache) {
	util.Sig().Connect(models.SigUserCreate, func(sender any, _ ...any) {
		user, ok := sender.(*models.User)
		if !ok {
			return
		}
		logger.Info("user registered",
			zap.String("id", user.ID), zap.String("role", user.UserRole))
		if c != nil {
			if err := c.Set(context.Background(), "profile:"+user.ID, user, profileCacheTTL); err != nil {
				logger.Warn("profile cache warm-up failed", zap.String("id", user.ID), zap.Error(err))
			}
		}
	})
}
