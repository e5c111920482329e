// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown closes live chat sockets, stops the background sweepers, and then
// disconnects MongoDB. Every step runs; the first error is returned.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error

	if deps.Hub != nil {
		logger.Info("closing realtime hub")
		if err := deps.Hub.Close(); err != nil {
			logger.Error("realtime hub close failed", zap.Error(err))
			firstErr = err
		}
	}
	if deps.LoginLimiter != nil {
		deps.LoginLimiter.Close()
	}
	if deps.AuditRetention != nil {
		deps.AuditRetention.Stop()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting StudyHub MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
