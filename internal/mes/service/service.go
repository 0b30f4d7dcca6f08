package service

import (
	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/cache"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/notify"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services MES服务集合
type Services struct {
	Tracking  *TrackingService
	Import    *ImportService
	Report    *ReportService
	Dashboard *DashboardService
}

// NewServices 创建MES服务集合
// rdb 为必备依赖；webhook/publisher/minio 按配置可为空，对应能力自动降级
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config,
	webhook *notify.WebhookNotifier, publisher *notify.Publisher,
	minioClient *minio.Client, logger *zap.Logger) *Services {

	orderCache := cache.NewOrderCache(rdb, cfg.Redis.CacheTTL, logger)

	return &Services{
		Tracking:  NewTrackingService(repos, orderCache, webhook, publisher, cfg.Tracking.ReadyRetention, logger),
		Import:    NewImportService(repos.Order, repos.ActivityLog, orderCache, logger),
		Report:    NewReportService(repos.Order, minioClient, cfg.MinIO.Bucket, logger),
		Dashboard: NewDashboardService(repos.ActivityLog),
	}
}
