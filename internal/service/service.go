package service

import (
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/model"
	"timetable-viewer/internal/repository"
	"timetable-viewer/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Timetable TimetableService
	Session   SessionService
	Export    ExportService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时导出不走缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	layout *model.Layout,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	timetable := NewTimetableService(repo, layout, logger)

	// 避免把 nil 指针装进接口
	var exportCache ExportCache
	if rdb != nil {
		exportCache = rdb
	}

	return &Service{
		Timetable: timetable,
		Session:   NewSessionService(&cfg.Session, timetable, logger),
		Export:    NewExportService(&cfg.Dataset, cfg.Redis.CacheTTL, timetable, exportCache, logger),
	}
}
