package repository

import "timetable-viewer/config"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Dataset DatasetRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(cfg *config.Config) *Repository {
	return &Repository{
		Dataset: NewDatasetRepository(&cfg.Dataset),
	}
}
