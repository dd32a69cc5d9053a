package handler

import "timetable-viewer/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Timetable *TimetableHandler
	Session   *SessionHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable),
		Session:   NewSessionHandler(svc.Session),
		Export:    NewExportHandler(svc.Export),
	}
}
