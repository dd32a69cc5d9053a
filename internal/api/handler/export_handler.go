package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetable-viewer/internal/dto"
	"timetable-viewer/internal/service"
	"timetable-viewer/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWorkbook 导出全周课表
// GET /api/v1/export/timetable.xlsx?q=&rooms=
func (h *ExportHandler) ExportWorkbook(c *gin.Context) {
	var req dto.TimetableQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	data, filename, err := h.exportSvc.ExportWorkbook(c.Request.Context(), req.FilterState())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, contentTypeXLSX, filename, data)
}

// ExportRoomCalendar 导出房间日历
// GET /api/v1/rooms/:room/calendar.ics
func (h *ExportHandler) ExportRoomCalendar(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportRoomCalendar(c.Request.Context(), c.Param("room"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, contentTypeICS, filename, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.Error(c, http.StatusInternalServerError, codeExportFailed, err.Error())
		return
	}
	handleTimetableError(c, err)
}
