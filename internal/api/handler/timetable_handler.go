package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetable-viewer/internal/dto"
	"timetable-viewer/internal/service"
	"timetable-viewer/pkg/response"
)

// 课表模块错误码
const (
	codeBadParams       = 20001
	codeInvalidDay      = 20002
	codeRoomNotFound    = 20003
	codeSessionNotFound = 20004
	codeExportFailed    = 20005
	codeNotLoaded       = 50001
	codeBodyTooLarge    = 10005
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// Meta 课表元数据
// GET /api/v1/meta
func (h *TimetableHandler) Meta(c *gin.Context) {
	resp, err := h.svc.Meta(c.Request.Context())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Stats 课表统计
// GET /api/v1/stats
func (h *TimetableHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Rooms 房间下拉列表
// GET /api/v1/rooms
func (h *TimetableHandler) Rooms(c *gin.Context) {
	resp, err := h.svc.Rooms(c.Request.Context())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// DayView 当天课表（无状态查询，过滤条件全部来自查询参数）
// GET /api/v1/timetable?day=0&q=cs101&rooms=LAB%20A&rooms=LAB%20B
func (h *TimetableHandler) DayView(c *gin.Context) {
	var req dto.TimetableQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.DayView(c.Request.Context(), req.FilterState())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// RoomWeek 房间整周课表
// GET /api/v1/rooms/:room/week
func (h *TimetableHandler) RoomWeek(c *gin.Context) {
	resp, err := h.svc.RoomWeek(c.Request.Context(), c.Param("room"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleBindError 参数绑定失败；未声明长度的请求体超限时在读取阶段才报错，这里转为 413
func handleBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
		return
	}
	response.BadRequest(c, codeBadParams, err.Error())
}

// handleTimetableError 统一课表模块错误映射
func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDay):
		response.BadRequest(c, codeInvalidDay, err.Error())
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, codeRoomNotFound, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, codeSessionNotFound, err.Error())
	case errors.Is(err, service.ErrDatasetNotLoaded):
		response.ServiceUnavailable(c, codeNotLoaded, err.Error())
	default:
		response.InternalError(c)
	}
}
