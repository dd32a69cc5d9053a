package handler

import (
	"github.com/gin-gonic/gin"

	"timetable-viewer/internal/dto"
	"timetable-viewer/internal/service"
	"timetable-viewer/pkg/response"
)

// SessionHandler 视图会话 Handler
type SessionHandler struct {
	svc service.SessionService
}

// NewSessionHandler 创建 SessionHandler 实例
func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Create 创建会话
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	resp, err := h.svc.Create(c.Request.Context())
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// Get 获取会话及当前视图
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除会话
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// SelectDay 切换星期
// PUT /api/v1/sessions/:id/day
func (h *SessionHandler) SelectDay(c *gin.Context) {
	var req dto.SelectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.SelectDay(c.Request.Context(), c.Param("id"), *req.Day)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SetSearch 设置搜索词
// PUT /api/v1/sessions/:id/search
func (h *SessionHandler) SetSearch(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.SetSearch(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// SetRooms 整体设置房间过滤
// PUT /api/v1/sessions/:id/rooms
func (h *SessionHandler) SetRooms(c *gin.Context) {
	var req dto.SetRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.SetRooms(c.Request.Context(), c.Param("id"), req.Rooms)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ToggleRoom 切换单个房间的选中状态
// POST /api/v1/sessions/:id/rooms/toggle
func (h *SessionHandler) ToggleRoom(c *gin.Context) {
	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.ToggleRoom(c.Request.Context(), c.Param("id"), req.Room)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ClearRooms 清空房间过滤
// DELETE /api/v1/sessions/:id/rooms
func (h *SessionHandler) ClearRooms(c *gin.Context) {
	resp, err := h.svc.ClearRooms(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// OpenDetail 打开房间详情
// POST /api/v1/sessions/:id/detail
func (h *SessionHandler) OpenDetail(c *gin.Context) {
	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.OpenDetail(c.Request.Context(), c.Param("id"), req.Room)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// CloseDetail 关闭房间详情
// DELETE /api/v1/sessions/:id/detail
func (h *SessionHandler) CloseDetail(c *gin.Context) {
	resp, err := h.svc.CloseDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}
