package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/api/handler"
	"timetable-viewer/internal/api/middleware"
	"timetable-viewer/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil，此时导出接口不限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	exportLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课表模块
		v1.GET("/meta", h.Timetable.Meta)
		v1.GET("/stats", h.Timetable.Stats)
		v1.GET("/timetable", h.Timetable.DayView)

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.Timetable.Rooms)
			rooms.GET("/:room/week", h.Timetable.RoomWeek)
			rooms.GET("/:room/calendar.ics", exportLimit, h.Export.ExportRoomCalendar)
		}

		// 导出模块
		export := v1.Group("/export")
		export.Use(exportLimit)
		{
			export.GET("/timetable.xlsx", h.Export.ExportWorkbook)
		}

		// 视图会话模块
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", h.Session.Create)
			sessions.GET("/:id", h.Session.Get)
			sessions.DELETE("/:id", h.Session.Delete)
			sessions.PUT("/:id/day", h.Session.SelectDay)
			sessions.PUT("/:id/search", h.Session.SetSearch)
			sessions.PUT("/:id/rooms", h.Session.SetRooms)
			sessions.POST("/:id/rooms/toggle", h.Session.ToggleRoom)
			sessions.DELETE("/:id/rooms", h.Session.ClearRooms)
			sessions.POST("/:id/detail", h.Session.OpenDetail)
			sessions.DELETE("/:id/detail", h.Session.CloseDetail)
		}
	}

	return r
}
