package dto

import "time"

// ── 视图会话 ──

// SelectDayRequest 切换星期
type SelectDayRequest struct {
	Day *int `json:"day" binding:"required,min=0,max=6"`
}

// SearchRequest 设置搜索词（空字符串表示清除）
type SearchRequest struct {
	Query string `json:"query" binding:"max=200"`
}

// SetRoomsRequest 整体设置房间过滤（空数组表示全部房间）
type SetRoomsRequest struct {
	Rooms []string `json:"rooms" binding:"max=500"`
}

// RoomRequest 针对单个房间的操作（切换过滤、打开详情）
type RoomRequest struct {
	Room string `json:"room" binding:"required"`
}

// SessionResponse 会话状态 + 当前视图
type SessionResponse struct {
	ID            string            `json:"id"`
	State         string            `json:"state"` // browsing | room_detail
	ActiveDay     int               `json:"active_day"`
	SearchQuery   string            `json:"search_query"`
	SelectedRooms []string          `json:"selected_rooms"`
	DetailRoom    string            `json:"detail_room,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
	View          *DayViewResponse  `json:"view"`
	Detail        *RoomWeekResponse `json:"detail,omitempty"`
}
