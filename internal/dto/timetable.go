package dto

import (
	"time"

	"timetable-viewer/internal/model"
)

// ── 课表查询 ──

// TimetableQuery 当天课表查询参数（rooms 可重复传参）
type TimetableQuery struct {
	Day   int      `form:"day"`
	Q     string   `form:"q"     binding:"max=200"`
	Rooms []string `form:"rooms" binding:"max=500"`
}

// FilterState 转换为过滤状态
func (q *TimetableQuery) FilterState() model.FilterState {
	return model.FilterState{
		SearchQuery:   q.Q,
		SelectedRooms: q.Rooms,
		ActiveDay:     q.Day,
	}
}

// ── 元数据 ──

// MetaResponse 课表元数据（星期、时间段、房间下拉列表）
type MetaResponse struct {
	Days           []DayResponse    `json:"days"`
	TimeSlots      []model.TimeSlot `json:"time_slots"`
	Rooms          []string         `json:"rooms"`
	Source         string           `json:"source"`
	DatasetVersion int64            `json:"dataset_version"`
	LoadedAt       time.Time        `json:"loaded_at"`
}

// DayResponse 星期
type DayResponse struct {
	Index int    `json:"index"`
	Key   string `json:"key"`  // "MONDAY"
	Name  string `json:"name"` // "Monday"
}

// ── 统计 ──

// StatsResponse 课表统计
type StatsResponse struct {
	TotalClasses int            `json:"total_classes"`
	ActiveRooms  int            `json:"active_rooms"`
	TotalRooms   int            `json:"total_rooms"`
	ClassesByDay []DayCountItem `json:"classes_by_day"`
}

// DayCountItem 单日课程数
type DayCountItem struct {
	Day   int    `json:"day"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RoomListResponse 房间列表（已排序、去重）
type RoomListResponse struct {
	Rooms []string `json:"rooms"`
	Total int      `json:"total"`
}

// ── 课表视图 ──

// SlotResponse 单个时间段
type SlotResponse struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Content  string `json:"content"`
	Occupied bool   `json:"occupied"`
}

// RoomDayResponse 某房间当天的课程
type RoomDayResponse struct {
	Room  string         `json:"room"`
	Slots []SlotResponse `json:"slots"`
}

// DayViewResponse 当天过滤后的课表
// 无匹配时 rooms 为空数组且 no_results=true，由前端渲染"无结果"状态
type DayViewResponse struct {
	Day           int               `json:"day"`
	DayName       string            `json:"day_name"`
	Query         string            `json:"query"`
	SelectedRooms []string          `json:"selected_rooms"`
	Rooms         []RoomDayResponse `json:"rooms"`
	Total         int               `json:"total"`
	NoResults     bool              `json:"no_results"`
}

// RoomWeekResponse 房间整周课表（详情视图）
type RoomWeekResponse struct {
	Room string            `json:"room"`
	Days []RoomWeekDayItem `json:"days"`
}

// RoomWeekDayItem 详情视图中的一天
type RoomWeekDayItem struct {
	Day   int            `json:"day"`
	Name  string         `json:"name"`
	Slots []SlotResponse `json:"slots"`
}
