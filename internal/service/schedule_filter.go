package service

import (
	"strings"

	"timetable-viewer/internal/model"
)

// FilterRooms 按过滤状态返回当前可见房间（保持数据集顺序）
//
// 两级过滤按 AND 组合：
//  1. 房间集合：SelectedRooms 非空时只保留其中的房间，为空表示不限制
//  2. 文本搜索：查询词去除首尾空白后为空则不限制；否则不区分大小写，
//     命中房间名或当前星期任一单元格内容即保留
//
// 文本搜索只看 ActiveDay 当天的内容，与界面当前展示的一天保持一致。
// 无结果返回空切片而不是 nil。
func FilterRooms(schedule *model.NormalizedSchedule, state model.FilterState) []string {
	matched := FilterRoomSchedules(schedule, state)
	result := make([]string, 0, len(matched))
	for _, rs := range matched {
		result = append(result, rs.Room)
	}
	return result
}

// FilterRoomSchedules 与 FilterRooms 规则相同，但返回命中的行本身
//
// 同名房间各自独立匹配，投影时须使用这里返回的行，不能再按名称回查。
func FilterRoomSchedules(schedule *model.NormalizedSchedule, state model.FilterState) []*model.RoomSchedule {
	result := make([]*model.RoomSchedule, 0)
	if schedule == nil {
		return result
	}

	var selected map[string]bool
	if len(state.SelectedRooms) > 0 {
		selected = make(map[string]bool, len(state.SelectedRooms))
		for _, r := range state.SelectedRooms {
			selected[r] = true
		}
	}

	query := strings.ToLower(strings.TrimSpace(state.SearchQuery))

	for i := range schedule.Rooms {
		rs := &schedule.Rooms[i]
		if selected != nil && !selected[rs.Room] {
			continue
		}
		if query != "" && !matchesQuery(rs, state.ActiveDay, query) {
			continue
		}
		result = append(result, rs)
	}
	return result
}

// matchesQuery query 须已转为小写
func matchesQuery(rs *model.RoomSchedule, day int, query string) bool {
	if strings.Contains(strings.ToLower(rs.Room), query) {
		return true
	}
	if !model.ValidDay(day) {
		return false
	}
	for _, cell := range rs.Cells[day] {
		if cell.Content != "" && strings.Contains(strings.ToLower(cell.Content), query) {
			return true
		}
	}
	return false
}
