package service

import "timetable-viewer/internal/model"

// SlotView 某房间某天某时间段的展示数据
type SlotView struct {
	Index    int
	Slot     model.TimeSlot
	Content  string
	Occupied bool
}

// DayView 某房间某一天
type DayView struct {
	Day   int
	Name  string
	Slots []SlotView
}

// WeekGrid 某房间整周（7 天 × 5 时间段），用于房间详情
type WeekGrid struct {
	Room string
	Days []DayView
}

// DaySlots 返回房间在指定星期的 5 个时间段，房间不存在或星期越界时 ok=false
func DaySlots(schedule *model.NormalizedSchedule, layout *model.Layout, room string, day int) ([]SlotView, bool) {
	if !model.ValidDay(day) {
		return nil, false
	}
	rs, ok := schedule.Lookup(room)
	if !ok {
		return nil, false
	}
	return daySlots(rs, layout, day), true
}

// RowSlots 按已命中的行投影某一天，同名房间各行保留自己的内容
func RowSlots(rs *model.RoomSchedule, layout *model.Layout, day int) ([]SlotView, bool) {
	if rs == nil || !model.ValidDay(day) {
		return nil, false
	}
	return daySlots(rs, layout, day), true
}

// RoomWeek 返回房间整周课表
func RoomWeek(schedule *model.NormalizedSchedule, layout *model.Layout, room string) (WeekGrid, bool) {
	rs, ok := schedule.Lookup(room)
	if !ok {
		return WeekGrid{}, false
	}

	grid := WeekGrid{Room: rs.Room, Days: make([]DayView, 0, model.DaysPerWeek)}
	for d := 0; d < model.DaysPerWeek; d++ {
		grid.Days = append(grid.Days, DayView{
			Day:   d,
			Name:  model.DayNames[d],
			Slots: daySlots(rs, layout, d),
		})
	}
	return grid, true
}

func daySlots(rs *model.RoomSchedule, layout *model.Layout, day int) []SlotView {
	slots := make([]SlotView, model.SlotsPerDay)
	for s := 0; s < model.SlotsPerDay; s++ {
		cell := rs.Cells[day][s]
		slots[s] = SlotView{
			Index:    s,
			Slot:     layout.TimeSlots[s],
			Content:  cell.Content,
			Occupied: cell.Occupied,
		}
	}
	return slots
}
