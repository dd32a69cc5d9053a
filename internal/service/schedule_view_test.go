package service

import (
	"testing"

	"timetable-viewer/internal/model"
)

func TestDaySlots(t *testing.T) {
	schedule := sampleSchedule()
	layout := model.DefaultLayout()

	slots, ok := DaySlots(schedule, layout, "LAB A", 0)
	if !ok {
		t.Fatal("LAB A 应存在")
	}
	if len(slots) != model.SlotsPerDay {
		t.Fatalf("期望 %d 个时间段, 实际 %d", model.SlotsPerDay, len(slots))
	}
	if slots[0].Slot.Label != "08:00 - 10:00" || slots[4].Slot.Label != "16:00 - 18:00" {
		t.Errorf("时间段标签错误: %q / %q", slots[0].Slot.Label, slots[4].Slot.Label)
	}
	if !slots[0].Occupied || slots[0].Content != "CS101" {
		t.Errorf("第 1 节期望 CS101, 实际 %+v", slots[0])
	}
	if slots[1].Occupied {
		t.Errorf("第 2 节应为空, 实际 %+v", slots[1])
	}
	for i, sv := range slots {
		if sv.Index != i {
			t.Errorf("时间段下标错误: %d != %d", sv.Index, i)
		}
	}
}

func TestDaySlots_NotFound(t *testing.T) {
	schedule := sampleSchedule()
	layout := model.DefaultLayout()

	if _, ok := DaySlots(schedule, layout, "NOWHERE", 0); ok {
		t.Error("不存在的房间应返回 ok=false")
	}
	if _, ok := DaySlots(schedule, layout, "LAB A", 7); ok {
		t.Error("星期越界应返回 ok=false")
	}
	if _, ok := DaySlots(schedule, layout, "LAB A", -1); ok {
		t.Error("星期为负应返回 ok=false")
	}
}

func TestRoomWeek(t *testing.T) {
	grid, ok := RoomWeek(sampleSchedule(), model.DefaultLayout(), "LAB A")
	if !ok {
		t.Fatal("LAB A 应存在")
	}
	if grid.Room != "LAB A" {
		t.Errorf("房间名错误: %q", grid.Room)
	}
	if len(grid.Days) != model.DaysPerWeek {
		t.Fatalf("期望 7 天, 实际 %d", len(grid.Days))
	}
	if grid.Days[0].Name != "MONDAY" || grid.Days[6].Name != "SUNDAY" {
		t.Errorf("星期名称错误: %q / %q", grid.Days[0].Name, grid.Days[6].Name)
	}

	occupied := 0
	for _, d := range grid.Days {
		for _, sv := range d.Slots {
			if sv.Occupied {
				occupied++
			}
		}
	}
	if occupied != 2 {
		t.Errorf("LAB A 整周期望 2 节课, 实际 %d", occupied)
	}

	if _, ok := RoomWeek(sampleSchedule(), model.DefaultLayout(), "NOWHERE"); ok {
		t.Error("不存在的房间应返回 ok=false")
	}
}
