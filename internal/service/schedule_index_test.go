package service

import (
	"testing"

	"timetable-viewer/internal/model"
)

func TestBuildIndex_DropsHeaderRow(t *testing.T) {
	raw := sampleRawEntries()
	schedule := BuildIndex(raw, model.DefaultLayout())

	if schedule.Len() != len(raw)-1 {
		t.Fatalf("期望 %d 个房间, 实际 %d", len(raw)-1, schedule.Len())
	}
	if schedule.Has("TIME") {
		t.Error("首行表头不应成为房间")
	}
	want := []string{"LAB A", "LAB B", "ROOM 12"}
	for i, name := range want {
		if schedule.Rooms[i].Room != name {
			t.Errorf("第 %d 个房间期望 %q, 实际 %q", i, name, schedule.Rooms[i].Room)
		}
	}
}

func TestBuildIndex_EmptyAndHeaderOnly(t *testing.T) {
	layout := model.DefaultLayout()

	if n := BuildIndex(nil, layout).Len(); n != 0 {
		t.Errorf("nil 输入期望 0 个房间, 实际 %d", n)
	}
	if n := BuildIndex([]model.RawEntry{{"DAY": "TIME"}}, layout).Len(); n != 0 {
		t.Errorf("仅表头期望 0 个房间, 实际 %d", n)
	}
}

func TestBuildIndex_CellMapping(t *testing.T) {
	schedule := sampleSchedule()

	labA, ok := schedule.Lookup("LAB A")
	if !ok {
		t.Fatal("未找到 LAB A")
	}

	// 周一 08:00 ← MONDAY 列
	if c := labA.Cells[0][0]; c.Content != "CS101" || !c.Occupied {
		t.Errorf("LAB A 周一第 1 节期望 CS101 占用, 实际 %+v", c)
	}
	// 内容等于房间名 → 空
	if c := labA.Cells[0][1]; c.Occupied {
		t.Errorf("内容为房间名时不应视为占用: %+v", c)
	}
	// 周二 08:00 ← Column8
	if c := labA.Cells[1][0]; c.Content != "MA201" || !c.Occupied {
		t.Errorf("LAB A 周二第 1 节期望 MA201 占用, 实际 %+v", c)
	}
	// 缺失列 → 空
	if c := labA.Cells[6][4]; c.Content != "" || c.Occupied {
		t.Errorf("缺失列应为空单元格, 实际 %+v", c)
	}

	labB, _ := schedule.Lookup("LAB B")
	// 周一最后一节映射到 TUESDAY 列
	if c := labB.Cells[0][4]; c.Content != "EE205" || !c.Occupied {
		t.Errorf("LAB B 周一第 5 节期望 EE205, 实际 %+v", c)
	}
}

func TestBuildIndex_MissingLabelKey(t *testing.T) {
	raw := []model.RawEntry{
		{"DAY": "TIME"},
		{"MONDAY": "CS101"},
	}
	schedule := BuildIndex(raw, model.DefaultLayout())
	if schedule.Len() != 1 {
		t.Fatalf("期望 1 个房间, 实际 %d", schedule.Len())
	}
	rs, ok := schedule.Lookup("")
	if !ok {
		t.Fatal("缺少房间列时房间名应为空字符串")
	}
	if !rs.Cells[0][0].Occupied {
		t.Error("空房间名不影响单元格占用判断")
	}
}

func TestBuildIndex_DuplicateRoomFirstWins(t *testing.T) {
	raw := []model.RawEntry{
		{"DAY": "TIME"},
		{"DAY": "LAB A", "MONDAY": "FIRST"},
		{"DAY": "LAB A", "MONDAY": "SECOND"},
	}
	schedule := BuildIndex(raw, model.DefaultLayout())
	if schedule.Len() != 2 {
		t.Fatalf("重名房间应全部保留, 实际 %d", schedule.Len())
	}
	rs, _ := schedule.Lookup("LAB A")
	if rs.Cells[0][0].Content != "FIRST" {
		t.Errorf("查找应以首次出现为准, 实际 %q", rs.Cells[0][0].Content)
	}
}

func TestIsOccupied(t *testing.T) {
	tests := []struct {
		content string
		room    string
		want    bool
	}{
		{"CS101", "LAB A", true},
		{"", "LAB A", false},
		{"   ", "LAB A", false},
		{"\t\n", "LAB A", false},
		{"LAB A", "LAB A", false},
		{"lab a", "LAB A", true},
		{" LAB A ", "LAB A", true},
	}
	for _, tt := range tests {
		if got := IsOccupied(tt.content, tt.room); got != tt.want {
			t.Errorf("IsOccupied(%q, %q) = %v, 期望 %v", tt.content, tt.room, got, tt.want)
		}
	}
}
