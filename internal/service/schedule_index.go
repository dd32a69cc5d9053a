package service

import (
	"strings"

	"timetable-viewer/internal/model"
)

// ── 课表索引 ────────────────────────────────────────────────
//
// 职责：将按位置展平的原始行转为 (房间, 星期, 时间段) 可寻址的课表。
//
// 规则：
//   - 第一行固定为时间段表头元数据，无条件丢弃
//   - 列名缺失视为空内容，任何畸形输入都降级为空单元格，不返回错误
//   - 单元格为空白，或内容与房间名相同（导出时房间名渗入内容列），视为未占用
// ─────────────────────────────────────────────────────────────

// BuildIndex 由原始行与版式构建归一化课表（纯函数）
func BuildIndex(raw []model.RawEntry, layout *model.Layout) *model.NormalizedSchedule {
	if len(raw) <= 1 {
		return model.NewNormalizedSchedule(nil)
	}

	rooms := make([]model.RoomSchedule, 0, len(raw)-1)
	for _, entry := range raw[1:] {
		room := entry[layout.LabelKey]

		rs := model.RoomSchedule{Room: room}
		for d := 0; d < model.DaysPerWeek; d++ {
			for s := 0; s < model.SlotsPerDay; s++ {
				content := entry[layout.Mapping[d][s]]
				rs.Cells[d][s] = model.Cell{
					Content:  content,
					Occupied: IsOccupied(content, room),
				}
			}
		}
		rooms = append(rooms, rs)
	}

	return model.NewNormalizedSchedule(rooms)
}

// IsOccupied 单元格是否有课
// TODO: 内容恰好等于房间名的真实课程会被误判为空，需在数据源侧清洗后移除该规则
func IsOccupied(content, room string) bool {
	return strings.TrimSpace(content) != "" && content != room
}
