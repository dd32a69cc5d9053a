package service

import "timetable-viewer/internal/model"

// ComputeStats 遍历一次课表，统计课程总数与有课房间数
// 房间按名称去重计数
func ComputeStats(schedule *model.NormalizedSchedule) model.Stats {
	var stats model.Stats
	if schedule == nil {
		return stats
	}

	seen := make(map[string]bool, len(schedule.Rooms))
	active := make(map[string]bool, len(schedule.Rooms))

	for i := range schedule.Rooms {
		rs := &schedule.Rooms[i]
		seen[rs.Room] = true
		for d := 0; d < model.DaysPerWeek; d++ {
			for s := 0; s < model.SlotsPerDay; s++ {
				if rs.Cells[d][s].Occupied {
					stats.TotalClasses++
					stats.ClassesByDay[d]++
					active[rs.Room] = true
				}
			}
		}
	}

	stats.TotalRooms = len(seen)
	stats.ActiveRooms = len(active)
	return stats
}
