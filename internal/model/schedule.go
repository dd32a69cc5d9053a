package model

// RawEntry 原始数据中的一行：列名 → 单元格内容
// 一行代表一个房间的整周课表，按位置展平
type RawEntry map[string]string

// Cell 归一化后的单元格
type Cell struct {
	Content  string `json:"content"`
	Occupied bool   `json:"occupied"`
}

// RoomSchedule 单个房间的整周课表
type RoomSchedule struct {
	Room  string
	Cells [DaysPerWeek][SlotsPerDay]Cell
}

// NormalizedSchedule 归一化课表：按数据集顺序保存房间，并按房间名建立索引
type NormalizedSchedule struct {
	Rooms []RoomSchedule
	index map[string]int
}

// NewNormalizedSchedule 以给定房间列表构造课表；重名房间以首次出现为准
func NewNormalizedSchedule(rooms []RoomSchedule) *NormalizedSchedule {
	s := &NormalizedSchedule{
		Rooms: rooms,
		index: make(map[string]int, len(rooms)),
	}
	for i, r := range rooms {
		if _, exists := s.index[r.Room]; !exists {
			s.index[r.Room] = i
		}
	}
	return s
}

// Lookup 按房间名查找
func (s *NormalizedSchedule) Lookup(room string) (*RoomSchedule, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[room]
	if !ok {
		return nil, false
	}
	return &s.Rooms[i], true
}

// Has 判断房间是否存在
func (s *NormalizedSchedule) Has(room string) bool {
	_, ok := s.Lookup(room)
	return ok
}

// Len 房间数（含重名）
func (s *NormalizedSchedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rooms)
}

// FilterState 视图过滤状态（瞬时，不持久化）
type FilterState struct {
	SearchQuery   string
	SelectedRooms []string
	ActiveDay     int
}

// Stats 课表统计
type Stats struct {
	TotalClasses int              `json:"total_classes"`
	ActiveRooms  int              `json:"active_rooms"`
	TotalRooms   int              `json:"total_rooms"`
	ClassesByDay [DaysPerWeek]int `json:"classes_by_day"`
}
