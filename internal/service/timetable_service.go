package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"timetable-viewer/internal/dto"
	"timetable-viewer/internal/model"
	"timetable-viewer/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrDatasetNotLoaded = errors.New("课表数据尚未加载")
	ErrInvalidDay       = errors.New("星期下标必须在 0-6 之间")
	ErrRoomNotFound     = errors.New("房间不存在")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 数据集在启动时一次性加载，归一化课表与统计结果随快照缓存
//   - Load 可重复调用（SIGHUP），成功后整体替换快照并递增版本号；
//     失败时保留旧快照
//   - 过滤与投影都是基于快照的纯计算，每次请求同步完成
// ─────────────────────────────────────────────────────────────

// TimetableService 课表模块业务接口
type TimetableService interface {
	// Load 读取数据集并重建索引与统计
	Load(ctx context.Context) error
	// Snapshot 当前快照（未加载时返回 ErrDatasetNotLoaded）
	Snapshot(ctx context.Context) (*Snapshot, error)
	// Meta 星期、时间段、房间列表等元数据
	Meta(ctx context.Context) (*dto.MetaResponse, error)
	// Stats 课表统计
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	// Rooms 排序去重后的房间列表
	Rooms(ctx context.Context) (*dto.RoomListResponse, error)
	// DayView 按过滤状态返回当天课表
	DayView(ctx context.Context, state model.FilterState) (*dto.DayViewResponse, error)
	// RoomWeek 房间整周课表
	RoomWeek(ctx context.Context, room string) (*dto.RoomWeekResponse, error)
}

// Snapshot 一次加载得到的只读数据
type Snapshot struct {
	Schedule *model.NormalizedSchedule
	Layout   *model.Layout
	Stats    model.Stats
	Rooms    []string // 排序去重
	Source   string
	Version  int64
	LoadedAt time.Time
}

type timetableService struct {
	repo   *repository.Repository
	layout *model.Layout
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	version  int64
}

// NewTimetableService 创建 TimetableService 实例（需调用 Load 后才可查询）
func NewTimetableService(repo *repository.Repository, layout *model.Layout, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, layout: layout, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Load 加载数据集
// ════════════════════════════════════════════════════════════

func (s *timetableService) Load(ctx context.Context) error {
	start := time.Now()

	raw, err := s.repo.Dataset.Load(ctx)
	if err != nil {
		s.logger.Error("加载课表数据失败",
			zap.String("source", s.repo.Dataset.Source()),
			zap.Error(err),
		)
		return fmt.Errorf("加载课表数据失败: %w", err)
	}

	schedule := BuildIndex(raw, s.layout)
	stats := ComputeStats(schedule)

	s.mu.Lock()
	s.version++
	s.snapshot = &Snapshot{
		Schedule: schedule,
		Layout:   s.layout,
		Stats:    stats,
		Rooms:    sortedRooms(schedule),
		Source:   s.repo.Dataset.Source(),
		Version:  s.version,
		LoadedAt: time.Now(),
	}
	version := s.version
	s.mu.Unlock()

	s.logger.Info("课表数据加载完成",
		zap.String("source", s.repo.Dataset.Source()),
		zap.Int("raw_rows", len(raw)),
		zap.Int("rooms", schedule.Len()),
		zap.Int("total_classes", stats.TotalClasses),
		zap.Int("active_rooms", stats.ActiveRooms),
		zap.Int64("version", version),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *timetableService) Snapshot(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.snapshot, nil
}

// ────────────────────── 元数据 / 统计 ──────────────────────

func (s *timetableService) Meta(ctx context.Context) (*dto.MetaResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	days := make([]dto.DayResponse, 0, model.DaysPerWeek)
	for d := 0; d < model.DaysPerWeek; d++ {
		days = append(days, dto.DayResponse{
			Index: d,
			Key:   model.DayNames[d],
			Name:  model.DayDisplayName(d),
		})
	}

	return &dto.MetaResponse{
		Days:           days,
		TimeSlots:      snap.Layout.TimeSlots[:],
		Rooms:          snap.Rooms,
		Source:         snap.Source,
		DatasetVersion: snap.Version,
		LoadedAt:       snap.LoadedAt,
	}, nil
}

func (s *timetableService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	byDay := make([]dto.DayCountItem, 0, model.DaysPerWeek)
	for d, n := range snap.Stats.ClassesByDay {
		byDay = append(byDay, dto.DayCountItem{Day: d, Name: model.DayDisplayName(d), Count: n})
	}

	return &dto.StatsResponse{
		TotalClasses: snap.Stats.TotalClasses,
		ActiveRooms:  snap.Stats.ActiveRooms,
		TotalRooms:   snap.Stats.TotalRooms,
		ClassesByDay: byDay,
	}, nil
}

func (s *timetableService) Rooms(ctx context.Context) (*dto.RoomListResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RoomListResponse{Rooms: snap.Rooms, Total: len(snap.Rooms)}, nil
}

// ────────────────────── 视图 ──────────────────────

func (s *timetableService) DayView(ctx context.Context, state model.FilterState) (*dto.DayViewResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildDayView(snap, state)
}

func (s *timetableService) RoomWeek(ctx context.Context, room string) (*dto.RoomWeekResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return buildRoomWeek(snap, room)
}

// ── 辅助函数 ──

// buildDayView 过滤 + 投影，供课表接口与会话共用
func buildDayView(snap *Snapshot, state model.FilterState) (*dto.DayViewResponse, error) {
	if !model.ValidDay(state.ActiveDay) {
		return nil, ErrInvalidDay
	}

	matched := FilterRoomSchedules(snap.Schedule, state)
	rooms := make([]dto.RoomDayResponse, 0, len(matched))
	for _, rs := range matched {
		slots, ok := RowSlots(rs, snap.Layout, state.ActiveDay)
		if !ok {
			continue
		}
		rooms = append(rooms, dto.RoomDayResponse{Room: rs.Room, Slots: toSlotResponses(slots)})
	}

	selected := state.SelectedRooms
	if selected == nil {
		selected = []string{}
	}

	return &dto.DayViewResponse{
		Day:           state.ActiveDay,
		DayName:       model.DayNames[state.ActiveDay],
		Query:         strings.TrimSpace(state.SearchQuery),
		SelectedRooms: selected,
		Rooms:         rooms,
		Total:         len(rooms),
		NoResults:     len(rooms) == 0,
	}, nil
}

func buildRoomWeek(snap *Snapshot, room string) (*dto.RoomWeekResponse, error) {
	grid, ok := RoomWeek(snap.Schedule, snap.Layout, room)
	if !ok {
		return nil, ErrRoomNotFound
	}

	days := make([]dto.RoomWeekDayItem, 0, len(grid.Days))
	for _, d := range grid.Days {
		days = append(days, dto.RoomWeekDayItem{
			Day:   d.Day,
			Name:  d.Name,
			Slots: toSlotResponses(d.Slots),
		})
	}
	return &dto.RoomWeekResponse{Room: grid.Room, Days: days}, nil
}

func toSlotResponses(slots []SlotView) []dto.SlotResponse {
	out := make([]dto.SlotResponse, 0, len(slots))
	for _, sv := range slots {
		out = append(out, dto.SlotResponse{
			Index:    sv.Index,
			Label:    sv.Slot.Label,
			Start:    sv.Slot.Start,
			End:      sv.Slot.End,
			Content:  sv.Content,
			Occupied: sv.Occupied,
		})
	}
	return out
}

// sortedRooms 房间下拉列表：按名称排序并去重
func sortedRooms(schedule *model.NormalizedSchedule) []string {
	seen := make(map[string]bool, schedule.Len())
	rooms := make([]string, 0, schedule.Len())
	for _, rs := range schedule.Rooms {
		if seen[rs.Room] {
			continue
		}
		seen[rs.Room] = true
		rooms = append(rooms, rs.Room)
	}
	sort.Strings(rooms)
	return rooms
}
