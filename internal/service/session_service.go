package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/dto"
	"timetable-viewer/internal/model"
)

// ── 会话模块业务错误 ──

var (
	ErrSessionNotFound = errors.New("会话不存在或已过期")
)

// 详情视图状态机
const (
	SessionStateBrowsing   = "browsing"
	SessionStateRoomDetail = "room_detail"

	eventOpenDetail  = "open_detail"
	eventCloseDetail = "close_detail"
)

// ── SessionService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 会话保存界面的选择元组 (星期, 搜索词, 已选房间, 详情房间)，不持久化
//   - 会话存放在带 TTL 的内存缓存中，每次访问刷新过期时间
//   - 状态迁移都是直接赋值；详情视图的打开/关闭由状态机约束：
//     browsing --open_detail--> room_detail --close_detail--> browsing，
//     详情打开时再次 open_detail 只切换房间，浏览状态下 close_detail 为空操作
// ─────────────────────────────────────────────────────────────

// SessionService 视图会话业务接口
type SessionService interface {
	Create(ctx context.Context) (*dto.SessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id string) error
	SelectDay(ctx context.Context, id string, day int) (*dto.SessionResponse, error)
	SetSearch(ctx context.Context, id string, query string) (*dto.SessionResponse, error)
	SetRooms(ctx context.Context, id string, rooms []string) (*dto.SessionResponse, error)
	ToggleRoom(ctx context.Context, id string, room string) (*dto.SessionResponse, error)
	ClearRooms(ctx context.Context, id string) (*dto.SessionResponse, error)
	OpenDetail(ctx context.Context, id string, room string) (*dto.SessionResponse, error)
	CloseDetail(ctx context.Context, id string) (*dto.SessionResponse, error)
}

// viewSession 单个视图会话
type viewSession struct {
	mu         sync.Mutex
	id         string
	machine    *fsm.FSM
	filter     model.FilterState
	detailRoom string
	updatedAt  time.Time
}

func newViewSession(id string) *viewSession {
	return &viewSession{
		id: id,
		machine: fsm.NewFSM(
			SessionStateBrowsing,
			fsm.Events{
				{Name: eventOpenDetail, Src: []string{SessionStateBrowsing, SessionStateRoomDetail}, Dst: SessionStateRoomDetail},
				{Name: eventCloseDetail, Src: []string{SessionStateRoomDetail}, Dst: SessionStateBrowsing},
			},
			fsm.Callbacks{},
		),
		filter:    model.FilterState{SelectedRooms: []string{}},
		updatedAt: time.Now(),
	}
}

type sessionService struct {
	timetable TimetableService
	sessions  *cache.Cache
	logger    *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(cfg *config.SessionConfig, timetable TimetableService, logger *zap.Logger) SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}

	sessions := cache.New(ttl, cleanup)
	sessions.OnEvicted(func(id string, _ interface{}) {
		logger.Debug("视图会话已过期", zap.String("session_id", id))
	})

	return &sessionService{
		timetable: timetable,
		sessions:  sessions,
		logger:    logger,
	}
}

// ────────────────────── 生命周期 ──────────────────────

func (s *sessionService) Create(ctx context.Context) (*dto.SessionResponse, error) {
	sess := newViewSession(uuid.NewString())

	// 先渲染再入缓存，数据集未加载时不留下无主会话
	resp, err := s.render(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(sess.id, sess, cache.DefaultExpiration)

	s.logger.Debug("创建视图会话", zap.String("session_id", sess.id))
	return resp, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, nil)
}

func (s *sessionService) Delete(_ context.Context, id string) error {
	if _, ok := s.sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.sessions.Delete(id)
	return nil
}

// ────────────────────── 过滤状态 ──────────────────────

func (s *sessionService) SelectDay(ctx context.Context, id string, day int) (*dto.SessionResponse, error) {
	if !model.ValidDay(day) {
		return nil, ErrInvalidDay
	}
	return s.mutate(ctx, id, func(sess *viewSession) error {
		sess.filter.ActiveDay = day
		return nil
	})
}

func (s *sessionService) SetSearch(ctx context.Context, id string, query string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *viewSession) error {
		sess.filter.SearchQuery = query
		return nil
	})
}

func (s *sessionService) SetRooms(ctx context.Context, id string, rooms []string) (*dto.SessionResponse, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// 去重并保持原有顺序
	seen := make(map[string]bool, len(rooms))
	selected := make([]string, 0, len(rooms))
	for _, r := range rooms {
		if seen[r] {
			continue
		}
		if !snap.Schedule.Has(r) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, r)
		}
		seen[r] = true
		selected = append(selected, r)
	}

	return s.mutate(ctx, id, func(sess *viewSession) error {
		sess.filter.SelectedRooms = selected
		return nil
	})
}

func (s *sessionService) ToggleRoom(ctx context.Context, id string, room string) (*dto.SessionResponse, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(sess *viewSession) error {
		current := sess.filter.SelectedRooms
		for i, r := range current {
			if r == room {
				next := make([]string, 0, len(current)-1)
				next = append(next, current[:i]...)
				sess.filter.SelectedRooms = append(next, current[i+1:]...)
				return nil
			}
		}
		if !snap.Schedule.Has(room) {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, room)
		}
		next := make([]string, 0, len(current)+1)
		next = append(next, current...)
		sess.filter.SelectedRooms = append(next, room)
		return nil
	})
}

func (s *sessionService) ClearRooms(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *viewSession) error {
		sess.filter.SelectedRooms = []string{}
		return nil
	})
}

// ────────────────────── 详情视图 ──────────────────────

func (s *sessionService) OpenDetail(ctx context.Context, id string, room string) (*dto.SessionResponse, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Schedule.Has(room) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, room)
	}

	return s.mutate(ctx, id, func(sess *viewSession) error {
		if err := sess.machine.Event(ctx, eventOpenDetail); err != nil {
			// 详情已打开时目标状态不变，仅切换房间
			var noTransition fsm.NoTransitionError
			if !errors.As(err, &noTransition) {
				return err
			}
		}
		sess.detailRoom = room
		return nil
	})
}

func (s *sessionService) CloseDetail(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return s.mutate(ctx, id, func(sess *viewSession) error {
		if !sess.machine.Can(eventCloseDetail) {
			return nil
		}
		if err := sess.machine.Event(ctx, eventCloseDetail); err != nil {
			return err
		}
		sess.detailRoom = ""
		return nil
	})
}

// ── 辅助函数 ──

// mutate 在会话锁内执行修改（fn 为 nil 时只读），刷新 TTL 并渲染响应
func (s *sessionService) mutate(ctx context.Context, id string, fn func(*viewSession) error) (*dto.SessionResponse, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*viewSession)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if fn != nil {
		if err := fn(sess); err != nil {
			return nil, err
		}
		sess.updatedAt = time.Now()
	}
	s.sessions.Set(id, sess, cache.DefaultExpiration)

	return s.render(ctx, sess)
}

// render 调用方需持有 sess.mu
func (s *sessionService) render(ctx context.Context, sess *viewSession) (*dto.SessionResponse, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	view, err := buildDayView(snap, sess.filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionResponse{
		ID:            sess.id,
		State:         sess.machine.Current(),
		ActiveDay:     sess.filter.ActiveDay,
		SearchQuery:   sess.filter.SearchQuery,
		SelectedRooms: append([]string{}, sess.filter.SelectedRooms...),
		DetailRoom:    sess.detailRoom,
		UpdatedAt:     sess.updatedAt,
		View:          view,
	}

	if sess.detailRoom != "" {
		// 数据集重新加载后房间可能已不存在，此时不返回详情
		if detail, err := buildRoomWeek(snap, sess.detailRoom); err == nil {
			resp.Detail = detail
		}
	}
	return resp, nil
}
