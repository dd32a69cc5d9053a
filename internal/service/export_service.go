package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	icsProductID = "-//Timetable Viewer//Room Calendar//EN"
	xlsxFilename = "timetable.xlsx"
)

// ExportCache 导出文件缓存（由 Redis 实现，可为空）
type ExportCache interface {
	GetExport(ctx context.Context, key string) ([]byte, bool, error)
	SetExport(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// ExportService 导出业务接口
//
// 设计说明：
//   - 课表导出为 Excel：每天一个 Sheet，行 = 过滤后的房间，列 = 时间段；
//     每个 Sheet 使用相同的搜索词与房间过滤，搜索按各自星期的内容匹配
//   - 房间整周导出为 iCalendar：每个有课的单元格生成一个 VEVENT，
//     日期落在配置的参考周，weeks > 1 时附加 RRULE 每周重复
//   - 导出结果按 (数据集版本, 参数) 缓存；缓存不可用时直接生成
type ExportService interface {
	// ExportWorkbook 导出全周课表为 Excel
	ExportWorkbook(ctx context.Context, state model.FilterState) ([]byte, string, error)
	// ExportRoomCalendar 导出单个房间的 iCalendar 日历
	ExportRoomCalendar(ctx context.Context, room string) ([]byte, string, error)
}

type exportService struct {
	timetable TimetableService
	cache     ExportCache
	cacheTTL  time.Duration
	weekStart time.Time
	weeks     int
	loc       *time.Location
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例（cache 可为 nil）
func NewExportService(cfg *config.DatasetConfig, cacheTTL time.Duration, timetable TimetableService, cache ExportCache, logger *zap.Logger) ExportService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		if cfg.Timezone != "" {
			logger.Warn("时区无效，使用 UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
		loc = time.UTC
	}

	// 参考周从周一开始，VEVENT 日期 = weekStart + 星期下标
	weekStart, err := time.ParseInLocation("2006-01-02", cfg.WeekStart, loc)
	if err != nil {
		weekStart = time.Now().In(loc)
	}
	weekStart = mondayOf(weekStart)

	weeks := cfg.Weeks
	if weeks < 1 {
		weeks = 1
	}

	return &exportService{
		timetable: timetable,
		cache:     cache,
		cacheTTL:  cacheTTL,
		weekStart: weekStart,
		weeks:     weeks,
		loc:       loc,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportWorkbook 导出 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Monday" … "Sunday"
//   - 表头：Room | 08:00 - 10:00 | … | 16:00 - 18:00
//   - 单元格：课程内容，无课为 "-"

func (s *exportService) ExportWorkbook(ctx context.Context, state model.FilterState) ([]byte, string, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}

	key := fmt.Sprintf("v%d:xlsx:%s", snap.Version, filterDigest(state))
	if data, ok := s.cached(ctx, key); ok {
		return data, xlsxFilename, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#23A440"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	for d := 0; d < model.DaysPerWeek; d++ {
		sheet := model.DayDisplayName(d)
		if d == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				s.logger.Error("重命名 Sheet 失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		f.SetColWidth(sheet, "A", "A", 16)
		f.SetColWidth(sheet, "B", colName(model.SlotsPerDay), 24)

		// 表头
		f.SetCellValue(sheet, "A1", "Room")
		for i, ts := range snap.Layout.TimeSlots {
			f.SetCellValue(sheet, cellRef(colName(i+1), 1), ts.Label)
		}
		f.SetCellStyle(sheet, "A1", cellRef(colName(model.SlotsPerDay), 1), headerStyle)

		// 数据行
		dayState := state
		dayState.ActiveDay = d
		row := 2
		for _, rs := range FilterRoomSchedules(snap.Schedule, dayState) {
			slots, ok := RowSlots(rs, snap.Layout, d)
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cellRef("A", row), rs.Room)
			for _, sv := range slots {
				text := "-"
				if sv.Occupied {
					text = sv.Content
				}
				f.SetCellValue(sheet, cellRef(colName(sv.Index+1), row), text)
			}
			row++
		}
		if row > 2 {
			f.SetCellStyle(sheet, "B2", cellRef(colName(model.SlotsPerDay), row-1), cellStyle)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.store(ctx, key, buf.Bytes())
	return buf.Bytes(), xlsxFilename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportRoomCalendar 导出房间日历
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRoomCalendar(ctx context.Context, room string) ([]byte, string, error) {
	snap, err := s.timetable.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}

	grid, ok := RoomWeek(snap.Schedule, snap.Layout, room)
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	filename := calendarFilename(room)

	key := fmt.Sprintf("v%d:ics:%s", snap.Version, digest(room))
	if data, ok := s.cached(ctx, key); ok {
		return data, filename, nil
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(room)
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now().UTC()
	events := 0
	for _, day := range grid.Days {
		date := s.weekStart.AddDate(0, 0, day.Day)
		for _, sv := range day.Slots {
			if !sv.Occupied {
				continue
			}
			startOff, endOff, err := sv.Slot.Clock()
			if err != nil {
				s.logger.Warn("时间段格式无效，跳过", zap.String("slot", sv.Slot.Label), zap.Error(err))
				continue
			}
			midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)

			// UID 由 (房间, 星期, 时间段) 决定，重复导出时日历客户端可去重
			uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s|%d|%d", room, day.Day, sv.Index)))
			ev := cal.AddEvent(uid.String() + "@timetable-viewer")
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(midnight.Add(startOff))
			ev.SetEndAt(midnight.Add(endOff))
			ev.SetSummary(sv.Content)
			ev.SetLocation(room)
			ev.SetDescription(fmt.Sprintf("%s %s", model.DayDisplayName(day.Day), sv.Slot.Label))
			if s.weeks > 1 {
				ev.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", s.weeks))
			}
			events++
		}
	}

	data := []byte(cal.Serialize())
	s.logger.Debug("导出房间日历", zap.String("room", room), zap.Int("events", events))

	s.store(ctx, key, data)
	return data, filename, nil
}

// ── 缓存 ──

func (s *exportService) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.GetExport(ctx, key)
	if err != nil {
		// 缓存出错时降级为直接生成
		s.logger.Warn("读取导出缓存失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (s *exportService) store(ctx context.Context, key string, data []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetExport(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("写入导出缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cellRef(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// filterDigest 搜索词与房间过滤的摘要（忽略星期，导出包含全部 7 天）
// 每个字段带长度前缀，字段内容中的任何字符都不会与分隔混淆
func filterDigest(state model.FilterState) string {
	var b strings.Builder
	writeField := func(v string) {
		fmt.Fprintf(&b, "%d:%s", len(v), v)
	}
	writeField(strings.ToLower(strings.TrimSpace(state.SearchQuery)))
	fmt.Fprintf(&b, "#%d", len(state.SelectedRooms))
	for _, r := range state.SelectedRooms {
		writeField(r)
	}
	return digest(b.String())
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:12])
}

// calendarFilename 房间名中的非字母数字字符替换为下划线
func calendarFilename(room string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(room))
	if name == "" {
		name = "room"
	}
	return name + ".ics"
}

// mondayOf 返回 t 所在周的周一 00:00
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
