package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DaysPerWeek 一周天数（周一 … 周日）
	DaysPerWeek = 7
	// SlotsPerDay 每天时间段数
	SlotsPerDay = 5
)

// DayNames 星期名称，与原始表格表头一致
var DayNames = [DaysPerWeek]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// DaySlotMap 日 × 时间段 → 原始数据列名
// 表格导出时按位置命名列（Column3、Column8 …），因此必须显式给出映射
type DaySlotMap [DaysPerWeek][SlotsPerDay]string

// DefaultDaySlotMap 内置版式（对应 2026 驻校课表导出文件）
var DefaultDaySlotMap = DaySlotMap{
	{"MONDAY", "Column3", "Column4", "Column5", "TUESDAY"},
	{"Column8", "Column9", "Column10", "Column11", "Column12"},
	{"Column14", "Column15", "Column16", "Column17", "Column18"},
	{"Column20", "Column21", "Column22", "Column23", "Column24"},
	{"Column26", "Column27", "Column28", "Column29", "Column30"},
	{"Column32", "Column33", "Column34", "Column35", "Column36"},
	{"Column38", "Column39", "Column40", "Column41", "Column42"},
}

// DefaultLabelKey 房间名所在列
const DefaultLabelKey = "DAY"

// TimeSlot 时间段
type TimeSlot struct {
	Label string `json:"label"`
	Start string `json:"start"` // "08:00"
	End   string `json:"end"`   // "10:00"
}

// DefaultTimeSlots 默认时间段：08:00 - 18:00，每段 2 小时
var DefaultTimeSlots = [SlotsPerDay]TimeSlot{
	NewTimeSlot("08:00", "10:00"),
	NewTimeSlot("10:00", "12:00"),
	NewTimeSlot("12:00", "14:00"),
	NewTimeSlot("14:00", "16:00"),
	NewTimeSlot("16:00", "18:00"),
}

// NewTimeSlot 按起止时间构造时间段，标签形如 "08:00 - 10:00"
func NewTimeSlot(start, end string) TimeSlot {
	return TimeSlot{Label: start + " - " + end, Start: start, End: end}
}

// Clock 解析 "HH:MM" 为当天偏移
func (t TimeSlot) Clock() (start, end time.Duration, err error) {
	s, err := time.Parse("15:04", t.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("无法解析开始时间 %q: %w", t.Start, err)
	}
	e, err := time.Parse("15:04", t.End)
	if err != nil {
		return 0, 0, fmt.Errorf("无法解析结束时间 %q: %w", t.End, err)
	}
	return time.Duration(s.Hour())*time.Hour + time.Duration(s.Minute())*time.Minute,
		time.Duration(e.Hour())*time.Hour + time.Duration(e.Minute())*time.Minute, nil
}

// Layout 进程级只读版式配置
type Layout struct {
	LabelKey  string
	Mapping   DaySlotMap
	TimeSlots [SlotsPerDay]TimeSlot
}

// DefaultLayout 返回内置版式
func DefaultLayout() *Layout {
	return &Layout{
		LabelKey:  DefaultLabelKey,
		Mapping:   DefaultDaySlotMap,
		TimeSlots: DefaultTimeSlots,
	}
}

// NewLayout 由配置构造版式；空参数回落到默认值
// mapping 必须为 7×5，timeSlots 必须为 5 个（各为 [start, end]）
func NewLayout(labelKey string, mapping [][]string, timeSlots [][2]string) (*Layout, error) {
	l := DefaultLayout()
	if labelKey != "" {
		l.LabelKey = labelKey
	}

	if len(mapping) > 0 {
		if len(mapping) != DaysPerWeek {
			return nil, fmt.Errorf("版式映射必须为 %d 行，实际 %d 行", DaysPerWeek, len(mapping))
		}
		for d, row := range mapping {
			if len(row) != SlotsPerDay {
				return nil, fmt.Errorf("版式映射第 %d 行必须为 %d 列，实际 %d 列", d+1, SlotsPerDay, len(row))
			}
			copy(l.Mapping[d][:], row)
		}
	}

	if len(timeSlots) > 0 {
		if len(timeSlots) != SlotsPerDay {
			return nil, fmt.Errorf("时间段必须为 %d 个，实际 %d 个", SlotsPerDay, len(timeSlots))
		}
		for i, ts := range timeSlots {
			l.TimeSlots[i] = NewTimeSlot(ts[0], ts[1])
		}
	}

	return l, nil
}

// DayDisplayName 返回首字母大写的星期名称（"Monday"）
func DayDisplayName(day int) string {
	if day < 0 || day >= DaysPerWeek {
		return ""
	}
	name := DayNames[day]
	return name[:1] + strings.ToLower(name[1:])
}

// ValidDay 判断星期下标是否在 [0, 6]
func ValidDay(day int) bool {
	return day >= 0 && day < DaysPerWeek
}
