package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"timetable-viewer/internal/model"
	"timetable-viewer/internal/repository"
)

// ── Mock DatasetRepository ──

type mockDatasetRepo struct {
	entries []model.RawEntry
	err     error
	calls   int
}

func (m *mockDatasetRepo) Load(_ context.Context) ([]model.RawEntry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockDatasetRepo) Source() string { return "mock" }

// ── 测试数据 ──
//
// 默认版式下：
//   - LAB A：周一 08:00 CS101；周一 10:00 内容为房间名（视为空）；周二 08:00 MA201
//   - LAB B：周一 12:00 PHY110；周一 16:00 EE205
//   - ROOM 12：整周无课

func sampleRawEntries() []model.RawEntry {
	return []model.RawEntry{
		// 首行为时间段表头元数据
		{"DAY": "TIME", "MONDAY": "08:00 - 10:00", "Column3": "10:00 - 12:00"},
		{"DAY": "LAB A", "MONDAY": "CS101", "Column3": "LAB A", "Column8": "MA201"},
		{"DAY": "LAB B", "Column4": "PHY110", "TUESDAY": "EE205"},
		{"DAY": "ROOM 12"},
	}
}

func sampleSchedule() *model.NormalizedSchedule {
	return BuildIndex(sampleRawEntries(), model.DefaultLayout())
}

// newLoadedTimetable 返回已加载测试数据的 TimetableService
func newLoadedTimetable(t *testing.T) (TimetableService, *mockDatasetRepo) {
	t.Helper()
	mock := &mockDatasetRepo{entries: sampleRawEntries()}
	svc := NewTimetableService(&repository.Repository{Dataset: mock}, model.DefaultLayout(), zap.NewNop())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	return svc, mock
}
