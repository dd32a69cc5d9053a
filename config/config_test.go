package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Dataset: DatasetConfig{Path: "data/timetable.json", WeekStart: "2026-01-05", Weeks: 1},
	}
}

func TestLoad_DefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
dataset:
  path: data/timetable.xlsx
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Dataset.ResolvedFormat() != "xlsx" {
		t.Errorf("期望按扩展名推断为 xlsx，实际=%s", cfg.Dataset.ResolvedFormat())
	}
	if cfg.Layout.LabelKey != "DAY" {
		t.Errorf("期望默认 label_key=DAY，实际=%s", cfg.Layout.LabelKey)
	}
	if cfg.Session.TTL.Hours() != 2 {
		t.Errorf("期望默认会话 TTL 为 2h，实际=%v", cfg.Session.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("期望 log.level=debug，实际=%s", cfg.Log.Level)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("端口越界应校验失败")
	}
}

func TestValidate_UnknownFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Dataset.Format = "csv"
	if err := cfg.Validate(); err == nil {
		t.Error("不支持的数据格式应校验失败")
	}
}

func TestValidate_KeyMappingShape(t *testing.T) {
	cfg := validConfig()
	cfg.Layout.KeyMapping = [][]string{{"a", "b", "c", "d", "e"}}
	if err := cfg.Validate(); err == nil {
		t.Error("key_mapping 行数不足应校验失败")
	}

	rows := make([][]string, 7)
	for i := range rows {
		rows[i] = []string{"a", "b", "c", "d", "e"}
	}
	rows[3] = []string{"a", "b"}
	cfg.Layout.KeyMapping = rows
	if err := cfg.Validate(); err == nil {
		t.Error("key_mapping 列数不足应校验失败")
	}
}

func TestValidate_TimeSlots(t *testing.T) {
	cfg := validConfig()
	cfg.Layout.TimeSlots = []TimeSlotConfig{
		{Start: "08:00", End: "10:00"},
		{Start: "10:00", End: "12:00"},
		{Start: "12:00", End: "14:00"},
		{Start: "14:00", End: "16:00"},
		{Start: "18:00", End: "16:00"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("结束时间早于开始时间应校验失败")
	}

	cfg.Layout.TimeSlots[4] = TimeSlotConfig{Start: "16:00", End: "18:00"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("合法时间段不应校验失败: %v", err)
	}
}

func TestValidate_WeekStart(t *testing.T) {
	cfg := validConfig()
	cfg.Dataset.WeekStart = "05/01/2026"
	if err := cfg.Validate(); err == nil {
		t.Error("week_start 格式错误应校验失败")
	}

	// 2026-01-07 是周三
	cfg.Dataset.WeekStart = "2026-01-07"
	if err := cfg.Validate(); err == nil {
		t.Error("week_start 不是周一应校验失败")
	}

	cfg.Dataset.WeekStart = "2026-01-05"
	if err := cfg.Validate(); err != nil {
		t.Errorf("周一日期不应校验失败: %v", err)
	}
}
