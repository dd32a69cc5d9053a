package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Layout  LayoutConfig  `mapstructure:"layout"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	BodyLimit int64           `mapstructure:"body_limit"` // 请求体上限（字节）
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 导出接口限流配置（依赖 Redis，不可用时放行）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatasetConfig 课表数据源配置
type DatasetConfig struct {
	Path      string `mapstructure:"path"`
	Format    string `mapstructure:"format"` // json | xlsx | 空（按扩展名推断）
	Sheet     string `mapstructure:"sheet"`  // 仅 xlsx，空表示第一个工作表
	WeekStart string `mapstructure:"week_start"`
	Weeks     int    `mapstructure:"weeks"`
	Timezone  string `mapstructure:"timezone"`
}

// ResolvedFormat 返回实际使用的数据格式
func (c *DatasetConfig) ResolvedFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	lower := strings.ToLower(c.Path)
	if strings.HasSuffix(lower, ".xlsx") {
		return "xlsx"
	}
	return "json"
}

// LayoutConfig 课表版式配置（日 × 时间段 → 列名映射）
// 为空时使用内置默认版式
type LayoutConfig struct {
	LabelKey   string           `mapstructure:"label_key"`
	KeyMapping [][]string       `mapstructure:"key_mapping"`
	TimeSlots  []TimeSlotConfig `mapstructure:"time_slots"`
}

// TimeSlotConfig 单个时间段
type TimeSlotConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// SessionConfig 视图会话配置
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.limit", 30)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("dataset.path", "data/timetable.json")
	v.SetDefault("dataset.format", "")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("dataset.week_start", "2026-01-05")
	v.SetDefault("dataset.weeks", 1)
	v.SetDefault("dataset.timezone", "Africa/Lusaka")

	v.SetDefault("layout.label_key", "DAY")

	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.cleanup_interval", "10m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("TIMETABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("配置校验失败: dataset.path 不能为空")
	}
	switch c.Dataset.ResolvedFormat() {
	case "json", "xlsx":
	default:
		return fmt.Errorf("配置校验失败: dataset.format 仅支持 json 或 xlsx")
	}
	if c.Dataset.WeekStart != "" {
		ws, err := time.Parse("2006-01-02", c.Dataset.WeekStart)
		if err != nil {
			return fmt.Errorf("配置校验失败: dataset.week_start 格式应为 YYYY-MM-DD")
		}
		if ws.Weekday() != time.Monday {
			return fmt.Errorf("配置校验失败: dataset.week_start 必须是周一，%s 是 %s", c.Dataset.WeekStart, ws.Weekday())
		}
	}
	if c.Dataset.Weeks < 0 {
		return fmt.Errorf("配置校验失败: dataset.weeks 不能为负数")
	}

	// 版式覆盖必须完整：7 天 × 5 个时间段
	if len(c.Layout.KeyMapping) > 0 {
		if len(c.Layout.KeyMapping) != 7 {
			return fmt.Errorf("配置校验失败: layout.key_mapping 必须为 7 行，实际 %d 行", len(c.Layout.KeyMapping))
		}
		for i, row := range c.Layout.KeyMapping {
			if len(row) != 5 {
				return fmt.Errorf("配置校验失败: layout.key_mapping 第 %d 行必须为 5 列", i+1)
			}
		}
	}
	if len(c.Layout.TimeSlots) > 0 {
		if len(c.Layout.TimeSlots) != 5 {
			return fmt.Errorf("配置校验失败: layout.time_slots 必须为 5 个时间段")
		}
		for i, ts := range c.Layout.TimeSlots {
			start, err1 := time.Parse("15:04", ts.Start)
			end, err2 := time.Parse("15:04", ts.End)
			if err1 != nil || err2 != nil {
				return fmt.Errorf("配置校验失败: layout.time_slots[%d] 时间格式应为 HH:MM", i)
			}
			if !end.After(start) {
				return fmt.Errorf("配置校验失败: layout.time_slots[%d] 结束时间必须晚于开始时间", i)
			}
		}
	}
	return nil
}
