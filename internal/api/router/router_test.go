package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetable-viewer/config"
	"timetable-viewer/internal/api/handler"
	"timetable-viewer/internal/model"
	"timetable-viewer/internal/repository"
	"timetable-viewer/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testDataset = `[
  {"DAY": "TIME", "MONDAY": "08:00 - 10:00"},
  {"DAY": "LAB A", "MONDAY": "CS101", "Column3": "LAB A", "Column8": "MA201"},
  {"DAY": "LAB B", "Column4": "PHY110", "TUESDAY": "EE205"},
  {"DAY": "ROOM 12"}
]`

// setupEngine 使用真实的 Repository/Service/Handler 组装路由
func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timetable.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("写入测试数据失败: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:      8080,
			BodyLimit: 1 << 20,
			RateLimit: config.RateLimitConfig{Limit: 1, Window: time.Minute},
		},
		Dataset: config.DatasetConfig{Path: path, WeekStart: "2026-01-05", Weeks: 1, Timezone: "UTC"},
		Session: config.SessionConfig{TTL: time.Minute, CleanupInterval: time.Minute},
	}

	logger := zap.NewNop()
	svc := service.NewService(cfg, repository.NewRepository(cfg), model.DefaultLayout(), nil, logger)
	if err := svc.Timetable.Load(context.Background()); err != nil {
		t.Fatalf("加载数据失败: %v", err)
	}
	return Setup(cfg, handler.NewHandler(svc), nil, logger)
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) int {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("响应不是 JSON: %s", w.Body.String())
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("解析 data 失败: %v", err)
		}
	}
	return env.Code
}

func TestRouter_Health(t *testing.T) {
	r := setupEngine(t)
	w := do(r, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_StatsAndTimetable(t *testing.T) {
	r := setupEngine(t)

	var stats struct {
		TotalClasses int `json:"total_classes"`
		ActiveRooms  int `json:"active_rooms"`
	}
	w := do(r, "GET", "/api/v1/stats", "")
	if code := decode(t, w, &stats); code != 0 || stats.TotalClasses != 4 || stats.ActiveRooms != 2 {
		t.Errorf("unexpected stats: code=%d %+v", code, stats)
	}

	var view struct {
		Rooms []struct {
			Room string `json:"room"`
		} `json:"rooms"`
		NoResults bool `json:"no_results"`
	}
	w = do(r, "GET", "/api/v1/timetable?day=0&q=CS101", "")
	decode(t, w, &view)
	if len(view.Rooms) != 1 || view.Rooms[0].Room != "LAB A" {
		t.Errorf("expected [LAB A], got %+v", view.Rooms)
	}

	w = do(r, "GET", "/api/v1/timetable?day=8", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for day=8, got %d", w.Code)
	}
}

func TestRouter_RoomWeekAndCalendar(t *testing.T) {
	r := setupEngine(t)

	w := do(r, "GET", "/api/v1/rooms/LAB%20A/week", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(r, "GET", "/api/v1/rooms/LAB%20A/calendar.ics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("expected iCalendar body")
	}

	w = do(r, "GET", "/api/v1/rooms/NOWHERE/week", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRouter_ExportWorkbook(t *testing.T) {
	r := setupEngine(t)

	// 无 Redis 时限流降级放行
	for i := 0; i < 2; i++ {
		w := do(r, "GET", "/api/v1/export/timetable.xlsx", "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if !strings.HasPrefix(w.Body.String(), "PK") {
			t.Fatal("expected xlsx body")
		}
	}
}

func TestRouter_SessionFlow(t *testing.T) {
	r := setupEngine(t)

	var sess struct {
		ID     string `json:"id"`
		State  string `json:"state"`
		Detail *struct {
			Room string `json:"room"`
		} `json:"detail"`
		View struct {
			Total int `json:"total"`
		} `json:"view"`
	}

	w := do(r, "POST", "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	decode(t, w, &sess)
	if sess.ID == "" || sess.View.Total != 3 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	base := "/api/v1/sessions/" + sess.ID

	w = do(r, "PUT", base+"/search", `{"query":"lab"}`)
	decode(t, w, &sess)
	if sess.View.Total != 2 {
		t.Errorf("expected 2 rooms after search, got %d", sess.View.Total)
	}

	w = do(r, "POST", base+"/detail", `{"room":"LAB B"}`)
	decode(t, w, &sess)
	if sess.State != "room_detail" || sess.Detail == nil || sess.Detail.Room != "LAB B" {
		t.Errorf("expected detail for LAB B: %+v", sess)
	}

	sess.Detail = nil
	w = do(r, "DELETE", base+"/detail", "")
	decode(t, w, &sess)
	if sess.State != "browsing" || sess.Detail != nil {
		t.Errorf("expected browsing without detail: %+v", sess)
	}

	w = do(r, "DELETE", base, "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", w.Code)
	}
	w = do(r, "GET", base, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}
