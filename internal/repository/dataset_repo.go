package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"timetable-viewer/config"
	"timetable-viewer/internal/model"
	apperrors "timetable-viewer/pkg/errors"
)

// datasetMaxFileSize 数据文件大小上限
var datasetMaxFileSize int64 = 32 * 1024 * 1024 // 32MB

// DatasetRepository 课表数据源接口
// 数据集一次性全量读取，仓储本身不缓存也不修改数据
type DatasetRepository interface {
	// Load 读取全部原始行（含首行表头元数据，由索引层负责丢弃）
	Load(ctx context.Context) ([]model.RawEntry, error)
	// Source 数据源描述，用于日志
	Source() string
}

// NewDatasetRepository 按配置选择 JSON 或 XLSX 数据源
func NewDatasetRepository(cfg *config.DatasetConfig) DatasetRepository {
	switch cfg.ResolvedFormat() {
	case "xlsx":
		return &xlsxDatasetRepo{path: cfg.Path, sheet: cfg.Sheet}
	default:
		return &jsonDatasetRepo{path: cfg.Path}
	}
}

// ════════════════════════════════════════════════════════════
// JSON 数据源
// ════════════════════════════════════════════════════════════

type jsonDatasetRepo struct {
	path string
}

func (r *jsonDatasetRepo) Source() string { return "json:" + r.path }

func (r *jsonDatasetRepo) Load(ctx context.Context) ([]model.RawEntry, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("打开数据文件失败: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > datasetMaxFileSize {
		return nil, fmt.Errorf("%w: 文件超过 %d 字节", apperrors.ErrDatasetInvalid, datasetMaxFileSize)
	}
	return DecodeJSONDataset(io.LimitReader(f, datasetMaxFileSize))
}

// DecodeJSONDataset 解析 JSON 数组形式的数据集
//
// 宽松模式：
//   - 字符串原样保留
//   - 数字保留字面量文本，布尔值转为 "true"/"false"
//   - null、嵌套对象或数组视为空单元格
//
// 顶层不是对象数组或数组后还有其他内容时返回 ErrDatasetInvalid
func DecodeJSONDataset(r io.Reader) ([]model.RawEntry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: JSON 解析失败: %v", apperrors.ErrDatasetInvalid, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: 顶层数组之后存在多余内容", apperrors.ErrDatasetInvalid)
	}

	items, ok := top.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: 顶层必须是数组", apperrors.ErrDatasetInvalid)
	}

	entries := make([]model.RawEntry, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: 第 %d 个元素不是对象", apperrors.ErrDatasetInvalid, i)
		}
		entry := make(model.RawEntry, len(obj))
		for k, v := range obj {
			entry[k] = cellText(v)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// cellText 将任意 JSON 值转为单元格文本
func cellText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ════════════════════════════════════════════════════════════
// XLSX 数据源
// ════════════════════════════════════════════════════════════
//
// 与表格导出 JSON 的规则保持一致：
//   - 第一行为列名；空白或重复的列名按位置命名为 Column<N>（N 从 1 开始）
//   - 其余每一行生成一条 RawEntry，行尾缺失的单元格不写入

type xlsxDatasetRepo struct {
	path  string
	sheet string
}

func (r *xlsxDatasetRepo) Source() string { return "xlsx:" + r.path }

func (r *xlsxDatasetRepo) Load(ctx context.Context) ([]model.RawEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	if int64(len(data)) > datasetMaxFileSize {
		return nil, fmt.Errorf("%w: 文件超过 %d 字节", apperrors.ErrDatasetInvalid, datasetMaxFileSize)
	}
	return DecodeXLSXDataset(bytes.NewReader(data), r.sheet)
}

// DecodeXLSXDataset 解析工作簿中指定工作表（空表示第一个工作表）
func DecodeXLSXDataset(reader io.Reader, sheet string) ([]model.RawEntry, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: 工作簿解析失败: %v", apperrors.ErrDatasetInvalid, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: 工作簿中没有工作表", apperrors.ErrDatasetInvalid)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表 %q 失败: %v", apperrors.ErrDatasetInvalid, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: 工作表 %q 缺少表头行", apperrors.ErrDatasetInvalid, sheet)
	}

	headers := headerKeys(rows[0])

	entries := make([]model.RawEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := make(model.RawEntry, len(row))
		for col, value := range row {
			key := columnKey(headers, col)
			entry[key] = value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// headerKeys 生成列名，空白或重复列名使用 Column<N>
func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || seen[name] {
			name = positionalKey(i)
		}
		seen[name] = true
		keys[i] = name
	}
	return keys
}

// columnKey 数据行比表头更宽时，超出部分按位置命名
func columnKey(headers []string, col int) string {
	if col < len(headers) {
		return headers[col]
	}
	return positionalKey(col)
}

func positionalKey(col int) string {
	return "Column" + strconv.Itoa(col+1)
}
