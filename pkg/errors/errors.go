package errors

import "errors"

// ErrDatasetInvalid 数据集结构无效（顶层不是对象数组、工作簿缺少表头等）
// 仅在加载阶段返回，调用方应阻止渲染而不是静默降级
var ErrDatasetInvalid = errors.New("课表数据集结构无效")
