package domain

import (
	"encoding/json"
	"strconv"
)

// Record 是数据集中的一个地点（feature）。
//
// 约束：流水线只修改 Props；Raw/Geometry/ID 永不改动，编码时只把 Props 回填进 Raw。
type Record struct {
	Index int    // 在 features 数组中的位置（0-based）
	ID    string // feature.id 的文本形式；缺失时为 "#<index>"

	// HasProps 表示 properties 是一个对象。为 false 时（缺失或 null）编码阶段原样保留。
	HasProps bool
	Props    Properties

	Geometry json.RawMessage
	Raw      json.RawMessage
}

// FallbackID 是缺少 feature.id 时使用的记录标识。
func FallbackID(index int) string {
	return "#" + strconv.Itoa(index)
}

// Title 返回标题字段（非空字符串才算存在）。
func (r *Record) Title(key string) (string, bool) {
	if r == nil || !r.HasProps {
		return "", false
	}
	s, ok := r.Props.String(key)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Dataset 是整个 feature collection。Raw 保留顶层文档，编码时只替换 features。
type Dataset struct {
	Path    string
	Raw     json.RawMessage
	Records []*Record
}
