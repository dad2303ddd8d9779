// Package prune 删除属性表中过时的样式/编辑器字段。
package prune

import "github.com/John-Robertt/geoclean/internal/domain"

// DefaultDenylist 是固定的过时字段集合（旧地图编辑器遗留的样式与交互属性）。
var DefaultDenylist = []string{
	"offsetX", "locked", "marker-size", "labelStyle", "text", "anchor",
	"icon", "tooltip", "textPosition", "stroke", "rotate", "offsetY",
}

// Denied 判断 key 是否在 DefaultDenylist 中。
func Denied(key string) bool {
	for _, k := range DefaultDenylist {
		if k == key {
			return true
		}
	}
	return false
}

// Pruner 按固定 denylist 删除字段；构造后只读，可并发使用。
type Pruner struct {
	deny map[string]struct{}
	keys []string
}

func New(denylist []string) *Pruner {
	p := &Pruner{deny: make(map[string]struct{}, len(denylist))}
	for _, k := range denylist {
		if _, dup := p.deny[k]; dup {
			continue
		}
		p.deny[k] = struct{}{}
		p.keys = append(p.keys, k)
	}
	return p
}

// Keys 返回 denylist（按构造顺序）。
func (p *Pruner) Keys() []string { return append([]string(nil), p.keys...) }

// Prune 返回删除 denylist 字段后的属性表（其余字段保持相对顺序）以及被删除的 key（按出现顺序，可重复）。
// 不修改入参。
func (p *Pruner) Prune(props domain.Properties) (domain.Properties, []string) {
	out := make(domain.Properties, 0, len(props))
	var removed []string
	for _, kv := range props {
		if _, ok := p.deny[kv.Key]; ok {
			removed = append(removed, kv.Key)
			continue
		}
		out = append(out, kv)
	}
	return out, removed
}
