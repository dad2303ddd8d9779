// Package wiki 为记录查找 Wikipedia 文章：多语言搜索、重试退避、候选打分。
package wiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/John-Robertt/geoclean/internal/domain"
)

// Searcher 是外部文章搜索能力。
//
// 约束：
// - Search 不做缓存、不做重试、不做限速（分别由 cache 装饰器、Resolver、httpx 统一实现）
// - 没有匹配的文章时返回空切片与 nil error
type Searcher interface {
	Search(ctx context.Context, query, lang string) ([]domain.Candidate, error)
}

// Backend 是可注册的具名 Searcher。
type Backend interface {
	Searcher
	Name() string
}

// Registry 是 backend 的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Backend
	names  []string
}

func NewRegistry(backends ...Backend) (Registry, error) {
	byName := make(map[string]Backend, len(backends))
	var names []string
	for _, b := range backends {
		if b == nil {
			return Registry{}, fmt.Errorf("backend 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(b.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("backend.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 backend：%q", name)
		}
		byName[name] = b
		names = append(names, name)
	}
	return Registry{byName: byName, names: names}, nil
}

func (r Registry) Get(name string) (Backend, bool) {
	if r.byName == nil {
		return nil, false
	}
	b, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Names 返回注册顺序的 backend 名称。
func (r Registry) Names() []string { return append([]string(nil), r.names...) }
