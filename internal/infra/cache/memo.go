package cache

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

// DefaultMemoSize 是进程内缓存的条目上限。
const DefaultMemoSize = 1024

type memoKey struct {
	lang  string
	query string
}

// Memo 在进程内记住成功的搜索结果：同一次运行里重复的标题（疑似重复记录很常见）不再发请求。
// 失败从不缓存；与磁盘缓存不同，Memo 在 dry-run 下同样生效。
type Memo struct {
	next  wiki.Searcher
	cache *lru.Cache[memoKey, []domain.Candidate]
}

func NewMemo(next wiki.Searcher, size int) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	c, err := lru.New[memoKey, []domain.Candidate](size)
	if err != nil {
		return nil, err
	}
	return &Memo{next: next, cache: c}, nil
}

func (m *Memo) Search(ctx context.Context, query, lang string) ([]domain.Candidate, error) {
	k := memoKey{lang: lang, query: query}
	if cands, ok := m.cache.Get(k); ok {
		return slices.Clone(cands), nil
	}
	cands, err := m.next.Search(ctx, query, lang)
	if err != nil {
		return nil, err
	}
	m.cache.Add(k, slices.Clone(cands))
	return cands, nil
}

// Len 返回当前缓存的条目数。
func (m *Memo) Len() int { return m.cache.Len() }
