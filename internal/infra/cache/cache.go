package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/infra/fsx"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

// Store 提供 <root>/<backend>/<lang>/<hash>.json 下的搜索结果缓存读写。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - 只缓存成功的搜索（包括空结果），失败从不缓存
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// entry 是缓存文件内容；Query 原样保留，用于排查 hash 冲突。
type entry struct {
	Query      string             `json:"query"`
	Lang       string             `json:"lang"`
	Candidates []domain.Candidate `json:"candidates"`
}

// Path 返回某个查询的缓存文件路径。
func (s Store) Path(backend, lang, query string) (string, error) {
	b, err := cleanName(backend)
	if err != nil {
		return "", err
	}
	l, err := cleanName(lang)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(query))
	return filepath.Join(s.Root, b, l, hex.EncodeToString(sum[:])+".json"), nil
}

// Read 读取缓存；未命中返回 ok=false。
func (s Store) Read(backend, lang, query string) ([]domain.Candidate, bool, error) {
	path, err := s.Path(backend, lang, query)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false, fmt.Errorf("缓存文件损坏：%s：%w", path, err)
	}
	if e.Query != query || e.Lang != lang {
		return nil, false, nil
	}
	return e.Candidates, true, nil
}

func (s Store) Write(backend, lang, query string, cands []domain.Candidate) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	path, err := s.Path(backend, lang, query)
	if err != nil {
		return err
	}
	if cands == nil {
		cands = []domain.Candidate{}
	}
	b, err := json.MarshalIndent(entry{Query: query, Lang: lang, Candidates: cands}, "", "  ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, append(b, '\n'))
}

var nameRE = regexp.MustCompile(`^[a-z0-9_-]+$`)

func cleanName(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("缓存分区名不能为空")
	}
	// 最小约束：避免路径穿越。
	if !nameRE.MatchString(p) {
		return "", fmt.Errorf("非法缓存分区名：%q", p)
	}
	return p, nil
}

// Searcher 用 Store 装饰一个 wiki.Searcher：命中缓存时不发请求。
// 缓存读写失败只记录日志，不影响搜索结果。
type Searcher struct {
	Next    wiki.Searcher
	Store   Store
	Backend string
	Log     *zap.Logger
}

func (s Searcher) Search(ctx context.Context, query, lang string) ([]domain.Candidate, error) {
	cands, ok, err := s.Store.Read(s.Backend, lang, query)
	if err != nil {
		s.log().Warn("读取搜索缓存失败", zap.String("lang", lang), zap.String("query", query), zap.Error(err))
	}
	if ok {
		s.log().Debug("搜索缓存命中", zap.String("lang", lang), zap.String("query", query))
		return cands, nil
	}

	cands, err = s.Next.Search(ctx, query, lang)
	if err != nil {
		return nil, err
	}
	if !s.Store.ReadOnly {
		if werr := s.Store.Write(s.Backend, lang, query, cands); werr != nil {
			s.log().Warn("写入搜索缓存失败", zap.String("lang", lang), zap.String("query", query), zap.Error(werr))
		}
	}
	return cands, nil
}

func (s Searcher) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
