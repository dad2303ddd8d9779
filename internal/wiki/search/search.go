// Package search 通过 MediaWiki 全文搜索（list=search）查找文章。
// 候选的内容长度取接口返回的 size 字段（页面 wikitext 字节数）。
package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

const DefaultLimit = 3

// Backend 实现 wiki.Backend。
//
// 约束：不做缓存、不做重试、不做限速（由 cache 装饰器、Resolver 与 httpx 统一实现）
type Backend struct {
	Client   *http.Client
	Endpoint wiki.Endpoint
	Limit    int
}

func (Backend) Name() string { return "search" }

func (b Backend) Search(ctx context.Context, query, lang string) ([]domain.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	u, err := b.searchURL(query, lang)
	if err != nil {
		return nil, err
	}
	body, err := wiki.Get(ctx, b.Client, u)
	if err != nil {
		return nil, err
	}
	return b.parse(body, u, query, lang)
}

func (b Backend) searchURL(query, lang string) (string, error) {
	base, err := b.Endpoint.Base(lang)
	if err != nil {
		return "", err
	}
	limit := b.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("action", "query")
	v.Set("list", "search")
	v.Set("srsearch", query)
	v.Set("srnamespace", "0")
	v.Set("srlimit", strconv.Itoa(limit))
	v.Set("srprop", "size")
	v.Set("format", "json")
	v.Set("formatversion", "2")
	return base + "/w/api.php?" + v.Encode(), nil
}

// parse 把搜索响应转换为候选（保持接口给出的排序）。
func (b Backend) parse(body []byte, u, query, lang string) ([]domain.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, &wiki.ResponseError{URL: u, Err: errInvalidJSON}
	}
	doc := gjson.ParseBytes(body)
	if e := doc.Get("error"); e.Exists() {
		return nil, &wiki.APIError{URL: u, Code: e.Get("code").String(), Info: e.Get("info").String()}
	}
	hits := doc.Get("query.search")
	if !hits.Exists() {
		return nil, &wiki.ResponseError{URL: u, Err: errMissingResults}
	}

	var out []domain.Candidate
	for _, h := range hits.Array() {
		title := strings.TrimSpace(h.Get("title").String())
		if title == "" {
			continue
		}
		if ns := h.Get("ns"); ns.Exists() && ns.Int() != 0 {
			continue
		}
		articleURL, err := b.Endpoint.ArticleURL(lang, title)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Candidate{
			Lang:   lang,
			Title:  title,
			URL:    articleURL,
			Length: int(h.Get("size").Int()),
			Query:  query,
		})
	}
	return out, nil
}
