// Package opensearch 通过 MediaWiki opensearch 做模糊搜索，
// 再抓取每个候选的渲染 HTML，用正文文字长度作为内容长度。
package opensearch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

const DefaultLimit = 3

// Backend 实现 wiki.Backend。
//
// 约束：
// - 不做缓存、不做重试、不做限速
// - 消歧义页不作为候选
// - 单个候选的页面返回永久性错误（例如 404）时仅跳过该候选
type Backend struct {
	Client   *http.Client
	Endpoint wiki.Endpoint
	Limit    int
}

func (Backend) Name() string { return "opensearch" }

func (b Backend) Search(ctx context.Context, query, lang string) ([]domain.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	base, err := b.Endpoint.Base(lang)
	if err != nil {
		return nil, err
	}
	limit := b.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("action", "opensearch")
	v.Set("search", query)
	v.Set("limit", strconv.Itoa(limit))
	v.Set("namespace", "0")
	v.Set("format", "json")
	u := base + "/w/api.php?" + v.Encode()

	body, err := wiki.Get(ctx, b.Client, u)
	if err != nil {
		return nil, err
	}
	titles, urls, err := parseOpenSearch(body, u)
	if err != nil {
		return nil, err
	}

	var out []domain.Candidate
	for i, title := range titles {
		page, err := b.fetchPage(ctx, base, title)
		if err != nil {
			if wiki.IsPermanent(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		if page.disambiguation {
			continue
		}
		articleURL := ""
		if i < len(urls) {
			articleURL = urls[i]
		}
		if articleURL == "" {
			if articleURL, err = b.Endpoint.ArticleURL(lang, title); err != nil {
				return nil, err
			}
		}
		out = append(out, domain.Candidate{
			Lang:   lang,
			Title:  title,
			URL:    articleURL,
			Length: page.length,
			Query:  query,
		})
	}
	return out, nil
}

// parseOpenSearch 解析 [query, [titles], [descriptions], [urls]]。
func parseOpenSearch(body []byte, u string) (titles, urls []string, err error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, &wiki.ResponseError{URL: u, Err: errors.New("不是合法 JSON")}
	}
	doc := gjson.ParseBytes(body)
	if e := doc.Get("error"); e.Exists() {
		return nil, nil, &wiki.APIError{URL: u, Code: e.Get("code").String(), Info: e.Get("info").String()}
	}
	if !doc.IsArray() || !doc.Get("1").IsArray() {
		return nil, nil, &wiki.ResponseError{URL: u, Err: errors.New("不是 opensearch 数组响应")}
	}
	for _, t := range doc.Get("1").Array() {
		titles = append(titles, strings.TrimSpace(t.String()))
	}
	for _, l := range doc.Get("3").Array() {
		urls = append(urls, strings.TrimSpace(l.String()))
	}
	return titles, urls, nil
}

type page struct {
	length         int
	disambiguation bool
}

func (b Backend) fetchPage(ctx context.Context, base, title string) (page, error) {
	u := base + "/api/rest_v1/page/html/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	html, err := wiki.Get(ctx, b.Client, u)
	if err != nil {
		return page{}, err
	}
	p, err := parsePage(html)
	if err != nil {
		return page{}, &wiki.ResponseError{URL: u, Err: err}
	}
	return p, nil
}

// parsePage 统计正文可见文字的字符数（空白折叠后），并识别消歧义页。
func parsePage(html []byte) (page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return page{}, err
	}
	var p page
	if doc.Find(`meta[property="mw:PageProp/disambiguation"]`).Length() > 0 {
		p.disambiguation = true
	}
	body := doc.Find("body")
	body.Find("script, style, link, meta").Remove()
	text := strings.Join(strings.Fields(body.Text()), " ")
	p.length = utf8.RuneCountInString(text)
	return p, nil
}
