package wiki

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultEndpoint 是按语言区分的站点模板，{lang} 会被替换为语言代码。
const DefaultEndpoint = "https://{lang}.wikipedia.org"

var langRE = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,8})?$`)

// Endpoint 是 Wikipedia 站点模板。
type Endpoint string

// Base 返回 lang 对应站点的根 URL（不含末尾 /）。
func (e Endpoint) Base(lang string) (string, error) {
	if !langRE.MatchString(lang) {
		return "", fmt.Errorf("非法语言代码：%q", lang)
	}
	tpl := strings.TrimSpace(string(e))
	if tpl == "" {
		tpl = DefaultEndpoint
	}
	return strings.TrimRight(strings.ReplaceAll(tpl, "{lang}", lang), "/"), nil
}

// ArticleURL 返回文章的 /wiki/ 链接（空格转为下划线）。
func (e Endpoint) ArticleURL(lang, title string) (string, error) {
	base, err := e.Base(lang)
	if err != nil {
		return "", err
	}
	return base + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_")), nil
}

// Validate 检查模板是否为 http(s) URL 且包含 {lang}。
func (e Endpoint) Validate() error {
	tpl := strings.TrimSpace(string(e))
	if !strings.Contains(tpl, "{lang}") {
		return fmt.Errorf("endpoint 必须包含 {lang}：%q", tpl)
	}
	u, err := url.Parse(strings.ReplaceAll(tpl, "{lang}", "en"))
	if err != nil || u.Host == "" {
		return fmt.Errorf("endpoint 无效：%q", tpl)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint 必须是 http/https：%q", tpl)
	}
	return nil
}
