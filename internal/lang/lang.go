// Package lang 推断一条记录适合查询的 Wikipedia 语言。
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/lang/translate"
)

const (
	DefaultBase      = "en"
	DefaultSecondary = "de"
	DefaultMax       = 4
)

var (
	localeKeys  = []string{"lang", "language", "locale"}
	regionKeys  = []string{"country", "country_code", "countryCode", "region"}
	codedPrefix = []string{"name", "title", "label", "description"}
)

// scripts 是非拉丁文字到语言的映射（按检查顺序）。
var scripts = []struct {
	table *unicode.RangeTable
	lang  string
}{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Thai, "th"},
	{unicode.Georgian, "ka"},
	{unicode.Armenian, "hy"},
}

// Detector 根据属性提示与标题推断候选语言。
//
// 顺序：显式 locale 字段 > 语言编码字段（name:de 等）> 国家/地区字段 > 标题文字 > 标题变音字母
// > 标题中的地点类型词 > 标题中的地名；最后补上 Base 与 Secondary。总数不超过 Max，
// 超出时先裁掉推断出的语言，再保留 Base 与 Secondary；Max 为 1 时只剩 Base。
type Detector struct {
	Base      string
	Secondary string
	Max       int
	Vocab     *translate.Translator
}

func New(base, secondary string, max int) *Detector {
	return &Detector{Base: base, Secondary: secondary, Max: max, Vocab: translate.Default()}
}

// Detect 返回按可能性排序的语言代码列表（去重）。
func (d *Detector) Detect(title string, props domain.Properties) []string {
	var hints []string
	hints = append(hints, d.localeHints(props)...)
	hints = append(hints, codedFieldHints(props)...)
	hints = append(hints, regionHints(props)...)
	hints = append(hints, scriptHints(title)...)
	hints = append(hints, diacriticHintsOf(title)...)
	if d.Vocab != nil {
		hints = append(hints, d.Vocab.Languages(title)...)
	}
	hints = append(hints, keywordHints(title)...)
	return d.order(hints)
}

func (d *Detector) order(hints []string) []string {
	base, secondary := d.Base, d.Secondary
	if base == "" {
		base = DefaultBase
	}
	max := d.Max
	if max <= 0 {
		max = DefaultMax
	}

	fallbacks := []string{base}
	if secondary != "" && secondary != base {
		fallbacks = append(fallbacks, secondary)
	}
	if len(fallbacks) > max {
		fallbacks = fallbacks[:max]
	}
	isFallback := func(l string) bool {
		for _, f := range fallbacks {
			if f == l {
				return true
			}
		}
		return false
	}

	budget := max - len(fallbacks)
	seen := make(map[string]bool)
	var out []string
	for _, h := range hints {
		if h == "" || seen[h] {
			continue
		}
		if !isFallback(h) {
			if budget <= 0 {
				continue
			}
			budget--
		}
		seen[h] = true
		out = append(out, h)
	}
	for _, f := range fallbacks {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (d *Detector) localeHints(props domain.Properties) []string {
	var out []string
	for _, k := range localeKeys {
		v, ok := lookupFold(props, k)
		if !ok {
			continue
		}
		if l := baseOf(v); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// codedFieldHints 识别 "name:de" / "title_fr" 之类按语言编码的字段（值必须是非空字符串）。
func codedFieldHints(props domain.Properties) []string {
	var out []string
	for _, kv := range props {
		code, ok := codedSuffix(kv.Key)
		if !ok {
			continue
		}
		if s, ok := props.String(kv.Key); !ok || strings.TrimSpace(s) == "" {
			continue
		}
		if l := baseOf(code); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func codedSuffix(key string) (string, bool) {
	lower := strings.ToLower(key)
	for _, p := range codedPrefix {
		for _, sep := range []string{":", "_"} {
			if rest, ok := strings.CutPrefix(lower, p+sep); ok && len(rest) >= 2 && len(rest) <= 3 {
				return rest, true
			}
		}
	}
	return "", false
}

func regionHints(props domain.Properties) []string {
	var out []string
	for _, k := range regionKeys {
		v, ok := lookupFold(props, k)
		if !ok {
			continue
		}
		if l := regionLanguage(v); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// regionLanguage 把地区码或国家名转为该地区最可能的语言。
func regionLanguage(v string) string {
	v = strings.TrimSpace(v)
	code := v
	if len(v) != 2 {
		code = countryRegions[strings.ToLower(v)]
		if code == "" {
			return ""
		}
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	tag, err := language.Compose(region)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return wikiCode(base.String())
}

func scriptHints(title string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range title {
		if r < 0x0370 {
			continue
		}
		for _, h := range scripts {
			if unicode.Is(h.table, r) {
				if !seen[h.lang] {
					seen[h.lang] = true
					out = append(out, h.lang)
				}
				break
			}
		}
	}
	// 汉字与假名混排时是日文。
	if seen["ja"] && seen["zh"] {
		kept := out[:0]
		for _, l := range out {
			if l != "zh" {
				kept = append(kept, l)
			}
		}
		out = kept
	}
	return out
}

func diacriticHintsOf(title string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range title {
		if l, ok := diacriticHints[r]; ok && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// keywordHints 在标题的词（以及相邻两词）中查找已知地名。
func keywordHints(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(unicode.IsLetter(r) || r == '-' || r == '\'')
	})
	present := make(map[string]bool, 2*len(words))
	for i, w := range words {
		present[w] = true
		if i+1 < len(words) {
			present[w+" "+words[i+1]] = true
		}
	}

	var out []string
	for _, l := range []string{"de", "fr", "nl", "da", "cs", "it", "es"} {
		for _, kw := range regionKeywords[l] {
			if present[kw] {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// baseOf 解析 BCP 47 标签（de、de-AT、de_CH），返回 Wikipedia 语言代码。
func baseOf(v string) string {
	v = strings.ReplaceAll(strings.TrimSpace(v), "_", "-")
	if v == "" {
		return ""
	}
	tag, err := language.Parse(v)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return wikiCode(base.String())
}

func wikiCode(l string) string {
	if a, ok := wikiAliases[l]; ok {
		return a
	}
	return l
}

func lookupFold(props domain.Properties, key string) (string, bool) {
	for _, kv := range props {
		if !strings.EqualFold(kv.Key, key) {
			continue
		}
		if s, ok := props.String(kv.Key); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}
