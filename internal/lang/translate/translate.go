// Package translate 把标题中的地点类型词替换为目标语言写法，用于构造更好的搜索词。
package translate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type entry struct {
	concept int
	langs   []string // 使用该写法的语言（按 Languages 顺序）
}

// Translator 是只读词表，构造后可并发使用。
type Translator struct {
	concepts []concept
	index    map[string]entry
	maxWords int
}

var defaultTranslator = mustNew(defaultConcepts)

// Default 返回内置词表的 Translator。
func Default() *Translator { return defaultTranslator }

func mustNew(cs []concept) *Translator {
	t, err := newTranslator(cs)
	if err != nil {
		panic(err)
	}
	return t
}

// newTranslator 建立“写法 -> 概念”索引；同一写法对应不同概念时报错。
func newTranslator(cs []concept) (*Translator, error) {
	t := &Translator{concepts: cs, index: make(map[string]entry), maxWords: 1}
	for ci, c := range cs {
		for _, lang := range Languages {
			form, ok := c.forms[lang]
			if !ok || form == "" {
				continue
			}
			if lang != "en" && ambiguousForms[form] {
				continue
			}
			e, exists := t.index[form]
			if exists && e.concept != ci {
				return nil, fmt.Errorf("词表冲突：%q 同时属于 %q 与 %q", form, cs[e.concept].name, c.name)
			}
			e.concept = ci
			e.langs = append(e.langs, lang)
			t.index[form] = e
			if n := len(strings.Fields(form)); n > t.maxWords {
				t.maxWords = n
			}
		}
	}
	return t, nil
}

// Translate 把 title 中可识别的词替换为 lang 的写法；无法识别的部分原样保留。
// lang 不在词表中时返回原文。
func (t *Translator) Translate(title, lang string) string {
	if !t.knows(lang) {
		return title
	}
	toks := tokenize(title)
	var b strings.Builder
	for i := 0; i < len(toks); {
		if !toks[i].word {
			b.WriteString(toks[i].text)
			i++
			continue
		}
		e, end, ok := t.match(toks, i)
		if !ok {
			b.WriteString(toks[i].text)
			i++
			continue
		}
		form, has := t.concepts[e.concept].forms[lang]
		if !has {
			for j := i; j < end; j++ {
				b.WriteString(toks[j].text)
			}
		} else {
			b.WriteString(matchCase(form, toks[i:end]))
		}
		i = end
	}
	return b.String()
}

// Languages 返回 title 中出现的、只属于单一非英语语言的地点类型词所对应的语言（按出现顺序去重）。
func (t *Translator) Languages(title string) []string {
	toks := tokenize(title)
	var out []string
	seen := make(map[string]bool)
	for i := 0; i < len(toks); {
		if !toks[i].word {
			i++
			continue
		}
		e, end, ok := t.match(toks, i)
		if !ok {
			i++
			continue
		}
		if len(e.langs) == 1 && e.langs[0] != "en" && !seen[e.langs[0]] {
			seen[e.langs[0]] = true
			out = append(out, e.langs[0])
		}
		i = end
	}
	return out
}

func (t *Translator) knows(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// match 从 toks[i] 开始尝试匹配最长的词组（词之间只能是单个空格）。返回匹配结束位置（不含）。
func (t *Translator) match(toks []token, i int) (entry, int, bool) {
	for n := t.maxWords; n >= 1; n-- {
		words := make([]string, 0, n)
		j := i
		for ; j < len(toks) && len(words) < n; j++ {
			if toks[j].word {
				words = append(words, strings.ToLower(toks[j].text))
				continue
			}
			if toks[j].text != " " {
				break
			}
		}
		if len(words) != n {
			continue
		}
		if e, ok := t.index[strings.Join(words, " ")]; ok {
			return e, j, true
		}
	}
	return entry{}, 0, false
}

type token struct {
	text string
	word bool
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '-' || r == '\''
}

func tokenize(s string) []token {
	var out []token
	start := 0
	inWord := false
	for i, r := range s {
		w := isWordRune(r)
		if i == 0 {
			inWord = w
			continue
		}
		if w != inWord {
			out = append(out, token{text: s[start:i], word: inWord})
			start = i
			inWord = w
		}
	}
	if start < len(s) {
		out = append(out, token{text: s[start:], word: inWord})
	}
	return out
}

// matchCase 按原文大小写习惯调整替换词：原文每个词首字母大写则替换词各词首字母大写，全大写则全大写。
func matchCase(form string, orig []token) string {
	var words []string
	for _, tk := range orig {
		if tk.word {
			words = append(words, tk.text)
		}
	}
	allUpper, allTitle := true, true
	for _, w := range words {
		if strings.ToUpper(w) != w || utf8.RuneCountInString(w) < 2 {
			allUpper = false
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			allTitle = false
		}
	}
	switch {
	case allUpper:
		return strings.ToUpper(form)
	case allTitle:
		parts := strings.Split(form, " ")
		for i, p := range parts {
			r, size := utf8.DecodeRuneInString(p)
			parts[i] = string(unicode.ToUpper(r)) + p[size:]
		}
		return strings.Join(parts, " ")
	default:
		return form
	}
}
