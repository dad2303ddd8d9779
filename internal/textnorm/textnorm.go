// Package textnorm 修复文本字段：字面量换行转义、空白折叠与已知乱码。
package textnorm

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/John-Robertt/geoclean/internal/domain"
)

// 修复到不动点的最大轮数（双重编码的文本需要两轮）。
const maxRepairPasses = 4

// Normalizer 是无状态的文本修复器，可并发使用。
type Normalizer struct {
	log      *zap.Logger
	repairer *strings.Replacer
	glyphs   map[rune]byte // 误解码字符 -> 原始字节（0x80-0xFF）
}

func New(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	pairs := make([]string, 0, 2*len(defaultTable))
	for _, m := range defaultTable {
		pairs = append(pairs, m.Corrupt, string(m.Correct))
	}
	return &Normalizer{
		log:      log,
		repairer: strings.NewReplacer(pairs...),
		glyphs:   glyphBytes(),
	}
}

var escapeReplacer = strings.NewReplacer(`\r\n`, " ", `\n`, " ", `\r`, " ")

// Normalize 修复 field 的文本 s。
//
// 规则：
//   - 字面量 `\n`（以及 `\r`）替换为空格；ASCII 空白折叠为单个空格并去掉首尾空白
//   - 命中映射表的乱码还原为正确字符
//   - 还原后仍残留无法识别的乱码特征时：原文不做任何修改，状态为 review
//
// 对已归一化的文本再次调用是 no-op。
func (n *Normalizer) Normalize(field, s string) domain.NormalizationOutcome {
	out := domain.NormalizationOutcome{Field: field, Original: s, Status: domain.NormUnchanged}

	t := norm.NFC.String(s)
	esc := escapeReplacer.Replace(t)

	repaired := n.repair(esc)
	if sus := n.suspicious(repaired); len(sus) > 0 {
		out.Corrected = s
		out.Status = domain.NormReview
		out.Suspicious = sus
		n.log.Debug("无法确认的乱码，保留原文",
			zap.String("field", field),
			zap.String("text", s),
			zap.Strings("suspicious", sus),
		)
		return out
	}
	out.NewlineFixed = esc != t
	out.EncodingFixed = repaired != esc
	out.Corrected = collapseSpace(repaired)
	if out.Corrected != out.Original {
		out.Status = domain.NormCorrected
	}
	return out
}

func (n *Normalizer) repair(s string) string {
	for i := 0; i < maxRepairPasses; i++ {
		next := norm.NFC.String(n.repairer.Replace(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// suspicious 返回 s 中残留的乱码特征片段，按出现顺序去重：
//   - C1 控制字符或 U+FFFD
//   - 一串误解码字符，还原成字节后恰好是一个完整且合法的 UTF-8 多字节序列
//   - 被截断的 Â/Ã：后面紧跟 ASCII 空白或已到文本末尾
//
// 只检查完整序列，所以 "Příšovice"、"Café…" 这类正确文本不会被误报。
func (n *Normalizer) suspicious(s string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(x string) {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		b, isGlyph := n.glyphs[r]
		want := 0
		if isGlyph {
			want = contLen(b)
		}
		if want == 0 {
			if r == utf8.RuneError || (r >= 0x80 && r <= 0x9F) {
				add(string(r))
			}
			continue
		}

		if n.completeSequence(b, rs[i+1:], want) {
			add(string(rs[i : i+1+want]))
			i += want
			continue
		}
		if truncatedLead(b) && (i+1 == len(rs) || isASCIISpace(rs[i+1])) {
			add(string(r))
		}
	}
	return out
}

// completeSequence 把前导字节 lead 与 rest 开头的 want 个后续字节字符拼回字节，
// 它们组成一个合法 UTF-8 字符时返回 true。
func (n *Normalizer) completeSequence(lead byte, rest []rune, want int) bool {
	if len(rest) < want {
		return false
	}
	seq := []byte{lead}
	for _, r := range rest[:want] {
		c, ok := n.glyphs[r]
		if !ok || c < 0x80 || c > 0xBF {
			return false
		}
		seq = append(seq, c)
	}
	return utf8.Valid(seq)
}

// contLen 返回前导字节 b 需要的后续字节数；b 不是多字节前导时返回 0。
func contLen(b byte) int {
	switch {
	case b >= 0xC2 && b <= 0xDF:
		return 1
	case b >= 0xE0 && b <= 0xEF:
		return 2
	case b >= 0xF0 && b <= 0xF4:
		return 3
	}
	return 0
}

// truncatedLead 报告 b 是否是 U+0080-U+00FF 的前导字节。它们的后续字节 0xA0 被误解码为 NBSP，
// 而 NBSP 常在后续处理中变成普通空格（"Ã " 本应是 "à"），只剩下孤立的前导字符。
func truncatedLead(b byte) bool {
	return b == 0xC2 || b == 0xC3
}

// collapseSpace 只折叠 ASCII 空白；NBSP 等字符可能是乱码的一部分，保持原样。
func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isASCIISpace), " ")
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
