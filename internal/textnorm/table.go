package textnorm

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// repairTargets 是可以从乱码中“确定地”还原的字符：德/法/西/意/北欧/中欧字母、常见排版标点，
// 以及 Latin-1 符号区与 Windows-1252 特殊字符（双重编码的文本需要先还原它们）。
// 表中每个字符的 UTF-8 字节被按 Windows-1252 与 Latin-1 误解码后得到的序列，唯一对应回该字符。
const repairTargets = "äöüÄÖÜß" +
	"áàâãåæçéèêëíìîïñóòôõøúùûýÿ" +
	"ÁÀÂÃÅÆÇÉÈÊËÍÌÎÏÑÓÒÔÕØÚÙÛÝ" +
	"čďěňřšťůžČĎĚŇŘŠŤŮŽĺľŕĹĽŔ" +
	"ąćęłńśźżĄĆĘŁŃŚŹŻőűŐŰœŒ" +
	"–—‘’‚“”„…€•" +
	"\u00a0¡¢£¤¥¦§¨©ª«¬\u00ad®¯°±²³´µ¶·¸¹º»¼½¾¿" +
	"Ÿƒˆ˜‰‹›†‡™"

// Mapping 是一条乱码修复规则。
type Mapping struct {
	Corrupt string
	Correct rune
}

var decoders = []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}

// buildTable 生成乱码映射表；若两个字符产生相同的乱码序列则报错（映射必须无歧义）。
func buildTable(targets string) ([]Mapping, error) {
	seen := make(map[string]rune)
	var out []Mapping
	for _, r := range targets {
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		for _, cm := range decoders {
			var sb strings.Builder
			ok := true
			for _, b := range buf[:n] {
				d := cm.DecodeByte(b)
				if d == utf8.RuneError {
					ok = false
					break
				}
				sb.WriteRune(d)
			}
			if !ok {
				continue
			}
			seq := sb.String()
			if prev, dup := seen[seq]; dup {
				if prev == r {
					continue
				}
				return nil, fmt.Errorf("乱码序列 %q 同时对应 %q 与 %q", seq, prev, r)
			}
			seen[seq] = r
			out = append(out, Mapping{Corrupt: seq, Correct: r})
		}
	}
	// 长序列优先：strings.Replacer 在同一位置按参数顺序比较。
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Corrupt) > utf8.RuneCountInString(out[j].Corrupt)
	})
	return out, nil
}

// glyphBytes 返回 0x80-0xFF 各字节按 Windows-1252 与 Latin-1 解码后的字符到原字节的映射，
// 用于把残留的乱码还原成字节再判断是否是完整的 UTF-8 序列。两种解码在同一字符上不会给出不同字节。
func glyphBytes() map[rune]byte {
	m := make(map[rune]byte)
	for _, cm := range decoders {
		for b := 0x80; b <= 0xFF; b++ {
			if d := cm.DecodeByte(byte(b)); d != utf8.RuneError {
				m[d] = byte(b)
			}
		}
	}
	return m
}

var defaultTable = mustBuildTable()

func mustBuildTable() []Mapping {
	t, err := buildTable(repairTargets)
	if err != nil {
		panic(err)
	}
	return t
}

// Table 返回内置映射表的副本（按修复优先级排序）。
func Table() []Mapping {
	return append([]Mapping(nil), defaultTable...)
}
