// Package dedupe 找出标题近似相同的记录组，供人工复核（不修改记录）。
package dedupe

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/John-Robertt/geoclean/internal/domain"
)

// DefaultThreshold 是判定“相似”的最低分（含）。
const DefaultThreshold = 0.85

// 比较阈值时的浮点容差：例如 1-3/20 在 float64 下可能略小于 0.85。
const epsilon = 1e-9

// Entry 是参与比较的一条记录。Title 应为归一化之后的标题。
type Entry struct {
	Index int
	ID    string
	Title string
}

type Detector struct {
	Threshold float64
}

func New() *Detector {
	return &Detector{Threshold: DefaultThreshold}
}

// Key 是比较用的标题形式：小写 + 空白折叠。
func Key(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Similarity 返回基于编辑距离的相似度：1 - d/max(len)，按 rune 计。两个空串视为 1。
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(maxLen)
}

// Detect 返回所有成员数 >= 2 的相似连通分量。
//
// 输出顺序只依赖输入顺序：组按最小成员位置排序，组内成员按输入顺序排列。
// 空标题不参与比较。
func (d *Detector) Detect(entries []Entry) []domain.DuplicateGroup {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = Key(e.Title)
	}

	uf := newUnionFind(len(entries))
	for i := 0; i < len(entries); i++ {
		if keys[i] == "" {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if keys[j] == "" || !mayReach(keys[i], keys[j], threshold) {
				continue
			}
			if Similarity(keys[i], keys[j]) >= threshold-epsilon {
				uf.union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	var roots []int
	for i := range entries {
		if keys[i] == "" {
			continue
		}
		r := uf.find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}

	var groups []domain.DuplicateGroup
	for _, r := range roots {
		idx := members[r]
		if len(idx) < 2 {
			continue
		}
		g := domain.DuplicateGroup{MinScore: 1}
		for a, i := range idx {
			g.Members = append(g.Members, domain.DuplicateMember{
				Index: entries[i].Index,
				ID:    entries[i].ID,
				Title: entries[i].Title,
			})
			for _, j := range idx[a+1:] {
				if s := Similarity(keys[i], keys[j]); s < g.MinScore {
					g.MinScore = s
				}
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// mayReach 用长度差做剪枝：编辑距离至少为长度差，长度差过大时不可能达到阈值。
func mayReach(a, b string, threshold float64) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	diff, maxLen := la-lb, la
	if diff < 0 {
		diff = -diff
		maxLen = lb
	}
	if maxLen == 0 {
		return true
	}
	return 1-float64(diff)/float64(maxLen) >= threshold-epsilon
}
