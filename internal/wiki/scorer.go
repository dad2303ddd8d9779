package wiki

import "github.com/John-Robertt/geoclean/internal/domain"

// Scorer 在候选之间选出一篇文章。
//
// 规则（依次比较）：
//  1. 语言优先级：Base 最高，其次 Secondary，其余按尝试顺序
//  2. 同一优先级内：内容更长者胜
//  3. 仍相同：先找到者胜
type Scorer struct {
	Base      string
	Secondary string
}

func (s Scorer) tier(lang string, attempted []string) int {
	switch {
	case lang == s.Base:
		return 0
	case lang == s.Secondary && s.Secondary != "":
		return 1
	}
	for i, l := range attempted {
		if l == lang {
			return 2 + i
		}
	}
	return 2 + len(attempted)
}

// Pick 返回被选中的候选；cands 为空时 ok=false。cands 的顺序即发现顺序。
func (s Scorer) Pick(cands []domain.Candidate, attempted []string) (domain.Candidate, bool) {
	if len(cands) == 0 {
		return domain.Candidate{}, false
	}
	best := 0
	bestTier := s.tier(cands[0].Lang, attempted)
	for i := 1; i < len(cands); i++ {
		t := s.tier(cands[i].Lang, attempted)
		if t < bestTier || (t == bestTier && cands[i].Length > cands[best].Length) {
			best, bestTier = i, t
		}
	}
	return cands[best], true
}
