package domain

const (
	NormUnchanged = "unchanged"
	NormCorrected = "corrected"
	NormReview    = "review"
)

// NormalizationOutcome 是单个文本字段的归一化结果。
type NormalizationOutcome struct {
	Field     string
	Original  string
	Corrected string
	Status    string // NormUnchanged / NormCorrected / NormReview

	NewlineFixed  bool     // 字面量换行转义被替换
	EncodingFixed bool     // 乱码按映射表修复（高置信度）
	Suspicious    []string // Status==NormReview 时：无法确认的可疑片段（按出现顺序，去重）
}

// Changed 表示返回的文本与原文不同。
func (o NormalizationOutcome) Changed() bool { return o.Corrected != o.Original }

// DuplicateMember 是疑似重复组中的一条记录。
type DuplicateMember struct {
	Index int
	ID    string
	Title string // 归一化后的标题
}

// DuplicateGroup 是相似关系的一个连通分量（至少两条记录）。
// MinScore 是组内所有两两组合中的最低相似度（保守的置信度指标）。
type DuplicateGroup struct {
	Members  []DuplicateMember
	MinScore float64
}

// Candidate 是某个语言下搜到的一篇候选文章。
type Candidate struct {
	Lang   string
	Title  string
	URL    string
	Length int    // 文章内容长度（或等价代理值）
	Query  string // 命中该候选的搜索词
}

const (
	EnrichResolved = "resolved"
	EnrichNotFound = "not_found"
)

// LangAttempt 记录某个语言下的搜索过程（用于解释 not found 与统计）。
type LangAttempt struct {
	Lang       string
	Query      string
	Attempts   int    // 实际发起的请求次数
	Candidates int    // 该语言返回的候选数
	Err        string // 重试耗尽后的最后错误；无错误为空
}

// EnrichmentOutcome 是单条记录的 Wikipedia 关联结果。
type EnrichmentOutcome struct {
	RecordID string
	Title    string
	Status   string // EnrichResolved / EnrichNotFound
	Chosen   *Candidate
	Tried    []LangAttempt
}

// AttemptedLanguages 返回按尝试顺序排列的语言列表。
func (o EnrichmentOutcome) AttemptedLanguages() []string {
	langs := make([]string, 0, len(o.Tried))
	for _, a := range o.Tried {
		langs = append(langs, a.Lang)
	}
	return langs
}
