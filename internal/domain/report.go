package domain

import "time"

// UnicodeReviewEntry 是需要人工检查编码的记录（每条记录至多一条）。
type UnicodeReviewEntry struct {
	RecordID string
	Index    int
	Fields   []NormalizationOutcome // 只含 Status==NormReview 的字段
}

// NotFoundEntry 是未找到 Wikipedia 文章的记录。
type NotFoundEntry struct {
	RecordID  string
	Index     int
	Title     string
	Attempted []string
	Errors    []string // "lang: err"，只包含重试耗尽的语言
}

// DuplicateReport 是写入疑似重复报告的一组记录，附带几何提示（类型 + 首个坐标）。
type DuplicateReport struct {
	Group DuplicateGroup
	Hints []string // 与 Group.Members 一一对应

	// Spread 是成员位置之间的最大距离（米）；任一成员没有可用几何时 HasSpread 为 false。
	Spread    float64
	HasSpread bool
}

// Summary 是 cleanup summary 的计数器集合。
type Summary struct {
	RunID      string
	Dataset    string
	StartedAt  time.Time
	FinishedAt time.Time

	Records          int
	RecordsUntitled  int
	FieldsPruned     int
	FieldsPrunedBy   map[string]int
	TextCorrections  int
	NewlineFixes     int
	EncodingFixes    int
	UnicodeReviews   int
	DuplicateGroups  int
	DuplicateRecords int

	EnrichEnabled   bool
	EnrichSkipped   int // 已有 Wikipedia 字段
	EnrichResolved  int
	EnrichNotFound  int
	SuccessByLang   map[string]int
	FailureByLang   map[string]int // not found 记录中每个尝试过的语言各计一次
	SearchErrByLang map[string]int // 重试耗尽的语言
}
