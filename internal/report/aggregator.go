// Package report 收集各阶段的结构化结果，并渲染为纯文本报告。
package report

import (
	"maps"
	"time"

	"github.com/John-Robertt/geoclean/internal/domain"
)

// Aggregator 是四个独立的累加器：unicode review、疑似重复、not found、summary 计数。
//
// 约束：
// - 只按到达顺序追加，不做去重与变换
// - 每条记录在每个类别至多贡献一条（由调用方保证每条记录只上报一次）
// - 非并发安全：流水线是单线程顺序执行
type Aggregator struct {
	summary  domain.Summary
	unicode  []domain.UnicodeReviewEntry
	dups     []domain.DuplicateReport
	notFound []domain.NotFoundEntry
}

func New(runID, dataset string, started time.Time, enrich bool) *Aggregator {
	return &Aggregator{summary: domain.Summary{
		RunID:           runID,
		Dataset:         dataset,
		StartedAt:       started,
		EnrichEnabled:   enrich,
		FieldsPrunedBy:  map[string]int{},
		SuccessByLang:   map[string]int{},
		FailureByLang:   map[string]int{},
		SearchErrByLang: map[string]int{},
	}}
}

// AddRecord 计入一条处理过的记录。
func (a *Aggregator) AddRecord(titled bool) {
	a.summary.Records++
	if !titled {
		a.summary.RecordsUntitled++
	}
}

// AddPruned 计入一条记录被删除的字段（removed 可含重复 key）。
func (a *Aggregator) AddPruned(removed []string) {
	for _, k := range removed {
		a.summary.FieldsPruned++
		a.summary.FieldsPrunedBy[k]++
	}
}

// AddNormalization 计入一条记录全部文本字段的归一化结果；
// 存在 review 字段时追加一条 unicode review（每条记录至多一条）。
func (a *Aggregator) AddNormalization(rec *domain.Record, outs []domain.NormalizationOutcome) {
	var review []domain.NormalizationOutcome
	for _, o := range outs {
		if o.Changed() {
			a.summary.TextCorrections++
		}
		if o.NewlineFixed {
			a.summary.NewlineFixes++
		}
		if o.EncodingFixed {
			a.summary.EncodingFixes++
		}
		if o.Status == domain.NormReview {
			review = append(review, o)
		}
	}
	if len(review) == 0 {
		return
	}
	a.summary.UnicodeReviews++
	a.unicode = append(a.unicode, domain.UnicodeReviewEntry{RecordID: rec.ID, Index: rec.Index, Fields: review})
}

// AddDuplicate 追加一个疑似重复组。
func (a *Aggregator) AddDuplicate(d domain.DuplicateReport) {
	a.summary.DuplicateGroups++
	a.summary.DuplicateRecords += len(d.Group.Members)
	a.dups = append(a.dups, d)
}

// AddEnrichSkipped 计入一条已有 Wikipedia 字段、无需查找的记录。
func (a *Aggregator) AddEnrichSkipped() { a.summary.EnrichSkipped++ }

// AddEnrichment 计入一条记录的查找结果。
func (a *Aggregator) AddEnrichment(index int, out domain.EnrichmentOutcome) {
	for _, t := range out.Tried {
		if t.Err != "" {
			a.summary.SearchErrByLang[t.Lang]++
		}
	}
	if out.Status == domain.EnrichResolved && out.Chosen != nil {
		a.summary.EnrichResolved++
		a.summary.SuccessByLang[out.Chosen.Lang]++
		return
	}

	a.summary.EnrichNotFound++
	attempted := out.AttemptedLanguages()
	var errs []string
	for _, t := range out.Tried {
		a.summary.FailureByLang[t.Lang]++
		if t.Err != "" {
			errs = append(errs, t.Lang+": "+t.Err)
		}
	}
	a.notFound = append(a.notFound, domain.NotFoundEntry{
		RecordID:  out.RecordID,
		Index:     index,
		Title:     out.Title,
		Attempted: attempted,
		Errors:    errs,
	})
}

// Report 是一次运行的全部报告内容。
type Report struct {
	Summary    domain.Summary
	Unicode    []domain.UnicodeReviewEntry
	Duplicates []domain.DuplicateReport
	NotFound   []domain.NotFoundEntry
}

// Finish 冻结累加结果；返回值与之后的累加互不影响。
func (a *Aggregator) Finish(finished time.Time) Report {
	s := a.summary
	s.FinishedAt = finished
	s.FieldsPrunedBy = maps.Clone(a.summary.FieldsPrunedBy)
	s.SuccessByLang = maps.Clone(a.summary.SuccessByLang)
	s.FailureByLang = maps.Clone(a.summary.FailureByLang)
	s.SearchErrByLang = maps.Clone(a.summary.SearchErrByLang)
	return Report{
		Summary:    s,
		Unicode:    append([]domain.UnicodeReviewEntry(nil), a.unicode...),
		Duplicates: append([]domain.DuplicateReport(nil), a.dups...),
		NotFound:   append([]domain.NotFoundEntry(nil), a.notFound...),
	}
}
