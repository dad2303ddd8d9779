package wiki

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/lang"
	"github.com/John-Robertt/geoclean/internal/lang/translate"
)

const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
)

// Resolver 为单条记录查找 Wikipedia 文章：
// 语言检测 → 术语翻译 → 逐语言搜索（带重试）→ 打分。
//
// 约束：
// - 同一时刻最多一个搜索请求在途（逐语言串行）
// - 某语言重试耗尽只推进到下一语言，不中止记录
// - 只有 ctx 取消会作为错误返回
type Resolver struct {
	Detector   *lang.Detector
	Translator *translate.Translator
	Searcher   Searcher
	Scorer     Scorer

	MaxAttempts int
	// NewBackOff 为每个语言构造一个新的退避策略；为空时使用指数退避。
	NewBackOff func() backoff.BackOff

	Log *zap.Logger
}

// NewResolver 用检测器的 base/secondary 构造 Scorer，其余取默认值。
func NewResolver(d *lang.Detector, s Searcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		Detector:    d,
		Translator:  translate.Default(),
		Searcher:    s,
		Scorer:      scorerFor(d),
		MaxAttempts: DefaultMaxAttempts,
		Log:         log,
	}
}

// ExponentialBackOff 返回从 initial 开始严格递增（无抖动）的退避策略。
func ExponentialBackOff(initial time.Duration) func() backoff.BackOff {
	if initial <= 0 {
		initial = DefaultInitialInterval
	}
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.RandomizationFactor = 0
		b.Multiplier = 2
		b.MaxElapsedTime = 0
		return b
	}
}

// Resolve 执行一条记录的完整解析。title 必须非空。
func (r *Resolver) Resolve(ctx context.Context, recordID, title string, props domain.Properties) (domain.EnrichmentOutcome, error) {
	out := domain.EnrichmentOutcome{RecordID: recordID, Title: title, Status: domain.EnrichNotFound}
	if strings.TrimSpace(title) == "" {
		return out, nil
	}

	langs := r.Detector.Detect(title, props)
	var found []domain.Candidate
	for _, l := range langs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		query := title
		if r.Translator != nil {
			query = r.Translator.Translate(title, l)
		}
		att, cands, err := r.searchLang(ctx, query, l)
		if err != nil {
			return out, err
		}
		out.Tried = append(out.Tried, att)
		for _, c := range cands {
			if c.Lang == "" {
				c.Lang = l
			}
			if c.Query == "" {
				c.Query = query
			}
			found = append(found, c)
		}
	}

	if c, ok := r.Scorer.Pick(found, out.AttemptedLanguages()); ok {
		out.Status = domain.EnrichResolved
		out.Chosen = &c
	}
	return out, nil
}

// searchLang 在单个语言下搜索（含重试）。只有 ctx 取消会返回 error。
func (r *Resolver) searchLang(ctx context.Context, query, l string) (domain.LangAttempt, []domain.Candidate, error) {
	att := domain.LangAttempt{Lang: l, Query: query}

	max := r.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	newBackOff := r.NewBackOff
	if newBackOff == nil {
		newBackOff = ExponentialBackOff(DefaultInitialInterval)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(max-1)), ctx)

	op := func() ([]domain.Candidate, error) {
		att.Attempts++
		cands, err := r.Searcher.Search(ctx, query, l)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			if IsPermanent(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return cands, nil
	}
	notify := func(err error, d time.Duration) {
		r.log().Warn("搜索失败，稍后重试",
			zap.String("lang", l),
			zap.String("query", query),
			zap.Int("attempt", att.Attempts),
			zap.Duration("backoff", d),
			zap.Error(err),
		)
	}

	cands, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return att, nil, ctxErr
		}
		se := &SearchError{Lang: l, Attempts: att.Attempts, Err: err}
		att.Err = se.Error()
		r.log().Warn("放弃该语言",
			zap.String("lang", l),
			zap.Int("attempts", att.Attempts),
			zap.Error(err),
		)
		return att, nil, nil
	}
	att.Candidates = len(cands)
	return att, cands, nil
}

func (r *Resolver) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// IsCanceled 判断 Resolve 返回的错误是否来自 ctx。
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func scorerFor(d *lang.Detector) Scorer {
	base := d.Base
	if base == "" {
		base = lang.DefaultBase
	}
	return Scorer{Base: base, Secondary: d.Secondary}
}
