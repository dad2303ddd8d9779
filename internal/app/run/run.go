package run

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"path/filepath"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/John-Robertt/geoclean/internal/config"
	"github.com/John-Robertt/geoclean/internal/dedupe"
	"github.com/John-Robertt/geoclean/internal/domain"
	"github.com/John-Robertt/geoclean/internal/geojson"
	"github.com/John-Robertt/geoclean/internal/infra/cache"
	"github.com/John-Robertt/geoclean/internal/infra/fsx"
	"github.com/John-Robertt/geoclean/internal/infra/httpx"
	"github.com/John-Robertt/geoclean/internal/lang"
	"github.com/John-Robertt/geoclean/internal/prune"
	"github.com/John-Robertt/geoclean/internal/report"
	"github.com/John-Robertt/geoclean/internal/textnorm"
	"github.com/John-Robertt/geoclean/internal/wiki"
	"github.com/John-Robertt/geoclean/internal/wiki/opensearch"
	"github.com/John-Robertt/geoclean/internal/wiki/search"
)

// Deps 是 Execute 的可替换依赖；零值表示按 eff 构造真实实现。
type Deps struct {
	// Searcher 为空时按 eff.SearchBackend 构造（httpx + 可选 cache）。
	Searcher wiki.Searcher
	// NewBackOff 为空时使用从 eff.RetryInitialInterval 开始的指数退避。
	NewBackOff func() backoff.BackOff
	Log        *zap.Logger
	Now        func() time.Time
	RunID      string
}

// Result 是一次运行的结果。
type Result struct {
	RunID      string
	DryRun     bool
	OutputPath string
	Written    []string // 实际写出的文件（dry-run 为空）
	Report     report.Report
}

// Execute 执行一次完整的清洗流水线。
//
// 任何返回的 error 都意味着没有写出任何文件：
// - 输入无法读取/不是合法文档：*geojson.InputError
// - ctx 被取消
// - 最终落盘失败
// 单条记录的失败（编码可疑、搜索失败、未找到）只进入报告，不影响其他记录。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) (Result, error) {
	return ExecuteWithObserver(ctx, eff, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, deps Deps, obs Observer) (Result, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log = log.With(zap.String("run_id", runID))

	if obs != nil {
		obs.OnStart(eff)
	}
	res := Result{RunID: runID, DryRun: eff.DryRun, OutputPath: eff.OutputPath}

	// load
	phaseStarted := time.Now()
	ds, err := geojson.ReadFile(eff.InputPath)
	if err != nil {
		return res, err
	}
	agg := report.New(runID, eff.InputPath, now(), eff.Enrich)
	emit(obs, log, PhaseLoad, map[string]any{"records": len(ds.Records)}, time.Since(phaseStarted))

	// normalize + prune：记录之间没有依赖
	phaseStarted = time.Now()
	normalizer := textnorm.New(log)
	pruner := prune.New(prune.DefaultDenylist)
	for _, rec := range ds.Records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cleanRecord(rec, eff.TextFields, normalizer, pruner, agg)
		_, titled := rec.Title(eff.TitleKey)
		agg.AddRecord(titled)
	}
	partial := agg.Finish(now()).Summary
	emit(obs, log, PhaseNormalize, map[string]any{
		"corrections":    partial.TextCorrections,
		"unicode_review": partial.UnicodeReviews,
		"fields_pruned":  partial.FieldsPruned,
	}, time.Since(phaseStarted))

	// dedupe：必须看到全部归一化后的标题
	phaseStarted = time.Now()
	groups := findDuplicates(ds, eff.TitleKey)
	for _, g := range groups {
		d := domain.DuplicateReport{Group: g, Hints: make([]string, len(g.Members))}
		geoms := make([]json.RawMessage, len(g.Members))
		for i, m := range g.Members {
			geoms[i] = ds.Records[m.Index].Geometry
			d.Hints[i] = geojson.GeometryHint(geoms[i])
		}
		d.Spread, d.HasSpread = geojson.Spread(geoms)
		agg.AddDuplicate(d)
	}
	emit(obs, log, PhaseDedupe, map[string]any{"groups": len(groups)}, time.Since(phaseStarted))

	// enrich：逐条记录串行，同一时刻最多一个请求在途
	if eff.Enrich {
		phaseStarted = time.Now()
		resolved, notFound, err := enrich(ctx, eff, deps, ds, agg, log, obs)
		if err != nil {
			return res, err
		}
		emit(obs, log, PhaseEnrich, map[string]any{
			"resolved":  resolved,
			"not_found": notFound,
		}, time.Since(phaseStarted))
	}

	// write：全部渲染到内存后一次性提交
	phaseStarted = time.Now()
	out, err := geojson.Encode(ds)
	if err != nil {
		return res, fmt.Errorf("编码输出失败：%w", err)
	}
	res.Report = agg.Finish(now())
	files := []fsx.File{{Path: eff.OutputPath, Data: out}}
	for _, f := range report.Render(res.Report) {
		files = append(files, fsx.File{Path: filepath.Join(eff.OutputDir, f.Name), Data: f.Data})
	}
	if !eff.DryRun {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := fsx.CommitFiles(files); err != nil {
			return res, fmt.Errorf("写出结果失败：%w", err)
		}
		for _, f := range files {
			res.Written = append(res.Written, f.Path)
		}
	}
	emit(obs, log, PhaseWrite, map[string]any{
		"files":   len(res.Written),
		"dry_run": eff.DryRun,
	}, time.Since(phaseStarted))
	return res, nil
}

func emit(obs Observer, log *zap.Logger, phase string, fields map[string]any, dur time.Duration) {
	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("phase", phase), zap.Duration("duration", dur))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	log.Info("阶段完成", zf...)
	if obs != nil {
		obs.OnPhaseDone(phase, fields, dur)
	}
}

// cleanRecord 对单条记录做文本归一化与字段删除。
func cleanRecord(rec *domain.Record, textFields []string, n *textnorm.Normalizer, p *prune.Pruner, agg *report.Aggregator) {
	if !rec.HasProps {
		return
	}
	var outs []domain.NormalizationOutcome
	for _, field := range textFields {
		s, ok := rec.Props.String(field)
		if !ok || s == "" {
			continue
		}
		o := n.Normalize(field, s)
		if o.Changed() {
			rec.Props.SetString(field, o.Corrected)
		}
		outs = append(outs, o)
	}
	agg.AddNormalization(rec, outs)

	pruned, removed := p.Prune(rec.Props)
	rec.Props = pruned
	agg.AddPruned(removed)
}

func findDuplicates(ds *domain.Dataset, titleKey string) []domain.DuplicateGroup {
	entries := make([]dedupe.Entry, 0, len(ds.Records))
	for _, rec := range ds.Records {
		title, ok := rec.Title(titleKey)
		if !ok {
			continue
		}
		entries = append(entries, dedupe.Entry{Index: rec.Index, ID: rec.ID, Title: title})
	}
	return dedupe.New().Detect(entries)
}

func enrich(ctx context.Context, eff config.EffectiveConfig, deps Deps, ds *domain.Dataset, agg *report.Aggregator, log *zap.Logger, obs Observer) (resolved, notFound int, err error) {
	searcher := deps.Searcher
	if searcher == nil {
		searcher, err = NewSearcher(eff, httpx.NewLimiter(eff.RequestInterval), log)
		if err != nil {
			return 0, 0, err
		}
	}

	r := wiki.NewResolver(lang.New(eff.BaseLanguage, eff.SecondaryLanguage, eff.MaxLanguages), searcher, log)
	r.MaxAttempts = eff.MaxAttempts
	r.NewBackOff = deps.NewBackOff
	if r.NewBackOff == nil {
		r.NewBackOff = wiki.ExponentialBackOff(eff.RetryInitialInterval)
	}

	var pending []*domain.Record
	for _, rec := range ds.Records {
		if _, ok := rec.Title(eff.TitleKey); !ok {
			continue
		}
		if rec.Props.Has(eff.WikipediaKey) {
			agg.AddEnrichSkipped()
			continue
		}
		pending = append(pending, rec)
	}

	for i, rec := range pending {
		title, _ := rec.Title(eff.TitleKey)
		started := time.Now()
		out, err := r.Resolve(ctx, rec.ID, title, rec.Props)
		if err != nil {
			return resolved, notFound, err
		}
		if out.Status == domain.EnrichResolved {
			rec.Props.SetString(eff.WikipediaKey, out.Chosen.URL)
			resolved++
		} else {
			notFound++
		}
		agg.AddEnrichment(rec.Index, out)
		if obs != nil {
			obs.OnRecordDone(i+1, len(pending), out, time.Since(started))
		}
	}
	return resolved, notFound, nil
}

// NewSearcher 按配置构造搜索后端：httpx client（共享 limiter）→ backend → 可选磁盘 cache → 进程内 memo。
func NewSearcher(eff config.EffectiveConfig, limiter *rate.Limiter, log *zap.Logger) (wiki.Searcher, error) {
	client, err := httpx.NewClient(httpx.Options{
		ProxyURL:  eff.ProxyURL,
		UserAgent: eff.UserAgent,
		Timeout:   eff.Timeout,
		Limiter:   limiter,
	})
	if err != nil {
		return nil, fmt.Errorf("构造 http client 失败：%w", err)
	}
	reg, err := NewRegistry(client, eff)
	if err != nil {
		return nil, err
	}
	backend, ok := reg.Get(eff.SearchBackend)
	if !ok {
		return nil, fmt.Errorf("未知 search.backend：%q（可选 %v）", eff.SearchBackend, reg.Names())
	}
	var s wiki.Searcher = backend
	if eff.CacheDir != "" {
		s = cache.Searcher{
			Next:    backend,
			Store:   cache.New(eff.CacheDir, eff.DryRun),
			Backend: backend.Name(),
			Log:     log,
		}
	}
	memo, err := cache.NewMemo(s, cache.DefaultMemoSize)
	if err != nil {
		return nil, err
	}
	return memo, nil
}

// NewRegistry 注册全部内置搜索后端。
func NewRegistry(c *http.Client, eff config.EffectiveConfig) (wiki.Registry, error) {
	endpoint := wiki.Endpoint(eff.SearchEndpoint)
	return wiki.NewRegistry(
		search.Backend{Client: c, Endpoint: endpoint, Limit: eff.SearchLimit},
		opensearch.Backend{Client: c, Endpoint: endpoint, Limit: eff.SearchLimit},
	)
}
