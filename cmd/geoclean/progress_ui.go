package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/geoclean/internal/app/run"
	"github.com/John-Robertt/geoclean/internal/config"
	"github.com/John-Robertt/geoclean/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的进度输出。
//
// 所有过程信息写到 stderr；run 层只发事件，这里决定如何展示。
// Wikipedia 查找受限速与重试影响可能很慢，长时间无输出时定期打印一行 keepalive。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time
	phase       string

	total    int
	done     int
	resolved int
	notFound int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}
	p.phase = run.PhaseLoad

	mode := "write"
	if eff.DryRun {
		mode = "dry-run (不写入任何文件)"
	}

	fmt.Fprintf(p.w, "[%s] geoclean\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  input: %s\n", eff.InputPath)
	if eff.ConfigPath != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigPath)
	}
	fmt.Fprintf(p.w, "  mode: %s\n", mode)
	fmt.Fprintf(p.w, "  fields: title=%s wikipedia=%s text=%s\n", eff.TitleKey, eff.WikipediaKey, strings.Join(eff.TextFields, ","))
	if eff.Enrich {
		fmt.Fprintf(p.w, "  enrich: %s limit=%d languages=%s,%s max=%d\n",
			eff.SearchBackend, eff.SearchLimit, eff.BaseLanguage, eff.SecondaryLanguage, eff.MaxLanguages,
		)
		fmt.Fprintf(p.w, "  endpoint: %s\n", truncate(eff.SearchEndpoint, 120))
		fmt.Fprintf(p.w, "  interval: %s retry=%d\n", eff.RequestInterval, eff.MaxAttempts)
		fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
		fmt.Fprintf(p.w, "  cache: %s\n", onOffPath(eff.CacheDir))
	} else {
		fmt.Fprintln(p.w, "  enrich: off")
	}
	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  out: %s\n", eff.OutputPath)
	fmt.Fprintf(p.w, "  reports: %s\n", eff.OutputDir)
	if eff.LogFile != "" {
		fmt.Fprintf(p.w, "  log: %s\n", eff.LogFile)
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	p.startTickerLocked()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case run.PhaseLoad:
		fmt.Fprintf(p.w, "读取: records=%d (%s)\n", intField(fields, "records"), formatShortDuration(dur))
		p.phase = run.PhaseNormalize
	case run.PhaseNormalize:
		fmt.Fprintf(p.w, "清洗: corrections=%d unicode_review=%d fields_pruned=%d (%s)\n",
			intField(fields, "corrections"),
			intField(fields, "unicode_review"),
			intField(fields, "fields_pruned"),
			formatShortDuration(dur),
		)
		p.phase = run.PhaseDedupe
	case run.PhaseDedupe:
		fmt.Fprintf(p.w, "查重: groups=%d (%s)\n", intField(fields, "groups"), formatShortDuration(dur))
		p.phase = run.PhaseEnrich
	case run.PhaseEnrich:
		fmt.Fprintf(p.w, "查找: resolved=%d not_found=%d (%s)\n",
			intField(fields, "resolved"), intField(fields, "not_found"), formatShortDuration(dur),
		)
		p.phase = run.PhaseWrite
	case run.PhaseWrite:
		fmt.Fprintf(p.w, "写出: files=%d (%s)\n", intField(fields, "files"), formatShortDuration(dur))
		p.phase = ""
		p.stopTickerLocked()
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnRecordDone(idx, total int, out domain.EnrichmentOutcome, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch out.Status {
	case domain.EnrichResolved:
		p.resolved++
		fmt.Fprintf(p.w, "[%d/%d] OK %s -> %s [%s] (%s)\n",
			idx, total, truncate(out.Title, 60), out.Chosen.Title, out.Chosen.Lang, formatShortDuration(dur),
		)
	default:
		p.notFound++
		fmt.Fprintf(p.w, "[%d/%d] MISS %s tried=%s%s (%s)\n",
			idx, total, truncate(out.Title, 60), formatTried(out), formatAttemptErrors(out.Tried), formatShortDuration(dur),
		)
	}

	p.lastPrinted = time.Now()
}

// Close 停止 keepalive；运行失败时 OnPhaseDone(write) 不会到达，必须由调用方关闭。
func (p *progressUI) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	if p.tickerStarted {
		return
	}
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	stop := p.stopCh
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if time.Since(p.lastPrinted) > threshold {
					p.printKeepaliveLocked()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) printKeepaliveLocked() {
	elapsed := time.Since(p.startedAt)
	if p.phase == run.PhaseEnrich && p.total > 0 {
		fmt.Fprintf(p.w, "进度: done=%d/%d resolved=%d not_found=%d elapsed=%s\n",
			p.done, p.total, p.resolved, p.notFound, formatElapsed(elapsed),
		)
	} else {
		fmt.Fprintf(p.w, "进度: phase=%s elapsed=%s\n", p.phase, formatElapsed(elapsed))
	}
	p.lastPrinted = time.Now()
}

func formatTried(out domain.EnrichmentOutcome) string {
	langs := out.AttemptedLanguages()
	if len(langs) == 0 {
		return "-"
	}
	return strings.Join(langs, ",")
}

// formatAttemptErrors 只展示第一个重试耗尽的语言，否则会变成噪音。
func formatAttemptErrors(tried []domain.LangAttempt) string {
	for _, a := range tried {
		if strings.TrimSpace(a.Err) == "" {
			continue
		}
		return fmt.Sprintf(" error(%s x%d: %s)", a.Lang, a.Attempts, truncate(a.Err, 90))
	}
	return ""
}

func onOffPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return "off"
	}
	return p
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
