package run

import (
	"time"

	"github.com/John-Robertt/geoclean/internal/config"
	"github.com/John-Robertt/geoclean/internal/domain"
)

// Observer 用于把“运行进度/阶段/记录结果”从核心执行流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出。流水线是单线程的，事件按顺序到达。
type Observer interface {
	// OnStart 在执行开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnRecordDone 在某条记录的 Wikipedia 查找结束时调用。
	OnRecordDone(idx, total int, out domain.EnrichmentOutcome, dur time.Duration)
}

// 阶段名称（OnPhaseDone 的 name）。
const (
	PhaseLoad      = "load"
	PhaseNormalize = "normalize"
	PhaseDedupe    = "dedupe"
	PhaseEnrich    = "enrich"
	PhaseWrite     = "write"
)
