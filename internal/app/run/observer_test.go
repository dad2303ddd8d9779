package run

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/John-Robertt/geoclean/internal/config"
	"github.com/John-Robertt/geoclean/internal/domain"
)

type recordObserver struct {
	startCalls int
	phases     []string
	records    []string
	totals     []int
}

func (o *recordObserver) OnStart(config.EffectiveConfig) { o.startCalls++ }

func (o *recordObserver) OnPhaseDone(name string, _ map[string]any, _ time.Duration) {
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnRecordDone(idx, total int, out domain.EnrichmentOutcome, _ time.Duration) {
	o.records = append(o.records, out.RecordID)
	o.totals = append(o.totals, total)
}

func TestExecuteWithObserver_EmitsPhaseAndRecordEvents(t *testing.T) {
	dir := t.TempDir()
	eff := testConfig(writeInput(t, dir, placesDoc), filepath.Join(dir, "out"))

	obs := &recordObserver{}
	_, err := ExecuteWithObserver(context.Background(), eff, testDeps(&stubSearcher{}), obs)
	require.NoError(t, err)

	assert.Equal(t, 1, obs.startCalls)
	assert.Equal(t, []string{PhaseLoad, PhaseNormalize, PhaseDedupe, PhaseEnrich, PhaseWrite}, obs.phases)
	// c 已有 Wikipedia，f 没有标题
	assert.Equal(t, []string{"a", "b", "d", "e"}, obs.records)
	assert.Equal(t, []int{4, 4, 4, 4}, obs.totals)
}

func TestExecuteWithObserver_NilObserver_SameResultAsExecute(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, placesDoc)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	deps := testDeps(&stubSearcher{})
	deps.Now = func() time.Time { return fixed }
	a, err := Execute(context.Background(), testConfig(input, filepath.Join(dir, "a")), deps)
	require.NoError(t, err)

	deps = testDeps(&stubSearcher{})
	deps.Now = func() time.Time { return fixed }
	b, err := ExecuteWithObserver(context.Background(), testConfig(input, filepath.Join(dir, "b")), deps, &recordObserver{})
	require.NoError(t, err)

	assert.Equal(t, a.Report, b.Report)
}

func TestEmit_LogFieldsAreSorted(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fields := map[string]any{"records": 6, "corrections": 2, "unicode_review": 1, "fields_pruned": 3, "dry_run": false}

	for i := 0; i < 5; i++ {
		emit(nil, zap.New(core), PhaseNormalize, fields, time.Second)
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)
	for _, e := range entries {
		var keys []string
		for _, f := range e.Context {
			keys = append(keys, f.Key)
		}
		assert.Equal(t, []string{"phase", "duration", "corrections", "dry_run", "fields_pruned", "records", "unicode_review"}, keys)
	}
}
