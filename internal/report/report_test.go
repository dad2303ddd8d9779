package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/geoclean/internal/domain"
)

func fixture() Report {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := New("run-1", "/data/places.geojson", start, true)

	a.AddRecord(true)
	a.AddRecord(true)
	a.AddRecord(false)
	a.AddPruned([]string{"icon", "tooltip"})
	a.AddPruned([]string{"icon"})

	r0 := &domain.Record{Index: 0, ID: "a"}
	a.AddNormalization(r0, []domain.NormalizationOutcome{
		{Field: "title", Original: "MÃ¼nchen", Corrected: "München", Status: domain.NormCorrected, EncodingFixed: true},
		{Field: "description", Original: "x", Corrected: "x", Status: domain.NormUnchanged},
		{Field: "note", Original: `Alpen\nblick`, Corrected: "Alpen blick", Status: domain.NormCorrected, NewlineFixed: true},
	})
	r1 := &domain.Record{Index: 1, ID: "b"}
	a.AddNormalization(r1, []domain.NormalizationOutcome{
		{Field: "title", Original: "Spiaskï¿½\\nVes", Corrected: "Spiaskï¿½\\nVes", Status: domain.NormReview, Suspicious: []string{"ï¿½"}},
		{Field: "description", Original: "Ã¸x", Corrected: "Ã¸x", Status: domain.NormReview, Suspicious: []string{"Ã¸"}},
	})

	a.AddDuplicate(domain.DuplicateReport{
		Group: domain.DuplicateGroup{
			Members: []domain.DuplicateMember{
				{Index: 0, ID: "a", Title: "Schloss Neuschwanstein"},
				{Index: 1, ID: "b", Title: "Schloss Neuschwanstein"},
			},
			MinScore: 1,
		},
		Hints: []string{"Point(10.74980, 47.55760)", ""},
	})

	a.AddEnrichSkipped()
	a.AddEnrichment(0, domain.EnrichmentOutcome{
		RecordID: "a", Title: "München", Status: domain.EnrichResolved,
		Chosen: &domain.Candidate{Lang: "de", Title: "München"},
		Tried:  []domain.LangAttempt{{Lang: "en", Err: "HTTP 503"}, {Lang: "de"}},
	})
	a.AddEnrichment(1, domain.EnrichmentOutcome{
		RecordID: "b", Title: "Nowhere", Status: domain.EnrichNotFound,
		Tried: []domain.LangAttempt{{Lang: "fr"}, {Lang: "en", Err: "timeout"}, {Lang: "de"}},
	})
	return a.Finish(start.Add(time.Minute))
}

func TestAggregator_Counts(t *testing.T) {
	r := fixture()
	s := r.Summary

	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 1, s.RecordsUntitled)
	assert.Equal(t, 3, s.FieldsPruned)
	assert.Equal(t, map[string]int{"icon": 2, "tooltip": 1}, s.FieldsPrunedBy)
	assert.Equal(t, 2, s.TextCorrections)
	assert.Equal(t, 1, s.EncodingFixes)
	assert.Equal(t, 1, s.NewlineFixes)
	assert.Equal(t, 1, s.UnicodeReviews)
	assert.Equal(t, 1, s.DuplicateGroups)
	assert.Equal(t, 2, s.DuplicateRecords)
	assert.Equal(t, 1, s.EnrichSkipped)
	assert.Equal(t, 1, s.EnrichResolved)
	assert.Equal(t, 1, s.EnrichNotFound)
	assert.Equal(t, map[string]int{"de": 1}, s.SuccessByLang)
	assert.Equal(t, map[string]int{"fr": 1, "en": 1, "de": 1}, s.FailureByLang)
	assert.Equal(t, map[string]int{"en": 2}, s.SearchErrByLang)
}

func TestAggregator_OneUnicodeEntryPerRecord(t *testing.T) {
	r := fixture()
	require.Len(t, r.Unicode, 1)
	assert.Equal(t, "b", r.Unicode[0].RecordID)
	assert.Len(t, r.Unicode[0].Fields, 2)
}

func TestAggregator_NotFoundEntry(t *testing.T) {
	r := fixture()
	require.Len(t, r.NotFound, 1)
	n := r.NotFound[0]
	assert.Equal(t, "Nowhere", n.Title)
	assert.Equal(t, []string{"fr", "en", "de"}, n.Attempted)
	assert.Equal(t, []string{"en: timeout"}, n.Errors)
}

func TestRender_OmitsEmptyReports(t *testing.T) {
	a := New("run-2", "x.geojson", time.Now(), false)
	a.AddRecord(true)
	files := Render(a.Finish(time.Now()))
	require.Len(t, files, 1)
	assert.Equal(t, SummaryFile, files[0].Name)
	assert.Contains(t, string(files[0].Data), "- disabled")
}

func TestRender_AllReports(t *testing.T) {
	files := Render(fixture())
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{SummaryFile, DuplicatesFile, NotFoundFile, UnicodeFile}, names)

	summary := string(files[0].Data)
	assert.Contains(t, summary, "places.geojson Cleanup Summary")
	assert.Contains(t, summary, "Run ID:   run-1")
	assert.Contains(t, summary, "Total features processed: 3")
	assert.Contains(t, summary, "- Fields pruned: 3")
	assert.Contains(t, summary, "- Potential duplicate groups found: 1 (2 records)")
	assert.Contains(t, summary, "- icon: 2 occurrences")
	assert.Contains(t, summary, "  - de: 1")

	dups := string(files[1].Data)
	assert.Contains(t, dups, `Group 1 (min similarity 1.000):`)
	assert.Contains(t, dups, `- "Schloss Neuschwanstein" [id a, index 0] Point(10.74980, 47.55760)`)

	nf := string(files[2].Data)
	assert.Contains(t, nf, "- Nowhere [id b, index 1] tried: fr, en, de")
	assert.Contains(t, nf, "error: en: timeout")

	uni := string(files[3].Data)
	assert.Contains(t, uni, "Index 1 (id b):")
	assert.Contains(t, uni, `Suspicious: "ï¿½"`)
}

func TestRenderDuplicates_Spread(t *testing.T) {
	r := Report{Duplicates: []domain.DuplicateReport{{
		Group: domain.DuplicateGroup{
			Members:  []domain.DuplicateMember{{Index: 0, ID: "a", Title: "Kirche"}, {Index: 4, ID: "e", Title: "Kirche"}},
			MinScore: 1,
		},
		Spread:    1520,
		HasSpread: true,
	}}}
	out := string(RenderDuplicates(r))
	assert.Contains(t, out, "Group 1 (min similarity 1.000, spread 1.5 km):")
	assert.Contains(t, out, `- "Kirche" [id e, index 4]`)
}

func TestAggregator_FinishIsSnapshot(t *testing.T) {
	a := New("run-3", "x.geojson", time.Now(), false)
	a.AddPruned([]string{"icon"})
	a.AddEnrichment(0, domain.EnrichmentOutcome{
		RecordID: "a", Title: "Köln", Status: domain.EnrichResolved,
		Chosen: &domain.Candidate{Lang: "de", Title: "Köln"},
		Tried:  []domain.LangAttempt{{Lang: "de"}},
	})
	snap := a.Finish(time.Now())

	a.AddPruned([]string{"icon", "tooltip"})
	a.AddEnrichment(1, domain.EnrichmentOutcome{
		RecordID: "b", Title: "Bonn", Status: domain.EnrichResolved,
		Chosen: &domain.Candidate{Lang: "de", Title: "Bonn"},
		Tried:  []domain.LangAttempt{{Lang: "de"}},
	})
	a.AddEnrichment(2, domain.EnrichmentOutcome{
		RecordID: "c", Title: "Nowhere", Status: domain.EnrichNotFound,
		Tried: []domain.LangAttempt{{Lang: "en", Err: "timeout"}},
	})

	assert.Equal(t, map[string]int{"icon": 1}, snap.Summary.FieldsPrunedBy)
	assert.Equal(t, map[string]int{"de": 1}, snap.Summary.SuccessByLang)
	assert.Empty(t, snap.Summary.FailureByLang)
	assert.Empty(t, snap.Summary.SearchErrByLang)

	final := a.Finish(time.Now())
	assert.Equal(t, map[string]int{"icon": 2, "tooltip": 1}, final.Summary.FieldsPrunedBy)
	assert.Equal(t, map[string]int{"de": 2}, final.Summary.SuccessByLang)
}
