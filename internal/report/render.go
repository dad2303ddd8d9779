package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	SummaryFile    = "cleanup_summary.txt"
	DuplicatesFile = "potential_duplicates.txt"
	NotFoundFile   = "wikipedia_not_found.txt"
	UnicodeFile    = "unicode_errors_review.txt"
)

// File 是一个渲染好的报告文件。
type File struct {
	Name string
	Data []byte
}

// Render 渲染全部报告；summary 总是输出，其余三类为空时省略。
func Render(r Report) []File {
	files := []File{{Name: SummaryFile, Data: RenderSummary(r)}}
	if len(r.Duplicates) > 0 {
		files = append(files, File{Name: DuplicatesFile, Data: RenderDuplicates(r)})
	}
	if len(r.NotFound) > 0 {
		files = append(files, File{Name: NotFoundFile, Data: RenderNotFound(r)})
	}
	if len(r.Unicode) > 0 {
		files = append(files, File{Name: UnicodeFile, Data: RenderUnicode(r)})
	}
	return files
}

func heading(b *bytes.Buffer, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
}

func RenderSummary(r Report) []byte {
	s := r.Summary
	var b bytes.Buffer
	heading(&b, filepath.Base(s.Dataset)+" Cleanup Summary")

	fmt.Fprintf(&b, "Run ID:   %s\n", s.RunID)
	fmt.Fprintf(&b, "Started:  %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Finished: %s\n\n", s.FinishedAt.UTC().Format(time.RFC3339))

	fmt.Fprintf(&b, "Total features processed: %d\n", s.Records)
	if s.RecordsUntitled > 0 {
		fmt.Fprintf(&b, "Features without a title: %d\n", s.RecordsUntitled)
	}
	b.WriteString("\n")

	b.WriteString("Changes made:\n")
	fmt.Fprintf(&b, "- Fields pruned: %d\n", s.FieldsPruned)
	fmt.Fprintf(&b, "- Text corrections applied: %d\n", s.TextCorrections)
	fmt.Fprintf(&b, "  - Newline fixes: %d\n", s.NewlineFixes)
	fmt.Fprintf(&b, "  - Unicode fixes: %d\n", s.EncodingFixes)
	fmt.Fprintf(&b, "- Fields flagged for unicode review: %d records\n", s.UnicodeReviews)
	fmt.Fprintf(&b, "- Potential duplicate groups found: %d (%d records)\n", s.DuplicateGroups, s.DuplicateRecords)
	b.WriteString("\n")

	b.WriteString("Wikipedia enrichment:\n")
	if !s.EnrichEnabled {
		b.WriteString("- disabled\n")
	} else {
		fmt.Fprintf(&b, "- Entries added: %d\n", s.EnrichResolved)
		fmt.Fprintf(&b, "- Entries skipped (already present): %d\n", s.EnrichSkipped)
		fmt.Fprintf(&b, "- Titles without Wikipedia articles: %d\n", s.EnrichNotFound)
		writeCounts(&b, "Successes by language", s.SuccessByLang)
		writeCounts(&b, "Failures by language (languages attempted for not-found titles)", s.FailureByLang)
		writeCounts(&b, "Search errors by language (retries exhausted)", s.SearchErrByLang)
	}
	b.WriteString("\n")

	b.WriteString("Fields removed:\n")
	if len(s.FieldsPrunedBy) == 0 {
		b.WriteString("- none\n")
	}
	for _, k := range sortedKeys(s.FieldsPrunedBy) {
		fmt.Fprintf(&b, "- %s: %d occurrences\n", k, s.FieldsPrunedBy[k])
	}
	return b.Bytes()
}

func writeCounts(b *bytes.Buffer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s:\n", title)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(b, "  - %s: %d\n", k, m[k])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func RenderDuplicates(r Report) []byte {
	var b bytes.Buffer
	heading(&b, "Potential Duplicates Requiring Manual Review")
	fmt.Fprintf(&b, "Found %d groups of potential duplicates:\n\n", len(r.Duplicates))
	for i, d := range r.Duplicates {
		if d.HasSpread {
			fmt.Fprintf(&b, "Group %d (min similarity %.3f, spread %s):\n", i+1, d.Group.MinScore, humanize.SIWithDigits(d.Spread, 1, "m"))
		} else {
			fmt.Fprintf(&b, "Group %d (min similarity %.3f):\n", i+1, d.Group.MinScore)
		}
		for j, m := range d.Group.Members {
			fmt.Fprintf(&b, "  - %s [id %s, index %d]", strconv.Quote(m.Title), m.ID, m.Index)
			if j < len(d.Hints) && d.Hints[j] != "" {
				fmt.Fprintf(&b, " %s", d.Hints[j])
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

func RenderNotFound(r Report) []byte {
	var b bytes.Buffer
	heading(&b, "Titles Without Wikipedia Articles")
	fmt.Fprintf(&b, "Found %d titles without Wikipedia articles:\n\n", len(r.NotFound))
	for _, n := range r.NotFound {
		fmt.Fprintf(&b, "- %s [id %s, index %d] tried: %s\n", n.Title, n.RecordID, n.Index, strings.Join(n.Attempted, ", "))
		for _, e := range n.Errors {
			fmt.Fprintf(&b, "    error: %s\n", e)
		}
	}
	return b.Bytes()
}

func RenderUnicode(r Report) []byte {
	var b bytes.Buffer
	heading(&b, "Unicode Errors Requiring Manual Review")
	fmt.Fprintf(&b, "Found %d records with potential unicode issues:\n\n", len(r.Unicode))
	for _, u := range r.Unicode {
		fmt.Fprintf(&b, "Index %d (id %s):\n", u.Index, u.RecordID)
		for _, f := range u.Fields {
			fmt.Fprintf(&b, "  Field:      %s\n", f.Field)
			fmt.Fprintf(&b, "  Original:   %s\n", strconv.Quote(f.Original))
			fmt.Fprintf(&b, "  Current:    %s\n", strconv.Quote(f.Corrected))
			fmt.Fprintf(&b, "  Suspicious: %s\n", quoteAll(f.Suspicious))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ", ")
}
