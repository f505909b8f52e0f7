package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/shuddho/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func TestBlobRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.LoadBlob(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing blob, ok=%v err=%v", ok, err)
	}
	if err := st.SaveBlob(ctx, "state", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save blob: %v", err)
	}
	if err := st.SaveBlob(ctx, "state", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite blob: %v", err)
	}
	data, ok, err := st.LoadBlob(ctx, "state")
	if err != nil || !ok {
		t.Fatalf("load blob: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":2}` {
		t.Fatalf("unexpected blob %q", data)
	}
	if err := st.DeleteBlob(ctx, "state"); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	if _, ok, _ := st.LoadBlob(ctx, "state"); ok {
		t.Fatalf("expected blob to be deleted")
	}
}

func TestListAnalysesFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		run := model.AnalysisRun{
			RunID:       "run-" + string(rune('a'+i)),
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			EndedAt:     base.Add(time.Duration(i)*time.Hour + 2*time.Second),
			Model:       "gemini-2.5-flash",
			Chars:       100 * (i + 1),
			Corrections: i,
			Errors:      i,
			Fallback:    i == 2,
		}
		if _, err := st.InsertAnalysis(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	all, err := st.ListAnalyses(ctx, model.ReportConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
	if !all[2].Fallback || all[1].Fallback {
		t.Fatalf("fallback flag not round-tripped: %+v", all)
	}
	if all[3].Duration() != 2*time.Second {
		t.Fatalf("unexpected duration %v", all[3].Duration())
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListAnalyses(ctx, model.ReportConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 || recent[0].RunID != "run-c" {
		t.Fatalf("unexpected since result: %+v", recent)
	}

	last, err := st.ListAnalyses(ctx, model.ReportConfig{Last: 1})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 1 || last[0].RunID != "run-d" {
		t.Fatalf("unexpected last result: %+v", last)
	}
}

func TestListAnalysesOrdersSubSecondEndTimes(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)

	// Inserted out of order; a whole second must sort before its fractions.
	ends := []time.Duration{100 * time.Millisecond, 0, 2500 * time.Microsecond}
	for i, d := range ends {
		run := model.AnalysisRun{
			RunID:     "run-" + string(rune('a'+i)),
			StartedAt: base.Add(-time.Second),
			EndedAt:   base.Add(d),
		}
		if _, err := st.InsertAnalysis(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	runs, err := st.ListAnalyses(ctx, model.ReportConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	var got []string
	for _, run := range runs {
		got = append(got, run.RunID)
	}
	if strings.Join(got, ",") != "run-b,run-c,run-a" {
		t.Fatalf("unexpected order %v", got)
	}
	if !runs[0].EndedAt.Equal(base) {
		t.Fatalf("unexpected end time %v", runs[0].EndedAt)
	}

	since := base.Add(50 * time.Millisecond)
	later, err := st.ListAnalyses(ctx, model.ReportConfig{Since: &since})
	if err != nil {
		t.Fatalf("list runs since: %v", err)
	}
	if len(later) != 1 || later[0].RunID != "run-a" {
		t.Fatalf("unexpected runs since %v: %+v", since, later)
	}
}
