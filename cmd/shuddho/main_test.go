package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/shuddho/internal/config"
	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/session"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	commented := regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)
	uncommented := commented.ReplaceAllString(defaultConfigTemplate(), "$1")
	var cfg config.FileConfig
	meta, err := toml.Decode(uncommented, &cfg)
	if err != nil {
		t.Fatalf("template does not decode: %v\n%s", err, uncommented)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		t.Fatalf("unknown key %q in template", undecoded[0].String())
	}
	if cfg.Analysis.Model == nil || *cfg.Analysis.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %v", cfg.Analysis.Model)
	}
	if cfg.Learning.HistoryLimit == nil || *cfg.Learning.HistoryLimit != 5000 {
		t.Fatalf("unexpected history limit %v", cfg.Learning.HistoryLimit)
	}
	if _, err := session.ParseReplaceMode(*cfg.Analysis.ReplaceMode); err != nil {
		t.Fatalf("template replace mode invalid: %v", err)
	}
}

func TestIgnoreCommandsRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "learn.db")
	out, err := runCLI(t, "ignore", "add", "--db", db, "শুদ্ধ", "বাংলা")
	if err != nil {
		t.Fatalf("ignore add failed: %v", err)
	}
	if !strings.Contains(out, "ignored 2 words") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := runCLI(t, "ignore", "remove", "--db", db, "বাংলা"); err != nil {
		t.Fatalf("ignore remove failed: %v", err)
	}
	out, err = runCLI(t, "ignore", "list", "--db", db)
	if err != nil {
		t.Fatalf("ignore list failed: %v", err)
	}
	if strings.TrimSpace(out) != "শুদ্ধ" {
		t.Fatalf("unexpected ignore list %q", out)
	}
}

func TestVocabImportFiltersLanguage(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "learn.db")
	list := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(list, []byte("শুদ্ধ\nhello\nবাংলা\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	out, err := runCLI(t, "vocab", "import", "--db", db, list)
	if err != nil {
		t.Fatalf("vocab import failed: %v", err)
	}
	if !strings.Contains(out, "imported 2 words") {
		t.Fatalf("unexpected output %q", out)
	}
	out, err = runCLI(t, "export", "--db", db, "--format", "yaml")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "accepted_words:") || !strings.Contains(out, "বাংলা") || strings.Contains(out, "hello") {
		t.Fatalf("unexpected export %q", out)
	}
}

func TestCheckPlainOffline(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(doc, []byte("এটা সম্বব নয়।\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	out, err := runCLI(t, "check", "--db", filepath.Join(dir, "learn.db"), "--plain", "--offline", doc)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, session.StatusOffline) {
		t.Fatalf("expected offline status, got %q", out)
	}
	if !strings.Contains(out, "সম্বব → সম্ভব") || !strings.Contains(out, "[local]") {
		t.Fatalf("expected local suggestion, got %q", out)
	}
}

func TestCorrectionsDeleteMissing(t *testing.T) {
	db := filepath.Join(t.TempDir(), "learn.db")
	if _, err := runCLI(t, "corrections", "delete", "--db", db, "ক", "খ"); err == nil {
		t.Fatalf("expected error for missing correction")
	}
}

func TestEncodeState(t *testing.T) {
	state := model.LearningState{IgnoreWords: []string{"শুদ্ধ"}}
	data, err := encodeState(state, "json")
	if err != nil {
		t.Fatalf("encode json: %v", err)
	}
	if !strings.Contains(string(data), `"ignoreWords"`) {
		t.Fatalf("unexpected json %s", data)
	}
	if _, err := encodeState(state, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteCheckReport(t *testing.T) {
	var buf bytes.Buffer
	outcome := session.Outcome{
		Response: &model.AnalysisResponse{
			MissingElements: []string{"উপসংহার"},
			GeneralFeedback: "ভালো লেখা",
		},
		Errors: []model.SpellError{{
			IncorrectWord: "চাকুরিজিবি",
			Suggestions:   []string{"চাকরিজীবী"},
			Context:       "আমি চাকুরিজিবি হতে চাই",
			Kind:          model.KindSpelling,
			Confidence:    0.9,
			Source:        model.SourceAI,
		}},
	}
	if err := writeCheckReport(&buf, "doc.txt", session.StatusDone, outcome); err != nil {
		t.Fatalf("write report: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"doc.txt: analysis complete", "1. চাকুরিজিবি → চাকরিজীবী  (spelling, 90%)", "- উপসংহার", "ভালো লেখা"} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestParseDurationFlag(t *testing.T) {
	if d, err := parseDurationFlag("timeout", "30s"); err != nil || d.Seconds() != 30 {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := parseDurationFlag("timeout", "-1s"); err == nil {
		t.Fatalf("expected error for negative duration")
	}
	if _, err := parseDurationFlag("timeout", "soon"); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
