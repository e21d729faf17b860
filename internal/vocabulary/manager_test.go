package vocabulary

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/kobot/internal/logger"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab_data.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const dictCorpus = `{
  "먹다": {"translation": "to eat", "frequency_rank": 2, "topik_level": "1"},
  "가다": {"translation": "to go", "frequency_rank": 1, "topik_level": "1"},
  "정치": {"translation": "politics", "frequency_rank": 3, "topik_level": "3"},
  "보다": {"translation": "to see", "tags": "Beginner"}
}`

func TestNewWordCandidatesOrderAndFilter(t *testing.T) {
	m, err := NewManager(writeCorpus(t, dictCorpus), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	got := m.NewWordCandidates("beginner", nil, 10)
	// 정치 is TOPIK 3, excluded for beginners; 보다 has no rank and sorts last.
	want := []string{"가다", "먹다", "보다"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestNewWordCandidatesExcludesKnown(t *testing.T) {
	m, err := NewManager(writeCorpus(t, dictCorpus), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	known := map[string]bool{"가다": true}
	got := m.NewWordCandidates("beginner", known, 1)
	if !reflect.DeepEqual(got, []string{"먹다"}) {
		t.Errorf("candidates = %v, want [먹다]", got)
	}
}

func TestLegacyArrayConversion(t *testing.T) {
	legacy := `[
  {"vocab": "먹다", "translation": "to eat", "frequency_rank": 2, "topik_level": "1"},
  {"vocab": "가다", "translation": "to go", "frequency_rank": 1, "topik_level": "1"},
  {"translation": "entry without a word"}
]`
	m, err := NewManager(writeCorpus(t, legacy), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("converted corpus has %d words, want 2", m.Len())
	}
	if e, ok := m.WordData("먹다"); !ok || e.Translation != "to eat" {
		t.Errorf("WordData(먹다) = %+v, %v", e, ok)
	}
}

func TestMissingCorpusYieldsEmptyManager(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "nope.json"), logger.NewNop())
	if err != nil {
		t.Fatalf("missing corpus must not error, got %v", err)
	}
	if got := m.NewWordCandidates("beginner", nil, 5); len(got) != 0 {
		t.Errorf("empty corpus produced candidates: %v", got)
	}
}

func TestImportFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "words.csv")
	csvData := "word,translation,rank,level,tags\n오다,to come,4,1,\n사다,to buy,5,1,\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(filepath.Join(dir, "vocab_data.json"), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultImportConfig()
	cfg.FilePath = csvPath
	result, err := m.Import(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 || result.TotalProcessed != 2 {
		t.Errorf("result = %+v, want 2 created of 2 processed", result)
	}
	if e, ok := m.WordData("오다"); !ok || e.FrequencyRank != 4 {
		t.Errorf("imported entry = %+v, %v", e, ok)
	}

	// The corpus file is written; a fresh manager sees the imported words.
	m2, err := NewManager(filepath.Join(dir, "vocab_data.json"), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if m2.Len() != 2 {
		t.Errorf("reloaded corpus has %d words, want 2", m2.Len())
	}
}
