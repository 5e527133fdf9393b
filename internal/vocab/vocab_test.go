package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSample_CapsAtListSize(t *testing.T) {
	src := NewStaticSource([]Word{{German: "a"}, {German: "b"}, {German: "c"}})

	got := src.Sample(5)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, w := range got {
		if seen[w.German] {
			t.Fatalf("duplicate entry %q", w.German)
		}
		seen[w.German] = true
	}
}

func TestSample_Subset(t *testing.T) {
	src := NewSource("", nil)
	if src.Len() == 0 {
		t.Fatal("embedded list should not be empty")
	}
	got := src.Sample(10)
	if len(got) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, w := range got {
		if seen[w.German] {
			t.Fatalf("duplicate entry %q", w.German)
		}
		seen[w.German] = true
	}
}

func TestSample_ZeroAndNegative(t *testing.T) {
	src := NewStaticSource([]Word{{German: "a"}})
	if got := src.Sample(0); len(got) != 0 {
		t.Fatalf("expected empty sample, got %v", got)
	}
	if got := src.Sample(-1); len(got) != 0 {
		t.Fatalf("expected empty sample, got %v", got)
	}
}

func TestSource_MissingFileYieldsEmpty(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if got := src.Sample(3); len(got) != 0 {
		t.Fatalf("expected empty sample, got %v", got)
	}
	if src.Len() != 0 {
		t.Fatalf("expected empty list, got %d", src.Len())
	}
}

func TestSource_LoadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	csv := "german,english,german_sentence,cloze_sentence\nder Hund,dog,Der Hund bellt.,Der ___ bellt.\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewSource(path, nil)
	if src.Len() != 1 {
		t.Fatalf("expected 1 word, got %d", src.Len())
	}

	// Later changes to the file are not picked up.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if got := src.Sample(1); len(got) != 1 || got[0].English != "dog" {
		t.Fatalf("expected cached entry, got %v", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "reordered columns",
			input: "english,german,cloze_sentence,german_sentence\ncat,die Katze,Die ___ schläft.,Die Katze schläft.\n",
			want:  1,
		},
		{
			name:  "blank german skipped",
			input: "german,english,german_sentence,cloze_sentence\n,x,y,z\nder Baum,tree,,\n",
			want:  1,
		},
		{
			name:  "short row",
			input: "german,english,german_sentence,cloze_sentence\ndas Haus,house\n",
			want:  1,
		},
		{
			name:  "repeated word kept once",
			input: "german,english,german_sentence,cloze_sentence\nder Baum,tree,,\ndas Haus,house,,\nDer Baum,tree (again),,\n",
			want:  2,
		},
		{
			name:  "empty input",
			input: "",
			want:  0,
		},
		{
			name:    "missing column",
			input:   "german,english\nder Baum,tree\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := Parse(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(words) != tt.want {
				t.Fatalf("Parse() = %d words, want %d", len(words), tt.want)
			}
		})
	}
}

func TestParse_Fields(t *testing.T) {
	words, err := Parse(strings.NewReader("english,german,cloze_sentence,german_sentence\ncat,die Katze,Die ___ schläft.,Die Katze schläft.\n"))
	if err != nil {
		t.Fatal(err)
	}
	w := words[0]
	if w.German != "die Katze" || w.English != "cat" || w.GermanSentence != "Die Katze schläft." || w.ClozeSentence != "Die ___ schläft." {
		t.Fatalf("unexpected word: %+v", w)
	}
}

func TestSample_DistinctWithRepeatedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.csv")
	csv := "german,english,german_sentence,cloze_sentence\n" +
		"der Baum,tree,,\nder Baum,tree,,\nder Baum,tree,,\ndas Haus,house,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewSource(path, nil)
	if src.Len() != 2 {
		t.Fatalf("expected 2 distinct words, got %d", src.Len())
	}
	got := src.Sample(5)
	if len(got) != 2 || got[0].German == got[1].German {
		t.Fatalf("expected two distinct entries, got %+v", got)
	}

	first, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if first[0].English != "tree" {
		t.Fatalf("expected first occurrence kept, got %+v", first[0])
	}
}

func TestNewStaticSource_Dedupes(t *testing.T) {
	src := NewStaticSource([]Word{{German: "a"}, {German: "A"}, {German: "b"}})
	if src.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", src.Len())
	}
}
