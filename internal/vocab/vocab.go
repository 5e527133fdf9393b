// Package vocab supplies random vocabulary entries used as optional
// inspiration when generating exercises.
package vocab

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/abhisek/satzbau/internal/logging"
)

//go:embed words.csv
var defaultWords []byte

// Word is one row of the vocabulary list.
type Word struct {
	German         string `json:"german"`
	English        string `json:"english"`
	GermanSentence string `json:"germanSentence"`
	ClozeSentence  string `json:"clozeSentence"`
}

// Source loads the word list on first use and caches it for the lifetime
// of the process. A failed load yields an empty list and is never retried.
type Source struct {
	load   func() ([]byte, error)
	logger *slog.Logger

	once  sync.Once
	words []Word
}

// NewSource returns a Source reading the CSV at path, or the embedded
// list when path is empty.
func NewSource(path string, logger *slog.Logger) *Source {
	logger = logging.OrDefault(logger)
	load := func() ([]byte, error) { return defaultWords, nil }
	if path != "" {
		load = func() ([]byte, error) { return os.ReadFile(path) }
	}
	return &Source{load: load, logger: logger}
}

// NewStaticSource returns a Source over a fixed list. Repeated entries are
// dropped.
func NewStaticSource(words []Word) *Source {
	s := &Source{logger: slog.Default(), words: dedupe(words)}
	s.once.Do(func() {})
	return s
}

// Sample returns min(n, len(list)) distinct entries in random order.
// Each call is an independent draw.
func (s *Source) Sample(n int) []Word {
	s.once.Do(s.init)

	if n <= 0 || len(s.words) == 0 {
		return nil
	}
	if n > len(s.words) {
		n = len(s.words)
	}

	out := make([]Word, 0, n)
	for _, i := range rand.Perm(len(s.words))[:n] {
		out = append(out, s.words[i])
	}
	return out
}

// Len reports the number of loaded entries.
func (s *Source) Len() int {
	s.once.Do(s.init)
	return len(s.words)
}

func (s *Source) init() {
	data, err := s.load()
	if err != nil {
		s.logger.Error("vocabulary load failed", "error", err)
		return
	}
	words, err := Parse(bytes.NewReader(data))
	if err != nil {
		s.logger.Error("vocabulary parse failed", "error", err)
		return
	}
	s.words = words
	s.logger.Debug("vocabulary loaded", "words", len(words))
}

var columns = []string{"german", "english", "german_sentence", "cloze_sentence"}

// Parse reads a CSV word list with a header row naming the columns
// german, english, german_sentence and cloze_sentence in any order.
// Rows without a german entry are skipped, as are rows repeating an
// earlier german entry (compared case-insensitively).
func Parse(r io.Reader) ([]Word, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	field := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var words []Word
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		w := Word{
			German:         field(rec, "german"),
			English:        field(rec, "english"),
			GermanSentence: field(rec, "german_sentence"),
			ClozeSentence:  field(rec, "cloze_sentence"),
		}
		if w.German == "" {
			continue
		}
		words = append(words, w)
	}
	return dedupe(words), nil
}

// dedupe keeps the first entry for each german word.
func dedupe(words []Word) []Word {
	seen := make(map[string]bool, len(words))
	out := words[:0:0]
	for _, w := range words {
		key := strings.ToLower(strings.TrimSpace(w.German))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
