package sentencegen

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// KeywordLeakValidator rejects exercises whose example sentences already
// contain a key word, which would let the learner copy the answer. Only
// whole words count, so "Rad" does not match "gerade".
type KeywordLeakValidator struct{}

func (v *KeywordLeakValidator) Name() string { return "keyword-leak" }

func (v *KeywordLeakValidator) Validate(ex *Exercise) *ValidationError {
	for _, kw := range ex.KeyWords {
		core := words(keywordCore(kw))
		if len(core) == 0 {
			continue
		}
		for i, s := range ex.ExampleSentences {
			if containsRun(words(s), core) {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("example sentence %d uses key word %q", i+1, kw),
				}
			}
		}
	}
	return nil
}

var leadingWords = map[string]bool{
	"der": true, "die": true, "das": true, "sich": true,
}

// keywordCore lowercases a key word and drops a leading article or
// reflexive pronoun, so "die Gelassenheit" matches "Gelassenheit".
func keywordCore(kw string) string {
	fields := strings.Fields(strings.ToLower(kw))
	if len(fields) > 1 && leadingWords[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// words lowercases s and splits it on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsRun reports whether run appears as consecutive tokens in tokens.
func containsRun(tokens, run []string) bool {
	for i := 0; i+len(run) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(run)], run) {
			return true
		}
	}
	return false
}
