package sentencegen

import (
	"fmt"
	"strings"
)

// StructuralValidator checks that every field the learner relies on is
// present and within the expected counts.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(ex *Exercise) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	if strings.TrimSpace(ex.Topic) == "" {
		return fail("topic is empty")
	}
	if strings.TrimSpace(ex.Instructions) == "" {
		return fail("instructions are empty")
	}
	if strings.TrimSpace(ex.Context) == "" {
		return fail("context is empty")
	}
	if n := len(ex.KeyWords); n < 1 || n > 2 {
		return fail(fmt.Sprintf("expected 1-2 key words, got %d", n))
	}
	for i, kw := range ex.KeyWords {
		if strings.TrimSpace(kw) == "" {
			return fail(fmt.Sprintf("key word %d is empty", i+1))
		}
	}
	if n := len(ex.ExampleSentences); n != 2 {
		return fail(fmt.Sprintf("expected 2 example sentences, got %d", n))
	}
	for i, s := range ex.ExampleSentences {
		if strings.TrimSpace(s) == "" {
			return fail(fmt.Sprintf("example sentence %d is empty", i+1))
		}
	}
	return nil
}
