package sentencegen

import (
	"fmt"
	"strings"

	"github.com/abhisek/satzbau/internal/vocab"
)

const exerciseSystemPrompt = `You are a German teacher writing sentence-writing exercises for adult learners.

Rules:
- Write one exercise for the given CEFR level that practises the given grammar area.
- Pick a concrete everyday topic.
- Choose 1 or 2 key words related to the topic. Prefer less common words; avoid very frequent ones such as "essen" or "Frühstück" unless they are essential.
- The key words must differ from the exact forms of any inspiration words you are shown.
- Instructions tell the learner, in English, what sentence to write and that it must use the key words.
- Context describes a short situation the sentence belongs to.
- Give exactly two example sentences on the topic. They must not contain the key words in any form the learner could copy.
- Copy the grammar area and the level exactly as given into problemArea and proficiencyLevel.`

const gradingSystemPrompt = `You are a German teacher grading one sentence written by a learner.

Rules:
- Be lenient about the topic: the sentence does not have to match the exercise topic, category or key words closely.
- Be strict about core grammar. Any error in article gender, adjective endings, subject-verb agreement or case usage makes the sentence incorrect (isCorrect = false).
- Score the sentence from 0.0 to 1.0.
- Feedback is one or two short sentences addressed to the learner.
- Review explains what, if anything, is wrong and how to fix it, in a constructive tone. If nothing is wrong, say what was done well.
- Add a grammar note for each rule the learner should revisit. Leave the list empty if the sentence is correct.`

const followupSystemPrompt = `You are a patient German teacher answering a learner's question about feedback they received on a sentence.

Rules:
- Answer the question directly and precisely.
- Refer to the learner's sentence and the feedback where it helps.
- Use short German examples with English explanations.
- Keep the answer under 200 words. Plain text, no JSON.`

// buildExerciseMessage constructs the user message for exercise generation.
func buildExerciseMessage(profile LearnerProfile, focus string, inspiration []vocab.Word) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Level: %s\n", profile.ProficiencyLevel)
	fmt.Fprintf(&b, "Grammar area: %s\n", focus)

	if len(inspiration) > 0 {
		b.WriteString("\nOptional inspiration words (you do not have to use them):\n")
		for _, w := range inspiration {
			if w.English != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", w.German, w.English)
			} else {
				fmt.Fprintf(&b, "- %s\n", w.German)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// buildGradingMessage constructs the user message for grading.
func buildGradingMessage(ex Exercise, answer string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Level: %s\n", ex.ProficiencyLevel)
	fmt.Fprintf(&b, "Grammar area: %s\n", ex.ProblemArea)
	fmt.Fprintf(&b, "Topic: %s\n", ex.Topic)
	fmt.Fprintf(&b, "Key words: %s\n", strings.Join(ex.KeyWords, ", "))
	fmt.Fprintf(&b, "Instructions: %s\n", ex.Instructions)
	fmt.Fprintf(&b, "\nLearner's sentence:\n%s", answer)

	return b.String()
}

// buildFollowupMessage constructs the user message for a follow-up question.
func buildFollowupMessage(ex Exercise, answer string, feedback GradingResult, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Exercise topic: %s\n", ex.Topic)
	fmt.Fprintf(&b, "Grammar area: %s\n", ex.ProblemArea)
	fmt.Fprintf(&b, "Level: %s\n", ex.ProficiencyLevel)
	fmt.Fprintf(&b, "\nLearner's sentence:\n%s\n", answer)
	fmt.Fprintf(&b, "\nFeedback they received:\n%s\n", feedback.Summary())
	fmt.Fprintf(&b, "\nTheir question:\n%s", question)

	return b.String()
}
