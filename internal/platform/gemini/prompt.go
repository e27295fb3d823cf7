package gemini

// defaultPromptTemplate is the built-in content generation prompt. It can
// be overridden with LLMConfig.PromptTemplatePath.
const defaultPromptTemplate = `You are an expert tutor preparing a self-contained study unit.

Subtopic: {{.SubtopicName}}
{{- if .SubtopicDescription}}
Description: {{.SubtopicDescription}}
{{- end}}
Target study time: {{.ExpectedTimeMinutes}} minutes.

Produce a JSON object with exactly these fields:
- "article": a clear explanatory article a motivated learner can read in
  roughly a third of the target study time, written in plain prose.
- "flashcards": 6 to 12 flashcards, each an object with "front", "back"
  and optionally "hint" and "tags". Fronts are questions or terms, backs
  are concise answers.
- "quiz": 4 to 8 multiple-choice questions, each an object with "prompt",
  "options" (3 to 5 strings), "answer_index" (0-based index of the correct
  option) and optionally "explanation".

Cover the subtopic thoroughly but do not stray beyond it. Respond with the
JSON object only.`
