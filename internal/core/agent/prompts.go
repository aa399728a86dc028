package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Prompts renders agent prompt templates loaded from a PromptStore.
// Missing or unreadable prompts fall back to the embedded defaults.
type Prompts struct {
	store driven.PromptStore
}

// NewPrompts creates a renderer over store. A nil store uses the defaults.
func NewPrompts(store driven.PromptStore) *Prompts {
	return &Prompts{store: store}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *Prompts) SetPromptStore(store driven.PromptStore) {
	p.store = store
}

// Render executes the named template with data.
func (p *Prompts) Render(name string, data any) (string, error) {
	text := p.load(name)
	if text == "" {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (p *Prompts) load(name string) string {
	if p != nil && p.store != nil {
		if text, err := p.store.Load(name); err == nil && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return defaultPrompts[name]
}

var _ driven.PromptStoreAware = (*Prompts)(nil)

// DefaultPrompts returns a copy of the embedded prompt templates keyed by name.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

var defaultPrompts = map[string]string{
	driven.PromptDocumentSystem: defaultDocumentSystem,
	driven.PromptDocumentUser:   defaultDocumentUser,
	driven.PromptSimilarSystem:  defaultSimilarSystem,
	driven.PromptSimilarUser:    defaultSimilarUser,
	driven.PromptRefineSystem:   defaultRefineSystem,
	driven.PromptRefineUser:     defaultRefineUser,
}

const generationOutputRules = `CRITICAL OUTPUT RULES:
- Output MUST be valid JSON only. No markdown. No code fences. No commentary.
- Output MUST conform to the required JSON shape exactly.
- Do NOT include any keys beyond those specified.
- Every question MUST include a detailed step-by-step explanation/solution.`

const questionsShape = `OUTPUT JSON SHAPE (STRICT):
{
  "questions": [
    {
      "question_type": "mcq" | "open",
      "question_text": "string",
      "options":
        - if question_type == "mcq": {"A":"string","B":"string","C":"string","D":"string"}
        - if question_type == "open": null
      "correct_answer":
        - if question_type == "mcq": one of "A","B","C","D"
        - if question_type == "open": a concise correct response (string)
      "explanation": "string (detailed, step-by-step)",
      "tags": object OR null,
      "confidence_score": number(0..1) OR null
    }
  ]
}`

const defaultDocumentSystem = `You are an educational content generator for teachers.

` + generationOutputRules + `

QUALITY RULES:
- Use ONLY the provided STUDY TEXT as source.
- Avoid references to "the text says..."; write naturally.
- Ensure the correct answer is actually correct based on the STUDY TEXT.
- Explanations must justify why the answer is correct (and for MCQ, why distractors are wrong).`

const defaultDocumentUser = `TASK:
Generate exactly {{.Count}} questions from the STUDY TEXT.

PARAMETERS:
- question_type: {{.QuestionType}}  (mcq OR open-ended)

` + questionsShape + `

ADDITIONAL CONSTRAINTS:
- Every question MUST have question_type "{{.QuestionType}}".
- If question_type is "mcq":
  - options MUST be an object with exactly 4 keys: A, B, C, D
  - correct_answer MUST be exactly one of: "A","B","C","D"
  - Include plausible distractors (wrong choices) based on common misconceptions from the text.
- If question_type is "open":
  - options MUST be null
  - correct_answer MUST be a short text answer (not a paragraph)
- explanation MUST be detailed and step-by-step for BOTH types.

STUDY TEXT:
{{.StudyText}}`

const defaultSimilarSystem = `You are an educational content generator for teachers.

` + generationOutputRules + `
- You will be given an IMAGE of a question.
- Generate similar questions by cloning the style, topic, and logic.
- Target difficulty: {{.Difficulty}}

QUALITY RULES:
- Avoid references to "the image says..."; write naturally.
- Questions must match the requested difficulty.
- Ensure the correct answer is actually correct.
- Explanations must justify why the answer is correct (and for MCQ, why distractors are wrong).`

const defaultSimilarUser = `TASK:
Generate exactly {{.Count}} questions.
Use the image as the source question.
Use this instruction: {{.Instruction}}

` + questionsShape

const defaultRefineSystem = `You are a Canvas Editor.
You edit an EXISTING educational question based on a teacher's instruction.
You MUST return ONLY valid JSON (no markdown, no commentary).
You MUST preserve correctness and internal consistency.
Never add extra keys outside the required JSON shape.`

const defaultRefineUser = `INSTRUCTION:
{{.Instruction}}

CURRENT QUESTION (the only source of truth, JSON):
{{.Question}}

TASK:
Apply the instruction to produce an updated question.

OUTPUT FORMAT (STRICT JSON ONLY):
{
  "question": {
    "question_type": "mcq" | "open",
    "question_text": "string",
    "options": {"A":"string","B":"string","C":"string","D":"string"} OR null,
    "correct_answer": "A"|"B"|"C"|"D" (if mcq) OR "string" (if open),
    "explanation": "string",
    "tags": object OR null,
    "confidence_score": number(0..1) OR null
  }
}

RULES:
- Do NOT return markdown. Do NOT wrap JSON in code fences.
- Do NOT add any keys other than: question_type, question_text, options, correct_answer, explanation, tags, confidence_score.
- Keep question_type the same unless the instruction explicitly requests a change.
- If question_type == "mcq":
  - options MUST be an object with exactly A, B, C, D.
  - correct_answer MUST be one of A/B/C/D and MUST match the updated options.
- If question_type == "open":
  - options MUST be null.
  - correct_answer MUST be a short text answer.
- The explanation MUST be updated to match the edited question and justify why the correct answer is correct.
- Keep the topic and difficulty roughly consistent unless the instruction asks otherwise.`
