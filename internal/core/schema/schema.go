// Package schema parses and validates the JSON produced by the question agents.
//
// Model output must be exactly one JSON value. It is checked against a
// closed shape: unknown keys are rejected and every question key must be
// present, with nullable keys given as null. The question_type field selects
// between the mcq and open variants. Validation errors carry the path of the
// offending value so they can be quoted back to the model verbatim.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// Minimum lengths, in characters after trimming.
const (
	MinQuestionText         = 5
	MinGeneratedExplanation = 30
	MinRefinedExplanation   = 20
)

// questionKeys are the required keys of every question object.
var questionKeys = []string{
	"question_type",
	"question_text",
	"options",
	"correct_answer",
	"explanation",
	"tags",
	"confidence_score",
}

// Rules parameterise validation for one agent.
type Rules struct {
	// MinQuestionText is the minimum length of question_text.
	MinQuestionText int

	// MinExplanation is the minimum length of explanation.
	MinExplanation int

	// ExpectedCount, when positive, is the exact number of questions required.
	ExpectedCount int

	// QuestionType, when set, is the question_type every question must have.
	QuestionType domain.QuestionType
}

// DocumentRules returns the rules for questions generated from study text.
func DocumentRules(count int, questionType domain.QuestionType) Rules {
	return Rules{
		MinQuestionText: MinQuestionText,
		MinExplanation:  MinGeneratedExplanation,
		ExpectedCount:   count,
		QuestionType:    questionType,
	}
}

// SimilarRules returns the rules for questions cloned from a seed image.
// The question type is left to the model.
func SimilarRules(count int) Rules {
	return Rules{
		MinQuestionText: MinQuestionText,
		MinExplanation:  MinGeneratedExplanation,
		ExpectedCount:   count,
	}
}

// RefinementRules returns the rules for a single edited question.
func RefinementRules() Rules {
	return Rules{
		MinQuestionText: MinQuestionText,
		MinExplanation:  MinRefinedExplanation,
	}
}

// ParseQuestions validates raw against {"questions": [question, ...]}.
func ParseQuestions(raw string, rules Rules) ([]domain.QuestionContent, error) {
	obj, err := decodeEnvelope(raw, "questions")
	if err != nil {
		return nil, err
	}

	items, ok := obj["questions"].([]any)
	if !ok {
		return nil, invalid("questions", "must be an array")
	}
	if len(items) == 0 {
		return nil, invalid("questions", "must contain at least 1 item")
	}
	if rules.ExpectedCount > 0 && len(items) != rules.ExpectedCount {
		return nil, invalid("questions", fmt.Sprintf("must contain exactly %d items, got %d", rules.ExpectedCount, len(items)))
	}

	out := make([]domain.QuestionContent, 0, len(items))
	for i, item := range items {
		q, err := parseQuestion(fmt.Sprintf("questions[%d]", i), item, rules)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// ParseQuestion validates raw against {"question": question}.
func ParseQuestion(raw string, rules Rules) (domain.QuestionContent, error) {
	obj, err := decodeEnvelope(raw, "question")
	if err != nil {
		return domain.QuestionContent{}, err
	}
	return parseQuestion("question", obj["question"], rules)
}

// decode parses raw as exactly one JSON value.
func decode(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.ParseError{Err: errors.New("empty output")}
		}
		return nil, &domain.ParseError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &domain.ParseError{Err: errors.New("unexpected data after top-level value")}
	}
	return v, nil
}

// decodeEnvelope parses raw and checks it is an object with exactly the given key.
func decodeEnvelope(raw, key string) (map[string]any, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("", "top-level value must be an object")
	}
	if err := closedKeys("", obj, []string{key}); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseQuestion(path string, v any, rules Rules) (domain.QuestionContent, error) {
	var q domain.QuestionContent

	obj, ok := v.(map[string]any)
	if !ok {
		return q, invalid(path, "must be an object")
	}
	if err := closedKeys(path, obj, questionKeys); err != nil {
		return q, err
	}

	qt, ok := obj["question_type"].(string)
	if !ok || !domain.QuestionType(qt).IsValid() {
		return q, invalid(path+".question_type", `must be one of "mcq", "open"`)
	}
	q.QuestionType = domain.QuestionType(qt)
	if rules.QuestionType != "" && q.QuestionType != rules.QuestionType {
		return q, invalid(path+".question_type", fmt.Sprintf("must be %q", rules.QuestionType))
	}

	if q.QuestionText, ok = minString(obj["question_text"], rules.MinQuestionText); !ok {
		return q, invalid(path+".question_text", fmt.Sprintf("must be a string of at least %d characters", rules.MinQuestionText))
	}

	answer, isString := obj["correct_answer"].(string)

	switch q.QuestionType {
	case domain.QuestionMCQ:
		opts, err := parseOptions(path+".options", obj["options"])
		if err != nil {
			return q, err
		}
		q.Options = opts
		if !isString || !domain.IsOptionKey(answer) {
			return q, invalid(path+".correct_answer", `must be one of "A", "B", "C", "D"`)
		}
	case domain.QuestionOpen:
		if obj["options"] != nil {
			return q, invalid(path+".options", "must be null for open questions")
		}
		if !isString || strings.TrimSpace(answer) == "" {
			return q, invalid(path+".correct_answer", "must be a non-empty string")
		}
	}
	q.CorrectAnswer = answer

	if q.Explanation, ok = minString(obj["explanation"], rules.MinExplanation); !ok {
		return q, invalid(path+".explanation", fmt.Sprintf("must be a string of at least %d characters", rules.MinExplanation))
	}

	switch tags := obj["tags"].(type) {
	case nil:
	case map[string]any:
		q.Tags = normaliseNumbers(tags).(map[string]any)
	default:
		return q, invalid(path+".tags", "must be an object or null")
	}

	switch score := obj["confidence_score"].(type) {
	case nil:
	case json.Number:
		f, err := score.Float64()
		if err != nil || f < 0 || f > 1 {
			return q, invalid(path+".confidence_score", "must be a number between 0 and 1")
		}
		q.ConfidenceScore = &f
	default:
		return q, invalid(path+".confidence_score", "must be a number or null")
	}

	return q, nil
}

func parseOptions(path string, v any) (map[string]string, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(path, "must be an object with keys A, B, C, D for mcq questions")
	}
	if err := closedKeys(path, obj, domain.OptionKeys); err != nil {
		return nil, err
	}

	opts := make(map[string]string, len(domain.OptionKeys))
	for _, key := range domain.OptionKeys {
		s, ok := minString(obj[key], 1)
		if !ok {
			return nil, invalid(path+"."+key, "must be a non-empty string")
		}
		opts[key] = s
	}
	return opts, nil
}

// closedKeys rejects unknown keys first, then missing required keys.
// Keys are reported in sorted order so errors are stable.
func closedKeys(path string, obj map[string]any, required []string) error {
	allowed := make(map[string]bool, len(required))
	for _, k := range required {
		allowed[k] = true
	}

	var unknown []string
	for k := range obj {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return invalid(join(path, unknown[0]), "unknown property")
	}

	for _, k := range required {
		if _, ok := obj[k]; !ok {
			return invalid(join(path, k), "required property is missing")
		}
	}
	return nil
}

// minString returns v unchanged when it is a string of at least n
// characters, not counting surrounding whitespace.
func minString(v any, n int) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// normaliseNumbers converts json.Number values to float64 so tags round-trip
// like ordinary decoded JSON.
func normaliseNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, x := range t {
			t[k] = normaliseNumbers(x)
		}
		return t
	case []any:
		for i, x := range t {
			t[i] = normaliseNumbers(x)
		}
		return t
	default:
		return v
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func invalid(path, constraint string) *domain.SchemaValidationError {
	return &domain.SchemaValidationError{Path: path, Constraint: constraint}
}

// Marshal renders a question as the compact JSON object the agents expect
// to receive back, with every key present.
func Marshal(q domain.QuestionContent) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(q); err != nil {
		return "", fmt.Errorf("marshal question: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
