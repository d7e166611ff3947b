// Package quiz generates and marks chapter quizzes through a hosted
// language model, reshaping its output into validated JSON arrays.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey     = errors.New("server configuration error: API key missing or invalid")
	ErrInvalidRequest    = errors.New("invalid or missing prompt data in request body")
	ErrMalformedResponse = errors.New("failed to process AI response")
	ErrUnknownChapter    = errors.New("unknown chapter")
)

// UpstreamError is a non-2xx answer from the model API. Details holds the
// decoded error body when it was JSON, otherwise the raw text.
type UpstreamError struct {
	Status  int
	Details any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Gemini API Error: %d", e.Status)
}

// Question is one generated quiz question.
type Question struct {
	Question        string `json:"question"`
	AnswerGuideline string `json:"answer_guideline"`
}

// Answer is a student answer submitted for marking.
type Answer struct {
	QuestionNumber  int    `json:"question_number"`
	Question        string `json:"question"`
	AnswerGuideline string `json:"answer_guideline"`
	StudentAnswer   string `json:"student_answer"`
}

// Feedback is the examiner verdict for one answer.
type Feedback struct {
	QuestionNumber int    `json:"question_number"`
	Feedback       string `json:"feedback"`
	Mark           string `json:"mark"`
}

const ActionMarkQuiz = "mark_quiz"

// Request is the body accepted by the proxy: either {prompt} for generation
// or {action: "mark_quiz", payload} for marking.
type Request struct {
	Prompt  string          `json:"prompt,omitempty"`
	Chapter string          `json:"chapter,omitempty"`
	Action  string          `json:"action,omitempty"`
	Payload *MarkingPayload `json:"payload,omitempty"`
}

// MarkingPayload carries the answers to mark.
type MarkingPayload struct {
	ChapterContext ChapterRef `json:"chapterContext"`
	Answers        []Answer   `json:"answers"`
}

// ChapterRef accepts a chapter given as either a JSON string or number.
type ChapterRef string

func (c *ChapterRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ChapterRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chapterContext must be a string or number")
	}
	*c = ChapterRef(n.String())
	return nil
}

// IsMarking reports whether the request asks for marking.
func (r Request) IsMarking() bool {
	return r.Action == ActionMarkQuiz && r.Payload != nil
}

// validateQuestions checks every item has string question and answer_guideline.
func validateQuestions(items []map[string]any) error {
	for i, item := range items {
		if _, ok := item["question"].(string); !ok {
			return fmt.Errorf("%w: item %d has missing/invalid question", ErrMalformedResponse, i)
		}
		if _, ok := item["answer_guideline"].(string); !ok {
			return fmt.Errorf("%w: item %d has missing/invalid answer_guideline", ErrMalformedResponse, i)
		}
	}
	return nil
}

// validateFeedback checks the marking shape; want < 0 skips the length check.
func validateFeedback(items []map[string]any, want int) error {
	if want >= 0 && len(items) != want {
		return fmt.Errorf("%w: expected %d feedback items, got %d", ErrMalformedResponse, want, len(items))
	}
	for i, item := range items {
		if _, ok := item["question_number"].(float64); !ok {
			return fmt.Errorf("%w: item %d has missing/invalid question_number", ErrMalformedResponse, i)
		}
		if _, ok := item["feedback"].(string); !ok {
			return fmt.Errorf("%w: item %d has missing/invalid feedback", ErrMalformedResponse, i)
		}
		if _, ok := item["mark"].(string); !ok {
			return fmt.Errorf("%w: item %d has missing/invalid mark", ErrMalformedResponse, i)
		}
	}
	return nil
}

// decodeArray requires raw to be a JSON array of objects.
func decodeArray(raw json.RawMessage) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: AI processing resulted in an unexpected format (expected array)", ErrMalformedResponse)
	}
	return items, nil
}

// ParseQuestions decodes and validates a generation result.
func ParseQuestions(raw json.RawMessage) ([]Question, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	if err := validateQuestions(items); err != nil {
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return qs, nil
}

// ParseFeedback decodes and validates a marking result for n answers.
func ParseFeedback(raw json.RawMessage, n int) ([]Feedback, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	if err := validateFeedback(items, n); err != nil {
		return nil, err
	}
	var fb []Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return fb, nil
}

// MarkClass maps a mark onto the CSS class used by the feedback panel.
func MarkClass(mark string) string {
	switch mark {
	case "Correct":
		return "success"
	case "Partially Correct":
		return "warning"
	default:
		return "error"
	}
}
