package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const questionsJSON = `[{"question":"State one property of a gas.","answer_guideline":"No fixed shape."}]`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", questionsJSON, questionsJSON},
		{"padded", "\n  " + questionsJSON + "\n", questionsJSON},
		{"fenced", "Here you go:\n```json\n" + questionsJSON + "\n```\nThanks", questionsJSON},
		{"trailing", "Sure! The quiz is\n" + questionsJSON, questionsJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if err != nil {
				t.Fatalf("ExtractJSON failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := ExtractJSON("no json here"); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestChapterPrompt(t *testing.T) {
	p, err := ChapterPrompt("3")
	if err != nil {
		t.Fatalf("ChapterPrompt failed: %v", err)
	}
	if !strings.Contains(p, "Stoichiometry (Chapter 3)") {
		t.Errorf("Expected stoichiometry prompt, got %q", p[:60])
	}
	for _, bad := range []string{"6", "", "../marking"} {
		if _, err := ChapterPrompt(bad); !errors.Is(err, ErrUnknownChapter) {
			t.Errorf("ChapterPrompt(%q): expected ErrUnknownChapter, got %v", bad, err)
		}
	}
	chapters := Chapters()
	if strings.Join(chapters, ",") != "1,2,3,4,5" {
		t.Errorf("Expected chapters 1..5, got %v", chapters)
	}
}

func TestMarkingPrompt(t *testing.T) {
	p, err := MarkingPrompt("5", []Answer{{QuestionNumber: 1, Question: "Define Ea", StudentAnswer: "minimum energy"}})
	if err != nil {
		t.Fatalf("MarkingPrompt failed: %v", err)
	}
	if !strings.Contains(p, "for Chapter 5)") {
		t.Error("Expected chapter context in prompt")
	}
	if !strings.Contains(p, `"student_answer": "minimum energy"`) {
		t.Error("Expected indented answers JSON in prompt")
	}
}

// fakeGenerator records the prompt and returns a canned document.
type fakeGenerator struct {
	prompt string
	result string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.result), nil
}

func TestProxy_Handle(t *testing.T) {
	gen := &fakeGenerator{result: questionsJSON}
	p := NewProxy(gen, "", nil)

	out, err := p.Handle(context.Background(), Request{Prompt: "make a quiz"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if gen.prompt != "make a quiz" {
		t.Errorf("Expected prompt to pass through, got %q", gen.prompt)
	}
	qs, err := ParseQuestions(out)
	if err != nil || len(qs) != 1 {
		t.Fatalf("Expected one question, got %v (%v)", qs, err)
	}

	if _, err := p.Handle(context.Background(), Request{Chapter: "1"}); err != nil {
		t.Errorf("Expected chapter request to succeed, got %v", err)
	}
	if !strings.Contains(gen.prompt, "States of Matter") {
		t.Error("Expected chapter 1 prompt to be used")
	}

	if _, err := p.Handle(context.Background(), Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func TestProxy_HandleMarking(t *testing.T) {
	gen := &fakeGenerator{result: `[{"question_number":1,"feedback":"Good.","mark":"Correct"}]`}
	p := NewProxy(gen, "", nil)
	req := Request{
		Action:  ActionMarkQuiz,
		Payload: &MarkingPayload{ChapterContext: "2", Answers: []Answer{{QuestionNumber: 1}}},
	}
	out, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	fb, err := ParseFeedback(out, 1)
	if err != nil || fb[0].Mark != "Correct" {
		t.Errorf("unexpected feedback %v (%v)", fb, err)
	}

	// wrong number of items
	req.Payload.Answers = append(req.Payload.Answers, Answer{QuestionNumber: 2})
	if _, err := p.Handle(context.Background(), req); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestProxy_HandleInvalidShapes(t *testing.T) {
	cases := map[string]string{
		"object":         `{"question":"x"}`,
		"null":           `null`,
		"missing fields": `[{"question":"x"}]`,
		"wrong type":     `[{"question":1,"answer_guideline":"y"}]`,
	}
	for name, doc := range cases {
		p := NewProxy(&fakeGenerator{result: doc}, "", nil)
		if _, err := p.Handle(context.Background(), Request{Prompt: "q"}); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%s: expected ErrMalformedResponse, got %v", name, err)
		}
	}
}

func TestProxy_ServeHTTP(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		p := NewProxy(&fakeGenerator{}, "https://example.org", nil)
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/functions/quiz-proxy", nil))
		if w.Code != http.StatusOK || w.Body.String() != "ok" {
			t.Errorf("Expected 200 ok, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
			t.Errorf("Expected allow-origin header, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
			t.Errorf("unexpected allow-headers %q", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		p := NewProxy(NewGeminiClient("", "", ""), "", nil)
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/quiz-proxy", strings.NewReader(`{"prompt":"x"}`)))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "API key missing or invalid") {
			t.Errorf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("bad request", func(t *testing.T) {
		p := NewProxy(&fakeGenerator{}, "", nil)
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/quiz-proxy", strings.NewReader(`{"foo":1}`)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		p := NewProxy(&fakeGenerator{err: &UpstreamError{Status: 429, Details: "quota"}}, "", nil)
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/quiz-proxy", strings.NewReader(`{"prompt":"x"}`)))
		if w.Code != 429 {
			t.Errorf("Expected 429, got %d", w.Code)
		}
		var body map[string]any
		json.NewDecoder(w.Body).Decode(&body)
		if body["error"] != "Gemini API Error: 429" || body["details"] != "quota" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		p := NewProxy(&fakeGenerator{result: `{"a":1}`}, "", nil)
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/quiz-proxy", strings.NewReader(`{"prompt":"x"}`)))
		if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "Failed to process AI response") {
			t.Errorf("Expected 500 with processing error, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestGeminiClient_Generate(t *testing.T) {
	var captured generateRequest
	var path, key string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)

		text, _ := json.Marshal("```json\n" + questionsJSON + "\n```")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(text) + `}]}}]}`))
	}))
	defer server.Close()

	c := NewGeminiClient("secret", "", server.URL)
	out, err := c.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if string(out) != questionsJSON {
		t.Errorf("Expected extracted questions, got %s", out)
	}
	if path != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("unexpected path %s", path)
	}
	if key != "secret" {
		t.Errorf("Expected key query parameter, got %q", key)
	}
	if captured.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("Expected prompt in contents, got %+v", captured.Contents)
	}
	if captured.GenerationConfig.Temperature != 0.6 || captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("unexpected generation config %+v", captured.GenerationConfig)
	}
	if len(captured.SafetySettings) != 4 || captured.SafetySettings[0].Threshold != "BLOCK_NONE" {
		t.Errorf("unexpected safety settings %+v", captured.SafetySettings)
	}
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	_, err := NewGeminiClient("k", "", server.URL).Generate(context.Background(), "x")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", upstream.Status)
	}
	if _, ok := upstream.Details.(map[string]any); !ok {
		t.Errorf("Expected decoded JSON details, got %T", upstream.Details)
	}
}

func TestGeminiClient_PartWithoutText(t *testing.T) {
	raw, err := firstPartJSON([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":1}]}}]}`))
	if err != nil {
		t.Fatalf("firstPartJSON failed: %v", err)
	}
	if string(raw) != `{"inlineData":1}` {
		t.Errorf("Expected part itself, got %s", raw)
	}
	if _, err := firstPartJSON([]byte(`{"candidates":[]}`)); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestChapterRef_Unmarshal(t *testing.T) {
	var p MarkingPayload
	if err := json.Unmarshal([]byte(`{"chapterContext":3,"answers":[]}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.ChapterContext != "3" {
		t.Errorf("Expected chapter 3, got %q", p.ChapterContext)
	}
}

func TestMarkClass(t *testing.T) {
	if MarkClass("Correct") != "success" || MarkClass("Partially Correct") != "warning" || MarkClass("Incorrect") != "error" {
		t.Error("unexpected mark classes")
	}
}
