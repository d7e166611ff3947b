package quiz

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

//go:embed prompts/chapter*.txt
var chapterPrompts embed.FS

//go:embed prompts/marking.tmpl
var markingSource string

var markingTemplate = template.Must(template.New("marking").Parse(markingSource))

// ChapterPrompt returns the question generation prompt for a chapter ("1".."5").
func ChapterPrompt(chapter string) (string, error) {
	chapter = strings.TrimSpace(chapter)
	if chapter == "" || strings.ContainsAny(chapter, "./\\") {
		return "", fmt.Errorf("%w: %q", ErrUnknownChapter, chapter)
	}
	data, err := chapterPrompts.ReadFile("prompts/chapter" + chapter + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownChapter, chapter)
	}
	return string(data), nil
}

// Chapters lists the chapters that have a prompt, in order.
func Chapters() []string {
	entries, err := chapterPrompts.ReadDir("prompts")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "chapter") && strings.HasSuffix(name, ".txt") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(name, "chapter"), ".txt"))
		}
	}
	sort.Strings(out)
	return out
}

// MarkingPrompt builds the examiner prompt for a set of student answers.
func MarkingPrompt(chapter string, answers []Answer) (string, error) {
	answersJSON, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode answers: %w", err)
	}
	var buf bytes.Buffer
	err = markingTemplate.Execute(&buf, struct {
		Chapter     string
		AnswersJSON string
	}{chapter, string(answersJSON)})
	if err != nil {
		return "", fmt.Errorf("failed to render marking prompt: %w", err)
	}
	return buf.String(), nil
}
