package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/pathfinder/internal/model"
)

//go:embed templates/*.tmpl
var FS embed.FS

const maxInputRunes = 2000

// Exam size requested from the model.
const (
	MinExamQuestions = 10
	MaxExamQuestions = 15
)

var (
	userInputRegex          = regexp.MustCompile(`(?i)</?\s*user-input\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// Kind names a prompt template.
type Kind string

const (
	KindGuidance Kind = "guidance"
	KindChat     Kind = "chat"
	KindExam     Kind = "exam"
	KindFeedback Kind = "feedback"
	KindReport   Kind = "report"
)

var kinds = []Kind{KindGuidance, KindChat, KindExam, KindFeedback, KindReport}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Kind]*template.Template
)

// Load parses the prompt templates from fsys.
// It uses sync.Once to ensure templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		parsed := make(map[Kind]*template.Template, len(kinds))
		for _, k := range kinds {
			file := "templates/" + string(k) + ".tmpl"
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
				return
			}
			tmpl, err := template.New(string(k)).Parse(string(content))
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
				return
			}
			parsed[k] = tmpl
		}
		templates = parsed
	})
	return loadErr
}

// GuidanceData holds template data for the main guidance prompt.
type GuidanceData struct {
	Query string
}

// ChatData holds template data for dashboard chat prompts.
type ChatData struct {
	Profile   string
	Dashboard string
	Question  string
}

// ExamData holds template data for exam generation prompts.
type ExamData struct {
	LearningPath string
	MinQuestions int
	MaxQuestions int
}

// FeedbackData holds template data for exam feedback prompts.
type FeedbackData struct {
	LearningPath string
	Answers      string
}

// ReportData holds template data for progress report prompts.
type ReportData struct {
	Context string
}

// BuildGuidancePrompt builds the prompt that turns a profile query into a guidance package.
func BuildGuidancePrompt(query string) (string, error) {
	return execute(KindGuidance, GuidanceData{Query: sanitizeInput(query)})
}

// BuildChatPrompt builds a question about the dashboard the user is looking at.
func BuildChatPrompt(profile string, pkg model.GuidancePackage, question string) (string, error) {
	dashboard, err := toJSON(pkg)
	if err != nil {
		return "", fmt.Errorf("encode dashboard: %w", err)
	}
	return execute(KindChat, ChatData{
		Profile:   sanitizeInput(profile),
		Dashboard: dashboard,
		Question:  sanitizeInput(question),
	})
}

// BuildExamPrompt builds the diagnostic exam prompt for a learning path.
func BuildExamPrompt(path model.LearningPath) (string, error) {
	lp, err := toJSON(path)
	if err != nil {
		return "", fmt.Errorf("encode learning path: %w", err)
	}
	return execute(KindExam, ExamData{
		LearningPath: lp,
		MinQuestions: MinExamQuestions,
		MaxQuestions: MaxExamQuestions,
	})
}

// BuildFeedbackPrompt builds the prompt that aggregates scored answers into exam results.
func BuildFeedbackPrompt(path model.LearningPath, answers []model.UserExamAnswer) (string, error) {
	lp, err := toJSON(path)
	if err != nil {
		return "", fmt.Errorf("encode learning path: %w", err)
	}
	if answers == nil {
		answers = []model.UserExamAnswer{}
	}
	ans, err := toJSON(answers)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return execute(KindFeedback, FeedbackData{LearningPath: lp, Answers: ans})
}

// BuildReportPrompt builds the progress report prompt.
func BuildReportPrompt(rc model.ReportContext) (string, error) {
	rc.UserProfile = sanitizeInput(rc.UserProfile)
	ctx, err := toJSON(rc)
	if err != nil {
		return "", fmt.Errorf("encode report context: %w", err)
	}
	return execute(KindReport, ReportData{Context: ctx})
}

func execute(kind Kind, data any) (string, error) {
	if templates == nil {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := templates[kind]
	if !ok {
		return "", errors.New("unknown prompt kind: " + string(kind))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sanitizeInput(input string) string {
	input = userInputRegex.ReplaceAllString(input, "")
	input = systemInstructionsRegex.ReplaceAllString(input, "")
	input = strings.TrimSpace(input)

	if input == "" {
		return "[Sin entrada]"
	}

	if utf8.RuneCountInString(input) > maxInputRunes {
		runes := []rune(input)
		input = string(runes[:maxInputRunes]) + "\n\n[Entrada truncada por longitud]"
	}

	return input
}
