// Package recommendation turns a task analysis into concrete,
// actionable suggestions: candidate file paths, function names, and test
// coverage notes, bucketed by the kind of work the task's title implies
// (backend, frontend, QA, devops, or generic).
package recommendation

import (
	"fmt"
	"strings"

	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

// Bucket classifies a task by the part of the system its title suggests
// it touches.
type Bucket string

const (
	BucketBackend  Bucket = "backend"
	BucketFrontend Bucket = "frontend"
	BucketQA       Bucket = "qa"
	BucketDevOps   Bucket = "devops"
	BucketGeneric  Bucket = "generic"
)

var bucketPrefixes = map[string]Bucket{
	"[backend]":  BucketBackend,
	"[frontend]": BucketFrontend,
	"[qa]":       BucketQA,
	"[devops]":   BucketDevOps,
}

var bucketKeywords = map[Bucket][]string{
	BucketBackend:  {"api", "handler", "service", "database", "migration", "endpoint"},
	BucketFrontend: {"ui", "component", "page", "form", "button", "view"},
	BucketQA:       {"test", "coverage", "regression", "qa", "verify"},
	BucketDevOps:   {"deploy", "pipeline", "ci", "infra", "terraform", "docker"},
}

// ClassifyBucket first checks for an explicit "[Backend]"-style title
// prefix, then falls back to keyword matching against the title and
// description, and defaults to generic.
func ClassifyBucket(task *domain.Task) Bucket {
	lowerTitle := strings.ToLower(task.Title)
	for prefix, bucket := range bucketPrefixes {
		if strings.HasPrefix(lowerTitle, prefix) {
			return bucket
		}
	}

	haystack := lowerTitle + " " + strings.ToLower(task.Description)
	for _, bucket := range []Bucket{BucketBackend, BucketFrontend, BucketQA, BucketDevOps} {
		for _, kw := range bucketKeywords[bucket] {
			if strings.Contains(haystack, kw) {
				return bucket
			}
		}
	}
	return BucketGeneric
}

// DetailType names one of the four technical-detail categories a task
// analysis must cover: where to put the code, what to name it, what it
// takes in and returns, and how it fits the existing architecture.
type DetailType string

const (
	DetailFilePath     DetailType = "file-path"
	DetailFunction     DetailType = "function"
	DetailInputOutput  DetailType = "input-output"
	DetailArchitecture DetailType = "architecture"
)

// TechnicalDetail is one typed, actionable suggestion within a category.
type TechnicalDetail struct {
	Type   DetailType `json:"type"`
	Detail string     `json:"detail"`
}

// Suggestion is one concrete, bucket-aware piece of implementation
// guidance attached to a task.
type Suggestion struct {
	Bucket           Bucket            `json:"bucket"`
	TechnicalDetails []TechnicalDetail `json:"technical_details"`
	TestCoverage     []string          `json:"test_coverage"`
	ReferencedACs    []string          `json:"referenced_acs"`
}

var filePathTemplates = map[Bucket][]string{
	BucketBackend:  {"internal/%s/handler.go", "internal/%s/service.go"},
	BucketFrontend: {"web/src/components/%s.tsx", "web/src/pages/%s.tsx"},
	BucketQA:       {"internal/%s/%s_test.go"},
	BucketDevOps:   {"deploy/%s.yaml", ".github/workflows/%s.yml"},
	BucketGeneric:  {"internal/%s/%s.go"},
}

var testCoverageTemplates = map[Bucket]string{
	BucketBackend:  "Add table-driven tests covering the happy path and each validation error in internal/%s",
	BucketFrontend: "Add a component test asserting the %s renders each state (loading, error, success)",
	BucketQA:       "Extend the %s test suite with the new regression case",
	BucketDevOps:   "Add a dry-run check for the %s pipeline before merging",
	BucketGeneric:  "Add unit tests covering %s's primary behavior and edge cases",
}

// inputOutputDetails and architectureDetails are fixed, bucket-independent
// prompts: every task needs its inputs/outputs and its fit with the
// existing architecture named, regardless of how clear the rest of the
// description is.
var inputOutputDetails = []string{
	"Define input parameters with types (e.g. Input: TaskInput struct with ID, Title, Description)",
	"Define the return type (e.g. Output: (TaskAnalysis, error))",
}

var architectureDetails = []string{
	"Follow the existing handler -> service -> repository layering",
	"Check similar features in the codebase for naming and error-handling conventions",
}

// Generate builds a Suggestion for a task given its clarity analysis. The
// analysis score narrows the file-path suggestion to a generic nudge for
// tasks too vague to name a target confidently; the function,
// input-output, and architecture categories are always populated so the
// suggestion covers every technical-detail category regardless of
// clarity.
func Generate(task *domain.Task, analysis taskanalyzer.Analysis) Suggestion {
	bucket := ClassifyBucket(task)
	slug := slugify(task.Title)

	s := Suggestion{Bucket: bucket, ReferencedACs: task.AcceptanceCriteriaRefs}

	if analysis.ClarityScore < 50 {
		s.TechnicalDetails = append(s.TechnicalDetails, TechnicalDetail{
			Type:   DetailFilePath,
			Detail: "Clarify the task description before naming a target file; no concrete path can be inferred yet",
		})
	} else {
		for _, tpl := range filePathTemplates[bucket] {
			s.TechnicalDetails = append(s.TechnicalDetails, TechnicalDetail{
				Type:   DetailFilePath,
				Detail: fmt.Sprintf(tpl, slug, slug),
			})
		}
	}

	s.TechnicalDetails = append(s.TechnicalDetails, TechnicalDetail{
		Type:   DetailFunction,
		Detail: exportedFuncName(task.Title),
	})
	for _, d := range inputOutputDetails {
		s.TechnicalDetails = append(s.TechnicalDetails, TechnicalDetail{Type: DetailInputOutput, Detail: d})
	}
	for _, d := range architectureDetails {
		s.TechnicalDetails = append(s.TechnicalDetails, TechnicalDetail{Type: DetailArchitecture, Detail: d})
	}

	if analysis.ClarityScore < 50 {
		s.TestCoverage = []string{"Clarify the task description before implementation; add tests once the approach is concrete"}
		return s
	}

	if tpl, ok := testCoverageTemplates[bucket]; ok {
		s.TestCoverage = []string{fmt.Sprintf(tpl, slug)}
	}
	return s
}

func slugify(title string) string {
	lower := strings.ToLower(title)
	var b strings.Builder
	prevDash := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('_')
				prevDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "task"
	}
	return out
}

func exportedFuncName(title string) string {
	fields := strings.Fields(title)
	var b strings.Builder
	for _, f := range fields {
		cleaned := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, f)
		if cleaned == "" {
			continue
		}
		b.WriteString(strings.ToUpper(cleaned[:1]) + cleaned[1:])
	}
	if b.Len() == 0 {
		return "HandleTask"
	}
	return b.String()
}
