package ingestion

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxQuestionLength = 1024
	maxAnswerLength   = 65536
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateQARow checks that a CSV row has both a question and an answer and
// that neither is unreasonably long. Rows failing validation are skipped by
// the loader, not treated as fatal.
func ValidateQARow(row *QARow) error {
	errs := make(map[string]string)

	question := strings.TrimSpace(row.Question)
	if question == "" {
		errs["question"] = "question is required"
	} else if len(question) > maxQuestionLength {
		errs["question"] = fmt.Sprintf("question must be at most %d characters", maxQuestionLength)
	}
	answer := strings.TrimSpace(row.Answer)
	if answer == "" {
		errs["answer"] = "answer is required"
	} else if len(answer) > maxAnswerLength {
		errs["answer"] = fmt.Sprintf("answer must be at most %d characters", maxAnswerLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateIntent checks that an intent carries a tag.
func ValidateIntent(intent *Intent) error {
	if strings.TrimSpace(intent.Tag) == "" {
		return &ValidationError{Fields: map[string]string{"tag": "tag is required"}}
	}
	return nil
}
