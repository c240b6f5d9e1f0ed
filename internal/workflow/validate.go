package workflow

import (
	"strings"
	"unicode/utf8"

	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/render"
)

// ValidationIssue is a single content-quality failure, shown to the
// author before submission is allowed. These gates are distinct from
// the state-machine legality checks.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// placeholderTitles are default editor titles that never pass the gate
var placeholderTitles = map[string]bool{
	"untitled":    true,
	"new article": true,
	"無題":          true,
}

// ValidateArticleForSubmit runs the content-quality gates an article
// must pass before leaving draft
func ValidateArticleForSubmit(a *models.Article, minBodyChars int) []ValidationIssue {
	return validateContent(a.Title, a.AnimeIDs, a.ContentJSON, minBodyChars)
}

// ValidateRevisionForSubmit runs the content-quality gates a revision
// must pass before entering review
func ValidateRevisionForSubmit(r *models.ArticleRevision, minBodyChars int) []ValidationIssue {
	return validateContent(r.Title, r.AnimeIDs, r.ContentJSON, minBodyChars)
}

func validateContent(title string, animeIDs []string, contentJSON string, minBodyChars int) []ValidationIssue {
	var issues []ValidationIssue

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		issues = append(issues, ValidationIssue{Field: "title", Message: "title is required"})
	} else if placeholderTitles[strings.ToLower(trimmed)] {
		issues = append(issues, ValidationIssue{Field: "title", Message: "title is a placeholder"})
	}

	hasAnime := false
	for _, id := range animeIDs {
		if strings.TrimSpace(id) != "" {
			hasAnime = true
			break
		}
	}
	if !hasAnime {
		issues = append(issues, ValidationIssue{Field: "anime_ids", Message: "at least one anime is required"})
	}

	body := strings.TrimSpace(render.PlainTextFromJSON(contentJSON))
	if utf8.RuneCountInString(body) <= minBodyChars {
		issues = append(issues, ValidationIssue{Field: "content", Message: "body is too short"})
	}

	return issues
}
