// internal/ai/client.go
package ai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/javajoker/reelshop/internal/models"
)

var (
	ErrEmptyResponse = errors.New("generative API returned no content")
	ErrNotConfigured = errors.New("generative API key is not configured")
)

// TextRequest asks for a completion. When Schema is set the model is told to
// answer with JSON matching it.
type TextRequest struct {
	Prompt       string
	SystemPrompt string
	Schema       json.RawMessage
}

// Image is a generated picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// VideoOperation is the state of a long-running video generation.
type VideoOperation struct {
	Name     string
	Done     bool
	VideoURI string
	Error    string
}

// Client is the generative AI collaborator.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
	StartVideo(ctx context.Context, prompt string) (string, error)
	VideoStatus(ctx context.Context, operation string) (*VideoOperation, error)
	Translate(ctx context.Context, text string, target models.Language) (string, error)
}

var languageNames = map[models.Language]string{
	models.LanguageTurkish: "Turkish",
	models.LanguageRussian: "Russian",
	models.LanguageEnglish: "English",
	models.LanguageGerman:  "German",
}

// LanguageName returns the English name of lang.
func LanguageName(lang models.Language) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return "English"
}
