// internal/ai/fake.go
package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/javajoker/reelshop/internal/models"
)

// Fake is an in-memory Client for tests.
type Fake struct {
	mu sync.Mutex

	Text      string
	Image     *Image
	Err       error
	VideoURI  string
	PollsDone int

	polls map[string]int
	seq   int
}

func NewFake() *Fake {
	return &Fake{
		Text:     "{}",
		Image:    &Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}},
		VideoURI: "https://cdn.reelshop.dev/generated/video.mp4",
		polls:    make(map[string]int),
	}
}

func (f *Fake) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Text, f.Err
}

func (f *Fake) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Image, f.Err
}

func (f *Fake) StartVideo(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.seq++
	return fmt.Sprintf("operations/fake-%d", f.seq), nil
}

// VideoStatus reports done once the operation was polled PollsDone times.
func (f *Fake) VideoStatus(ctx context.Context, operation string) (*VideoOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.polls[operation]++
	if f.PollsDone < 0 || f.polls[operation] < f.PollsDone {
		return &VideoOperation{Name: operation}, nil
	}
	return &VideoOperation{Name: operation, Done: true, VideoURI: f.VideoURI}, nil
}

func (f *Fake) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *Fake) Polls(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[operation]
}
