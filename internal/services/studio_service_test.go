package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastStudio(f *fixture) {
	f.svc.Studio.pollInterval = 5 * time.Millisecond
}

func waitVideo(t *testing.T, f *fixture, jobID string, status VideoStatus) *VideoJob {
	t.Helper()
	var job *VideoJob
	require.Eventually(t, func() bool {
		var err error
		job, err = f.svc.Studio.Video(jobID)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestStudioRequiresCreator(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Studio.StartVideo(&VideoRequest{Prompt: "runway"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	f.loginCustomer(t)
	_, err = f.svc.Studio.GenerateScene(context.Background(), &SceneRequest{Prompt: "beach"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGenerateSceneStoresImage(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)

	scene, err := f.svc.Studio.GenerateScene(context.Background(), &SceneRequest{Prompt: "sunlit terrace"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", scene.MimeType)
	assert.True(t, strings.HasPrefix(scene.ImageURL, "http://media.test/uploads/generated/"))

	f.ai.SetErr(errors.New("quota exceeded"))
	_, err = f.svc.Studio.GenerateScene(context.Background(), &SceneRequest{Prompt: "sunlit terrace"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateVideoScript(t *testing.T) {
	f := newFixture(t)
	f.loginRep(t)
	f.ai.Text = `{"title":"Linen days","hook":"Meet summer","scenes":[{"visual":"twirl","voiceover":"Soft linen","durationSeconds":4}],"callToAction":"Shop now"}`

	script, err := f.svc.Studio.GenerateVideoScript(context.Background(), &VideoScriptRequest{Brief: "summer drop", ProductID: "p-linen-dress"})
	require.NoError(t, err)
	assert.Equal(t, "Linen days", script.Title)
	require.Len(t, script.Scenes, 1)
	assert.Equal(t, 4, script.Scenes[0].DurationSeconds)

	_, err = f.svc.Studio.GenerateVideoScript(context.Background(), &VideoScriptRequest{Brief: "x", ProductID: "p-missing"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	f.ai.Text = "not json"
	_, err = f.svc.Studio.GenerateVideoScript(context.Background(), &VideoScriptRequest{Brief: "summer drop"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestVideoCompletesAfterPolling(t *testing.T) {
	f := newFixture(t)
	fastStudio(f)
	f.loginOwner(t)
	f.ai.PollsDone = 2

	job, err := f.svc.Studio.StartVideo(&VideoRequest{Prompt: "catwalk in linen"})
	require.NoError(t, err)
	assert.Contains(t, []VideoStatus{VideoStatusPending, VideoStatusRunning}, job.Status)

	done := waitVideo(t, f, job.ID, VideoStatusDone)
	assert.Equal(t, f.ai.VideoURI, done.VideoURL)
	assert.Equal(t, 2, done.Attempts)
	assert.NotNil(t, done.FinishedAt)
	assert.Len(t, f.svc.Studio.Videos(), 1)
}

func TestVideoGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	fastStudio(f)
	f.loginOwner(t)
	f.ai.PollsDone = -1

	job, err := f.svc.Studio.StartVideo(&VideoRequest{Prompt: "never finishes"})
	require.NoError(t, err)

	failed := waitVideo(t, f, job.ID, VideoStatusFailed)
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, ErrGenerationFailed.Error(), failed.Error)
	assert.Empty(t, failed.VideoURL)
}

func TestCancelVideo(t *testing.T) {
	f := newFixture(t)
	f.svc.Studio.pollInterval = time.Hour
	f.loginOwner(t)

	job, err := f.svc.Studio.StartVideo(&VideoRequest{Prompt: "slow render"})
	require.NoError(t, err)

	cancelled, err := f.svc.Studio.CancelVideo(job.ID)
	require.NoError(t, err)
	assert.Equal(t, VideoStatusCancelled, cancelled.Status)

	// the poller exits without overwriting the outcome
	time.Sleep(20 * time.Millisecond)
	again, err := f.svc.Studio.Video(job.ID)
	require.NoError(t, err)
	assert.Equal(t, VideoStatusCancelled, again.Status)

	_, err = f.svc.Studio.CancelVideo("missing")
	assert.ErrorIs(t, err, ErrVideoJobNotFound)
}
