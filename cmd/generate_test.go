package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsmith-ai/docsmith/internal/intake"
	"github.com/docsmith-ai/docsmith/internal/models"
	"github.com/docsmith-ai/docsmith/internal/output"
)

func TestGenerationTitle_SingleFile(t *testing.T) {
	sel := intake.NewSelection(models.ModeSingle)

	title := generationTitle([]string{"docs/api.py"}, sel)
	assert.Equal(t, "api.py", title)
}

func TestGenerationTitle_Folder(t *testing.T) {
	sel := intake.NewSelection(models.ModeFolder)

	title := generationTitle([]string{"./src"}, sel)
	assert.Equal(t, "src/", title)
}

func TestGenerationTitle_MultipleFiles(t *testing.T) {
	sel := intake.NewSelection(models.ModeMultiple)

	title := generationTitle([]string{"a.py", "b.py", "c.py"}, sel)
	assert.Equal(t, "a.py (+2 more)", title)
}

func newTestUI() *output.UI {
	return &output.UI{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
}

func TestCLIObserver_CapturesFailureMessage(t *testing.T) {
	obs := newCLIObserver(newTestUI(), 0)

	obs.UploadStarted(3)
	obs.UploadFailed("the service is unreachable")

	assert.Equal(t, "the service is unreachable", obs.failMsg)
	assert.False(t, obs.est.Running(), "estimator should stop on failure")
}

func TestCLIObserver_SuccessLeavesNoFailure(t *testing.T) {
	obs := newCLIObserver(newTestUI(), 0)

	obs.UploadStarted(1)
	obs.UploadSucceeded(&models.UploadOutcome{Status: models.StatusSuccess})

	assert.Empty(t, obs.failMsg)
	assert.False(t, obs.est.Running())
}

func TestCLIObserver_EstimateOverride(t *testing.T) {
	obs := newCLIObserver(newTestUI(), 120)
	defer obs.est.Stop()

	obs.UploadStarted(5)

	assert.Equal(t, 120, obs.est.State().EstimatedTotalSeconds)
}

func TestCLIObserver_DefaultEstimateScalesWithFiles(t *testing.T) {
	obs := newCLIObserver(newTestUI(), 0)
	defer obs.est.Stop()

	obs.UploadStarted(10)

	// 20s base plus 3s per file.
	assert.Equal(t, 50, obs.est.State().EstimatedTotalSeconds)
}
