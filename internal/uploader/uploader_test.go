package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/docsmith/internal/api"
	"github.com/docsmith-ai/docsmith/internal/intake"
	"github.com/docsmith-ai/docsmith/internal/models"
)

// fakeBackend scripts responses per endpoint and records every call in
// order. The orchestrator is single-goroutine, so no locking is needed.
type fakeBackend struct {
	authenticated bool
	aiStatusErr   error

	fileFn     func(cf models.CandidateFile) (*api.GenerationResponse, error)
	archiveFn  func(cf models.CandidateFile) (*api.GenerationResponse, error)
	multipleFn func(files []models.CandidateFile) (*api.GenerationResponse, error)
	folderFn   func(files []models.CandidateFile) (*api.GenerationResponse, error)

	calls      []string // endpoint path per request, in order
	probeCalls int
}

func (f *fakeBackend) UploadFile(_ context.Context, cf models.CandidateFile) (*api.GenerationResponse, error) {
	f.calls = append(f.calls, "/upload/")
	return f.fileFn(cf)
}

func (f *fakeBackend) UploadArchive(_ context.Context, cf models.CandidateFile) (*api.GenerationResponse, error) {
	f.calls = append(f.calls, "/upload-project/")
	return f.archiveFn(cf)
}

func (f *fakeBackend) UploadMultiple(_ context.Context, files []models.CandidateFile) (*api.GenerationResponse, error) {
	f.calls = append(f.calls, "/upload/multiple/")
	return f.multipleFn(files)
}

func (f *fakeBackend) UploadFolder(_ context.Context, files []models.CandidateFile) (*api.GenerationResponse, error) {
	f.calls = append(f.calls, "/upload/folder/")
	return f.folderFn(files)
}

func (f *fakeBackend) AIStatus(context.Context) (*api.AIStatusResponse, error) {
	f.probeCalls++
	if f.aiStatusErr != nil {
		return nil, f.aiStatusErr
	}
	return &api.AIStatusResponse{Status: "ok", AIAvailable: true}, nil
}

func (f *fakeBackend) Authenticated() bool { return f.authenticated }

// recordingObserver captures every event for assertions.
type recordingObserver struct {
	startedWith []int
	progress    []string
	succeeded   []*models.UploadOutcome
	failed      []string
}

func (r *recordingObserver) UploadStarted(n int) { r.startedWith = append(r.startedWith, n) }

func (r *recordingObserver) UploadProgress(step int, name string) {
	r.progress = append(r.progress, fmt.Sprintf("%d:%s", step, name))
}

func (r *recordingObserver) UploadSucceeded(o *models.UploadOutcome) {
	r.succeeded = append(r.succeeded, o)
}

func (r *recordingObserver) UploadFailed(msg string) { r.failed = append(r.failed, msg) }

func okResponse(doc string) *api.GenerationResponse {
	return &api.GenerationResponse{Status: "success", Documentation: doc, Generator: "ai"}
}

// newSelection builds a selection of synthetic python files.
func newSelection(t *testing.T, mode models.SelectionMode, count int) *intake.Selection {
	t.Helper()
	sel := intake.NewSelection(mode)
	for i := 0; i < count; i++ {
		rel := fmt.Sprintf("src/file%03d.py", i+1)
		require.NoError(t, sel.Add(models.CandidateFile{
			Name:         fmt.Sprintf("file%03d.py", i+1),
			RelativePath: rel,
			AbsPath:      "/tmp/" + rel,
			SizeBytes:    512,
		}))
	}
	return sel
}

func authedBackend() *fakeBackend { return &fakeBackend{authenticated: true} }

func TestUpload_SingleFile(t *testing.T) {
	backend := authedBackend()
	backend.fileFn = func(cf models.CandidateFile) (*api.GenerationResponse, error) {
		assert.Equal(t, "file001.py", cf.Name)
		return okResponse("# file001"), nil
	}
	obs := &recordingObserver{}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
	require.NoError(t, err)

	assert.Equal(t, []string{"/upload/"}, backend.calls)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, "# file001", outcome.Documentation)
	assert.Equal(t, "ai", outcome.GeneratorLabel)
	assert.Equal(t, 1, outcome.ProcessedCount)
	assert.Equal(t, 1, outcome.TotalCount)

	assert.Equal(t, []int{1}, obs.startedWith)
	assert.Equal(t, []string{"1:file001.py"}, obs.progress)
	require.Len(t, obs.succeeded, 1)
	assert.Empty(t, obs.failed)
}

func TestUpload_RejectsOverFileCeiling(t *testing.T) {
	backend := authedBackend()
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeFolder, 101), obs)
	require.Error(t, err)

	assert.Empty(t, backend.calls, "pre-flight rejection must not touch the network")
	require.Len(t, obs.failed, 1)
	assert.Contains(t, obs.failed[0], "101")
	assert.Contains(t, obs.failed[0], "100")
	assert.Empty(t, obs.startedWith)
	assert.Empty(t, obs.succeeded)
}

func TestUpload_RejectsOversizedFiles(t *testing.T) {
	backend := authedBackend()
	sel := intake.NewSelection(models.ModeMultiple)
	require.NoError(t, sel.Add(models.CandidateFile{Name: "ok.py", RelativePath: "ok.py", SizeBytes: 1024}))
	require.NoError(t, sel.Add(models.CandidateFile{Name: "big.py", RelativePath: "big.py", SizeBytes: 11 << 20}))
	require.NoError(t, sel.Add(models.CandidateFile{Name: "huge.py", RelativePath: "huge.py", SizeBytes: 20 << 20}))
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), sel, obs)
	require.Error(t, err)

	assert.Empty(t, backend.calls)
	require.Len(t, obs.failed, 1)
	assert.Contains(t, obs.failed[0], "big.py", "rejection names the offending files")
	assert.Contains(t, obs.failed[0], "huge.py")
	assert.NotContains(t, obs.failed[0], "ok.py")
}

func TestUpload_RejectsEmptySelection(t *testing.T) {
	backend := authedBackend()
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), intake.NewSelection(models.ModeSingle), obs)
	require.Error(t, err)
	assert.Empty(t, backend.calls)
	assert.Len(t, obs.failed, 1)
}

func TestUpload_RequiresAuth(t *testing.T) {
	backend := &fakeBackend{authenticated: false}
	backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
		return okResponse("x"), nil
	}
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
	require.Error(t, err)
	assert.Empty(t, backend.calls)
	assert.Contains(t, obs.failed[0], "log in")

	// Anonymous runs are allowed when the config says so.
	cfg := DefaultConfig()
	cfg.RequireAuth = false
	_, err = New(backend, cfg).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), &recordingObserver{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/upload/"}, backend.calls)
}

func TestUpload_ArchiveRoutesToProjectEndpoint(t *testing.T) {
	backend := authedBackend()
	backend.archiveFn = func(cf models.CandidateFile) (*api.GenerationResponse, error) {
		assert.Equal(t, "project.zip", cf.Name)
		return okResponse("# project docs"), nil
	}
	sel := intake.NewSelection(models.ModeSingle)
	require.NoError(t, sel.Add(models.CandidateFile{Name: "project.zip", RelativePath: "project.zip", SizeBytes: 2048}))

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), sel, &recordingObserver{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/upload-project/"}, backend.calls)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
}

func TestUpload_ArchiveMustBeAlone(t *testing.T) {
	backend := authedBackend()
	sel := intake.NewSelection(models.ModeMultiple)
	require.NoError(t, sel.Add(models.CandidateFile{Name: "project.zip", RelativePath: "project.zip", SizeBytes: 10}))
	require.NoError(t, sel.Add(models.CandidateFile{Name: "main.py", RelativePath: "main.py", SizeBytes: 10}))
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), sel, obs)
	require.Error(t, err)
	assert.Empty(t, backend.calls)
	assert.Contains(t, obs.failed[0], "archive")
}

func TestUpload_MultipleIsOneRequest(t *testing.T) {
	backend := authedBackend()
	backend.multipleFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		assert.Len(t, files, 3)
		return &api.GenerationResponse{
			Status: "success",
			Results: []api.GenerationResponse{
				{Status: "success", Documentation: "doc 1"},
				{Status: "success", Documentation: "doc 2"},
				{Status: "success", Documentation: "doc 3"},
			},
		}, nil
	}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeMultiple, 3), &recordingObserver{})
	require.NoError(t, err)

	assert.Equal(t, []string{"/upload/multiple/"}, backend.calls)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, "multiple", outcome.GeneratorLabel)
	assert.Equal(t, 3, outcome.ProcessedCount)
	assert.Equal(t, 3, outcome.TotalCount)
	assert.Contains(t, outcome.Documentation, "doc 2")
}

func TestUpload_SmallFolderIsOneRequest(t *testing.T) {
	backend := authedBackend()
	backend.folderFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		assert.Len(t, files, 10)
		return &api.GenerationResponse{Status: "success", Documentation: "folder docs", ProcessedCount: 10}, nil
	}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeFolder, 10), &recordingObserver{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/upload/folder/"}, backend.calls)
	assert.Equal(t, "folder", outcome.GeneratorLabel)
	assert.Equal(t, 10, outcome.ProcessedCount)
}

func TestUpload_ChunkedFolderIsSequentialPerFile(t *testing.T) {
	backend := authedBackend()
	backend.folderFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		require.Len(t, files, 1, "chunked mode sends one file per request")
		return &api.GenerationResponse{
			Status:        "success",
			Documentation: "# " + files[0].Name,
			FileName:      files[0].Name,
		}, nil
	}
	obs := &recordingObserver{}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeFolder, 25), obs)
	require.NoError(t, err)

	assert.Len(t, backend.calls, 25)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, 25, outcome.ProcessedCount)
	assert.Equal(t, 25, outcome.TotalCount)

	// Progress advances linearly, one step per file.
	require.Len(t, obs.progress, 25)
	assert.Equal(t, "1:file001.py", obs.progress[0])
	assert.Equal(t, "13:file013.py", obs.progress[12])
	assert.Equal(t, "25:file025.py", obs.progress[24])
}

func TestUpload_ChunkedSwallowsPerFileFailure(t *testing.T) {
	backend := authedBackend()
	backend.folderFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		if files[0].Name == "file013.py" {
			return nil, errors.New("connection reset mid-transfer")
		}
		return &api.GenerationResponse{Status: "success", Documentation: "# " + files[0].Name}, nil
	}
	obs := &recordingObserver{}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeFolder, 25), obs)
	require.NoError(t, err, "a per-file failure must not abort the batch")

	assert.Len(t, backend.calls, 25, "remaining files still upload")
	assert.Equal(t, 24, outcome.ProcessedCount)
	assert.Equal(t, 25, outcome.TotalCount)
	assert.Equal(t, models.StatusPartial, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "file013.py")

	require.Len(t, obs.succeeded, 1, "the run still completes")
	assert.Empty(t, obs.failed)
}

func TestUpload_ChunkedAbortsOnAuthFailure(t *testing.T) {
	backend := authedBackend()
	backend.folderFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		if files[0].Name == "file003.py" {
			return nil, &api.StatusError{StatusCode: http.StatusUnauthorized, Kind: api.KindAuth}
		}
		return &api.GenerationResponse{Status: "success", Documentation: "x"}, nil
	}
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeFolder, 25), obs)
	require.Error(t, err)

	assert.Len(t, backend.calls, 3, "no point continuing without a session")
	require.Len(t, obs.failed, 1)
	assert.Empty(t, obs.succeeded)
}

func TestUpload_TransportErrorProbesHealth(t *testing.T) {
	t.Run("service down", func(t *testing.T) {
		backend := authedBackend()
		backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
			return nil, errors.New("dial tcp: connection refused")
		}
		backend.aiStatusErr = errors.New("dial tcp: connection refused")
		obs := &recordingObserver{}

		_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
		require.Error(t, err)
		assert.Equal(t, 1, backend.probeCalls)
		assert.Contains(t, obs.failed[0], "appears to be down")
	})

	t.Run("single request failed", func(t *testing.T) {
		backend := authedBackend()
		backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
			return nil, errors.New("unexpected EOF")
		}
		obs := &recordingObserver{}

		_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
		require.Error(t, err)
		assert.Equal(t, 1, backend.probeCalls)
		assert.Contains(t, obs.failed[0], "service is reachable")
	})

	t.Run("status errors skip the probe", func(t *testing.T) {
		backend := authedBackend()
		backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
			return nil, &api.StatusError{StatusCode: http.StatusRequestEntityTooLarge, Kind: api.KindTooLarge}
		}
		obs := &recordingObserver{}

		_, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
		require.Error(t, err)
		assert.Zero(t, backend.probeCalls)
		assert.Contains(t, obs.failed[0], "too large")
	})
}

func TestUpload_FolderDisallowedByConfig(t *testing.T) {
	backend := authedBackend()
	cfg := DefaultConfig()
	cfg.AllowFolder = false
	obs := &recordingObserver{}

	_, err := New(backend, cfg).Upload(context.Background(), newSelection(t, models.ModeFolder, 2), obs)
	require.Error(t, err)
	assert.Empty(t, backend.calls)
}

func TestUpload_ErrorOutcomeStillCompletes(t *testing.T) {
	// A well-formed error reply is a completed run, not a transport
	// failure: the outcome reports it, UploadFailed stays silent.
	backend := authedBackend()
	backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
		return &api.GenerationResponse{Status: "error", Message: "file could not be parsed"}, nil
	}
	obs := &recordingObserver{}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
	require.NoError(t, err)

	assert.Equal(t, models.StatusError, outcome.Status)
	assert.Equal(t, "file could not be parsed", outcome.ErrorMessage)
	require.Len(t, obs.succeeded, 1)
	assert.Empty(t, obs.failed)
}

func TestUpload_PartialOutcomePassesThrough(t *testing.T) {
	backend := authedBackend()
	backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
		return &api.GenerationResponse{Status: "partial_success", Documentation: "most of it", Generator: "ai"}, nil
	}
	obs := &recordingObserver{}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), obs)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, outcome.Status)
	assert.Equal(t, "most of it", outcome.Documentation)
	assert.Len(t, obs.succeeded, 1)
}

func TestUpload_CancelledBetweenChunkFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := authedBackend()
	backend.folderFn = func(files []models.CandidateFile) (*api.GenerationResponse, error) {
		if files[0].Name == "file002.py" {
			cancel() // takes effect before file 3 starts
		}
		return &api.GenerationResponse{Status: "success", Documentation: "x"}, nil
	}
	obs := &recordingObserver{}

	_, err := New(backend, DefaultConfig()).Upload(ctx, newSelection(t, models.ModeFolder, 25), obs)
	require.ErrorIs(t, err, context.Canceled)

	assert.Len(t, backend.calls, 2)
	require.Len(t, obs.failed, 1)
	assert.Contains(t, obs.failed[0], "cancelled")
}

func TestUpload_NilObserverIsSafe(t *testing.T) {
	backend := authedBackend()
	backend.fileFn = func(models.CandidateFile) (*api.GenerationResponse, error) {
		return okResponse("x"), nil
	}

	outcome, err := New(backend, DefaultConfig()).Upload(context.Background(), newSelection(t, models.ModeSingle, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
}
