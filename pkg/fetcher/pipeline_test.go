package fetcher

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattThePandah/RA-Tracker/pkg/checkpoint"
	"github.com/MattThePandah/RA-Tracker/pkg/igdb"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/metrics"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/ratelimit"
	"github.com/MattThePandah/RA-Tracker/pkg/storage"
)

const pipelineBaseURL = "https://api.example.test/v4"

type fixedToken string

func (t fixedToken) Token(context.Context) (string, error) { return string(t), nil }

type pipeline struct {
	transport *httpmock.MockTransport
	fetcher   *Fetcher
	progress  *checkpoint.Manager
	cacheDir  string
	metrics   *metrics.Metrics
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := logger.NewNopLogger()
	p := &pipeline{
		transport: httpmock.NewMockTransport(),
		cacheDir:  filepath.Join(t.TempDir(), "covers"),
		metrics:   metrics.New(),
	}

	client := igdb.NewClient(fixedToken("tok"), ratelimit.NewInterval(0), igdb.Options{
		BaseURL:    pipelineBaseURL,
		ClientID:   "cid",
		Cooldown:   time.Millisecond,
		MaxRetries: 1,
		HTTPClient: &http.Client{Transport: p.transport},
		Metrics:    p.metrics,
		Logger:     log,
	})

	cache, err := storage.NewManager(p.cacheDir, client, 16, log)
	require.NoError(t, err)

	p.progress = checkpoint.NewManager(filepath.Join(t.TempDir(), "igdb_progress.json"), log)
	p.fetcher = New(client, cache, p.progress, Options{
		Resume:  true,
		Metrics: p.metrics,
		Logger:  log,
	})
	return p
}

const twoGames = `[
	{"id": 1, "name": "Okami", "cover": {"url": "//images.example.test/igdb/image/upload/t_thumb/co1.jpg"}},
	{"id": 2, "name": "Ico", "cover": {"image_id": "co2"}}
]`

func TestPipelineConsumesRateLimitedRetry(t *testing.T) {
	p := newPipeline(t)

	var queries []string
	p.transport.RegisterResponder("POST", pipelineBaseURL+"/games", func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		queries = append(queries, string(body))
		if len(queries) == 1 {
			return httpmock.NewStringResponse(429, ``), nil
		}
		return httpmock.NewStringResponse(200, twoGames), nil
	})
	p.transport.RegisterResponder("GET", "https://images.example.test/igdb/image/upload/t_cover_big/co1.jpg",
		httpmock.NewBytesResponder(200, []byte("okami")))
	p.transport.RegisterResponder("GET", "https://images.igdb.com/igdb/image/upload/t_cover_big/co2.jpg",
		httpmock.NewBytesResponder(200, []byte("ico")))

	summary, err := p.fetcher.Run(context.Background(), []models.Platform{ps2})

	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, queries[0], queries[1])
	assert.Equal(t, models.RunStatistics{Downloaded: 2}, summary.Stats)
	assert.Equal(t, checkpoint.Entry{LastOffset: 2, Completed: true}, p.progress.Load(ps2.Name))

	data, err := os.ReadFile(filepath.Join(p.cacheDir, "PlayStation 2 - Okami.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "okami", string(data))
	assert.FileExists(t, filepath.Join(p.cacheDir, "PlayStation 2 - Ico.jpg"))
}

func TestPipelineSecondRunIsAllHits(t *testing.T) {
	p := newPipeline(t)
	p.transport.RegisterResponder("POST", pipelineBaseURL+"/games", httpmock.NewStringResponder(200, twoGames))
	p.transport.RegisterResponder("GET", "https://images.example.test/igdb/image/upload/t_cover_big/co1.jpg",
		httpmock.NewBytesResponder(200, []byte("okami")))
	p.transport.RegisterResponder("GET", "https://images.igdb.com/igdb/image/upload/t_cover_big/co2.jpg",
		httpmock.NewBytesResponder(200, []byte("ico")))

	first, err := p.fetcher.Run(context.Background(), []models.Platform{ps2})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Stats.Downloaded)

	// start over without resume, same cache directory
	p.fetcher.resume = false
	second, err := p.fetcher.Run(context.Background(), []models.Platform{ps2})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatistics{Skipped: 2}, second.Stats)
	info := p.transport.GetCallCountInfo()
	assert.Equal(t, 1, info["GET https://images.example.test/igdb/image/upload/t_cover_big/co1.jpg"])
	assert.Equal(t, 1, info["GET https://images.igdb.com/igdb/image/upload/t_cover_big/co2.jpg"])
}
