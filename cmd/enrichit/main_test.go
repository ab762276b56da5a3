package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/enrichit/config"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/status"
	"github.com/poiesic/enrichit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeTestConfig(t *testing.T, statusDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enrichit.yaml")
	content := "storage:\n  status_dir: " + statusDir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"enrichit", "--env-file", ""}, args...))
	return out.String(), err
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENRICHIT_TEST_VALUE=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ENRICHIT_TEST_VALUE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("ENRICHIT_TEST_VALUE"))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("MEILI_HOST", "http://meili.internal:7700")
	t.Setenv(config.EnvConfigPath, "")

	var loaded *config.Config
	app := newApp()
	app.Commands = append(app.Commands, &cli.Command{
		Name: "capture",
		Action: func(c *cli.Context) error {
			var err error
			loaded, err = loadConfig(c)
			return err
		},
	})

	err := app.Run([]string{"enrichit", "--env-file", "", "--ai-location", "eastus", "--signing-secret", "s", "capture"})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "eastus", loaded.AI.Location)
	assert.Equal(t, "s", loaded.Storage.SigningSecret)
	assert.Equal(t, "http://meili.internal:7700", loaded.Meilisearch.Host)
	// Unset flags keep config defaults.
	assert.Equal(t, "en", loaded.AI.TargetLanguage)
	assert.Equal(t, config.Default().Nats.URL, loaded.Nats.URL)
}

func TestStatusCommand(t *testing.T) {
	statusDir := filepath.Join(t.TempDir(), "status")
	ctx := context.Background()

	backend, err := badger.OpenBackend(statusDir, false)
	require.NoError(t, err)
	repo, err := badger.NewStatusRepository(backend)
	require.NoError(t, err)
	recorder := status.NewRecorder(repo)
	require.NoError(t, recorder.Upsert(ctx, "upload/cat.png", "Received message from image-enrichment-queue", core.ClassificationDebug, core.StateProcessing))
	require.NoError(t, recorder.UpdateTags(ctx, "upload/cat.png", []string{"pets"}))
	require.NoError(t, recorder.Upsert(ctx, "upload/dog.png", "Image added to index.", core.ClassificationInfo, core.StateComplete))
	require.NoError(t, recorder.Save(ctx, "upload/cat.png"))
	require.NoError(t, recorder.Save(ctx, "upload/dog.png"))
	require.NoError(t, backend.Close())

	cfgPath := writeTestConfig(t, statusDir)

	t.Run("list", func(t *testing.T) {
		out, err := runApp(t, "--config", cfgPath, "status")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[1], "upload/cat.png"))
		assert.Contains(t, lines[2], "Complete")
	})

	t.Run("single record", func(t *testing.T) {
		out, err := runApp(t, "--config", cfgPath, "status", "upload/cat.png")
		require.NoError(t, err)
		assert.Contains(t, out, "Document: upload/cat.png")
		assert.Contains(t, out, "ImageEnrichment - Received message from image-enrichment-queue")
		assert.Contains(t, out, "[pets]")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runApp(t, "--config", cfgPath, "status", "--json", "upload/dog.png")
		require.NoError(t, err)
		var record core.StatusRecord
		require.NoError(t, json.Unmarshal([]byte(out), &record))
		assert.Equal(t, core.StateComplete, record.State)
		assert.Len(t, record.Events, 1)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := runApp(t, "--config", cfgPath, "status", "upload/none.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no status recorded")
	})
}

func TestEnrichCommand_RequiresPaths(t *testing.T) {
	_, err := runApp(t, "enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob path")
}

func TestEnqueueCommand_Validation(t *testing.T) {
	_, err := runApp(t, "enqueue")
	require.Error(t, err)

	_, err = runApp(t, "enqueue", "--uri", "https://example.test/x", "upload/a.png", "upload/b.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--uri")

	_, err = runApp(t, "enqueue", "no-container.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidJob)
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, err := runApp(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 3, 2)

	p.Increment(true)
	assert.Empty(t, buf.String(), "updates before Start are ignored")

	p.Start()
	p.Increment(true)
	assert.Empty(t, buf.String())
	p.Increment(false)
	assert.Contains(t, buf.String(), "Enriched: 2/3 (66.7%), 1 failed")

	p.Increment(true)
	p.Increment(true)
	p.Finish()
	assert.Contains(t, buf.String(), "Enriched: 3/3 (100.0%), 1 failed")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Equal(t, 1, p.Failed())
}
