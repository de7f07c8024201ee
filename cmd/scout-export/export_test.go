package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	flag "github.com/spf13/pflag"

	"go-scout-export/internal/model"
	"go-scout-export/internal/pipeline"
)

func TestSelectTeams(t *testing.T) {
	all := []model.Team{{ID: "frc254", Number: 254}, {ID: "frc1678", Number: 1678}, {ID: "unnumbered"}}

	teams, err := selectTeams(all, []string{"1678", "frc254", "254", "unnumbered"})
	require.NoError(t, err)
	assert.Equal(t, []model.Team{all[1], all[0], all[2]}, teams)

	_, err = selectTeams(all, []string{"971"})
	assert.ErrorContains(t, err, `unknown team "971"`)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	var g globalFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addGlobalFlags(fs, &g)

	root := t.TempDir()
	require.NoError(t, fs.Parse([]string{
		"--config", filepath.Join(root, "missing.yaml"),
		"--data-dir", "/srv/scouts",
		"--root", root,
		"--strategy", "direct",
		"--log-level", "debug",
	}))

	cfg, err := loadConfig(g)
	require.NoError(t, err)
	assert.Equal(t, "/srv/scouts", cfg.Source.DataDir)
	assert.Equal(t, root, cfg.Storage.Root)
	assert.Equal(t, filepath.Join(root, ".scratch"), cfg.Storage.ScratchDir)
	assert.Equal(t, "direct", cfg.Storage.Strategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_InvalidStrategy(t *testing.T) {
	_, err := loadConfig(globalFlags{configFile: "", strategy: "ftp"})
	assert.Error(t, err)
}

func TestApp_ExportsFromDataDir(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "scouts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "teams.json"), []byte(`[
		// practice field
		{"id": "frc254", "number": 254},
	]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "scouts", "frc254.json"), []byte(`[
		{"id": "s1", "templateId": "0", "metrics": [{"name": "auto", "value": 4}]},
	]`), 0644))

	cfg, err := loadConfig(globalFlags{
		dataDir:  data,
		root:     filepath.Join(dir, "exports"),
		logLevel: "error",
	})
	require.NoError(t, err)
	cfg.Store.Path = filepath.Join(dir, "jobs.db")
	cfg.Storage.IndexPath = filepath.Join(dir, "index.db")

	a, err := newApp(cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "indexed", a.storage.Name())

	handle, err := a.service.Submit(t.Context(), pipeline.Request{})
	require.NoError(t, err)
	res, err := handle.Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, model.StateDone, res.State)
	require.Len(t, res.Published, 1)
	assert.FileExists(t, res.Published[0])

	var out bytes.Buffer
	require.NoError(t, printResult(&out, res))
	assert.Contains(t, out.String(), `"state": "done"`)

	job, err := a.jobs.GetJob(t.Context(), handle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateDone, job.Status)
}
