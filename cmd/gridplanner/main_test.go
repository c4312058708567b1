package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridplanner/internal/config"
	"github.com/pdrpinto/gridplanner/internal/msgs"
)

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	settings := config.DefaultConfig()
	settings.Planner.Size = 5
	settings.Planner.Resolution = 1
	settings.Logging.Level = "error"
	configFile := filepath.Join(dir, "gridplanner.yaml")
	require.NoError(t, settings.Save(configFile))

	data := make([]int8, 25)
	data[13] = 100
	payload, err := json.Marshal(msgs.OccupancyGrid{Info: msgs.MapMetaData{Width: 5, Height: 5, Resolution: 1}, Data: data})
	require.NoError(t, err)
	snapshotFile := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshotFile, payload, 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"plan", snapshotFile, "--config", configFile})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var path msgs.Path
	require.NoError(t, json.Unmarshal(out.Bytes(), &path))
	assert.Len(t, path.Poses, 5)
	assert.Equal(t, "base_link", path.Header.FrameID)
	assert.NotEmpty(t, path.RunID)
}

func TestPlanCommand_RejectsBadGeometry(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	settings := config.DefaultConfig()
	settings.Planner.Size = 2
	settings.Planner.Resolution = 1
	configFile := filepath.Join(dir, "gridplanner.yaml")
	require.NoError(t, settings.Save(configFile))
	snapshotFile := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshotFile, []byte(`{"data":[100,0,0,0]}`), 0644))

	rootCmd.SetArgs([]string{"plan", snapshotFile, "--config", configFile})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.Error(t, rootCmd.Execute())
}
