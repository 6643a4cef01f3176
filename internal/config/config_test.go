package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
train_set: data/train.csv
hidden: [64, 32]
learning_rate: 0.05
delimiter: space
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/train.csv", cfg.TrainSet)
	assert.Equal(t, []int{64, 32}, cfg.Hidden)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 10, cfg.Classes)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 50, cfg.LogEvery)
	assert.Equal(t, 0.1, cfg.InitScale)
	assert.Equal(t, 1.0, cfg.FeatureScale)

	r, err := cfg.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, ' ', r)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("train_set: a.csv\nsteps: 10\n"))
	require.Error(t, err)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEmptyHiddenMeansNoHiddenLayers(t *testing.T) {
	cfg, err := Decode(strings.NewReader("train_set: a.csv\nhidden: []\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.NotNil(t, cfg.Hidden)
	assert.Empty(t, cfg.Hidden)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.TrainSet = "a.csv"
	cfg.ApplyOverrides(Overrides{
		TestSet:      "b.csv",
		BatchSize:    32,
		LearningRate: 0.5,
		Seed:         9,
		Verbose:      true,
	})
	assert.Equal(t, "a.csv", cfg.TrainSet)
	assert.Equal(t, "b.csv", cfg.TestSet)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 0.5, cfg.LearningRate)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []int{100}, cfg.Hidden, "nil hidden override keeps the configured widths")
	assert.Equal(t, 10, cfg.Epochs, "zero epochs override keeps the configured value")

	zero := 0
	cfg.ApplyOverrides(Overrides{Epochs: &zero})
	assert.Equal(t, 0, cfg.Epochs, "an explicit zero epochs override wins")

	cfg.ApplyOverrides(Overrides{Hidden: []int{}})
	assert.Empty(t, cfg.Hidden)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejects(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no train set": func(c *Config) { c.TrainSet = "" },
		"zero classes": func(c *Config) { c.Classes = 0 },
		"zero batch":   func(c *Config) { c.BatchSize = 0 },
		"negative lr":  func(c *Config) { c.LearningRate = -1 },
		"zero width":   func(c *Config) { c.Hidden = []int{10, 0} },
		"neg epochs":   func(c *Config) { c.Epochs = -1 },
		"neg init":     func(c *Config) { c.InitScale = -0.1 },
		"long delim":   func(c *Config) { c.Delimiter = ";;" },
		"labels only":  func(c *Config) { c.TestLabels = "t.lbl" },
		"neg skip":     func(c *Config) { c.Skip = -2 },
		"neg preview":  func(c *Config) { c.Preview = -1 },
	} {
		cfg := Default()
		cfg.TrainSet = "a.csv"
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestParseWidths(t *testing.T) {
	widths, err := ParseWidths("256, 128")
	require.NoError(t, err)
	assert.Equal(t, []int{256, 128}, widths)

	widths, err = ParseWidths("none")
	require.NoError(t, err)
	assert.NotNil(t, widths)
	assert.Empty(t, widths)

	_, err = ParseWidths("64,x")
	require.Error(t, err)
	_, err = ParseWidths("64,0")
	require.Error(t, err)
}
