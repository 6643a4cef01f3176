package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	TrainSet    string `yaml:"train_set"`
	TestSet     string `yaml:"test_set"`
	TrainLabels string `yaml:"train_labels"`
	TestLabels  string `yaml:"test_labels"`
	LabelHeader bool   `yaml:"label_header"`

	Skip         int     `yaml:"skip"`
	Delimiter    string  `yaml:"delimiter"`
	FeatureScale float64 `yaml:"feature_scale"`

	Hidden       []int   `yaml:"hidden"`
	Classes      int     `yaml:"classes"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	Seed         int64   `yaml:"seed"`
	InitScale    float64 `yaml:"init_scale"`

	LogEvery int  `yaml:"log_every"`
	Preview  int  `yaml:"preview"`
	Verbose  bool `yaml:"verbose"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	TrainSet    string
	TestSet     string
	TrainLabels string
	TestLabels  string

	Skip         int
	Delimiter    string
	FeatureScale float64

	// Hidden replaces the layer widths when non-nil. An empty non-nil slice
	// removes every hidden layer.
	Hidden       []int
	Classes      int
	BatchSize    int
	LearningRate float64
	// Epochs replaces the epoch count when non-nil, so zero can be chosen
	// explicitly for a preview-only run.
	Epochs    *int
	Seed      int64
	InitScale float64

	LogEvery int
	Preview  int
	Verbose  bool
}

// Default returns the configuration used for keys absent from a config file.
func Default() *Config {
	return &Config{
		Delimiter:    ",",
		FeatureScale: 1,
		Hidden:       []int{100},
		Classes:      10,
		BatchSize:    100,
		LearningRate: 0.1,
		Epochs:       10,
		InitScale:    0.1,
		LogEvery:     50,
		Preview:      5,
	}
}

// Load reads a Config from YAML on top of Default. Unknown keys are an
// error. The result is not validated, so CLI overrides can still fill in
// missing values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Decode reads YAML from r on top of Default.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.TrainSet != "" {
		c.TrainSet = o.TrainSet
	}
	if o.TestSet != "" {
		c.TestSet = o.TestSet
	}
	if o.TrainLabels != "" {
		c.TrainLabels = o.TrainLabels
	}
	if o.TestLabels != "" {
		c.TestLabels = o.TestLabels
	}
	if o.Skip > 0 {
		c.Skip = o.Skip
	}
	if o.Delimiter != "" {
		c.Delimiter = o.Delimiter
	}
	if o.FeatureScale != 0 {
		c.FeatureScale = o.FeatureScale
	}
	if o.Hidden != nil {
		c.Hidden = append([]int{}, o.Hidden...)
	}
	if o.Classes > 0 {
		c.Classes = o.Classes
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs != nil {
		c.Epochs = *o.Epochs
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.InitScale > 0 {
		c.InitScale = o.InitScale
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Preview > 0 {
		c.Preview = o.Preview
	}
	if o.Verbose {
		c.Verbose = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.TrainSet == "" {
		return errors.New("train_set must be set")
	}
	if c.TestLabels != "" && c.TestSet == "" {
		return errors.New("test_labels requires test_set")
	}
	if c.Skip < 0 {
		return fmt.Errorf("skip must be >= 0 (got %d)", c.Skip)
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if c.FeatureScale == 0 {
		c.FeatureScale = 1
	}
	if math.IsNaN(c.FeatureScale) || math.IsInf(c.FeatureScale, 0) {
		return fmt.Errorf("feature_scale must be finite (got %v)", c.FeatureScale)
	}
	for i, width := range c.Hidden {
		if width <= 0 {
			return fmt.Errorf("hidden[%d] must be > 0 (got %d)", i, width)
		}
	}
	if c.Classes <= 0 {
		return fmt.Errorf("classes must be > 0 (got %d)", c.Classes)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.InitScale == 0 {
		c.InitScale = 0.1
	}
	if !(c.InitScale > 0) || math.IsInf(c.InitScale, 0) {
		return fmt.Errorf("init_scale must be > 0 (got %v)", c.InitScale)
	}
	if c.Preview < 0 {
		return fmt.Errorf("preview must be >= 0 (got %d)", c.Preview)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
	return nil
}

// DelimiterRune returns the column delimiter. The names "space" and "tab"
// are accepted besides a single character.
func (c *Config) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "space":
		return ' ', nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError || size != len(c.Delimiter) || r == '\n' || r == '\r' || r == '"' {
		return 0, fmt.Errorf("delimiter must be a single character (got %q)", c.Delimiter)
	}
	return r, nil
}

// ParseWidths parses a comma separated list of hidden layer widths such as
// "256,128". "none" yields an empty list.
func ParseWidths(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, part := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("hidden width %q: %w", part, err)
		}
		if w <= 0 {
			return nil, fmt.Errorf("hidden width must be > 0 (got %d)", w)
		}
		widths = append(widths, w)
	}
	return widths, nil
}
