package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

const (
	EnvPipelineToolAttempts  = "RECEIPTS_PIPELINE_TOOL_ATTEMPTS"
	EnvPipelineToolBaseDelay = "RECEIPTS_PIPELINE_TOOL_BASE_DELAY"
	EnvPipelineRunAttempts   = "RECEIPTS_PIPELINE_RUN_ATTEMPTS"
	EnvPipelineRunBaseDelay  = "RECEIPTS_PIPELINE_RUN_BASE_DELAY"
	EnvPipelineMaxDelay      = "RECEIPTS_PIPELINE_MAX_DELAY"
	EnvPipelineMaxSteps      = "RECEIPTS_PIPELINE_MAX_STEPS"
)

// PipelineConfig holds retry budgets and routing limits for the extraction
// pipeline. Tool settings bound retries inside a single tool invocation;
// run settings bound retries of the whole pipeline run.
type PipelineConfig struct {
	ToolAttempts  int    `toml:"tool_attempts"`
	ToolBaseDelay string `toml:"tool_base_delay"`
	RunAttempts   int    `toml:"run_attempts"`
	RunBaseDelay  string `toml:"run_base_delay"`
	MaxDelay      string `toml:"max_delay"`
	MaxSteps      int    `toml:"max_steps"`
}

// ToolBackoff returns the retry policy for individual tool invocations.
func (c *PipelineConfig) ToolBackoff() pipeline.Backoff {
	return pipeline.Backoff{
		MaxAttempts: c.ToolAttempts,
		BaseDelay:   duration(c.ToolBaseDelay),
		MaxDelay:    duration(c.MaxDelay),
	}
}

// RunBackoff returns the retry policy for whole pipeline runs.
func (c *PipelineConfig) RunBackoff() pipeline.Backoff {
	return pipeline.Backoff{
		MaxAttempts: c.RunAttempts,
		BaseDelay:   duration(c.RunBaseDelay),
		MaxDelay:    duration(c.MaxDelay),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ToolAttempts != 0 {
		c.ToolAttempts = overlay.ToolAttempts
	}
	if overlay.ToolBaseDelay != "" {
		c.ToolBaseDelay = overlay.ToolBaseDelay
	}
	if overlay.RunAttempts != 0 {
		c.RunAttempts = overlay.RunAttempts
	}
	if overlay.RunBaseDelay != "" {
		c.RunBaseDelay = overlay.RunBaseDelay
	}
	if overlay.MaxDelay != "" {
		c.MaxDelay = overlay.MaxDelay
	}
	if overlay.MaxSteps != 0 {
		c.MaxSteps = overlay.MaxSteps
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.ToolAttempts == 0 {
		c.ToolAttempts = 3
	}
	if c.ToolBaseDelay == "" {
		c.ToolBaseDelay = "1s"
	}
	if c.RunAttempts == 0 {
		c.RunAttempts = 5
	}
	if c.RunBaseDelay == "" {
		c.RunBaseDelay = "1s"
	}
	if c.MaxDelay == "" {
		c.MaxDelay = "1m"
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 6
	}
}

func (c *PipelineConfig) loadEnv() {
	setInt := func(key string, target *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}
	setString := func(key string, target *string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}

	setInt(EnvPipelineToolAttempts, &c.ToolAttempts)
	setString(EnvPipelineToolBaseDelay, &c.ToolBaseDelay)
	setInt(EnvPipelineRunAttempts, &c.RunAttempts)
	setString(EnvPipelineRunBaseDelay, &c.RunBaseDelay)
	setString(EnvPipelineMaxDelay, &c.MaxDelay)
	setInt(EnvPipelineMaxSteps, &c.MaxSteps)
}

func (c *PipelineConfig) validate() error {
	if c.ToolAttempts < 1 {
		return fmt.Errorf("tool_attempts must be positive")
	}
	if c.RunAttempts < 1 {
		return fmt.Errorf("run_attempts must be positive")
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be positive")
	}
	if _, err := time.ParseDuration(c.ToolBaseDelay); err != nil {
		return fmt.Errorf("invalid tool_base_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.RunBaseDelay); err != nil {
		return fmt.Errorf("invalid run_base_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.MaxDelay); err != nil {
		return fmt.Errorf("invalid max_delay: %w", err)
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
