package main

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedantwpatil/adstrip/internal/config"
)

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseArgs([]string{"-dry-run", "-workers", "3", "-heuristic", "lookahead", "in.ts", "a.mkv", "b.mkv"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "in.ts", opts.input)
	assert.Equal(t, []string{"a.mkv", "b.mkv"}, opts.outputs)
	assert.True(t, opts.dryRun)
	assert.Equal(t, 3, opts.workers)
	assert.Equal(t, "lookahead", opts.heuristic)
}

func TestParseArgsNeedsOutput(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseArgs([]string{"in.ts"}, &stderr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
	assert.Contains(t, stderr.String(), "usage: adstrip")
}

func TestParseArgsHelp(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseArgs([]string{"-h"}, &stderr)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestApplyOverridesOnlySetFlags(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"ADSTRIP_WORKERS": "4"})
	require.NoError(t, err)

	(&options{heuristic: "lookahead"}).apply(cfg)
	assert.Equal(t, "lookahead", cfg.Detection.Heuristic)
	assert.Equal(t, 4, cfg.Emit.Workers)
	assert.Equal(t, "last", cfg.Emit.Remainder)

	(&options{workers: 2, remainder: "drop"}).apply(cfg)
	assert.Equal(t, 2, cfg.Emit.Workers)
	assert.Equal(t, "drop", cfg.Emit.Remainder)
}

func TestRunUsageExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"only-input.ts"}, &stderr))
	assert.Equal(t, exitOK, run([]string{"-h"}, &stderr))
}
