package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "relnotes", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flagName string
	}{
		"config flag exists":   {flagName: "config"},
		"data-dir flag exists": {flagName: "data-dir"},
		"debug flag exists":    {flagName: "debug"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			assert.NotNil(t, flag, "Flag %s should exist", tt.flagName)
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	commandNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		commandNames[cmd.Name()] = true
	}

	assert.True(t, commandNames["extract"], "Should have extract command")
	assert.True(t, commandNames["enrich"], "Should have enrich command")
	assert.True(t, commandNames["run"], "Should have run command")
	assert.True(t, commandNames["status"], "Should have status command")
}

func TestRootCmd_Description(t *testing.T) {
	t.Parallel()

	assert.Contains(t, rootCmd.Long, "relnotes")
	assert.Contains(t, rootCmd.Long, "ChangeLog")
	assert.Contains(t, rootCmd.Long, "github.com")
}

func TestRootCmd_Example(t *testing.T) {
	t.Parallel()

	assert.Contains(t, rootCmd.Example, "relnotes extract")
	assert.Contains(t, rootCmd.Example, "relnotes enrich")
	assert.Contains(t, rootCmd.Example, "relnotes run")
	assert.Contains(t, rootCmd.Example, "relnotes status")
}

func TestRootCmd_FlagShortcuts(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flagName     string
		wantShortcut string
	}{
		"config has shortcut c": {
			flagName:     "config",
			wantShortcut: "c",
		},
		"debug has shortcut d": {
			flagName:     "debug",
			wantShortcut: "d",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag)
			assert.Equal(t, tt.wantShortcut, flag.Shorthand)
		})
	}
}

func TestExtractCmd_RequiresVersionArg(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, extractCmd.Args)
	assert.Error(t, extractCmd.Args(extractCmd, nil))
	assert.NoError(t, extractCmd.Args(extractCmd, []string{"21"}))
	assert.Error(t, extractCmd.Args(extractCmd, []string{"21", "22"}))
}

func TestEnrichCmd_Flags(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"limit", "random", "token"} {
		assert.NotNil(t, enrichCmd.Flags().Lookup(name), "enrich should have --%s", name)
	}
	limitFlag := enrichCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "l", limitFlag.Shorthand)
}

func TestRunCmd_Flags(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"limit", "random", "token"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run should have --%s", name)
	}
}

func TestExecute_HelpDoesNotError(t *testing.T) {
	// Cannot run in parallel due to global rootCmd state

	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	require.NotPanics(t, func() {
		_ = Execute()
	})
	assert.Contains(t, buf.String(), "relnotes")
}
