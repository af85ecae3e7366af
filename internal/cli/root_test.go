package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/output"
)

func TestRootRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"tasks", "projects", "templates", "auth", "api", "config", "tui"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootSilencesCobraNoise(t *testing.T) {
	cmd := NewRootCmd()
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestNormalizeCobraError(t *testing.T) {
	cases := []string{
		"unknown flag: --bogus",
		"unknown shorthand flag: 'z' in -z",
		`unknown command "frobnicate" for "dayplan"`,
		"flag needs an argument: --date",
		"accepts 1 arg(s), received 0",
	}
	for _, msg := range cases {
		err := normalizeCobraError(assertableError(msg))
		require.Error(t, err)
		assert.Equal(t, output.CodeUsage, output.AsError(err).Code, msg)
	}

	// Non-cobra errors pass through untouched.
	original := output.ErrAuth("not logged in")
	assert.Same(t, original, normalizeCobraError(original))
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
