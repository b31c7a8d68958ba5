package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "assemble", "health"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestAssembleCommand_Flags(t *testing.T) {
	for _, name := range []string{"name", "type", "topic", "audience", "section"} {
		require.NotNil(t, assembleCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
