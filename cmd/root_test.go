package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistration(t *testing.T) {
	root := GetRootCmd()

	expected := []string{
		"sync", "set", "unset", "list", "status",
		"enable", "disable", "logs", "daemon", "service", "version",
	}

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
}

func TestRootPersistentConfigFlag(t *testing.T) {
	flag := GetRootCmd().PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestSyncCommandFlags(t *testing.T) {
	for _, name := range []string{"dry-run", "force", "silent", "repo"} {
		assert.NotNil(t, syncCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestSetCommandFlags(t *testing.T) {
	strategy := setCmd.Flags().Lookup("strategy")
	require.NotNil(t, strategy)
	assert.Equal(t, "ours", strategy.DefValue)

	interval := setCmd.Flags().Lookup("interval")
	require.NotNil(t, interval)
	assert.Equal(t, "60", interval.DefValue)

	remote := setCmd.Flags().Lookup("remote")
	require.NotNil(t, remote)
	assert.Equal(t, "origin", remote.DefValue)
}

func TestStatusCommandFlags(t *testing.T) {
	assert.NotNil(t, statusCmd.Flags().Lookup("history"))
}

func TestServiceCommandRequiresOperation(t *testing.T) {
	serviceStart = false
	serviceStop = false
	serviceInstall = false
	serviceUninstall = false
	serviceStatus = false

	err := runService(serviceCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specify one of")
}
