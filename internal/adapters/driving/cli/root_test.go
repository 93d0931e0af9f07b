package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "lq", rootCmd.Use)
	assert.Contains(t, rootCmd.Long, "-- name:")
}

func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"database", "config", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "d", rootCmd.PersistentFlags().Lookup("database").Shorthand)
}

func TestSetup_PassesFlagsToBootstrap(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	defer func() {
		services, bootstrap = oldServices, oldBootstrap
		databasePath, configPath = "", ""
	}()
	services = nil

	var got BootstrapOptions
	SetBootstrap(func(opts BootstrapOptions) (*Services, error) {
		got = opts
		return &Services{Migrator: &mockMigrator{}}, nil
	})

	_, err := execute(t, "migrate", "--database", "data/app.db", "--config", "lq.toml")

	require.NoError(t, err)
	assert.Equal(t, "data/app.db", got.DatabasePath)
	assert.Equal(t, "lq.toml", got.ConfigPath)
	assert.NotNil(t, services)
}

func TestSetup_BootstrapError(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	defer func() { services, bootstrap = oldServices, oldBootstrap }()
	services = nil

	SetBootstrap(func(BootstrapOptions) (*Services, error) {
		return nil, errors.New("database path not set")
	})

	_, err := execute(t, "migrate")

	assert.EqualError(t, err, "database path not set")
	assert.Nil(t, services)
}

func TestEngine_NotConfigured(t *testing.T) {
	oldServices := services
	defer func() { services = oldServices }()
	services = &Services{}

	_, err := engine()
	assert.Error(t, err)
}
