package main

import (
	"testing"

	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestAppGraphResolves(t *testing.T) {
	require.NoError(t, fx.ValidateApp(appOptions()))
}

func TestRegisterSnowflake(t *testing.T) {
	node, err := RegisterSnowflake(config.Config{SnowflakeNode: 7})
	require.NoError(t, err)
	assert.NotZero(t, node.Generate())

	_, err = RegisterSnowflake(config.Config{SnowflakeNode: 4096})
	assert.Error(t, err)
}
