package main

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	var config Config
	req.NoError(env.Unmarshal(env.EnvSet{"BADGER_IN_MEMORY": "true"}, &config))

	req.True(config.BadgerInMemory)
	req.Equal("./data", config.BadgerFilepath)
	req.Equal(5000, config.Port)
	req.Equal(10*time.Second, config.InactivityThreshold)
	req.Equal(15*time.Second, config.SweepInterval)
	req.Equal(5, config.StorageRetries)
	req.Equal('*', config.replacementRune())
}

func TestConfig_ReplacementRune(t *testing.T) {
	req := require.New(t)
	req.Equal('#', Config{CharacterReplacement: "#!"}.replacementRune())
	req.Equal('*', Config{}.replacementRune())
}
