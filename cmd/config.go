package main

import "time"

// Config is read from the environment. BADGER_FILEPATH is ignored when BADGER_IN_MEMORY is set.
type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=5000"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data"`
	BadgerInMemory       bool          `env:"BADGER_IN_MEMORY,default=false"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	InactivityThreshold  time.Duration `env:"INACTIVITY_THRESHOLD,default=10s"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
	StorageRetries       int           `env:"STORAGE_RETRIES,default=5"`
	CharacterReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// replacementRune is the first rune of CharacterReplacement, '*' when empty.
func (c Config) replacementRune() rune {
	for _, r := range c.CharacterReplacement {
		return r
	}
	return '*'
}
