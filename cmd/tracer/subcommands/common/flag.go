package common

import (
	"os"
)

type CommonFlags struct {
	Config   string `flag:"config" help:"path to the tracer config file"`
	Loglevel string `flag:"loglevel" help:"log level. debug|info|warn|error|off"`
}

// Flags builds the default common flags: the config path comes from
// TRACER_CONFIG, falling back to ./tracer.yaml.
func Flags() CommonFlags {
	config := os.Getenv("TRACER_CONFIG")
	if config == "" {
		config = "tracer.yaml"
	}
	return CommonFlags{
		Config:   config,
		Loglevel: "warn",
	}
}
