package engine

import "time"

// Options represents configuration options for the Engine.
type Options struct {
	DepthInterval time.Duration
	DepthLevels   int
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		DepthInterval: 2 * time.Second,
		DepthLevels:   20,
	}
}
