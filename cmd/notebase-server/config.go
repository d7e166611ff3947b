package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr            string
	LogLevel        string
	SnapshotDir     string
	FrameIntervalMs int
	Seed            uint64
	Seeded          bool
	AllowedOrigin   string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

const defaultFrameIntervalMs = 16

var resolvers = []configResolver{
	{
		flagName:    "addr",
		envVarName:  "NOTEBASE_ADDR",
		defaultVal:  ":8080",
		description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
		setter:      func(c *ServerConfig, v string) { c.Addr = v },
	},
	{
		flagName:    "log-level",
		envVarName:  "NOTEBASE_LOG_LEVEL",
		defaultVal:  "info",
		description: "Log level: debug, info, warn, error",
		setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
	},
	{
		flagName:    "snapshot-dir",
		envVarName:  "NOTEBASE_SNAPSHOT_DIR",
		defaultVal:  "./data",
		description: "Directory where simulation snapshots are stored; empty disables snapshots",
		setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
	},
	{
		flagName:    "frame-interval-ms",
		envVarName:  "NOTEBASE_FRAME_INTERVAL_MS",
		defaultVal:  strconv.Itoa(defaultFrameIntervalMs),
		description: "Default tick interval in milliseconds for running simulations",
		setter: func(c *ServerConfig, v string) {
			if val, err := strconv.Atoi(v); err == nil && val > 0 {
				c.FrameIntervalMs = val
			} else {
				log.Printf("Invalid value for frame-interval-ms: %s, using default %d", v, defaultFrameIntervalMs)
				c.FrameIntervalMs = defaultFrameIntervalMs
			}
		},
	},
	{
		flagName:    "seed",
		envVarName:  "NOTEBASE_SEED",
		defaultVal:  "",
		description: "Optional random seed for reproducible simulations",
		setter: func(c *ServerConfig, v string) {
			if v == "" {
				return
			}
			if val, err := strconv.ParseUint(v, 10, 64); err == nil {
				c.Seed = val
				c.Seeded = true
			} else {
				log.Printf("Invalid value for seed: %s, using time-seeded randomness", v)
			}
		},
	},
	{
		flagName:    "allowed-origin",
		envVarName:  "NOTEBASE_ALLOWED_ORIGIN",
		defaultVal:  "*",
		description: "Value of Access-Control-Allow-Origin on the quiz proxy",
		setter:      func(c *ServerConfig, v string) { c.AllowedOrigin = v },
	},
	{
		flagName:    "gemini-api-key",
		envVarName:  "GEMINI_API_KEY",
		defaultVal:  "",
		description: "API key for the quiz model; the quiz proxy answers 500 without it",
		setter:      func(c *ServerConfig, v string) { c.GeminiAPIKey = v },
	},
	{
		flagName:    "gemini-model",
		envVarName:  "NOTEBASE_GEMINI_MODEL",
		defaultVal:  "gemini-1.5-flash",
		description: "Model name used by the quiz proxy",
		setter:      func(c *ServerConfig, v string) { c.GeminiModel = v },
	},
	{
		flagName:    "gemini-base-url",
		envVarName:  "NOTEBASE_GEMINI_BASE_URL",
		defaultVal:  "https://generativelanguage.googleapis.com/v1beta",
		description: "Base URL of the model API",
		setter:      func(c *ServerConfig, v string) { c.GeminiBaseURL = v },
	},
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables. Precedence is flag, then environment, then default.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}
