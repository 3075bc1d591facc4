// Package config loads runtime configuration for the MediaBox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. MEDIABOX_* environment variables and global command-line flags,
//     applied by the CLI on top of the loaded Config.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "session_path": "mediabox-session.db",
//	  "timeout": "10s"
//	}
package config
