// Package config loads runtime configuration for the scholarhub terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API, including the /api prefix
//	-t int      per-request timeout (seconds)
//	-d string   directory holding the per-origin session database
//	-s          strict restore: wait for server verification before
//	            trusting a stored session
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json)
//
// # JSON schema
//
// Durations are strings like "10s" or integer nanoseconds. The file may
// contain // and /* */ comments and trailing commas:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "request_timeout": "10s",
//	  "data_dir": "/home/me/.scholarhub",
//	  "strict_restore": false,
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
