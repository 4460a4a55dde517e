// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are decoded first (github.com/caarlos0/env), then CLI
flags are applied on top. LoadDotEnv can be called beforehand to populate the
environment from a .env file.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: HS256 secret shared with the auth service (required)
  - FrontendURL: base URL for invitation links
  - InviteTTL: invitation lifetime (default: 168h)
  - LogLevel, LogFormat: slog level and text/json output

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	-jwt-secret    JWT secret
	-frontend-url  Frontend base URL

CLI flags take precedence over environment variables.
*/
package cliparse
