// Package db embeds the schema migrations applied by goose.
package db

import "embed"

// Migrations holds one directory per goose dialect: postgres/ and sqlite/.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var Migrations embed.FS
