// Package fs bundles the files the binaries need at runtime.
package fs

import "embed"

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed templates/email/*
var Templates embed.FS
