// Package assets embeds the files shipped within the binaries.
package assets

import "embed"

const (
	MigrationsDir       = "migrations"
	EmailTemplatesDir   = "templates/email"
	CommonPasswordsFile = "common-passwords.txt"
)

//go:embed migrations/*.sql templates/email/* common-passwords.txt
var FS embed.FS
