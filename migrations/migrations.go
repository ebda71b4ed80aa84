// Package migrations SQL схема, встроенная в бинарники сервера и CLI.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
