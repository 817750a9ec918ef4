package migrations

import "embed"

// FS - встроенные файлы миграций, применяются при старте сервиса
//
//go:embed *.sql
var FS embed.FS
