// Package migrations embeds the numbered SQL files applied by
// "medhub-server migrate up".
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
