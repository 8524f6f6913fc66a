// Package storage persists replica chains on disk.
//
// Every block is written as zstd compressed YAML to
// <dir>/<replica>/blocks/<index>.yml.zst. The files are the source of truth;
// <dir>/index.db is a sqlite index of the commits used for listing and
// inspection. Reopening a store reloads each chain from its block files and
// verifies it before any new commit.
package storage
