// Package journal keeps an append-only audit trail of narrated game events as
// zstd-compressed JSON lines, rotated hourly. Sessions never read it back.
package journal
