// Package doctor diagnoses the resources an application depends on: its
// configuration files, the migrate CLI, the database and redis. Each check
// reports ok, failed or not configured; only failures make Run return a
// non-zero exit code.
package doctor
