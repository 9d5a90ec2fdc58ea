// Package history records finalized exports in a small SQLite database kept
// alongside the archived spreadsheets.
package history
