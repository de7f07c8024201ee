// Package storage publishes rendered exports.
//
// Two strategies implement the publisher contract:
//
//   - DirectStrategy writes files straight into a public directory tree,
//     deleting any existing file at the target first.
//   - IndexedStrategy commits files through a ContentStore: an index of
//     entries (relative path, display name, mime type, pending flag) kept in
//     SQLite, with each entry's bytes stored beside it on disk. An entry is
//     looked up by name or inserted as pending, written, then marked ready.
//
// Both render into a private scratch area first and remove it once a run
// ends, whatever the outcome. New picks the strategy once from configuration.
package storage
