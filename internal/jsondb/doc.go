// Package jsondb provides lazily loaded, read-only, token-indexed tables backed
// by JSON array files.
//
// # Overview
//
// The package centers around [Table], a generic container for the rows of one
// `<name>.json` file inside an [io/fs.FS]. Nothing is read at construction:
// the file is parsed on first use and the rows are kept resident, in file
// order, for the lifetime of the Table. Tables never change after load.
//
// # Indexes
//
// Every row carries a unique token. [Table.IndexOf] maps a token to its row
// position in O(1); the map is built once, by a single scan, on the first
// lookup. [GroupIndex] provides the non-unique counterpart (for example
// "all annotations of one image") and is built lazily the same way.
//
// # Concurrency
//
// The absent→loaded and index-absent→built transitions happen under a
// per-table mutex, so concurrent first access loads and indexes exactly once.
// Once built, rows are shared read-only.
package jsondb
