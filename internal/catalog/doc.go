// Package catalog persists scanned media records in SQLite and exposes the
// lookup operations the scan workflow depends on.
//
// Records are keyed by a store-assigned UUID and deduplicated by scan code:
// UpsertByCode merges a candidate into any existing record carrying the same
// non-empty code instead of inserting a duplicate, enforced by a partial
// unique index. Search operations scan the full record set with
// case-insensitive substring matching, mirroring how small personal catalogs
// are actually queried.
//
// Open takes an exclusive lock file beside the database so only one shelfscan
// process mutates a catalog at a time; every mutating call is durable before
// it returns.
package catalog
