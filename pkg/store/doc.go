// Package store persists mirrored repositories on the local filesystem.
//
// The layout under the root directory is:
//
//	root/
//	├── list                 comma-joined repository directory names
//	└── {name}/
//	    ├── file             the mirrored release artifact
//	    ├── details.json     the metadata record
//	    └── 1.jpg, 2.jpg ... externally supplied screenshots (counted only)
//
// Records are merged, never replaced: [Store.Load] returns whatever is on
// disk, callers [Record.Set] the fields they produce, and [Store.Persist]
// writes the whole map back. Keys nobody sets survive untouched, so
// hand-curated fields like "keywords" are kept across syncs.
//
// Every write goes through [CreateAtomic], so readers never observe a
// half-written artifact, record or listing.
package store
