package config

const (
	// MaxNameLength is the maximum length for folder names and document
	// titles. Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxSegmentLength is the maximum length for a single URL path segment.
	MaxSegmentLength = 255

	// MaxSlugHistoryEntries bounds the per-document slug history.
	// Insertion prepends and truncates to this window.
	MaxSlugHistoryEntries = 20

	// MaxPathDepth caps the parent-chain walk during path resolution.
	// A chain deeper than this (or a cycle) degrades to the path resolved
	// so far instead of recursing without bound.
	MaxPathDepth = 50

	// CascadeBatchSize is the number of concurrent document updates per
	// wave while cascading slug changes through a subtree.
	CascadeBatchSize = 8

	// DeleteBatchSize is the number of concurrent document deletions per
	// wave during a recursive folder delete. Kept small so each wave stays
	// within storage statement timeouts.
	DeleteBatchSize = 8
)
