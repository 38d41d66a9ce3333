// Package diskuse provides disk usage analysis with persistent caching.
//
// It computes aggregate size and file-count statistics for a directory
// subtree, keeps the per-subtree results in a path-keyed cache, and on
// subsequent scans reuses cached subtrees whose directories have not
// changed since their last scan, rescanning only the stale portions with
// parallel fan-out across sibling subdirectories.
package diskuse
