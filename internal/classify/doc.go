// Package classify decides whether a document modification originated inside
// the live editing surface or outside of it.
//
// The Classifier owns three pieces of session state: per-document content
// snapshots (the diff baseline), time-boxed internal-edit markers armed by
// the editor around its own saves, and the set of paths with an unresolved
// external diff. A modification is reported as external only when it matches
// no snapshot, no live marker, and no currently displayed view content.
//
// While a path is pending, its snapshot is frozen: every further external
// edit is reported against the original baseline, so the comparison the user
// eventually resolves always shows the full accumulated change. Only
// ResolveSnapshot moves the baseline forward and clears the pending flag.
//
// Ambiguity always resolves toward reporting: a spurious diff is recoverable,
// a silently dropped external edit is not.
package classify
