// Package diff computes line-level alignments between two versions of a
// document using the patience algorithm.
//
// Unlike a plain longest-common-subsequence diff, patience alignment anchors
// on lines that occur exactly once in both inputs before recursing into the
// regions between anchors. This avoids mis-pairing repeated or blank lines,
// which matters when the diff is shown to a person deciding whether to keep
// an external edit.
//
// The core contract is [Diff]: the returned entries form a complete,
// order-preserving partition of both input sequences. Reassembling the
// OpMatch/OpDelete entries in AIndex order reproduces A exactly; the
// OpMatch/OpInsert entries in BIndex order reproduce B exactly.
//
// [Blocks] derives the maximal runs of changed lines with byte-offset spans
// on both sides, which feed the fold package. [Unified] renders a unified
// diff for terminal output.
//
// All functions are pure and safe for concurrent use.
package diff
