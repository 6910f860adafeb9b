// Package dom computes dominator trees and dominance frontiers over the
// ir CFG and exposes the query interface optimization passes consume.
//
// The tree is built with the Cooper/Harvey/Kennedy iterative algorithm
// over a postorder numbering, and dominance queries answer in O(1) using
// entry/exit numbers from a depth-first walk of the finished tree.
// Frontiers use the Cytron et al. bottom-up construction.
//
// Passes that only insert and delete instructions within blocks never
// invalidate a Tree or Frontier; only CFG edge or block changes do.
package dom
