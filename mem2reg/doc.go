// Package mem2reg promotes non-escaping stack slots into SSA values,
// eliminating the loads and stores that touched them.
//
// # Algorithm
//
// Promotion runs per slot in four stages:
//
//  1. Legality analysis. Every use of the slot is inspected; only loads,
//     stores, whole-object bulk copies, lifetime markers, and one-hop
//     pointer reinterpretations feeding such copies are allowed, and
//     nothing may be volatile. Anything else keeps the slot in memory for
//     a later, more general decomposition pass.
//  2. Canonicalization. Bulk copies are split into a load/store pair,
//     lifetime markers are deleted, and pointer reinterpretations are
//     peeled away, leaving a use list of plain loads and stores.
//  3. Fast paths. A slot with no remaining uses is deleted outright. A
//     slot with a single store dominating every load, or with all uses in
//     one block, is rewritten without any phi placement.
//  4. General promotion. Phis are placed at the iterated dominance
//     frontier of the storing blocks, then a single walk of the dominator
//     tree rewrites loads to their reaching definitions and fills phi
//     operands.
//
// The pass never changes control flow; a dominator tree and dominance
// frontier computed before the run stay valid throughout.
//
// # Bulk-copy splitting
//
// A copy of a slot's full object size is equivalent to a load followed by
// a store at the same point. When the other endpoint is a different slot
// with a reinterpretation-compatible element type, the load is typed for
// that slot and a value cast bridges the difference, so the other slot's
// own value stream stays type-homogeneous and independently promotable.
// Splitting is what lets the rest of the pass reason only about loads and
// stores.
package mem2reg
