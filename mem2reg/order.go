package mem2reg

import "github.com/mengluoML/julia/ir"

// orderIndex answers "does A precede B" for memory operations in the same
// block without rescanning the block each time. A block is scanned once,
// on the first query for any instruction in it; the scan assigns
// increasing positions to every load, store, and bulk copy.
//
// When a bulk copy is split, the replacement load and store both inherit
// the copy's position. The two then compare equal to each other, which is
// harmless: a copy's source and destination never alias, so the pair can
// only ever be ordered against operations on different slots, and
// same-slot comparisons never see the tie.
type orderIndex struct {
	pos     map[ir.ID]int
	scanned map[*ir.Block]bool
}

func newOrderIndex() *orderIndex {
	return &orderIndex{
		pos:     make(map[ir.ID]int),
		scanned: make(map[*ir.Block]bool),
	}
}

// position returns v's index within its block, scanning the block on
// first use.
func (o *orderIndex) position(v *ir.Instr) int {
	b := v.Parent()
	if !o.scanned[b] {
		o.scan(b)
	}
	n, ok := o.pos[v.ID]
	if !ok {
		panic("mem2reg: position queried for unindexed instruction")
	}
	return n
}

func (o *orderIndex) scan(b *ir.Block) {
	n := 0
	for _, v := range b.Instrs {
		switch v.Op {
		case ir.OpLoad, ir.OpStore, ir.OpMemCopy:
			o.pos[v.ID] = n
			n++
		}
	}
	o.scanned[b] = true
}

// precedes reports whether a comes before b. Both must be in the same
// block and index distinct positions there.
func (o *orderIndex) precedes(a, b *ir.Instr) bool {
	return o.position(a) < o.position(b)
}

// split transfers a replaced bulk copy's position to the load/store pair
// standing in for it, and forgets the copy.
func (o *orderIndex) split(cp, ld, st *ir.Instr) {
	if !o.scanned[ld.Parent()] {
		return // a future scan will index the new pair
	}
	n, ok := o.pos[cp.ID]
	if !ok {
		panic("mem2reg: splitting an unindexed bulk copy in a scanned block")
	}
	o.pos[ld.ID] = n
	o.pos[st.ID] = n
	delete(o.pos, cp.ID)
}
