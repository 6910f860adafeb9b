package mem2reg

import (
	"fmt"

	"github.com/mengluoML/julia/ir"
)

// splitCopy replaces an eligible whole-object bulk copy with a load
// followed by a store at the same program point. slot is the allocation
// whose canonicalization triggered the split; it may be either endpoint.
//
// The copy was proven eligible before this is called, so there is no
// failure path: a type gap the reinterpretation casts below cannot bridge
// is a precondition violation.
func (p *promoter) splitCopy(cp, slot *ir.Instr) {
	b := cp.Parent()
	dstPtr := stripCasts(cp.Args[0])
	srcPtr := stripCasts(cp.Args[1])
	dstSlot := underlyingSlot(cp.Args[0])
	srcSlot := underlyingSlot(cp.Args[1])
	if dstSlot != slot && srcSlot != slot {
		panic(fmt.Sprintf("mem2reg: split of copy not touching slot %s", slot))
	}

	// Read as the source slot's own element type when the sizes agree, so
	// that slot's value stream stays type-homogeneous and it remains a
	// promotion candidate in its own right.
	loadType := slot.Elem()
	if srcSlot != nil && srcSlot != slot && ir.Compatible(srcSlot.Elem(), slot.Elem()) {
		loadType = srcSlot.Elem()
	}

	src := p.pointerAs(b, cp, srcPtr, loadType)
	ld := p.fn.NewInstr(ir.OpLoad, loadType, src)
	ld.Meta = cp.Meta // alignment and alias metadata carry over verbatim
	b.InsertBefore(cp, ld)

	// The destination's natural element type wins when a value cast can
	// bridge to it; otherwise the loaded value is stored as-is.
	destType := dstPtr.Elem()
	if dstSlot != nil {
		destType = dstSlot.Elem()
	}
	val := ld
	if !ld.Type.Equal(destType) && ir.Compatible(ld.Type, destType) {
		cast := p.fn.NewInstr(ir.OpBitCast, destType, ld)
		b.InsertBefore(cp, cast)
		val = cast
	}

	dst := p.pointerAs(b, cp, dstPtr, val.Type)
	st := p.fn.NewInstr(ir.OpStore, nil, dst, val)
	st.Meta = cp.Meta
	b.InsertBefore(cp, st)

	p.order.split(cp, ld, st)
	b.Remove(cp)
	p.stats.CopiesSplit++
}

// pointerAs returns ptr typed as a pointer to elem, inserting a pointer
// reinterpretation before mark if the declared pointee differs. Pointer
// identity is unchanged; only the type tag moves.
func (p *promoter) pointerAs(b *ir.Block, mark, ptr *ir.Instr, elem *ir.Type) *ir.Instr {
	if ptr.Elem().Equal(elem) {
		return ptr
	}
	cast := p.fn.NewInstr(ir.OpBitCast, ir.PtrTo(elem), ptr)
	b.InsertBefore(mark, cast)
	return cast
}
