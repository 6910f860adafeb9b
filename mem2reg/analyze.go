package mem2reg

import "github.com/mengluoML/julia/ir"

// isPromotable decides whether a slot is eligible for promotion. It is a
// pure predicate: nothing is mutated, and a negative verdict leaves the
// slot untouched for a later, more general pass.
func isPromotable(slot *ir.Instr) bool {
	if slot.Dynamic {
		// Runtime-sized allocations would need partial-width reasoning.
		return false
	}
	for _, u := range slot.Users() {
		switch u.Op {
		case ir.OpLoad:
			if u.Volatile || !u.Type.Equal(slot.Elem()) {
				return false
			}
		case ir.OpStore:
			if u.Volatile {
				return false
			}
			if u.Args[1] == slot {
				return false // address escapes as the stored value
			}
		case ir.OpMemCopy:
			if !copyEligible(u, slot) {
				return false
			}
		case ir.OpLifetime:
			// Liveness markers carry no value semantics.
		case ir.OpBitCast:
			if !castUsesEligible(u, slot) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// castUsesEligible checks a zero-offset pointer reinterpretation of the
// slot: every use of the cast must itself be a lifetime marker or an
// eligible bulk copy. One hop only; a cast of a cast rejects the slot.
func castUsesEligible(cast, slot *ir.Instr) bool {
	if !cast.Type.IsPtr() {
		return false
	}
	for _, u := range cast.Users() {
		switch u.Op {
		case ir.OpLifetime:
		case ir.OpMemCopy:
			if !copyEligible(u, slot) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// copyEligible reports whether a bulk-copy use of slot can be split into
// an equivalent load/store pair:
//
//   - the copy must not be volatile,
//   - its length must be a constant equal to the slot's full element
//     size (partial copies are left to object decomposition), and
//   - if the other endpoint is a different slot of the same size, the two
//     element types must be reinterpretation-compatible. Splitting an
//     incompatible same-size pair would hand one slot a load or store of
//     a foreign type and silently cost it its own promotability; a
//     differing size already means a partial access for the other slot,
//     so nothing is lost there.
func copyEligible(cp, slot *ir.Instr) bool {
	if slot.Dynamic || cp.Volatile {
		return false
	}
	n := cp.Args[2]
	if n.Op != ir.OpConst || n.AuxInt != slot.Elem().Size() {
		return false
	}

	dstSlot := underlyingSlot(cp.Args[0])
	srcSlot := underlyingSlot(cp.Args[1])
	other := dstSlot
	if other == slot {
		other = srcSlot
	}
	if other != nil && other != slot {
		oe, se := other.Elem(), slot.Elem()
		if oe.Size() == se.Size() && !ir.Compatible(oe, se) {
			return false
		}
	}
	return true
}

// stripCasts walks through zero-offset pointer reinterpretations to the
// root pointer.
func stripCasts(v *ir.Instr) *ir.Instr {
	for v.Op == ir.OpBitCast && v.Type.IsPtr() && v.Args[0].Type.IsPtr() {
		v = v.Args[0]
	}
	return v
}

// underlyingSlot returns the stack slot a pointer operand addresses, or
// nil if the root pointer is not a slot.
func underlyingSlot(v *ir.Instr) *ir.Instr {
	if root := stripCasts(v); root.Op == ir.OpSlot {
		return root
	}
	return nil
}
