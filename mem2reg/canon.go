package mem2reg

import (
	"fmt"

	"github.com/mengluoML/julia/ir"
)

// canonicalize rewrites a promotable slot's use list until only loads and
// stores remain: bulk copies are split, lifetime markers deleted, and
// one-hop pointer reinterpretations peeled. Running it again on the
// result is a no-op.
//
// The iteration works over use-list snapshots throughout, since splitting
// and deletion rewrite the underlying lists mid-walk.
func (p *promoter) canonicalize(slot *ir.Instr) {
	for _, u := range slot.Users() {
		if u.Parent() == nil {
			// A copy with both endpoints rooted at slot shows up twice in
			// the snapshot; the first visit already removed it.
			continue
		}
		switch u.Op {
		case ir.OpLoad, ir.OpStore:
			// Already canonical.
		case ir.OpMemCopy:
			p.splitCopy(u, slot)
		case ir.OpLifetime:
			u.Parent().Remove(u)
		case ir.OpBitCast:
			for _, cu := range u.Users() {
				if cu.Parent() == nil {
					continue
				}
				switch cu.Op {
				case ir.OpMemCopy:
					p.splitCopy(cu, slot)
				case ir.OpLifetime:
					cu.Parent().Remove(cu)
				default:
					panic(fmt.Sprintf("mem2reg: canonicalizing cast with %s user on analyzed slot", cu.Op))
				}
			}
			u.Parent().Remove(u)
		default:
			panic(fmt.Sprintf("mem2reg: canonicalizing %s use on analyzed slot", u.Op))
		}
	}
}
