package mem2reg

import "github.com/mengluoML/julia/ir"

// promoteGeneral handles slots whose stores reach loads across block
// boundaries: place one phi per block of the iterated dominance frontier
// of the storing blocks, then rename along the dominator tree.
func (p *promoter) promoteGeneral(slot *ir.Instr, stores []*ir.Instr) {
	seen := make(map[*ir.Block]bool, len(stores))
	var defBlocks []*ir.Block
	for _, st := range stores {
		if b := st.Parent(); !seen[b] {
			seen[b] = true
			defBlocks = append(defBlocks, b)
		}
	}

	phis := make(map[*ir.Block]*ir.Instr)
	for _, b := range p.iteratedFrontier(defBlocks) {
		phi := p.fn.NewInstr(ir.OpPhi, slot.Elem())
		phi.Args = make([]*ir.Instr, len(b.Preds))
		b.InsertFront(phi)
		phis[b] = phi
		p.stats.PhisPlaced++
	}

	var undef *ir.Instr
	p.rename(slot, phis, &undef)

	// Renaming rewired every reachable load; what is left on the use list
	// is the stores, now dead, plus loads in unreachable blocks.
	for _, u := range slot.Users() {
		if u.Op == ir.OpLoad {
			u.ReplaceAllUses(p.materializeUndef(&undef, slot))
		}
		u.Parent().Remove(u)
	}
	slot.Parent().Remove(slot)
	if undef != nil && undef.NumUsers() == 0 {
		undef.Parent().Remove(undef)
	}
}

// iteratedFrontier computes the closure of the dominance-frontier
// relation over the given definition blocks: a block pulled in once stays
// in, and its own frontier is pulled in after it.
func (p *promoter) iteratedFrontier(defs []*ir.Block) []*ir.Block {
	var result []*ir.Block
	inResult := make(map[*ir.Block]bool)
	worklist := append([]*ir.Block(nil), defs...)
	queued := make(map[*ir.Block]bool, len(defs))
	for _, b := range defs {
		queued[b] = true
	}

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, d := range p.df.Of(b) {
			if !inResult[d] {
				inResult[d] = true
				result = append(result, d)
			}
			if !queued[d] {
				queued[d] = true
				worklist = append(worklist, d)
			}
		}
	}
	return result
}

// rename performs a single depth-first walk of the dominator tree with an
// explicit frame stack, maintaining the slot's most recent reaching
// definition. Loads are rewritten to the current definition, stores push
// a new one, and each successor edge owning a phi receives the definition
// live on that edge.
func (p *promoter) rename(slot *ir.Instr, phis map[*ir.Block]*ir.Instr, undef **ir.Instr) {
	// reaching is the definition stack; frames remember the depth to cut
	// back to when their block's subtree is done.
	type frame struct {
		b     *ir.Block
		child int
		depth int
	}

	reaching := make([]*ir.Instr, 0, 8)
	top := func() *ir.Instr {
		if len(reaching) == 0 {
			return p.materializeUndef(undef, slot)
		}
		return reaching[len(reaching)-1]
	}

	stack := []frame{{b: p.fn.Entry()}}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]

		if fr.child == 0 {
			fr.depth = len(reaching)
			b := fr.b

			if phi := phis[b]; phi != nil {
				reaching = append(reaching, phi)
			}

			for _, v := range append([]*ir.Instr(nil), b.Instrs...) {
				switch {
				case v.Op == ir.OpLoad && v.Args[0] == slot:
					def := top()
					p.loadEliminated(v, def)
					v.ReplaceAllUses(def)
					b.Remove(v)
				case v.Op == ir.OpStore && v.Args[0] == slot:
					reaching = append(reaching, v.Args[1])
				}
			}

			for _, s := range b.Succs {
				phi := phis[s]
				if phi == nil {
					continue
				}
				def := top()
				for i, pred := range s.Preds {
					if pred == b {
						phi.SetArg(i, def)
					}
				}
			}
		}

		kids := p.dt.Children(fr.b)
		if fr.child < len(kids) {
			next := kids[fr.child]
			fr.child++
			stack = append(stack, frame{b: next})
			continue
		}

		reaching = reaching[:fr.depth]
		stack = stack[:len(stack)-1]
	}
}

// materializeUndef lazily creates the value a load observes when no store
// reaches it, placing it at the head of the entry block.
func (p *promoter) materializeUndef(undef **ir.Instr, slot *ir.Instr) *ir.Instr {
	if *undef == nil {
		v := p.fn.NewInstr(ir.OpUndef, slot.Elem())
		p.fn.Entry().InsertFront(v)
		*undef = v
	}
	return *undef
}
