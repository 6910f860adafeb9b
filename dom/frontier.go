package dom

import "github.com/mengluoML/julia/ir"

// Frontier holds per-block dominance frontiers: for block b, the set of
// blocks where b's dominance just stops.
type Frontier struct {
	sets [][]*ir.Block
}

// BuildFrontier computes dominance frontiers from a finished tree using
// the Cytron et al. bottom-up construction: children of the dominator
// tree are processed before their parents.
func BuildFrontier(t *Tree) *Frontier {
	df := &Frontier{sets: make([][]*ir.Block, len(t.fn.Blocks))}

	for _, u := range t.treePostorder() {
		// DF_local: CFG successors not immediately dominated by u.
		for _, v := range u.Succs {
			if t.Idom(v) != u {
				df.add(u, v)
			}
		}
		// DF_up: frontier entries of dominated children that u does not
		// strictly dominate either.
		for _, w := range t.Children(u) {
			for _, v := range df.sets[w.Index] {
				if t.Idom(v) != u {
					df.add(u, v)
				}
			}
		}
	}
	return df
}

// Of returns the dominance frontier of b.
func (df *Frontier) Of(b *ir.Block) []*ir.Block {
	return df.sets[b.Index]
}

func (df *Frontier) add(u, v *ir.Block) {
	set := df.sets[u.Index]
	for _, w := range set {
		if w == v {
			return
		}
	}
	df.sets[u.Index] = append(set, v)
}

// treePostorder returns the reachable blocks in dominator-tree postorder.
func (t *Tree) treePostorder() []*ir.Block {
	type frame struct {
		b     *ir.Block
		child int
	}
	order := make([]*ir.Block, 0, len(t.fn.Blocks))
	stack := []frame{{b: t.fn.Entry()}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.Children(top.b)
		if top.child < len(kids) {
			next := kids[top.child]
			top.child++
			stack = append(stack, frame{b: next})
			continue
		}
		order = append(order, top.b)
		stack = stack[:len(stack)-1]
	}
	return order
}
