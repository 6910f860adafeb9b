package dom

import "github.com/mengluoML/julia/ir"

// Tree is an immutable dominator tree over one function's CFG. Build one
// with Build; it stays valid as long as the CFG's blocks and edges do.
type Tree struct {
	fn       *ir.Func
	idom     []*ir.Block   // indexed by block Index; nil for entry and unreachable blocks
	children [][]*ir.Block // dom-tree children, indexed by block Index
	pre      []int32       // dom-tree DFS entry number
	post     []int32       // dom-tree DFS exit number
	reach    []bool
}

// Build computes the dominator tree for f.
func Build(f *ir.Func) *Tree {
	n := len(f.Blocks)
	t := &Tree{
		fn:       f,
		idom:     make([]*ir.Block, n),
		children: make([][]*ir.Block, n),
		pre:      make([]int32, n),
		post:     make([]int32, n),
		reach:    make([]bool, n),
	}

	order := postorder(f)
	ponum := make([]int32, n)
	for i, b := range order {
		ponum[b.Index] = int32(i)
		t.reach[b.Index] = true
	}

	entry := f.Entry()
	t.idom[entry.Index] = entry // self-loop simplifies intersect; cleared below

	// Iterate to fixpoint in reverse postorder.
	for changed := true; changed; {
		changed = false
		for i := len(order) - 1; i >= 0; i-- {
			b := order[i]
			if b == entry {
				continue
			}
			var newIdom *ir.Block
			for _, p := range b.Preds {
				if !t.reach[p.Index] || t.idom[p.Index] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom, ponum, t.idom)
				}
			}
			if newIdom != nil && t.idom[b.Index] != newIdom {
				t.idom[b.Index] = newIdom
				changed = true
			}
		}
	}
	t.idom[entry.Index] = nil

	for _, b := range order {
		if p := t.idom[b.Index]; p != nil {
			t.children[p.Index] = append(t.children[p.Index], b)
		}
	}

	t.number(entry)
	return t
}

// intersect walks idom chains upward to the closest common dominator of b
// and c, comparing positions by postorder number.
func intersect(b, c *ir.Block, ponum []int32, idom []*ir.Block) *ir.Block {
	for b != c {
		for ponum[b.Index] < ponum[c.Index] {
			b = idom[b.Index]
		}
		for ponum[c.Index] < ponum[b.Index] {
			c = idom[c.Index]
		}
	}
	return b
}

// number assigns entry/exit numbers with an explicit-stack DFS of the
// dominator tree.
func (t *Tree) number(root *ir.Block) {
	type frame struct {
		b     *ir.Block
		child int
	}
	var clock int32
	stack := []frame{{b: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.children[top.b.Index]
		if top.child == 0 {
			clock++
			t.pre[top.b.Index] = clock
		}
		if top.child < len(kids) {
			next := kids[top.child]
			top.child++
			stack = append(stack, frame{b: next})
			continue
		}
		clock++
		t.post[top.b.Index] = clock
		stack = stack[:len(stack)-1]
	}
}

// Idom returns b's immediate dominator, or nil for the entry block and
// unreachable blocks.
func (t *Tree) Idom(b *ir.Block) *ir.Block {
	return t.idom[b.Index]
}

// Children returns the blocks immediately dominated by b.
func (t *Tree) Children(b *ir.Block) []*ir.Block {
	return t.children[b.Index]
}

// Reachable reports whether b is reachable from the entry block.
func (t *Tree) Reachable(b *ir.Block) bool {
	return t.reach[b.Index]
}

// Dominates reports whether a dominates b. Every block dominates itself.
// Unreachable blocks dominate nothing and are dominated by nothing.
func (t *Tree) Dominates(a, b *ir.Block) bool {
	if !t.reach[a.Index] || !t.reach[b.Index] {
		return false
	}
	return t.pre[a.Index] <= t.pre[b.Index] && t.post[b.Index] <= t.post[a.Index]
}

// postorder returns a DFS postordering of the blocks reachable from the
// entry. Unreachable blocks do not appear.
func postorder(f *ir.Func) []*ir.Block {
	type frame struct {
		b     *ir.Block
		index int // successor edges already explored
	}
	seen := make([]bool, len(f.Blocks))
	order := make([]*ir.Block, 0, len(f.Blocks))

	stack := []frame{{b: f.Entry()}}
	seen[f.Entry().Index] = true
	for len(stack) > 0 {
		tos := len(stack) - 1
		x := &stack[tos]
		if x.index < len(x.b.Succs) {
			s := x.b.Succs[x.index]
			x.index++
			if !seen[s.Index] {
				seen[s.Index] = true
				stack = append(stack, frame{b: s})
			}
			continue
		}
		order = append(order, x.b)
		stack = stack[:tos]
	}
	return order
}
