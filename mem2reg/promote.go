package mem2reg

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mengluoML/julia/dom"
	"github.com/mengluoML/julia/ir"
)

// Stats reports what one run of the pass did, for diagnostics.
type Stats struct {
	SingleStore int // slots promoted through the single-store fast path
	SingleBlock int // slots promoted through the single-block fast path
	General     int // slots promoted with phi placement and renaming
	DeadSlots   int // slots deleted because canonicalization left no uses
	PhisPlaced  int // merge nodes inserted by the general path
	CopiesSplit int // bulk copies rewritten into load/store pairs
}

// Promoted returns the total number of slots eliminated.
func (s Stats) Promoted() int {
	return s.SingleStore + s.SingleBlock + s.General + s.DeadSlots
}

// Option configures a run of the pass.
type Option func(*promoter)

// WithLogger routes the run's diagnostics to l instead of the package
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *promoter) { p.log = l }
}

// WithNonNullObserver registers a callback invoked with the value each
// eliminated non-null-annotated load was reading. Consumers record these
// as known-non-null facts; the pass does not depend on the callback.
func WithNonNullObserver(fn func(*ir.Instr)) Option {
	return func(p *promoter) { p.nonNull = fn }
}

type promoter struct {
	fn      *ir.Func
	dt      *dom.Tree
	df      *dom.Frontier
	order   *orderIndex
	log     *zap.Logger
	nonNull func(*ir.Instr)
	stats   Stats
}

// Promote runs stack-slot promotion over f, mutating it in place. The
// dominator tree and frontier must describe f's current CFG; since the
// pass never adds, removes, or rewires blocks, they remain valid for the
// whole run. Non-promotable slots are left untouched.
func Promote(f *ir.Func, dt *dom.Tree, df *dom.Frontier, opts ...Option) Stats {
	p := &promoter{
		fn:    f,
		dt:    dt,
		df:    df,
		order: newOrderIndex(),
		log:   Logger(),
	}
	for _, o := range opts {
		o(p)
	}

	for _, slot := range f.Slots() {
		if !isPromotable(slot) {
			p.log.Debug("slot kept in memory",
				zap.String("func", f.Name),
				zap.String("slot", slot.String()))
			continue
		}
		p.canonicalize(slot)
		p.promote(slot)
	}

	p.log.Debug("promotion finished",
		zap.String("func", f.Name),
		zap.Int("promoted", p.stats.Promoted()),
		zap.Int("phis", p.stats.PhisPlaced),
		zap.Int("copies_split", p.stats.CopiesSplit))
	return p.stats
}

// promote eliminates one canonicalized slot. The use list holds only
// loads and stores at this point.
func (p *promoter) promote(slot *ir.Instr) {
	var loads, stores []*ir.Instr
	for _, u := range slot.Users() {
		switch u.Op {
		case ir.OpLoad:
			loads = append(loads, u)
		case ir.OpStore:
			stores = append(stores, u)
		default:
			panic(fmt.Sprintf("mem2reg: %s use survived canonicalization", u.Op))
		}
	}

	switch {
	case len(loads) == 0 && len(stores) == 0:
		slot.Parent().Remove(slot)
		p.stats.DeadSlots++

	case len(stores) == 1 && p.storeDominatesLoads(stores[0], loads):
		p.rewriteSingleStore(slot, stores[0], loads)
		p.stats.SingleStore++

	case p.usesInOneBlock(loads, stores) && p.promoteSingleBlock(slot, loads, stores):
		p.stats.SingleBlock++

	default:
		p.promoteGeneral(slot, stores)
		p.stats.General++
	}
}

// storeDominatesLoads reports whether every load reads memory the single
// store already wrote on all paths.
func (p *promoter) storeDominatesLoads(st *ir.Instr, loads []*ir.Instr) bool {
	for _, ld := range loads {
		if ld.Parent() == st.Parent() {
			if !p.order.precedes(st, ld) {
				return false
			}
		} else if !p.dt.Dominates(st.Parent(), ld.Parent()) {
			return false
		}
	}
	return true
}

// rewriteSingleStore forwards the one stored value to every load; no
// merge nodes are needed.
func (p *promoter) rewriteSingleStore(slot, st *ir.Instr, loads []*ir.Instr) {
	val := st.Args[1]
	for _, ld := range loads {
		p.loadEliminated(ld, val)
		ld.ReplaceAllUses(val)
		ld.Parent().Remove(ld)
	}
	st.Parent().Remove(st)
	slot.Parent().Remove(slot)
}

func (p *promoter) usesInOneBlock(loads, stores []*ir.Instr) bool {
	var b *ir.Block
	for _, v := range loads {
		if b == nil {
			b = v.Parent()
		} else if v.Parent() != b {
			return false
		}
	}
	for _, v := range stores {
		if b == nil {
			b = v.Parent()
		} else if v.Parent() != b {
			return false
		}
	}
	return true
}

// promoteSingleBlock rewrites each load to the value of the nearest
// preceding store in program order. If some load has no preceding store
// in the block, it reports false and the general path takes over.
func (p *promoter) promoteSingleBlock(slot *ir.Instr, loads, stores []*ir.Instr) bool {
	// Resolve every load before mutating anything.
	fwd := make(map[*ir.Instr]*ir.Instr, len(loads))
	for _, ld := range loads {
		pos := p.order.position(ld)
		var nearest *ir.Instr
		best := -1
		for _, st := range stores {
			if sp := p.order.position(st); sp < pos && sp > best {
				best = sp
				nearest = st
			}
		}
		if nearest == nil {
			return false
		}
		fwd[ld] = nearest
	}

	for _, ld := range loads {
		val := fwd[ld].Args[1]
		p.loadEliminated(ld, val)
		ld.ReplaceAllUses(val)
		ld.Parent().Remove(ld)
	}
	for _, st := range stores {
		st.Parent().Remove(st)
	}
	slot.Parent().Remove(slot)
	return true
}

// loadEliminated fires the non-null observer for an eliminated load when
// its metadata carried the fact.
func (p *promoter) loadEliminated(ld, val *ir.Instr) {
	if p.nonNull != nil && ld.Meta.NonNull {
		p.nonNull(val)
	}
}
