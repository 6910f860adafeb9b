package mem2reg

import (
	"testing"

	"github.com/mengluoML/julia/dom"
	"github.com/mengluoML/julia/ir"
)

func run(f *ir.Func, opts ...Option) Stats {
	dt := dom.Build(f)
	df := dom.BuildFrontier(dt)
	return Promote(f, dt, df, opts...)
}

func retValue(f *ir.Func) *ir.Instr {
	for _, b := range f.Blocks {
		if term := b.Terminator(); term != nil && term.Op == ir.OpRet && len(term.Args) > 0 {
			return term.Args[0]
		}
	}
	return nil
}

func TestDeadSlotRemoved(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	lt := e.b.NewInstr(ir.OpLifetime, nil, a)
	lt.AuxInt = ir.LifetimeStart
	lt2 := e.b.NewInstr(ir.OpLifetime, nil, a)
	lt2.AuxInt = ir.LifetimeEnd
	e.b.NewInstr(ir.OpRet, nil)

	stats := run(e.f)
	if stats.DeadSlots != 1 {
		t.Errorf("DeadSlots = %d, want 1", stats.DeadSlots)
	}
	if len(e.f.Slots()) != 0 {
		t.Error("dead slot survived")
	}
	if got := countOps(e.f)[ir.OpLifetime]; got != 0 {
		t.Errorf("%d lifetime markers survived", got)
	}
}

func TestSingleStoreForwarding(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	ld := e.b.NewInstr(ir.OpLoad, ir.I64, a)
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if stats.SingleStore != 1 {
		t.Errorf("SingleStore = %d, want 1", stats.SingleStore)
	}
	if got := retValue(e.f); got != x {
		t.Errorf("function returns %s, want the stored parameter", got)
	}
	if len(e.f.Slots()) != 0 {
		t.Error("slot survived promotion")
	}
}

func TestSingleStoreAcrossBlocks(t *testing.T) {
	f := ir.NewFunc("f")
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	f.Connect(entry, exit)

	x := f.NewParam("x", ir.I64)
	entry.Append(x)
	a := entry.NewInstr(ir.OpSlot, ir.PtrTo(ir.I64))
	entry.NewInstr(ir.OpStore, nil, a, x)
	entry.NewInstr(ir.OpBr, nil)
	ld := exit.NewInstr(ir.OpLoad, ir.I64, a)
	exit.NewInstr(ir.OpRet, nil, ld)

	stats := run(f)
	if stats.SingleStore != 1 {
		t.Errorf("SingleStore = %d, want 1", stats.SingleStore)
	}
	if got := retValue(f); got != x {
		t.Errorf("function returns %s, want x", got)
	}
}

// Scenario: partial-width copy between mismatched slots rejects both.
func TestPartialCopyKeepsBothSlots(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	b := e.slot(ir.I128)
	z := e.b.NewInstr(ir.OpConst, ir.I128)
	e.b.NewInstr(ir.OpStore, nil, b, z)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	e.copyBytes(b, a, 4) // matches neither slot's size
	e.b.NewInstr(ir.OpRet, nil)

	stats := run(e.f)
	if stats.Promoted() != 0 {
		t.Errorf("promoted %d slots, want 0", stats.Promoted())
	}
	if len(e.f.Slots()) != 2 {
		t.Errorf("%d slots remain, want 2", len(e.f.Slots()))
	}
	if countOps(e.f)[ir.OpMemCopy] != 1 {
		t.Error("ineligible copy was rewritten")
	}
}

// Scenario: full-size copy chain a -> b collapses to the original value.
func TestCopyChainCollapses(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	b := e.slot(ir.I64)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	e.copyBytes(b, a, 8)
	ld := e.b.NewInstr(ir.OpLoad, ir.I64, b)
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if got := retValue(e.f); got != x {
		t.Errorf("function returns %s, want x", got)
	}
	if len(e.f.Slots()) != 0 {
		t.Error("slots survived")
	}
	if stats.CopiesSplit != 1 || stats.SingleStore != 2 {
		t.Errorf("stats = %+v, want 1 split and 2 single-store promotions", stats)
	}
}

// Scenario: full copy of a into a wider slot eliminates a; the wider slot
// keeps a partial store through a reinterpreted pointer and stays in
// memory.
func TestCopyIntoWiderSlot(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	b := e.slot(ir.I128)
	z := e.b.NewInstr(ir.OpConst, ir.I128)
	e.b.NewInstr(ir.OpStore, nil, b, z)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	e.copyBytes(b, a, 8)
	ld := e.b.NewInstr(ir.OpLoad, ir.I128, b)
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if stats.SingleStore != 1 {
		t.Errorf("SingleStore = %d, want 1 (slot a)", stats.SingleStore)
	}
	slots := e.f.Slots()
	if len(slots) != 1 || slots[0] != b {
		t.Fatalf("remaining slots = %v, want [b]", slots)
	}

	// The split store writes x into b through a pointer reinterpretation.
	var partial *ir.Instr
	for _, v := range e.b.Instrs {
		if v.Op == ir.OpStore && v.Args[1] == x {
			partial = v
		}
	}
	if partial == nil {
		t.Fatal("no store of x survived for b")
	}
	if partial.Args[0].Op != ir.OpBitCast || stripCasts(partial.Args[0]) != b {
		t.Error("partial store does not go through a reinterpreted pointer to b")
	}
}

// Scenario: a copy between two slots reached only through one-hop casts.
func TestCopyThroughCastsPromotesBoth(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	b := e.slot(ir.F64)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	castA := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.F64), a)
	castB := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.I64), b)
	lt := e.b.NewInstr(ir.OpLifetime, nil, castA)
	lt.AuxInt = ir.LifetimeStart
	e.b.NewInstr(ir.OpMemCopy, nil, castB, castA, e.intConst(8))
	ld := e.b.NewInstr(ir.OpLoad, ir.F64, b)
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if len(e.f.Slots()) != 0 {
		t.Fatalf("%d slots survived", len(e.f.Slots()))
	}
	got := retValue(e.f)
	if got == nil || got.Op != ir.OpBitCast || !got.Type.Equal(ir.F64) || got.Args[0] != x {
		t.Errorf("function should return x reinterpreted as f64, got %v", got)
	}
	counts := countOps(e.f)
	if counts[ir.OpMemCopy] != 0 || counts[ir.OpLifetime] != 0 {
		t.Error("copy or lifetime marker survived")
	}
	if stats.SingleStore != 2 || stats.CopiesSplit != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// Ordering: loads observe the nearest preceding store, including one
// derived from a split copy.
func TestSingleBlockOrdering(t *testing.T) {
	e := newMemEnv()
	x := e.f.NewParam("x", ir.I64)
	e.b.InsertFront(x)
	a := e.slot(ir.I64)
	b := e.slot(ir.I64)
	sink := e.slot(ir.I64)

	one := e.intConst(1)
	e.b.NewInstr(ir.OpStore, nil, b, one)
	ld1 := e.b.NewInstr(ir.OpLoad, ir.I64, b)
	e.b.NewInstr(ir.OpStore, nil, a, x)
	e.copyBytes(b, a, 8)
	ld2 := e.b.NewInstr(ir.OpLoad, ir.I64, b)

	// Volatile store keeps sink in memory so ld1's value stays observable.
	keep := e.b.NewInstr(ir.OpStore, nil, sink, ld1)
	keep.Volatile = true
	e.b.NewInstr(ir.OpRet, nil, ld2)

	stats := run(e.f)
	if stats.SingleBlock != 1 {
		t.Errorf("SingleBlock = %d, want 1 (slot b)", stats.SingleBlock)
	}
	if keep.Args[1] != one {
		t.Errorf("first load forwarded %s, want the constant 1", keep.Args[1])
	}
	if got := retValue(e.f); got != x {
		t.Errorf("second load forwarded %s, want x (through the split store)", got)
	}
}

func TestGeneralPromotionPlacesPhi(t *testing.T) {
	f := ir.NewFunc("f")
	entry := f.NewBlock("entry")
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	exit := f.NewBlock("exit")
	f.Connect(entry, left)
	f.Connect(entry, right)
	f.Connect(left, exit)
	f.Connect(right, exit)

	c := f.NewParam("c", ir.I64)
	entry.Append(c)
	a := entry.NewInstr(ir.OpSlot, ir.PtrTo(ir.I64))
	entry.NewInstr(ir.OpCondBr, nil, c)

	one := left.NewInstr(ir.OpConst, ir.I64)
	one.AuxInt = 1
	left.NewInstr(ir.OpStore, nil, a, one)
	left.NewInstr(ir.OpBr, nil)

	two := right.NewInstr(ir.OpConst, ir.I64)
	two.AuxInt = 2
	right.NewInstr(ir.OpStore, nil, a, two)
	right.NewInstr(ir.OpBr, nil)

	ld := exit.NewInstr(ir.OpLoad, ir.I64, a)
	exit.NewInstr(ir.OpRet, nil, ld)

	stats := run(f)
	if stats.General != 1 || stats.PhisPlaced != 1 {
		t.Fatalf("stats = %+v, want one general promotion with one phi", stats)
	}

	phi := exit.Instrs[0]
	if phi.Op != ir.OpPhi {
		t.Fatalf("exit does not start with a phi, got %s", phi.Op)
	}
	if got := retValue(f); got != phi {
		t.Errorf("function returns %s, want the phi", got)
	}
	want := map[*ir.Block]*ir.Instr{left: one, right: two}
	for i, pred := range exit.Preds {
		if phi.Args[i] != want[pred] {
			t.Errorf("phi operand for %s = %s, want %s", pred, phi.Args[i], want[pred])
		}
	}
	if err := ir.Verify(f); err != nil {
		t.Errorf("promoted function fails verification: %v", err)
	}
}

func TestGeneralPromotionLoop(t *testing.T) {
	// entry -> head; head -> {body, exit}; body -> head
	// The slot is stored in entry and body, loaded in head and exit: the
	// loop header needs a phi merging the entry value and the body value.
	f := ir.NewFunc("f")
	entry := f.NewBlock("entry")
	head := f.NewBlock("head")
	body := f.NewBlock("body")
	exit := f.NewBlock("exit")
	f.Connect(entry, head)
	f.Connect(head, body)
	f.Connect(head, exit)
	f.Connect(body, head)

	x := f.NewParam("x", ir.I64)
	entry.Append(x)
	a := entry.NewInstr(ir.OpSlot, ir.PtrTo(ir.I64))
	entry.NewInstr(ir.OpStore, nil, a, x)
	entry.NewInstr(ir.OpBr, nil)

	cond := head.NewInstr(ir.OpLoad, ir.I64, a)
	head.NewInstr(ir.OpCondBr, nil, cond)

	next := body.NewInstr(ir.OpConst, ir.I64)
	next.AuxInt = 9
	body.NewInstr(ir.OpStore, nil, a, next)
	body.NewInstr(ir.OpBr, nil)

	ld := exit.NewInstr(ir.OpLoad, ir.I64, a)
	exit.NewInstr(ir.OpRet, nil, ld)

	stats := run(f)
	if stats.General != 1 {
		t.Fatalf("stats = %+v, want one general promotion", stats)
	}

	phi := head.Instrs[0]
	if phi.Op != ir.OpPhi {
		t.Fatalf("loop header does not start with a phi")
	}
	want := map[*ir.Block]*ir.Instr{entry: x, body: next}
	for i, pred := range head.Preds {
		if phi.Args[i] != want[pred] {
			t.Errorf("phi operand for %s = %s, want %s", pred, phi.Args[i], want[pred])
		}
	}
	// Both the branch condition and the exit load observe the phi.
	if head.Terminator().Args[0] != phi {
		t.Error("loop condition does not read the phi")
	}
	if got := retValue(f); got != phi {
		t.Errorf("exit returns %s, want the phi", got)
	}
	if err := ir.Verify(f); err != nil {
		t.Errorf("promoted function fails verification: %v", err)
	}
}

func TestLoadWithoutStoreReadsUndef(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	ld := e.b.NewInstr(ir.OpLoad, ir.I64, a)
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if stats.Promoted() != 1 {
		t.Fatalf("stats = %+v, want one promotion", stats)
	}
	got := retValue(e.f)
	if got == nil || got.Op != ir.OpUndef {
		t.Errorf("function returns %v, want undef", got)
	}
}

func TestNonNullObserver(t *testing.T) {
	e := newMemEnv()
	p := e.f.NewParam("p", ir.PtrTo(ir.I8))
	e.b.InsertFront(p)
	a := e.slot(ir.PtrTo(ir.I8))
	e.b.NewInstr(ir.OpStore, nil, a, p)
	ld := e.b.NewInstr(ir.OpLoad, ir.PtrTo(ir.I8), a)
	ld.Meta.NonNull = true
	e.b.NewInstr(ir.OpRet, nil, ld)

	var seen []*ir.Instr
	run(e.f, WithNonNullObserver(func(v *ir.Instr) {
		seen = append(seen, v)
	}))
	if len(seen) != 1 || seen[0] != p {
		t.Errorf("observer saw %v, want [p]", seen)
	}
}

func TestVolatileSlotLeftAlone(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	st := e.b.NewInstr(ir.OpStore, nil, a, e.intConst(1))
	st.Volatile = true
	ld := e.b.NewInstr(ir.OpLoad, ir.I64, a)
	ld.Volatile = true
	e.b.NewInstr(ir.OpRet, nil, ld)

	stats := run(e.f)
	if stats.Promoted() != 0 {
		t.Errorf("volatile slot was promoted: %+v", stats)
	}
	if len(e.f.Slots()) != 1 {
		t.Error("volatile slot removed")
	}
}
