package mem2reg

import (
	"testing"

	"github.com/mengluoML/julia/ir"
)

// memEnv is a single-block function under construction for use-pattern
// tests.
type memEnv struct {
	f *ir.Func
	b *ir.Block
}

func newMemEnv() *memEnv {
	f := ir.NewFunc("f")
	return &memEnv{f: f, b: f.NewBlock("entry")}
}

func (e *memEnv) slot(elem *ir.Type) *ir.Instr {
	return e.b.NewInstr(ir.OpSlot, ir.PtrTo(elem))
}

func (e *memEnv) intConst(v int64) *ir.Instr {
	c := e.b.NewInstr(ir.OpConst, ir.I64)
	c.AuxInt = v
	return c
}

func (e *memEnv) copyBytes(dst, src *ir.Instr, n int64) *ir.Instr {
	return e.b.NewInstr(ir.OpMemCopy, nil, dst, src, e.intConst(n))
}

func TestPromotableLoadStore(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	v := e.intConst(7)
	e.b.NewInstr(ir.OpStore, nil, a, v)
	e.b.NewInstr(ir.OpLoad, ir.I64, a)

	if !isPromotable(a) {
		t.Error("plain load/store slot should be promotable")
	}
}

func TestNotPromotable(t *testing.T) {
	tests := []struct {
		name  string
		build func(e *memEnv) *ir.Instr
	}{
		{
			name: "dynamic slot",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				a.Dynamic = true
				return a
			},
		},
		{
			name: "volatile load",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				ld := e.b.NewInstr(ir.OpLoad, ir.I64, a)
				ld.Volatile = true
				return a
			},
		},
		{
			name: "volatile store",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				st := e.b.NewInstr(ir.OpStore, nil, a, e.intConst(0))
				st.Volatile = true
				return a
			},
		},
		{
			name: "address stored away",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.PtrTo(ir.I64))
				b := e.slot(ir.I64)
				e.b.NewInstr(ir.OpStore, nil, a, b)
				return b
			},
		},
		{
			name: "partial copy",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				b := e.slot(ir.I128)
				e.copyBytes(b, a, 4)
				return a
			},
		},
		{
			name: "volatile copy",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				b := e.slot(ir.I64)
				cp := e.copyBytes(b, a, 8)
				cp.Volatile = true
				return a
			},
		},
		{
			name: "non-constant copy length",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				b := e.slot(ir.I64)
				n := e.f.NewParam("n", ir.I64)
				e.b.InsertFront(n)
				e.b.NewInstr(ir.OpMemCopy, nil, b, a, n)
				return a
			},
		},
		{
			name: "equal size incompatible endpoint",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				b := e.slot(ir.PtrTo(ir.I8)) // 8-byte pointer payload, not bit-castable to i64
				e.copyBytes(b, a, 8)
				return a
			},
		},
		{
			name: "cast used by load",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				cast := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.F64), a)
				e.b.NewInstr(ir.OpLoad, ir.F64, cast)
				return a
			},
		},
		{
			name: "cast of cast",
			build: func(e *memEnv) *ir.Instr {
				a := e.slot(ir.I64)
				c1 := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.F64), a)
				c2 := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.I64), c1)
				b := e.slot(ir.I64)
				e.copyBytes(b, c2, 8)
				return a
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newMemEnv()
			if isPromotable(tt.build(e)) {
				t.Error("slot should not be promotable")
			}
		})
	}
}

func TestPromotableThroughCast(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	b := e.slot(ir.F64)
	castA := e.b.NewInstr(ir.OpBitCast, ir.PtrTo(ir.F64), a)
	lt := e.b.NewInstr(ir.OpLifetime, nil, castA)
	lt.AuxInt = ir.LifetimeStart
	e.copyBytes(b, castA, 8)

	if !isPromotable(a) {
		t.Error("one-hop cast feeding a full copy and lifetime markers should be promotable")
	}
	if !isPromotable(b) {
		t.Error("compatible other endpoint should stay promotable")
	}
}

func TestWholeCopyBetweenEqualSlots(t *testing.T) {
	e := newMemEnv()
	a := e.slot(ir.I64)
	b := e.slot(ir.I64)
	e.copyBytes(b, a, 8)

	if !isPromotable(a) || !isPromotable(b) {
		t.Error("full-size copy between same-typed slots should keep both promotable")
	}
}

func TestSizeMismatchedEndpointStillEligible(t *testing.T) {
	// Copying a's full 8 bytes into a 16-byte slot is whole-object for a
	// and partial for b: a stays eligible, b does not.
	e := newMemEnv()
	a := e.slot(ir.I64)
	b := e.slot(ir.I128)
	e.copyBytes(b, a, 8)

	if !isPromotable(a) {
		t.Error("source slot with full-size copy should be promotable")
	}
	if isPromotable(b) {
		t.Error("destination with partial copy should not be promotable")
	}
}
