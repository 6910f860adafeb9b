package ir

import "testing"

func TestUseLists(t *testing.T) {
	f := NewFunc("f")
	b := f.NewBlock("entry")

	x := f.NewParam("x", I64)
	b.Append(x)
	slot := b.NewInstr(OpSlot, PtrTo(I64))
	st := b.NewInstr(OpStore, nil, slot, x)
	ld := b.NewInstr(OpLoad, I64, slot)
	b.NewInstr(OpRet, nil, ld)

	if got := slot.NumUsers(); got != 2 {
		t.Errorf("slot has %d users, want 2", got)
	}
	if got := x.NumUsers(); got != 1 {
		t.Errorf("x has %d users, want 1", got)
	}

	// Rewrite the load to the stored value and delete the memory ops.
	ld.ReplaceAllUses(x)
	if ld.NumUsers() != 0 {
		t.Fatalf("load still has users after ReplaceAllUses")
	}
	b.Remove(ld)
	b.Remove(st)
	if slot.NumUsers() != 0 {
		t.Errorf("slot has %d users after removing its ops", slot.NumUsers())
	}
	b.Remove(slot)

	if x.NumUsers() != 1 {
		t.Errorf("x has %d users, want 1 (the ret)", x.NumUsers())
	}
}

func TestRemovePanicsWithUsers(t *testing.T) {
	f := NewFunc("f")
	b := f.NewBlock("entry")
	c := b.NewInstr(OpConst, I64)
	b.NewInstr(OpRet, nil, c)

	defer func() {
		if recover() == nil {
			t.Error("Remove of a used instruction did not panic")
		}
	}()
	b.Remove(c)
}

func TestSetArgOnPhi(t *testing.T) {
	f := NewFunc("f")
	entry := f.NewBlock("entry")
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	exit := f.NewBlock("exit")
	f.Connect(entry, left)
	f.Connect(entry, right)
	f.Connect(left, exit)
	f.Connect(right, exit)

	a := entry.NewInstr(OpConst, I64)
	a.AuxInt = 1
	b := entry.NewInstr(OpConst, I64)
	b.AuxInt = 2

	phi := f.NewInstr(OpPhi, I64)
	phi.Args = make([]*Instr, len(exit.Preds))
	exit.InsertFront(phi)

	phi.SetArg(0, a)
	phi.SetArg(1, b)
	if a.NumUsers() != 1 || b.NumUsers() != 1 {
		t.Errorf("phi operands not registered as uses")
	}

	// Overwriting an operand drops the old use.
	phi.SetArg(1, a)
	if a.NumUsers() != 2 || b.NumUsers() != 0 {
		t.Errorf("SetArg overwrite: a=%d b=%d users", a.NumUsers(), b.NumUsers())
	}
}

func TestInsertOrder(t *testing.T) {
	f := NewFunc("f")
	b := f.NewBlock("entry")
	first := b.NewInstr(OpConst, I64)
	last := b.NewInstr(OpConst, I64)

	mid := f.NewInstr(OpConst, I64)
	b.InsertAfter(first, mid)
	front := f.NewInstr(OpConst, I64)
	b.InsertFront(front)

	want := []*Instr{front, first, mid, last}
	for i, v := range b.Instrs {
		if v != want[i] {
			t.Fatalf("instr %d = %s, want %s", i, v, want[i])
		}
	}
}

func TestTypeCompatible(t *testing.T) {
	tests := []struct {
		a, b *Type
		want bool
	}{
		{I64, F64, true},
		{I64, PtrTo(I8), false},
		{I64, I32, false},
		{F32, I32, true},
		{PtrTo(I64), PtrTo(I32), true},
		{nil, I64, false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.a, tt.b); got != tt.want {
			t.Errorf("Compatible(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
