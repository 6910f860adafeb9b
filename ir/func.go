package ir

import "fmt"

// Module is a set of named functions.
type Module struct {
	Funcs []*Func
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Func is a function body: parameters and a CFG of basic blocks. The
// first block is the entry; stack slots conventionally live there.
type Func struct {
	Name   string
	Params []*Instr
	Result *Type // nil for functions returning nothing
	Blocks []*Block

	nextID ID
}

// NewFunc creates an empty function.
func NewFunc(name string) *Func {
	return &Func{Name: name}
}

// Entry returns the entry block.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		panic(fmt.Sprintf("ir: function %s has no blocks", f.Name))
	}
	return f.Blocks[0]
}

// NewBlock appends a fresh block to f.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{Fn: f, Name: name, Index: len(f.Blocks)}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewInstr creates a detached instruction with use edges registered.
// Place it with Block.Append, InsertBefore, InsertAfter, or InsertFront.
func (f *Func) NewInstr(op Op, t *Type, args ...*Instr) *Instr {
	v := &Instr{ID: f.nextID, Op: op, Type: t, Args: args}
	f.nextID++
	v.addUses()
	return v
}

// NewParam appends a parameter value to f.
func (f *Func) NewParam(name string, t *Type) *Instr {
	p := f.NewInstr(OpParam, t)
	p.Name = name
	p.AuxInt = int64(len(f.Params))
	f.Params = append(f.Params, p)
	return p
}

// NumIDs returns an upper bound on instruction IDs in f, for sizing
// dense side tables.
func (f *Func) NumIDs() int {
	return int(f.nextID)
}

// Connect adds a CFG edge from a to b. Successor order is meaningful for
// CondBr; callers add the taken edge first.
func (f *Func) Connect(a, b *Block) {
	a.Succs = append(a.Succs, b)
	b.Preds = append(b.Preds, a)
}

// Slots returns the stack allocations in the entry block, the candidate
// set for promotion.
func (f *Func) Slots() []*Instr {
	var slots []*Instr
	for _, v := range f.Entry().Instrs {
		if v.Op == OpSlot {
			slots = append(slots, v)
		}
	}
	return slots
}
