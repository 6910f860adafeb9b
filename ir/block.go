package ir

import "fmt"

// Block is a basic block: an ordered instruction list ending in a
// terminator, plus explicit predecessor and successor edges.
type Block struct {
	Fn     *Func
	Name   string
	Index  int // position in Fn.Blocks; dense, usable as an array index
	Instrs []*Instr
	Preds  []*Block
	Succs  []*Block
}

// Append adds a detached instruction at the end of b.
func (b *Block) Append(v *Instr) {
	if v.blk != nil {
		panic(fmt.Sprintf("ir: %s already placed in %s", v, v.blk.Name))
	}
	v.blk = b
	b.Instrs = append(b.Instrs, v)
}

// NewInstr creates an instruction and appends it to b.
func (b *Block) NewInstr(op Op, t *Type, args ...*Instr) *Instr {
	v := b.Fn.NewInstr(op, t, args...)
	b.Append(v)
	return v
}

// InsertBefore places a detached instruction immediately before mark,
// which must be in b.
func (b *Block) InsertBefore(mark, v *Instr) {
	b.insertAt(b.indexOf(mark), v)
}

// InsertAfter places a detached instruction immediately after mark.
func (b *Block) InsertAfter(mark, v *Instr) {
	b.insertAt(b.indexOf(mark)+1, v)
}

// InsertFront places a detached instruction at the head of b, before any
// existing instructions. Phis placed by SSA construction go here.
func (b *Block) InsertFront(v *Instr) {
	b.insertAt(0, v)
}

func (b *Block) insertAt(i int, v *Instr) {
	if v.blk != nil {
		panic(fmt.Sprintf("ir: %s already placed in %s", v, v.blk.Name))
	}
	v.blk = b
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[i+1:], b.Instrs[i:])
	b.Instrs[i] = v
}

// Remove unlinks v from b and drops v's use edges on its operands. v must
// have no remaining users.
func (b *Block) Remove(v *Instr) {
	if len(v.users) > 0 {
		panic(fmt.Sprintf("ir: removing %s with %d remaining users", v, len(v.users)))
	}
	i := b.indexOf(v)
	copy(b.Instrs[i:], b.Instrs[i+1:])
	b.Instrs = b.Instrs[:len(b.Instrs)-1]
	v.dropUses()
	v.blk = nil
}

func (b *Block) indexOf(v *Instr) int {
	for i, w := range b.Instrs {
		if w == v {
			return i
		}
	}
	panic(fmt.Sprintf("ir: %s not in block %s", v, b.Name))
}

// Terminator returns the block's final instruction, or nil for an
// unterminated block.
func (b *Block) Terminator() *Instr {
	if n := len(b.Instrs); n > 0 && b.Instrs[n-1].Op.IsTerminator() {
		return b.Instrs[n-1]
	}
	return nil
}

// PredIndex returns the position of p in b's predecessor list, or -1.
// Phi operands use this index.
func (b *Block) PredIndex(p *Block) int {
	for i, q := range b.Preds {
		if q == p {
			return i
		}
	}
	return -1
}

func (b *Block) String() string {
	return b.Name
}
