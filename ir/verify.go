package ir

import (
	"fmt"

	irerrors "github.com/mengluoML/julia/errors"
)

// Verify checks the structural invariants the optimizer relies on:
// terminated blocks, symmetric CFG edges, phi arity, operand placement,
// and memory-operation typing. It returns the first violation found.
func Verify(f *Func) error {
	if len(f.Blocks) == 0 {
		return irerrors.InvalidCFG(f.Name, "", "function has no blocks")
	}
	if len(f.Entry().Preds) > 0 {
		return irerrors.InvalidCFG(f.Name, f.Entry().Name, "entry block has predecessors")
	}

	for _, b := range f.Blocks {
		if err := verifyBlock(f, b); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(f *Func, b *Block) error {
	term := b.Terminator()
	if term == nil {
		return irerrors.InvalidCFG(f.Name, b.Name, "block is not terminated")
	}

	for i, v := range b.Instrs {
		if v.Op.IsTerminator() && i != len(b.Instrs)-1 {
			return irerrors.InvalidCFG(f.Name, b.Name,
				fmt.Sprintf("%s terminator in mid-block position %d", v.Op, i))
		}
		if v.Op == OpPhi && i > 0 && b.Instrs[i-1].Op != OpPhi {
			return irerrors.InvalidCFG(f.Name, b.Name, "phi after non-phi instruction")
		}
	}

	wantSuccs := -1
	switch term.Op {
	case OpBr:
		wantSuccs = 1
	case OpCondBr:
		wantSuccs = 2
	case OpRet:
		wantSuccs = 0
	}
	if len(b.Succs) != wantSuccs {
		return irerrors.InvalidCFG(f.Name, b.Name,
			fmt.Sprintf("%s with %d successors", term.Op, len(b.Succs)))
	}

	for _, s := range b.Succs {
		if s.PredIndex(b) < 0 {
			return irerrors.InvalidCFG(f.Name, b.Name,
				fmt.Sprintf("successor %s does not list this block as predecessor", s.Name))
		}
	}
	for _, p := range b.Preds {
		found := false
		for _, s := range p.Succs {
			if s == b {
				found = true
				break
			}
		}
		if !found {
			return irerrors.InvalidCFG(f.Name, b.Name,
				fmt.Sprintf("predecessor %s does not list this block as successor", p.Name))
		}
	}

	defined := make(map[*Instr]bool, len(b.Instrs))
	for _, v := range b.Instrs {
		if v.Op != OpPhi {
			for _, a := range v.Args {
				if a == nil {
					return irerrors.New(irerrors.PhaseVerify, irerrors.KindInvalidInput).
						Fn(f.Name).Block(b.Name).
						Detail("nil operand on %s", v.Op).Build()
				}
				if a.Parent() == b && !defined[a] {
					return irerrors.UseBeforeDef(f.Name, b.Name, a.String())
				}
			}
		}
		if err := verifyTypes(f, b, v); err != nil {
			return err
		}
		defined[v] = true
	}
	return nil
}

func verifyTypes(f *Func, b *Block, v *Instr) error {
	mismatch := func(detail string, args ...any) error {
		return irerrors.New(irerrors.PhaseVerify, irerrors.KindTypeMismatch).
			Fn(f.Name).Block(b.Name).
			Detail(detail, args...).Build()
	}

	switch v.Op {
	case OpSlot:
		if v.Type == nil || !v.Type.IsPtr() {
			return mismatch("slot %s has non-pointer type %s", v, v.Type)
		}
	case OpLoad:
		p := v.Args[0]
		if !p.Type.IsPtr() {
			return mismatch("load %s from non-pointer %s", v, p)
		}
		if !v.Type.Equal(p.Elem()) {
			return mismatch("load %s reads %s through %s pointer", v, v.Type, p.Type)
		}
	case OpStore:
		p, val := v.Args[0], v.Args[1]
		if !p.Type.IsPtr() {
			return mismatch("store through non-pointer %s", p)
		}
		if !val.Type.Equal(p.Elem()) {
			return mismatch("store of %s through %s pointer", val.Type, p.Type)
		}
	case OpMemCopy:
		dst, src, n := v.Args[0], v.Args[1], v.Args[2]
		if !dst.Type.IsPtr() || !src.Type.IsPtr() {
			return mismatch("memcopy with non-pointer operand")
		}
		if n.Type == nil || n.Type.Kind != KindInt {
			return mismatch("memcopy length has type %s", n.Type)
		}
	case OpBitCast:
		if !Compatible(v.Args[0].Type, v.Type) {
			return mismatch("bitcast from %s to incompatible %s", v.Args[0].Type, v.Type)
		}
	case OpLifetime:
		if !v.Args[0].Type.IsPtr() {
			return mismatch("lifetime marker on non-pointer %s", v.Args[0])
		}
	case OpPhi:
		if len(v.Args) != len(b.Preds) {
			return irerrors.InvalidCFG(f.Name, b.Name,
				fmt.Sprintf("phi %s has %d operands for %d predecessors", v, len(v.Args), len(b.Preds)))
		}
		for i, a := range v.Args {
			if a == nil {
				continue // unfilled during construction; printer rejects these later
			}
			if !a.Type.Equal(v.Type) {
				return mismatch("phi %s operand %d has type %s, want %s", v, i, a.Type, v.Type)
			}
		}
	case OpCondBr:
		if v.Args[0].Type == nil || v.Args[0].Type.Kind != KindInt {
			return mismatch("condbr on non-integer condition")
		}
	}
	return nil
}
