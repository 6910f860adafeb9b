package ir

import "fmt"

// ID is a stable per-function instruction handle. IDs are never reused
// within a function, so side tables keyed by ID survive instruction
// insertion and deletion.
type ID int32

// Op is the instruction opcode.
type Op uint8

const (
	OpInvalid Op = iota

	// Values
	OpParam   // function parameter
	OpConst   // integer or float constant (AuxInt / AuxFloat)
	OpUndef   // unspecified value of the result type
	OpSlot    // stack allocation; result is a pointer to the frame slot
	OpLoad    // Args: ptr
	OpBitCast // Args: value or pointer; reinterpret as result type
	OpPhi     // Args parallel to Block.Preds

	// Effects
	OpStore    // Args: ptr, value
	OpMemCopy  // Args: dst, src, length (Const)
	OpLifetime // Args: ptr; AuxInt: LifetimeStart or LifetimeEnd

	// Terminators
	OpBr     // one successor
	OpCondBr // Args: cond; Succs[0] taken, Succs[1] fallthrough
	OpRet    // Args: optional value
)

// Lifetime marker kinds, stored in AuxInt.
const (
	LifetimeStart = 0
	LifetimeEnd   = 1
)

var opNames = [...]string{
	OpInvalid:  "invalid",
	OpParam:    "param",
	OpConst:    "const",
	OpUndef:    "undef",
	OpSlot:     "slot",
	OpLoad:     "load",
	OpBitCast:  "bitcast",
	OpPhi:      "phi",
	OpStore:    "store",
	OpMemCopy:  "memcopy",
	OpLifetime: "lifetime",
	OpBr:       "br",
	OpCondBr:   "condbr",
	OpRet:      "ret",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	return op == OpBr || op == OpCondBr || op == OpRet
}

// Meta carries the memory metadata the optimizer must preserve verbatim
// when it rewrites an operation: alignment, an opaque alias-scope tag, and
// a non-null fact attached to pointer loads.
type Meta struct {
	Alias   string
	Align   int
	NonNull bool
}

// Instr is a single instruction. The zero value is not usable; create
// instructions through Func.NewInstr or the Block builder methods.
type Instr struct {
	ID       ID
	Op       Op
	Type     *Type // result type; nil for pure effects and terminators
	Name     string
	Args     []*Instr
	Volatile bool
	Dynamic  bool // slots only: length known only at runtime
	AuxInt   int64
	AuxFloat float64
	Meta     Meta

	blk   *Block
	users []*Instr // instructions referencing this one, with multiplicity
}

// Parent returns the block containing v, or nil if v is detached.
func (v *Instr) Parent() *Block {
	return v.blk
}

// Users returns a snapshot of the instructions using v. The copy is safe
// to iterate while the underlying use list is being rewritten.
func (v *Instr) Users() []*Instr {
	return append([]*Instr(nil), v.users...)
}

// NumUsers returns the number of uses of v, counting multiplicity.
func (v *Instr) NumUsers() int {
	return len(v.users)
}

// Elem returns the pointee type of a pointer-valued instruction.
func (v *Instr) Elem() *Type {
	if v.Type == nil || !v.Type.IsPtr() {
		panic(fmt.Sprintf("ir: Elem on non-pointer %s", v.Op))
	}
	return v.Type.Elem
}

// SetArg replaces operand i with arg, updating use lists on both sides.
// The old operand slot may be nil (phi operands start unfilled).
func (v *Instr) SetArg(i int, arg *Instr) {
	if old := v.Args[i]; old != nil {
		old.removeUser(v)
	}
	v.Args[i] = arg
	if arg != nil {
		arg.users = append(arg.users, v)
	}
}

func (v *Instr) addUses() {
	for _, a := range v.Args {
		if a != nil {
			a.users = append(a.users, v)
		}
	}
}

func (v *Instr) dropUses() {
	for _, a := range v.Args {
		if a != nil {
			a.removeUser(v)
		}
	}
}

// removeUser removes one occurrence of u from v's use list.
func (v *Instr) removeUser(u *Instr) {
	for i, w := range v.users {
		if w == u {
			last := len(v.users) - 1
			v.users[i] = v.users[last]
			v.users[last] = nil
			v.users = v.users[:last]
			return
		}
	}
	panic(fmt.Sprintf("ir: %s is not a user of %s", u.Op, v.Op))
}

// ReplaceAllUses rewires every use of v to point at w instead. v's use
// list is empty afterwards.
func (v *Instr) ReplaceAllUses(w *Instr) {
	if v == w {
		panic("ir: ReplaceAllUses with self")
	}
	for _, u := range v.Users() {
		for i, a := range u.Args {
			if a == v {
				u.Args[i] = w
				v.removeUser(u)
				w.users = append(w.users, u)
			}
		}
	}
}

func (v *Instr) String() string {
	if v.Name != "" {
		return "$" + v.Name
	}
	return fmt.Sprintf("v%d", v.ID)
}
