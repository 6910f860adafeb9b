// Package ir defines the SSA intermediate representation the optimizer
// works on: modules of functions, functions of basic blocks, and blocks of
// instructions.
//
// # Instructions
//
// An instruction is a tagged variant: an Op plus an operand list. There is
// no instruction class hierarchy; consumers dispatch on Op with a switch.
// Every instruction has a stable integer ID assigned by its owning
// function, so side tables (ordering indexes, dominator numbering) can be
// keyed by identity without relying on pointer values.
//
// Instructions that produce a value carry a result Type. Use edges are
// bidirectional: an instruction's Args point at its operands, and each
// operand tracks its users. Mutators (ReplaceAllUses, Block.Remove,
// SetArg) keep both sides consistent.
//
// # Memory operations
//
// Stack slots (OpSlot) produce a pointer to a fresh fixed-size allocation
// in the function frame. The memory ops that touch them:
//
//	Load      result = *ptr
//	Store     *ptr = value
//	MemCopy   copy n bytes from src to dst (n is a Const operand)
//	Lifetime  liveness marker, no value semantics
//	BitCast   reinterpret a value or pointer as an equal-sized type
//
// Loads, stores, and copies may be marked Volatile, which excludes them
// from promotion.
//
// # Control flow
//
// Blocks carry explicit Pred/Succ edge lists. Terminators (Br, CondBr,
// Ret) do not reference blocks through operands; successor order is the
// edge order (CondBr: Succs[0] taken, Succs[1] fallthrough). Phi operands
// are parallel to the block's Preds list.
package ir
