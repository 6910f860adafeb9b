// Package julia implements stack-slot promotion (mem2reg) over a small
// SSA intermediate representation.
//
// The pass rewrites loads and stores of non-escaping stack slots into
// plain SSA data flow, placing phi nodes on the iterated dominance
// frontier where control flow merges conflicting definitions. Bulk
// copies between whole slots are split into load/store pairs first, so
// chains of copies promote along with the slots they connect.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	julia/            Root package tying parsing, verification, and promotion together
//	├── ir/           Instruction set, CFG, use lists, and structural verifier
//	├── irtext/       Textual s-expression reader and writer for the IR
//	├── dom/          Dominator trees and dominance frontiers
//	├── mem2reg/      The promotion pass: analysis, canonicalization, renaming
//	└── errors/       Structured error types shared by all phases
//
// # Quick Start
//
// Optimize textual IR:
//
//	out, stats, err := julia.Run(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("promoted %d slots\n%s", stats.Promoted(), out)
//
// Or drive the pieces directly when the IR is built programmatically:
//
//	dt := dom.Build(f)
//	df := dom.BuildFrontier(dt)
//	stats := mem2reg.Promote(f, dt, df)
//
// # Correctness Boundaries
//
// Promotion only touches slots the analysis proves safe: the address
// never escapes, every access is a full-width, non-volatile load or
// store (or a whole-slot copy), and dynamically sized slots are left
// alone. Everything else is preserved byte for byte, including volatile
// accesses and memory metadata on rewritten operations.
package julia
