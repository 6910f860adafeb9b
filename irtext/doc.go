// Package irtext reads and writes the s-expression form of the IR.
//
// A module is a list of functions; a function is parameters, an optional
// result type, and named blocks of instructions:
//
//	(module
//	  (func $main
//	    (param $x i64)
//	    (result i64)
//	    (block $entry
//	      (slot $a i64)
//	      (store $a $x)
//	      (load $r i64 $a)
//	      (ret $r))))
//
// Values must be defined before use except phi operands and branch
// targets, which may refer forward within the function. Memory
// operations accept an optional volatile flag and (align N), (alias tag)
// and nonnull metadata. Print emits the same form Parse accepts.
package irtext
