package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mengluoML/julia/ir"
	"github.com/mengluoML/julia/irtext/internal/parser"
	"github.com/mengluoML/julia/irtext/internal/token"
)

// Parse reads a textual module.
func Parse(input string) (*ir.Module, error) {
	return parser.New(token.Tokenize(input)).Parse()
}

// ParseFunc parses a module expected to contain exactly one function and
// returns it. Handy in tests and tools.
func ParseFunc(input string) (*ir.Func, error) {
	m, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if len(m.Funcs) != 1 {
		return nil, fmt.Errorf("irtext: expected one function, got %d", len(m.Funcs))
	}
	return m.Funcs[0], nil
}

// Print renders a module in the same form Parse accepts.
func Print(m *ir.Module) string {
	var b strings.Builder
	b.WriteString("(module")
	for _, f := range m.Funcs {
		b.WriteByte('\n')
		printFunc(&b, f)
	}
	b.WriteString(")\n")
	return b.String()
}

// PrintFunc renders a single function wrapped in a module form.
func PrintFunc(f *ir.Func) string {
	return Print(&ir.Module{Funcs: []*ir.Func{f}})
}

type printer struct {
	names  map[*ir.Instr]string
	blocks map[*ir.Block]string
}

func printFunc(b *strings.Builder, f *ir.Func) {
	p := &printer{
		names:  make(map[*ir.Instr]string),
		blocks: make(map[*ir.Block]string),
	}
	p.assignNames(f)

	fmt.Fprintf(b, "  (func $%s", f.Name)
	for _, param := range f.Params {
		fmt.Fprintf(b, "\n    (param %s %s)", p.name(param), typeString(param.Type))
	}
	if f.Result != nil {
		fmt.Fprintf(b, "\n    (result %s)", typeString(f.Result))
	}
	for _, blk := range f.Blocks {
		fmt.Fprintf(b, "\n    (block %s", p.blockName(blk))
		for _, v := range blk.Instrs {
			b.WriteString("\n      ")
			p.printInstr(b, v)
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
}

// assignNames picks a unique $-name for every value-producing instruction
// and every block, preferring the authored name when it is unambiguous.
func (p *printer) assignNames(f *ir.Func) {
	taken := make(map[string]bool)
	pick := func(v *ir.Instr) {
		if v.Name != "" && !taken["$"+v.Name] {
			p.names[v] = "$" + v.Name
		} else {
			p.names[v] = fmt.Sprintf("$v%d", v.ID)
		}
		taken[p.names[v]] = true
	}
	for _, param := range f.Params {
		pick(param)
	}
	for _, blk := range f.Blocks {
		for _, v := range blk.Instrs {
			if v.Type != nil {
				pick(v)
			}
		}
	}

	blockTaken := make(map[string]bool)
	for _, blk := range f.Blocks {
		name := "$" + blk.Name
		if blk.Name == "" || blockTaken[name] {
			name = fmt.Sprintf("$b%d", blk.Index)
		}
		p.blocks[blk] = name
		blockTaken[name] = true
	}
}

func (p *printer) name(v *ir.Instr) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	return fmt.Sprintf("$v%d", v.ID)
}

func (p *printer) blockName(b *ir.Block) string {
	return p.blocks[b]
}

func (p *printer) printInstr(b *strings.Builder, v *ir.Instr) {
	switch v.Op {
	case ir.OpSlot:
		fmt.Fprintf(b, "(slot %s %s", p.name(v), typeString(v.Elem()))
		if v.Dynamic {
			b.WriteString(" dynamic")
		}
		b.WriteByte(')')
	case ir.OpConst:
		if v.Type.Kind == ir.KindFloat {
			fmt.Fprintf(b, "(const %s %s %s)", p.name(v), typeString(v.Type),
				formatFloat(v.AuxFloat))
		} else {
			fmt.Fprintf(b, "(const %s %s %d)", p.name(v), typeString(v.Type), v.AuxInt)
		}
	case ir.OpUndef:
		fmt.Fprintf(b, "(undef %s %s)", p.name(v), typeString(v.Type))
	case ir.OpLoad:
		fmt.Fprintf(b, "(load %s %s %s", p.name(v), typeString(v.Type), p.name(v.Args[0]))
		p.printMemSuffix(b, v)
		b.WriteByte(')')
	case ir.OpStore:
		fmt.Fprintf(b, "(store %s %s", p.name(v.Args[0]), p.name(v.Args[1]))
		p.printMemSuffix(b, v)
		b.WriteByte(')')
	case ir.OpMemCopy:
		fmt.Fprintf(b, "(memcopy %s %s %s", p.name(v.Args[0]), p.name(v.Args[1]), p.name(v.Args[2]))
		p.printMemSuffix(b, v)
		b.WriteByte(')')
	case ir.OpLifetime:
		if v.AuxInt == ir.LifetimeEnd {
			fmt.Fprintf(b, "(lifetime.end %s)", p.name(v.Args[0]))
		} else {
			fmt.Fprintf(b, "(lifetime.start %s)", p.name(v.Args[0]))
		}
	case ir.OpBitCast:
		fmt.Fprintf(b, "(bitcast %s %s %s)", p.name(v), typeString(v.Type), p.name(v.Args[0]))
	case ir.OpPhi:
		fmt.Fprintf(b, "(phi %s %s", p.name(v), typeString(v.Type))
		for i, arg := range v.Args {
			if arg == nil {
				continue
			}
			fmt.Fprintf(b, " (%s %s)", p.blockName(v.Parent().Preds[i]), p.name(arg))
		}
		b.WriteByte(')')
	case ir.OpBr:
		fmt.Fprintf(b, "(br %s)", p.blockName(v.Parent().Succs[0]))
	case ir.OpCondBr:
		fmt.Fprintf(b, "(condbr %s %s %s)", p.name(v.Args[0]),
			p.blockName(v.Parent().Succs[0]), p.blockName(v.Parent().Succs[1]))
	case ir.OpRet:
		if len(v.Args) > 0 {
			fmt.Fprintf(b, "(ret %s)", p.name(v.Args[0]))
		} else {
			b.WriteString("(ret)")
		}
	default:
		fmt.Fprintf(b, "(%s)", v.Op)
	}
}

func (p *printer) printMemSuffix(b *strings.Builder, v *ir.Instr) {
	if v.Volatile {
		b.WriteString(" volatile")
	}
	if v.Meta.Align != 0 {
		fmt.Fprintf(b, " (align %d)", v.Meta.Align)
	}
	if v.Meta.Alias != "" {
		fmt.Fprintf(b, " (alias %s)", v.Meta.Alias)
	}
	if v.Meta.NonNull {
		b.WriteString(" nonnull")
	}
}

func typeString(t *ir.Type) string {
	switch t.Kind {
	case ir.KindPtr:
		return "(ptr " + typeString(t.Elem) + ")"
	case ir.KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	default:
		return fmt.Sprintf("i%d", t.Bits)
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	// keep the literal recognizable as a number to the tokenizer
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
