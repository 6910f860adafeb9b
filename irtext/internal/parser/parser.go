package parser

import (
	"fmt"
	"strconv"
	"strings"

	irerrors "github.com/mengluoML/julia/errors"
	"github.com/mengluoML/julia/ir"
	"github.com/mengluoML/julia/irtext/internal/token"
)

// Parser builds an ir.Module from a token stream. Values must be defined
// before use, except phi operands and branch targets, which may refer
// forward and are resolved after a function's blocks are all parsed.
type Parser struct {
	tokens []token.Token
	pos    int

	fn     *ir.Func
	values map[string]*ir.Instr
	blocks map[string]*ir.Block
	edges  []pendingEdge
	phis   []pendingPhi
}

type pendingEdge struct {
	from *ir.Block
	to   string
	line int
}

type pendingPhi struct {
	phi   *ir.Instr
	block *ir.Block
	preds []string
	vals  []string
	line  int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes a (module ...) form.
func (p *Parser) Parse() (*ir.Module, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if err := p.keyword("module"); err != nil {
		return nil, err
	}

	mod := &ir.Module{}
	for {
		t := p.peek()
		if t == nil {
			return nil, irerrors.Syntax(0, "unexpected end of input in module")
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		f, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		mod.Funcs = append(mod.Funcs, f)
	}
	return mod, nil
}

func (p *Parser) parseFunc() (*ir.Func, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if err := p.keyword("func"); err != nil {
		return nil, err
	}
	name, err := p.dollarName()
	if err != nil {
		return nil, err
	}

	p.fn = ir.NewFunc(strings.TrimPrefix(name, "$"))
	p.values = make(map[string]*ir.Instr)
	p.blocks = make(map[string]*ir.Block)
	p.edges = nil
	p.phis = nil

	for {
		t := p.peek()
		if t == nil {
			return nil, irerrors.Syntax(0, "unexpected end of input in func %s", name)
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		switch kw.Value {
		case "param":
			if err := p.parseParam(); err != nil {
				return nil, err
			}
		case "result":
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			p.fn.Result = t
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
		case "block":
			if err := p.parseBlock(); err != nil {
				return nil, err
			}
		default:
			return nil, irerrors.Syntax(kw.Line, "unexpected %q in func", kw.Value)
		}
	}

	if err := p.resolveEdges(); err != nil {
		return nil, err
	}
	if err := p.resolvePhis(); err != nil {
		return nil, err
	}
	return p.fn, nil
}

func (p *Parser) parseParam() error {
	name, err := p.dollarName()
	if err != nil {
		return err
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	v := p.fn.NewParam(strings.TrimPrefix(name, "$"), t)
	return p.define(name, v, 0)
}

func (p *Parser) parseBlock() error {
	name, err := p.dollarName()
	if err != nil {
		return err
	}
	if _, dup := p.blocks[name]; dup {
		return irerrors.Duplicate(irerrors.PhaseParse, p.line(), name)
	}
	b := p.fn.NewBlock(strings.TrimPrefix(name, "$"))
	p.blocks[name] = b

	for {
		t := p.peek()
		if t == nil {
			return irerrors.Syntax(0, "unexpected end of input in block %s", name)
		}
		if t.Type == token.RParen {
			p.next()
			return nil
		}
		if err := p.parseInstr(b); err != nil {
			return err
		}
	}
}

func (p *Parser) parseInstr(b *ir.Block) error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	op, err := p.expect(token.Ident)
	if err != nil {
		return err
	}

	switch op.Value {
	case "slot":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		elem, err := p.parseType()
		if err != nil {
			return err
		}
		v := b.NewInstr(ir.OpSlot, ir.PtrTo(elem))
		if p.flag("dynamic") {
			v.Dynamic = true
		}
		if err := p.define(name, v, op.Line); err != nil {
			return err
		}

	case "const":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		num, err := p.expect(token.Number)
		if err != nil {
			return err
		}
		v := b.NewInstr(ir.OpConst, t)
		if t.Kind == ir.KindFloat {
			fv, err := strconv.ParseFloat(num.Value, 64)
			if err != nil {
				return irerrors.Syntax(num.Line, "bad float literal %q", num.Value)
			}
			v.AuxFloat = fv
		} else {
			iv, err := strconv.ParseInt(num.Value, 0, 64)
			if err != nil {
				return irerrors.Syntax(num.Line, "bad integer literal %q", num.Value)
			}
			v.AuxInt = iv
		}
		if err := p.define(name, v, op.Line); err != nil {
			return err
		}

	case "undef":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		if err := p.define(name, b.NewInstr(ir.OpUndef, t), op.Line); err != nil {
			return err
		}

	case "load":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		ptr, err := p.value()
		if err != nil {
			return err
		}
		v := b.NewInstr(ir.OpLoad, t, ptr)
		if err := p.memSuffix(v); err != nil {
			return err
		}
		if err := p.define(name, v, op.Line); err != nil {
			return err
		}
		return nil // memSuffix consumed the closing paren

	case "store":
		ptr, err := p.value()
		if err != nil {
			return err
		}
		val, err := p.value()
		if err != nil {
			return err
		}
		return p.memSuffix(b.NewInstr(ir.OpStore, nil, ptr, val))

	case "memcopy":
		dst, err := p.value()
		if err != nil {
			return err
		}
		src, err := p.value()
		if err != nil {
			return err
		}
		n, err := p.value()
		if err != nil {
			return err
		}
		return p.memSuffix(b.NewInstr(ir.OpMemCopy, nil, dst, src, n))

	case "lifetime.start", "lifetime.end":
		ptr, err := p.value()
		if err != nil {
			return err
		}
		v := b.NewInstr(ir.OpLifetime, nil, ptr)
		if op.Value == "lifetime.end" {
			v.AuxInt = ir.LifetimeEnd
		}

	case "bitcast":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		val, err := p.value()
		if err != nil {
			return err
		}
		if err := p.define(name, b.NewInstr(ir.OpBitCast, t, val), op.Line); err != nil {
			return err
		}

	case "phi":
		name, err := p.dollarName()
		if err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		phi := b.NewInstr(ir.OpPhi, t)
		pending := pendingPhi{phi: phi, block: b, line: op.Line}
		for p.peek() != nil && p.peek().Type == token.LParen {
			p.next()
			pred, err := p.dollarName()
			if err != nil {
				return err
			}
			val, err := p.dollarName()
			if err != nil {
				return err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return err
			}
			pending.preds = append(pending.preds, pred)
			pending.vals = append(pending.vals, val)
		}
		p.phis = append(p.phis, pending)
		if err := p.define(name, phi, op.Line); err != nil {
			return err
		}

	case "br":
		target, err := p.dollarName()
		if err != nil {
			return err
		}
		b.NewInstr(ir.OpBr, nil)
		p.edges = append(p.edges, pendingEdge{from: b, to: target, line: op.Line})

	case "condbr":
		cond, err := p.value()
		if err != nil {
			return err
		}
		then, err := p.dollarName()
		if err != nil {
			return err
		}
		els, err := p.dollarName()
		if err != nil {
			return err
		}
		b.NewInstr(ir.OpCondBr, nil, cond)
		p.edges = append(p.edges,
			pendingEdge{from: b, to: then, line: op.Line},
			pendingEdge{from: b, to: els, line: op.Line})

	case "ret":
		if t := p.peek(); t != nil && t.Type == token.Ident {
			val, err := p.value()
			if err != nil {
				return err
			}
			b.NewInstr(ir.OpRet, nil, val)
		} else {
			b.NewInstr(ir.OpRet, nil)
		}

	default:
		err := irerrors.Unsupported(irerrors.PhaseParse, fmt.Sprintf("instruction %q", op.Value))
		err.Line = op.Line
		return err
	}

	_, err = p.expect(token.RParen)
	return err
}

// memSuffix parses the optional volatile flag and metadata forms on a
// memory operation, consuming through the closing paren.
func (p *Parser) memSuffix(v *ir.Instr) error {
	for {
		t := p.peek()
		if t == nil {
			return irerrors.Syntax(0, "unexpected end of input in %s", v.Op)
		}
		switch {
		case t.Type == token.RParen:
			p.next()
			return nil
		case t.Type == token.Ident && t.Value == "volatile":
			p.next()
			v.Volatile = true
		case t.Type == token.Ident && t.Value == "nonnull":
			p.next()
			v.Meta.NonNull = true
		case t.Type == token.LParen:
			p.next()
			kw, err := p.expect(token.Ident)
			if err != nil {
				return err
			}
			switch kw.Value {
			case "align":
				num, err := p.expect(token.Number)
				if err != nil {
					return err
				}
				n, err := strconv.Atoi(num.Value)
				if err != nil {
					return irerrors.Syntax(num.Line, "bad alignment %q", num.Value)
				}
				v.Meta.Align = n
			case "alias":
				tag, err := p.expect(token.Ident)
				if err != nil {
					return err
				}
				v.Meta.Alias = tag.Value
			default:
				return irerrors.Syntax(kw.Line, "unknown metadata %q", kw.Value)
			}
			if _, err := p.expect(token.RParen); err != nil {
				return err
			}
		default:
			return irerrors.Syntax(t.Line, "unexpected %q after %s", t.Value, v.Op)
		}
	}
}

func (p *Parser) parseType() (*ir.Type, error) {
	t := p.next()
	if t == nil {
		return nil, irerrors.Syntax(0, "expected type")
	}
	if t.Type == token.LParen {
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if kw.Value != "ptr" {
			return nil, irerrors.Syntax(kw.Line, "unknown type constructor %q", kw.Value)
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return ir.PtrTo(elem), nil
	}
	switch t.Value {
	case "i8":
		return ir.I8, nil
	case "i16":
		return ir.I16, nil
	case "i32":
		return ir.I32, nil
	case "i64":
		return ir.I64, nil
	case "i128":
		return ir.I128, nil
	case "f32":
		return ir.F32, nil
	case "f64":
		return ir.F64, nil
	}
	return nil, irerrors.Syntax(t.Line, "unknown type %q", t.Value)
}

func (p *Parser) resolveEdges() error {
	for _, e := range p.edges {
		to, ok := p.blocks[e.to]
		if !ok {
			return irerrors.UnknownIdent(irerrors.PhaseParse, e.line, e.to)
		}
		p.fn.Connect(e.from, to)
	}
	return nil
}

func (p *Parser) resolvePhis() error {
	for _, pending := range p.phis {
		phi := pending.phi
		phi.Args = make([]*ir.Instr, len(pending.block.Preds))
		for i, predName := range pending.preds {
			pred, ok := p.blocks[predName]
			if !ok {
				return irerrors.UnknownIdent(irerrors.PhaseParse, pending.line, predName)
			}
			idx := pending.block.PredIndex(pred)
			if idx < 0 {
				return irerrors.Syntax(pending.line, "%s is not a predecessor of %s", predName, pending.block.Name)
			}
			val, ok := p.values[pending.vals[i]]
			if !ok {
				return irerrors.UnknownIdent(irerrors.PhaseParse, pending.line, pending.vals[i])
			}
			phi.SetArg(idx, val)
		}
	}
	return nil
}

// value resolves a $name operand reference.
func (p *Parser) value() (*ir.Instr, error) {
	name, err := p.dollarName()
	if err != nil {
		return nil, err
	}
	v, ok := p.values[name]
	if !ok {
		return nil, irerrors.UnknownIdent(irerrors.PhaseParse, p.line(), name)
	}
	return v, nil
}

func (p *Parser) define(name string, v *ir.Instr, line int) error {
	if _, dup := p.values[name]; dup {
		return irerrors.Duplicate(irerrors.PhaseParse, line, name)
	}
	if v.Name == "" {
		v.Name = strings.TrimPrefix(name, "$")
	}
	p.values[name] = v
	return nil
}

func (p *Parser) dollarName() (string, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(t.Value, "$") {
		return "", irerrors.Syntax(t.Line, "expected $-name, got %q", t.Value)
	}
	return t.Value, nil
}

// flag consumes an optional bare identifier.
func (p *Parser) flag(name string) bool {
	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == name {
		p.next()
		return true
	}
	return false
}

func (p *Parser) keyword(name string) error {
	t, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if t.Value != name {
		return irerrors.Syntax(t.Line, "expected %q, got %q", name, t.Value)
	}
	return nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, irerrors.Syntax(0, "unexpected end of input")
	}
	if t.Type != typ {
		return nil, irerrors.Syntax(t.Line, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

func (p *Parser) line() int {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		return p.tokens[p.pos-1].Line
	}
	return 0
}
