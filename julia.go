package julia

import (
	"github.com/mengluoML/julia/dom"
	irerrors "github.com/mengluoML/julia/errors"
	"github.com/mengluoML/julia/ir"
	"github.com/mengluoML/julia/irtext"
	"github.com/mengluoML/julia/mem2reg"
)

// Promote verifies f, runs stack-slot promotion on it, and verifies the
// result. The function is rewritten in place.
func Promote(f *ir.Func, opts ...mem2reg.Option) (mem2reg.Stats, error) {
	if err := ir.Verify(f); err != nil {
		return mem2reg.Stats{}, err
	}
	dt := dom.Build(f)
	df := dom.BuildFrontier(dt)
	stats := mem2reg.Promote(f, dt, df, opts...)
	if err := ir.Verify(f); err != nil {
		return stats, irerrors.Wrap(irerrors.PhaseOpt, irerrors.KindInvalidInput, err,
			"promotion left "+f.Name+" malformed")
	}
	return stats, nil
}

// PromoteModule promotes every function in m and returns aggregate stats.
func PromoteModule(m *ir.Module, opts ...mem2reg.Option) (mem2reg.Stats, error) {
	var total mem2reg.Stats
	for _, f := range m.Funcs {
		stats, err := Promote(f, opts...)
		if err != nil {
			return total, err
		}
		total.SingleStore += stats.SingleStore
		total.SingleBlock += stats.SingleBlock
		total.General += stats.General
		total.DeadSlots += stats.DeadSlots
		total.PhisPlaced += stats.PhisPlaced
		total.CopiesSplit += stats.CopiesSplit
	}
	return total, nil
}

// Run parses textual IR, promotes every function, and returns the
// optimized module text along with aggregate stats.
func Run(input string, opts ...mem2reg.Option) (string, mem2reg.Stats, error) {
	m, err := irtext.Parse(input)
	if err != nil {
		return "", mem2reg.Stats{}, err
	}
	stats, err := PromoteModule(m, opts...)
	if err != nil {
		return "", stats, err
	}
	return irtext.Print(m), stats, nil
}
