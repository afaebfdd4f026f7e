package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/nikandfor/rssopt/funccall"
	"github.com/nikandfor/rssopt/internal/height"
	"github.com/nikandfor/rssopt/internal/hungarian"
	"github.com/nikandfor/rssopt/ir"
	"github.com/nikandfor/rssopt/sched"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

func main() {
	funccallsCmd := &cli.Command{
		Name:        "funccalls",
		Description: "classify and rewrite a synthetic call graph",
		Action:      funccallsAct,
		Args:        cli.Args{},
	}

	scheduleCmd := &cli.Command{
		Name:        "schedule",
		Description: "run register-saturation scheduling preparation over a synthetic block (args: [width [regs]], default 6 2)",
		Action:      scheduleAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "rssopt",
		Description: "rssopt demonstrates interprocedural call classification and register-saturation scheduling preparation",
		Commands: []*cli.Command{
			funccallsCmd,
			scheduleCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// funccallsAct builds a tiny closed-world call graph (a leaf that touches
// no memory, called by a caller that does nothing but call it and return
// its result) and runs the full funccall
// pipeline over it, reporting what got classified and rewritten.
func funccallsAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	leaf := &ir.Entity{Name: "leaf"}
	leaf.Graph = ir.NewGraph(leaf)

	{
		g := leaf.Graph
		start := g.NewBlock()
		g.Start = g.NewNode(ir.OpStart, ir.ModeT, start)

		memProj := g.NewNode(ir.OpProj, ir.ModeM, start, g.Start)
		memProj.Proj = 0

		argProj := g.NewNode(ir.OpProj, ir.ModeData, start, g.Start)
		argProj.Proj = 1

		cmp := g.NewNode(ir.OpCmp, ir.ModeData, start, argProj, argProj)

		end := g.NewBlock(start)
		g.End = g.NewNode(ir.OpEnd, ir.ModeANY, end)
		g.NewReturn(start, memProj, cmp)
	}

	caller := &ir.Entity{Name: "caller"}
	caller.Graph = ir.NewGraph(caller)

	{
		g := caller.Graph
		start := g.NewBlock()
		g.Start = g.NewNode(ir.OpStart, ir.ModeT, start)

		memProj := g.NewNode(ir.OpProj, ir.ModeM, start, g.Start)
		memProj.Proj = 0

		_, callMem, callRes := g.NewCall(start, memProj, leaf)

		end := g.NewBlock(start)
		g.End = g.NewNode(ir.OpEnd, ir.ModeANY, end)
		g.NewReturn(start, callMem, callRes)
	}

	entities := []*ir.Entity{leaf, caller}

	res := funccall.OptimizeFuncCalls(ctx, entities, funccall.Options{
		OnCallRewritten: func(call *ir.Node) {
			fmt.Printf("rewrote call: %v\n", call)
		},
	})

	fmt.Printf("classified %d procedures, rewrote %d call sites\n", res.Classified, res.Rewritten)
	fmt.Printf("leaf properties: %v\n", leaf.Properties)
	fmt.Printf("caller properties: %v\n", caller.Properties)

	return nil
}

// scheduleAct builds a synthetic block with `width` independent values
// all live into a single sink consumer (the shape that forces register
// pressure), then runs SchedulePreparation against a demo architecture
// with `regs` registers of its one class.
func scheduleAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	width, regs := 6, 2

	if len(c.Args) > 0 {
		if width, err = strconv.Atoi(c.Args[0]); err != nil {
			return errors.Wrap(err, "parse width")
		}
	}

	if len(c.Args) > 1 {
		if regs, err = strconv.Atoi(c.Args[1]); err != nil {
			return errors.Wrap(err, "parse regs")
		}
	}

	g, start := ir.NewBuilder("demo")

	vals := make([]*ir.Node, width)
	for i := range vals {
		vals[i] = g.NewNode(ir.OpSymConst, ir.ModeData, start)
	}

	sink := g.NewNode(ir.OpOther, ir.ModeData, start, vals...)
	_ = sink

	oracle := height.New()

	opts := sched.Options{
		Arch:       demoArch{numRegs: regs},
		ABI:        demoABI{},
		Height:     oracle,
		NewMatcher: func() sched.Matcher { return hungarian.New() },
	}

	results := sched.SchedulePreparation(ctx, g, opts)

	total := 0
	for _, r := range results {
		fmt.Printf("block %d class %s: inserted %d ordering edges\n", r.Block.ID, r.Class, r.EdgesInserted)
		total += r.EdgesInserted
	}

	fmt.Printf("width=%d regs=%d total_edges_inserted=%d\n", width, regs, total)

	return nil
}

const demoClass sched.RegClass = "gp"

type demoArch struct{ numRegs int }

func (a demoArch) Classes() []sched.RegClass          { return []sched.RegClass{demoClass} }
func (a demoArch) ClassOf(n *ir.Node) sched.RegClass  { return demoClass }
func (a demoArch) NumRegisters(cls sched.RegClass) int { return a.numRegs }

type demoABI struct{}

func (demoABI) NumIgnoreRegisters(cls sched.RegClass) int { return 0 }
