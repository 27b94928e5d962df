package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/urfave/cli"

	"github.com/shiftdl/shiftdl/pkg/tariff"
)

// periodTupleLen is the number of CLI arguments defining one period:
// start, end, recurrence, multiple, capacity.
const periodTupleLen = 5

func tariffBuild(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2+periodTupleLen || (len(args)-2)%periodTupleLen != 0 {
		return cli.NewExitError(
			"usage: tariff build <output-file> <name> [<start> <end> <recurrence> <multiple> <capacity>]...",
			exitInvalidOptions)
	}
	output, name := args[0], args[1]

	b := tariff.NewBuilder().SetName(name)
	for i := 2; i < len(args); i += periodTupleLen {
		p, err := parsePeriodTuple(args[i : i+periodTupleLen])
		if err != nil {
			return cli.NewExitError(err.Error(), exitInvalidOptions)
		}
		b.AddPeriod(p)
	}
	t, err := b.Tariff()
	if err != nil {
		return cli.NewExitError(err.Error(), exitInvalidOptions)
	}
	if err := tariff.Save(fs, output, t); err != nil {
		return cli.NewExitError(err.Error(), exitFailed)
	}
	return nil
}

func parsePeriodTuple(args []string) (*tariff.Period, error) {
	start, err := tariff.ParseInstant(args[0])
	if err != nil {
		return nil, err
	}
	end, err := tariff.ParseInstant(args[1])
	if err != nil {
		return nil, err
	}
	rec, err := tariff.ParseRecurrence(args[2])
	if err != nil {
		return nil, err
	}
	multiple, err := strconv.ParseUint(args[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid repeat multiple '%s'", args[3])
	}
	capacity := tariff.CapacityUnlimited
	if args[4] != "unlimited" {
		capacity, err = strconv.ParseUint(args[4], 10, 64)
		if err != nil || capacity == math.MaxUint64 {
			return nil, fmt.Errorf("invalid capacity limit '%s'", args[4])
		}
	}
	return tariff.NewPeriod(start, end, rec, uint32(multiple), capacity)
}

func tariffDump(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.NewExitError("usage: tariff dump <tariff-file>", exitInvalidOptions)
	}
	t, err := tariff.Load(fs, args[0])
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailed)
	}
	fmt.Fprint(ctx.App.Writer, tariff.FormatTariff(t))
	return nil
}

func tariffLookup(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return cli.NewExitError("usage: tariff lookup <tariff-file> <instant>", exitInvalidOptions)
	}
	when, err := tariff.ParseInstant(args[1])
	if err != nil {
		return cli.NewExitError(err.Error(), exitInvalidOptions)
	}
	t, err := tariff.Load(fs, args[0])
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailed)
	}
	p, _, ok := t.LookupPeriod(when)
	if !ok {
		fmt.Fprintln(ctx.App.Writer, "No period matches the given date/time.")
		return cli.NewExitError("", exitLookupFailed)
	}
	fmt.Fprint(ctx.App.Writer, tariff.FormatPeriod(p))
	return nil
}
