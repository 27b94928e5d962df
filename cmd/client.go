package cmd

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/shiftdl/shiftdl/cmd/common"
	commonpkg "github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/pkg/schedcli"
)

var (
	submitPriority  int
	submitResumable bool

	submitFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "priority, p",
			Usage:       "scheduling priority, higher activates first (default: 0)",
			Destination: &submitPriority,
		},
		cli.BoolFlag{
			Name:        "resumable, r",
			Usage:       "mark the download as resumable after interruption",
			Destination: &submitResumable,
		},
	}
)

func submit(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "submit", "new_client", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Submit(int32(submitPriority), submitResumable)
	if err != nil {
		common.PrintRuntimeErr(ctx, "submit", "submit", err)
		return cli.NewExitError("", exitFailed)
	}
	fmt.Printf("%s\t%s\n", resp.EntryId, resp.State)
	return nil
}

func remove(ctx *cli.Context) error {
	args := ctx.Args()
	if args.First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if len(args) != 1 {
		return common.PrintErrWithCmdHelp(ctx,
			cli.NewExitError("expected exactly one entry id", exitInvalidOptions))
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "remove", "new_client", err)
		return nil
	}
	defer client.Close()
	if err := client.Remove(args[0]); err != nil {
		common.PrintRuntimeErr(ctx, "remove", "remove", err)
		return cli.NewExitError("", exitFailed)
	}
	return nil
}

func hold(ctx *cli.Context) error {
	return holdAction(ctx, "hold")
}

func release(ctx *cli.Context) error {
	return holdAction(ctx, "release")
}

func holdAction(ctx *cli.Context, verb string) error {
	args := ctx.Args()
	if args.First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if len(args) != 2 {
		return common.PrintErrWithCmdHelp(ctx,
			cli.NewExitError("expected an entry id and a hold key", exitInvalidOptions))
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, verb, "new_client", err)
		return nil
	}
	defer client.Close()
	if verb == "hold" {
		err = client.Hold(args[0], args[1])
	} else {
		err = client.Release(args[0], args[1])
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, verb, verb, err)
		return cli.NewExitError("", exitFailed)
	}
	return nil
}

func usage(ctx *cli.Context) error {
	args := ctx.Args()
	if args.First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if len(args) != 2 {
		return common.PrintErrWithCmdHelp(ctx,
			cli.NewExitError("expected an entry id and a byte count", exitInvalidOptions))
	}
	bytes, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx,
			cli.NewExitError(fmt.Sprintf("invalid byte count '%s'", args[1]), exitInvalidOptions))
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "usage", "new_client", err)
		return nil
	}
	defer client.Close()
	if err := client.ReportUsage(args[0], bytes); err != nil {
		common.PrintRuntimeErr(ctx, "usage", "report_usage", err)
		return cli.NewExitError("", exitFailed)
	}
	return nil
}

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.List()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_list", err)
		return cli.NewExitError("", exitFailed)
	}
	if len(l.Entries) == 0 {
		fmt.Println("shiftdl: no schedule entries")
		return nil
	}
	printEntries(l.Entries)
	return nil
}

func printEntries(entries []commonpkg.EntryInfo) {
	fmt.Printf("%-36s  %8s  %9s  %5s  %s\n",
		"ENTRY", "PRIORITY", "RESUMABLE", "HOLDS", "STATE")
	for _, e := range entries {
		fmt.Printf("%-36s  %8d  %9t  %5d  %s\n",
			e.EntryId, e.Priority, e.Resumable, len(e.Holds), e.State)
	}
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()
	err = client.Watch(func(u *commonpkg.StateChangeUpdate) error {
		for _, c := range u.Changes {
			fmt.Printf("%s\t%s\n", c.EntryId, c.State)
		}
		return nil
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "watch", err)
		return cli.NewExitError("", exitFailed)
	}
	if err := client.Listen(); err != nil {
		common.PrintRuntimeErr(ctx, "watch", "listen", err)
		return cli.NewExitError("", exitFailed)
	}
	return nil
}

func stop(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := schedcli.NewClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop", "new_client", err)
		return nil
	}
	defer client.Close()
	if err := client.Stop(); err != nil {
		common.PrintRuntimeErr(ctx, "stop", "stop", err)
		return cli.NewExitError("", exitFailed)
	}
	fmt.Println("shiftdl: daemon stopping")
	return nil
}
