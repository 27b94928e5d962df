package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/shiftdl/shiftdl/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is captured by Execute for the daemon's version method.
var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "shiftdl",
		HelpName:              "shiftdl",
		Usage:                 "A tariff-aware download scheduler.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "shiftdl <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "tariff",
				Usage:              "build, dump and query tariff files",
				Description:        TariffDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Subcommands: []cli.Command{
					{
						Name:      "build",
						Usage:     "construct a tariff file from period definitions",
						UsageText: "tariff build <output-file> <name> [<start> <end> <recurrence> <multiple> <capacity>]...",
						Action:    tariffBuild,
					},
					{
						Name:      "dump",
						Usage:     "print a stored tariff",
						UsageText: "tariff dump <tariff-file>",
						Action:    tariffDump,
					},
					{
						Name:      "lookup",
						Usage:     "resolve the period governing an instant",
						UsageText: "tariff lookup <tariff-file> <instant>",
						Action:    tariffLookup,
					},
				},
			},
			{
				Name:               "daemon",
				Usage:              "run the scheduling daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             runDaemon,
				Flags:              daemonFlags,
			},
			{
				Name:               "submit",
				Aliases:            []string{"s"},
				Usage:              "register a new download entry",
				Description:        SubmitDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             submit,
				Flags:              submitFlags,
			},
			{
				Name:      "remove",
				Usage:     "delete a schedule entry",
				UsageText: "remove <entry-id>",
				Action:    remove,
			},
			{
				Name:      "hold",
				Usage:     "place a named hold on an entry",
				UsageText: "hold <entry-id> <key>",
				Action:    hold,
			},
			{
				Name:      "release",
				Usage:     "release a named hold from an entry",
				UsageText: "release <entry-id> <key>",
				Action:    release,
			},
			{
				Name:      "usage",
				Usage:     "report bytes transferred by an entry",
				UsageText: "usage <entry-id> <bytes>",
				Action:    usage,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "display schedule entries",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             list,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "stream schedule changes",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             watch,
			},
			{
				Name:   "stop",
				Usage:  "stop the running daemon",
				Action: stop,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of shiftdl",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
