package cmd

const DESCRIPTION = `
ShiftDL schedules large downloads around network tariffs. The daemon
decides when registered downloads may transfer based on connection
state and time-based capacity limits, so bulk transfers land in
cheap off-peak windows.
`

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const (
	TariffDescription = `The tariff command manages tariff files: build constructs a
tariff from period definitions, dump prints a stored tariff,
and lookup resolves which period governs a given instant.

Example:
        shiftdl tariff build isp.tariff my-isp \
            2026-01-01T22:00:00Z 2026-01-02T06:00:00Z day 1 2000000000
        shiftdl tariff dump isp.tariff
        shiftdl tariff lookup isp.tariff 2026-03-10T23:30:00Z

`
	DaemonDescription = `The daemon command runs the scheduling daemon. It listens on a
unix socket for client requests, watches the network conditions
file, and shuts itself down after a period of inactivity.

Example:
        shiftdl daemon --conditions-file /etc/shiftdl/conditions.json

`
	SubmitDescription = `The submit command registers a new download entry with the
daemon and prints its identifier. The daemon decides when the
entry may transfer.

Example:
        shiftdl submit --priority 5 --resumable

`
	WatchDescription = `The watch command subscribes to schedule changes and prints
each entry state transition as it is committed.

Example:
        shiftdl watch

`
	ListDescription = `The list command displays all schedule entries known to the
daemon in scheduling order.

Example:
        shiftdl list

`
)
