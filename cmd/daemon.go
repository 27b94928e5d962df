package cmd

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/api"
	"github.com/shiftdl/shiftdl/internal/daemon"
	"github.com/shiftdl/shiftdl/internal/netmon"
	"github.com/shiftdl/shiftdl/internal/scheduler"
	"github.com/shiftdl/shiftdl/internal/server"
	"github.com/shiftdl/shiftdl/pkg/logger"
	"github.com/shiftdl/shiftdl/pkg/tariff"
)

var daemonFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "inactivity-timeout, t",
		Usage: "seconds of inactivity before automatic shutdown (0 disables)",
		Value: int(daemon.DefaultInactivityTimeout / time.Second),
	},
	cli.StringFlag{
		Name:  "conditions-file, c",
		Usage: "path to the network conditions file",
		Value: "/etc/shiftdl/conditions.json",
	},
	cli.StringFlag{
		Name:  "tariff",
		Usage: "govern the connection by a fixed tariff file instead of the conditions file",
	},
	cli.StringFlag{
		Name:   "rpc-secret",
		Usage:  "bearer token enabling the JSON-RPC bridge (empty disables it)",
		EnvVar: "SHIFTDL_RPC_SECRET",
	},
	cli.IntFlag{
		Name:  "port",
		Usage: "TCP fallback port for the client socket",
		Value: common.DefaultPort,
	},
}

func runDaemon(ctx *cli.Context) error {
	if err := daemon.CheckEnvironment(nil); err != nil {
		return cli.NewExitError(err.Error(), exitInvalidEnv)
	}

	log := logger.NewStandardLogger(stdlog.New(os.Stderr, "shiftdl: ", stdlog.LstdFlags))
	defer log.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rpcCfg *server.RPCConfig
	if secret := ctx.String("rpc-secret"); secret != "" {
		rpcCfg = &server.RPCConfig{
			Secret:    secret,
			Version:   currentBuildArgs.Version,
			Commit:    currentBuildArgs.Commit,
			BuildType: currentBuildArgs.BuildType,
		}
	}
	notifier := server.NewRPCNotifier(log)
	srv := server.NewServer(log, ctx.Int("port"), rpcCfg, notifier)

	sched := scheduler.New(log, nil, func(changes []scheduler.Snapshot) {
		u := common.StateChangeUpdate{}
		for _, c := range changes {
			u.Changes = append(u.Changes, common.StateChange{
				EntryId: c.Id,
				State:   string(c.State),
			})
		}
		srv.Pool().Broadcast(server.MakeResult(common.UpdateStateChange, &u))
		notifier.Broadcast("entry.stateChanged", &server.StateChangedNotification{
			Changes: u.Changes,
		})
	})

	a, err := api.NewApi(log, sched,
		currentBuildArgs.Version, currentBuildArgs.Commit, currentBuildArgs.BuildType, cancel)
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailed)
	}
	a.RegisterHandlers(srv)
	if rpcCfg != nil {
		srv.RegisterRPCHandlers(server.NewRPCServer(rpcCfg, sched))
	}

	source, err := conditionsSource(ctx, log)
	if err != nil {
		return cli.NewExitError(err.Error(), exitFailed)
	}
	applyConditions(source, sched, log)

	runner := daemon.New(&daemon.Config{
		InactivityTimeout: time.Duration(ctx.Int("inactivity-timeout")) * time.Second,
	}, log)
	srv.OnActivity(runner.Touch)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		for sig := range sigc {
			if sig == syscall.SIGHUP {
				log.Info("Reloading network conditions")
				applyConditions(source, sched, log)
				continue
			}
			log.Info("Received %s, shutting down", sig)
			cancel()
			return
		}
	}()

	go sched.Run(runCtx)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(runCtx)
	}()

	log.Info("Daemon started (version %s)", currentBuildArgs.Version)
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- runner.Wait(runCtx)
	}()

	select {
	case err := <-serverErr:
		cancel()
		if err != nil {
			return cli.NewExitError(err.Error(), exitFailed)
		}
	case err := <-waitDone:
		cancel()
		if err == daemon.ErrIdleTimeout {
			log.Info("Idle timeout reached, exiting")
		}
	}
	return nil
}

// conditionsSource picks the network conditions source: a fixed tariff
// override, or the conditions file collaborator.
func conditionsSource(ctx *cli.Context, log logger.Logger) (netmon.Source, error) {
	if path := ctx.String("tariff"); path != "" {
		t, err := tariff.Load(fs, path)
		if err != nil {
			return nil, err
		}
		return &netmon.StaticSource{C: scheduler.Conditions{
			Connected: true,
			Tariff:    t,
		}}, nil
	}
	return netmon.NewFileSource(fs, ctx.String("conditions-file"), log), nil
}

func applyConditions(source netmon.Source, sched *scheduler.Scheduler, log logger.Logger) {
	c, err := source.Conditions()
	if err != nil {
		log.Error("Failed to read network conditions: %v", err)
		return
	}
	sched.SetConditions(c)
}
