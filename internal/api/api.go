// Package api implements the daemon's socket methods, one handler per
// request method, bridging the wire types in common to the scheduler.
package api

import (
	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/scheduler"
	"github.com/shiftdl/shiftdl/internal/server"
	"github.com/shiftdl/shiftdl/pkg/logger"
)

type Api struct {
	log   logger.Logger
	sched *scheduler.Scheduler

	version   string
	commit    string
	buildType string

	// stop requests daemon shutdown; wired to the run context's cancel.
	stop func()
}

func NewApi(l logger.Logger, sched *scheduler.Scheduler, version, commit, buildType string, stop func()) (*Api, error) {
	return &Api{
		log:       l,
		sched:     sched,
		version:   version,
		commit:    commit,
		buildType: buildType,
		stop:      stop,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	server.RegisterHandler(common.MethodSubmit, s.submitHandler)
	server.RegisterHandler(common.MethodRemove, s.removeHandler)
	server.RegisterHandler(common.MethodHold, s.holdHandler)
	server.RegisterHandler(common.MethodRelease, s.releaseHandler)
	server.RegisterHandler(common.MethodUsage, s.usageHandler)
	server.RegisterHandler(common.MethodList, s.listHandler)
	server.RegisterHandler(common.MethodWatch, s.watchHandler)
	server.RegisterHandler(common.MethodVersion, s.versionHandler)
	server.RegisterHandler(common.MethodStop, s.stopHandler)
	server.OnDisconnect(s.sched.ReapOwner)
}

func snapshotInfo(snap scheduler.Snapshot) common.EntryInfo {
	return common.EntryInfo{
		EntryId:   snap.Id,
		Owner:     snap.Owner,
		Priority:  snap.Priority,
		Resumable: snap.Resumable,
		Holds:     snap.Holds,
		State:     string(snap.State),
	}
}
