package api

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

func (s *Api) listHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	snaps := s.sched.List()
	entries := make([]common.EntryInfo, 0, len(snaps))
	for _, snap := range snaps {
		entries = append(entries, snapshotInfo(snap))
	}
	return common.MethodList, &common.ListResponse{Entries: entries}, nil
}
