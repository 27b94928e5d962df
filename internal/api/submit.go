package api

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

func (s *Api) submitHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	var m common.SubmitParams
	if len(body) > 0 {
		if err := json.Unmarshal(body, &m); err != nil {
			return common.MethodSubmit, nil, err
		}
	}
	id := s.sched.Submit(sconn.Id, m.Priority, m.Resumable)
	snap, err := s.sched.Store().Get(id)
	if err != nil {
		return common.MethodSubmit, nil, err
	}
	s.log.Info("Entry %s submitted by %s (priority %d)", id, sconn.Id, m.Priority)
	return common.MethodSubmit, &common.SubmitResponse{
		EntryId: id,
		State:   string(snap.State),
	}, nil
}
