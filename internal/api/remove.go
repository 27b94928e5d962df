package api

import (
	"encoding/json"
	"errors"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

func (s *Api) removeHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	var m common.EntryIdParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.MethodRemove, nil, err
	}
	if m.EntryId == "" {
		return common.MethodRemove, nil, errors.New("entry_id is required")
	}
	if err := s.sched.Remove(m.EntryId); err != nil {
		return common.MethodRemove, nil, err
	}
	return common.MethodRemove, &common.EmptyResponse{}, nil
}
