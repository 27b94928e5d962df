package api

import (
	"encoding/json"
	"errors"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

func (s *Api) usageHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	var m common.UsageParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.MethodUsage, nil, err
	}
	if m.EntryId == "" {
		return common.MethodUsage, nil, errors.New("entry_id is required")
	}
	// Reports racing with entry removal are dropped inside the scheduler;
	// that is not an error the client can act on.
	s.sched.ReportUsage(m.EntryId, m.Bytes)
	return common.MethodUsage, &common.EmptyResponse{}, nil
}
