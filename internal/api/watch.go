package api

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

// watchHandler subscribes the connection to schedule change pushes. The
// subscription lasts until the connection closes.
func (s *Api) watchHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	pool.AddWatcher(sconn)
	return common.MethodWatch, &common.EmptyResponse{}, nil
}
