package api

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

// stopHandler requests daemon shutdown. The response is written before the
// shutdown is triggered so the client sees an acknowledgement.
func (s *Api) stopHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	s.log.Info("Shutdown requested by %s", sconn.Id)
	if s.stop != nil {
		go s.stop()
	}
	return common.MethodStop, &common.EmptyResponse{}, nil
}
