package server

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
)

// HandlerFunc handles one request frame. It receives the synchronized
// connection the request arrived on, the watcher pool, and the raw JSON
// body. It returns the update type tag for the response, the response
// payload, and any error.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.Method,
	any,
	error,
)
