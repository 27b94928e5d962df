package schedcli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shiftdl/shiftdl/common"
)

// UpdateHandler consumes one pushed update body. Returning ErrDisconnect
// ends the Listen loop cleanly.
type UpdateHandler func(body json.RawMessage) error

// ErrDisconnect signals the Listen loop to stop.
var ErrDisconnect = errors.New("disconnect")

// Dispatcher routes pushed updates to handlers by update type.
type Dispatcher struct {
	handlers map[common.Method]UpdateHandler
}

// Handle registers a handler for the given update type.
func (d *Dispatcher) Handle(utype common.Method, h UpdateHandler) {
	if d.handlers == nil {
		d.handlers = make(map[common.Method]UpdateHandler)
	}
	d.handlers[utype] = h
}

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	if err := json.Unmarshal(buf, &res); err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return nil
	}
	if h, ok := d.handlers[res.Update.Type]; ok {
		return h(res.Update.Message)
	}
	return nil
}
