package schedcli

import (
	"encoding/json"

	"github.com/shiftdl/shiftdl/common"
)

type Request struct {
	Method  common.Method `json:"method"`
	Message any           `json:"data,omitempty"`
}

type Response struct {
	Ok     bool    `json:"ok"`
	Error  string  `json:"error,omitempty"`
	Update *Update `json:"update,omitempty"`
}

type Update struct {
	Type    common.Method   `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
}
