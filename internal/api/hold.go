package api

import (
	"encoding/json"
	"errors"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/server"
)

func parseHoldParams(body json.RawMessage) (*common.HoldParams, error) {
	var m common.HoldParams
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m.EntryId == "" {
		return nil, errors.New("entry_id is required")
	}
	if m.Key == "" {
		return nil, errors.New("key is required")
	}
	return &m, nil
}

func (s *Api) holdHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	m, err := parseHoldParams(body)
	if err != nil {
		return common.MethodHold, nil, err
	}
	if err := s.sched.AddHold(m.EntryId, m.Key); err != nil {
		return common.MethodHold, nil, err
	}
	return common.MethodHold, &common.EmptyResponse{}, nil
}

func (s *Api) releaseHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.Method, any, error) {
	m, err := parseHoldParams(body)
	if err != nil {
		return common.MethodRelease, nil, err
	}
	if err := s.sched.RemoveHold(m.EntryId, m.Key); err != nil {
		return common.MethodRelease, nil, err
	}
	return common.MethodRelease, &common.EmptyResponse{}, nil
}
