package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/scheduler"
)

// JSON-RPC error codes for schedule operations.
const (
	codeEntryNotFound = jrpc2.Code(-32001)
	codeHoldConflict  = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

// rpcOwner is the owner reference for entries submitted over the HTTP
// bridge. Bridge clients have no daemon connection to tie liveness to, so
// their entries persist until removed explicitly.
const rpcOwner = "jsonrpc"

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer exposes the scheduler over JSON-RPC 2.0, both as an HTTP POST
// bridge and over WebSocket connections that additionally receive
// entry.stateChanged pushes.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	sched     *scheduler.Scheduler
	version   string
	commit    string
	buildType string
}

// SubmitParams is the input for entry.submit.
type SubmitParams struct {
	Priority  int32 `json:"priority,omitempty"`
	Resumable bool  `json:"resumable,omitempty"`
}

// SubmitResult is the response for entry.submit.
type SubmitResult struct {
	EntryId string `json:"entryId"`
	State   string `json:"state"`
}

// EntryIdParam is a common input with just an entry identifier.
type EntryIdParam struct {
	EntryId string `json:"entryId"`
}

// HoldParams is the input for entry.hold and entry.release.
type HoldParams struct {
	EntryId string `json:"entryId"`
	Key     string `json:"key"`
}

// UsageParams is the input for entry.reportUsage.
type UsageParams struct {
	EntryId string `json:"entryId"`
	Bytes   uint64 `json:"bytes"`
}

// EntryItem is a single entry in the entry.list response.
type EntryItem struct {
	EntryId   string   `json:"entryId"`
	Owner     string   `json:"owner"`
	Priority  int32    `json:"priority"`
	Resumable bool     `json:"resumable"`
	Holds     []string `json:"holds,omitempty"`
	State     string   `json:"state"`
}

// ListResult is the response for entry.list.
type ListResult struct {
	Entries []*EntryItem `json:"entries"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates an RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, sched *scheduler.Scheduler) *RPCServer {
	rs := &RPCServer{
		sched:     sched,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"entry.submit":      handler.New(rs.entrySubmit),
		"entry.remove":      handler.New(rs.entryRemove),
		"entry.hold":        handler.New(rs.entryHold),
		"entry.release":     handler.New(rs.entryRelease),
		"entry.reportUsage": handler.New(rs.entryReportUsage),
		"entry.list":        handler.New(rs.entryList),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) entrySubmit(_ context.Context, p *SubmitParams) (*SubmitResult, error) {
	id := rs.sched.Submit(rpcOwner, p.Priority, p.Resumable)
	snap, err := rs.sched.Store().Get(id)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeEntryNotFound, Message: err.Error()}
	}
	return &SubmitResult{EntryId: id, State: string(snap.State)}, nil
}

func (rs *RPCServer) entryRemove(_ context.Context, p *EntryIdParam) (*EmptyResult, error) {
	if err := rs.sched.Remove(p.EntryId); err != nil {
		return nil, &jrpc2.Error{Code: codeEntryNotFound, Message: "entry not found"}
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) entryHold(_ context.Context, p *HoldParams) (*EmptyResult, error) {
	if p.Key == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: key"}
	}
	switch err := rs.sched.AddHold(p.EntryId, p.Key); err {
	case nil:
		return &EmptyResult{}, nil
	case scheduler.ErrEntryNotFound:
		return nil, &jrpc2.Error{Code: codeEntryNotFound, Message: "entry not found"}
	default:
		return nil, &jrpc2.Error{Code: codeHoldConflict, Message: err.Error()}
	}
}

func (rs *RPCServer) entryRelease(_ context.Context, p *HoldParams) (*EmptyResult, error) {
	if p.Key == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: key"}
	}
	switch err := rs.sched.RemoveHold(p.EntryId, p.Key); err {
	case nil:
		return &EmptyResult{}, nil
	case scheduler.ErrEntryNotFound:
		return nil, &jrpc2.Error{Code: codeEntryNotFound, Message: "entry not found"}
	default:
		return nil, &jrpc2.Error{Code: codeHoldConflict, Message: err.Error()}
	}
}

func (rs *RPCServer) entryReportUsage(_ context.Context, p *UsageParams) (*EmptyResult, error) {
	rs.sched.ReportUsage(p.EntryId, p.Bytes)
	return &EmptyResult{}, nil
}

func (rs *RPCServer) entryList(_ context.Context) (*ListResult, error) {
	snaps := rs.sched.List()
	entries := make([]*EntryItem, 0, len(snaps))
	for _, s := range snaps {
		entries = append(entries, &EntryItem{
			EntryId:   s.Id,
			Owner:     s.Owner,
			Priority:  s.Priority,
			Resumable: s.Resumable,
			Holds:     s.Holds,
			State:     string(s.State),
		})
	}
	return &ListResult{Entries: entries}, nil
}

// StateChangedNotification is pushed to WebSocket clients as
// entry.stateChanged when an evaluation commits a diff.
type StateChangedNotification struct {
	Changes []common.StateChange `json:"changes"`
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
