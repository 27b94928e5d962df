package api

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/internal/scheduler"
	"github.com/shiftdl/shiftdl/internal/server"
	"github.com/shiftdl/shiftdl/pkg/logger"
)

func newTestApi(t *testing.T) (*Api, *scheduler.Scheduler, *server.SyncConn, *server.Pool) {
	t.Helper()
	sched := scheduler.New(logger.NewNopLogger(), nil, nil)
	sched.SetConditions(scheduler.Conditions{Connected: true})
	a, err := NewApi(logger.NewNopLogger(), sched, "1.0.0", "abc123", "test", nil)
	if err != nil {
		t.Fatal(err)
	}
	c1, c2 := net.Pipe()
	t.Cleanup(func() {
		c1.Close()
		c2.Close()
	})
	return a, sched, server.NewSyncConn(c1), server.NewPool(logger.NewNopLogger())
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSubmitHandler(t *testing.T) {
	a, sched, conn, pool := newTestApi(t)

	utype, res, err := a.submitHandler(conn, pool,
		mustJSON(t, common.SubmitParams{Priority: 3, Resumable: true}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if utype != common.MethodSubmit {
		t.Errorf("update type = %v", utype)
	}
	resp, ok := res.(*common.SubmitResponse)
	if !ok {
		t.Fatalf("unexpected response type %T", res)
	}
	if resp.State != string(scheduler.StateInactive) {
		t.Errorf("fresh entry state = %s", resp.State)
	}

	snap, err := sched.Store().Get(resp.EntryId)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Owner != conn.Id {
		t.Errorf("owner = %s, want connection id %s", snap.Owner, conn.Id)
	}
	if snap.Priority != 3 || !snap.Resumable {
		t.Errorf("attributes lost: %+v", snap)
	}
}

func TestRemoveHandlerValidation(t *testing.T) {
	a, _, conn, pool := newTestApi(t)

	if _, _, err := a.removeHandler(conn, pool, mustJSON(t, common.EntryIdParams{})); err == nil {
		t.Error("empty entry_id should be rejected")
	}
	if _, _, err := a.removeHandler(conn, pool,
		mustJSON(t, common.EntryIdParams{EntryId: "nope"})); err != scheduler.ErrEntryNotFound {
		t.Errorf("unknown entry error = %v", err)
	}
}

func TestHoldReleaseHandlers(t *testing.T) {
	a, sched, conn, pool := newTestApi(t)
	id := sched.Submit(conn.Id, 0, true)

	params := mustJSON(t, common.HoldParams{EntryId: id, Key: "policy/metered"})
	if _, _, err := a.holdHandler(conn, pool, params); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, _, err := a.holdHandler(conn, pool, params); err != scheduler.ErrHoldExists {
		t.Errorf("duplicate hold error = %v", err)
	}
	if _, _, err := a.releaseHandler(conn, pool, params); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, _, err := a.releaseHandler(conn, pool, params); err != scheduler.ErrHoldNotFound {
		t.Errorf("double release error = %v", err)
	}
}

func TestListHandler(t *testing.T) {
	a, sched, conn, pool := newTestApi(t)
	sched.Submit(conn.Id, 1, false)
	sched.Submit(conn.Id, 9, true)

	_, res, err := a.listHandler(conn, pool, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp := res.(*common.ListResponse)
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d", len(resp.Entries))
	}
	if resp.Entries[0].Priority != 9 {
		t.Error("entries not in scheduling order")
	}
}

func TestWatchHandlerSubscribes(t *testing.T) {
	a, _, conn, pool := newTestApi(t)

	if _, _, err := a.watchHandler(conn, pool, nil); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !pool.Watching(conn.Id) {
		t.Error("connection not subscribed")
	}
}

func TestVersionHandler(t *testing.T) {
	a, _, conn, pool := newTestApi(t)

	_, res, err := a.versionHandler(conn, pool, nil)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	resp := res.(*common.VersionResponse)
	if resp.Version != "1.0.0" || resp.Commit != "abc123" || resp.BuildType != "test" {
		t.Errorf("unexpected version response %+v", resp)
	}
}

func TestStopHandlerTriggersShutdown(t *testing.T) {
	sched := scheduler.New(logger.NewNopLogger(), nil, nil)
	stopped := make(chan struct{})
	a, err := NewApi(logger.NewNopLogger(), sched, "1.0.0", "", "", func() {
		close(stopped)
	})
	if err != nil {
		t.Fatal(err)
	}
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	_, _, err = a.stopHandler(server.NewSyncConn(c1), server.NewPool(logger.NewNopLogger()), nil)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-stopped
}
