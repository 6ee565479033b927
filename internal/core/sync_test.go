package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"hrdesk/internal/broadcast"
	"hrdesk/internal/events"
	"hrdesk/internal/infra/persistence/snapshot"
	"hrdesk/internal/kv"
	"hrdesk/pkg/domain"
)

func openTab(t *testing.T, store kv.Store, hub *broadcast.Hub, origin string) (*Service, *Synchronizer) {
	t.Helper()
	svc := openOn(t, store, []snapshot.Option{snapshot.WithChannel(hub), snapshot.WithOrigin(origin)})
	syncer := NewSynchronizer(svc, hub)
	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("start sync: %v", err)
	}
	t.Cleanup(syncer.Stop)
	return svc, syncer
}

func TestCrossTabSync(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	hub := broadcast.NewHub()
	a, _ := openTab(t, store, hub, "tab-a")
	b, _ := openTab(t, store, hub, "tab-b")
	logA := recordEvents(a, events.DataSync)
	logB := recordEvents(b, events.DataSync, events.EmployeeAdded)

	added, err := a.AddEmployee(ctx, domain.Employee{Name: "Rui Costa", Username: "rcosta"})
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	if _, err := b.GetEmployee(ctx, added.ID); err != nil {
		t.Fatalf("tab b should see the new employee: %v", err)
	}
	syncs := logB.named(events.DataSync)
	if len(syncs) != 1 || syncs[0].Action != "add_employee" {
		t.Fatalf("unexpected dataSync on tab b %+v", syncs)
	}
	if len(logB.named(events.EmployeeAdded)) != 0 {
		t.Fatalf("mutation events stay local to the writing tab")
	}
	if len(logA.all()) != 0 {
		t.Fatalf("a tab must ignore its own pings, got %+v", logA.all())
	}

	if _, err := b.SaveSettings(ctx, domain.SettingsPatch{Departments: []string{"Support"}}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, _ := a.GetDepartments(ctx)
	found := false
	for _, d := range got {
		if d == "Support" {
			found = true
		}
	}
	if !found {
		t.Fatalf("tab a should see tab b's settings, got %v", got)
	}
}

func TestSynchronizerIgnoresForeignKeys(t *testing.T) {
	store := kv.NewMemory(0)
	hub := broadcast.NewHub()
	svc, _ := openTab(t, store, hub, "tab-a")
	log := recordEvents(svc, events.DataSync)
	_ = hub.Publish(context.Background(), broadcast.Message{Key: "other_sync", Origin: "tab-z", Action: "x"})
	if len(log.all()) != 0 {
		t.Fatalf("pings for another namespace must be ignored")
	}
	_ = hub.Publish(context.Background(), broadcast.Message{Key: svc.Adapter().SyncKey(), Origin: "tab-z", Action: "x"})
	if got := log.all(); len(got) != 1 || got[0].Action != "x" {
		t.Fatalf("expected a dataSync for the namespace ping, got %+v", got)
	}
}

func TestReloadWritesBackCleanedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	hub := broadcast.NewHub()
	svc, _ := openTab(t, store, hub, "tab-a")

	snap, err := snapshot.New(store, "").Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	valid := len(snap.AttendanceRecords)
	snap.AttendanceRecords = append(snap.AttendanceRecords, domain.AttendanceRecord{EmployeeID: "emp-001", Date: "2024-03-01"})
	raw, _ := json.Marshal(snap)
	if err := store.Set(ctx, "hrdesk_data", raw); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_ = hub.Publish(ctx, broadcast.Message{Key: svc.Adapter().SyncKey(), Origin: "tab-z", Action: "import"})
	stored, err := snapshot.New(store, "").Load(ctx)
	if err != nil {
		t.Fatalf("load cleaned: %v", err)
	}
	if len(stored.AttendanceRecords) != valid {
		t.Fatalf("expected %d persisted records after cleaning, got %d", valid, len(stored.AttendanceRecords))
	}
	got, _ := svc.GetAttendanceRecords(ctx, AttendanceFilter{})
	if len(got) != valid {
		t.Fatalf("expected %d records in memory, got %d", valid, len(got))
	}
}

func TestSynchronizerStartStop(t *testing.T) {
	svc := newTestService(t)
	hub := broadcast.NewHub()
	syncer := NewSynchronizer(svc, hub)
	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := syncer.Start(context.Background()); !errors.Is(err, ErrSyncRunning) {
		t.Fatalf("expected ErrSyncRunning, got %v", err)
	}
	syncer.Stop()
	syncer.Stop()

	_ = hub.Close()
	if err := NewSynchronizer(svc, hub).Start(context.Background()); !errors.Is(err, broadcast.ErrClosed) {
		t.Fatalf("expected subscribe error, got %v", err)
	}
}

type switchPinger struct {
	mu  sync.Mutex
	err error
}

func (p *switchPinger) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *switchPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func TestProbeEmitsConnectionTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	log := recordEvents(svc, events.ConnectionChange)
	pinger := &switchPinger{}
	syncer := NewSynchronizer(svc, broadcast.NewHub(), WithPinger(pinger))

	if !syncer.Probe(ctx) || len(log.all()) != 0 {
		t.Fatalf("staying online must not emit")
	}
	pinger.set(errors.New("connection refused"))
	if syncer.Probe(ctx) {
		t.Fatalf("expected offline")
	}
	syncer.Probe(ctx)
	pinger.set(nil)
	if !syncer.Probe(ctx) || !syncer.Online() {
		t.Fatalf("expected back online")
	}

	got := log.all()
	if len(got) != 2 {
		t.Fatalf("expected two transitions, got %d", len(got))
	}
	first, ok := got[0].Data.(ConnectionStatus)
	if !ok || first.Online || first.Error != "connection refused" {
		t.Fatalf("unexpected offline status %+v", got[0].Data)
	}
	if second := got[1].Data.(ConnectionStatus); !second.Online {
		t.Fatalf("unexpected online status %+v", second)
	}
}
