package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-defense/internal/engine"
)

type dummy struct {
	engine.Base
	kind string
}

func (d *dummy) Kind() string            { return d.kind }
func (d *dummy) Type() engine.EntityType { return engine.TypeTower }
func (d *dummy) Tick()                   {}

func factory(kind string) Factory {
	return func(e *engine.Engine) engine.Entity {
		return &dummy{Base: engine.NewBase(e), kind: kind}
	}
}

func TestRegisterAndCreate(t *testing.T) {
	e := engine.New(nil)
	r := New(e)

	if err := r.Register("canon", EntityInfo{Title: "Canon", Type: engine.TypeTower, Value: 200}, factory("canon")); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	ent, err := r.Create("canon")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ent.Kind() != "canon" {
		t.Errorf("Kind() = %q, want canon", ent.Kind())
	}
	if ent.State() != engine.StatePending {
		t.Errorf("State() = %s, want pending", ent.State())
	}
	d := ent.(*dummy)
	if d.Engine() != e {
		t.Error("entity not bound to the registry engine")
	}

	// every Create returns a fresh instance
	other, _ := r.Create("canon")
	if other == ent {
		t.Error("Create() returned the same instance twice")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New(engine.New(nil))
	r.MustRegister("canon", EntityInfo{}, factory("canon"))

	err := r.Register("canon", EntityInfo{}, factory("canon"))
	if !errors.Is(err, ErrDuplicateKind) {
		t.Errorf("Register() error = %v, want ErrDuplicateKind", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister() did not panic on duplicate")
		}
	}()
	r.MustRegister("canon", EntityInfo{}, factory("canon"))
}

func TestCreateUnknown(t *testing.T) {
	r := New(engine.New(nil))
	if _, err := r.Create("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Create() error = %v, want ErrUnknownKind", err)
	}
	if _, err := r.Info("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Info() error = %v, want ErrUnknownKind", err)
	}
	if r.Exists("nope") {
		t.Error("Exists() = true for unknown kind")
	}
}

func TestListSorted(t *testing.T) {
	r := New(engine.New(nil))
	r.MustRegister("soldier", EntityInfo{Type: engine.TypeEnemy}, factory("soldier"))
	r.MustRegister("canon", EntityInfo{Type: engine.TypeTower}, factory("canon"))
	r.MustRegister("blob", EntityInfo{Type: engine.TypeEnemy}, factory("blob"))

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List() len = %d, want 3", len(list))
	}
	for i, want := range []string{"blob", "canon", "soldier"} {
		if list[i].Kind != want {
			t.Errorf("List()[%d] = %q, want %q", i, list[i].Kind, want)
		}
	}

	enemies := r.ListByType(engine.TypeEnemy)
	if len(enemies) != 2 || enemies[0].Kind != "blob" {
		t.Errorf("ListByType(enemy) = %v", enemies)
	}

	info, err := r.Info("canon")
	if err != nil || info.Kind != "canon" || info.Type != engine.TypeTower {
		t.Errorf("Info(canon) = %+v, %v", info, err)
	}
}
