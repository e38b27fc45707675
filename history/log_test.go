package history

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erossel/convo/content"
	"github.com/erossel/convo/core"
)

func textParts(text string) []content.Part {
	return []content.Part{content.Text(text)}
}

func TestAppend_IDsStrictlyIncrease(t *testing.T) {
	log := New()

	for want := 0; want < 5; want++ {
		got := log.Append(core.RoleUser, textParts("msg"))
		if got != want {
			t.Fatalf("expected id %d, got %d", want, got)
		}
	}

	if log.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", log.Len())
	}
}

func TestAppend_ActivatesNode(t *testing.T) {
	log := New()
	id := log.Append(core.RoleUser, textParts("hello"))

	node, ok := log.Get(id)
	if !ok {
		t.Fatal("node not found after append")
	}
	if !node.Active {
		t.Error("appended node should be active")
	}
	if node.CreatedAt.IsZero() {
		t.Error("appended node should carry a timestamp")
	}
}

func TestSetActive_UnknownID(t *testing.T) {
	log := New()
	log.Append(core.RoleUser, textParts("hello"))

	err := log.SetActive(42, false)
	if !errors.Is(err, core.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestSetActive_Idempotent(t *testing.T) {
	log := New()
	id := log.Append(core.RoleUser, textParts("hello"))

	for i := 0; i < 2; i++ {
		if err := log.SetActive(id, false); err != nil {
			t.Fatalf("SetActive failed: %v", err)
		}
	}

	node, _ := log.Get(id)
	if node.Active {
		t.Error("node should stay inactive")
	}
}

func TestToggle_Inverts(t *testing.T) {
	log := New()
	id := log.Append(core.RoleUser, textParts("hello"))

	state, err := log.Toggle(id)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if state {
		t.Error("expected toggle to deactivate an active node")
	}

	state, err = log.Toggle(id)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !state {
		t.Error("expected toggle to reactivate the node")
	}
}

func TestActive_InsertionOrderScenario(t *testing.T) {
	log := New()

	hello := log.Append(core.RoleUser, textParts("Hello"))
	hi := log.Append(core.RoleAssistant, textParts("Hi"))

	if err := log.SetActive(hello, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	active := log.Active()
	if len(active) != 1 {
		t.Fatalf("expected 1 active node, got %d", len(active))
	}
	if active[0].ID != hi {
		t.Errorf("expected node %d active, got %d", hi, active[0].ID)
	}
}

func TestActive_PreservesInsertionOrder(t *testing.T) {
	log := New()
	for i := 0; i < 6; i++ {
		log.Append(core.RoleUser, textParts("msg"))
	}
	for _, id := range []int{1, 4} {
		if err := log.SetActive(id, false); err != nil {
			t.Fatalf("SetActive failed: %v", err)
		}
	}

	want := []int{0, 2, 3, 5}
	if diff := cmp.Diff(want, log.ActiveIDs()); diff != "" {
		t.Errorf("active ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_IDsNeverReused(t *testing.T) {
	log := New()
	log.Append(core.RoleUser, textParts("a"))
	last := log.Append(core.RoleUser, textParts("b"))

	if err := log.Remove(last); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := log.Remove(last); !errors.Is(err, core.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound on second remove, got %v", err)
	}

	next := log.Append(core.RoleUser, textParts("c"))
	if next != last+1 {
		t.Errorf("removed id was reused: expected %d, got %d", last+1, next)
	}
}

func TestSetSystem_SingleActiveSystem(t *testing.T) {
	log := New()

	first := log.SetSystem(textParts("be terse"))
	second := log.SetSystem(textParts("be verbose"))

	firstNode, _ := log.Get(first)
	secondNode, _ := log.Get(second)

	if firstNode.Active {
		t.Error("previous system node should be deactivated")
	}
	if !secondNode.Active {
		t.Error("latest system node should be active")
	}

	// Reactivating the old one must flip them back.
	if err := log.SetActive(first, true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	firstNode, _ = log.Get(first)
	secondNode, _ = log.Get(second)
	if !firstNode.Active || secondNode.Active {
		t.Error("expected exactly the reactivated system node to be active")
	}
}

func TestDeactivate_SparesSystemByDefault(t *testing.T) {
	log := New()
	system := log.SetSystem(textParts("prompt"))
	user := log.Append(core.RoleUser, textParts("hello"))

	log.Deactivate(false)

	systemNode, _ := log.Get(system)
	userNode, _ := log.Get(user)
	if !systemNode.Active {
		t.Error("system node should survive Deactivate(false)")
	}
	if userNode.Active {
		t.Error("user node should be deactivated")
	}

	log.Deactivate(true)
	systemNode, _ = log.Get(system)
	if systemNode.Active {
		t.Error("system node should be deactivated by Deactivate(true)")
	}
}

func TestClone_Independent(t *testing.T) {
	log := New()
	log.Append(core.RoleUser, textParts("hello"))
	log.Append(core.RoleAssistant, textParts("hi"))

	before := log.Nodes()

	clone := log.Clone()
	clone.Append(core.RoleUser, textParts("more"))
	if _, err := clone.Toggle(0); err != nil {
		t.Fatalf("Toggle on clone failed: %v", err)
	}

	if diff := cmp.Diff(before, log.Nodes()); diff != "" {
		t.Errorf("mutating the clone changed the original (-want +got):\n%s", diff)
	}

	if clone.NextID() != 3 || log.NextID() != 2 {
		t.Errorf("unexpected id counters: clone=%d original=%d", clone.NextID(), log.NextID())
	}
}

func TestRows(t *testing.T) {
	log := New()
	log.Append(core.RoleUser, textParts("hello"))
	part, err := content.Image("https://example.com/cat.png")
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	log.Append(core.RoleUser, []content.Part{content.Text("look"), part})

	rows := log.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Summary != "hello" {
		t.Errorf("unexpected summary: %q", rows[0].Summary)
	}
	if rows[1].Summary != "look [image https://example.com/cat.png]" {
		t.Errorf("unexpected multimodal summary: %q", rows[1].Summary)
	}
}

func TestRestore_RejectsDuplicateIDs(t *testing.T) {
	nodes := []Node{
		{ID: 2, Role: core.RoleUser, Content: textParts("a"), Active: true},
		{ID: 2, Role: core.RoleAssistant, Content: textParts("b"), Active: true},
	}

	_, err := Restore(nodes, 0)
	if !errors.Is(err, core.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestRestore_RejectsUnknownRole(t *testing.T) {
	nodes := []Node{{ID: 0, Role: "narrator", Content: textParts("a")}}

	_, err := Restore(nodes, 0)
	if !errors.Is(err, core.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestRestore_KeepsIDsRetired(t *testing.T) {
	nodes := []Node{{ID: 3, Role: core.RoleUser, Content: textParts("a"), Active: true}}

	// next_id beyond the highest node wins: id 4 was removed before saving.
	log, err := Restore(nodes, 5)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := log.Append(core.RoleUser, textParts("b")); got != 5 {
		t.Errorf("expected next id 5, got %d", got)
	}

	// Without a counter the highest id still stays retired.
	log, err = Restore(nodes, 0)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := log.Append(core.RoleUser, textParts("b")); got != 4 {
		t.Errorf("expected next id 4, got %d", got)
	}
}
