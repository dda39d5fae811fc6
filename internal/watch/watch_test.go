package watch

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/runner"
)

func specFor(label string) config.RunSpec {
	parts := strings.SplitN(label, "/", 2)
	return config.RunSpec{Engine: parts[0], Model: parts[1], Subdir: label}
}

func TestViewReflectsEvents(t *testing.T) {
	labels := []string{"fluka/JEFF", "geant4/QGSP_BERT_HP"}
	events := make(chan runner.Event, 4)
	m := NewModel(labels, events)

	view := m.View()
	if !strings.Contains(view, "2 pending  0 running  0 ok  0 failed") {
		t.Errorf("both runs should start pending:\n%s", view)
	}

	next, _ := m.Update(eventMsg(runner.Event{
		Type: runner.EventStart,
		Spec: specFor("fluka/JEFF"),
	}))
	m = next.(Model)
	if !strings.Contains(m.View(), "1 pending  1 running  0 ok  0 failed") {
		t.Errorf("started run should count as running:\n%s", m.View())
	}

	next, _ = m.Update(eventMsg(runner.Event{
		Type:   runner.EventDone,
		Spec:   specFor("fluka/JEFF"),
		Result: &runner.Result{Engine: "fluka", Model: "JEFF", Success: true, Runtime: 3 * time.Second},
	}))
	m = next.(Model)
	if !strings.Contains(m.View(), "1 pending  0 running  1 ok  0 failed") {
		t.Errorf("finished run should count as ok:\n%s", m.View())
	}

	next, _ = m.Update(eventMsg(runner.Event{
		Type:   runner.EventDone,
		Spec:   specFor("geant4/QGSP_BERT_HP"),
		Result: &runner.Result{Engine: "geant4", Model: "QGSP_BERT_HP", Err: "docker: not found"},
	}))
	m = next.(Model)
	view = m.View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "docker: not found") {
		t.Errorf("failed run should show FAILED with message:\n%s", view)
	}
	if !strings.Contains(view, "0 pending  0 running  1 ok  1 failed") {
		t.Errorf("footer counts wrong:\n%s", view)
	}
}

func TestQuitOnChannelClose(t *testing.T) {
	events := make(chan runner.Event)
	close(events)
	m := NewModel([]string{"fluka/JEFF"}, events)

	msg := waitForEvent(events)()
	if _, ok := msg.(closedMsg); !ok {
		t.Fatalf("drained channel should yield closedMsg, got %T", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if quit := cmd(); quit != tea.Quit() {
		t.Errorf("expected tea.Quit, got %v", quit)
	}
}

func TestUnknownRunIgnored(t *testing.T) {
	events := make(chan runner.Event, 1)
	m := NewModel([]string{"fluka/JEFF"}, events)
	next, _ := m.Update(eventMsg(runner.Event{
		Type: runner.EventStart,
		Spec: specFor("fluka/CENDL"),
	}))
	m = next.(Model)
	// The footer always names every status; only the counts prove no
	// row transitioned.
	if !strings.Contains(m.View(), "1 pending  0 running  0 ok  0 failed") {
		t.Errorf("event for unplanned run must not change any row:\n%s", m.View())
	}
}
