// Package watch renders a live terminal view of an in-progress
// comparison campaign, fed by orchestrator events.
package watch

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/runner"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(28)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type status int

const (
	statusPending status = iota
	statusRunning
	statusDone
	statusFailed
)

type row struct {
	label   string
	status  status
	started time.Time
	runtime time.Duration
	errMsg  string
}

type tickMsg time.Time

// eventMsg wraps a runner event for the bubbletea loop.
type eventMsg runner.Event

// closedMsg signals the event channel is drained.
type closedMsg struct{}

// Model is the campaign status view.
type Model struct {
	rows   []row
	index  map[string]int
	events <-chan runner.Event
	start  time.Time
	done   bool
}

// NewModel seeds the view with every planned run in display order.
func NewModel(labels []string, events <-chan runner.Event) Model {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	rows := make([]row, len(sorted))
	for i, label := range sorted {
		rows[i] = row{label: label}
		index[label] = i
	}
	return Model{rows: rows, index: index, events: events, start: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick())
}

func waitForEvent(events <-chan runner.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tick()
	case eventMsg:
		ev := runner.Event(msg)
		if i, ok := m.index[ev.Spec.Label()]; ok {
			switch ev.Type {
			case runner.EventStart:
				m.rows[i].status = statusRunning
				m.rows[i].started = time.Now()
			case runner.EventDone:
				m.rows[i].runtime = ev.Result.Runtime
				if ev.Result.Err != "" {
					m.rows[i].status = statusFailed
					m.rows[i].errMsg = ev.Result.Err
				} else {
					m.rows[i].status = statusDone
				}
			}
		}
		return m, waitForEvent(m.events)
	case closedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("neutronstudy campaign"))
	b.WriteByte('\n')
	for _, r := range m.rows {
		b.WriteString(labelStyle.Render(r.label))
		switch r.status {
		case statusPending:
			b.WriteString(pendingStyle.Render("pending"))
		case statusRunning:
			b.WriteString(runningStyle.Render(fmt.Sprintf("running  %s", time.Since(r.started).Round(time.Second))))
		case statusDone:
			b.WriteString(okStyle.Render(fmt.Sprintf("ok       %s", r.runtime.Round(time.Second))))
		case statusFailed:
			msg := r.errMsg
			if len(msg) > 40 {
				msg = msg[:40] + "..."
			}
			b.WriteString(failStyle.Render(fmt.Sprintf("FAILED   %s", msg)))
		}
		b.WriteByte('\n')
	}
	pending, running, ok, failed := m.counts()
	b.WriteString(footerStyle.Render(fmt.Sprintf(
		"elapsed %s  |  %d pending  %d running  %d ok  %d failed  |  q to quit",
		time.Since(m.start).Round(time.Second), pending, running, ok, failed)))
	return b.String()
}

func (m Model) counts() (pending, running, ok, failed int) {
	for _, r := range m.rows {
		switch r.status {
		case statusPending:
			pending++
		case statusRunning:
			running++
		case statusDone:
			ok++
		case statusFailed:
			failed++
		}
	}
	return
}

// Run drives the view until the event channel closes or the user
// quits. Callers keep reading results from the orchestrator; this only
// consumes the observation stream.
func Run(labels []string, events <-chan runner.Event) error {
	p := tea.NewProgram(NewModel(labels, events))
	_, err := p.Run()
	return err
}
