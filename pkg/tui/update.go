package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/executor"
	"github.com/restkit/restkit/pkg/formatter"
	"github.com/restkit/restkit/pkg/loadtest"
)

// dispatchRequest executes ep on a short-lived goroutine and reports the
// result back through a requestDoneMsg; the UI loop never blocks on it.
func dispatchRequest(client *executor.Client, ep collection.Endpoint, inputs collection.RequestInputs) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executor.DefaultTimeout+5*time.Second)
		defer cancel()
		resp, err := client.Execute(ctx, ep, inputs, 0)
		return requestDoneMsg{resp: resp, err: err}
	}
}

// newLoadTestEngine validates cfg and constructs the background engine.
func newLoadTestEngine(cfg collection.LoadTestConfig, ep collection.Endpoint, inputs collection.RequestInputs, client *executor.Client, workerSleep, rpsWindow, timeSeriesInterval time.Duration) (*loadtest.Engine, error) {
	return loadtest.New(cfg, ep, inputs, client, workerSleep, rpsWindow, timeSeriesInterval)
}

// startLoadTestCmd starts the engine's workers/samplers on a dedicated
// background goroutine group and begins the ~10Hz UI refresh ticker.
func startLoadTestCmd(engine *loadtest.Engine) tea.Cmd {
	return func() tea.Msg {
		engine.Start(context.Background())
		return loadTestTickMsg(time.Now())
	}
}

// loadTestTick schedules the next metrics refresh at a 100ms poll cadence,
// so a running test is visibly live even without input.
func loadTestTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return loadTestTickMsg(t)
	})
}

// Update handles all messages and advances Model state. This is the
// cooperative single-threaded loop: it never blocks, and dispatches HTTP
// work to goroutines that report back via messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		updated, cmd := m.handleKeyMsg(msg)
		return updated, cmd

	case tea.WindowSizeMsg:
		m = m.handleWindowResize(msg)

	case spinner.TickMsg:
		if m.requestInFlight || m.current().Kind == ScreenLoadTestRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animTickMsg:
		m = m.handleAnimTick()
		cmds = append(cmds, animTick())

	case requestDoneMsg:
		m = m.handleRequestDone(msg)

	case loadTestTickMsg:
		if m.current().Kind == ScreenLoadTestRunning && m.engine != nil {
			if m.engine.State() == loadtest.Stopped {
				return m, nil
			}
			cmds = append(cmds, loadTestTick())
		}
	}

	if m.current().Kind == ScreenResponseView {
		var cmd tea.Cmd
		m.responseViewport, cmd = m.responseViewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleAnimTick() Model {
	m.animPos, m.animVel = m.animSpring.Update(m.animPos, m.animVel, m.animTarget)
	if m.animTarget > 0.5 && m.animPos > 0.85 {
		m.animTarget = 0.0
	} else if m.animTarget < 0.5 && m.animPos < 0.15 {
		m.animTarget = 1.0
	}
	return m
}

func (m Model) handleWindowResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	vpHeight := m.height - 4
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := m.width - 4
	if vpWidth < 20 {
		vpWidth = 20
	}
	m.responseViewport = viewport.New(vpWidth, vpHeight)
	return m
}

// handleRequestDone stores the single-shot request's outcome and navigates
// to ResponseView.
func (m Model) handleRequestDone(msg requestDoneMsg) Model {
	m.requestInFlight = false
	m.statusMsg = ""

	if msg.err != nil {
		m.lastResponseErr = msg.err.Error()
		m.lastResponse = nil
		m.lastResponseFormatted = ""
	} else {
		m.lastResponseErr = ""
		m.lastResponse = msg.resp
		m.lastResponseFormatted = formatter.Format(msg.resp.Body)

		if ep := m.selectedEndpointPtr(); ep != nil {
			if schemaDoc, ok := formatter.SchemaFromDescription(ep.Description); ok {
				m.schemaViolations = formatter.ValidateAgainstSchema(schemaDoc, msg.resp.Body)
			} else {
				m.schemaViolations = nil
			}
		}
	}

	m.responseViewport.SetContent(m.lastResponseFormatted)
	m.push(Screen{Kind: ScreenResponseView, CollIdx: m.selectedCollection, EndpointIdx: m.selectedEndpoint, OptIdx: -1})
	return m
}
