package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/restkit/restkit/pkg/loadtest"
	"github.com/restkit/restkit/pkg/metrics"
)

// View renders the current screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.errorMsg != "" {
		return ErrorStyle.Render("error: "+m.errorMsg) + "\n\n" + m.viewCurrentScreen()
	}
	return m.viewCurrentScreen()
}

func (m Model) viewCurrentScreen() string {
	switch m.current().Kind {
	case ScreenCollectionList:
		return m.viewCollectionList()
	case ScreenCollectionEdit:
		return m.viewForm("New / edit collection")
	case ScreenEndpointList:
		return m.viewEndpointList()
	case ScreenEndpointEdit:
		return m.viewEndpointEdit()
	case ScreenEndpointDetail:
		return m.viewEndpointDetail()
	case ScreenResponseView:
		return m.viewResponse()
	case ScreenLoadTestConfig:
		return m.viewForm("Configure load test")
	case ScreenLoadTestRunning:
		return m.viewLoadTestRunning()
	case ScreenConfirmDelete:
		return m.viewConfirmDelete()
	case ScreenHelp:
		return m.viewHelp()
	}
	return ""
}

func (m Model) viewCollectionList() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Collections"))
	b.WriteString("\n\n")
	if len(m.collections) == 0 {
		b.WriteString(DimStyle.Render("  (no collections yet — press 'n' to create one)\n"))
	}
	for i, c := range m.collections {
		line := fmt.Sprintf("  %-30s %d endpoint(s)", c.Name, len(c.Endpoints))
		if i == m.selectedCollection {
			b.WriteString(ListItemSelectedStyle.Render("> " + line[1:]))
		} else {
			b.WriteString(ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter("enter open  n new  e rename  d delete  ? help  q quit"))
	return b.String()
}

func (m Model) viewEndpointList() string {
	c := m.selectedCollectionPtr()
	var b strings.Builder
	title := "Endpoints"
	if c != nil {
		title = fmt.Sprintf("Endpoints — %s", c.Name)
	}
	b.WriteString(PanelTitleStyle.Render(title))
	b.WriteString("\n\n")
	if c == nil || len(c.Endpoints) == 0 {
		b.WriteString(DimStyle.Render("  (no endpoints yet — press 'n' to create one)\n"))
	} else {
		for i, ep := range c.Endpoints {
			badge := MethodStyle(string(ep.Method)).Render(fmt.Sprintf("%-7s", ep.Method))
			line := fmt.Sprintf("%s %s", badge, ep.Name)
			if i == m.selectedEndpoint {
				b.WriteString("> " + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter("enter details  n new  e edit  d delete  esc back  ? help"))
	return b.String()
}

func (m Model) viewEndpointDetail() string {
	ep := m.selectedEndpointPtr()
	if ep == nil {
		return m.renderFooter("esc back")
	}
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render(ep.Name))
	b.WriteString("\n\n")
	b.WriteString(MethodStyle(string(ep.Method)).Render(string(ep.Method)) + " " + ep.URL)
	b.WriteString("\n")
	if ep.Description != "" {
		b.WriteString(m.renderDescription(ep.Description))
		b.WriteString("\n")
	}
	if len(ep.Headers) > 0 {
		b.WriteString("\nHeaders:\n")
		for _, h := range ep.Headers {
			b.WriteString(fmt.Sprintf("  %s: %s\n", h.Key, h.Value))
		}
	}
	if ep.BodyTemplate != "" {
		b.WriteString("\nBody template:\n")
		b.WriteString(DimStyle.Render(ep.BodyTemplate))
		b.WriteString("\n")
	}
	if ep.Auth != nil {
		b.WriteString(fmt.Sprintf("\nAuth: %s\n", ep.Auth.Kind))
	}
	if m.requestInFlight {
		b.WriteString("\n" + m.spinner.View() + " sending...\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n" + DimStyle.Render(m.statusMsg) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter("r run request  l configure load test  esc back  ? help"))
	return b.String()
}

func (m Model) viewResponse() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Response"))
	b.WriteString("\n\n")
	if m.lastResponseErr != "" {
		b.WriteString(ErrorStyle.Render("Error: " + m.lastResponseErr))
		b.WriteString("\n")
	} else if m.lastResponse != nil {
		b.WriteString(StatusCodeStyle(m.lastResponse.Status).Render(fmt.Sprintf("%d", m.lastResponse.Status)))
		b.WriteString(fmt.Sprintf("  %s", m.lastResponse.Total))
		if m.lastResponse.Traffic != nil {
			b.WriteString(DimStyle.Render(fmt.Sprintf("  (wait %s, download %s)", m.lastResponse.Traffic.Waiting, m.lastResponse.Traffic.ContentDownload)))
		}
		b.WriteString("\n\n")
		b.WriteString(m.responseViewport.View())
		if len(m.schemaViolations) > 0 {
			b.WriteString("\n\n")
			b.WriteString(WarningStyle.Render("Schema violations:"))
			b.WriteString("\n")
			for _, v := range m.schemaViolations {
				b.WriteString("  " + v + "\n")
			}
		}
	}
	if m.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render(m.statusMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter("pgup/pgdown scroll  c copy  esc back"))
	return b.String()
}

func (m Model) viewForm(title string) string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render(title))
	b.WriteString("\n\n")
	if m.form != nil {
		b.WriteString(m.form.View())
	}
	if m.loadTestErr != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.loadTestErr))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter("esc cancel"))
	return b.String()
}

func (m Model) viewEndpointEdit() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Edit endpoint"))
	b.WriteString("\n\n")
	if m.headerEdit.active {
		b.WriteString("Headers (tab switch field, up/down select, enter add/save, ctrl+d delete, esc finish)\n\n")
		for i, h := range m.headerEdit.headers {
			marker := "  "
			if i == m.headerEdit.idx {
				marker = "> "
			}
			b.WriteString(fmt.Sprintf("%s%s: %s\n", marker, h.Key, h.Value))
		}
		b.WriteString("\n")
		b.WriteString(m.headerEdit.keyInput.View() + "  " + m.headerEdit.valInput.View())
		if m.bodyDiffPreview != "" {
			b.WriteString("\n\nBody template changes:\n")
			b.WriteString(DimStyle.Render(m.bodyDiffPreview))
		}
	} else if m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render("finishing this form opens header editing next"))
	}
	b.WriteString("\n\n")
	if m.headerEdit.active {
		b.WriteString(m.renderFooter("esc save endpoint"))
	} else {
		b.WriteString(m.renderFooter("esc cancel"))
	}
	return b.String()
}

func (m Model) viewLoadTestRunning() string {
	var b strings.Builder
	ep := m.loadTestTarget
	name := ""
	if ep != nil {
		name = ep.Name
	}
	b.WriteString(PanelTitleStyle.Render("Load test — " + name))
	b.WriteString("\n\n")

	if m.engine == nil {
		b.WriteString(DimStyle.Render("no engine running"))
		return b.String()
	}

	state := m.engine.State()
	b.WriteString(StateStyle(state.String()).Render(state.String()))
	b.WriteString(fmt.Sprintf("  elapsed %s / %s\n\n", m.engine.Elapsed().Round(time.Second), m.engineCfg.Duration))

	snap := m.engine.Aggregator().Snapshot()
	stats := metrics.Compute(snap.Latencies, snap.Successful, snap.Failed, snap.Total, m.engine.Elapsed())

	b.WriteString(fmt.Sprintf("total: %d   success: %d   failed: %d   rps: %.1f\n",
		snap.Total, snap.Successful, snap.Failed, snap.CurrentRPS))
	b.WriteString(fmt.Sprintf("min: %s  p50: %s  p90: %s  p95: %s  p99: %s  max: %s\n",
		stats.Min, stats.P50, stats.P90, stats.P95, stats.P99, stats.Max))
	b.WriteString(fmt.Sprintf("success rate: %.1f%%  error rate: %.1f%%\n",
		stats.SuccessRate*100, stats.ErrorRate*100))

	if len(snap.ErrorCounts) > 0 {
		b.WriteString("\nerrors:\n")
		for kind, count := range snap.ErrorCounts {
			b.WriteString(fmt.Sprintf("  %s: %d\n", kind, count))
		}
	}

	if trend := renderP95Trend(snap.TimeSeries); trend != "" {
		b.WriteString("\np95 trend:\n")
		b.WriteString(trend)
	}

	if state == loadtest.Running || state == loadtest.Stopping {
		dot := "o"
		if m.animPos > 0.5 {
			dot = "O"
		}
		b.WriteString("\n" + StateStyle(state.String()).Render(dot))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter("esc stop and back"))
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	scr := m.current()
	var what string
	switch scr.DeleteKind {
	case DeleteCollection:
		if scr.CollIdx >= 0 && scr.CollIdx < len(m.collections) {
			what = "collection \"" + m.collections[scr.CollIdx].Name + "\""
		}
	case DeleteEndpoint:
		if c := m.selectedCollectionPtr(); c != nil && scr.EndpointIdx >= 0 && scr.EndpointIdx < len(c.Endpoints) {
			what = "endpoint \"" + c.Endpoints[scr.EndpointIdx].Name + "\""
		}
	}
	var b strings.Builder
	b.WriteString(WarningStyle.Render("Delete " + what + "?"))
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter("y confirm  n cancel"))
	return b.String()
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Help"))
	b.WriteString("\n\n")
	lines := []string{
		"j/k or up/down    move selection",
		"enter             open / select",
		"n                 new collection / endpoint",
		"e                 edit selected",
		"d                 delete selected (asks to confirm)",
		"r                 run the selected request once",
		"l                 configure and start a load test",
		"esc               back / cancel / stop a running test",
		"?                 toggle this help",
		"ctrl+c            quit",
	}
	for _, l := range lines {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter("any key to close"))
	return b.String()
}

func (m Model) renderFooter(hints string) string {
	return StatusBarStyle.Width(m.width).Render(" " + hints)
}

// renderP95Trend draws each time-series point sampled during a load test as
// a bar scaled to the series' own max p95, one row per point, oldest first.
// Points are emitted periodically by the engine's time-series sampler; an
// empty or single-point series has nothing to compare against and renders
// nothing.
func renderP95Trend(points []metrics.TimeSeriesPoint) string {
	if len(points) < 2 {
		return ""
	}
	var max time.Duration
	for _, p := range points {
		if p.P95 > max {
			max = p.P95
		}
	}
	if max == 0 {
		return ""
	}

	const width = 40
	var b strings.Builder
	for _, p := range points {
		barWidth := int(float64(p.P95) / float64(max) * width)
		if barWidth < 1 {
			barWidth = 1
		}
		b.WriteString(fmt.Sprintf("  %6s %s%s %s\n",
			p.Elapsed.Round(time.Second), strings.Repeat("█", barWidth),
			strings.Repeat("░", width-barWidth), p.P95))
	}
	return b.String()
}

// renderDescription renders an endpoint's markdown description through
// glamour, falling back to dimmed plain text if rendering fails. A
// description may also carry a "schema:" prefix formatter.SchemaFromDescription
// parses separately; that convention is untouched by markdown rendering.
func (m Model) renderDescription(desc string) string {
	if m.renderer == nil {
		return DimStyle.Render(desc)
	}
	out, err := m.renderer.Render(desc)
	if err != nil {
		return DimStyle.Render(desc)
	}
	return strings.TrimRight(out, "\n")
}
