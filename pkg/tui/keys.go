package tui

import (
	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-udiff"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/restkit/restkit/pkg/collection"
)

// handleKeyMsg dispatches a key press according to the current screen.
// Editing screens (CollectionEdit, EndpointEdit, LoadTestConfig, and the
// nested header sub-mode) are mode-locked: printable keys go to the active
// form field instead of being interpreted as navigation commands.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.errorMsg = ""
	scr := m.current()

	if m.headerEdit.active {
		return m.handleHeaderEditKey(msg)
	}

	switch scr.Kind {
	case ScreenCollectionEdit:
		return m.handleFormKey(msg, m.submitCollectionEdit)
	case ScreenEndpointEdit:
		return m.handleFormKey(msg, m.submitEndpointEdit)
	case ScreenLoadTestConfig:
		return m.handleFormKey(msg, m.submitLoadTestConfig)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.handleEsc()
	case "?":
		if scr.Kind == ScreenHelp {
			m.pop()
			return m, nil
		}
		return m.pushHelp(), nil
	case "q":
		if scr.Kind == ScreenCollectionList {
			return m, tea.Quit
		}
	}

	switch scr.Kind {
	case ScreenCollectionList:
		return m.handleCollectionListKey(msg)
	case ScreenEndpointList:
		return m.handleEndpointListKey(msg)
	case ScreenEndpointDetail:
		return m.handleEndpointDetailKey(msg)
	case ScreenResponseView:
		return m.handleResponseViewKey(msg)
	case ScreenLoadTestRunning:
		return m.handleLoadTestRunningKey(msg)
	case ScreenConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case ScreenHelp:
		return m.handleHelpKey(msg)
	}

	return m, nil
}

// handleFormKey feeds keys to the active huh form and calls onDone once it
// completes.
func (m Model) handleFormKey(msg tea.KeyMsg, onDone func(Model) (Model, tea.Cmd)) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		m.pop()
		return m, nil
	}
	if m.form == nil {
		return m, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return onDone(m)
	}
	return m, cmd
}

func (m Model) pushHelp() Model {
	m.push(Screen{Kind: ScreenHelp, CollIdx: -1, EndpointIdx: -1, OptIdx: -1})
	return m
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.pop()
	return m, nil
}

func (m Model) handleEsc() (Model, tea.Cmd) {
	scr := m.current()
	if scr.Kind == ScreenLoadTestRunning && m.engine != nil {
		m.engine.Stop()
	}
	if len(m.stack) == 1 {
		return m, tea.Quit
	}
	m.pop()
	return m, nil
}

func (m Model) handleCollectionListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedCollection > 0 {
			m.selectedCollection--
			m.selectedEndpoint = 0
		}
	case "down", "j":
		if m.selectedCollection < len(m.collections)-1 {
			m.selectedCollection++
			m.selectedEndpoint = 0
		}
	case "enter":
		if m.selectedCollectionPtr() != nil {
			m.push(Screen{Kind: ScreenEndpointList, CollIdx: m.selectedCollection, EndpointIdx: -1, OptIdx: -1})
		}
	case "n":
		m.newCollectionForm(nil)
		m.push(Screen{Kind: ScreenCollectionEdit, CollIdx: -1, EndpointIdx: -1, OptIdx: -1})
	case "e":
		if c := m.selectedCollectionPtr(); c != nil {
			m.newCollectionForm(c)
			m.push(Screen{Kind: ScreenCollectionEdit, CollIdx: m.selectedCollection, EndpointIdx: -1, OptIdx: m.selectedCollection})
		}
	case "d":
		if m.selectedCollectionPtr() != nil {
			m.push(Screen{Kind: ScreenConfirmDelete, CollIdx: m.selectedCollection, EndpointIdx: -1, OptIdx: -1, DeleteKind: DeleteCollection})
		}
	}
	return m, nil
}

func (m Model) handleEndpointListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c := m.selectedCollectionPtr()
	switch msg.String() {
	case "up", "k":
		if m.selectedEndpoint > 0 {
			m.selectedEndpoint--
		}
	case "down", "j":
		if c != nil && m.selectedEndpoint < len(c.Endpoints)-1 {
			m.selectedEndpoint++
		}
	case "enter":
		if m.selectedEndpointPtr() != nil {
			m.push(Screen{Kind: ScreenEndpointDetail, CollIdx: m.selectedCollection, EndpointIdx: m.selectedEndpoint, OptIdx: -1})
		}
	case "n":
		m.newEndpointForm(nil)
		m.headerEdit = headerEditState{}
		m.authDetailDone = false
		m.push(Screen{Kind: ScreenEndpointEdit, CollIdx: m.selectedCollection, EndpointIdx: -1, OptIdx: -1})
	case "e":
		if ep := m.selectedEndpointPtr(); ep != nil {
			m.newEndpointForm(ep)
			m.headerEdit = headerEditState{headers: append(collection.OrderedHeaders(nil), ep.Headers...)}
			m.authDetailDone = false
			m.push(Screen{Kind: ScreenEndpointEdit, CollIdx: m.selectedCollection, EndpointIdx: m.selectedEndpoint, OptIdx: m.selectedEndpoint})
		}
	case "d":
		if m.selectedEndpointPtr() != nil {
			m.push(Screen{Kind: ScreenConfirmDelete, CollIdx: m.selectedCollection, EndpointIdx: m.selectedEndpoint, DeleteKind: DeleteEndpoint})
		}
	}
	return m, nil
}

func (m Model) handleEndpointDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ep := m.selectedEndpointPtr()
	switch msg.String() {
	case "r":
		if ep != nil && !m.requestInFlight {
			m.requestInFlight = true
			m.statusMsg = "sending..."
			return m, dispatchRequest(m.client, *ep, m.requestInputs)
		}
	case "l":
		if ep != nil {
			m.newLoadTestForm(ep.LoadTestConfig)
			m.push(Screen{Kind: ScreenLoadTestConfig, CollIdx: m.selectedCollection, EndpointIdx: m.selectedEndpoint, OptIdx: -1})
		}
	}
	return m, nil
}

func (m Model) handleResponseViewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "c" && m.lastResponseFormatted != "" {
		if err := clipboard.WriteAll(m.lastResponseFormatted); err != nil {
			m.statusMsg = "copy failed: " + err.Error()
		} else {
			m.statusMsg = "response copied to clipboard"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.responseViewport, cmd = m.responseViewport.Update(msg)
	return m, cmd
}

func (m Model) handleLoadTestRunningKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	scr := m.current()
	switch msg.String() {
	case "y":
		m.performDelete(scr)
		m.pop()
	case "n":
		m.pop()
	}
	return m, nil
}

func (m *Model) performDelete(scr Screen) {
	switch scr.DeleteKind {
	case DeleteCollection:
		if scr.CollIdx < 0 || scr.CollIdx >= len(m.collections) {
			return
		}
		id := m.collections[scr.CollIdx].ID
		if err := m.store.Delete(id); err != nil {
			m.errorMsg = err.Error()
		}
		m.collections = append(m.collections[:scr.CollIdx:scr.CollIdx], m.collections[scr.CollIdx+1:]...)
		if m.selectedCollection >= len(m.collections) {
			m.selectedCollection = len(m.collections) - 1
		}
	case DeleteEndpoint:
		if scr.CollIdx < 0 || scr.CollIdx >= len(m.collections) {
			return
		}
		c := &m.collections[scr.CollIdx]
		if scr.EndpointIdx < 0 || scr.EndpointIdx >= len(c.Endpoints) {
			return
		}
		id := c.Endpoints[scr.EndpointIdx].ID
		c.RemoveEndpoint(id)
		if err := m.store.Save(*c); err != nil {
			m.errorMsg = err.Error()
		}
		if m.selectedEndpoint >= len(c.Endpoints) {
			m.selectedEndpoint = len(c.Endpoints) - 1
		}
	}
}

func (m Model) submitCollectionEdit(m2 Model) (Model, tea.Cmd) {
	m = m2
	scr := m.current()
	if scr.OptIdx < 0 {
		c := collection.NewCollection(m.formFields.name)
		if err := m.store.Save(c); err != nil {
			m.errorMsg = err.Error()
		}
		m.collections = append(m.collections, c)
		m.selectedCollection = len(m.collections) - 1
	} else if scr.OptIdx < len(m.collections) {
		m.collections[scr.OptIdx].Name = m.formFields.name
		if err := m.store.Save(m.collections[scr.OptIdx]); err != nil {
			m.errorMsg = err.Error()
		}
	}
	m.form = nil
	m.pop()
	return m, nil
}

// submitEndpointEdit runs once the core-fields form completes. If an auth
// kind was picked it detours through the auth detail form first; otherwise
// it drops into the nested header sub-mode, which performs the actual save
// when the user exits it with esc.
func (m Model) submitEndpointEdit(m2 Model) (Model, tea.Cmd) {
	m = m2
	if m.formFields.authKind != "" && !m.authDetailDone {
		m.authDetailDone = true
		m.newAuthDetailForm()
		return m, nil
	}
	m.form = nil
	m.headerEdit.active = true
	m.headerEdit.idx = -1
	m.headerEdit.onKey = true
	m.headerEdit.keyInput = newHeaderInput("Header-Name")
	m.headerEdit.keyInput.Focus()
	m.headerEdit.valInput = newHeaderInput("value")
	m.bodyDiffPreview = bodyTemplateDiff(m, m.formFields.bodyTmpl)
	return m, nil
}

// bodyTemplateDiff compares the body template being saved against the
// endpoint's previous template, so the header sub-mode can show what a body
// edit actually changed before it's persisted.
func bodyTemplateDiff(m Model, newBody string) string {
	scr := m.current()
	if scr.CollIdx < 0 || scr.CollIdx >= len(m.collections) || scr.OptIdx < 0 {
		return ""
	}
	c := &m.collections[scr.CollIdx]
	if scr.OptIdx >= len(c.Endpoints) {
		return ""
	}
	oldBody := c.Endpoints[scr.OptIdx].BodyTemplate
	if oldBody == newBody {
		return ""
	}
	return udiff.Unified("before", "after", oldBody, newBody)
}

// saveEndpointEdit persists the endpoint built from the completed form plus
// whatever header sub-mode accumulated, then navigates back.
func (m Model) saveEndpointEdit() (Model, tea.Cmd) {
	scr := m.current()
	if scr.CollIdx < 0 || scr.CollIdx >= len(m.collections) {
		m.pop()
		return m, nil
	}
	c := &m.collections[scr.CollIdx]

	id := ""
	if scr.OptIdx >= 0 && scr.OptIdx < len(c.Endpoints) {
		id = c.Endpoints[scr.OptIdx].ID
	} else {
		id = uuid.NewString()
	}
	ep := endpointFromForm(m.formFields, m.headerEdit.headers, id)
	if scr.OptIdx >= 0 {
		c.ReplaceEndpoint(ep)
	} else {
		c.AddEndpoint(ep)
		m.selectedEndpoint = len(c.Endpoints) - 1
	}
	if err := m.store.Save(*c); err != nil {
		m.errorMsg = err.Error()
	}

	m.authDetailDone = false
	m.headerEdit = headerEditState{}
	m.pop()
	return m, nil
}

func (m Model) submitLoadTestConfig(m2 Model) (Model, tea.Cmd) {
	m = m2
	cfg, errMsg := loadTestConfigFromForm(m.formFields)
	if errMsg != "" {
		m.loadTestErr = errMsg
		return m, nil
	}
	m.engineCfg = cfg
	scr := m.current()
	ep := m.selectedEndpointPtr()
	if ep == nil {
		m.pop()
		return m, nil
	}
	ep.LoadTestConfig = &cfg
	if scr.CollIdx >= 0 && scr.CollIdx < len(m.collections) {
		if err := m.store.Save(m.collections[scr.CollIdx]); err != nil {
			m.errorMsg = err.Error()
		}
	}

	engine, err := newLoadTestEngine(cfg, *ep, m.requestInputs, m.client, m.cfg.WorkerSleep, m.cfg.RPSSampleWindow, m.cfg.TimeSeriesSampleInterval)
	if err != nil {
		m.loadTestErr = err.Error()
		return m, nil
	}
	m.engine = engine
	m.loadTestTarget = ep
	m.loadTestErr = ""
	m.form = nil
	m.pop()
	m.push(Screen{Kind: ScreenLoadTestRunning, CollIdx: scr.CollIdx, EndpointIdx: scr.EndpointIdx, OptIdx: -1})
	return m, startLoadTestCmd(engine)
}

// moveHeaderSelection cycles the selected header pair through
// -1 ("add new") and every existing index, loading the selected pair's
// key/value into the inputs so it can be edited in place.
func (m Model) moveHeaderSelection(dir int) Model {
	n := len(m.headerEdit.headers)
	if n == 0 {
		return m
	}
	idx := m.headerEdit.idx
	switch {
	case dir < 0:
		if idx <= -1 {
			idx = n - 1
		} else {
			idx--
		}
	default:
		if idx >= n-1 {
			idx = -1
		} else {
			idx++
		}
	}
	m.headerEdit.idx = idx
	if idx >= 0 {
		m.headerEdit.keyInput.SetValue(m.headerEdit.headers[idx].Key)
		m.headerEdit.valInput.SetValue(m.headerEdit.headers[idx].Value)
	} else {
		m.headerEdit.keyInput.SetValue("")
		m.headerEdit.valInput.SetValue("")
	}
	return m
}

func (m Model) handleHeaderEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.headerEdit.active = false
		if m.current().Kind == ScreenEndpointEdit {
			return m.saveEndpointEdit()
		}
		return m, nil
	case "tab":
		m.headerEdit.onKey = !m.headerEdit.onKey
		return m, nil
	case "up":
		return m.moveHeaderSelection(-1), nil
	case "down":
		return m.moveHeaderSelection(1), nil
	case "ctrl+d":
		if m.headerEdit.idx >= 0 && m.headerEdit.idx < len(m.headerEdit.headers) {
			key := m.headerEdit.headers[m.headerEdit.idx].Key
			m.headerEdit.headers.Delete(key)
			m.headerEdit.idx = -1
			m.headerEdit.keyInput.SetValue("")
			m.headerEdit.valInput.SetValue("")
		}
		return m, nil
	case "enter":
		key := m.headerEdit.keyInput.Value()
		val := m.headerEdit.valInput.Value()
		if idx := m.headerEdit.idx; idx >= 0 && idx < len(m.headerEdit.headers) {
			if key != "" {
				m.headerEdit.headers[idx] = collection.HeaderPair{Key: key, Value: val}
			}
		} else if key != "" {
			m.headerEdit.headers.Set(key, val)
		}
		m.headerEdit.idx = -1
		m.headerEdit.keyInput.SetValue("")
		m.headerEdit.valInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	if m.headerEdit.onKey {
		m.headerEdit.keyInput, cmd = m.headerEdit.keyInput.Update(msg)
	} else {
		m.headerEdit.valInput, cmd = m.headerEdit.valInput.Update(msg)
	}
	return m, cmd
}
