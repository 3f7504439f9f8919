package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/huh"

	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/config"
	"github.com/restkit/restkit/pkg/executor"
	"github.com/restkit/restkit/pkg/loadtest"
	"github.com/restkit/restkit/pkg/storage"
)

// ScreenKind names one variant of the screen tagged union.
type ScreenKind int

const (
	ScreenCollectionList ScreenKind = iota
	ScreenCollectionEdit
	ScreenEndpointList
	ScreenEndpointEdit
	ScreenEndpointDetail
	ScreenResponseView
	ScreenLoadTestConfig
	ScreenLoadTestRunning
	ScreenConfirmDelete
	ScreenHelp
)

// DeleteTargetKind distinguishes what ConfirmDelete is about to remove.
type DeleteTargetKind int

const (
	DeleteCollection DeleteTargetKind = iota
	DeleteEndpoint
)

// Screen is the tagged union described in the UI state machine: a kind plus
// whichever indices that variant carries.
type Screen struct {
	Kind        ScreenKind
	CollIdx     int // index into m.collections, -1 when not applicable
	EndpointIdx int // index into the selected collection's endpoints
	OptIdx      int // optional index used by *Edit screens (-1 = new entity)
	DeleteKind  DeleteTargetKind
}

// Model is the Bubble Tea model for restkit's TUI.
type Model struct {
	store  *storage.Store
	client *executor.Client
	cfg    config.Config

	collections []collection.Collection
	variables   storage.VariableCatalog

	stack []Screen // screen navigation stack; stack[len-1] is current

	selectedCollection int
	selectedEndpoint   int

	width, height int
	ready         bool

	statusMsg string
	errorMsg  string

	// Edit forms (huh) for CollectionEdit / EndpointEdit / LoadTestConfig.
	form           *huh.Form
	formFields     editFormFields
	headerEdit     headerEditState
	authDetailDone bool

	// Single-shot request execution.
	requestInFlight bool
	requestInputs   collection.RequestInputs

	lastResponse          *collection.Response
	lastResponseFormatted string
	lastResponseErr       string
	responseViewport      viewport.Model
	schemaViolations      []string

	// bodyDiffPreview shows what changed in an endpoint's body template
	// across an edit, rendered while the nested header sub-mode is active.
	bodyDiffPreview string

	// Load test.
	engine         *loadtest.Engine
	engineCfg      collection.LoadTestConfig
	loadTestErr    string
	loadTestTarget *collection.Endpoint

	spinner    spinner.Model
	renderer   *glamour.TermRenderer
	animSpring harmonica.Spring
	animPos    float64
	animVel    float64
	animTarget float64
}

// editFormFields holds the scratch values huh.Form binds to while editing a
// collection or endpoint; copied into the real struct on submit.
type editFormFields struct {
	name        string
	method      string
	url         string
	description string
	bodyTmpl    string
	timeoutSecs string

	authKind     string
	bearerToken  string
	basicUser    string
	basicPass    string
	apiKeyName   string
	apiKeyValue  string
	apiKeyLoc    string
	oauthURL     string
	oauthID      string
	oauthSecret  string
	oauthScopes  string

	ltConcurrency string
	ltDuration    string
	ltRampUp      string
	ltRateLimit   string
}

// headerEditState tracks the nested two-field sub-mode for editing an
// endpoint's header list.
type headerEditState struct {
	active   bool
	headers  collection.OrderedHeaders
	idx      int // which pair is selected, -1 = "add new"
	onKey    bool // true: editing key field, false: editing value field
	keyInput textinput.Model
	valInput textinput.Model
}

// requestDoneMsg carries the outcome of a single dispatched HTTP request.
type requestDoneMsg struct {
	resp *collection.Response
	err  error
}

// loadTestTickMsg drives the ~10Hz metrics refresh while LoadTestRunning.
type loadTestTickMsg time.Time

// animTickMsg drives the harmonica spring status-dot animation.
type animTickMsg time.Time

// programRef holds the program reference for sending messages from
// goroutines driving background HTTP work.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (p *programRef) Set(prog *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = prog
}

func (p *programRef) Send(msg tea.Msg) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.program != nil {
		p.program.Send(msg)
	}
}

var globalProgram = &programRef{}

// current returns the top of the screen stack.
func (m *Model) current() Screen {
	if len(m.stack) == 0 {
		return Screen{Kind: ScreenCollectionList, CollIdx: -1}
	}
	return m.stack[len(m.stack)-1]
}

// push navigates forward to a new screen.
func (m *Model) push(s Screen) {
	m.stack = append(m.stack, s)
}

// pop navigates back one screen, staying on CollectionList at the root.
func (m *Model) pop() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

func (m *Model) selectedCollectionPtr() *collection.Collection {
	if m.selectedCollection < 0 || m.selectedCollection >= len(m.collections) {
		return nil
	}
	return &m.collections[m.selectedCollection]
}

func (m *Model) selectedEndpointPtr() *collection.Endpoint {
	c := m.selectedCollectionPtr()
	if c == nil || m.selectedEndpoint < 0 || m.selectedEndpoint >= len(c.Endpoints) {
		return nil
	}
	return &c.Endpoints[m.selectedEndpoint]
}
