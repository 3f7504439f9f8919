package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/config"
	"github.com/restkit/restkit/pkg/storage"
)

func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)
	return sp
}

func newGlamourRenderer() *glamour.TermRenderer {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	return renderer
}

func newHeaderInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 30
	return ti
}

// InitialModel loads persisted state and builds the starting CollectionList
// screen.
func InitialModel(store *storage.Store, cfg config.Config) (Model, error) {
	cols, err := store.LoadAll()
	if err != nil {
		return Model{}, err
	}
	vars, err := store.LoadVariables()
	if err != nil {
		vars = storage.VariableCatalog{Variables: map[string]string{}}
	}

	m := Model{
		store:              store,
		client:             newExecutorClient(cfg),
		cfg:                cfg,
		collections:        cols,
		variables:          vars,
		requestInputs:      collection.RequestInputs{Variables: vars.Variables},
		stack:              []Screen{{Kind: ScreenCollectionList, CollIdx: -1, EndpointIdx: -1, OptIdx: -1}},
		selectedCollection: 0,
		selectedEndpoint:   0,
		spinner:            newSpinner(),
		renderer:           newGlamourRenderer(),
		animSpring:         harmonica.NewSpring(harmonica.FPS(30), 6.0, 0.4),
		animTarget:         1.0,
		responseViewport:   newViewport(),
	}
	return m, nil
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.spinner.Tick, animTick())
}

func animTick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// newCollectionForm builds the huh form for creating/renaming a collection.
func (m *Model) newCollectionForm(existing *collection.Collection) {
	if existing != nil {
		m.formFields.name = existing.Name
	} else {
		m.formFields.name = ""
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collection name").
				Value(&m.formFields.name).
				Validate(func(s string) error {
					if s == "" {
						return errEmptyField
					}
					return nil
				}),
		),
	).WithShowHelp(false)
}

// newEndpointForm builds the huh form for creating/editing an endpoint's
// core fields. Headers are edited in a separate nested sub-mode.
func (m *Model) newEndpointForm(existing *collection.Endpoint) {
	f := &m.formFields
	if existing != nil {
		f.name = existing.Name
		f.method = string(existing.Method)
		f.url = existing.URL
		f.description = existing.Description
		f.bodyTmpl = existing.BodyTemplate
		if existing.TimeoutSecs != nil {
			f.timeoutSecs = strconv.Itoa(*existing.TimeoutSecs)
		} else {
			f.timeoutSecs = ""
		}
		loadAuthFields(f, existing.Auth)
	} else {
		*f = editFormFields{method: string(collection.MethodGet)}
	}

	methodOptions := []huh.Option[string]{
		huh.NewOption("GET", string(collection.MethodGet)),
		huh.NewOption("POST", string(collection.MethodPost)),
		huh.NewOption("PUT", string(collection.MethodPut)),
		huh.NewOption("PATCH", string(collection.MethodPatch)),
		huh.NewOption("DELETE", string(collection.MethodDelete)),
		huh.NewOption("HEAD", string(collection.MethodHead)),
		huh.NewOption("OPTIONS", string(collection.MethodOptions)),
	}
	authOptions := []huh.Option[string]{
		huh.NewOption("None", ""),
		huh.NewOption("Bearer", string(collection.AuthBearer)),
		huh.NewOption("Basic", string(collection.AuthBasic)),
		huh.NewOption("API Key", string(collection.AuthApiKey)),
		huh.NewOption("OAuth2 Client Credentials", string(collection.AuthOAuth2ClientCredential)),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name).Validate(notEmpty),
			huh.NewSelect[string]().Title("Method").Options(methodOptions...).Value(&f.method),
			huh.NewInput().Title("URL").Placeholder("https://api.example.com/{{id}}").Value(&f.url).Validate(notEmpty),
			huh.NewText().Title("Body template").Value(&f.bodyTmpl),
			huh.NewInput().Title("Description").Value(&f.description),
			huh.NewInput().Title("Timeout (seconds, blank = default)").Value(&f.timeoutSecs),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Auth").Options(authOptions...).Value(&f.authKind),
		),
	).WithShowHelp(false)
}

func notEmpty(s string) error {
	if s == "" {
		return errEmptyField
	}
	return nil
}

func loadAuthFields(f *editFormFields, auth *collection.AuthConfig) {
	if auth == nil {
		f.authKind = ""
		return
	}
	f.authKind = string(auth.Kind)
	switch auth.Kind {
	case collection.AuthBearer:
		if auth.Bearer != nil {
			f.bearerToken = auth.Bearer.Token
		}
	case collection.AuthBasic:
		if auth.Basic != nil {
			f.basicUser = auth.Basic.Username
			f.basicPass = auth.Basic.Password
		}
	case collection.AuthApiKey:
		if auth.ApiKey != nil {
			f.apiKeyName = auth.ApiKey.Name
			f.apiKeyValue = auth.ApiKey.Value
			f.apiKeyLoc = string(auth.ApiKey.Location)
		}
	case collection.AuthOAuth2ClientCredential:
		if auth.OAuth2 != nil {
			f.oauthURL = auth.OAuth2.TokenURL
			f.oauthID = auth.OAuth2.ClientID
			f.oauthSecret = auth.OAuth2.ClientSecret
		}
	}
}

// newAuthDetailForm builds the second-stage form collecting the fields for
// whichever auth kind was just selected; called after the first form
// completes since huh groups can't easily branch on an earlier answer.
func (m *Model) newAuthDetailForm() {
	f := &m.formFields
	switch collection.AuthKind(f.authKind) {
	case collection.AuthBearer:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Bearer token").Value(&f.bearerToken),
		)).WithShowHelp(false)
	case collection.AuthBasic:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Username").Value(&f.basicUser),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.basicPass),
		)).WithShowHelp(false)
	case collection.AuthApiKey:
		locOptions := []huh.Option[string]{
			huh.NewOption("Header", string(collection.ApiKeyHeader)),
			huh.NewOption("Query param", string(collection.ApiKeyQueryParam)),
		}
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Key name").Value(&f.apiKeyName),
			huh.NewInput().Title("Key value").Value(&f.apiKeyValue),
			huh.NewSelect[string]().Title("Location").Options(locOptions...).Value(&f.apiKeyLoc),
		)).WithShowHelp(false)
	case collection.AuthOAuth2ClientCredential:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Token URL").Value(&f.oauthURL),
			huh.NewInput().Title("Client ID").Value(&f.oauthID),
			huh.NewInput().Title("Client secret").EchoMode(huh.EchoModePassword).Value(&f.oauthSecret),
			huh.NewInput().Title("Scopes (comma separated)").Value(&f.oauthScopes),
		)).WithShowHelp(false)
	default:
		m.form = nil
	}
}

// newLoadTestForm builds the huh form for configuring a load test run.
func (m *Model) newLoadTestForm(existing *collection.LoadTestConfig) {
	f := &m.formFields
	if existing != nil {
		f.ltConcurrency = strconv.Itoa(existing.Concurrency)
		f.ltDuration = existing.Duration.String()
		if existing.RampUp != nil {
			f.ltRampUp = existing.RampUp.String()
		} else {
			f.ltRampUp = ""
		}
		if existing.RateLimit != nil {
			f.ltRateLimit = strconv.Itoa(*existing.RateLimit)
		} else {
			f.ltRateLimit = ""
		}
	} else {
		f.ltConcurrency = "10"
		f.ltDuration = "30s"
		f.ltRampUp = ""
		f.ltRateLimit = ""
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Concurrency (1-1000)").Value(&f.ltConcurrency).Validate(notEmpty),
			huh.NewInput().Title("Duration (e.g. 30s, 5m)").Value(&f.ltDuration).Validate(notEmpty),
			huh.NewInput().Title("Ramp-up (blank = none)").Value(&f.ltRampUp),
			huh.NewInput().Title("Rate limit, req/s (blank = unbounded)").Value(&f.ltRateLimit),
		),
	).WithShowHelp(false)
}

func newViewport() viewport.Model {
	return viewport.New(80, 20)
}

var errEmptyField = &emptyFieldError{}

type emptyFieldError struct{}

func (e *emptyFieldError) Error() string { return "this field is required" }
