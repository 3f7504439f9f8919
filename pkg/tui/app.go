// Package tui provides the terminal user interface for restkit.
// It uses Bubble Tea for the event/render loop described in the design: a
// single-threaded cooperative loop, with HTTP work dispatched to background
// goroutines that report back through program messages.
//
// File organization:
// - app.go: Entry point (Run function)
// - model.go: Model struct, Screen tagged union, message types
// - init.go: Model initialization, forms, spinner/viewport setup
// - update.go: Event handling and state updates
// - view.go: Rendering
// - keys.go: Keyboard input handling, mode-locked editing dispatch
// - styles.go: Visual styling
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/restkit/restkit/pkg/config"
	"github.com/restkit/restkit/pkg/executor"
	"github.com/restkit/restkit/pkg/storage"
)

// Run starts the TUI application. It loads persisted collections and the
// variable catalog, then enters the Bubble Tea event loop until the user
// quits. Terminal state (alt screen, raw mode) is acquired by bubbletea on
// entry and released on every exit path, including panics, by its own
// recover/restore machinery.
func Run() error {
	baseDir, err := storage.DefaultBaseDir()
	if err != nil {
		return err
	}
	store := storage.New(baseDir)

	cfg, err := config.Load(baseDir)
	if err != nil {
		cfg = config.Default()
	}

	m, err := InitialModel(store, cfg)
	if err != nil {
		return err
	}

	prog := tea.NewProgram(m, tea.WithAltScreen())
	globalProgram.Set(prog)

	_, err = prog.Run()

	globalProgram.Set(nil)
	return err
}

// newExecutorClient builds the shared HTTP client from cfg's timeout and
// connection-pool tunables; split out so tests can construct a Model
// without depending on Run's disk-backed config wiring.
func newExecutorClient(cfg config.Config) *executor.Client {
	return executor.NewClientWithConfig(cfg.DefaultTimeout, cfg.MaxIdleConnsPerHost)
}
