package app

import (
	"context"

	"github.com/bwmarrin/discordgo"
	tea "github.com/charmbracelet/bubbletea"
)

// EventHandler is a generic handler for any Discord gateway event.
// It should be a function matching one of discordgo's handler signatures,
// e.g., func(s *discordgo.Session, m *discordgo.VoiceStateUpdate)
type EventHandler any

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	// Context is cancelled when the application stops.
	Context context.Context

	// Session is the open Discord gateway session, or nil when no token is configured.
	Session *discordgo.Session
}

// Module defines the interface that all application modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// EventHandlers returns Discord gateway handlers for this module.
	// They are only registered when a gateway session exists.
	EventHandlers() []EventHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}

// ViewModule is an optional interface for modules that provide the terminal view.
type ViewModule interface {
	// View returns the root model of the terminal program.
	View() tea.Model

	// Attach lets the module push messages into the running program.
	Attach(send func(tea.Msg)) error
}
