package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoView is returned by Run when no loaded module provides a view.
var ErrNoView = errors.New("no module provides a view")

// App manages the application lifecycle and module coordination.
type App struct {
	config  *Config
	session *discordgo.Session
	modules []Module

	ctx    context.Context
	cancel context.CancelFunc

	// programOptions are appended to the defaults when the view runs.
	programOptions []tea.ProgramOption
}

// NewApp creates a new App instance with the given configuration.
func NewApp(cfg *Config) *App {
	return &App{
		config:  cfg,
		modules: make([]Module, 0),
	}
}

// LoadModules loads modules from the global registry.
func (a *App) LoadModules() {
	a.modules = Modules()
}

// Start loads module configuration, opens the optional Discord session and
// initializes all modules.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if err := a.loadModuleConfigs(); err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}

	if a.config.DiscordToken != "" {
		if err := a.openSession(); err != nil {
			return err
		}
	}

	if err := a.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	a.registerEventHandlers()

	return nil
}

// Run runs the first view module as a terminal program until the user quits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	view := a.viewModule()
	if view == nil {
		return ErrNoView
	}

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, a.programOptions...)
	program := tea.NewProgram(view.View(), options...)

	if err := view.Attach(program.Send); err != nil {
		return fmt.Errorf("failed to attach view: %w", err)
	}

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal program failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the modules and the Discord session.
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}

	// Shutdown in reverse order of initialization
	for i := len(a.modules) - 1; i >= 0; i-- {
		mod := a.modules[i]
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if a.session != nil {
		return a.session.Close()
	}

	return nil
}

func (a *App) openSession() error {
	session, err := discordgo.New("Bot " + a.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	a.session = session

	slog.Info("opened Discord session",
		"user_id", session.State.User.ID,
		"username", session.State.User.Username,
	)

	return nil
}

// loadModuleConfigs calls LoadConfig on every configurable module.
func (a *App) loadModuleConfigs() error {
	for _, mod := range a.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("%s: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (a *App) initModules() error {
	deps := ModuleDependencies{
		Context: a.ctx,
		Session: a.session,
	}

	for _, mod := range a.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(a.modules))
	for i, mod := range a.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// registerEventHandlers registers all module event handlers with the session.
func (a *App) registerEventHandlers() {
	if a.session == nil {
		return
	}

	for _, mod := range a.modules {
		for _, handler := range mod.EventHandlers() {
			a.session.AddHandler(handler)
		}
	}
}

// viewModule returns the first loaded module that provides a view.
func (a *App) viewModule() ViewModule {
	for _, mod := range a.modules {
		if view, ok := mod.(ViewModule); ok {
			return view
		}
	}
	return nil
}
