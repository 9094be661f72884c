package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sglre6355/streamify/internal/app"
	"github.com/sglre6355/streamify/internal/modules/music_player/application"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/streamify/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/streamify/internal/modules/music_player/presentation/tui"
)

const shutdownTimeout = 5 * time.Second

func init() {
	app.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ app.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ app.ViewModule         = (*MusicPlayerModule)(nil)
)

// mediaSink is a ports.MediaSink with a connection lifecycle.
type mediaSink interface {
	ports.MediaSink
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// Compile-time checks that both sinks can be wired.
var (
	_ mediaSink = (*infrastructure.MpvSink)(nil)
	_ mediaSink = (*infrastructure.LavalinkSink)(nil)
)

// MusicPlayerModule provides song search and playback in the terminal.
type MusicPlayerModule struct {
	config *Config

	eventBus        *infrastructure.ChannelEventBus
	sink            mediaSink
	search          *usecases.SearchService
	transport       *usecases.TransportService
	playbackHandler *application.PlaybackEventHandler

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// EventHandlers returns no gateway handlers; the Lavalink sink registers its own.
func (m *MusicPlayerModule) EventHandlers() []app.EventHandler {
	return nil
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the search provider, media sink, services and event handlers.
func (m *MusicPlayerModule) Init(deps app.ModuleDependencies) error {
	if m.config == nil {
		return errors.New("music_player config not loaded")
	}

	parent := deps.Context
	if parent == nil {
		parent = context.Background()
	}
	m.ctx, m.cancel = context.WithCancel(parent)

	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	var provider ports.SearchProvider = infrastructure.NewSaavnClient(infrastructure.SaavnConfig{
		Endpoint:  m.config.SearchEndpoint,
		Timeout:   m.config.SearchTimeout,
		RateLimit: m.config.SearchRateLimit,
		RateBurst: m.config.SearchRateBurst,
	})
	if m.config.SearchCacheTTL > 0 {
		provider = infrastructure.NewMemorySearchCache(provider, m.config.SearchCacheTTL, 0)
	}
	m.search = usecases.NewSearchService(provider, m.eventBus)

	sink, err := m.newSink(deps)
	if err != nil {
		return err
	}
	// Stored before Start so Shutdown releases a partially started sink
	m.sink = sink
	if err := sink.Start(m.ctx); err != nil {
		return fmt.Errorf("failed to start %s sink: %w", m.config.PlaybackSink, err)
	}

	m.transport = usecases.NewTransportService(sink, m.search, m.eventBus, usecases.TransportConfig{
		SourceQuality: m.config.SourceQuality,
		ResumeDelay:   m.config.ResumeDelay,
	})

	m.playbackHandler = application.NewPlaybackEventHandler(m.transport, m.eventBus)
	if err := m.playbackHandler.Start(); err != nil {
		return err
	}

	if err := m.transport.ApplySettings(m.ctx); err != nil {
		slog.Warn("failed to apply initial player settings", "error", err)
	}

	slog.Info("music_player module initialized", "sink", m.config.PlaybackSink)

	return nil
}

func (m *MusicPlayerModule) newSink(deps app.ModuleDependencies) (mediaSink, error) {
	switch m.config.PlaybackSink {
	case SinkLavalink:
		if deps.Session == nil {
			return nil, errors.New("lavalink sink requires DISCORD_TOKEN")
		}
		guildID, channelID, err := m.config.lavalinkChannel()
		if err != nil {
			return nil, err
		}
		return infrastructure.NewLavalinkSink(m.ctx, deps.Session, m.eventBus, infrastructure.LavalinkSinkConfig{
			Address:        m.config.LavalinkAddress,
			Password:       m.config.LavalinkPassword,
			GuildID:        guildID,
			VoiceChannelID: channelID,
		})
	default:
		return infrastructure.NewMpvSink(m.eventBus, infrastructure.MpvConfig{
			Binary:     m.config.MpvBinary,
			SocketPath: m.config.MpvSocket,
			Spawn:      m.config.MpvSpawn,
		}), nil
	}
}

// View returns the terminal view over the module's services.
func (m *MusicPlayerModule) View() tea.Model {
	return tui.NewModel(m.ctx, m.search, m.transport, tui.Options{
		ThumbnailQuality:  m.config.ThumbnailQuality,
		PlaceholderImage:  m.config.PlaceholderImage,
		LoadMoreThreshold: m.config.LoadMoreThreshold,
	})
}

// Attach forwards service updates into the running terminal program.
func (m *MusicPlayerModule) Attach(send func(tea.Msg)) error {
	return tui.SubscribeUpdates(m.eventBus, send)
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Cancel context first to abort in-flight loads and searches
	if m.cancel != nil {
		m.cancel()
	}

	var err error
	if m.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = m.sink.Close(ctx)
	}

	// Close the bus last so the sink's final events are still dispatched
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	return err
}
