package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// lavalinkCallTimeout bounds player updates issued from Lavalink event listeners.
const lavalinkCallTimeout = 5 * time.Second

// Ensure LavalinkSink implements ports.MediaSink.
var _ ports.MediaSink = (*LavalinkSink)(nil)

// pendingVoiceConnection tracks the state of a pending voice connection.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func newPendingVoiceConnection() *pendingVoiceConnection {
	return &pendingVoiceConnection{ready: make(chan struct{})}
}

// onEvent marks an event as received and signals ready if both events are present.
func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
			// Already closed
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer buffers voice events so that VoiceStateUpdate and VoiceServerUpdate
// reach Lavalink together and in order.
type voiceEventBuffer struct {
	mu sync.Mutex

	// From VoiceStateUpdate
	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	// From VoiceServerUpdate
	hasVoiceServer bool
	token          string
	endpoint       string
}

// setVoiceState stores voice state data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

// setVoiceServer stores voice server data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// drain returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) drain() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	// Reset buffer
	b.hasVoiceState = false
	b.hasVoiceServer = false
	b.channelID = nil
	b.sessionID = ""
	b.token = ""
	b.endpoint = ""

	return
}

// LavalinkSinkConfig contains the Lavalink node and the voice channel to play into.
type LavalinkSinkConfig struct {
	Address          string
	Password         string
	GuildID          snowflake.ID
	VoiceChannelID   snowflake.ID
	ProgressInterval time.Duration // Defaults to one second
}

// LavalinkSink plays sources through a Lavalink node into a Discord voice channel.
// The node loads the source URL via its HTTP source manager.
type LavalinkSink struct {
	link      disgolink.Client
	session   *discordgo.Session
	botID     snowflake.ID
	guildID   snowflake.ID
	channelID snowflake.ID
	publisher ports.EventPublisher

	pendingMu   sync.Mutex
	pending     *pendingVoiceConnection
	voiceBuffer voiceEventBuffer

	mu      sync.Mutex
	current *lavalink.Track
	looping bool
	replay  func(ctx context.Context, player disgolink.Player, encoded string) error

	progressInterval time.Duration
	lastProgress     domain.ProgressUpdatedEvent
	removeHandlers   []func()
	stop             chan struct{}
	wg               sync.WaitGroup
}

// NewLavalinkSink creates a LavalinkSink and connects it to the Lavalink node.
// The session must already be open.
func NewLavalinkSink(
	ctx context.Context,
	session *discordgo.Session,
	publisher ports.EventPublisher,
	config LavalinkSinkConfig,
) (*LavalinkSink, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	interval := config.ProgressInterval
	if interval <= 0 {
		interval = time.Second
	}

	sink := &LavalinkSink{
		session:          session,
		botID:            botID,
		guildID:          config.GuildID,
		channelID:        config.VoiceChannelID,
		publisher:        publisher,
		progressInterval: interval,
		stop:             make(chan struct{}),
		replay:           replayEncoded,
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(sink.onTrackStart),
		disgolink.WithListenerFunc(sink.onTrackEnd),
		disgolink.WithListenerFunc(sink.onTrackException),
		disgolink.WithListenerFunc(sink.onTrackStuck),
	)
	sink.link = link

	node, err := link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return sink, nil
}

// Start joins the configured voice channel and starts reporting progress.
func (s *LavalinkSink) Start(ctx context.Context) error {
	if err := checkVoiceChannel(sessionChannelLookup(s.session), s.guildID, s.channelID); err != nil {
		return err
	}

	s.removeHandlers = append(s.removeHandlers,
		s.session.AddHandler(func(_ *discordgo.Session, e *discordgo.VoiceStateUpdate) {
			s.OnVoiceStateUpdate(e)
		}),
		s.session.AddHandler(func(_ *discordgo.Session, e *discordgo.VoiceServerUpdate) {
			s.OnVoiceServerUpdate(e)
		}),
	)

	if err := s.joinChannel(ctx); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.reportProgress()

	return nil
}

// Close stops progress reporting, destroys the player and leaves the voice channel.
func (s *LavalinkSink) Close(ctx context.Context) error {
	close(s.stop)
	s.wg.Wait()

	for _, remove := range s.removeHandlers {
		remove()
	}

	if player := s.link.ExistingPlayer(s.guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", s.guildID, "error", err)
		}
	}

	err := s.session.ChannelVoiceJoinManual(s.guildID.String(), "", false, false)
	s.link.Close()

	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// joinChannel waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (s *LavalinkSink) joinChannel(ctx context.Context) error {
	pending := newPendingVoiceConnection()

	s.pendingMu.Lock()
	s.pending = pending
	s.pendingMu.Unlock()

	defer func() {
		s.pendingMu.Lock()
		s.pending = nil
		s.pendingMu.Unlock()
	}()

	err := s.session.ChannelVoiceJoinManual(s.guildID.String(), s.channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		slog.Info("joined voice channel", "guild", s.guildID, "channel", s.channelID)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return errors.New("timeout waiting for voice connection")
	}
}

// Load resolves sourceURL on the node and assigns it paused.
func (s *LavalinkSink) Load(ctx context.Context, sourceURL string) error {
	node := s.link.BestNode()
	if node == nil {
		return fmt.Errorf("%w: no available Lavalink node", domain.ErrPlayback)
	}

	result, err := node.LoadTracks(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}

	track, err := trackFromLoadResult(result)
	if err != nil {
		return err
	}

	player := s.link.Player(s.guildID)
	if err := player.Update(ctx,
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithPaused(true),
	); err != nil {
		return fmt.Errorf("failed to assign source: %w", err)
	}

	s.mu.Lock()
	s.current = &track
	s.mu.Unlock()

	return nil
}

// Play resumes the assigned source.
func (s *LavalinkSink) Play(ctx context.Context) error {
	if err := s.link.Player(s.guildID).Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (s *LavalinkSink) Pause(ctx context.Context) error {
	if err := s.link.Player(s.guildID).Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Seek jumps to position in the current source.
func (s *LavalinkSink) Seek(ctx context.Context, position time.Duration) error {
	err := s.link.Player(s.guildID).Update(ctx,
		lavalink.WithPosition(lavalink.Duration(position.Milliseconds())),
	)
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SetVolume sets the output volume in [0,1].
func (s *LavalinkSink) SetVolume(ctx context.Context, volume float64) error {
	err := s.link.Player(s.guildID).Update(ctx, lavalink.WithVolume(toLavalinkVolume(volume)))
	if err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// SetLooping enables single-track repeat. Lavalink has no native repeat, so a finished
// track is replayed from the end listener.
func (s *LavalinkSink) SetLooping(_ context.Context, looping bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.looping = looping
	return nil
}

// OnVoiceServerUpdate handles Discord voice server updates.
func (s *LavalinkSink) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	if event.GuildID != s.guildID.String() {
		return
	}

	if s.voiceBuffer.setVoiceServer(event.Token, event.Endpoint) {
		s.forwardBufferedVoiceEvents()
	}

	s.signalPending(false)
}

// OnVoiceStateUpdate handles Discord voice state updates.
func (s *LavalinkSink) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	// Only handle updates for the bot itself
	if event.UserID != s.botID.String() || event.GuildID != s.guildID.String() {
		return
	}

	// Parse the channel ID - if empty, the bot is disconnecting
	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// Handle disconnect immediately (no need to wait for VoiceServerUpdate)
	if channelID == nil {
		s.link.OnVoiceStateUpdate(context.Background(), s.guildID, nil, event.SessionID)
		s.voiceBuffer.drain()
		return
	}

	if s.voiceBuffer.setVoiceState(channelID, event.SessionID) {
		s.forwardBufferedVoiceEvents()
	}

	s.signalPending(true)
}

func (s *LavalinkSink) signalPending(isVoiceState bool) {
	s.pendingMu.Lock()
	pending := s.pending
	s.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(isVoiceState)
	}
}

// forwardBufferedVoiceEvents sends the buffered voice events to Lavalink.
func (s *LavalinkSink) forwardBufferedVoiceEvents() {
	channelID, sessionID, token, endpoint := s.voiceBuffer.drain()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", s.guildID,
		"channel", channelID,
		"hasSessionID", sessionID != "",
	)

	s.link.OnVoiceStateUpdate(context.Background(), s.guildID, channelID, sessionID)
	s.link.OnVoiceServerUpdate(context.Background(), s.guildID, token, endpoint)
}

func (s *LavalinkSink) reportProgress() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			player := s.link.ExistingPlayer(s.guildID)
			if player == nil || player.Track() == nil {
				continue
			}

			event := domain.ProgressUpdatedEvent{
				Position: time.Duration(player.Position()) * time.Millisecond,
				Duration: time.Duration(player.Track().Info.Length) * time.Millisecond,
			}
			if event == s.lastProgress {
				continue
			}
			s.lastProgress = event
			s.publish(event)
		}
	}
}

func (s *LavalinkSink) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (s *LavalinkSink) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	s.mu.Lock()
	looping := s.looping
	current := s.current
	s.mu.Unlock()

	if event.Reason == lavalink.TrackEndReasonFinished && looping && current != nil {
		ctx, cancel := context.WithTimeout(context.Background(), lavalinkCallTimeout)
		defer cancel()

		if err := s.replay(ctx, player, current.Encoded); err != nil {
			slog.Error("failed to replay looping track", "guild", player.GuildID(), "error", err)
			s.publish(domain.PlaybackFailedEvent{Reason: err.Error()})
		}
		return
	}

	if event.Reason == lavalink.TrackEndReasonLoadFailed {
		s.publish(domain.PlaybackFailedEvent{Reason: "failed to load track"})
		return
	}

	s.publish(domain.TrackEndedEvent{Reason: convertEndReason(event.Reason)})
}

// replayEncoded restarts the player on the given track.
func replayEncoded(ctx context.Context, player disgolink.Player, encoded string) error {
	return player.Update(ctx, lavalink.WithEncodedTrack(encoded))
}

func (s *LavalinkSink) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
	s.publish(domain.PlaybackFailedEvent{Reason: event.Exception.Message})
}

func (s *LavalinkSink) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
	s.publish(domain.PlaybackFailedEvent{Reason: "track stuck"})
}

func (s *LavalinkSink) publish(event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish sink event", "error", err)
	}
}

// trackFromLoadResult picks the playable track out of a load result.
func trackFromLoadResult(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], nil
		}
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			return data.Tracks[0], nil
		}
	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("%w: %s", domain.ErrPlayback, data.Message)
	}
	return lavalink.Track{}, fmt.Errorf("%w: source resolved to no track", domain.ErrPlayback)
}

// toLavalinkVolume maps [0,1] onto Lavalink's percentage scale.
func toLavalinkVolume(volume float64) int {
	return int(math.Round(domain.ClampVolume(volume) * 100))
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}
