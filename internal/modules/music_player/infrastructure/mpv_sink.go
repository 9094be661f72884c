package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buger/jsonparser"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

const (
	// DefaultMpvSocket is the IPC socket used when none is configured.
	DefaultMpvSocket = "/tmp/streamify-mpv.sock"

	mpvCommandTimeout = 5 * time.Second
	mpvDialTimeout    = 5 * time.Second
	mpvLoadTimeout    = 15 * time.Second

	// property observer ids
	observeTimePos  = 1
	observeDuration = 2
)

// Ensure MpvSink implements ports.MediaSink.
var _ ports.MediaSink = (*MpvSink)(nil)

// ErrSinkClosed is returned when a command is issued after Close.
var ErrSinkClosed = errors.New("media sink is closed")

// execCommand is replaced in tests.
var execCommand = exec.Command

// MpvConfig contains the mpv process and IPC settings.
type MpvConfig struct {
	Binary           string
	SocketPath       string
	Spawn            bool          // Start mpv ourselves instead of attaching to a running one
	LoadTimeout      time.Duration // Defaults to 15s
	ProgressInterval time.Duration // Minimum interval between progress events; defaults to 1s
}

type mpvReply struct {
	err  string
	data []byte
}

// MpvSink drives an mpv instance over its JSON IPC socket.
type MpvSink struct {
	config    MpvConfig
	publisher ports.EventPublisher

	cmd     *exec.Cmd
	conn    net.Conn
	writeMu sync.Mutex

	nextID    atomic.Int64
	pendingMu sync.Mutex
	pending   map[int64]chan mpvReply

	loadMu     sync.Mutex
	loadWaiter chan error

	progressMu    sync.Mutex
	position      time.Duration
	duration      time.Duration
	lastPublished time.Time

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewMpvSink creates a new MpvSink. Call Start before issuing commands.
func NewMpvSink(publisher ports.EventPublisher, config MpvConfig) *MpvSink {
	if config.Binary == "" {
		config.Binary = "mpv"
	}
	if config.SocketPath == "" {
		config.SocketPath = DefaultMpvSocket
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = mpvLoadTimeout
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = time.Second
	}

	return &MpvSink{
		config:    config,
		publisher: publisher,
		pending:   make(map[int64]chan mpvReply),
		done:      make(chan struct{}),
	}
}

// Start spawns mpv if configured, connects to its IPC socket and subscribes to progress.
func (s *MpvSink) Start(ctx context.Context) error {
	if s.config.Spawn {
		_ = os.Remove(s.config.SocketPath)

		s.cmd = execCommand(s.config.Binary,
			"--idle=yes",
			"--no-video",
			"--no-terminal",
			"--input-ipc-server="+s.config.SocketPath,
		)
		if err := s.cmd.Start(); err != nil {
			return fmt.Errorf("failed to start mpv: %w", err)
		}
		slog.Info("started mpv", "binary", s.config.Binary, "pid", s.cmd.Process.Pid)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		s.killProcess()
		return err
	}
	s.conn = conn

	s.wg.Add(1)
	go s.readLoop()

	if _, err := s.command(ctx, "observe_property", observeTimePos, "time-pos"); err != nil {
		return fmt.Errorf("failed to observe time-pos: %w", err)
	}
	if _, err := s.command(ctx, "observe_property", observeDuration, "duration"); err != nil {
		return fmt.Errorf("failed to observe duration: %w", err)
	}

	slog.Info("connected to mpv", "socket", s.config.SocketPath)
	return nil
}

// dial retries until mpv has created its socket.
func (s *MpvSink) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, mpvDialTimeout)
	defer cancel()

	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "unix", s.config.SocketPath)
		if err == nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to mpv at %s: %w", s.config.SocketPath, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Close shuts mpv down if it was spawned and releases the connection.
func (s *MpvSink) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		// mpv closes the socket instead of replying to quit
		if s.cmd != nil && s.conn != nil {
			if err := s.write(0, "quit"); err != nil {
				slog.Debug("failed to send quit to mpv", "error", err)
			}
		}

		if s.conn != nil {
			err = s.conn.Close()
		}
		s.wg.Wait()

		if s.cmd != nil {
			s.waitProcess(ctx)
			_ = os.Remove(s.config.SocketPath)
		}
	})
	return err
}

func (s *MpvSink) waitProcess(ctx context.Context) {
	exited := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-ctx.Done():
		s.killProcess()
	case <-time.After(2 * time.Second):
		s.killProcess()
	}
}

func (s *MpvSink) killProcess() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

// Load pauses mpv, assigns sourceURL and waits until mpv reports the file as loaded.
func (s *MpvSink) Load(ctx context.Context, sourceURL string) error {
	waiter := make(chan error, 1)
	s.loadMu.Lock()
	s.loadWaiter = waiter
	s.loadMu.Unlock()

	defer func() {
		s.loadMu.Lock()
		if s.loadWaiter == waiter {
			s.loadWaiter = nil
		}
		s.loadMu.Unlock()
	}()

	if _, err := s.command(ctx, "set_property", "pause", true); err != nil {
		return err
	}
	if _, err := s.command(ctx, "loadfile", sourceURL, "replace"); err != nil {
		return err
	}

	select {
	case err := <-waiter:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSinkClosed
	case <-time.After(s.config.LoadTimeout):
		return fmt.Errorf("%w: timeout waiting for source to load", domain.ErrPlayback)
	}
}

// Play resumes playback.
func (s *MpvSink) Play(ctx context.Context) error {
	_, err := s.command(ctx, "set_property", "pause", false)
	return err
}

// Pause pauses playback.
func (s *MpvSink) Pause(ctx context.Context) error {
	_, err := s.command(ctx, "set_property", "pause", true)
	return err
}

// Seek jumps to position.
func (s *MpvSink) Seek(ctx context.Context, position time.Duration) error {
	_, err := s.command(ctx, "seek", position.Seconds(), "absolute")
	return err
}

// SetVolume sets the output volume in [0,1]; mpv uses a 0-100 scale.
func (s *MpvSink) SetVolume(ctx context.Context, volume float64) error {
	_, err := s.command(ctx, "set_property", "volume", domain.ClampVolume(volume)*100)
	return err
}

// SetLooping toggles mpv's own single-file repeat.
func (s *MpvSink) SetLooping(ctx context.Context, looping bool) error {
	value := "no"
	if looping {
		value = "inf"
	}
	_, err := s.command(ctx, "set_property", "loop-file", value)
	return err
}

// command sends one IPC command and waits for its reply.
func (s *MpvSink) command(ctx context.Context, args ...any) ([]byte, error) {
	select {
	case <-s.done:
		return nil, ErrSinkClosed
	default:
	}
	if s.conn == nil {
		return nil, ErrSinkClosed
	}

	id := s.nextID.Add(1)
	replyCh := make(chan mpvReply, 1)

	s.pendingMu.Lock()
	s.pending[id] = replyCh
	s.pendingMu.Unlock()

	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	if err := s.write(id, args...); err != nil {
		return nil, err
	}

	select {
	case reply := <-replyCh:
		if reply.err != "success" {
			return nil, fmt.Errorf("%w: mpv %v: %s", domain.ErrPlayback, args[0], reply.err)
		}
		return reply.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrSinkClosed
	case <-time.After(mpvCommandTimeout):
		return nil, fmt.Errorf("%w: mpv %v timed out", domain.ErrPlayback, args[0])
	}
}

// write encodes one command as a single IPC line.
func (s *MpvSink) write(id int64, args ...any) error {
	payload, err := json.Marshal(struct {
		Command   []any `json:"command"`
		RequestID int64 `json:"request_id,omitempty"`
	}{Command: args, RequestID: id})
	if err != nil {
		return fmt.Errorf("failed to encode mpv command: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("%w: failed to write mpv command: %w", domain.ErrPlayback, err)
	}
	return nil
}

func (s *MpvSink) readLoop() {
	defer s.wg.Done()

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		s.handleLine(scanner.Bytes())
	}

	select {
	case <-s.done:
	default:
		slog.Error("lost connection to mpv", "error", scanner.Err())
		s.publish(domain.PlaybackFailedEvent{Reason: "lost connection to mpv"})
	}
}

func (s *MpvSink) handleLine(line []byte) {
	if id, err := jsonparser.GetInt(line, "request_id"); err == nil {
		if _, err := jsonparser.GetString(line, "event"); err != nil {
			s.deliverReply(id, line)
			return
		}
	}

	event, err := jsonparser.GetString(line, "event")
	if err != nil {
		return
	}

	switch event {
	case "file-loaded":
		s.resolveLoad(nil)
	case "end-file":
		s.handleEndFile(line)
	case "property-change":
		s.handlePropertyChange(line)
	}
}

func (s *MpvSink) deliverReply(id int64, line []byte) {
	status, _ := jsonparser.GetString(line, "error")
	data, _, _, _ := jsonparser.Get(line, "data")

	s.pendingMu.Lock()
	replyCh, ok := s.pending[id]
	s.pendingMu.Unlock()

	if ok {
		replyCh <- mpvReply{err: status, data: data}
	}
}

// resolveLoad hands the outcome to a pending Load. Returns false if none was waiting.
func (s *MpvSink) resolveLoad(err error) bool {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.loadWaiter == nil {
		return false
	}

	select {
	case s.loadWaiter <- err:
	default:
	}
	s.loadWaiter = nil
	return true
}

func (s *MpvSink) handleEndFile(line []byte) {
	reason, _ := jsonparser.GetString(line, "reason")
	slog.Debug("mpv file ended", "reason", reason)

	switch reason {
	case "eof":
		s.publish(domain.TrackEndedEvent{Reason: domain.TrackEndFinished})
	case "error":
		detail, _ := jsonparser.GetString(line, "file_error")
		if detail == "" {
			detail = "mpv could not play the source"
		}
		if s.resolveLoad(fmt.Errorf("%w: %s", domain.ErrPlayback, detail)) {
			return
		}
		s.publish(domain.PlaybackFailedEvent{Reason: detail})
	case "redirect":
		// followed by mpv itself
	case "quit":
		s.publish(domain.TrackEndedEvent{Reason: domain.TrackEndCleanup})
	default:
		// "stop" is emitted for the previous file when loadfile replaces it
		s.publish(domain.TrackEndedEvent{Reason: domain.TrackEndReplaced})
	}
}

func (s *MpvSink) handlePropertyChange(line []byte) {
	id, err := jsonparser.GetInt(line, "id")
	if err != nil {
		return
	}

	// data is absent or null while nothing is loaded
	var value time.Duration
	if seconds, err := jsonparser.GetFloat(line, "data"); err == nil && seconds > 0 {
		value = time.Duration(seconds * float64(time.Second))
	}

	s.progressMu.Lock()
	durationChanged := false
	switch id {
	case observeTimePos:
		s.position = value
	case observeDuration:
		durationChanged = s.duration != value
		s.duration = value
	default:
		s.progressMu.Unlock()
		return
	}

	now := time.Now()
	if !durationChanged && now.Sub(s.lastPublished) < s.config.ProgressInterval {
		s.progressMu.Unlock()
		return
	}
	s.lastPublished = now
	event := domain.ProgressUpdatedEvent{Position: s.position, Duration: s.duration}
	s.progressMu.Unlock()

	s.publish(event)
}

func (s *MpvSink) publish(event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish sink event", "error", err)
	}
}
