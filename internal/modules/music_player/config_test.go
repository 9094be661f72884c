package music_player

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	m := &MusicPlayerModule{}

	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := m.config
	if cfg.PlaybackSink != SinkMpv {
		t.Errorf("expected sink %q, got %q", SinkMpv, cfg.PlaybackSink)
	}
	if cfg.SourceQuality != "320kbps" {
		t.Errorf("expected source quality %q, got %q", "320kbps", cfg.SourceQuality)
	}
	if cfg.ThumbnailQuality != "500x500" {
		t.Errorf("expected thumbnail quality %q, got %q", "500x500", cfg.ThumbnailQuality)
	}
	if cfg.ResumeDelay != 100*time.Millisecond {
		t.Errorf("expected resume delay 100ms, got %s", cfg.ResumeDelay)
	}
	if cfg.LoadMoreThreshold != 5 {
		t.Errorf("expected threshold 5, got %d", cfg.LoadMoreThreshold)
	}
	if !cfg.MpvSpawn {
		t.Error("expected mpv to be spawned by default")
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SEARCH_ENDPOINT", "http://localhost:3000/api/search/songs")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("RESUME_DELAY", "250ms")
	t.Setenv("PREFERRED_SOURCE_QUALITY", "160kbps")
	t.Setenv("MPV_SPAWN", "false")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.config.SearchEndpoint != "http://localhost:3000/api/search/songs" {
		t.Errorf("unexpected endpoint %q", m.config.SearchEndpoint)
	}
	if m.config.SearchTimeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", m.config.SearchTimeout)
	}
	if m.config.ResumeDelay != 250*time.Millisecond {
		t.Errorf("expected resume delay 250ms, got %s", m.config.ResumeDelay)
	}
	if m.config.SourceQuality != "160kbps" {
		t.Errorf("expected source quality %q, got %q", "160kbps", m.config.SourceQuality)
	}
	if m.config.MpvSpawn {
		t.Error("expected mpv spawn to be disabled")
	}
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("SEARCH_TIMEOUT", "soon")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err == nil {
		t.Error("expected error for invalid duration, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			PlaybackSink:      SinkMpv,
			LoadMoreThreshold: 5,
			ResumeDelay:       100 * time.Millisecond,
		}
	}
	lavalink := func() Config {
		cfg := valid()
		cfg.PlaybackSink = SinkLavalink
		cfg.LavalinkAddress = "localhost:2333"
		cfg.LavalinkPassword = "youshallnotpass"
		cfg.LavalinkGuildID = "123456789012345678"
		cfg.LavalinkVoiceChannelID = "234567890123456789"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func() Config
		wantErr string
	}{
		{name: "mpv", modify: valid},
		{name: "lavalink", modify: lavalink},
		{
			name: "unknown sink",
			modify: func() Config {
				cfg := valid()
				cfg.PlaybackSink = "alsa"
				return cfg
			},
			wantErr: "unknown PLAYBACK_SINK",
		},
		{
			name: "zero threshold",
			modify: func() Config {
				cfg := valid()
				cfg.LoadMoreThreshold = 0
				return cfg
			},
			wantErr: "LOAD_MORE_THRESHOLD",
		},
		{
			name: "negative resume delay",
			modify: func() Config {
				cfg := valid()
				cfg.ResumeDelay = -time.Millisecond
				return cfg
			},
			wantErr: "RESUME_DELAY",
		},
		{
			name: "lavalink without address",
			modify: func() Config {
				cfg := lavalink()
				cfg.LavalinkAddress = ""
				return cfg
			},
			wantErr: "LAVALINK_ADDRESS",
		},
		{
			name: "lavalink with bad guild",
			modify: func() Config {
				cfg := lavalink()
				cfg.LavalinkGuildID = "guild"
				return cfg
			},
			wantErr: "LAVALINK_GUILD_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.modify()
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
