package music_player

import (
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Playback sink kinds.
const (
	SinkMpv      = "mpv"
	SinkLavalink = "lavalink"
)

// Config holds the music player module configuration.
type Config struct {
	SearchEndpoint  string        `env:"SEARCH_ENDPOINT"   envDefault:"https://saavn.dev/api/search/songs"`
	SearchTimeout   time.Duration `env:"SEARCH_TIMEOUT"    envDefault:"10s"`
	SearchRateLimit float64       `env:"SEARCH_RATE_LIMIT" envDefault:"2"`
	SearchRateBurst int           `env:"SEARCH_RATE_BURST" envDefault:"1"`
	SearchCacheTTL  time.Duration `env:"SEARCH_CACHE_TTL"  envDefault:"10m"` // Zero disables the cache

	SourceQuality     string        `env:"PREFERRED_SOURCE_QUALITY"    envDefault:"320kbps"`
	ThumbnailQuality  string        `env:"PREFERRED_THUMBNAIL_QUALITY" envDefault:"500x500"`
	PlaceholderImage  string        `env:"PLACEHOLDER_IMAGE"           envDefault:"/api/placeholder/250/250"`
	ResumeDelay       time.Duration `env:"RESUME_DELAY"                envDefault:"100ms"`
	LoadMoreThreshold int           `env:"LOAD_MORE_THRESHOLD"         envDefault:"5"`

	PlaybackSink string `env:"PLAYBACK_SINK" envDefault:"mpv"`

	MpvBinary string `env:"MPV_BINARY" envDefault:"mpv"`
	MpvSocket string `env:"MPV_SOCKET" envDefault:"/tmp/streamify-mpv.sock"`
	MpvSpawn  bool   `env:"MPV_SPAWN"  envDefault:"true"`

	LavalinkAddress        string `env:"LAVALINK_ADDRESS"`
	LavalinkPassword       string `env:"LAVALINK_PASSWORD"`
	LavalinkGuildID        string `env:"LAVALINK_GUILD_ID"`
	LavalinkVoiceChannelID string `env:"LAVALINK_VOICE_CHANNEL_ID"`
}

// Validate checks value ranges and the settings required by the selected sink.
func (c *Config) Validate() error {
	if c.LoadMoreThreshold <= 0 {
		return fmt.Errorf("LOAD_MORE_THRESHOLD must be positive, got %d", c.LoadMoreThreshold)
	}
	if c.ResumeDelay < 0 {
		return fmt.Errorf("RESUME_DELAY must not be negative, got %s", c.ResumeDelay)
	}
	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must not be negative, got %s", c.SearchCacheTTL)
	}
	if c.SearchRateLimit < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT must not be negative, got %v", c.SearchRateLimit)
	}

	switch c.PlaybackSink {
	case SinkMpv:
		return nil
	case SinkLavalink:
		var errs []error
		if c.LavalinkAddress == "" {
			errs = append(errs, errors.New("LAVALINK_ADDRESS is required"))
		}
		if c.LavalinkPassword == "" {
			errs = append(errs, errors.New("LAVALINK_PASSWORD is required"))
		}
		if _, _, err := c.lavalinkChannel(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unknown PLAYBACK_SINK %q", c.PlaybackSink)
	}
}

// lavalinkChannel parses the guild and voice channel to play into.
func (c *Config) lavalinkChannel() (guildID, channelID snowflake.ID, err error) {
	guildID, err = snowflake.Parse(c.LavalinkGuildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid LAVALINK_GUILD_ID %q: %w", c.LavalinkGuildID, err)
	}
	channelID, err = snowflake.Parse(c.LavalinkVoiceChannelID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid LAVALINK_VOICE_CHANNEL_ID %q: %w", c.LavalinkVoiceChannelID, err)
	}
	return guildID, channelID, nil
}
