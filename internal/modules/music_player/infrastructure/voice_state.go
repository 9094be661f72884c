package infrastructure

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// ErrNotVoiceChannel is returned when the configured channel cannot carry audio.
var ErrNotVoiceChannel = errors.New("channel is not a voice channel of the guild")

// channelLookup fetches a channel by ID.
type channelLookup func(channelID string) (*discordgo.Channel, error)

// sessionChannelLookup reads channels from the session state cache, falling back to the API.
func sessionChannelLookup(session *discordgo.Session) channelLookup {
	return func(channelID string) (*discordgo.Channel, error) {
		if session.State != nil {
			if channel, err := session.State.Channel(channelID); err == nil {
				return channel, nil
			}
		}
		return session.Channel(channelID)
	}
}

// checkVoiceChannel verifies that channelID is a voice or stage channel of guildID.
func checkVoiceChannel(lookup channelLookup, guildID, channelID snowflake.ID) error {
	channel, err := lookup(channelID.String())
	if err != nil {
		return fmt.Errorf("failed to look up voice channel %s: %w", channelID, err)
	}

	if channel.GuildID != guildID.String() {
		return fmt.Errorf("%w: %s belongs to guild %s", ErrNotVoiceChannel, channelID, channel.GuildID)
	}

	switch channel.Type {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return nil
	default:
		return fmt.Errorf("%w: %s has type %d", ErrNotVoiceChannel, channelID, channel.Type)
	}
}
