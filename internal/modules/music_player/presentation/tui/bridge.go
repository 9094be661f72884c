package tui

import (
	"context"
	"log/slog"
	"reflect"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// SubscribeUpdates forwards search and player updates from the event bus into a running
// program. The messages carry no state; the model re-reads the service snapshots.
//
// send is called from its own goroutine so the bus dispatcher never waits on the program.
func SubscribeUpdates(subscriber ports.EventSubscriber, send func(tea.Msg)) error {
	forward := func(msg tea.Msg) func(context.Context, domain.Event) {
		return func(context.Context, domain.Event) {
			go send(msg)
		}
	}

	if err := subscriber.Subscribe(
		reflect.TypeOf((*domain.SearchUpdatedEvent)(nil)).Elem(),
		forward(searchUpdatedMsg{}),
	); err != nil {
		return err
	}

	if err := subscriber.Subscribe(
		reflect.TypeOf((*domain.PlayerUpdatedEvent)(nil)).Elem(),
		forward(playerUpdatedMsg{}),
	); err != nil {
		return err
	}

	slog.Debug("terminal view subscribed to updates")
	return nil
}
