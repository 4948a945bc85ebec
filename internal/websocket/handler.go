// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/metrics"
	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/protocol"
	"github.com/vitrine-io/vitrine/internal/store"
)

// errRecheck restarts the registration check after a change named the
// connected display. The display may have been renamed, rebound, or
// deleted.
var errRecheck = errors.New("display changed, rechecking registration")

// Options tunes the connection handler. Zero values fall back to the
// defaults below.
type Options struct {
	PingInterval time.Duration
	PongWindow   time.Duration
	ReadWait     time.Duration
}

func (o Options) withDefaults() Options {
	if o.PingInterval == 0 {
		o.PingInterval = 8 * time.Second
	}
	if o.PongWindow == 0 {
		o.PongWindow = 5 * time.Second
	}
	if o.ReadWait == 0 {
		o.ReadWait = 20 * time.Second
	}
	return o
}

// Handler upgrades viewer requests and runs their connection
// lifecycle.
type Handler struct {
	store    *store.Store
	bus      *bus.Bus
	registry *Registry
	opts     Options

	// assetHash is advertised to htmx viewers in the Welcome payload.
	assetHash string

	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler wires a handler against the catalog and the change bus.
func NewHandler(st *store.Store, b *bus.Bus, reg *Registry, assetHash string, opts Options) *Handler {
	return &Handler{
		store:     st,
		bus:       b,
		registry:  reg,
		opts:      opts.withDefaults(),
		assetHash: assetHash,
		upgrader: websocket.Upgrader{
			// Viewers are kiosk devices served from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logging.WithComponent("websocket"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}

	log := h.log.With().Str("remote", r.RemoteAddr).Logger()
	conn := newConn(ws)
	h.registry.add(conn)
	defer h.registry.remove(conn)
	defer conn.Close()

	log.Info().Msg("Viewer connected, waiting for Hello")

	// Hello has no deadline; an unregistered kiosk may sit on the open
	// socket for as long as it likes before identifying.
	hello, err := h.readHello(conn, log)
	if err != nil {
		log.Info().Err(err).Msg("Viewer disconnected before Hello")
		return
	}

	log = log.With().Stringer("display", hello.UUID).Bool("htmx", hello.Htmx).Logger()
	log.Info().Msg("Viewer identified")

	enc := protocol.NewEncoder(hello.Htmx, h.assetHash)
	sub := h.bus.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The heartbeat owns the read half from here on; the send loop
	// owns catalog tracking. First to fail cancels the sibling.
	errc := make(chan error, 2)
	go func() { errc <- h.heartbeat(ctx, conn, log) }()
	go func() { errc <- h.run(ctx, conn, sub, hello.UUID, enc, log) }()

	err = <-errc
	cancel()
	conn.Close()
	<-errc

	log.Info().Err(err).Msg("Viewer disconnected")
}

// readHello reads frames until one parses as Hello. Unparseable frames
// are logged and skipped.
func (h *Handler) readHello(conn *Conn, log zerolog.Logger) (protocol.Hello, error) {
	for {
		_, frame, err := conn.ws.ReadMessage()
		if err != nil {
			return protocol.Hello{}, err
		}
		hello, err := protocol.ParseHello(frame)
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring frame received before Hello")
			continue
		}
		return hello, nil
	}
}

// run drives the registration and send phases until the connection
// fails or the context ends.
func (h *Handler) run(ctx context.Context, conn *Conn, sub *bus.Subscription, id uuid.UUID, enc protocol.Encoder, log zerolog.Logger) error {
	// Welcome announces the assigned name once. A display change that
	// keeps the name, such as a rebind to another schedule, restarts
	// the send loop without repeating it.
	welcomed := false
	var lastName string
	for {
		display, ok := h.store.Display(id)
		if !ok {
			log.Info().Msg("Display not registered, sending Pending")
			frame, err := enc.Pending()
			if err != nil {
				return err
			}
			if err := conn.SendText(frame); err != nil {
				return err
			}
			metrics.RecordPayloadSent("Pending")
			welcomed = false

			if err := h.awaitDisplay(ctx, sub, id, log); err != nil {
				return err
			}
			continue
		}

		if !welcomed || display.Name != lastName {
			frame, err := enc.Welcome(display.Name)
			if err != nil {
				return err
			}
			if err := conn.SendText(frame); err != nil {
				return err
			}
			metrics.RecordPayloadSent("Welcome")
			welcomed = true
			lastName = display.Name
		}

		err := h.sendLoop(ctx, conn, sub, id, enc, log)
		if errors.Is(err, errRecheck) {
			continue
		}
		return err
	}
}

// awaitDisplay blocks until a display change names the connected UUID.
func (h *Handler) awaitDisplay(ctx context.Context, sub *bus.Subscription, id uuid.UUID, log zerolog.Logger) error {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrLagged) {
				// A dropped change may have been the registration.
				if _, ok := h.store.Display(id); ok {
					return nil
				}
				continue
			}
			return err
		}
		if c.Kind == bus.KindDisplay && c.Contains(id) {
			return nil
		}
	}
}

// placeholderItem is shown when the active playlist has no items.
var placeholderItem = models.PlaylistItem{
	Kind:    models.ItemText,
	Content: "No Playlist added",
}

// sendLoop cycles through the display's active playlist, sending each
// item and sleeping out its duration. It returns errRecheck when the
// display itself changes, and restarts the cycle on schedule or
// playlist changes.
func (h *Handler) sendLoop(ctx context.Context, conn *Conn, sub *bus.Subscription, id uuid.UUID, enc protocol.Encoder, log zerolog.Logger) error {
cycle:
	for {
		items, ok := h.store.DisplayPlaylistItems(id)
		if !ok {
			if _, still := h.store.Display(id); !still {
				return errRecheck
			}
			// The display exists but its schedule or active playlist
			// does not. The admin layer prevents this, so the catalog
			// is corrupt; drop the connection rather than guess.
			log.Error().Msg("Display references a missing schedule or playlist, closing")
			return errors.New("referential gap resolving playlist items")
		}
		if len(items) == 0 {
			items = []models.PlaylistItem{placeholderItem}
		}

		scheduleID, playlistID, _ := h.store.DisplayRefs(id)

		for _, item := range items {
			frame, err := enc.Display(item)
			if err != nil {
				if errors.Is(err, protocol.ErrUnsupportedItem) {
					log.Warn().Str("kind", string(item.Kind)).Str("item", item.Name).Msg("Skipping item without a dispatch path")
					continue
				}
				return err
			}
			if err := conn.SendText(frame); err != nil {
				return err
			}
			metrics.RecordPayloadSent(string(item.Kind))
			log.Debug().Str("kind", string(item.Kind)).Uint64("duration", item.Duration).Msg("Sent playlist item")

			restart, err := h.sleepItem(ctx, sub, id, scheduleID, playlistID, item.Duration, log)
			if err != nil {
				return err
			}
			if restart {
				continue cycle
			}
		}
	}
}

// sleepItem waits out one item's duration while watching the bus. A
// zero duration keeps the item up until a relevant change arrives.
// Returns restart=true when the cycle must be rebuilt against fresh
// state.
func (h *Handler) sleepItem(ctx context.Context, sub *bus.Subscription, id, scheduleID, playlistID uuid.UUID, duration uint64, log zerolog.Logger) (restart bool, err error) {
	sleepCtx := ctx
	if duration > 0 {
		var cancel context.CancelFunc
		sleepCtx, cancel = context.WithTimeout(ctx, time.Duration(duration)*time.Second)
		defer cancel()
	}

	for {
		c, recvErr := sub.Recv(sleepCtx)
		if recvErr != nil {
			switch {
			case errors.Is(recvErr, context.DeadlineExceeded) && ctx.Err() == nil:
				return false, nil
			case errors.Is(recvErr, bus.ErrLagged):
				log.Warn().Msg("Viewer connection lagged behind the change bus")
				continue
			case ctx.Err() != nil:
				return false, ctx.Err()
			default:
				return false, recvErr
			}
		}

		switch {
		case c.Kind == bus.KindDisplay && c.Contains(id):
			return false, errRecheck
		case c.Kind == bus.KindSchedule && c.Contains(scheduleID):
			log.Debug().Msg("Active playlist changed, restarting cycle")
			return true, nil
		case c.Kind == bus.KindPlaylist && c.Contains(playlistID):
			log.Debug().Msg("Playlist content changed, restarting cycle")
			return true, nil
		}
	}
}
