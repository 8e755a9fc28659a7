package session

import (
	"sync"

	"github.com/rs/zerolog"

	"geochat/internal/app/message"
	"geochat/internal/app/moderation"
	"geochat/internal/app/presence"
	"geochat/internal/app/user"
	"geochat/internal/pkg/errs"
	"geochat/internal/pkg/logx"
	"geochat/internal/pkg/metrics"
)

// MaxContentBytes is the largest chat message accepted, in bytes.
const MaxContentBytes = 5000

// Coordinator handles join, message, location, leave and disconnect events.
type Coordinator struct {
	// membership serializes registry writes with the fan-out that announces them, so
	// every connection sees joins, departures and rosters in registry order.
	membership sync.Mutex

	registry *presence.Registry
	out      Broadcaster
	policy   *moderation.Policy
	region   Region
	metrics  *metrics.Recorder
	logger   zerolog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRegion overrides the join region.
func WithRegion(r Region) Option {
	return func(c *Coordinator) { c.region = r }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator constructs a Coordinator over registry that fans out through out.
func NewCoordinator(registry *presence.Registry, out Broadcaster, policy *moderation.Policy, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		out:      out,
		policy:   policy,
		region:   ServiceRegion,
		logger:   logx.Component("session"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Registry returns the presence registry the coordinator writes to.
func (c *Coordinator) Registry() *presence.Registry {
	return c.registry
}

func (c *Coordinator) reject(op, connectionID string, err *errs.CustomError) *errs.CustomError {
	c.metrics.Rejected(op, err.Code)
	c.logger.Info().
		Str("operation", op).
		Str("connection_id", connectionID).
		Int("code", err.Code).
		Msg("Request rejected")
	return err
}

// Join registers the connection in a room.
//
// On success the joiner is subscribed to the room, then receives a private welcome,
// then every other member is told about the newcomer, then everyone including the
// joiner receives the new roster.
func (c *Coordinator) Join(connectionID string, req JoinRequest) (user.User, *errs.CustomError) {
	c.membership.Lock()
	defer c.membership.Unlock()

	if _, ok := c.registry.GetUser(connectionID); ok {
		return user.User{}, c.reject(OpJoin, connectionID, errs.NewError(errs.ErrAlreadyJoined))
	}

	if !c.region.Contains(req.Location) {
		return user.User{}, c.reject(OpJoin, connectionID, errs.NewError(errs.ErrOutOfRegion))
	}

	u, err := c.registry.AddUser(connectionID, req.Username, req.Room)
	if err != nil {
		return user.User{}, c.reject(OpJoin, connectionID, err)
	}

	room := presence.RoomKey(u.Room)

	c.out.Subscribe(connectionID, room)
	c.out.Emit(connectionID, EventMessage, message.Notice("Welcome!"))
	c.out.EmitToRoomExcept(room, connectionID, EventMessage, message.Notice("%s has joined!", u.Username))
	c.out.EmitToRoom(room, EventRoomData, c.roster(u.Room))

	c.metrics.Joined(c.registry.Count())
	c.metrics.Delivered(metrics.KindNotice)

	c.logger.Info().
		Str("connection_id", connectionID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User joined room")

	return u, nil
}

// SendMessage moderates text and delivers it to the sender's whole room.
func (c *Coordinator) SendMessage(connectionID, text string) *errs.CustomError {
	u, ok := c.registry.GetUser(connectionID)
	if !ok {
		return c.reject(OpSendMessage, connectionID, errs.NewError(errs.ErrNotJoined))
	}

	if len(text) > MaxContentBytes {
		return c.reject(OpSendMessage, connectionID, errs.NewError(errs.ErrMessageContentTooLong))
	}

	cleaned, err := c.policy.Review(text)
	if err != nil {
		return c.reject(OpSendMessage, connectionID, err)
	}

	c.out.EmitToRoom(presence.RoomKey(u.Room), EventMessage, message.Format(u.Username, cleaned))
	c.metrics.Delivered(metrics.KindChat)

	c.logger.Debug().
		Str("connection_id", connectionID).
		Str("room", u.Room).
		Bool("cleaned", cleaned != text).
		Msg("Message delivered")

	return nil
}

// SendLocation shares a map link to loc with the sender's room.
// Unlike Join, any coordinates are accepted.
func (c *Coordinator) SendLocation(connectionID string, loc Location) *errs.CustomError {
	u, ok := c.registry.GetUser(connectionID)
	if !ok {
		return c.reject(OpSendLocation, connectionID, errs.NewError(errs.ErrNotJoined))
	}

	if !loc.Complete() {
		return c.reject(OpSendLocation, connectionID, errs.NewError(errs.ErrInvalidParams))
	}

	if !c.region.Contains(loc) {
		c.logger.Debug().
			Str("connection_id", connectionID).
			Float64("latitude", *loc.Latitude).
			Float64("longitude", *loc.Longitude).
			Msg("Location shared from outside the join region")
	}

	url := message.MapURL(*loc.Latitude, *loc.Longitude)
	c.out.EmitToRoom(presence.RoomKey(u.Room), EventLocationMessage, message.FormatLocation(u.Username, url))
	c.metrics.Delivered(metrics.KindLocation)

	return nil
}

// Leave removes the connection's user from its room while the connection stays open.
func (c *Coordinator) Leave(connectionID string) *errs.CustomError {
	c.membership.Lock()
	defer c.membership.Unlock()

	u, ok := c.registry.RemoveUser(connectionID)
	if !ok {
		return c.reject(OpLeave, connectionID, errs.NewError(errs.ErrNotJoined))
	}

	c.depart(OpLeave, u)
	return nil
}

// Disconnect cleans up after a closed connection. Connections that never joined,
// or already left, produce no events.
func (c *Coordinator) Disconnect(connectionID string) {
	c.membership.Lock()
	defer c.membership.Unlock()

	u, ok := c.registry.RemoveUser(connectionID)
	if !ok {
		return
	}

	c.depart(OpDisconnect, u)
}

// depart notifies the remaining members that u is gone. The departing connection is
// unsubscribed first so it receives none of these events.
func (c *Coordinator) depart(op string, u user.User) {
	room := presence.RoomKey(u.Room)

	c.out.Unsubscribe(u.ConnectionID, room)
	c.out.EmitToRoom(room, EventMessage, message.Notice("%s has left!", u.Username))
	c.out.EmitToRoom(room, EventRoomData, c.roster(u.Room))

	c.metrics.Departed(c.registry.Count())
	c.metrics.Delivered(metrics.KindNotice)

	c.logger.Info().
		Str("operation", op).
		Str("connection_id", u.ConnectionID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User left room")
}

// roster must be built under membership so it matches the registry at emit time.
func (c *Coordinator) roster(room string) message.RoomData {
	return message.Roster(room, c.registry.GetUsersInRoom(room))
}
