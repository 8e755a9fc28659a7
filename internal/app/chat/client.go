/*
Package chat is the WebSocket transport of the relay.

This file defines the Client struct, representing an active WebSocket connection. It manages the
connection's lifecycle, the message communication loops (ReadPump and WritePump), and the
dispatch of inbound events to the session Coordinator.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"geochat/internal/app/session"
	"geochat/internal/pkg/errs"
	"geochat/internal/pkg/logx"
	"geochat/internal/pkg/randx"
	"geochat/internal/pkg/req"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 16384

	// capacity of the per-client outbound queue.
	sendBufferSize = 256
)

// Client struct represents an active WebSocket connection.
type Client struct {
	hub         *Hub
	coordinator *session.Coordinator

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// id is the current connection ID. It changes after a leave; written only by the
	// ReadPump goroutine while holding hub.mu.
	id string

	// closed is set when send has been closed; guarded by hub.mu.
	closed bool

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// limiter throttles inbound events.
	limiter *rate.Limiter

	// structured logger with socket context.
	logger zerolog.Logger
}

// NewClient constructs a Client with a fresh connection ID. limiter may be nil.
func NewClient(hub *Hub, coordinator *session.Coordinator, conn *websocket.Conn, limiter *rate.Limiter) *Client {
	id := randx.ConnectionID()

	return &Client{
		hub:         hub,
		coordinator: coordinator,
		conn:        conn,
		id:          id,
		send:        make(chan []byte, sendBufferSize),
		limiter:     limiter,
		logger:      logx.Logger().With().Str("socket_id", id).Logger(),
	}
}

// ID returns the client's current connection ID. Only safe from the ReadPump goroutine
// or before the client is registered.
func (c *Client) ID() string {
	return c.id
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), event dispatch, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInbound(frame)
	}
}

// cleanupOnDisconnect runs when ReadPump ends: the session is told first so the room
// hears about the departure, then the client leaves the hub.
func (c *Client) cleanupOnDisconnect() {
	c.coordinator.Disconnect(c.id)
	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInbound decodes one frame, dispatches it and acks it when asked to.
func (c *Client) processInbound(frame []byte) {
	var in Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		c.logger.Warn().Err(err).Int("frame_bytes", len(frame)).Msg("Client sent invalid JSON")
		return
	}

	err := c.dispatch(in)

	if in.Ack != nil {
		c.ack(*in.Ack, err)
	}
}

func (c *Client) dispatch(in Inbound) *errs.CustomError {
	if c.limiter != nil && !c.limiter.Allow() {
		return errs.NewError(errs.ErrRateLimitExceeded)
	}

	switch in.Event {
	case EventJoin:
		var joinReq session.JoinRequest
		if err := req.DecodePayload(in.Payload, &joinReq); err != nil {
			return err
		}
		_, err := c.coordinator.Join(c.id, joinReq)
		return err

	case EventSendMessage:
		var text string
		if err := req.DecodePayload(in.Payload, &text); err != nil {
			return err
		}
		return c.coordinator.SendMessage(c.id, text)

	case EventSendLocation:
		var loc session.Location
		if err := req.DecodePayload(in.Payload, &loc); err != nil {
			return err
		}
		return c.coordinator.SendLocation(c.id, loc)

	case EventLeave:
		if err := c.coordinator.Leave(c.id); err != nil {
			return err
		}
		// a socket that left starts over as a new, unjoined identity
		c.hub.Rekey(c, randx.ConnectionID())
		return nil

	default:
		c.logger.Warn().Str("event", in.Event).Msg("Client sent unsupported event")
		return errs.NewError(errs.ErrUnknownEvent, in.Event)
	}
}

// ack queues the reply to request number n.
func (c *Client) ack(n uint64, err *errs.CustomError) {
	frame, encErr := encodeAck(n, err)
	if encErr != nil {
		c.logger.Error().Err(encErr).Msg("Failed to build ack frame")
		return
	}

	c.hub.send(c, frame)
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
