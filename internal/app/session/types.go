/*
Package session contains the per-connection event handlers of the chat relay.

The Coordinator validates each inbound request, updates or queries the presence
registry, and fans the results out through a Broadcaster. A connection moves through
Unjoined -> Joined -> (Left | Disconnected); every rejection is returned to the caller
as a *errs.CustomError and never affects other connections.
*/
package session

// Outbound event names consumed by the client UI.
const (
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
)

// Operation names used in logs and metrics.
const (
	OpJoin         = "join"
	OpSendMessage  = "sendMessage"
	OpSendLocation = "sendLocation"
	OpLeave        = "leave"
	OpDisconnect   = "disconnect"
)

// Broadcaster is the transport's room-scoped fan-out primitive.
// Rooms are addressed by presence.RoomKey.
type Broadcaster interface {
	// Subscribe adds the connection to the room's fan-out group.
	Subscribe(connectionID, room string)

	// Unsubscribe removes the connection from the room's fan-out group.
	Unsubscribe(connectionID, room string)

	// Emit sends an event to one connection.
	Emit(connectionID, event string, payload any)

	// EmitToRoom sends an event to every connection in the room.
	EmitToRoom(room, event string, payload any)

	// EmitToRoomExcept sends an event to every connection in the room but one.
	EmitToRoomExcept(room, exceptConnectionID, event string, payload any)
}

// Location is a coordinate pair as sent by the client. Missing coordinates stay nil.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Complete reports whether both coordinates are present.
func (l Location) Complete() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// At is a convenience constructor for a complete Location.
func At(latitude, longitude float64) Location {
	return Location{Latitude: &latitude, Longitude: &longitude}
}

// JoinRequest is the payload of a join event.
type JoinRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Location
}

// Region is a latitude/longitude bounding box, bounds inclusive.
type Region struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// ServiceRegion is the area in which users may join.
var ServiceRegion = Region{
	MinLatitude:  55,
	MaxLatitude:  70,
	MinLongitude: 11,
	MaxLongitude: 25,
}

// Contains reports whether loc is complete and inside the box.
func (r Region) Contains(loc Location) bool {
	if !loc.Complete() {
		return false
	}

	lat, lon := *loc.Latitude, *loc.Longitude
	return lat >= r.MinLatitude && lat <= r.MaxLatitude &&
		lon >= r.MinLongitude && lon <= r.MaxLongitude
}
