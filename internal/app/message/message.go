/*
Package message builds the event payloads delivered to chat clients.

Chat text and admin notices share the Message shape; geolocation pings become a
LocationMessage carrying a map link; roster updates are RoomData. Timestamps are
Unix milliseconds, which browsers can pass straight to Date.
*/
package message

import (
	"fmt"
	"strconv"
	"time"

	"geochat/internal/app/user"
	"geochat/internal/pkg/randx"
)

// AdminName attributes server-generated notices.
const AdminName = "Admin"

// MapURLBase is the map service used for location links.
const MapURLBase = "https://www.google.com/maps"

// now is the clock used for CreatedAt; tests replace it.
var now = time.Now

// Message is a chat line or an admin notice.
type Message struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage is a shared position, rendered by clients as a link.
type LocationMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// Member is one roster entry.
type Member struct {
	Username string `json:"username"`
}

// RoomData is the roster of a room.
type RoomData struct {
	Room  string   `json:"room"`
	Users []Member `json:"users"`
}

// Format builds a Message from sender with the given text.
func Format(sender, text string) Message {
	return Message{
		ID:        randx.MessageID(),
		Username:  sender,
		Text:      text,
		CreatedAt: now().UnixMilli(),
	}
}

// Notice builds an admin Message from a format string.
func Notice(format string, args ...any) Message {
	return Format(AdminName, fmt.Sprintf(format, args...))
}

// FormatLocation builds a LocationMessage from sender pointing at url.
func FormatLocation(sender, url string) LocationMessage {
	return LocationMessage{
		ID:        randx.MessageID(),
		Username:  sender,
		URL:       url,
		CreatedAt: now().UnixMilli(),
	}
}

// MapURL returns a map link centred on the given coordinates.
func MapURL(latitude, longitude float64) string {
	return fmt.Sprintf("%s?q=%s,%s",
		MapURLBase,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)
}

// Roster builds the RoomData for room from its current users, oldest first.
// The room is labelled as its earliest member typed it, so the label stays stable
// while members come and go; room is used only when nobody is left.
func Roster(room string, users []user.User) RoomData {
	members := make([]Member, len(users))
	for i, u := range users {
		members[i] = Member{Username: u.Username}
	}
	if len(users) > 0 {
		room = users[0].Room
	}
	return RoomData{Room: room, Users: members}
}
