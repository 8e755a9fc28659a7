/*
Package handler provides read-only HTTP views over the presence registry.
*/
package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"geochat/internal/app/message"
	"geochat/internal/pkg/errs"
	"geochat/internal/pkg/resp"
)

// RoomSummary is one entry of the room listing.
type RoomSummary struct {
	Room  string `json:"room"`
	Users int    `json:"users"`
}

// HandleListRooms returns every occupied room with its member count.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registry := deps.Coordinator.Registry()

		rooms := registry.Rooms()
		summaries := make([]RoomSummary, 0, len(rooms))
		for _, room := range rooms {
			summaries = append(summaries, RoomSummary{
				Room:  room,
				Users: len(registry.GetUsersInRoom(room)),
			})
		}

		resp.RespondSuccess(w, map[string]any{
			"rooms": summaries,
		})
	}
}

// HandleRoomUsers returns the roster of one room, the same shape clients get as roomData.
// Unknown rooms have an empty roster.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "room")

		// chi routes on RawPath when the path had to keep escapes (e.g. %2F), and only
		// then is the parameter still escaped.
		var err error
		if r.URL.RawPath != "" {
			room, err = url.PathUnescape(room)
		}
		if err != nil || strings.TrimSpace(room) == "" {
			resp.RespondError(w, errs.NewError(errs.ErrMissingFields))
			return
		}

		users := deps.Coordinator.Registry().GetUsersInRoom(room)
		resp.RespondSuccess(w, message.Roster(strings.TrimSpace(room), users))
	}
}
