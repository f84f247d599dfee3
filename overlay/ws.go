/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package overlay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS attaches a websocket client to the hub. The role query parameter
// selects overlay or panel and defaults to panel.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	role, ok := ParseRole(r.URL.Query().Get("role"))
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(conn, role)

	if !submit(h, h.register, client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump(h)
}
