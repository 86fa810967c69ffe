package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/middleware"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/connections"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/pipeline"
)

const (
	pollInterval  = 5 * time.Second
	snapshotLimit = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-site cookies guard the session; the stream itself carries no
		// credentials beyond what RequireSession already resolved.
		return true
	},
}

// HandleJobStream pushes job-status snapshots to the dashboard over a
// websocket. Runs behind RequireSession; the connection dies quietly when the
// client navigates away or the access token stops working upstream.
func HandleJobStream(manager *connections.Manager, pipelineService *pipeline.Service, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade job stream connection")
		return
	}

	manager.Register(conn, sess.UserID)
	defer func() {
		manager.Unregister(conn)
		conn.Close()
	}()

	timeouts := manager.Timeouts()

	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	// Reader only services control frames; its exit means the peer is gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info().Str("user_id", sess.UserID).Int("active", manager.CountForUser(sess.UserID)).Msg("Job stream opened")

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()
	pingTicker := time.NewTicker(timeouts.PingPeriod)
	defer pingTicker.Stop()

	if !writeSnapshot(conn, pipelineService, sess.AccessToken, timeouts.WriteWait, r) {
		return
	}

	for {
		select {
		case <-done:
			log.Debug().Str("user_id", sess.UserID).Msg("Job stream closed by peer")
			return
		case <-r.Context().Done():
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-pollTicker.C:
			if !writeSnapshot(conn, pipelineService, sess.AccessToken, timeouts.WriteWait, r) {
				return
			}
		}
	}
}

// writeSnapshot fetches the first page of jobs and pushes it. Returns false
// when the stream should end: the socket failed or the token was rejected.
func writeSnapshot(conn *websocket.Conn, pipelineService *pipeline.Service, accessToken string, writeWait time.Duration, r *http.Request) bool {
	page, err := pipelineService.ListJobs(r.Context(), accessToken, 1, snapshotLimit)
	if err != nil {
		if err == pipeline.ErrUnauthorized {
			return false
		}
		// Transient upstream trouble: keep the stream, skip the snapshot.
		log.Warn().Err(err).Msg("Job snapshot skipped - pipeline unreachable")
		return true
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(page); err != nil {
		return false
	}
	return true
}
