package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/track_recorder/internal/track"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling, no origin restriction
	},
}

// LiveFeed fans accepted fixes out to websocket clients as JSON. Clients
// that fail a write are dropped; recording never waits on a consumer.
type LiveFeed struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	count  atomic.Int64
	server *http.Server
}

// NewLiveFeed creates a feed whose /api/track count starts at the number
// of fixes already on disk.
func NewLiveFeed(existing int) *LiveFeed {
	f := &LiveFeed{conns: make(map[*websocket.Conn]struct{})}
	f.count.Store(int64(existing))
	return f
}

func (f *LiveFeed) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", f.handleLive)
	mux.HandleFunc("/api/track", f.handleTrack)
	return mux
}

// Serve starts the HTTP server in the background: /live upgrades to a
// websocket fix stream, /api/track reports the running fix count.
func (f *LiveFeed) Serve(addr string) {
	f.server = &http.Server{Addr: addr, Handler: f.routes()}

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("live feed server: %v", err)
		}
	}()
	log.Infof("live feed listening on %s", addr)
}

// Shutdown stops the HTTP server and closes any remaining clients.
func (f *LiveFeed) Shutdown() {
	if f.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := f.server.Shutdown(ctx); err != nil {
			log.Debugf("live feed shutdown: %v", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		conn.Close()
		delete(f.conns, conn)
	}
}

func (f *LiveFeed) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("live feed upgrade: %v", err)
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()
	log.Debugf("live feed client connected: %s", conn.RemoteAddr())

	// Drain client frames until the connection goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		f.drop(conn)
	}()
}

func (f *LiveFeed) handleTrack(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]int64{"count": f.count.Load()}); err != nil {
		log.Debugf("live feed count encode: %v", err)
	}
}

// Broadcast sends fix to every connected client and bumps the count.
func (f *LiveFeed) Broadcast(fix track.Fix) {
	f.count.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(fix); err != nil {
			conn.Close()
			delete(f.conns, conn)
			log.Debugf("live feed client dropped: %v", err)
		}
	}
}

func (f *LiveFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conns[conn]; ok {
		conn.Close()
		delete(f.conns, conn)
	}
}
