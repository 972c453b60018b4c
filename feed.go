package main

import (
	"context"
	"log"
	"sync"
	"time"

	"bingocall/models"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
)

const feedWriteTimeout = 5 * time.Second

// drawMessage is pushed to every live-feed subscriber.
type drawMessage struct {
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Digits  string    `json:"digits"`
	Letter  string    `json:"letter,omitempty"`
	Number  int       `json:"number,omitempty"`
	Variant string    `json:"variant"`
	Source  string    `json:"source"`
	At      time.Time `json:"at"`
}

func newDrawMessage(d models.Draw, at time.Time) drawMessage {
	return drawMessage{
		Type:    "draw",
		ID:      d.DetectionID,
		Label:   d.Label,
		Digits:  d.Digits,
		Letter:  d.Letter,
		Number:  d.Number,
		Variant: d.Variant,
		Source:  d.Source,
		At:      at.UTC(),
	}
}

// feedQueueSize bounds how many messages a slow subscriber may lag behind
// before new ones are dropped for it.
const feedQueueSize = 32

// feed fans detections out to websocket subscribers. Each subscriber has its
// own queue drained by one writer, so messages arrive in broadcast order.
type feed struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]chan any
}

func newFeed() *feed {
	return &feed{conns: make(map[*websocket.Conn]chan any)}
}

func (f *feed) handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("websocket accept error: %v", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	queue := make(chan any, feedQueueSize)
	f.mu.Lock()
	f.conns[conn] = queue
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.conns, conn)
		f.mu.Unlock()
	}()

	// subscribers only listen; CloseRead discards input and ends on disconnect
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-queue:
			wctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				log.Printf("feed write: %v", err)
				return
			}
		}
	}
}

// broadcast queues msg for every subscriber without blocking the caller.
func (f *feed) broadcast(msg any) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, queue := range f.conns {
		select {
		case queue <- msg:
		default:
			log.Printf("feed: subscriber queue full, dropping message")
		}
	}
}

func (f *feed) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.conns)
}

// close disconnects every subscriber.
func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
