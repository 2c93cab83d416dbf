package server

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const reloadMessage = "reload"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans reload notifications out to every connected page.
type hub struct {
	mu      sync.Mutex
	clients map[chan struct{}]struct{}
	closed  chan struct{}
	once    sync.Once
}

func newHub() *hub {
	return &hub{
		clients: make(map[chan struct{}]struct{}),
		closed:  make(chan struct{}),
	}
}

func (h *hub) add() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(ch chan struct{}) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// count returns the number of connected pages.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast never blocks: a page with a reload already pending is skipped.
func (h *hub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) close() {
	h.once.Do(func() { close(h.closed) })
}

func (h *hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ch := h.add()
	defer h.remove(ch)

	// The page never sends anything; reading only detects the disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("server: websocket read: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reloadMessage)); err != nil {
				log.Printf("server: websocket write: %v", err)
				return
			}
		case <-gone:
			return
		case <-h.closed:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

const reloadScript = `<script>
(function() {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var socket = new WebSocket(proto + location.host + '` + LiveReloadPath + `');
  socket.onmessage = function(e) {
    if (e.data === '` + reloadMessage + `') {
      location.reload();
    }
  };
})();
</script>`

// injectLiveReload adds the reload script before </body>, or at the end of
// pages without one.
func injectLiveReload(page string) string {
	idx := strings.LastIndex(strings.ToLower(page), "</body>")
	if idx != -1 {
		return page[:idx] + reloadScript + "\n" + page[idx:]
	}
	return page + reloadScript
}
