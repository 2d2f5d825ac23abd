package face

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"syscall"

	"github.com/Link512/stealthpool"
	"github.com/gorilla/websocket"
	"golang.org/x/sys/unix"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
)

const (
	wsPoolBlockCount = 256
	wsPoolBlockSize  = 9000
)

// wireFrame is this kernel's own minimal wire envelope for the
// WebSocket transport. spec.md §1 scopes a real TLV codec out of this
// repository entirely; this JSON envelope exists only so the demo
// transport has something to put on the wire, and is not a substitute
// for one.
type wireFrame struct {
	Kind     string           `json:"kind"` // "interest" or "data"
	Interest *ndn.Interest    `json:"interest,omitempty"`
	Data     *ndn.ContentObject `json:"data,omitempty"`
}

// WebSocketFace is the one real networked transport the demo binary
// listens on, grounded on face/web-socket-transport.go. Frame buffers
// for outgoing sends are drawn from a shared stealthpool.Pool of
// fixed-size blocks (Get/Return) instead of one fresh []byte per send,
// grounded on face/ndnlp-link-service.go's use of the same library for
// its own fragmentation buffers; a frame larger than the pool's fixed
// block size is dropped rather than sent unpooled.
type WebSocketFace struct {
	LeakyBucket

	id     uint64
	conn   *websocket.Conn
	pool   *stealthpool.Pool
	sendMu sync.Mutex
	up     bool
}

// NewWebSocketFace wraps an accepted connection as a dispatch.Face and
// starts its receive loop, delivering decoded packets to dispatcher.
func NewWebSocketFace(conn *websocket.Conn, pool *stealthpool.Pool, dispatcher dispatch.Dispatcher) *WebSocketFace {
	f := &WebSocketFace{
		id:   allocFaceID(),
		conn: conn,
		pool: pool,
		up:   true,
	}
	go f.runReceive(dispatcher)
	return f
}

func (f *WebSocketFace) ID() uint64    { return f.id }
func (f *WebSocketFace) String() string { return "WebSocketFace" }

// Send implements dispatch.Face: encode packet as a wireFrame and
// write it as one binary WebSocket message.
func (f *WebSocketFace) Send(packet interface{}) bool {
	if !f.up {
		return false
	}

	frame := wireFrame{}
	switch p := packet.(type) {
	case *ndn.Interest:
		frame.Kind = "interest"
		frame.Interest = p
	case *ndn.ContentObject:
		frame.Kind = "data"
		frame.Data = p
	default:
		core.LogWarn(f, "unsupported packet type - DROP")
		return false
	}

	encoded, err := json.Marshal(&frame)
	if err != nil {
		core.LogWarn(f, "unable to encode outgoing packet - DROP")
		return false
	}
	if len(encoded) > wsPoolBlockSize {
		core.LogWarn(f, "encoded frame exceeds pool block size - DROP")
		return false
	}

	block, err := f.pool.Get()
	if err != nil {
		core.LogWarn(f, "buffer pool exhausted - DROP")
		return false
	}
	defer f.pool.Return(block)
	copy(block, encoded)

	f.sendMu.Lock()
	writeErr := f.conn.WriteMessage(websocket.BinaryMessage, block[:len(encoded)])
	f.sendMu.Unlock()
	if writeErr != nil {
		core.LogWarn(f, "unable to send on socket - DROP and Face DOWN")
		f.Down()
		return false
	}
	return true
}

func (f *WebSocketFace) runReceive(dispatcher dispatch.Dispatcher) {
	core.LogTrace(f, "starting receive loop")
	for {
		mt, message, err := f.conn.ReadMessage()
		if err != nil {
			core.LogWarn(f, "unable to read from socket (", err, ") - DROP and Face DOWN")
			f.Down()
			return
		}
		if mt != websocket.BinaryMessage {
			core.LogWarn(f, "ignored non-binary message")
			continue
		}

		var frame wireFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			core.LogWarn(f, "malformed frame - DROP")
			continue
		}

		switch frame.Kind {
		case "interest":
			if frame.Interest != nil {
				dispatcher.QueueInterest(f, frame.Interest)
			}
		case "data":
			if frame.Data != nil {
				dispatcher.QueueData(f, frame.Data)
			}
		default:
			core.LogWarn(f, "unknown frame kind - DROP")
		}
	}
}

func (f *WebSocketFace) Up() { f.up = true }
func (f *WebSocketFace) Down() {
	if !f.up {
		return
	}
	f.up = false
	f.conn.Close()
}

// NewWebSocketPool constructs the shared frame-buffer pool every
// WebSocketFace draws from, sized the way ndnlp-link-service.go sizes
// its own fragmentation pool.
func NewWebSocketPool() (*stealthpool.Pool, error) {
	return stealthpool.New(wsPoolBlockCount, stealthpool.WithBlockSize(wsPoolBlockSize))
}

// ListenWebSocket starts an HTTP server upgrading every connection to
// a WebSocketFace. Grounded on the teacher's udp-listener.go shape
// (accept loop installing a new face per peer) adapted to
// WebSocket's request/upgrade model; SO_REUSEADDR is set on the
// underlying listener socket through x/sys/unix, matching the
// teacher's one use of that package at the socket-option boundary
// (face/impl/syscalls_linux.go).
func ListenWebSocket(addr string, pool *stealthpool.Pool, dispatcher dispatch.Dispatcher, onFace func(*WebSocketFace)) error {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var setErr error
			err := c.Control(func(fd uintptr) {
				setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return setErr
		},
	}

	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			core.LogWarn("WebSocketFace", "upgrade failed:", err)
			return
		}
		face := NewWebSocketFace(conn, pool, dispatcher)
		core.LogInfo(face, "face up")
		if onFace != nil {
			onFace(face)
		}
	})

	server := &http.Server{Handler: mux}
	return server.Serve(ln)
}
