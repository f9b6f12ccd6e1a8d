package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/a64sim/a64sim/vm"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local front-ends connect from arbitrary origins
		return true
	},
}

// wsCommand is a client request on the socket
type wsCommand struct {
	Action string `json:"action"` // state, step, run
	Count  int    `json:"count,omitempty"`
}

// wsFrame is a server push on the socket
type wsFrame struct {
	Type  string        `json:"type"` // state, error
	State StateResponse `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection and drives the session from
// socket commands, pushing a state frame after every action.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, session *Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)

	// Initial state frame on connect
	if err := s.pushState(conn, session); err != nil {
		return
	}

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var actionErr error
		switch cmd.Action {
		case "state", "":
			// State frame only
		case "step":
			count := cmd.Count
			if count <= 0 {
				count = 1
			}
			actionErr = session.WithLock(func(machine *vm.VM) error {
				for i := 0; i < count; i++ {
					if machine.State == vm.StateHalted || machine.State == vm.StateError ||
						machine.CPU.PC >= machine.ImageEnd {
						break
					}
					machine.State = vm.StateRunning
					if err := machine.Step(); err != nil {
						return err
					}
					if machine.State == vm.StateRunning {
						machine.State = vm.StateBreakpoint
					}
				}
				return nil
			})
		case "run":
			actionErr = session.WithLock(func(machine *vm.VM) error {
				return machine.Run()
			})
		default:
			actionErr = writeFrame(conn, wsFrame{Type: "error", Error: "unknown action: " + cmd.Action})
			if actionErr != nil {
				return
			}
			continue
		}

		if actionErr != nil {
			if err := writeFrame(conn, wsFrame{Type: "error", Error: actionErr.Error()}); err != nil {
				return
			}
		}
		if err := s.pushState(conn, session); err != nil {
			return
		}
	}
}

func (s *Server) pushState(conn *websocket.Conn, session *Session) error {
	var state StateResponse
	_ = session.WithLock(func(machine *vm.VM) error {
		state = snapshotState(machine)
		return nil
	})
	return writeFrame(conn, wsFrame{Type: "state", State: state})
}

func writeFrame(conn *websocket.Conn, frame wsFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}
