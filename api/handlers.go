package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/a64sim/a64sim/loader"
	"github.com/a64sim/a64sim/vm"
)

const maxRequestBody = 1 << 20 // 1MB

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version, Commit: s.commit})
}

// handleAssemble runs the two-pass assembler over posted source text
func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AssembleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	words, _, err := loader.AssembleSource(req.Source, "request.s")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "assembly failed: %v", err)
		return
	}

	resp := AssembleResponse{
		Words: make([]string, len(words)),
		Size:  len(words) * 4,
	}
	image := make([]byte, 0, len(words)*4)
	for i, word := range words {
		resp.Words[i] = fmt.Sprintf("0x%08x", word)
		image = append(image, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	resp.Binary = base64.StdEncoding.EncodeToString(image)
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateSession builds a machine from source or a binary image
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	var image []byte
	switch {
	case req.Source != "":
		words, _, err := loader.AssembleSource(req.Source, "session.s")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "assembly failed: %v", err)
			return
		}
		for _, word := range words {
			image = append(image, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
		}
	case req.Binary != "":
		var err error
		image, err = base64.StdEncoding.DecodeString(req.Binary)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid binary: %v", err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "source or binary required")
		return
	}

	machine := vm.NewVM()
	if req.MaxCycles != 0 {
		machine.CycleLimit = req.MaxCycles
	}
	if err := machine.LoadProgram(image); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "load failed: %v", err)
		return
	}

	session := s.sessions.Create(machine)
	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		State:     snapshotState(machine),
	})
}

// handleSession routes /api/sessions/{id}[/action]
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	session, ok := s.sessions.Get(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session: %s", parts[0])
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "", "state":
		if r.Method == http.MethodDelete {
			s.sessions.Delete(session.ID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.respondWithState(w, session)

	case "step":
		var req StepRequest
		if err := decodeBody(w, r, &req); err != nil && r.ContentLength > 0 {
			writeError(w, http.StatusBadRequest, "invalid request: %v", err)
			return
		}
		count := req.Count
		if count <= 0 {
			count = 1
		}
		err := session.WithLock(func(machine *vm.VM) error {
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
		if err != nil {
			writeError(w, http.StatusInternalServerError, "step failed: %v", err)
			return
		}
		s.respondWithState(w, session)

	case "run":
		err := session.WithLock(func(machine *vm.VM) error {
			return machine.Run()
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "run failed: %v", err)
			return
		}
		s.respondWithState(w, session)

	case "dump":
		var sb strings.Builder
		err := session.WithLock(func(machine *vm.VM) error {
			return machine.DumpState(&sb)
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "dump failed: %v", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(sb.String()))

	case "memory":
		s.handleMemory(w, r, session)

	case "ws":
		s.handleWebSocket(w, r, session)

	default:
		writeError(w, http.StatusNotFound, "unknown action: %s", action)
	}
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request, session *Session) {
	query := r.URL.Query()
	var address, count uint64
	if _, err := fmt.Sscanf(query.Get("addr"), "0x%x", &address); err != nil {
		if _, err := fmt.Sscanf(query.Get("addr"), "%d", &address); err != nil {
			writeError(w, http.StatusBadRequest, "invalid addr parameter")
			return
		}
	}
	if _, err := fmt.Sscanf(query.Get("count"), "%d", &count); err != nil || count == 0 {
		count = 16
	}
	if count > 1024 {
		count = 1024
	}

	resp := MemoryResponse{Address: fmt.Sprintf("0x%08x", address)}
	err := session.WithLock(func(machine *vm.VM) error {
		for i := uint64(0); i < count; i++ {
			word, err := machine.Memory.ReadWord(address + i*4)
			if err != nil {
				return err
			}
			resp.Words = append(resp.Words, fmt.Sprintf("0x%08x", word))
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "memory read failed: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) respondWithState(w http.ResponseWriter, session *Session) {
	var state StateResponse
	_ = session.WithLock(func(machine *vm.VM) error {
		state = snapshotState(machine)
		return nil
	})
	writeJSON(w, http.StatusOK, state)
}

// snapshotState captures the machine state for responses. Callers hold
// the session lock where it matters.
func snapshotState(machine *vm.VM) StateResponse {
	regs := make([]string, vm.NumRegisters)
	for i := 0; i < vm.NumRegisters; i++ {
		regs[i] = fmt.Sprintf("%016x", machine.CPU.X[i])
	}
	return StateResponse{
		Registers: regs,
		PC:        fmt.Sprintf("%016x", machine.CPU.PC),
		PSTATE:    machine.CPU.PSTATE.String(),
		Cycles:    machine.CPU.Cycles,
		State:     machine.State.String(),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(v)
}
