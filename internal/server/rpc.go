package server

import (
	"encoding/json"
	"net/http"

	"github.com/copyleftdev/FJORD/internal/errors"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcServerError    = -32000
)

// rpcRequest is a JSON-RPC 2.0 request with by-name params.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests on /rpc.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondRPCError(w, rpcParseError, "Parse error", nil)
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.respondRPCError(w, rpcInvalidRequest, "Invalid Request", req.ID)
		return
	}

	var result interface{}
	var err error

	switch req.Method {
	case "solve.start":
		result, err = s.rpcSolveStart(req.Params)
	case "solve.status":
		result, err = s.rpcSolveStatus(req.Params)
	case "solve.cancel":
		result, err = s.rpcSolveCancel(req.Params)
	default:
		s.respondRPCError(w, rpcMethodNotFound, "Method not found", req.ID)
		return
	}

	if err != nil {
		s.respondRPCError(w, rpcServerError, err.Error(), req.ID)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	})
}

// rpcSolveStart handles the solve.start method. Params mirror the REST
// solve request: {"problem": ..., "driver": ..., "max_iterations": ...,
// "seed": ..., "workers": ...}.
func (s *Server) rpcSolveStart(params json.RawMessage) (interface{}, error) {
	var req solveRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}

	state, err := s.startSolve(req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"solve_id": state.ID,
		"status":   StatusPending,
	}, nil
}

// rpcSolveStatus handles the solve.status method. Params:
// {"solve_id": ...}.
func (s *Server) rpcSolveStatus(params json.RawMessage) (interface{}, error) {
	id, err := solveIDParam(params)
	if err != nil {
		return nil, err
	}
	return s.solveStatus(id)
}

// rpcSolveCancel handles the solve.cancel method. Params:
// {"solve_id": ...}.
func (s *Server) rpcSolveCancel(params json.RawMessage) (interface{}, error) {
	id, err := solveIDParam(params)
	if err != nil {
		return nil, err
	}
	if err := s.cancelSolve(id); err != nil {
		return nil, err
	}
	return map[string]string{
		"solve_id": id,
		"status":   StatusCancelled,
	}, nil
}

// unmarshalParams decodes by-name params into dst.
func unmarshalParams(params json.RawMessage, dst interface{}) error {
	if len(params) == 0 {
		return errors.New(errors.CodeInvalid, "missing params")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return errors.New(errors.CodeInvalid, "params must be an object")
	}
	return nil
}

// solveIDParam extracts the solve_id param.
func solveIDParam(params json.RawMessage) (string, error) {
	var p struct {
		SolveID string `json:"solve_id"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return "", err
	}
	if p.SolveID == "" {
		return "", errors.New(errors.CodeInvalid, "solve_id is required")
	}
	return p.SolveID, nil
}

// respondRPCError sends a JSON-RPC 2.0 error response. Transport-level
// delivery succeeded, so the HTTP status stays 200.
func (s *Server) respondRPCError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}
