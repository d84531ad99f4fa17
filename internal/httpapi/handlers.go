package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/menus/internal/logging"
	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/pkg/types"
)

type menuRequest struct {
	Name string `json:"name"`
}

type replaceResponse struct {
	Success bool  `json:"success"`
	Created int   `json:"created"`
	Purged  int64 `json:"purged"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.menus.ListMenus(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if menus == nil {
		menus = []*types.Menu{}
	}
	writeJSON(w, http.StatusOK, menus)
}

func (s *Server) createMenu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	m := &types.Menu{Name: req.Name}
	if _, err := s.menus.CreateMenu(r.Context(), m); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/menus/"+m.MenuID)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) getMenu(w http.ResponseWriter, r *http.Request) {
	m, err := s.menus.GetMenu(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) renameMenu(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req menuRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.menus.RenameMenu(r.Context(), id, req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.menus.GetMenu(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMenu(w http.ResponseWriter, r *http.Request) {
	if err := s.menus.DeleteMenu(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getItems returns the nested tree, or the stored rows in depth-first order
// with ?flat=true.
func (s *Server) getItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	if flat, _ := strconv.ParseBool(r.URL.Query().Get("flat")); flat {
		if items == nil {
			items = []*types.MenuItem{}
		}
		writeJSON(w, http.StatusOK, items)
		return
	}
	writeJSON(w, http.StatusOK, menutree.Build(items))
}

// replaceItems accepts either a bare items array or an object carrying it
// under "items".
func (s *Server) replaceItems(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: reading body: %w", types.ErrInvalidItems, err))
		return
	}
	raw, err = unwrapItems(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.sync.ReplaceMenuItemsJSON(r.Context(), mux.Vars(r)["id"], raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replaceResponse{Success: res.Success, Created: res.Created, Purged: res.Purged})
}

func unwrapItems(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %w", types.ErrInvalidItems, err)
	}
	items, ok := env["items"]
	if !ok {
		return nil, fmt.Errorf("%w: items is required", types.ErrInvalidItems)
	}
	return items, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

var errBadRequest = errors.New("malformed request body")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidItems),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", logging.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
