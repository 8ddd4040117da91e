// Package server exposes the routing operations over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/searoute/pkg/network"
	"github.com/kass/searoute/pkg/router"
	"github.com/kass/searoute/pkg/units"
)

// Server wires the router into HTTP handlers.
type Server struct {
	router *router.Router
}

// New creates an HTTP server facade over rt.
func New(rt *router.Router) *Server {
	return &Server{router: rt}
}

// RegisterRoutes attaches the API endpoints to a mux router.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/route", s.handleRoute).Methods("GET")
	r.HandleFunc("/api/snap", s.handleSnap).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Handler returns a ready-to-serve HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

type routeResponse struct {
	Found bool             `json:"found"`
	Route *geojson.Feature `json:"route"`
}

type snapResponse struct {
	Point [2]float64 `json:"point"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRoute serves GET /api/route?from=lon,lat&to=lon,lat&units=nm.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	origin, err := parsePointParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	destination, err := parsePointParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	unit, err := units.Parse(r.URL.Query().Get("units"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	route, err := s.router.Route(origin, destination, unit)
	switch {
	case errors.Is(err, router.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, network.ErrNoReachableNetwork):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		slog.Error("route request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := routeResponse{}
	if route != nil {
		resp.Found = true
		resp.Route = route.Feature()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSnap serves GET /api/snap?point=lon,lat.
func (s *Server) handleSnap(w http.ResponseWriter, r *http.Request) {
	p, err := parsePointParam(r, "point")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snapped, err := s.router.Snap(p)
	switch {
	case errors.Is(err, router.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, network.ErrNoReachableNetwork):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		slog.Error("snap request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, snapResponse{Point: [2]float64{snapped.Lon(), snapped.Lat()}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePointParam reads a "lon,lat" query parameter.
func parsePointParam(r *http.Request, name string) (orb.Point, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return orb.Point{}, errors.New("missing query parameter " + name)
	}

	parts := strings.Split(raw, ",")
	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Point{}, errors.New("malformed coordinate in parameter " + name)
		}
		coords = append(coords, v)
	}

	return router.Position(coords)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
