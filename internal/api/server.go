package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/subsurfacelabs/potfield/core"
	"github.com/subsurfacelabs/potfield/internal/logging"
	"github.com/subsurfacelabs/potfield/internal/observability"
	"github.com/subsurfacelabs/potfield/kb"
	"github.com/subsurfacelabs/potfield/model"
)

// Server is the JSON-over-HTTP surface of the forward modeler: field
// evaluations against the current model, plus model editing.
type Server struct {
	store   *kb.ModelStore
	engine  *core.Engine
	ambient model.AmbientField
	log     logging.Logger
}

// NewServer builds a Server. ambient is the default regional field used
// when a total-field request does not carry its own direction.
func NewServer(store *kb.ModelStore, engine *core.Engine, ambient model.AmbientField, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{store: store, engine: engine, ambient: ambient, log: log}
}

// Handler returns the routed handler with request-ID, tracing, and metrics
// middleware applied per route, so the matched pattern is available as a
// low-cardinality label.
func (s *Server) Handler(collector *observability.Collector) http.Handler {
	mws := []Middleware{RequestID(s.log), Tracing()}
	if collector != nil {
		mws = append(mws, Metrics(collector))
	}

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, chain(h, mws...))
	}

	handle("GET /healthz", s.handleHealth)
	handle("POST /v1/fields/total-field", s.handleTotalField)
	handle("POST /v1/fields/gravity", s.handleGravity)
	handle("GET /v1/model/spheres", s.handleListSpheres)
	handle("POST /v1/model/spheres", s.handleAddSphere)
	handle("POST /v1/model/spheres/{id}/deactivate", s.handleDeactivateSphere)
	handle("POST /v1/model/spheres/{id}/reactivate", s.handleReactivateSphere)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTotalField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req totalFieldRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateObservations(req.Observations); err != nil {
		writeError(ctx, w, err)
		return
	}
	if (req.Inclination == nil) != (req.Declination == nil) {
		writeError(ctx, w, fmt.Errorf("%w: inclination and declination must be given together", ErrInvalidRequest))
		return
	}

	ambient := s.ambient
	if req.Inclination != nil {
		ambient = model.AmbientField{
			InclinationDeg: *req.Inclination,
			DeclinationDeg: *req.Declination,
		}
	}

	values, err := s.engine.TotalField(ctx, req.Observations.toCore(), s.store.Snapshot(), ambient)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Field: core.FieldTotalField, Units: "nT", Values: values})
}

func (s *Server) handleGravity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req gravityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateObservations(req.Observations); err != nil {
		writeError(ctx, w, err)
		return
	}

	values, err := s.engine.GravityZ(ctx, req.Observations.toCore(), s.store.Snapshot())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Field: core.FieldGravityZ, Units: "mGal", Values: values})
}

func (s *Server) handleListSpheres(w http.ResponseWriter, r *http.Request) {
	entries := s.store.List()
	res := sphereListResponse{Spheres: make([]sphereBody, 0, len(entries))}
	for _, e := range entries {
		res.Spheres = append(res.Spheres, sphereBodyFromEntry(e))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAddSphere(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body sphereBody
	if err := decodeBody(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := validateSphere(body); err != nil {
		writeError(ctx, w, err)
		return
	}

	id, err := s.store.AddSphere(body.toModel())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if reqLog := logging.LoggerFromContext(ctx); reqLog != nil {
		reqLog.Info(ctx, "sphere added", logging.String("sphere_id", id))
	}
	writeJSON(w, http.StatusCreated, sphereCreatedResponse{ID: id})
}

func (s *Server) handleDeactivateSphere(w http.ResponseWriter, r *http.Request) {
	s.setSphereActive(w, r, false)
}

func (s *Server) handleReactivateSphere(w http.ResponseWriter, r *http.Request) {
	s.setSphereActive(w, r, true)
}

func (s *Server) setSphereActive(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	id := r.PathValue("id")

	var err error
	if active {
		err = s.store.Reactivate(id)
	} else {
		err = s.store.Deactivate(id)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if reqLog := logging.LoggerFromContext(ctx); reqLog != nil {
		reqLog.Info(ctx, "sphere activation changed",
			logging.String("sphere_id", id),
			logging.Any("active", active),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrInvalidRequest, err)
	}
	return nil
}
