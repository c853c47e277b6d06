package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"yieldScope/internal/catalog"
)

func (s *Server) handleListFarms(w http.ResponseWriter, r *http.Request) {
	params, err := catalog.ValidateListQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	page, err := s.catalog.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, "Farm not found")
		return
	}
	s.writeData(w, r, detail)
}

func (s *Server) handleFarmHistory(w http.ResponseWriter, r *http.Request) {
	var days int
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, &fieldError{Field: "days", Message: "must be an integer"}, "")
			return
		}
		days = n
	}

	points, err := s.catalog.History(r.Context(), mux.Vars(r)["id"], days)
	if err != nil {
		s.writeError(w, r, err, "Farm not found")
		return
	}
	s.writeData(w, r, points)
}

func (s *Server) handleListProtocols(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, r, s.catalog.Protocols())
}

func (s *Server) handleGetProtocol(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Protocol(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, "Protocol not found")
		return
	}
	s.writeData(w, r, p)
}

func (s *Server) handleListChains(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, r, s.catalog.Chains())
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.Chain(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, "Chain not found")
		return
	}
	s.writeData(w, r, c)
}
