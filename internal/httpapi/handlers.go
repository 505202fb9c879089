package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vessel-ops/internal/model"
	"vessel-ops/internal/service"
)

type vesselReq struct {
	Name string `json:"name"`
}

type taskReq struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DoneByDate  string `json:"doneByDate"`
	Recurrence  string `json:"recurrence"`
}

type yardJobReq struct {
	Title      string `json:"title"`
	Yard       string `json:"yard"`
	Contractor string `json:"contractor"`
	DoneByDate string `json:"doneByDate"`
	Recurrence string `json:"recurrence"`
}

func (s *Server) listVessels(w http.ResponseWriter, r *http.Request) {
	vessels, err := s.vessels.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vessels)
}

func (s *Server) registerVessel(w http.ResponseWriter, r *http.Request) {
	var req vesselReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, `invalid body: {"name":"..."}`, http.StatusBadRequest)
		return
	}
	vessel, err := s.vessels.Register(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vessel)
}

// openTaskHub lists one category of a vessel's tasks. Opening a hub also runs the monthly cleanup gate.
func (s *Server) openTaskHub(w http.ResponseWriter, r *http.Request) {
	category, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tasks, err := s.tasks.OpenHub(r.Context(), chi.URLParam(r, "vesselID"), category, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(tasks))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	doneBy, rule, err := parseSchedule(req.DoneByDate, req.Recurrence)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := s.now()
	task, err := s.tasks.CreateTask(r.Context(), service.TaskInput{
		VesselID:    chi.URLParam(r, "vesselID"),
		Category:    category,
		Title:       req.Title,
		Description: req.Description,
		DoneByDate:  doneBy,
		Recurrence:  rule,
	}, now)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(*task, now))
}

func (s *Server) openYardJobHub(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.OpenHub(r.Context(), chi.URLParam(r, "vesselID"), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(jobs))
}

func (s *Server) createYardJob(w http.ResponseWriter, r *http.Request) {
	var req yardJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	doneBy, rule, err := parseSchedule(req.DoneByDate, req.Recurrence)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := s.now()
	job, err := s.jobs.CreateYardJob(r.Context(), service.YardJobInput{
		VesselID:   chi.URLParam(r, "vesselID"),
		Title:      req.Title,
		Yard:       req.Yard,
		Contractor: req.Contractor,
		DoneByDate: doneBy,
		Recurrence: rule,
	}, now)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(*job, now))
}

func parseSchedule(rawDate, rawRule string) (*time.Time, model.Recurrence, error) {
	rule, err := model.ParseRecurrence(rawRule)
	if err != nil {
		return nil, model.RecurNone, err
	}
	if rawDate == "" {
		return nil, rule, nil
	}
	d, err := model.ParseDate(rawDate)
	if err != nil {
		return nil, model.RecurNone, fmt.Errorf("doneByDate: %w", err)
	}
	return &d, rule, nil
}
