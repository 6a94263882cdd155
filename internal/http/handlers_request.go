package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/request"
)

// handleListRequests scopes the listing to the caller: admins see
// everything, teachers their own, speakers the ones addressed to
// their profile.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var (
		views []model.RequestView
		err   error
	)
	switch {
	case claims.Admin:
		views, err = s.requests.ListAll(r.Context())
	case claims.Role == model.RoleSpeaker:
		var profile model.SpeakerProfile
		profile, err = s.store.GetSpeakerProfileByUserID(r.Context(), claims.UserID)
		if err != nil {
			if fault.KindOf(err) == fault.KindNotFound {
				writeJSON(w, http.StatusOK, []requestViewPayload{})
				return
			}
			writeFault(w, err)
			return
		}
		views, err = s.requests.ListBySpeaker(r.Context(), profile.ID)
	default:
		views, err = s.requests.ListByTeacher(r.Context(), claims.UserID)
	}
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestViewPayloads(views))
}

type createRequestRequest struct {
	SpeakerID         string   `json:"speakerId"`
	TeacherID         string   `json:"teacherId,omitempty"`
	GradeLevels       []string `json:"gradeLevels,omitempty"`
	Subjects          []string `json:"subjects,omitempty"`
	EstimatedStudents int      `json:"estimatedStudents"`
	EventName         string   `json:"eventName"`
	EventPurpose      string   `json:"eventPurpose"`
	EventAt           string   `json:"eventAt"`
	Timezone          string   `json:"timezone"`
	InPerson          bool     `json:"inPerson"`
	Virtual           bool     `json:"virtual"`
	Expertise         string   `json:"expertise,omitempty"`
	PreferredLanguage string   `json:"preferredLanguage,omitempty"`
	Location          string   `json:"location,omitempty"`
	Goals             string   `json:"goals,omitempty"`
	Budget            *string  `json:"budget,omitempty"`
	EngagementFormat  string   `json:"engagementFormat,omitempty"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	eventAt, err := time.Parse(time.RFC3339, req.EventAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_date")
		return
	}

	claims := claimsFromContext(r.Context())
	teacherID := claims.UserID
	if claims.Admin && req.TeacherID != "" {
		teacherID = req.TeacherID
	}

	created, err := s.requests.Create(r.Context(), request.CreateInput{
		SpeakerID:         req.SpeakerID,
		TeacherID:         teacherID,
		GradeLevels:       req.GradeLevels,
		Subjects:          req.Subjects,
		EstimatedStudents: req.EstimatedStudents,
		EventName:         req.EventName,
		EventPurpose:      req.EventPurpose,
		EventAt:           eventAt,
		Timezone:          req.Timezone,
		InPerson:          req.InPerson,
		Virtual:           req.Virtual,
		Expertise:         req.Expertise,
		PreferredLanguage: req.PreferredLanguage,
		Location:          req.Location,
		Goals:             req.Goals,
		Budget:            req.Budget,
		EngagementFormat:  req.EngagementFormat,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestPayload(created))
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	view, err := s.requests.GetByID(r.Context(), requestID)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !s.mayTouchRequest(r, view.Request) {
		writeError(w, http.StatusForbidden, "not_involved")
		return
	}
	writeJSON(w, http.StatusOK, toRequestViewPayload(view))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	view, err := s.requests.GetByID(r.Context(), requestID)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !s.mayTouchRequest(r, view.Request) {
		writeError(w, http.StatusForbidden, "not_involved")
		return
	}

	updated, err := s.requests.SetStatus(r.Context(), requestID, req.Status)
	if err != nil {
		writeFault(w, err)
		return
	}
	requestStatusTotal.WithLabelValues(updated.Status).Inc()
	writeJSON(w, http.StatusOK, toRequestPayload(updated))
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	deleted, err := s.requests.Delete(r.Context(), requestID)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestPayload(deleted))
}

// mayTouchRequest reports whether the caller is an admin, the teacher
// on the request, or the speaker the request is addressed to.
func (s *Server) mayTouchRequest(r *http.Request, req model.Request) bool {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		return false
	}
	if claims.Admin || claims.UserID == req.TeacherID {
		return true
	}
	if claims.Role != model.RoleSpeaker {
		return false
	}
	profile, err := s.store.GetSpeakerProfileByUserID(r.Context(), claims.UserID)
	if err != nil {
		return false
	}
	return profile.ID == req.SpeakerID
}
