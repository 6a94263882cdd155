package http

import (
	"log"
	"net/http"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/account"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/validate"
)

type inviteRequest struct {
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type inviteResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// handleInvite creates an invite for the email, or re-issues the
// existing one with a fresh token when the address was already
// invited. Re-inviting is how an admin resends a lost mail.
func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	email := validate.NormalizeEmail(req.Email)
	inv, err := s.invites.GetByEmail(r.Context(), email)
	switch {
	case err == nil:
		inv, err = s.invites.Rotate(r.Context(), inv, req.Role, req.FirstName, req.LastName)
	case fault.KindOf(err) == fault.KindNotFound:
		inv, err = s.invites.Create(r.Context(), email, req.Role, req.FirstName, req.LastName)
	}
	if err != nil {
		writeFault(w, err)
		return
	}

	if err := s.notifier.Send(r.Context(), notify.KindInvite, inv.Email, inv.Token); err != nil {
		log.Printf("invite mail to %s failed: %v", inv.Email, err)
	}
	invitesIssuedTotal.Inc()
	writeJSON(w, http.StatusCreated, inviteResponse{Email: inv.Email, Role: inv.Role, Token: inv.Token})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.ListUsers(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminUserPayloads(users))
}

type deleteUserRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	claims := claimsFromContext(r.Context())
	if err := s.deleter.DeleteUser(r.Context(), claims.UserID, req.Email); err != nil {
		writeFault(w, err)
		return
	}
	s.invalidateSpeakerCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type speakerDirectRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	Organization string    `json:"organization"`
	Bio          string    `json:"bio"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	InPerson     bool      `json:"inPerson"`
	Virtual      bool      `json:"virtual"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Industries   []string  `json:"industries,omitempty"`
	Grades       []string  `json:"grades,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Languages    []string  `json:"languages,omitempty"`
}

type speakerDirectResponse struct {
	User    userSummary           `json:"user"`
	Profile speakerProfilePayload `json:"profile"`
}

func (s *Server) handleCreateSpeakerDirect(w http.ResponseWriter, r *http.Request) {
	var req speakerDirectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	user, profile, err := s.accounts.CreateSpeakerDirect(r.Context(), account.SpeakerDirectInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Organization: req.Organization,
		Bio:          req.Bio,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		InPerson:     req.InPerson,
		Virtual:      req.Virtual,
		ImageURL:     req.ImageURL,
		Industries:   req.Industries,
		Grades:       req.Grades,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Languages:    req.Languages,
	})
	if err != nil {
		writeFault(w, err)
		return
	}

	registrationsTotal.WithLabelValues("direct").Inc()
	s.invalidateSpeakerCache(r.Context())
	writeJSON(w, http.StatusCreated, speakerDirectResponse{User: summarize(user), Profile: toSpeakerProfilePayload(profile)})
}
