// Package storetest provides an in-memory entity store for package
// tests. It mirrors the repository's error contract: absent rows
// surface as NotFound faults and uniqueness races as Conflicts.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

type Store struct {
	mu              sync.Mutex
	Users           map[string]model.User
	Invites         map[string]model.Invite
	TeacherProfiles map[string]model.TeacherProfile
	SpeakerProfiles map[string]model.SpeakerProfile
	Requests        map[string]model.Request
}

func New() *Store {
	return &Store{
		Users:           map[string]model.User{},
		Invites:         map[string]model.Invite{},
		TeacherProfiles: map[string]model.TeacherProfile{},
		SpeakerProfiles: map[string]model.SpeakerProfile{},
		Requests:        map[string]model.Request{},
	}
}

func (s *Store) CreateUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Users {
		if existing.Email == user.Email {
			return fault.Conflict("email_taken", "email_taken")
		}
	}
	s.Users[user.ID] = user
	return nil
}

func (s *Store) CreateTeacherAccount(ctx context.Context, user model.User, p model.TeacherProfile) error {
	if err := s.CreateUser(ctx, user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TeacherProfiles[p.ID] = p
	return nil
}

func (s *Store) CreateSpeakerAccount(ctx context.Context, user model.User, p model.SpeakerProfile) error {
	if err := s.CreateUser(ctx, user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SpeakerProfiles[p.ID] = p
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, fault.NotFound("user_not_found", "user_not_found")
}

func (s *Store) GetUserByID(_ context.Context, userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.Users[userID]; ok {
		return user, nil
	}
	return model.User{}, fault.NotFound("user_not_found", "user_not_found")
}

func (s *Store) GetUserByVerificationToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.Users {
		if user.VerificationToken != nil && *user.VerificationToken == token {
			return user, nil
		}
	}
	return model.User{}, fault.NotFound("user_not_found", "user_not_found")
}

func (s *Store) GetUserByResetToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.Users {
		if user.ResetToken != nil && *user.ResetToken == token {
			return user, nil
		}
	}
	return model.User{}, fault.NotFound("user_not_found", "user_not_found")
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []model.User{}
	for _, user := range s.Users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) SetUserVerified(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[userID]
	if !ok {
		return fault.NotFound("user_not_found", "user_not_found")
	}
	user.Verified = true
	user.VerificationToken = nil
	s.Users[userID] = user
	return nil
}

func (s *Store) SetResetToken(_ context.Context, userID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[userID]
	if !ok {
		return fault.NotFound("user_not_found", "user_not_found")
	}
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	s.Users[userID] = user
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[userID]
	if !ok {
		return fault.NotFound("user_not_found", "user_not_found")
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	s.Users[userID] = user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Users, userID)
	return nil
}

func (s *Store) CreateInvite(_ context.Context, inv model.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Invites {
		if existing.Email == inv.Email || existing.Token == inv.Token {
			return fault.Conflict("invite_exists", "invite_exists")
		}
	}
	s.Invites[inv.ID] = inv
	return nil
}

func (s *Store) UpdateInvite(_ context.Context, inv model.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Invites[inv.ID]; !ok {
		return fault.NotFound("invite_not_found", "invite_not_found")
	}
	s.Invites[inv.ID] = inv
	return nil
}

func (s *Store) GetInviteByEmail(_ context.Context, email string) (model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.Invites {
		if inv.Email == email {
			return inv, nil
		}
	}
	return model.Invite{}, fault.NotFound("invite_not_found", "invite_not_found")
}

func (s *Store) GetInviteByToken(_ context.Context, token string) (model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.Invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return model.Invite{}, fault.NotFound("invite_not_found", "invite_not_found")
}

func (s *Store) DeleteInviteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inv := range s.Invites {
		if inv.Token == token {
			delete(s.Invites, id)
			return nil
		}
	}
	return nil
}

func (s *Store) CreateTeacherProfile(_ context.Context, p model.TeacherProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TeacherProfiles[p.ID] = p
	return nil
}

func (s *Store) CreateSpeakerProfile(_ context.Context, p model.SpeakerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SpeakerProfiles[p.ID] = p
	return nil
}

func (s *Store) GetTeacherProfileByUserID(_ context.Context, userID string) (model.TeacherProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.TeacherProfiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return model.TeacherProfile{}, fault.NotFound("profile_not_found", "profile_not_found")
}

func (s *Store) GetSpeakerProfileByUserID(_ context.Context, userID string) (model.SpeakerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.SpeakerProfiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return model.SpeakerProfile{}, fault.NotFound("profile_not_found", "profile_not_found")
}

func (s *Store) GetSpeakerProfileByID(_ context.Context, profileID string) (model.SpeakerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.SpeakerProfiles[profileID]; ok {
		return p, nil
	}
	return model.SpeakerProfile{}, fault.NotFound("profile_not_found", "profile_not_found")
}

func (s *Store) ListSpeakerProfiles(_ context.Context) (map[string]model.SpeakerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := map[string]model.SpeakerProfile{}
	for _, p := range s.SpeakerProfiles {
		profiles[p.UserID] = p
	}
	return profiles, nil
}

func (s *Store) ListVisibleSpeakers(_ context.Context) ([]model.SpeakerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	speakers := []model.SpeakerView{}
	for _, p := range s.SpeakerProfiles {
		if !p.Visible {
			continue
		}
		view := model.SpeakerView{SpeakerProfile: p}
		if user, ok := s.Users[p.UserID]; ok {
			view.FirstName = user.FirstName
			view.LastName = user.LastName
		}
		speakers = append(speakers, view)
	}
	sort.Slice(speakers, func(i, j int) bool { return speakers[i].Organization < speakers[j].Organization })
	return speakers, nil
}

func (s *Store) DeleteTeacherProfileByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.TeacherProfiles {
		if p.UserID == userID {
			delete(s.TeacherProfiles, id)
		}
	}
	return nil
}

func (s *Store) DeleteSpeakerProfileByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.SpeakerProfiles {
		if p.UserID == userID {
			delete(s.SpeakerProfiles, id)
		}
	}
	return nil
}

func (s *Store) CreateRequest(_ context.Context, r model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests[r.ID] = r
	return nil
}

func (s *Store) GetRequestByID(_ context.Context, requestID string) (model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.Requests[requestID]; ok {
		return r, nil
	}
	return model.Request{}, fault.NotFound("request_not_found", "request_not_found")
}

func (s *Store) UpdateRequestStatus(_ context.Context, requestID, status string) (model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Requests[requestID]
	if !ok {
		return model.Request{}, fault.NotFound("request_not_found", "request_not_found")
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	s.Requests[requestID] = r
	return r, nil
}

func (s *Store) DeleteRequest(_ context.Context, requestID string) (model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Requests[requestID]
	if !ok {
		return model.Request{}, fault.NotFound("request_not_found", "request_not_found")
	}
	delete(s.Requests, requestID)
	return r, nil
}

func (s *Store) DeleteRequestsByTeacher(_ context.Context, teacherID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, r := range s.Requests {
		if r.TeacherID == teacherID {
			delete(s.Requests, id)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteRequestsBySpeaker(_ context.Context, speakerProfileID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, r := range s.Requests {
		if r.SpeakerID == speakerProfileID {
			delete(s.Requests, id)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteOrphanRequests(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, r := range s.Requests {
		_, speakerOK := s.SpeakerProfiles[r.SpeakerID]
		_, teacherOK := s.Users[r.TeacherID]
		if !speakerOK || !teacherOK {
			delete(s.Requests, id)
			count++
		}
	}
	return count, nil
}

func (s *Store) view(r model.Request) model.RequestView {
	v := model.RequestView{Request: r}
	if p, ok := s.SpeakerProfiles[r.SpeakerID]; ok {
		v.Organization = p.Organization
		if user, ok := s.Users[p.UserID]; ok {
			v.Speaker = model.RequestParty{UserID: user.ID, FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
		}
	}
	if user, ok := s.Users[r.TeacherID]; ok {
		v.Teacher = model.RequestParty{UserID: user.ID, FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
	}
	return v
}

func (s *Store) GetRequestView(_ context.Context, requestID string) (model.RequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.Requests[requestID]; ok {
		return s.view(r), nil
	}
	return model.RequestView{}, fault.NotFound("request_not_found", "request_not_found")
}

func (s *Store) listViews(filter func(model.Request) bool) []model.RequestView {
	views := []model.RequestView{}
	for _, r := range s.Requests {
		if filter(r) {
			views = append(views, s.view(r))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views
}

func (s *Store) ListRequestViews(_ context.Context) ([]model.RequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(func(model.Request) bool { return true }), nil
}

func (s *Store) ListRequestViewsByTeacher(_ context.Context, teacherID string) ([]model.RequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(func(r model.Request) bool { return r.TeacherID == teacherID }), nil
}

func (s *Store) ListRequestViewsBySpeaker(_ context.Context, speakerProfileID string) ([]model.RequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listViews(func(r model.Request) bool { return r.SpeakerID == speakerProfileID }), nil
}

func (s *Store) DeleteTeacherAccount(ctx context.Context, userID string) (int64, error) {
	removed, err := s.DeleteRequestsByTeacher(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.DeleteTeacherProfileByUserID(ctx, userID); err != nil {
		return removed, err
	}
	return removed, s.DeleteUser(ctx, userID)
}

func (s *Store) DeleteSpeakerAccount(ctx context.Context, userID, speakerProfileID string) (int64, error) {
	if err := s.DeleteSpeakerProfileByUserID(ctx, userID); err != nil {
		return 0, err
	}
	removed, err := s.DeleteRequestsBySpeaker(ctx, speakerProfileID)
	if err != nil {
		return removed, err
	}
	return removed, s.DeleteUser(ctx, userID)
}
