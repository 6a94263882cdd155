// Package request implements the engagement-request workflow between
// teachers and speakers.
package request

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

type Store interface {
	CreateRequest(ctx context.Context, r model.Request) error
	GetRequestByID(ctx context.Context, requestID string) (model.Request, error)
	GetRequestView(ctx context.Context, requestID string) (model.RequestView, error)
	ListRequestViews(ctx context.Context) ([]model.RequestView, error)
	ListRequestViewsByTeacher(ctx context.Context, teacherID string) ([]model.RequestView, error)
	ListRequestViewsBySpeaker(ctx context.Context, speakerProfileID string) ([]model.RequestView, error)
	UpdateRequestStatus(ctx context.Context, requestID, status string) (model.Request, error)
	DeleteRequest(ctx context.Context, requestID string) (model.Request, error)
	GetSpeakerProfileByID(ctx context.Context, profileID string) (model.SpeakerProfile, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

type CreateInput struct {
	SpeakerID         string
	TeacherID         string
	GradeLevels       []string
	Subjects          []string
	EstimatedStudents int
	EventName         string
	EventPurpose      string
	EventAt           time.Time
	Timezone          string
	InPerson          bool
	Virtual           bool
	Expertise         string
	PreferredLanguage string
	Location          string
	Goals             string
	Budget            *string
	EngagementFormat  string
}

// Create persists a new request. Whatever the caller supplies, the
// stored status is always Pending Review.
func (e *Engine) Create(ctx context.Context, in CreateInput) (model.Request, error) {
	if in.EventName == "" || in.EventPurpose == "" || in.Timezone == "" || in.EventAt.IsZero() {
		return model.Request{}, fault.Validation("missing_fields", "event name, purpose, date and timezone are required")
	}
	if in.EstimatedStudents <= 0 {
		return model.Request{}, fault.Validation("invalid_students", "estimated students must be positive")
	}
	if !in.InPerson && !in.Virtual {
		return model.Request{}, fault.Validation("missing_format", "request must be in-person, virtual or both")
	}

	if _, err := e.store.GetSpeakerProfileByID(ctx, in.SpeakerID); err != nil {
		return model.Request{}, err
	}
	teacher, err := e.store.GetUserByID(ctx, in.TeacherID)
	if err != nil {
		return model.Request{}, err
	}
	if teacher.Role != model.RoleTeacher {
		return model.Request{}, fault.Validation("not_a_teacher", "requests can only be created for teacher accounts")
	}

	now := time.Now().UTC()
	r := model.Request{
		ID:                uuid.NewString(),
		SpeakerID:         in.SpeakerID,
		TeacherID:         in.TeacherID,
		Status:            model.StatusPendingReview,
		GradeLevels:       in.GradeLevels,
		Subjects:          in.Subjects,
		EstimatedStudents: in.EstimatedStudents,
		EventName:         in.EventName,
		EventPurpose:      in.EventPurpose,
		EventAt:           in.EventAt,
		Timezone:          in.Timezone,
		InPerson:          in.InPerson,
		Virtual:           in.Virtual,
		Expertise:         in.Expertise,
		PreferredLanguage: in.PreferredLanguage,
		Location:          in.Location,
		Goals:             in.Goals,
		Budget:            in.Budget,
		EngagementFormat:  in.EngagementFormat,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := e.store.CreateRequest(ctx, r); err != nil {
		return model.Request{}, err
	}
	return r, nil
}

// SetStatus applies newStatus unconditionally when it is one of the
// four lifecycle values. The transition set is deliberately open;
// which moves are sensible is operator policy, not engine policy.
// Concurrent calls on the same request are last-write-wins.
func (e *Engine) SetStatus(ctx context.Context, requestID, newStatus string) (model.Request, error) {
	if !model.ValidStatus(newStatus) {
		return model.Request{}, fault.Validation("invalid_status", "status must be one of the four lifecycle values")
	}
	return e.store.UpdateRequestStatus(ctx, requestID, newStatus)
}

func (e *Engine) GetByID(ctx context.Context, requestID string) (model.RequestView, error) {
	return e.store.GetRequestView(ctx, requestID)
}

func (e *Engine) ListAll(ctx context.Context) ([]model.RequestView, error) {
	return e.store.ListRequestViews(ctx)
}

func (e *Engine) ListByTeacher(ctx context.Context, teacherID string) ([]model.RequestView, error) {
	return e.store.ListRequestViewsByTeacher(ctx, teacherID)
}

func (e *Engine) ListBySpeaker(ctx context.Context, speakerProfileID string) ([]model.RequestView, error) {
	return e.store.ListRequestViewsBySpeaker(ctx, speakerProfileID)
}

// Delete hard-deletes a request and returns the removed record.
func (e *Engine) Delete(ctx context.Context, requestID string) (model.Request, error) {
	return e.store.DeleteRequest(ctx, requestID)
}
