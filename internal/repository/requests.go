package repository

import (
	"context"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

const requestColumns = `id, speaker_id, teacher_id, status, grade_levels, subjects, estimated_students,
    event_name, event_purpose, event_at, timezone, in_person, virtual, expertise,
    preferred_language, location, goals, budget, engagement_format, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (model.Request, error) {
	var r model.Request
	err := row.Scan(&r.ID, &r.SpeakerID, &r.TeacherID, &r.Status, &r.GradeLevels, &r.Subjects,
		&r.EstimatedStudents, &r.EventName, &r.EventPurpose, &r.EventAt, &r.Timezone,
		&r.InPerson, &r.Virtual, &r.Expertise, &r.PreferredLanguage, &r.Location,
		&r.Goals, &r.Budget, &r.EngagementFormat, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, r model.Request) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO requests (id, speaker_id, teacher_id, status, grade_levels, subjects, estimated_students,
			event_name, event_purpose, event_at, timezone, in_person, virtual, expertise,
			preferred_language, location, goals, budget, engagement_format, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, r.ID, r.SpeakerID, r.TeacherID, r.Status, r.GradeLevels, r.Subjects, r.EstimatedStudents,
		r.EventName, r.EventPurpose, r.EventAt, r.Timezone, r.InPerson, r.Virtual, r.Expertise,
		r.PreferredLanguage, r.Location, r.Goals, r.Budget, r.EngagementFormat, r.CreatedAt, r.UpdatedAt)
	return translate(err, "request_not_found", "request_exists")
}

func (s *Store) GetRequestByID(ctx context.Context, requestID string) (model.Request, error) {
	r, err := scanRequest(s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, requestID))
	return r, translate(err, "request_not_found", "request_exists")
}

func (s *Store) UpdateRequestStatus(ctx context.Context, requestID, status string) (model.Request, error) {
	r, err := scanRequest(s.db.QueryRow(ctx, `
		UPDATE requests SET status = $1, updated_at = $2 WHERE id = $3
		RETURNING `+requestColumns+`
	`, status, time.Now().UTC(), requestID))
	return r, translate(err, "request_not_found", "request_exists")
}

// DeleteRequest hard-deletes and returns the removed record.
func (s *Store) DeleteRequest(ctx context.Context, requestID string) (model.Request, error) {
	r, err := scanRequest(s.db.QueryRow(ctx, `
		DELETE FROM requests WHERE id = $1 RETURNING `+requestColumns,
		requestID))
	return r, translate(err, "request_not_found", "request_exists")
}

func (s *Store) DeleteRequestsByTeacher(ctx context.Context, teacherID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM requests WHERE teacher_id = $1`, teacherID)
	return tag.RowsAffected(), translate(err, "request_not_found", "request_exists")
}

func (s *Store) DeleteRequestsBySpeaker(ctx context.Context, speakerProfileID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM requests WHERE speaker_id = $1`, speakerProfileID)
	return tag.RowsAffected(), translate(err, "request_not_found", "request_exists")
}

// DeleteOrphanRequests removes requests whose speaker profile or
// teacher user no longer exists. It backs the reconcile sweep that
// closes the create/delete interleaving window.
func (s *Store) DeleteOrphanRequests(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM requests r
		WHERE NOT EXISTS (SELECT 1 FROM speaker_profiles sp WHERE sp.id = r.speaker_id)
		   OR NOT EXISTS (SELECT 1 FROM users u WHERE u.id = r.teacher_id)
	`)
	return tag.RowsAffected(), translate(err, "request_not_found", "request_exists")
}

const requestViewJoin = `
	FROM requests r
	JOIN speaker_profiles sp ON sp.id = r.speaker_id
	JOIN users su ON su.id = sp.user_id
	JOIN users tu ON tu.id = r.teacher_id`

const requestViewColumns = `r.id, r.speaker_id, r.teacher_id, r.status, r.grade_levels, r.subjects,
	r.estimated_students, r.event_name, r.event_purpose, r.event_at, r.timezone, r.in_person, r.virtual,
	r.expertise, r.preferred_language, r.location, r.goals, r.budget, r.engagement_format,
	r.created_at, r.updated_at,
	su.id, su.first_name, su.last_name, su.email, sp.organization,
	tu.id, tu.first_name, tu.last_name, tu.email`

func scanRequestView(row interface{ Scan(...any) error }) (model.RequestView, error) {
	var v model.RequestView
	err := row.Scan(&v.ID, &v.SpeakerID, &v.TeacherID, &v.Status, &v.GradeLevels, &v.Subjects,
		&v.EstimatedStudents, &v.EventName, &v.EventPurpose, &v.EventAt, &v.Timezone,
		&v.InPerson, &v.Virtual, &v.Expertise, &v.PreferredLanguage, &v.Location,
		&v.Goals, &v.Budget, &v.EngagementFormat, &v.CreatedAt, &v.UpdatedAt,
		&v.Speaker.UserID, &v.Speaker.FirstName, &v.Speaker.LastName, &v.Speaker.Email, &v.Organization,
		&v.Teacher.UserID, &v.Teacher.FirstName, &v.Teacher.LastName, &v.Teacher.Email)
	return v, err
}

func (s *Store) GetRequestView(ctx context.Context, requestID string) (model.RequestView, error) {
	v, err := scanRequestView(s.db.QueryRow(ctx,
		`SELECT `+requestViewColumns+requestViewJoin+` WHERE r.id = $1`, requestID))
	return v, translate(err, "request_not_found", "request_exists")
}

func (s *Store) listRequestViews(ctx context.Context, where string, args ...any) ([]model.RequestView, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+requestViewColumns+requestViewJoin+where+` ORDER BY r.created_at DESC`, args...)
	if err != nil {
		return nil, translate(err, "request_not_found", "request_exists")
	}
	defer rows.Close()

	views := []model.RequestView{}
	for rows.Next() {
		v, err := scanRequestView(rows)
		if err != nil {
			return nil, translate(err, "request_not_found", "request_exists")
		}
		views = append(views, v)
	}
	return views, translate(rows.Err(), "request_not_found", "request_exists")
}

func (s *Store) ListRequestViews(ctx context.Context) ([]model.RequestView, error) {
	return s.listRequestViews(ctx, "")
}

func (s *Store) ListRequestViewsByTeacher(ctx context.Context, teacherID string) ([]model.RequestView, error) {
	return s.listRequestViews(ctx, ` WHERE r.teacher_id = $1`, teacherID)
}

func (s *Store) ListRequestViewsBySpeaker(ctx context.Context, speakerProfileID string) ([]model.RequestView, error) {
	return s.listRequestViews(ctx, ` WHERE r.speaker_id = $1`, speakerProfileID)
}
