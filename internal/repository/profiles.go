package repository

import (
	"context"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

const teacherProfileColumns = `id, user_id, school, city, state, country, grade_level, subjects, bio`

const speakerProfileColumns = `id, user_id, organization, bio, city, state, country, inperson, virtual,
    image_url, industries, grades, latitude, longitude, languages, visible`

func scanTeacherProfile(row interface{ Scan(...any) error }) (model.TeacherProfile, error) {
	var p model.TeacherProfile
	err := row.Scan(&p.ID, &p.UserID, &p.School, &p.City, &p.State, &p.Country, &p.GradeLevel, &p.Subjects, &p.Bio)
	return p, err
}

func scanSpeakerProfile(row interface{ Scan(...any) error }) (model.SpeakerProfile, error) {
	var p model.SpeakerProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Organization, &p.Bio, &p.City, &p.State, &p.Country,
		&p.InPerson, &p.Virtual, &p.ImageURL, &p.Industries, &p.Grades,
		&p.Latitude, &p.Longitude, &p.Languages, &p.Visible)
	return p, err
}

func (s *Store) CreateTeacherProfile(ctx context.Context, p model.TeacherProfile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO teacher_profiles (id, user_id, school, city, state, country, grade_level, subjects, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.UserID, p.School, p.City, p.State, p.Country, p.GradeLevel, p.Subjects, p.Bio)
	return translate(err, "profile_not_found", "profile_exists")
}

func (s *Store) CreateSpeakerProfile(ctx context.Context, p model.SpeakerProfile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO speaker_profiles (id, user_id, organization, bio, city, state, country, inperson, virtual,
			image_url, industries, grades, latitude, longitude, languages, visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, p.ID, p.UserID, p.Organization, p.Bio, p.City, p.State, p.Country, p.InPerson, p.Virtual,
		p.ImageURL, p.Industries, p.Grades, p.Latitude, p.Longitude, p.Languages, p.Visible)
	return translate(err, "profile_not_found", "profile_exists")
}

func (s *Store) GetTeacherProfileByUserID(ctx context.Context, userID string) (model.TeacherProfile, error) {
	p, err := scanTeacherProfile(s.db.QueryRow(ctx,
		`SELECT `+teacherProfileColumns+` FROM teacher_profiles WHERE user_id = $1`, userID))
	return p, translate(err, "profile_not_found", "profile_exists")
}

func (s *Store) GetSpeakerProfileByUserID(ctx context.Context, userID string) (model.SpeakerProfile, error) {
	p, err := scanSpeakerProfile(s.db.QueryRow(ctx,
		`SELECT `+speakerProfileColumns+` FROM speaker_profiles WHERE user_id = $1`, userID))
	return p, translate(err, "profile_not_found", "profile_exists")
}

func (s *Store) GetSpeakerProfileByID(ctx context.Context, profileID string) (model.SpeakerProfile, error) {
	p, err := scanSpeakerProfile(s.db.QueryRow(ctx,
		`SELECT `+speakerProfileColumns+` FROM speaker_profiles WHERE id = $1`, profileID))
	return p, translate(err, "profile_not_found", "profile_exists")
}

// ListSpeakerProfiles returns every speaker profile keyed by owning
// user, as needed by the admin user listing.
func (s *Store) ListSpeakerProfiles(ctx context.Context) (map[string]model.SpeakerProfile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+speakerProfileColumns+` FROM speaker_profiles`)
	if err != nil {
		return nil, translate(err, "profile_not_found", "profile_exists")
	}
	defer rows.Close()

	profiles := map[string]model.SpeakerProfile{}
	for rows.Next() {
		p, err := scanSpeakerProfile(rows)
		if err != nil {
			return nil, translate(err, "profile_not_found", "profile_exists")
		}
		profiles[p.UserID] = p
	}
	return profiles, translate(rows.Err(), "profile_not_found", "profile_exists")
}

// ListVisibleSpeakers joins visible profiles with the owning user's
// name for the public directory.
func (s *Store) ListVisibleSpeakers(ctx context.Context) ([]model.SpeakerView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sp.id, sp.user_id, sp.organization, sp.bio, sp.city, sp.state, sp.country,
			sp.inperson, sp.virtual, sp.image_url, sp.industries, sp.grades,
			sp.latitude, sp.longitude, sp.languages, sp.visible,
			u.first_name, u.last_name
		FROM speaker_profiles sp
		JOIN users u ON u.id = sp.user_id
		WHERE sp.visible = TRUE
		ORDER BY sp.organization, u.last_name
	`)
	if err != nil {
		return nil, translate(err, "profile_not_found", "profile_exists")
	}
	defer rows.Close()

	speakers := []model.SpeakerView{}
	for rows.Next() {
		var v model.SpeakerView
		err := rows.Scan(&v.ID, &v.UserID, &v.Organization, &v.Bio, &v.City, &v.State, &v.Country,
			&v.InPerson, &v.Virtual, &v.ImageURL, &v.Industries, &v.Grades,
			&v.Latitude, &v.Longitude, &v.Languages, &v.Visible,
			&v.FirstName, &v.LastName)
		if err != nil {
			return nil, translate(err, "profile_not_found", "profile_exists")
		}
		speakers = append(speakers, v)
	}
	return speakers, translate(rows.Err(), "profile_not_found", "profile_exists")
}

func (s *Store) DeleteTeacherProfileByUserID(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM teacher_profiles WHERE user_id = $1`, userID)
	return translate(err, "profile_not_found", "profile_exists")
}

func (s *Store) DeleteSpeakerProfileByUserID(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM speaker_profiles WHERE user_id = $1`, userID)
	return translate(err, "profile_not_found", "profile_exists")
}
