package http

import (
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

// Wire shapes for everything the API serves. Core model types stay
// untagged; the JSON contract lives here.

type requestPayload struct {
	ID                string    `json:"id"`
	SpeakerID         string    `json:"speakerId"`
	TeacherID         string    `json:"teacherId"`
	Status            string    `json:"status"`
	GradeLevels       []string  `json:"gradeLevels,omitempty"`
	Subjects          []string  `json:"subjects,omitempty"`
	EstimatedStudents int       `json:"estimatedStudents"`
	EventName         string    `json:"eventName"`
	EventPurpose      string    `json:"eventPurpose"`
	EventAt           time.Time `json:"eventAt"`
	Timezone          string    `json:"timezone"`
	InPerson          bool      `json:"inPerson"`
	Virtual           bool      `json:"virtual"`
	Expertise         string    `json:"expertise,omitempty"`
	PreferredLanguage string    `json:"preferredLanguage,omitempty"`
	Location          string    `json:"location,omitempty"`
	Goals             string    `json:"goals,omitempty"`
	Budget            *string   `json:"budget,omitempty"`
	EngagementFormat  string    `json:"engagementFormat,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toRequestPayload(r model.Request) requestPayload {
	return requestPayload{
		ID:                r.ID,
		SpeakerID:         r.SpeakerID,
		TeacherID:         r.TeacherID,
		Status:            r.Status,
		GradeLevels:       r.GradeLevels,
		Subjects:          r.Subjects,
		EstimatedStudents: r.EstimatedStudents,
		EventName:         r.EventName,
		EventPurpose:      r.EventPurpose,
		EventAt:           r.EventAt,
		Timezone:          r.Timezone,
		InPerson:          r.InPerson,
		Virtual:           r.Virtual,
		Expertise:         r.Expertise,
		PreferredLanguage: r.PreferredLanguage,
		Location:          r.Location,
		Goals:             r.Goals,
		Budget:            r.Budget,
		EngagementFormat:  r.EngagementFormat,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type requestPartyPayload struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type requestViewPayload struct {
	requestPayload
	Speaker      requestPartyPayload `json:"speaker"`
	Organization string              `json:"organization,omitempty"`
	Teacher      requestPartyPayload `json:"teacher"`
}

func toRequestViewPayload(v model.RequestView) requestViewPayload {
	return requestViewPayload{
		requestPayload: toRequestPayload(v.Request),
		Speaker:        requestPartyPayload(v.Speaker),
		Organization:   v.Organization,
		Teacher:        requestPartyPayload(v.Teacher),
	}
}

func toRequestViewPayloads(views []model.RequestView) []requestViewPayload {
	out := make([]requestViewPayload, 0, len(views))
	for _, v := range views {
		out = append(out, toRequestViewPayload(v))
	}
	return out
}

type speakerProfilePayload struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Organization string    `json:"organization,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	InPerson     bool      `json:"inPerson"`
	Virtual      bool      `json:"virtual"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Industries   []string  `json:"industries,omitempty"`
	Grades       []string  `json:"grades,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Languages    []string  `json:"languages,omitempty"`
	Visible      bool      `json:"visible"`
}

func toSpeakerProfilePayload(p model.SpeakerProfile) speakerProfilePayload {
	return speakerProfilePayload{
		ID:           p.ID,
		UserID:       p.UserID,
		Organization: p.Organization,
		Bio:          p.Bio,
		City:         p.City,
		State:        p.State,
		Country:      p.Country,
		InPerson:     p.InPerson,
		Virtual:      p.Virtual,
		ImageURL:     p.ImageURL,
		Industries:   p.Industries,
		Grades:       p.Grades,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Languages:    p.Languages,
		Visible:      p.Visible,
	}
}

type speakerViewPayload struct {
	speakerProfilePayload
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toSpeakerViewPayloads(views []model.SpeakerView) []speakerViewPayload {
	out := make([]speakerViewPayload, 0, len(views))
	for _, v := range views {
		out = append(out, speakerViewPayload{
			speakerProfilePayload: toSpeakerProfilePayload(v.SpeakerProfile),
			FirstName:             v.FirstName,
			LastName:              v.LastName,
		})
	}
	return out
}

type adminUserPayload struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Admin           bool   `json:"admin"`
	Verified        bool   `json:"verified"`
	ProfileComplete *bool  `json:"profileComplete,omitempty"`
	SpeakerVisible  *bool  `json:"speakerVisible,omitempty"`
}

func toAdminUserPayloads(views []model.AdminUserView) []adminUserPayload {
	out := make([]adminUserPayload, 0, len(views))
	for _, v := range views {
		out = append(out, adminUserPayload(v))
	}
	return out
}
