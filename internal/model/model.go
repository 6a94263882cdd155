package model

import "time"

const (
	RoleTeacher = "teacher"
	RoleSpeaker = "speaker"
	RoleAdmin   = "admin"
)

// Request lifecycle statuses. CreateRequest always starts at
// StatusPendingReview; any of the four may be set afterwards.
const (
	StatusPendingReview       = "Pending Review"
	StatusPendingConfirmation = "Pending Speaker Confirmation"
	StatusApproved            = "Approved"
	StatusArchived            = "Archived"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPendingReview, StatusPendingConfirmation, StatusApproved, StatusArchived:
		return true
	default:
		return false
	}
}

// Grade bands a speaker can serve.
const (
	GradeElementary = "Elementary"
	GradeMiddle     = "Middle School"
	GradeHigh       = "High School"
)

func ValidGrade(grade string) bool {
	switch grade {
	case GradeElementary, GradeMiddle, GradeHigh:
		return true
	default:
		return false
	}
}

type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	PasswordHash      string
	Role              string
	Admin             bool
	Verified          bool
	VerificationToken *string
	ResetToken        *string
	ResetTokenExpiry  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Invite is a pending single-use registration authorization. At most
// one live invite exists per email; re-inviting rotates the token.
type Invite struct {
	ID        string
	Email     string
	Token     string
	Role      string
	FirstName *string
	LastName  *string
	CreatedAt time.Time
}

type TeacherProfile struct {
	ID         string
	UserID     string
	School     string
	City       string
	State      string
	Country    string
	GradeLevel string
	Subjects   []string
	Bio        string
}

type SpeakerProfile struct {
	ID           string
	UserID       string
	Organization string
	Bio          string
	City         string
	State        string
	Country      string
	InPerson     bool
	Virtual      bool
	ImageURL     *string
	Industries   []string
	Grades       []string
	Latitude     *float64
	Longitude    *float64
	Languages    []string
	Visible      bool
}

// Request is an engagement ask from a teacher to a speaker. SpeakerID
// references a SpeakerProfile; TeacherID references a User.
type Request struct {
	ID                string
	SpeakerID         string
	TeacherID         string
	Status            string
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
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RequestParty is the display identity of one side of a request.
type RequestParty struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
}

// RequestView is a request joined with the display identities of the
// speaker's owning user and the teacher user. Password hashes are
// never part of a view.
type RequestView struct {
	Request
	Speaker      RequestParty
	Organization string
	Teacher      RequestParty
}

// SpeakerView is a visible speaker profile joined with the owning
// user's name, as served by the public directory.
type SpeakerView struct {
	SpeakerProfile
	FirstName string
	LastName  string
}

// AdminUserView is a user as listed for administration, with derived
// speaker fields computed from profile completeness.
type AdminUserView struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Role            string
	Admin           bool
	Verified        bool
	ProfileComplete *bool
	SpeakerVisible  *bool
}
