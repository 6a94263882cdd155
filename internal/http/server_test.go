package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/account"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/auth"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/config"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/crypto"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/invite"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/request"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/storetest"
)

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, notify.Kind, string, string) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *storetest.Store, config.Config) {
	t.Helper()
	cfg := config.Config{
		HTTPAddr:       ":0",
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		ResetTokenTTL:  time.Hour,
		FrontendURL:    "http://localhost:3000",
	}
	store := storetest.New()
	invites := invite.NewManager(store, cfg.InviteTokenTTL)
	accounts := account.NewProvisioner(store, invites, nopNotifier{}, false, cfg.ResetTokenTTL)
	deleter := account.NewCoordinator(store)
	requests := request.NewEngine(store)

	server := NewServer(cfg, store, invites, accounts, deleter, requests, nopNotifier{}, nil)
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return app, store, cfg
}

func mustToken(t *testing.T, cfg config.Config, user model.User) string {
	t.Helper()
	token, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Admin:  user.Admin,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func seedAccount(t *testing.T, store *storetest.Store, role string, admin bool, email, password string) model.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	user := model.User{
		ID:           email,
		FirstName:    "Seed",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Admin:        admin,
		Verified:     true,
	}
	store.Users[user.ID] = user
	return user
}

func TestLoginAndRegister(t *testing.T) {
	app, store, _ := newTestServer(t)
	seedAccount(t, store, model.RoleTeacher, false, "teach@example.com", "hunter22")

	resp := doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]string{
		"email":    "Teach@Example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var login authResponse
	decodeBody(t, resp, &login)
	if login.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if login.User.Role != model.RoleTeacher {
		t.Fatalf("expected teacher role, got %s", login.User.Role)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]string{
		"email":    "teach@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/auth/register", "", map[string]interface{}{
		"firstName": "Sam",
		"lastName":  "Speaker",
		"email":     "sam@example.com",
		"password":  "secret99",
		"role":      "speaker",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created userSummary
	decodeBody(t, resp, &created)
	if created.Verified {
		t.Fatal("self-registered account should start unverified")
	}

	// Same email again conflicts.
	resp = doReq(t, http.MethodPost, app.URL+"/auth/register", "", map[string]interface{}{
		"firstName": "Sam",
		"lastName":  "Speaker",
		"email":     "sam@example.com",
		"password":  "secret99",
		"role":      "speaker",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestInviteFlow(t *testing.T) {
	app, store, cfg := newTestServer(t)
	admin := seedAccount(t, store, model.RoleAdmin, true, "admin@example.com", "adminpw1")
	adminToken := mustToken(t, cfg, admin)

	resp := doReq(t, http.MethodPost, app.URL+"/admin/invites", adminToken, map[string]string{
		"email": "new.speaker@example.com",
		"role":  "speaker",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var first inviteResponse
	decodeBody(t, resp, &first)
	if first.Token == "" {
		t.Fatal("expected an invite token")
	}

	// Re-inviting rotates the token instead of failing.
	resp = doReq(t, http.MethodPost, app.URL+"/admin/invites", adminToken, map[string]string{
		"email": "new.speaker@example.com",
		"role":  "speaker",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var second inviteResponse
	decodeBody(t, resp, &second)
	if second.Token == first.Token {
		t.Fatal("expected re-invite to rotate the token")
	}

	// The stale token no longer redeems.
	resp = doReq(t, http.MethodPost, app.URL+"/auth/register/invite", "", map[string]string{
		"firstName":   "New",
		"lastName":    "Speaker",
		"email":       "new.speaker@example.com",
		"password":    "secret99",
		"inviteToken": first.Token,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for stale token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, app.URL+"/auth/register/invite", "", map[string]string{
		"firstName":   "New",
		"lastName":    "Speaker",
		"email":       "new.speaker@example.com",
		"password":    "secret99",
		"inviteToken": second.Token,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created userSummary
	decodeBody(t, resp, &created)
	if !created.Verified {
		t.Fatal("invited account should be verified on creation")
	}

	// Non-admins cannot mint invites.
	teacher := seedAccount(t, store, model.RoleTeacher, false, "t2@example.com", "hunter22")
	resp = doReq(t, http.MethodPost, app.URL+"/admin/invites", mustToken(t, cfg, teacher), map[string]string{
		"email": "x@example.com",
		"role":  "teacher",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRequestEndpoints(t *testing.T) {
	app, store, cfg := newTestServer(t)
	admin := seedAccount(t, store, model.RoleAdmin, true, "admin@example.com", "adminpw1")
	teacher := seedAccount(t, store, model.RoleTeacher, false, "teach@example.com", "hunter22")
	other := seedAccount(t, store, model.RoleTeacher, false, "other@example.com", "hunter22")
	speaker := seedAccount(t, store, model.RoleSpeaker, false, "speak@example.com", "hunter22")
	profile := model.SpeakerProfile{ID: "sp-1", UserID: speaker.ID, Organization: "Acme", Visible: true}
	store.SpeakerProfiles[profile.ID] = profile

	teacherToken := mustToken(t, cfg, teacher)
	speakerToken := mustToken(t, cfg, speaker)
	adminToken := mustToken(t, cfg, admin)

	resp := doReq(t, http.MethodGet, app.URL+"/requests", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body := map[string]interface{}{
		"speakerId":         profile.ID,
		"estimatedStudents": 30,
		"eventName":         "Career Day",
		"eventPurpose":      "Expose students to industry",
		"eventAt":           time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"timezone":          "America/New_York",
		"inPerson":          true,
		"status":            "Approved",
	}
	resp = doReq(t, http.MethodPost, app.URL+"/requests", teacherToken, body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	delete(body, "status")
	resp = doReq(t, http.MethodPost, app.URL+"/requests", teacherToken, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var createdReq requestPayload
	decodeBody(t, resp, &createdReq)
	if createdReq.Status != model.StatusPendingReview {
		t.Fatalf("expected new request to be %q, got %q", model.StatusPendingReview, createdReq.Status)
	}
	if createdReq.TeacherID != teacher.ID {
		t.Fatalf("expected teacher id from token, got %s", createdReq.TeacherID)
	}

	// The addressed speaker sees it; an unrelated teacher does not.
	resp = doReq(t, http.MethodGet, app.URL+"/requests", speakerToken, nil)
	var speakerList []requestViewPayload
	decodeBody(t, resp, &speakerList)
	if len(speakerList) != 1 {
		t.Fatalf("expected 1 request for speaker, got %d", len(speakerList))
	}
	resp = doReq(t, http.MethodGet, app.URL+"/requests", mustToken(t, cfg, other), nil)
	var otherList []requestViewPayload
	decodeBody(t, resp, &otherList)
	if len(otherList) != 0 {
		t.Fatalf("expected no requests for unrelated teacher, got %d", len(otherList))
	}

	resp = doReq(t, http.MethodGet, app.URL+"/requests/"+createdReq.ID, mustToken(t, cfg, other), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for unrelated teacher, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodPatch, app.URL+"/requests/"+createdReq.ID+"/status", speakerToken, map[string]string{
		"status": model.StatusApproved,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated requestPayload
	decodeBody(t, resp, &updated)
	if updated.Status != model.StatusApproved {
		t.Fatalf("expected %q, got %q", model.StatusApproved, updated.Status)
	}

	// A bogus status is rejected and the stored value stands.
	resp = doReq(t, http.MethodPatch, app.URL+"/requests/"+createdReq.ID+"/status", teacherToken, map[string]string{
		"status": "Done",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if store.Requests[createdReq.ID].Status != model.StatusApproved {
		t.Fatalf("stored status changed to %q", store.Requests[createdReq.ID].Status)
	}

	// Only admins delete requests.
	resp = doReq(t, http.MethodDelete, app.URL+"/requests/"+createdReq.ID, teacherToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doReq(t, http.MethodDelete, app.URL+"/requests/"+createdReq.ID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if _, ok := store.Requests[createdReq.ID]; ok {
		t.Fatal("request should be gone")
	}
}

func TestSpeakerDirectory(t *testing.T) {
	app, store, _ := newTestServer(t)
	visible := seedAccount(t, store, model.RoleSpeaker, false, "vis@example.com", "hunter22")
	hidden := seedAccount(t, store, model.RoleSpeaker, false, "hid@example.com", "hunter22")
	store.SpeakerProfiles["sp-vis"] = model.SpeakerProfile{ID: "sp-vis", UserID: visible.ID, Organization: "Acme", Visible: true}
	store.SpeakerProfiles["sp-hid"] = model.SpeakerProfile{ID: "sp-hid", UserID: hidden.ID, Organization: "Shy Co", Visible: false}

	resp := doReq(t, http.MethodGet, app.URL+"/speakers", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var listed []speakerViewPayload
	decodeBody(t, resp, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected 1 visible speaker, got %d", len(listed))
	}
	if listed[0].Organization != "Acme" {
		t.Fatalf("expected the visible profile, got %q", listed[0].Organization)
	}
}

func TestAdminUserManagement(t *testing.T) {
	app, store, cfg := newTestServer(t)
	admin := seedAccount(t, store, model.RoleAdmin, true, "admin@example.com", "adminpw1")
	speaker := seedAccount(t, store, model.RoleSpeaker, false, "speak@example.com", "hunter22")
	store.SpeakerProfiles["sp-1"] = model.SpeakerProfile{ID: "sp-1", UserID: speaker.ID, Visible: true}
	adminToken := mustToken(t, cfg, admin)

	resp := doReq(t, http.MethodGet, app.URL+"/admin/users", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var users []adminUserPayload
	decodeBody(t, resp, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	resp = doReq(t, http.MethodPost, app.URL+"/admin/speakers", adminToken, map[string]interface{}{
		"email":        "direct@example.com",
		"firstName":    "Dana",
		"lastName":     "Direct",
		"organization": "Direct Org",
		"inPerson":     true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var direct speakerDirectResponse
	decodeBody(t, resp, &direct)
	if !direct.Profile.Visible {
		t.Fatal("directly created speakers should be visible immediately")
	}
	if !direct.User.Verified {
		t.Fatal("directly created speakers should be verified")
	}

	// Admins cannot delete themselves or other admins.
	resp = doReq(t, http.MethodDelete, app.URL+"/admin/users", adminToken, map[string]string{"email": admin.Email})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodDelete, app.URL+"/admin/users", adminToken, map[string]string{"email": speaker.Email})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if _, ok := store.Users[speaker.ID]; ok {
		t.Fatal("speaker should be deleted")
	}
	if _, ok := store.SpeakerProfiles["sp-1"]; ok {
		t.Fatal("speaker profile should be deleted")
	}
}
