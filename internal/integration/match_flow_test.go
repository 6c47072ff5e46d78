package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"field-match/internal/delivery/http/middleware"
	"field-match/internal/delivery/http/routes"
	"field-match/internal/engine"
	"field-match/internal/store"
	"field-match/internal/views"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userData struct {
	UserID uuid.UUID `json:"user_id"`
}

type matchData struct {
	MatchID     uuid.UUID  `json:"match_id"`
	State       string     `json:"state"`
	RespondedAt *time.Time `json:"responded_at"`
}

type jobMatchesData struct {
	Matches []struct {
		MatchID    uuid.UUID `json:"match_id"`
		MatchScore int       `json:"match_score"`
	} `json:"matches"`
}

type notificationListData struct {
	Notifications []struct {
		NotificationID uuid.UUID `json:"notification_id"`
		Type           string    `json:"type"`
		IsRead         bool      `json:"is_read"`
	} `json:"notifications"`
}

type unreadCountData struct {
	UnreadCount int `json:"unread_count"`
}

type ratingData struct {
	RatingID   uuid.UUID  `json:"rating_id"`
	FromUserID *uuid.UUID `json:"from_user_id"`
}

type ratingStatsData struct {
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
	Histogram [5]int  `json:"histogram"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	st := store.New(4)
	v := views.New(st, nil, logger)
	eng := engine.New(st, nil, v, nil, logger)

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
	routes.NewRegistry(eng, v, nil).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) envelope {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	if env.Status != resp.StatusCode {
		t.Fatalf("%s %s: envelope status %d != http status %d", method, path, env.Status, resp.StatusCode)
	}
	return env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func registerUser(t *testing.T, app *fiber.App, role string) uuid.UUID {
	t.Helper()
	env := doJSON(t, app, "POST", "/api/v1/users/", map[string]string{
		"role":         role,
		"display_name": "Test " + role,
	})
	if env.Status != fiber.StatusCreated {
		t.Fatalf("register %s: status %d message %q", role, env.Status, env.Message)
	}
	var u userData
	decodeData(t, env, &u)
	return u.UserID
}

func TestHTTP_MatchLifecycleFlow(t *testing.T) {
	app := newTestApp(t)

	engineerID := registerUser(t, app, "engineer")
	clientID := registerUser(t, app, "client")
	jobID := uuid.New()

	env := doJSON(t, app, "POST", "/api/v1/matches/", map[string]any{
		"job_id":          jobID,
		"engineer_id":     engineerID,
		"client_id":       clientID,
		"match_score":     88,
		"estimated_price": 250000,
		"expires_at":      time.Now().UTC().Add(time.Hour),
	})
	if env.Status != fiber.StatusCreated {
		t.Fatalf("create match: status %d message %q", env.Status, env.Message)
	}
	var m matchData
	decodeData(t, env, &m)
	if m.State != "viewing" {
		t.Fatalf("new match state = %q", m.State)
	}

	// Engineer signals interest.
	env = doJSON(t, app, "POST", "/api/v1/matches/"+m.MatchID.String()+"/interest", map[string]string{
		"message": "Available next week",
	})
	if env.Status != fiber.StatusOK {
		t.Fatalf("interest: status %d", env.Status)
	}
	var interested matchData
	decodeData(t, env, &interested)
	if interested.State != "interested" {
		t.Fatalf("state after interest = %q", interested.State)
	}

	// Interest notifies the client.
	var count unreadCountData
	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/unread-count?recipient_id="+clientID.String(), nil), &count)
	if count.UnreadCount != 1 {
		t.Fatalf("client unread = %d, want 1", count.UnreadCount)
	}

	// Client accepts; repeating the accept is a no-op, not a conflict.
	env = doJSON(t, app, "POST", "/api/v1/matches/"+m.MatchID.String()+"/respond", map[string]string{"action": "accept"})
	if env.Status != fiber.StatusOK {
		t.Fatalf("accept: status %d", env.Status)
	}
	env = doJSON(t, app, "POST", "/api/v1/matches/"+m.MatchID.String()+"/respond", map[string]string{"action": "accept"})
	if env.Status != fiber.StatusOK {
		t.Fatalf("repeat accept: status %d message %q", env.Status, env.Message)
	}
	var accepted matchData
	decodeData(t, env, &accepted)
	if accepted.State != "accepted" {
		t.Fatalf("state after accept = %q", accepted.State)
	}

	// Acceptance notified the engineer exactly once.
	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/unread-count?recipient_id="+engineerID.String(), nil), &count)
	if count.UnreadCount != 1 {
		t.Fatalf("engineer unread = %d, want 1", count.UnreadCount)
	}

	// Declining an accepted match is a conflict.
	env = doJSON(t, app, "POST", "/api/v1/matches/"+m.MatchID.String()+"/respond", map[string]string{"action": "decline"})
	if env.Status != fiber.StatusConflict {
		t.Fatalf("decline after accept: status %d, want 409", env.Status)
	}

	// The job ranking lists the accepted match.
	var ranking jobMatchesData
	decodeData(t, doJSON(t, app, "GET", "/api/v1/jobs/"+jobID.String()+"/matches", nil), &ranking)
	if len(ranking.Matches) != 1 || ranking.Matches[0].MatchID != m.MatchID {
		t.Fatalf("job ranking wrong: %+v", ranking.Matches)
	}

	// Mark-all clears the engineer's inbox.
	env = doJSON(t, app, "POST", "/api/v1/notifications/read-all", map[string]any{"recipient_id": engineerID})
	if env.Status != fiber.StatusOK {
		t.Fatalf("read-all: status %d", env.Status)
	}
	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/unread-count?recipient_id="+engineerID.String(), nil), &count)
	if count.UnreadCount != 0 {
		t.Fatalf("engineer unread after read-all = %d", count.UnreadCount)
	}
}

func TestHTTP_MatchValidationErrors(t *testing.T) {
	app := newTestApp(t)
	engineerID := registerUser(t, app, "engineer")
	clientID := registerUser(t, app, "client")

	// Score out of range.
	env := doJSON(t, app, "POST", "/api/v1/matches/", map[string]any{
		"job_id":      uuid.New(),
		"engineer_id": engineerID,
		"client_id":   clientID,
		"match_score": 150,
		"expires_at":  time.Now().UTC().Add(time.Hour),
	})
	if env.Status != fiber.StatusBadRequest {
		t.Fatalf("bad score: status %d, want 400", env.Status)
	}

	// Unknown engineer.
	env = doJSON(t, app, "POST", "/api/v1/matches/", map[string]any{
		"job_id":      uuid.New(),
		"engineer_id": uuid.New(),
		"client_id":   clientID,
		"match_score": 50,
		"expires_at":  time.Now().UTC().Add(time.Hour),
	})
	if env.Status != fiber.StatusNotFound {
		t.Fatalf("unknown engineer: status %d, want 404", env.Status)
	}

	// Missing match.
	env = doJSON(t, app, "GET", "/api/v1/matches/"+uuid.NewString(), nil)
	if env.Status != fiber.StatusNotFound {
		t.Fatalf("missing match: status %d, want 404", env.Status)
	}

	// Malformed id.
	env = doJSON(t, app, "GET", "/api/v1/matches/not-a-uuid", nil)
	if env.Status != fiber.StatusBadRequest {
		t.Fatalf("malformed id: status %d, want 400", env.Status)
	}
}

func TestHTTP_NotificationFlow(t *testing.T) {
	app := newTestApp(t)
	recipientID := registerUser(t, app, "engineer")

	// Direct creation for an unknown recipient is unprocessable.
	env := doJSON(t, app, "POST", "/api/v1/notifications/", map[string]any{
		"recipient_id": uuid.New(),
		"type":         "system",
		"title":        "hello",
	})
	if env.Status != fiber.StatusUnprocessableEntity {
		t.Fatalf("unknown recipient: status %d, want 422", env.Status)
	}

	for _, typ := range []string{"system", "payment", "system"} {
		env = doJSON(t, app, "POST", "/api/v1/notifications/", map[string]any{
			"recipient_id": recipientID,
			"type":         typ,
			"title":        "t",
		})
		if env.Status != fiber.StatusCreated {
			t.Fatalf("create %s: status %d", typ, env.Status)
		}
	}

	var list notificationListData
	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/?recipient_id="+recipientID.String(), nil), &list)
	if len(list.Notifications) != 3 {
		t.Fatalf("listed %d notifications, want 3", len(list.Notifications))
	}

	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/?recipient_id="+recipientID.String()+"&filter=payment", nil), &list)
	if len(list.Notifications) != 1 || list.Notifications[0].Type != "payment" {
		t.Fatalf("type filter wrong: %+v", list.Notifications)
	}

	// Read one, list unread, then delete it.
	target := list.Notifications[0].NotificationID
	env = doJSON(t, app, "PATCH", "/api/v1/notifications/"+target.String()+"/read", nil)
	if env.Status != fiber.StatusOK {
		t.Fatalf("mark read: status %d", env.Status)
	}
	decodeData(t, doJSON(t, app, "GET", "/api/v1/notifications/?recipient_id="+recipientID.String()+"&filter=unread", nil), &list)
	if len(list.Notifications) != 2 {
		t.Fatalf("unread filter returned %d, want 2", len(list.Notifications))
	}

	env = doJSON(t, app, "DELETE", "/api/v1/notifications/"+target.String(), nil)
	if env.Status != fiber.StatusOK {
		t.Fatalf("delete: status %d", env.Status)
	}
	env = doJSON(t, app, "DELETE", "/api/v1/notifications/"+target.String(), nil)
	if env.Status != fiber.StatusNotFound {
		t.Fatalf("repeat delete: status %d, want 404", env.Status)
	}
}

func TestHTTP_RatingFlowAndStats(t *testing.T) {
	app := newTestApp(t)
	clientID := registerUser(t, app, "client")
	engineerID := registerUser(t, app, "engineer")
	jobID := uuid.New()

	categories := map[string]int{
		"quality":         5,
		"communication":   4,
		"timeliness":      5,
		"professionalism": 5,
	}

	env := doJSON(t, app, "POST", "/api/v1/ratings/", map[string]any{
		"job_id":           jobID,
		"from_user_id":     clientID,
		"to_user_id":       engineerID,
		"overall_rating":   5,
		"category_ratings": categories,
		"is_anonymous":     true,
	})
	if env.Status != fiber.StatusCreated {
		t.Fatalf("create rating: status %d message %q", env.Status, env.Message)
	}
	var r ratingData
	decodeData(t, env, &r)
	if r.FromUserID != nil {
		t.Fatalf("anonymous rating exposed its author")
	}

	// Duplicate triple conflicts.
	env = doJSON(t, app, "POST", "/api/v1/ratings/", map[string]any{
		"job_id":           jobID,
		"from_user_id":     clientID,
		"to_user_id":       engineerID,
		"overall_rating":   1,
		"category_ratings": categories,
	})
	if env.Status != fiber.StatusConflict {
		t.Fatalf("duplicate rating: status %d, want 409", env.Status)
	}

	// Helpful vote, then the rated party responds.
	env = doJSON(t, app, "POST", "/api/v1/ratings/"+r.RatingID.String()+"/helpful", nil)
	if env.Status != fiber.StatusOK {
		t.Fatalf("helpful: status %d", env.Status)
	}
	env = doJSON(t, app, "POST", "/api/v1/ratings/"+r.RatingID.String()+"/response", map[string]any{
		"author_id": engineerID,
		"body":      "Appreciate the feedback.",
	})
	if env.Status != fiber.StatusOK {
		t.Fatalf("response: status %d", env.Status)
	}
	env = doJSON(t, app, "POST", "/api/v1/ratings/"+r.RatingID.String()+"/response", map[string]any{
		"author_id": engineerID,
		"body":      "again",
	})
	if env.Status != fiber.StatusConflict {
		t.Fatalf("second response: status %d, want 409", env.Status)
	}

	var stats ratingStatsData
	decodeData(t, doJSON(t, app, "GET", "/api/v1/users/"+engineerID.String()+"/rating-stats", nil), &stats)
	if stats.Count != 1 || stats.Average != 5 || stats.Histogram[4] != 1 {
		t.Fatalf("stats wrong: %+v", stats)
	}
}

func TestHTTP_CloseJob(t *testing.T) {
	app := newTestApp(t)
	engineerID := registerUser(t, app, "engineer")
	clientID := registerUser(t, app, "client")
	jobID := uuid.New()

	env := doJSON(t, app, "POST", "/api/v1/matches/", map[string]any{
		"job_id":      jobID,
		"engineer_id": engineerID,
		"client_id":   clientID,
		"match_score": 77,
		"expires_at":  time.Now().UTC().Add(time.Hour),
	})
	if env.Status != fiber.StatusCreated {
		t.Fatalf("create match: status %d", env.Status)
	}

	var closed struct {
		Archived int `json:"archived"`
	}
	decodeData(t, doJSON(t, app, "POST", "/api/v1/jobs/"+jobID.String()+"/close", nil), &closed)
	if closed.Archived != 1 {
		t.Fatalf("archived = %d, want 1", closed.Archived)
	}

	var ranking jobMatchesData
	decodeData(t, doJSON(t, app, "GET", "/api/v1/jobs/"+jobID.String()+"/matches", nil), &ranking)
	if len(ranking.Matches) != 0 {
		t.Fatalf("closed job still lists %d matches", len(ranking.Matches))
	}
}
