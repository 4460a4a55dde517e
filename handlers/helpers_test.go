// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/invites"
	"github.com/danielhkuo/shadow-board/mailer"
	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/questions"
	"github.com/danielhkuo/shadow-board/rooms"
	"github.com/danielhkuo/shadow-board/store"
	"github.com/danielhkuo/shadow-board/testutil"
	"github.com/danielhkuo/shadow-board/voting"
)

// outbox records invitations instead of sending them
type outbox struct {
	mu   sync.Mutex
	sent []mailer.Invitation
	fail error
}

func (o *outbox) SendInvitation(ctx context.Context, inv mailer.Invitation) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.sent = append(o.sent, inv)
	return nil
}

// testEnv holds every handler over one fresh database
type testEnv struct {
	db *sqlx.DB

	rooms     *RoomHandler
	questions *QuestionHandler
	voting    *VotingHandler
	results   *ResultsHandler
	invites   *InviteHandler

	outbox *outbox
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	st := store.New(conn)
	box := &outbox{}

	rs := rooms.NewService(st)
	qs := questions.NewService(st, rs)
	vs := voting.NewService(st, rs, qs)
	is := invites.NewService(st, rs, box, cfg.FrontendURL, cfg.InviteTTL)

	return &testEnv{
		db:        conn,
		rooms:     NewRoomHandler(rs),
		questions: NewQuestionHandler(qs),
		voting:    NewVotingHandler(vs),
		results:   NewResultsHandler(vs),
		invites:   NewInviteHandler(is),
		outbox:    box,
	}
}

// call invokes h as caller with the given path values
func call(h http.HandlerFunc, caller auth.Identity, method, path string, pathValues map[string]string, body any) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// decodeData unwraps the success envelope into v
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) string {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v. Body: %s", err, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("Expected success, body: %s", w.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("Failed to decode data: %v. Body: %s", err, w.Body.String())
		}
	}
	return env.Message
}

func (e *testEnv) createRoom(t *testing.T, host auth.Identity, req models.CreateRoomRequest) models.Room {
	t.Helper()
	w := call(e.rooms.CreateRoom, host, "POST", "/rooms", nil, req)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var room models.Room
	decodeData(t, w, &room)
	return room
}

func (e *testEnv) join(t *testing.T, roomID string, user auth.Identity) {
	t.Helper()
	w := call(e.rooms.JoinRoom, user, "POST", "/rooms/"+roomID+"/join", map[string]string{"roomId": roomID}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func (e *testEnv) createQuestion(t *testing.T, roomID string, host auth.Identity, req models.CreateQuestionRequest) models.Question {
	t.Helper()
	w := call(e.questions.CreateQuestion, host, "POST", "/rooms/"+roomID+"/questions", map[string]string{"roomId": roomID}, req)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var q models.Question
	decodeData(t, w, &q)
	return q
}

func (e *testEnv) start(t *testing.T, questionID string, host auth.Identity) {
	t.Helper()
	w := call(e.questions.StartQuestion, host, "PATCH", "/questions/"+questionID+"/start", map[string]string{"questionId": questionID}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func (e *testEnv) vote(caller auth.Identity, questionID string, req models.SubmitVoteRequest) *httptest.ResponseRecorder {
	return call(e.voting.SubmitVote, caller, "POST", "/questions/"+questionID+"/vote", map[string]string{"questionId": questionID}, req)
}

func pizzaSushi() models.CreateQuestionRequest {
	return models.CreateQuestionRequest{
		QuestionText:  "Lunch?",
		QuestionType:  models.TypeCustomOptions,
		CustomOptions: []models.OptionInput{{OptionText: "Pizza"}, {OptionText: "Sushi"}},
	}
}

func optionID(t *testing.T, q models.Question, text string) string {
	t.Helper()
	for _, opt := range q.CustomOptions {
		if opt.OptionText == text {
			return opt.OptionID
		}
	}
	t.Fatalf("Option %q not found in %+v", text, q.CustomOptions)
	return ""
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
