// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/testutil"
)

func TestCreateQuestion(t *testing.T) {
	env := setupEnv(t)
	host := testutil.User("user-host", "Hana")
	mina := testutil.User("user-mina", "Mina")

	room := env.createRoom(t, host, models.CreateRoomRequest{
		Name:     "Questions",
		Settings: &models.RoomSettingsInput{IsAnonymousVoting: boolPtr(true)},
	})
	env.join(t, room.RoomID, mina)
	path := map[string]string{"roomId": room.RoomID}

	testCases := []struct {
		name         string
		caller       string
		body         models.CreateQuestionRequest
		expectedCode int
		errorCode    string
	}{
		{
			name:         "member voting defaults",
			caller:       "host",
			body:         models.CreateQuestionRequest{QuestionText: "Who plans the next trip?"},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "custom options",
			caller:       "host",
			body:         pizzaSushi(),
			expectedCode: http.StatusCreated,
		},
		{
			name:         "non-host",
			caller:       "mina",
			body:         models.CreateQuestionRequest{QuestionText: "Sneaky?"},
			expectedCode: http.StatusForbidden,
			errorCode:    "not_host",
		},
		{
			name:         "missing text",
			caller:       "host",
			body:         models.CreateQuestionRequest{},
			expectedCode: http.StatusBadRequest,
			errorCode:    "validation_error",
		},
		{
			name:         "text too long",
			caller:       "host",
			body:         models.CreateQuestionRequest{QuestionText: strings.Repeat("q", 501)},
			expectedCode: http.StatusBadRequest,
			errorCode:    "validation_error",
		},
		{
			name:         "unknown type",
			caller:       "host",
			body:         models.CreateQuestionRequest{QuestionText: "Huh?", QuestionType: "ranked"},
			expectedCode: http.StatusBadRequest,
			errorCode:    "validation_error",
		},
		{
			name:   "one custom option",
			caller: "host",
			body: models.CreateQuestionRequest{
				QuestionText:  "Only one?",
				QuestionType:  models.TypeCustomOptions,
				CustomOptions: []models.OptionInput{{OptionText: "Pizza"}},
			},
			expectedCode: http.StatusBadRequest,
			errorCode:    "validation_error",
		},
		{
			name:   "blank custom option",
			caller: "host",
			body: models.CreateQuestionRequest{
				QuestionText:  "Blank?",
				QuestionType:  models.TypeCustomOptions,
				CustomOptions: []models.OptionInput{{OptionText: "Pizza"}, {OptionText: "  "}},
			},
			expectedCode: http.StatusBadRequest,
			errorCode:    "validation_error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caller := host
			if tc.caller == "mina" {
				caller = mina
			}

			w := call(env.questions.CreateQuestion, caller, "POST", "/rooms/"+room.RoomID+"/questions", path, tc.body)

			testutil.AssertStatus(t, w, tc.expectedCode)
			if tc.errorCode != "" {
				testutil.AssertErrorCode(t, w, tc.errorCode)
				return
			}

			var q models.Question
			decodeData(t, w, &q)
			if q.Status != models.QuestionDraft {
				t.Errorf("Expected draft, got %s", q.Status)
			}
			if q.TotalVotes != 0 {
				t.Errorf("Expected 0 votes, got %d", q.TotalVotes)
			}
			// Settings inherit from the room
			if !q.IsAnonymous {
				t.Error("Expected is_anonymous inherited from room")
			}
			if q.QuestionType == models.TypeCustomOptions && len(q.CustomOptions) != 2 {
				t.Errorf("Expected 2 options, got %d", len(q.CustomOptions))
			}
			if q.QuestionType == "" {
				t.Error("Expected question_type to be set")
			}
		})
	}
}

func TestStartAndEndQuestion(t *testing.T) {
	env := setupEnv(t)
	host := testutil.User("user-host", "Hana")
	mina := testutil.User("user-mina", "Mina")

	room := env.createRoom(t, host, models.CreateRoomRequest{Name: "Lifecycle"})
	env.join(t, room.RoomID, mina)

	a := env.createQuestion(t, room.RoomID, host, pizzaSushi())
	b := env.createQuestion(t, room.RoomID, host, models.CreateQuestionRequest{QuestionText: "Best teammate?"})

	// Members cannot start
	w := call(env.questions.StartQuestion, mina, "PATCH", "/questions/"+a.ID+"/start", map[string]string{"questionId": a.ID}, nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	testutil.AssertErrorCode(t, w, "not_host")

	// Start A
	env.start(t, a.ID, host)
	assertQuestionStatus(t, env, a.ID, models.QuestionActive)
	assertRoomStatus(t, env, room.RoomID, models.RoomActive)

	// Start B completes A
	env.start(t, b.ID, host)
	assertQuestionStatus(t, env, a.ID, models.QuestionCompleted)
	assertQuestionStatus(t, env, b.ID, models.QuestionActive)

	var active int
	if err := env.db.Get(&active, "SELECT COUNT(*) FROM question WHERE room_id = ? AND status = 'active'", room.RoomID); err != nil {
		t.Fatalf("Failed to count active questions: %v", err)
	}
	if active != 1 {
		t.Errorf("Expected exactly 1 active question, got %d", active)
	}

	// A cannot be restarted
	w = call(env.questions.StartQuestion, host, "PATCH", "/questions/"+a.ID+"/start", map[string]string{"questionId": a.ID}, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertErrorCode(t, w, "invalid_state")

	// End B
	w = call(env.questions.EndQuestion, host, "PATCH", "/questions/"+b.ID+"/end", map[string]string{"questionId": b.ID}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var ended models.Question
	decodeData(t, w, &ended)
	if ended.Status != models.QuestionCompleted || ended.EndTime == nil {
		t.Errorf("Expected completed question with end_time, got %+v", ended)
	}

	// Ending twice fails
	w = call(env.questions.EndQuestion, host, "PATCH", "/questions/"+b.ID+"/end", map[string]string{"questionId": b.ID}, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertErrorCode(t, w, "invalid_state")

	// Unknown question
	w = call(env.questions.EndQuestion, host, "PATCH", "/questions/missing/end", map[string]string{"questionId": "missing"}, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	testutil.AssertErrorCode(t, w, "question_not_found")
}

func TestListQuestions(t *testing.T) {
	env := setupEnv(t)
	host := testutil.User("user-host", "Hana")
	room := env.createRoom(t, host, models.CreateRoomRequest{Name: "Listing"})

	first := env.createQuestion(t, room.RoomID, host, models.CreateQuestionRequest{QuestionText: "First"})
	second := env.createQuestion(t, room.RoomID, host, models.CreateQuestionRequest{QuestionText: "Second"})
	env.createQuestion(t, room.RoomID, host, models.CreateQuestionRequest{QuestionText: "Third"})
	env.start(t, first.ID, host)
	env.start(t, second.ID, host) // completes first

	testCases := []struct {
		name     string
		query    string
		expected int
	}{
		{"all", "", 3},
		{"active only", "?status=active", 1},
		{"completed only", "?status=completed", 1},
		{"drafts only", "?status=draft", 1},
		{"hide completed", "?includeCompleted=false", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(env.questions.ListQuestions, host, "GET", "/rooms/"+room.RoomID+"/questions"+tc.query, map[string]string{"roomId": room.RoomID}, nil)
			testutil.AssertStatus(t, w, http.StatusOK)

			var list []models.Question
			decodeData(t, w, &list)
			if len(list) != tc.expected {
				t.Errorf("Expected %d questions, got %d", tc.expected, len(list))
			}
		})
	}

	w := call(env.questions.ListQuestions, host, "GET", "/rooms/"+room.RoomID+"/questions?status=bogus", map[string]string{"roomId": room.RoomID}, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetActiveQuestion(t *testing.T) {
	env := setupEnv(t)
	host := testutil.User("user-host", "Hana")
	mina := testutil.User("user-mina", "Mina")
	omar := testutil.User("user-omar", "Omar")

	room := env.createRoom(t, host, models.CreateRoomRequest{Name: "Active"})
	env.join(t, room.RoomID, mina)
	env.join(t, room.RoomID, omar)
	path := map[string]string{"roomId": room.RoomID}

	// Nothing started yet
	w := call(env.questions.GetActiveQuestion, mina, "GET", "/rooms/"+room.RoomID+"/questions/active", path, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	testutil.AssertErrorCode(t, w, "no_active_question")

	q := env.createQuestion(t, room.RoomID, host, models.CreateQuestionRequest{
		QuestionText: "Who brings snacks?",
		Settings:     models.QuestionSettingsInput{TimeLimitMinutes: intPtr(10)},
	})
	env.start(t, q.ID, host)

	w = call(env.questions.GetActiveQuestion, mina, "GET", "/rooms/"+room.RoomID+"/questions/active", path, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var active models.ActiveQuestion
	decodeData(t, w, &active)
	if active.Question.ID != q.ID {
		t.Errorf("Expected question %s, got %s", q.ID, active.Question.ID)
	}
	// Self-voting is off, so Mina sees the other two members
	if len(active.AvailableTargets) != 2 {
		t.Errorf("Expected 2 targets, got %+v", active.AvailableTargets)
	}
	for _, target := range active.AvailableTargets {
		if target.UserID == mina.UserID {
			t.Error("Caller should not be a target when self-voting is off")
		}
	}
	if active.HasVoted {
		t.Error("Expected has_voted false")
	}
	if !strings.HasSuffix(active.EndsIn, "from now") {
		t.Errorf("Expected ends_in relative to now, got %q", active.EndsIn)
	}

	testutil.AssertStatus(t, env.vote(mina, q.ID, models.SubmitVoteRequest{VotedForUser: omar.UserID}), http.StatusCreated)

	w = call(env.questions.GetActiveQuestion, mina, "GET", "/rooms/"+room.RoomID+"/questions/active", path, nil)
	decodeData(t, w, &active)
	if !active.HasVoted {
		t.Error("Expected has_voted true after voting")
	}
}

func assertQuestionStatus(t *testing.T, env *testEnv, questionID, expected string) {
	t.Helper()
	var status string
	if err := env.db.Get(&status, "SELECT status FROM question WHERE id = ?", questionID); err != nil {
		t.Fatalf("Failed to read question status: %v", err)
	}
	if status != expected {
		t.Errorf("Expected question %s to be %s, got %s", questionID, expected, status)
	}
}

func assertRoomStatus(t *testing.T, env *testEnv, roomID, expected string) {
	t.Helper()
	var status string
	if err := env.db.Get(&status, "SELECT status FROM room WHERE room_id = ?", roomID); err != nil {
		t.Fatalf("Failed to read room status: %v", err)
	}
	if status != expected {
		t.Errorf("Expected room %s to be %s, got %s", roomID, expected, status)
	}
}
