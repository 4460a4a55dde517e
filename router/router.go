// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/cliparse"
	"github.com/danielhkuo/shadow-board/handlers"
	"github.com/danielhkuo/shadow-board/invites"
	"github.com/danielhkuo/shadow-board/mailer"
	"github.com/danielhkuo/shadow-board/metrics"
	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/questions"
	"github.com/danielhkuo/shadow-board/rooms"
	"github.com/danielhkuo/shadow-board/store"
	"github.com/danielhkuo/shadow-board/voting"
)

// Services bundles the domain services behind the routes.
type Services struct {
	Rooms     *rooms.Service
	Questions *questions.Service
	Voting    *voting.Service
	Invites   *invites.Service
}

// NewServices wires the domain services over st.
func NewServices(st *store.Store, cfg cliparse.Config, m mailer.Mailer) Services {
	rs := rooms.NewService(st)
	qs := questions.NewService(st, rs)
	return Services{
		Rooms:     rs,
		Questions: qs,
		Voting:    voting.NewService(st, rs, qs),
		Invites:   invites.NewService(st, rs, m, cfg.FrontendURL, cfg.InviteTTL),
	}
}

func NewRouter(st *store.Store, cfg cliparse.Config, m mailer.Mailer) *http.ServeMux {
	return NewRouterWithServices(NewServices(st, cfg, m), cfg)
}

// NewRouterWithServices registers the routes over prebuilt services. Tests use
// it to control the services' clocks.
func NewRouterWithServices(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(svc.Rooms)
	questionHandler := handlers.NewQuestionHandler(svc.Questions)
	votingHandler := handlers.NewVotingHandler(svc.Voting)
	resultsHandler := handlers.NewResultsHandler(svc.Voting)
	inviteHandler := handlers.NewInviteHandler(svc.Invites)

	authed := middleware.Authenticate(auth.NewVerifier(cfg.JWTSecret))
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(authed(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Rooms and membership
	handle("POST /rooms", roomHandler.CreateRoom)
	handle("GET /rooms/user", roomHandler.ListUserRooms)
	handle("GET /rooms/{roomId}", roomHandler.GetRoom)
	handle("POST /rooms/{roomId}/join", roomHandler.JoinRoom)
	handle("POST /rooms/{roomId}/leave", roomHandler.LeaveRoom)
	handle("DELETE /rooms/{roomId}/members/{userId}", roomHandler.KickMember)
	handle("GET /rooms/{roomId}/stats", roomHandler.GetStats)

	// Question lifecycle
	handle("POST /rooms/{roomId}/questions", questionHandler.CreateQuestion)
	handle("GET /rooms/{roomId}/questions", questionHandler.ListQuestions)
	handle("GET /rooms/{roomId}/questions/active", questionHandler.GetActiveQuestion)
	handle("PATCH /questions/{questionId}/start", questionHandler.StartQuestion)
	handle("PATCH /questions/{questionId}/end", questionHandler.EndQuestion)

	// Voting and results
	handle("POST /questions/{questionId}/vote", votingHandler.SubmitVote)
	handle("GET /questions/{questionId}/my-vote", votingHandler.GetMyVote)
	handle("GET /questions/{questionId}/results", resultsHandler.GetResults)
	handle("POST /questions/{questionId}/recount", resultsHandler.Recount)

	// Invitations
	handle("POST /rooms/{roomId}/invite", inviteHandler.SendInvite)
	handle("GET /rooms/{roomId}/invites", inviteHandler.ListInvites)
	handle("POST /invites/join", inviteHandler.JoinByInvite)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("shadow-board API v1"))
	})

	return mux
}
