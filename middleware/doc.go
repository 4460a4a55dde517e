// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms) under a request_id taken from X-Request-ID or generated.

# Authentication

Authenticate verifies the bearer token and stores the caller on the
request context:

	authed := middleware.Authenticate(auth.NewVerifier(cfg.JWTSecret))
	mux.HandleFunc("POST /rooms", middleware.WithLogging(authed(h.CreateRoom)))

	id, _ := middleware.IdentityFrom(r.Context())

Missing or invalid tokens answer 401 unauthorized, expired ones 401
token_expired.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Reflects the request origin, allows Content-Type, Authorization and
X-Request-ID, and answers preflight requests with 204.

# JSON Helpers

Write responses in the standard envelope:

	middleware.Success(w, http.StatusCreated, "Room created successfully", room)
	middleware.WriteError(w, r, err)

WriteError maps apperr errors to their status and code. Other errors are
logged and answered with a generic 500.

Parse and validate JSON request bodies:

	var req models.CreateRoomRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
