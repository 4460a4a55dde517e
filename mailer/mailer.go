// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mailer is the boundary to the email delivery service.
package mailer

import (
	"context"
	"log/slog"
	"time"
)

// Invitation is the content of a room invitation email.
type Invitation struct {
	To        string
	RoomName  string
	HostName  string
	Link      string
	ExpiresAt time.Time
}

// Mailer delivers invitation emails.
type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// LogMailer logs invitations instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendInvitation(ctx context.Context, inv Invitation) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "invitation email",
		"to", inv.To,
		"room", inv.RoomName,
		"host", inv.HostName,
		"link", inv.Link,
		"expires_at", inv.ExpiresAt,
	)
	return nil
}

// Func adapts a function to Mailer.
type Func func(ctx context.Context, inv Invitation) error

func (f Func) SendInvitation(ctx context.Context, inv Invitation) error { return f(ctx, inv) }
