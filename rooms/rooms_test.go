// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rooms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/store"
	"github.com/danielhkuo/shadow-board/testutil"
)

var (
	alice = testutil.User("u-alice", "Alice")
	bob   = testutil.User("u-bob", "Bob")
	carol = testutil.User("u-carol", "Carol")
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.New(testutil.SetupTestDB(t)))
}

func intPtr(n int) *int { return &n }

func TestCreateRoom(t *testing.T) {
	tests := []struct {
		name     string
		req      models.CreateRoomRequest
		wantErr  bool
		wantMax  int
		wantSelf bool
	}{
		{name: "defaults", req: models.CreateRoomRequest{Name: "Team"}, wantMax: models.DefaultMaxMembers},
		{name: "name trimmed", req: models.CreateRoomRequest{Name: "  Team  "}, wantMax: models.DefaultMaxMembers},
		{
			name: "custom settings",
			req: models.CreateRoomRequest{Name: "Team", Settings: &models.RoomSettingsInput{
				MaxMembers:      intPtr(5),
				AllowSelfVoting: func() *bool { b := true; return &b }(),
			}},
			wantMax:  5,
			wantSelf: true,
		},
		{name: "blank name", req: models.CreateRoomRequest{Name: "   "}, wantErr: true},
		{name: "long name", req: models.CreateRoomRequest{Name: strings.Repeat("x", 101)}, wantErr: true},
		{name: "max members too low", req: models.CreateRoomRequest{Name: "T", Settings: &models.RoomSettingsInput{MaxMembers: intPtr(1)}}, wantErr: true},
		{name: "max members too high", req: models.CreateRoomRequest{Name: "T", Settings: &models.RoomSettingsInput{MaxMembers: intPtr(101)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t)
			room, err := s.Create(context.Background(), alice, tt.req)
			if tt.wantErr {
				if apperr.KindOf(err) != apperr.Validation {
					t.Errorf("Create() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			if len(room.RoomID) != roomCodeLength {
				t.Errorf("room code %q has length %d, want %d", room.RoomID, len(room.RoomID), roomCodeLength)
			}
			if room.Name != "Team" {
				t.Errorf("name = %q, want Team", room.Name)
			}
			if room.Status != models.RoomWaiting || room.MemberCount != 1 {
				t.Errorf("status = %s, member_count = %d; want waiting, 1", room.Status, room.MemberCount)
			}
			if room.MaxMembers != tt.wantMax || room.AllowSelfVoting != tt.wantSelf {
				t.Errorf("settings = %+v", room.RoomSettings)
			}
			if !room.HostCanParticipate {
				t.Error("host_can_participate should default to true")
			}

			m, err := s.CheckAccess(context.Background(), room.RoomID, alice.UserID, models.RoleHost)
			if err != nil {
				t.Fatalf("creator is not host: %v", err)
			}
			if m.DisplayName != "Alice" {
				t.Errorf("host display name = %q, want Alice", m.DisplayName)
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	room, err := s.Create(ctx, alice, models.CreateRoomRequest{
		Name:     "Small",
		Settings: &models.RoomSettingsInput{MaxMembers: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := s.AddMember(ctx, room.RoomID, bob, ""); err != nil {
		t.Fatalf("AddMember(bob) error = %v", err)
	}
	if _, err := s.AddMember(ctx, room.RoomID, bob, models.RoleMember); !errors.Is(err, apperr.ErrAlreadyMember) {
		t.Errorf("AddMember(bob) again error = %v, want ErrAlreadyMember", err)
	}
	if _, err := s.AddMember(ctx, room.RoomID, carol, ""); !errors.Is(err, apperr.ErrCapacityExceeded) {
		t.Errorf("AddMember(carol) error = %v, want ErrCapacityExceeded", err)
	}
	if _, err := s.AddMember(ctx, room.RoomID, carol, models.RoleHost); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("AddMember(host role) error = %v, want validation error", err)
	}
	if _, err := s.AddMember(ctx, "ZZZZZZ", carol, ""); !errors.Is(err, apperr.ErrRoomNotFound) {
		t.Errorf("AddMember(unknown room) error = %v, want ErrRoomNotFound", err)
	}

	// Leaving frees the seat.
	if _, err := s.RemoveMember(ctx, room.RoomID, bob.UserID); err != nil {
		t.Fatalf("RemoveMember(bob) error = %v", err)
	}
	if _, err := s.AddMember(ctx, room.RoomID, carol, ""); err != nil {
		t.Errorf("AddMember(carol) after leave error = %v", err)
	}
}

func TestHostLeavingClosesRoom(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	room, _ := s.Create(ctx, alice, models.CreateRoomRequest{Name: "Team"})
	if _, err := s.AddMember(ctx, room.RoomID, bob, ""); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	closed, err := s.RemoveMember(ctx, room.RoomID, bob.UserID)
	if err != nil || closed {
		t.Fatalf("RemoveMember(bob) = %v, %v; want false, nil", closed, err)
	}
	if _, err := s.RemoveMember(ctx, room.RoomID, bob.UserID); !errors.Is(err, apperr.ErrNotMember) {
		t.Errorf("second RemoveMember(bob) error = %v, want ErrNotMember", err)
	}

	closed, err = s.RemoveMember(ctx, room.RoomID, alice.UserID)
	if err != nil || !closed {
		t.Fatalf("RemoveMember(host) = %v, %v; want true, nil", closed, err)
	}

	details, err := s.store.GetRoom(ctx, room.RoomID)
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if details.Status != models.RoomClosed {
		t.Errorf("room status = %s, want closed", details.Status)
	}
	if _, err := s.AddMember(ctx, room.RoomID, carol, ""); !errors.Is(err, apperr.ErrRoomNotAccepting) {
		t.Errorf("AddMember() on closed room error = %v, want ErrRoomNotAccepting", err)
	}
}

func TestKick(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	room, _ := s.Create(ctx, alice, models.CreateRoomRequest{Name: "Team"})
	s.AddMember(ctx, room.RoomID, bob, "")
	s.AddMember(ctx, room.RoomID, carol, "")

	tests := []struct {
		name   string
		by     string
		target string
		want   error
	}{
		{"member cannot kick", bob.UserID, carol.UserID, apperr.ErrNotHost},
		{"host cannot kick self", alice.UserID, alice.UserID, apperr.ErrCannotKickHost},
		{"unknown target", alice.UserID, "u-nobody", apperr.ErrMemberNotFound},
		{"host kicks member", alice.UserID, bob.UserID, nil},
		{"already kicked", alice.UserID, bob.UserID, apperr.ErrMemberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Kick(ctx, room.RoomID, tt.by, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Kick() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Kick() error = %v, want %v", err, tt.want)
			}
		})
	}

	details, err := s.Details(ctx, room.RoomID, alice.UserID)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if len(details.Members) != 2 || details.Room.MemberCount != 2 {
		t.Errorf("members = %d, member_count = %d; want 2, 2", len(details.Members), details.Room.MemberCount)
	}
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	room, _ := s.Create(ctx, alice, models.CreateRoomRequest{Name: "Team"})
	s.AddMember(ctx, room.RoomID, bob, "")

	tests := []struct {
		name   string
		userID string
		role   string
		want   error
	}{
		{"host as host", alice.UserID, models.RoleHost, nil},
		{"host as member", alice.UserID, "", nil},
		{"member as member", bob.UserID, "", nil},
		{"member as host", bob.UserID, models.RoleHost, apperr.ErrNotHost},
		{"outsider as member", carol.UserID, "", apperr.ErrNotMember},
		{"outsider as host", carol.UserID, models.RoleHost, apperr.ErrNotHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CheckAccess(ctx, room.RoomID, tt.userID, tt.role)
			if tt.want == nil && err != nil {
				t.Errorf("CheckAccess() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("CheckAccess() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListForUserAndStats(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	r1, _ := s.Create(ctx, alice, models.CreateRoomRequest{Name: "One"})
	r2, _ := s.Create(ctx, bob, models.CreateRoomRequest{Name: "Two"})
	if _, err := s.AddMember(ctx, r2.RoomID, alice, ""); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	list, err := s.ListForUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	roles := map[string]string{}
	for _, r := range list {
		roles[r.RoomID] = r.Role
	}
	if roles[r1.RoomID] != models.RoleHost || roles[r2.RoomID] != models.RoleMember {
		t.Errorf("roles = %v", roles)
	}

	stats, err := s.Stats(ctx, r2.RoomID, alice.UserID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalMembers != 2 || stats.TotalQuestions != 0 || stats.AverageVotesPerQuestion != 0 {
		t.Errorf("Stats() = %+v", stats)
	}

	if _, err := s.Stats(ctx, r1.RoomID, carol.UserID); !errors.Is(err, apperr.ErrNotMember) {
		t.Errorf("Stats() for outsider error = %v, want ErrNotMember", err)
	}
}
