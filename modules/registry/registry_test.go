package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/signaling-relay/domain/room"
)

func TestRegistry_CreateRoom(t *testing.T) {
	reg := NewRegistry()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	reg.now = func() time.Time { return created }

	result, err := reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	if err != nil {
		t.Fatalf("JoinOrCreate() unexpected error: %v", err)
	}
	if !result.Created {
		t.Error("JoinOrCreate() Created = false, want true")
	}
	if result.UserCount != 1 {
		t.Errorf("JoinOrCreate() UserCount = %d, want 1", result.UserCount)
	}
	if len(result.ExistingMembers) != 0 {
		t.Errorf("JoinOrCreate() ExistingMembers = %v, want empty", result.ExistingMembers)
	}

	info, ok := reg.Room("alpha")
	if !ok {
		t.Fatal("Room() expected room to exist")
	}
	if !info.CreatedAt.Equal(created) {
		t.Errorf("Room() CreatedAt = %v, want %v", info.CreatedAt, created)
	}
}

func TestRegistry_JoinExistingRoom(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	_, _ = reg.JoinOrCreate("alpha", "p1", "Bob", "conn-b")

	result, err := reg.JoinOrCreate("alpha", "p1", "Carol", "conn-c")
	if err != nil {
		t.Fatalf("JoinOrCreate() unexpected error: %v", err)
	}
	if result.Created {
		t.Error("JoinOrCreate() Created = true, want false")
	}
	if result.UserCount != 3 {
		t.Errorf("JoinOrCreate() UserCount = %d, want 3", result.UserCount)
	}

	want := []room.Member{
		{ConnectionID: "conn-a", Username: "Alice"},
		{ConnectionID: "conn-b", Username: "Bob"},
	}
	if len(result.ExistingMembers) != len(want) {
		t.Fatalf("JoinOrCreate() ExistingMembers = %v, want %v", result.ExistingMembers, want)
	}
	for i := range want {
		if result.ExistingMembers[i] != want[i] {
			t.Errorf("ExistingMembers[%d] = %v, want %v", i, result.ExistingMembers[i], want[i])
		}
	}
}

func TestRegistry_IncorrectPasswordDoesNotMutate(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	_, _ = reg.JoinOrCreate("alpha", "p1", "Bob", "conn-b")

	tests := []struct {
		name     string
		password string
	}{
		{"wrong password", "wrong"},
		{"empty password", ""},
		{"prefix of password", "p"},
		{"password with suffix", "p1 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.JoinOrCreate("alpha", tt.password, "Carol", "conn-c")
			if !errors.Is(err, ErrIncorrectPassword) {
				t.Fatalf("JoinOrCreate() error = %v, want %v", err, ErrIncorrectPassword)
			}

			info, _ := reg.Room("alpha")
			if info.UserCount != 2 {
				t.Errorf("UserCount = %d, want 2", info.UserCount)
			}
			if _, ok := reg.RoomOf("conn-c"); ok {
				t.Error("RoomOf() rejected connection should own no member")
			}
		})
	}
}

func TestRegistry_RetryAfterIncorrectPassword(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")

	if _, err := reg.JoinOrCreate("alpha", "nope", "Bob", "conn-b"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("JoinOrCreate() error = %v, want %v", err, ErrIncorrectPassword)
	}

	result, err := reg.JoinOrCreate("alpha", "p1", "Bob", "conn-b")
	if err != nil {
		t.Fatalf("JoinOrCreate() retry unexpected error: %v", err)
	}
	if result.UserCount != 2 {
		t.Errorf("JoinOrCreate() UserCount = %d, want 2", result.UserCount)
	}
}

func TestRegistry_ConnectionOwnsOneMember(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")

	if _, err := reg.JoinOrCreate("beta", "p2", "Alice", "conn-a"); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("JoinOrCreate() error = %v, want %v", err, ErrAlreadyInRoom)
	}
	if _, ok := reg.Room("beta"); ok {
		t.Error("Room() beta must not be created by a rejected join")
	}
	if _, err := reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a"); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("JoinOrCreate() rejoin error = %v, want %v", err, ErrAlreadyInRoom)
	}
}

func TestRegistry_NthJoinReportsN(t *testing.T) {
	reg := NewRegistry()
	for i := 1; i <= 25; i++ {
		result, err := reg.JoinOrCreate("fresh", "pw", "user", fmt.Sprintf("conn-%d", i))
		if err != nil {
			t.Fatalf("join %d unexpected error: %v", i, err)
		}
		if result.UserCount != i {
			t.Errorf("join %d UserCount = %d, want %d", i, result.UserCount, i)
		}
		if len(result.ExistingMembers) != i-1 {
			t.Errorf("join %d ExistingMembers len = %d, want %d", i, len(result.ExistingMembers), i-1)
		}
	}
}

func TestRegistry_Leave(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	_, _ = reg.JoinOrCreate("alpha", "p1", "Bob", "conn-b")

	result, ok := reg.Leave("conn-b")
	if !ok {
		t.Fatal("Leave() expected member to be found")
	}
	if result.RoomDeleted {
		t.Error("Leave() RoomDeleted = true, want false")
	}
	if result.Remaining != 1 {
		t.Errorf("Leave() Remaining = %d, want 1", result.Remaining)
	}
	if result.Member.Username != "Bob" {
		t.Errorf("Leave() Member.Username = %q, want %q", result.Member.Username, "Bob")
	}
	if len(result.RemainingMembers) != 1 || result.RemainingMembers[0].ConnectionID != "conn-a" {
		t.Errorf("Leave() RemainingMembers = %v, want [conn-a]", result.RemainingMembers)
	}

	result, ok = reg.Leave("conn-a")
	if !ok {
		t.Fatal("Leave() expected member to be found")
	}
	if !result.RoomDeleted {
		t.Error("Leave() RoomDeleted = false, want true")
	}
	if len(result.RemainingMembers) != 0 {
		t.Errorf("Leave() RemainingMembers = %v, want empty", result.RemainingMembers)
	}
	if _, exists := reg.Room("alpha"); exists {
		t.Error("Room() expected alpha to be deleted")
	}
}

func TestRegistry_LeaveUnknownIsNoop(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")

	if _, ok := reg.Leave("ghost"); ok {
		t.Error("Leave() unknown connection should report not found")
	}
	if _, ok := reg.Leave("conn-a"); !ok {
		t.Error("Leave() first leave should succeed")
	}
	if _, ok := reg.Leave("conn-a"); ok {
		t.Error("Leave() second leave should report not found")
	}
}

func TestRegistry_DeletedRoomIsRecreatedFresh(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	_, _ = reg.Leave("conn-a")

	result, err := reg.JoinOrCreate("alpha", "different", "Bob", "conn-b")
	if err != nil {
		t.Fatalf("JoinOrCreate() unexpected error: %v", err)
	}
	if !result.Created || result.UserCount != 1 {
		t.Errorf("JoinOrCreate() = %+v, want fresh room with one member", result)
	}
}

func TestRegistry_ListOtherMembers(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("alpha", "p1", "Alice", "conn-a")
	_, _ = reg.JoinOrCreate("alpha", "p1", "Bob", "conn-b")
	_, _ = reg.JoinOrCreate("alpha", "p1", "Carol", "conn-c")
	_, _ = reg.JoinOrCreate("beta", "p2", "Dave", "conn-d")

	others := reg.ListOtherMembers("alpha", "conn-b")
	if len(others) != 2 {
		t.Fatalf("ListOtherMembers() len = %d, want 2", len(others))
	}
	for _, m := range others {
		if m.ConnectionID == "conn-b" || m.ConnectionID == "conn-d" {
			t.Errorf("ListOtherMembers() unexpected member %v", m)
		}
	}

	if all := reg.Members("alpha"); len(all) != 3 {
		t.Errorf("Members() len = %d, want 3", len(all))
	}
	if none := reg.ListOtherMembers("missing", ""); none != nil {
		t.Errorf("ListOtherMembers() missing room = %v, want nil", none)
	}
}

func TestRegistry_RoomsAndStats(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.JoinOrCreate("beta", "p", "Bob", "conn-b")
	_, _ = reg.JoinOrCreate("alpha", "p", "Alice", "conn-a")
	_, _ = reg.JoinOrCreate("alpha", "p", "Carol", "conn-c")

	rooms := reg.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("Rooms() len = %d, want 2", len(rooms))
	}
	if rooms[0].ID != "alpha" || rooms[0].UserCount != 2 {
		t.Errorf("Rooms()[0] = %+v, want alpha with 2 users", rooms[0])
	}

	stats := reg.Stats()
	if stats.Rooms != 2 || stats.Members != 3 {
		t.Errorf("Stats() = %+v, want {Rooms:2 Members:3}", stats)
	}
}

// Room existence must track member count across any interleaving of joins
// and leaves.
func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()
	const workers = 32
	const rounds = 200

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", w)
			roomID := fmt.Sprintf("room-%d", w%4)
			for range rounds {
				if _, err := reg.JoinOrCreate(roomID, "pw", "user", connID); err != nil {
					t.Errorf("JoinOrCreate() unexpected error: %v", err)
					return
				}
				_ = reg.ListOtherMembers(roomID, connID)
				if _, ok := reg.Leave(connID); !ok {
					t.Errorf("Leave() %s expected member", connID)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	stats := reg.Stats()
	if stats.Rooms != 0 || stats.Members != 0 {
		t.Errorf("Stats() after all leaves = %+v, want empty", stats)
	}
}

func TestRegistry_ConcurrentCreateSameRoom(t *testing.T) {
	reg := NewRegistry()
	const joiners = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	counts := make(map[int]bool)

	for i := range joiners {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := reg.JoinOrCreate("race", "pw", "user", fmt.Sprintf("conn-%d", i))
			if err != nil {
				t.Errorf("JoinOrCreate() unexpected error: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Created {
				created++
			}
			counts[result.UserCount] = true
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("rooms created = %d, want 1", created)
	}
	for n := 1; n <= joiners; n++ {
		if !counts[n] {
			t.Errorf("no join observed UserCount %d", n)
		}
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"valid room id", ValidateRoomID("alpha"), nil},
		{"empty room id", ValidateRoomID(""), ErrRoomIDEmpty},
		{"long room id", ValidateRoomID(string(make([]byte, MaxRoomIDLength+1))), ErrRoomIDTooLong},
		{"invalid room id", ValidateRoomID("\xff"), ErrRoomIDInvalid},
		{"valid username", ValidateUsername("Alice"), nil},
		{"empty username", ValidateUsername(""), ErrUsernameEmpty},
		{"invalid username", ValidateUsername("\xfe\xff"), ErrUsernameInvalid},
		{"empty password", ValidatePassword(""), nil},
		{"long password", ValidatePassword(string(make([]byte, MaxPasswordLength+1))), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", tt.err, tt.wantErr)
			}
		})
	}
}
