package machine

import (
	"testing"

	"github.com/vncman/core/internal/auth"
)

func TestCanReadCanWrite(t *testing.T) {
	owner := &auth.User{ID: "usr-owner"}
	other := &auth.User{ID: "usr-other"}
	admin := &auth.User{ID: "usr-admin", IsAdmin: true}

	private := &Machine{ID: "mac-1", OwnerID: "usr-owner", IsShared: false}
	shared := &Machine{ID: "mac-2", OwnerID: "usr-owner", IsShared: true}

	tests := []struct {
		name      string
		user      *auth.User
		machine   *Machine
		wantRead  bool
		wantWrite bool
	}{
		{"owner on own private", owner, private, true, true},
		{"owner on own shared", owner, shared, true, true},
		{"other on private", other, private, false, false},
		{"other on shared", other, shared, true, false},
		{"admin on private", admin, private, true, true},
		{"admin on shared", admin, shared, true, true},
		{"nil user", nil, private, false, false},
		{"nil machine", owner, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRead(tt.user, tt.machine); got != tt.wantRead {
				t.Errorf("CanRead() = %v, want %v", got, tt.wantRead)
			}
			if got := CanWrite(tt.user, tt.machine); got != tt.wantWrite {
				t.Errorf("CanWrite() = %v, want %v", got, tt.wantWrite)
			}
		})
	}
}
