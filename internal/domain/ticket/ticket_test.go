package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket(t *testing.T) {
	tests := []struct {
		name            string
		encryptedUserID string
		userMessageID   int64
		groupMessageID  int64
		wantErr         bool
	}{
		{
			name:            "valid ticket",
			encryptedUserID: "dG9rZW4",
			userMessageID:   10,
			groupMessageID:  20,
		},
		{
			name:            "missing encrypted user id",
			encryptedUserID: "",
			userMessageID:   10,
			groupMessageID:  20,
			wantErr:         true,
		},
		{
			name:            "non-positive user message id",
			encryptedUserID: "dG9rZW4",
			userMessageID:   0,
			groupMessageID:  20,
			wantErr:         true,
		},
		{
			name:            "non-positive group message id",
			encryptedUserID: "dG9rZW4",
			userMessageID:   10,
			groupMessageID:  -1,
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := NewTicket(tt.encryptedUserID, tt.userMessageID, tt.groupMessageID)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(0), tk.ID())
			assert.Equal(t, tt.encryptedUserID, tk.EncryptedUserID())
			assert.Equal(t, tt.userMessageID, tk.UserMessageID())
			assert.Equal(t, tt.groupMessageID, tk.GroupMessageID())
			assert.WithinDuration(t, time.Now(), tk.CreatedAt(), time.Second)
		})
	}
}

func TestTicket_SetID(t *testing.T) {
	tk, err := NewTicket("dG9rZW4", 10, 20)
	require.NoError(t, err)

	require.NoError(t, tk.SetID(7))
	assert.Equal(t, uint(7), tk.ID())
	assert.Equal(t, uint(7), tk.Number())

	assert.Error(t, tk.SetID(8), "id must only be assigned once")

	fresh, err := NewTicket("dG9rZW4", 10, 21)
	require.NoError(t, err)
	assert.Error(t, fresh.SetID(0))
}

func TestReconstructTicket(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	tk, err := ReconstructTicket(3, "dG9rZW4", 10, 20, created)
	require.NoError(t, err)
	assert.Equal(t, uint(3), tk.ID())
	assert.Equal(t, created, tk.CreatedAt())

	_, err = ReconstructTicket(0, "dG9rZW4", 10, 20, created)
	assert.Error(t, err)

	_, err = ReconstructTicket(3, "", 10, 20, created)
	assert.Error(t, err)
}
