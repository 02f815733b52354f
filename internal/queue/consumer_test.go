package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name string
		ev   ActivityEvent
		want string
	}{
		{
			name: "vote",
			ev:   ActivityEvent{Kind: KindReviewVoted, UserID: 4, UserName: "ann", TargetID: 31, Detail: "funny", At: "2024-05-01T10:00:00Z"},
			want: "[2024-05-01T10:00:00Z] review.voted | uid=4 | user=\"ann\" | target=31 | detail=funny\n",
		},
		{
			name: "bookmark",
			ev:   ActivityEvent{Kind: KindBookmarkAdded, UserID: 2, Restaurant: 9, At: "2024-05-01T10:00:00Z"},
			want: "[2024-05-01T10:00:00Z] bookmark.added | uid=2 | rid=9\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatLine(tc.ev))
		})
	}
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	for _, ev := range []ActivityEvent{
		{Kind: KindTipCreated, UserID: 1, Restaurant: 2, TargetID: 3, At: "t1"},
		{Kind: KindFriendAdded, UserID: 1, TargetID: 5, At: "t2"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handleMessage(dir, body))
	}

	got, err := os.ReadFile(filepath.Join(dir, "activity.log"))
	require.NoError(t, err)
	assert.Equal(t,
		"[t1] tip.created | uid=1 | rid=2 | target=3\n[t2] friend.added | uid=1 | target=5\n",
		string(got))
}

func TestHandleMessage_RejectsBadPayload(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage(dir, []byte("{not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"uid":1}`)))
	_, err := os.Stat(filepath.Join(dir, "activity.log"))
	assert.True(t, os.IsNotExist(err))
}
