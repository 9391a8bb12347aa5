package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *UIConfig {
	return &UIConfig{
		Theme:          BuiltinTheme(),
		GetChatID:      func() string { return "" },
		GetChatName:    func() string { return "" },
		GetRecentChats: func() []string { return nil },
	}
}

func TestUpdateRecentPlaceholder(t *testing.T) {
	u := NewUI(testConfig())
	c := u.ChatScreen

	// starts empty: list plus placeholder
	require.Equal(t, 0, c.RecentList.GetItemCount())
	require.Equal(t, 2, c.recentPane.GetItemCount())

	c.UpdateRecent([]string{"a", "b"})
	require.Equal(t, 2, c.RecentList.GetItemCount())
	require.Equal(t, 1, c.recentPane.GetItemCount())

	// the last chat was removed: placeholder comes back
	c.UpdateRecent(nil)
	require.Equal(t, 0, c.RecentList.GetItemCount())
	require.Equal(t, 2, c.recentPane.GetItemCount())

	// repeated empty updates must not stack placeholders
	c.UpdateRecent(nil)
	require.Equal(t, 2, c.recentPane.GetItemCount())
}
