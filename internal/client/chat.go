package client

import (
	"strings"

	"bubblechat/internal/models"
)

// CommitMessage appends text to the active room under the placeholder
// sender. No room open or blank text is a no-op. The call returns once the
// store accepts the write; the message reappears through the live feed when
// the store round-trips it.
func (cli *Client) CommitMessage(text string) error {
	id := cli.Session.ActiveRoom()
	if id == "" || strings.TrimSpace(text) == "" {
		return nil
	}
	if err := cli.Node.AppendMessage(id, models.AnonymousSender, text); err != nil {
		// at-most-once: log and drop, no retry
		cli.Session.Log.Logf("commit message to %s failed: %v", id, err)
		return err
	}
	return nil
}
