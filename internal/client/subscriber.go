package client

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"bubblechat/internal/models"
	"bubblechat/internal/p2p"
)

// liveFeed is the handle for one room's message subscription. The session
// holds at most one and must Cancel it before creating the next.
type liveFeed struct {
	roomID string
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	cancel context.CancelFunc
}

// Cancel tears the subscription down. Cancellation is best-effort: a
// delivery already in flight may still reach the reader, which is why every
// snapshot is checked against the active room before it is applied.
func (f *liveFeed) Cancel() {
	f.cancel()
	f.sub.Cancel()
	_ = f.topic.Close()
}

// subscribe joins the room's messages topic, applies the initial window
// fetched over RPC and starts the feed reader. The previous feed must
// already be torn down.
func (cli *Client) subscribe(roomID string) error {
	if cli.Node.PS == nil {
		return errors.New("p2p node still starting")
	}
	topic, err := cli.Node.PS.Join(p2p.MessagesTopic(roomID))
	if err != nil {
		return err
	}
	sub, err := topic.Subscribe()
	if err != nil {
		_ = topic.Close()
		return err
	}
	ctx, cancel := context.WithCancel(cli.Node.Ctx)
	feed := &liveFeed{roomID: roomID, topic: topic, sub: sub, cancel: cancel}

	s := cli.Session
	s.mu.Lock()
	if s.chatID != roomID {
		// the room changed underneath us before the feed was registered
		s.mu.Unlock()
		feed.Cancel()
		return nil
	}
	s.feed = feed
	s.mu.Unlock()

	// Initial window over RPC; everything after comes from the topic.
	if msgs, err := cli.Node.LatestMessages(roomID, models.MessageWindow); err != nil {
		s.Log.Logf("initial window fetch for %s failed: %v", roomID, err)
	} else {
		cli.applySnapshot(roomID, reverseMessages(msgs))
	}

	go cli.readFeed(ctx, feed)
	return nil
}

func (cli *Client) readFeed(ctx context.Context, feed *liveFeed) {
	for {
		msg, err := feed.sub.Next(ctx)
		if err != nil {
			return
		}
		var snap models.MessageSnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			cli.Session.Log.Logf("bad snapshot on %s: %v", feed.roomID, err)
			continue
		}
		cli.applySnapshot(snap.RoomID, reverseMessages(snap.Messages))
	}
}

// applySnapshot replaces the whole window. A snapshot whose room id no
// longer matches the active room is a late delivery from a cancelled feed
// and is discarded.
func (cli *Client) applySnapshot(roomID string, asc []models.ChatMessage) {
	s := cli.Session
	s.mu.Lock()
	if roomID != s.chatID {
		s.mu.Unlock()
		s.Log.Logf("discarding stale snapshot for %s", roomID)
		return
	}
	s.messages = asc
	s.mu.Unlock()

	if cli.OnMessages != nil {
		go cli.OnMessages(roomID, asc)
	}
}

// reverseMessages turns the store's newest-first window into the
// oldest-first order the UI consumes.
func reverseMessages(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
