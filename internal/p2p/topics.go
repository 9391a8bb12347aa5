package p2p

import "fmt"

// Topic namespace root
const topicRoot = "/bubblechat"

// StoreProtocolID is the stream protocol the store node serves RPC on.
const StoreProtocolID = "/bubblechat/store/1.0.0"

// MessagesTopic carries the live message window of one chat room. The store
// node republishes the full window here after every append.
func MessagesTopic(chatID string) string {
	return fmt.Sprintf("%s/chats/%s/messages", topicRoot, chatID)
}
