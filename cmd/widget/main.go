package main

import (
	"flag"
	"fmt"
	"os"

	"bubblechat/internal/client"
)

func main() {
	store := flag.String("store", "", "multiaddr of the document store node (required)")
	chat := flag.String("chat", "", "chat id to open on startup")
	logPort := flag.Int("logport", 9111, "TCP port for the remote debug log")
	flag.Parse()

	if *store == "" {
		fmt.Fprintln(os.Stderr, "usage: widget -store <multiaddr> [-chat <id>] [-logport <port>]")
		os.Exit(2)
	}

	client.StartWidgetApp(*store, *chat, *logPort)
}
