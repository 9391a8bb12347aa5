package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"bubblechat/internal/store"
)

func main() {
	listen := flag.String("listen", "/ip4/0.0.0.0/tcp/4001", "multiaddr to listen on")
	db := flag.String("db", "", "path to the sqlite database (default ~/.bubblechat/store.db)")
	flag.Parse()

	dsn := *db
	if dsn == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		dsn = filepath.Join(homeDir, ".bubblechat", "store.db")
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	srv, err := store.NewServer(ctx, *listen, dsn)
	if err != nil {
		log.Fatal(err)
	}
	srv.ListenAddrs()
	select {}
}
