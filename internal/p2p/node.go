// Package p2p holds the libp2p node and the RPC/topic plumbing towards the
// document store node.
package p2p

import (
	"context"

	libp2p "github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
)

type Node struct {
	Host  host.Host
	DHT   *dht.IpfsDHT
	PS    *pubsub.PubSub
	Ctx   context.Context
	Store *peer.AddrInfo // the document store node we talk to
}

func (n *Node) InitHost(listenAddrs []string) error {
	h, err := libp2p.New(
		libp2p.ListenAddrStrings(listenAddrs...),
	)
	if err != nil {
		return err
	}
	n.Host = h
	return nil
}

func (n *Node) InitDHT() error {
	d, err := dht.New(n.Ctx, n.Host)
	if err != nil {
		return err
	}
	n.DHT = d
	if err := n.DHT.Bootstrap(n.Ctx); err != nil {
		return err
	}
	return nil
}

func (n *Node) InitPubSub() error {
	ps, err := pubsub.NewGossipSub(n.Ctx, n.Host)
	if err != nil {
		return err
	}
	n.PS = ps
	return nil
}

// InitNode brings up host, DHT and pubsub in one go.
func (n *Node) InitNode(listenAddrs ...string) error {
	if len(listenAddrs) == 0 {
		listenAddrs = []string{"/ip4/0.0.0.0/tcp/0"}
	}
	if err := n.InitHost(listenAddrs); err != nil {
		return err
	}
	if err := n.InitDHT(); err != nil {
		return err
	}
	return n.InitPubSub()
}

// ConnectStore parses the store node multiaddr and connects to it.
func (n *Node) ConnectStore(addr string) error {
	pi, err := peer.AddrInfoFromString(addr)
	if err != nil {
		return err
	}
	if err := n.Host.Connect(n.Ctx, *pi); err != nil {
		return err
	}
	n.Store = pi
	return nil
}

// Close releases the node's network resources.
func (n *Node) Close() error {
	if n.DHT != nil {
		_ = n.DHT.Close()
	}
	if n.Host != nil {
		return n.Host.Close()
	}
	return nil
}
