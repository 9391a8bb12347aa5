package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	libp2p "github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"

	"bubblechat/internal/models"
	"bubblechat/internal/p2p"
)

type Server struct {
	Ctx    context.Context
	Host   host.Host
	DHT    *dht.IpfsDHT
	PS     *pubsub.PubSub
	Store  *Store
	Writer *MessageWriter

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewServer(ctx context.Context, listenAddr string, dsn string) (*Server, error) {
	log.Printf("[STORE] Initializing store node on %s", listenAddr)

	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		log.Printf("[STORE] ERROR: Failed to create libp2p host: %v", err)
		return nil, err
	}
	log.Printf("[STORE] Created libp2p host with ID: %s", h.ID().String())

	dhtNode, err := dht.New(ctx, h)
	if err != nil {
		log.Printf("[STORE] ERROR: Failed to create DHT: %v", err)
		return nil, err
	}
	if err := dhtNode.Bootstrap(ctx); err != nil {
		log.Printf("[STORE] ERROR: Failed to bootstrap DHT: %v", err)
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		log.Printf("[STORE] ERROR: Failed to create pubsub: %v", err)
		return nil, err
	}

	st, err := NewSQLiteStore(dsn)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, err
	}
	log.Printf("[STORE] sqlite store ready (%s)", dsn)

	srv := &Server{
		Ctx:    ctx,
		Host:   h,
		DHT:    dhtNode,
		PS:     ps,
		Store:  st,
		topics: make(map[string]*pubsub.Topic),
	}
	srv.Writer = NewMessageWriter(1024, srv.publishWindow)
	srv.Writer.Start(st)

	h.Network().Notify(&network.NotifyBundle{
		ConnectedF: func(n network.Network, c network.Conn) {
			log.Printf("[STORE] CONNECT: Peer %s connected from %s",
				c.RemotePeer().String(), c.RemoteMultiaddr().String())
		},
		DisconnectedF: func(n network.Network, c network.Conn) {
			log.Printf("[STORE] DISCONNECT: Peer %s disconnected",
				c.RemotePeer().String())
		},
	})

	h.SetStreamHandler(p2p.StoreProtocolID, srv.handleRPC)
	log.Printf("[STORE] Stream handler set for protocol: %s", p2p.StoreProtocolID)

	return srv, nil
}

// ListenAddrs prints the multiaddrs so clients can dial the node.
func (s *Server) ListenAddrs() {
	log.Println("[STORE] Store node listening on:")
	for _, a := range s.Host.Addrs() {
		addr := fmt.Sprintf("%s/p2p/%s", a, s.Host.ID().String())
		log.Printf("[STORE]   %s", addr)
		fmt.Printf("  %s\n", addr) // Also print to stdout for easy copying
	}
}

// Close stops the writer and releases network and DB resources.
func (s *Server) Close() {
	s.Writer.Stop()
	s.mu.Lock()
	for _, t := range s.topics {
		_ = t.Close()
	}
	s.topics = make(map[string]*pubsub.Topic)
	s.mu.Unlock()
	_ = s.DHT.Close()
	_ = s.Host.Close()
	s.Store.Close()
}

// roomTopic returns the (cached) messages topic for one room.
func (s *Server) roomTopic(roomID string) (*pubsub.Topic, error) {
	name := p2p.MessagesTopic(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.topics[name]; ok {
		return t, nil
	}
	t, err := s.PS.Join(name)
	if err != nil {
		return nil, err
	}
	s.topics[name] = t
	return t, nil
}

// publishWindow pushes the room's current window (newest first) to its
// messages topic. Called by the writer after every flush that touched the
// room.
func (s *Server) publishWindow(roomID string) {
	msgs, err := s.Store.LatestMessages(s.Ctx, roomID, models.MessageWindow)
	if err != nil {
		log.Printf("[STORE] ERROR: window query for %s failed: %v", roomID, err)
		return
	}
	snap := models.MessageSnapshot{RoomID: roomID, Messages: msgs}
	data, err := json.Marshal(&snap)
	if err != nil {
		log.Printf("[STORE] ERROR: marshal snapshot for %s: %v", roomID, err)
		return
	}
	topic, err := s.roomTopic(roomID)
	if err != nil {
		log.Printf("[STORE] ERROR: join topic for %s: %v", roomID, err)
		return
	}
	if err := topic.Publish(s.Ctx, data); err != nil {
		log.Printf("[STORE] ERROR: publish snapshot for %s: %v", roomID, err)
		return
	}
	log.Printf("[STORE] Published %d-message window for room %s", len(msgs), roomID)
}

// handleRPC is invoked for every incoming stream on StoreProtocolID.
// It expects a JSON envelope {method, params} and writes one JSON response.
func (s *Server) handleRPC(stream network.Stream) {
	remotePeer := stream.Conn().RemotePeer()
	defer stream.Close()

	decoder := json.NewDecoder(stream)
	encoder := json.NewEncoder(stream)

	var env models.Envelope
	if err := decoder.Decode(&env); err != nil {
		log.Printf("[STORE] RPC ERROR: Failed to decode envelope from %s: %v",
			remotePeer.String(), err)
		return
	}

	log.Printf("[STORE] RPC: Method '%s' called by peer %s", env.Method, remotePeer.String())
	startTime := time.Now()

	switch env.Method {

	case "GetRoom":
		var req models.GetRoomRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal GetRoom params: %v", err)
			return
		}
		var resp models.GetRoomResponse
		room, err := s.Store.GetRoom(s.Ctx, req.RoomID)
		if err != nil {
			resp.Error = err.Error()
		} else if room != nil {
			resp.Found = true
			resp.Room = *room
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode GetRoom response: %v", err)
		}

	case "SetRoom":
		var req models.SetRoomRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal SetRoom params: %v", err)
			return
		}
		var resp models.SetRoomResponse
		if req.RoomID == "" {
			resp.Error = "room id cannot be empty"
		} else if err := s.Store.UpsertRoom(s.Ctx, req.RoomID, req.Patch, time.Now().UnixMicro()); err != nil {
			log.Printf("[STORE] RPC ERROR: SetRoom failed for %s: %v", req.RoomID, err)
			resp.Error = err.Error()
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode SetRoom response: %v", err)
		}

	case "GetAccess":
		var req models.GetAccessRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal GetAccess params: %v", err)
			return
		}
		var resp models.GetAccessResponse
		rec, err := s.Store.GetAccess(s.Ctx, req.RoomID)
		if err != nil {
			resp.Error = err.Error()
		} else if rec != nil {
			resp.Found = true
			resp.Access = *rec
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode GetAccess response: %v", err)
		}

	case "SetAccess":
		var req models.SetAccessRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal SetAccess params: %v", err)
			return
		}
		var resp models.SetAccessResponse
		if req.Access.Visibility != models.VisibilityPublic &&
			req.Access.Visibility != models.VisibilityPrivate {
			resp.Error = "unknown visibility: " + req.Access.Visibility
		} else if err := s.Store.SetAccess(s.Ctx, req.RoomID, req.Access); err != nil {
			log.Printf("[STORE] RPC ERROR: SetAccess failed for %s: %v", req.RoomID, err)
			resp.Error = err.Error()
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode SetAccess response: %v", err)
		}

	case "AppendMessage":
		var req models.AppendMessageRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal AppendMessage params: %v", err)
			return
		}
		var resp models.AppendMessageResponse
		if req.RoomID == "" {
			resp.Error = "room id cannot be empty"
		} else {
			msg := models.ChatMessage{
				ID:        uuid.NewString(),
				RoomID:    req.RoomID,
				Sender:    req.Sender,
				Text:      req.Text,
				CreatedAt: time.Now().UnixMicro(),
			}
			if err := s.Writer.Enqueue(msg); err != nil {
				log.Printf("[STORE] RPC ERROR: AppendMessage enqueue failed for %s: %v", req.RoomID, err)
				resp.Error = err.Error()
			}
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode AppendMessage response: %v", err)
		}

	case "LatestMessages":
		var req models.LatestMessagesRequest
		if err := json.Unmarshal(env.Params, &req); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to unmarshal LatestMessages params: %v", err)
			return
		}
		limit := req.Limit
		if limit <= 0 || limit > models.MessageWindow {
			limit = models.MessageWindow
		}
		var resp models.LatestMessagesResponse
		msgs, err := s.Store.LatestMessages(s.Ctx, req.RoomID, limit)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Messages = msgs
		}
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode LatestMessages response: %v", err)
		}

	case "ListRooms":
		var resp models.ListRoomsResponse
		rooms, err := s.Store.ListRooms(s.Ctx)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Rooms = rooms
		}
		log.Printf("[STORE] RPC: ListRooms returning %d rooms to %s",
			len(resp.Rooms), remotePeer.String())
		if err := encoder.Encode(&resp); err != nil {
			log.Printf("[STORE] RPC ERROR: Failed to encode ListRooms response: %v", err)
		}

	default:
		log.Printf("[STORE] RPC ERROR: Unknown method '%s' called by %s",
			env.Method, remotePeer.String())
	}

	log.Printf("[STORE] RPC: Method '%s' completed in %v for peer %s",
		env.Method, time.Since(startTime), remotePeer.String())
}
