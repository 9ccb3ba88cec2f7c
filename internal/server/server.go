// Package server implements the World Conquest game server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"world-conquest/internal/config"
	"world-conquest/internal/database"
	"world-conquest/internal/game"
	"world-conquest/internal/protocol"
	"world-conquest/internal/session"
	"world-conquest/pkg/maps"
)

// Version is reported to clients in the welcome message.
const Version = "0.3.0"

// ErrUnknownMap is returned when a game names a map the server has not loaded.
var ErrUnknownMap = errors.New("unknown map")

// Server is the main game server.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *database.DB
	maps     *maps.Catalog
	mapID    string
	sessions *session.Registry
	hub      *Hub
	server   *http.Server

	// saveMu keeps snapshots reaching the database in the order they were taken.
	saveMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New opens the database, loads the maps and restores every active game.
// A fresh install gets one game seeded from the configured scenario.
func New(cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts, err := cfg.Map.Options()
	if err != nil {
		return nil, err
	}
	catalog := maps.NewCatalog()
	if err := catalog.LoadAll(opts); err != nil {
		return nil, err
	}
	mapID := cfg.Map.ID
	if cfg.Map.Bitmap != "" {
		w, err := maps.LoadWorld(cfg.Map.Bitmap, opts)
		if err != nil {
			return nil, err
		}
		catalog.Register(w)
		mapID = w.ID
	}
	if mapID == "" {
		mapID = maps.DefaultMapID
	}
	if catalog.Get(mapID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMap, mapID)
	}

	db, err := database.New(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		log:      log,
		db:       db,
		maps:     catalog,
		mapID:    mapID,
		sessions: session.NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}

	if err := s.restore(); err != nil {
		cancel()
		db.Close()
		return nil, err
	}
	if len(s.sessions.IDs()) == 0 {
		if _, err := s.createGame("Default", mapID); err != nil {
			cancel()
			db.Close()
			return nil, err
		}
	}

	s.hub = NewHub(s)
	go s.hub.Run(ctx)
	return s, nil
}

// restore reopens the active games found in the database. Connections do
// not survive a restart, so every restored game starts with no players.
func (s *Server) restore() error {
	games, err := s.db.ListGames(database.GameStatusActive)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	for _, info := range games {
		w := s.maps.Get(info.MapID)
		if w == nil {
			s.log.Warn("skipping game on unknown map",
				zap.String("game", info.ID), zap.String("map", info.MapID))
			continue
		}

		state, err := s.db.LoadGameState(info.ID)
		if errors.Is(err, database.ErrGameNotFound) {
			if state, err = s.seed(info.ID, info.Name, w); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("failed to load game %s: %w", info.ID, err)
		}

		for _, p := range append([]string(nil), state.Players...) {
			state.RemovePlayer(p)
		}
		s.sessions.Add(session.New(w, state, s.log))
		s.log.Info("game restored",
			zap.String("game", info.ID),
			zap.String("name", info.Name),
			zap.Int("round", state.Round))
	}
	return nil
}

// seed builds a new game state from the configured scenario.
func (s *Server) seed(id, name string, w *maps.World) (*game.GameState, error) {
	state := game.NewGame(id, name, w.ID, s.cfg.Rules)
	if err := s.cfg.Scenario.Apply(state, w); err != nil {
		return nil, fmt.Errorf("failed to seed game %s on %s: %w", id, w.ID, err)
	}
	return state, nil
}

// createGame records, seeds and registers a new game.
func (s *Server) createGame(name, mapID string) (*session.Session, error) {
	w := s.maps.Get(mapID)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMap, mapID)
	}

	info, err := s.db.CreateGame(name, mapID)
	if err != nil {
		return nil, err
	}
	state, err := s.seed(info.ID, name, w)
	if err != nil {
		s.db.DeleteGame(info.ID)
		return nil, err
	}
	if err := s.db.SaveGameState(state); err != nil {
		return nil, err
	}

	sess := session.New(w, state, s.log)
	s.sessions.Add(sess)
	s.log.Info("game created",
		zap.String("game", info.ID),
		zap.String("name", name),
		zap.String("map", mapID))
	return sess, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{id}/state", s.handleGameState)
	mux.HandleFunc("GET /api/games/{id}/map.png", s.handleGameImage)
	mux.HandleFunc("GET /api/games/{id}/groups", s.handleGameGroups)
	mux.HandleFunc("GET /api/games/{id}/actions", s.handleGameActions)
	mux.HandleFunc("GET /api/maps", s.handleListMaps)
	mux.HandleFunc("GET /api/maps/{id}", s.handleMap)
	return mux
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("World Conquest server",
		zap.String("addr", s.cfg.Server.Addr),
		zap.String("database", s.cfg.Server.DBPath),
		zap.String("map", s.mapID),
		zap.Strings("games", s.sessions.IDs()))

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.db.Close()
}

// handleWebSocket accepts a connection and serves it until it closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warn("websocket accept failed", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)

	go client.WritePump(s.ctx)
	client.ReadPump(s.ctx)
}

// handleListGames lists every recorded game.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.db.ListGames("")
	if err != nil {
		s.log.Error("failed to list games", zap.Error(err))
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}
	if games == nil {
		games = []*database.GameInfo{}
	}
	writeJSON(w, games)
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.maps.List())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	world := s.maps.Get(r.PathValue("id"))
	if world == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, protocol.NewMapPayload(world))
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, newStatePayload(sess))
}

// handleGameImage serves the latest rendered map of a game.
func (s *Server) handleGameImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	d := sess.Derived()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Derived-Version", strconv.FormatInt(d.Version, 10))
	if err := png.Encode(w, d.Image); err != nil {
		s.log.Warn("failed to encode map image", zap.String("game", sess.ID()), zap.Error(err))
	}
}

func (s *Server) handleGameGroups(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	d := sess.Derived()
	w.Header().Set("X-Derived-Version", strconv.FormatInt(d.Version, 10))
	groups := d.Groups
	if groups == nil {
		groups = []maps.TerritoryGroup{}
	}
	writeJSON(w, groups)
}

// handleGameActions serves a game's action log: one round with ?round=N,
// otherwise every entry after ?since=ID.
func (s *Server) handleGameActions(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if _, err := s.db.GetGame(gameID); err != nil {
		if errors.Is(err, database.ErrGameNotFound) {
			http.NotFound(w, r)
			return
		}
		s.log.Error("failed to load game", zap.String("game", gameID), zap.Error(err))
		http.Error(w, "Failed to load game", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	var (
		actions []*database.Action
		err     error
	)
	if q.Has("round") {
		round, perr := strconv.Atoi(q.Get("round"))
		if perr != nil {
			http.Error(w, "invalid round", http.StatusBadRequest)
			return
		}
		actions, err = s.db.GetRoundActions(gameID, round)
	} else {
		var since int64
		if v := q.Get("since"); v != "" {
			var perr error
			if since, perr = strconv.ParseInt(v, 10, 64); perr != nil {
				http.Error(w, "invalid since", http.StatusBadRequest)
				return
			}
		}
		actions, err = s.db.GetActionsSince(gameID, since)
	}
	if err != nil {
		s.log.Error("failed to read actions", zap.String("game", gameID), zap.Error(err))
		http.Error(w, "Failed to read actions", http.StatusInternalServerError)
		return
	}
	if actions == nil {
		actions = []*database.Action{}
	}
	writeJSON(w, actions)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
