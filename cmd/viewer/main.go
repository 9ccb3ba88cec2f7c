// Command viewer shows a game's map in a desktop window.
//
// With -server it joins a game on that server (as -country, or as an
// observer). Without it the configured scenario is played offline.
package main

import (
	"flag"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"world-conquest/internal/client"
	"world-conquest/internal/config"
	"world-conquest/internal/game"
	"world-conquest/internal/logs"
	"world-conquest/internal/protocol"
	"world-conquest/internal/viewer"
	"world-conquest/pkg/maps"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	serverAddr := flag.String("server", "", "Server address; empty plays offline")
	gameID := flag.String("game", "", "Game to join (default: the first listed)")
	country := flag.String("country", "", "Country to play; empty observes")
	mapPath := flag.String("map", "", "Province bitmap (overrides config)")
	scale := flag.Int("scale", 0, "Pixel scale (overrides saved preference)")
	profile := flag.String("profile", "", "Profile name for separate config (e.g., player1, player2)")
	flag.Parse()

	client.SetProfile(*profile)
	prefs, err := client.LoadConfig()
	if err != nil {
		log.Printf("Failed to load preferences: %v", err)
	}
	if *scale > 0 {
		prefs.Scale = *scale
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logCfg := cfg.Log
	logCfg.File = ""
	logger := logs.New("viewer", logCfg)
	defer logger.Sync()

	world, err := loadWorld(cfg, *mapPath)
	if err != nil {
		logger.Fatal("failed to load map", zap.Error(err))
	}

	state := game.NewGame("", world.Name, world.ID, cfg.Rules)
	var network *client.NetworkClient

	if *serverAddr == "" {
		if err := cfg.Scenario.Apply(state, world); err != nil {
			logger.Fatal("failed to apply scenario", zap.Error(err))
		}
	}
	tracker := client.NewTracker(world, state, logger)

	if *serverAddr == "" {
		c := maps.CountryID(*country)
		if c == "" {
			c = firstCountry(state)
		}
		if err := tracker.PlayAs(c); err != nil {
			logger.Fatal("failed to pick country", zap.Error(err))
		}
	} else {
		if *gameID == "" && *serverAddr == prefs.LastServer {
			*gameID = prefs.LastGameID
		}
		network = client.NewNetworkClient(logger)
		join(network, tracker, *gameID, *country, logger)
		if err := network.Connect(*serverAddr); err != nil {
			logger.Fatal("failed to connect", zap.String("server", *serverAddr), zap.Error(err))
		}
		defer network.Disconnect()

		prefs.LastServer = *serverAddr
		prefs.LastCountry = *country
	}

	v := viewer.New(tracker, viewer.Options{
		Config:  prefs,
		Trace:   cfg.Map.Trace(),
		Network: network,
		Log:     logger,
	})

	w, h := v.Size()
	if prefs.WindowWidth > 0 && prefs.WindowHeight > 0 {
		w, h = prefs.WindowWidth, prefs.WindowHeight
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("World Conquest: " + world.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
	}

	prefs.WindowWidth, prefs.WindowHeight = ebiten.WindowSize()
	if gid := tracker.View().GameID; gid != "" {
		prefs.LastGameID = gid
	}
	if err := prefs.Save(); err != nil {
		logger.Warn("failed to save preferences", zap.Error(err))
	}
}

// join wires the network to the tracker and joins a game once the server
// has greeted us.
func join(network *client.NetworkClient, tracker *client.Tracker, gameID, country string, logger *zap.Logger) {
	if country == "" {
		country = protocol.Observer
	}
	send := func(msgType protocol.MessageType, payload any) {
		if err := network.SendPayload(msgType, payload); err != nil {
			logger.Warn("failed to send", zap.String("type", string(msgType)), zap.Error(err))
		}
	}

	network.OnMessage = func(msg *protocol.Message) {
		if err := tracker.Handle(msg); err != nil {
			logger.Warn("bad message from server", zap.String("type", string(msg.Type)), zap.Error(err))
			return
		}

		switch msg.Type {
		case protocol.TypeWelcome:
			if gameID != "" {
				send(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: gameID, CountryID: country})
			} else {
				send(protocol.TypeListGames, struct{}{})
			}
		case protocol.TypeGameList:
			var list protocol.GameListPayload
			if err := msg.ParsePayload(&list); err != nil || len(list.Games) == 0 {
				logger.Warn("no game to join")
				return
			}
			send(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: list.Games[0].ID, CountryID: country})
		case protocol.TypeGameState:
			if mapID := tracker.View().State.MapID; mapID != tracker.World().ID {
				logger.Warn("game uses a different map", zap.String("game_map", mapID), zap.String("local_map", tracker.World().ID))
			}
		}
	}
	network.OnDisconnect = func(err error) {
		logger.Warn("disconnected", zap.Error(err))
	}
}

func loadWorld(cfg config.Config, path string) (*maps.World, error) {
	opts, err := cfg.Map.Options()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = cfg.Map.Bitmap
	}
	if path != "" {
		return maps.LoadWorld(path, opts)
	}
	id := cfg.Map.ID
	if id == "" {
		id = maps.DefaultMapID
	}
	return maps.LoadEmbedded(id, opts)
}

func firstCountry(g *game.GameState) maps.CountryID {
	ids := make([]string, 0, len(g.Countries))
	for id := range g.Countries {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return maps.CountryID(ids[0])
}
