// Command loot-road-game runs the game server: the §6 HTTP API, the
// live-state websocket hub for spectators, and an /mcp endpoint exposing
// join/move/state/tick/records as tools for scripted agents. World state
// lives entirely in one in-memory Game; retired dogs are persisted to
// Postgres.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/loot-road-game/api"
	"github.com/wricardo/loot-road-game/internal/config"
	"github.com/wricardo/loot-road-game/internal/game"
	"github.com/wricardo/loot-road-game/internal/store"
	"github.com/wricardo/loot-road-game/transport/mcp"
	"github.com/wricardo/loot-road-game/transport/websocket"
)

const asyncSinkQueueSize = 256

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: loading .env: %v", err)
	}

	cmd := &cli.Command{
		Name:  "loot-road-game",
		Usage: "runs the loot road game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-file", Required: true, Usage: "path to the map configuration JSON file"},
			&cli.StringFlag{Name: "www-root", Required: true, Usage: "directory of static web client assets to serve"},
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.Int64Flag{Name: "tick-period", Usage: "milliseconds between internal ticks; omit to run in test mode, where /api/v1/game/tick drives time instead"},
			&cli.BoolFlag{Name: "randomize-spawn-points", Usage: "spawn dogs at a random point on their map instead of its first spawn point"},
			&cli.StringFlag{Name: "state-file", Usage: "path to load a snapshot from at startup and save one to on shutdown"},
			&cli.Int64Flag{Name: "save-state-period", Usage: "milliseconds between automatic snapshot saves; requires --state-file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable verbose logging"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("loot-road-game: %v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		log.Fatalf("GAME_DB_URL is required")
	}

	cfgFile, err := config.Load(cmd.String("config-file"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	maps, err := cfgFile.BuildMaps()
	if err != nil {
		log.Fatalf("building maps: %v", err)
	}

	st, err := store.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("opening retired-record store: %v", err)
	}
	defer st.Close()

	sink := store.NewAsyncSink(st, runtime.NumCPU(), asyncSinkQueueSize)
	defer sink.Close()

	hub := websocket.NewHub()
	go hub.Run()

	stateFile := cmd.String("state-file")
	savePeriodMs := cmd.Int64("save-state-period")
	if savePeriodMs > 0 && stateFile == "" {
		log.Fatalf("--save-state-period requires --state-file")
	}

	testMode := !cmd.IsSet("tick-period") || cmd.Int64("tick-period") <= 0

	gcfg := game.Config{
		Defaults: game.Defaults{
			DogSpeed:          cfgFile.DefaultDogSpeed,
			BagCapacity:       cfgFile.DefaultBagCapacity,
			RetireThresholdMs: cfgFile.RetirementThresholdMs(),
		},
		LootBaseIntervalMs: cfgFile.LootGeneratorConfig.Period * 1000,
		LootProbability:    cfgFile.LootGeneratorConfig.Probability,
		RandomizeSpawn:     cmd.Bool("randomize-spawn-points"),
		TestMode:           testMode,
		SnapshotPath:       stateFile,
		TickObserver:       hub.BroadcastState,
	}
	g := game.New(gcfg, sink, nil)
	defer g.Close()

	for _, m := range maps {
		g.AddMap(m)
	}

	if stateFile != "" {
		if err := g.LoadSnapshot(stateFile); err != nil && !os.IsNotExist(err) {
			log.Printf("loading snapshot %s: %v", stateFile, err)
		}
	}

	apiServer := api.NewServer(g, st, hub)
	mcpClient := mcp.NewClient("http://" + localAddr(cmd.String("addr")))

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		mapID := r.URL.Query().Get("mapId")
		sessionID, ok := g.SessionIDForMap(mapID)
		if !ok {
			http.Error(w, "no live session for that map yet", http.StatusNotFound)
			return
		}
		hub.ServeWS(w, r, sessionID)
	})
	mux.HandleFunc("/mcp", mcpHandler(mcpClient))
	mux.Handle("/", http.FileServer(http.Dir(cmd.String("www-root"))))

	httpServer := &http.Server{
		Addr:         cmd.String("addr"),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("listening on %s", httpServer.Addr)
		log.Printf("REST API: http://%s/api/v1", localAddr(httpServer.Addr))
		log.Printf("WebSocket: ws://%s/ws?mapId=<map_id>", localAddr(httpServer.Addr))
		log.Printf("MCP endpoint: http://%s/mcp", localAddr(httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	if savePeriodMs > 0 {
		wg.Add(1)
		go autosave(bgCtx, &wg, g, stateFile, time.Duration(savePeriodMs)*time.Millisecond)
	}

	if !testMode {
		wg.Add(1)
		go internalTicker(bgCtx, &wg, g, time.Duration(cmd.Int64("tick-period"))*time.Millisecond)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")
	cancelBg()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}

	if stateFile != "" {
		if err := g.SaveSnapshot(stateFile); err != nil {
			log.Printf("saving snapshot on shutdown: %v", err)
		}
	}

	wg.Wait()
	return nil
}

// localAddr turns a listen address like ":8080" into something dialable
// from the same host, for building the MCP client's base URL and for log
// output.
func localAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func internalTicker(ctx context.Context, wg *sync.WaitGroup, g *game.Game, period time.Duration) {
	defer wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Milliseconds()
			last = now
			if err := g.InternalTick(ctx, dt); err != nil {
				log.Printf("internal tick: %v", err)
			}
		}
	}
}

func autosave(ctx context.Context, wg *sync.WaitGroup, g *game.Game, path string, period time.Duration) {
	defer wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.SaveSnapshot(path); err != nil {
				log.Printf("autosave: %v", err)
			}
		}
	}
}

func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	}
}
