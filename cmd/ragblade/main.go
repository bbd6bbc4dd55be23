package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/ragblade"
	"github.com/flarexio/ragblade/llm/openai"
	"github.com/flarexio/ragblade/persistence/chromem"

	mcpE "github.com/flarexio/ragblade/mcp"
	httpT "github.com/flarexio/ragblade/transport/http"
	natsT "github.com/flarexio/ragblade/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "ragblade",
		Usage: "RAGBlade service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the RAGBlade service",
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL",
				Value:   "wss://nats.flarex.io",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Enable HTTP transport",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP server address",
				Value: ":8080",
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = filepath.Join(homeDir, ".flarex", "ragblade")
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	cfg := ragblade.DefaultConfig()

	f, err := os.Open(filepath.Join(path, "config.yaml"))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return err
	}

	cfg.Vector.Path = filepath.Join(path, "vectors")

	vectorDB, err := chromem.NewChromemVectorDB(cfg.Vector)
	if err != nil {
		return err
	}

	generator := openai.NewGenerator(cfg.LLM)

	svc, err := ragblade.NewService(ctx, cfg, vectorDB, generator)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc = ragblade.LoggingMiddleware(log)(svc)

	endpoints := ragblade.EndpointSet{
		AddContext:     ragblade.AddContextEndpoint(svc),
		ClearContext:   ragblade.ClearContextEndpoint(svc),
		CollectionInfo: ragblade.CollectionInfoEndpoint(svc),
		Retrieve:       ragblade.RetrieveEndpoint(svc),
		Ask:            ragblade.AskEndpoint(svc),
	}

	natsURL := cmd.String("nats")
	natsCreds := filepath.Join(path, "user.creds")

	idBytes, err := os.ReadFile(filepath.Join(path, "id"))
	if err != nil {
		return err
	}

	// Add NATS Transport
	{
		edgeID := strings.TrimSpace(string(idBytes))

		nc, err := nats.Connect(natsURL,
			nats.Name("RAGBlade Server - "+edgeID),
			nats.UserCredentials(natsCreds),
		)

		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "ragblade",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		topic := "edges." + edgeID + ".ragblade"

		root := srv.AddGroup(topic)
		natsT.AddEndpoints(root, endpoints)
	}

	httpEnabled := cmd.Bool("http")
	if httpEnabled {
		r := gin.Default()
		httpT.AddRouters(r, endpoints)

		endpoints := make(map[mcp.MCPMethod]mcpE.MCPEndpoint)
		endpoints[mcp.MethodInitialize] = mcpE.InitializeEndpoint(svc)
		endpoints[mcp.MethodPing] = mcpE.PingEndpoint(svc)
		endpoints[mcp.MethodToolsList] = mcpE.ListToolsEndpoint(svc)
		endpoints[mcp.MethodToolsCall] = mcpE.CallToolEndpoint(svc)
		httpT.AddStreamableRouters(r, endpoints)

		httpAddr := cmd.String("http-addr")
		go r.Run(httpAddr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("graceful shutdown", zap.String("signal", sign.String()))
	return nil
}
