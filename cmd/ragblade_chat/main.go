package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/flarexio/ragblade"

	natsT "github.com/flarexio/ragblade/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "ragblade_chat",
		Usage: "Interactive RAGBlade chat client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL",
				Value:   "wss://nats.flarex.io",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:     "edge-id",
				Usage:    "Edge ID for connecting to the RAGBlade service",
				Required: true,
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
	edgeID := cmd.String("edge-id")
	natsURL := cmd.String("nats")
	natsCreds := cmd.String("nats-creds")

	nc, err := nats.Connect(natsURL,
		nats.Name("RAGBlade Chat - "+edgeID),
		nats.UserCredentials(natsCreds),
	)

	if err != nil {
		return err
	}
	defer nc.Drain()

	topic := fmt.Sprintf("edges.%s.ragblade", edgeID)
	endpoints := natsT.MakeEndpoints(nc, topic)

	var svc ragblade.Service
	svc = ragblade.ProxyMiddleware(endpoints)(svc)

	printHelp()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\nYour query: ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Println("Please enter a query or a command (type '/help' for options).")
			continue
		}

		if strings.HasPrefix(input, "/") {
			if done := runCommand(ctx, svc, scanner, input); done {
				break
			}

			continue
		}

		answer, err := svc.Ask(ctx, input)
		if err != nil {
			fmt.Println("Error:", err.Error())
			continue
		}

		fmt.Println(answer)
	}

	fmt.Println("Goodbye!")
	return nil
}

func runCommand(ctx context.Context, svc ragblade.Service, scanner *bufio.Scanner, input string) bool {
	switch strings.ToLower(input) {
	case "/bye":
		return true

	case "/help":
		printHelp()

	case "/info":
		info, err := svc.CollectionInfo(ctx)
		if err != nil {
			fmt.Println("Error:", err.Error())
			break
		}

		fmt.Printf("Collection %q holds %d document(s)\n", info.Name, info.Count)

	case "/clear":
		if err := svc.ClearContext(ctx); err != nil {
			fmt.Println("Error:", err.Error())
			break
		}

		fmt.Println("Context cleared.")

	case "/context":
		content, ok := readMultiline(scanner)
		if !ok {
			fmt.Println("Context input cancelled.")
			break
		}

		if err := svc.AddContext(ctx, content, "chat_input"); err != nil {
			fmt.Println("Error:", err.Error())
			break
		}

		fmt.Println("Context added.")

	default:
		fmt.Printf("Unknown command: %s\nType '/help' to see available commands.\n", input)
	}

	return false
}

// readMultiline collects lines until END, or returns false on CANCEL or EOF.
func readMultiline(scanner *bufio.Scanner) (string, bool) {
	fmt.Println("Enter your multi-line context below.")
	fmt.Println("Type 'END' on a new line when finished, or 'CANCEL' to abort.")

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()

		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "END":
			return strings.Join(lines, "\n"), true
		case "CANCEL":
			return "", false
		default:
			lines = append(lines, line)
		}
	}

	return "", false
}

func printHelp() {
	fmt.Println("RAGBlade interactive chat")
	fmt.Println("  /context  add multi-line context to the collection")
	fmt.Println("  /clear    remove all stored context")
	fmt.Println("  /info     show collection info")
	fmt.Println("  /help     show this help")
	fmt.Println("  /bye      exit")
	fmt.Println("Anything else is sent as a query.")
}
