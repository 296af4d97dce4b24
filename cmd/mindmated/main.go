package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Nithin218/MindMate-AI/config"
	"github.com/Nithin218/MindMate-AI/internal/agent/core"
	"github.com/Nithin218/MindMate-AI/internal/agent/telemetry"
	srv "github.com/Nithin218/MindMate-AI/internal/server"
)

func main() {
	// missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "mindmated"}

	var cfgPath string
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml")

	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if serveAddr == "" {
				serveAddr = os.Getenv("MINDMATE_HTTP_ADDR")
			}
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address")

	var showTrace bool
	var ask = &cobra.Command{
		Use:   "ask [question]",
		Short: "Run a single query through the pipeline and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			tele := telemetry.NewTelemetry(cfg.Telemetry)
			logger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
			orch, err := core.NewOrchestrator(cfg, logger, tele)
			if err != nil {
				return err
			}
			defer func() { _ = orch.Close() }()

			question := args[0]
			for _, a := range args[1:] {
				question += " " + a
			}
			result, err := orch.Run(context.Background(), question)
			if err != nil {
				return err
			}
			fmt.Println(result.Answer)
			if showTrace {
				for _, entry := range result.Trace {
					fmt.Fprintf(os.Stderr, "%s: %s (%s, %dms)\n",
						entry.Role, entry.Content, entry.Model, entry.Duration.Milliseconds())
				}
			}
			return nil
		},
	}
	ask.Flags().BoolVar(&showTrace, "trace", false, "print per-step trace to stderr")

	root.AddCommand(serve, ask)
	_ = root.Execute()
}
