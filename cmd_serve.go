package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blog_ai_editor/generator"
	"blog_ai_editor/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AI transformation endpoint and the posts API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		llm, err := generator.NewLLM(generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			return err
		}
		agent, err := generator.NewAgent(llm, logger)
		if err != nil {
			return err
		}
		repo, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		srv, err := server.New(agent, repo, server.Options{
			RateLimit: cfg.RateLimit.RPS,
			Burst:     cfg.RateLimit.Burst,
			Timeout:   cfg.Assistant.Timeout(),
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		logger.Info("starting web server",
			zap.String("addr", listen),
			zap.String("llm", cfg.LLM.Provider),
			zap.String("store", cfg.Store.Driver))
		return http.ListenAndServe(listen, srv.Routes())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config server_addr)")
}
