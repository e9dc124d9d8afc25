// mcp-jenkins-intelligence is an MCP server that exposes Jenkins pipeline
// operations, health analytics, and Jenkinsfile reconstruction to MCP clients
// over stdio or streamable HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/heniv96/mcp-jenkins-intelligence/internal/appconfig"
	"github.com/heniv96/mcp-jenkins-intelligence/internal/jenkins"
	"github.com/heniv96/mcp-jenkins-intelligence/internal/recon"
)

const serverVersion = "0.2.0"

func main() {
	cfg := appconfig.Load()

	var (
		urlFlag  string
		authFlag string
		httpAddr string
		useStdio bool
	)
	flag.StringVar(&urlFlag, "url", "", "Jenkins URL (overrides JENKINS_URL)")
	flag.StringVar(&authFlag, "auth", "", "Jenkins authentication in format 'user:api_token' (overrides env)")
	flag.StringVar(&httpAddr, "http", "", "if set, use streamable HTTP at this address, instead of stdin/stdout")
	flag.BoolVar(&useStdio, "stdio", true, "use stdio transport (ignored if -http is set)")
	flag.Parse()

	if urlFlag != "" {
		cfg.JenkinsURL = urlFlag
	}
	if authFlag != "" {
		if user, token, ok := strings.Cut(authFlag, ":"); ok {
			cfg.JenkinsUsername, cfg.JenkinsToken = user, token
		} else {
			fmt.Fprintln(os.Stderr, "Error: -auth must be in format 'user:api_token'")
			os.Exit(1)
		}
	}

	if cfg.JenkinsURL == "" {
		fmt.Fprintln(os.Stderr, "Error: Jenkins URL required via -url or JENKINS_URL")
		os.Exit(1)
	}
	if cfg.JenkinsUsername == "" || cfg.JenkinsToken == "" {
		fmt.Fprintln(os.Stderr, "Error: authentication required via -auth, JENKINS_USERNAME/JENKINS_TOKEN, or JENKINS_MCP_AUTH")
		os.Exit(1)
	}

	// The MCP stdio transport owns stdout; all logging goes to stderr.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	client := jenkins.New(cfg.JenkinsURL, cfg.JenkinsUsername, cfg.JenkinsToken, cfg.Timeout, logger)
	service := recon.NewService(client, cfg.MaxBuilds, cfg.CacheTTL, logger)

	app := &application{
		client:  client,
		service: service,
		cfg:     cfg,
		log:     logger,
	}

	logger.Info().Str("url", cfg.JenkinsURL).Str("user", cfg.JenkinsUsername).Msg("connecting to Jenkins")

	server := mcp.NewServer(&mcp.Implementation{Name: "mcp-jenkins-intelligence", Version: serverVersion}, nil)
	app.addTools(server)
	app.addResources(server)
	app.addPrompts(server)

	if httpAddr != "" {
		handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return server }, nil)
		logger.Info().Str("addr", httpAddr).Msg("starting MCP HTTP server")
		if err := http.ListenAndServe(httpAddr, handler); err != nil {
			logger.Fatal().Err(err).Msg("http server error")
		}
	} else if useStdio {
		logger.Info().Msg("starting MCP server over stdio")
		t := &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr}
		if err := server.Run(context.Background(), t); err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	} else {
		fmt.Fprintln(os.Stderr, "Error: no transport selected. Use -http or -stdio.")
		os.Exit(1)
	}
}

// application bundles the shared dependencies of the MCP handlers.
type application struct {
	client  *jenkins.Client
	service *recon.Service
	cfg     appconfig.Config
	log     zerolog.Logger
}
