package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	plannerx "github.com/vahanlabs/loanflow/agent/planner"
	promptx "github.com/vahanlabs/loanflow/agent/prompt"
	schemax "github.com/vahanlabs/loanflow/agent/schema"
	statex "github.com/vahanlabs/loanflow/agent/state"
	toolx "github.com/vahanlabs/loanflow/agent/tool"
	turnx "github.com/vahanlabs/loanflow/agent/turn"
	configx "github.com/vahanlabs/loanflow/pkg/config"
	_ "github.com/vahanlabs/loanflow/pkg/logger/autoload"
	notifyx "github.com/vahanlabs/loanflow/pkg/notify"
	openrouterx "github.com/vahanlabs/loanflow/pkg/openrouter"
	retryx "github.com/vahanlabs/loanflow/pkg/retry"
)

type AppConfig struct {
	SessionID string `envconfig:"SESSION_ID"`

	// Optional backends. When unset the store falls back to memory and OTP
	// delivery is logged instead of published.
	UpstashRedisURL string `envconfig:"UPSTASH_REDIS_URL"`
	NotifyURL       string `envconfig:"NOTIFY_URL"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if err := openrouterx.VerifyCredentials(ctx, *openRouterCfg); err != nil {
		log.Warn().Err(err).Msg("openrouter credential check failed; continuing anyway")
	}
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		panic(err)
	}

	schemas := schemax.DefaultRegistry()

	retryCfg := configx.MustNew[retryx.Policy]("PLANNER_RETRY")
	plannerAdapter, err := plannerx.New(ctx, chatModel, promptx.System(), schemas, *retryCfg)
	if err != nil {
		panic(err)
	}

	store := buildStore(appCfg)
	notifier := buildNotifier(appCfg)
	tools := toolx.NewDefault(toolx.Deps{Notifier: notifier})

	orchestrator, err := turnx.New(store, plannerAdapter, schemas, tools)
	if err != nil {
		panic(err)
	}

	sessionID := strings.TrimSpace(appCfg.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log.Info().Str("session_id", sessionID).Msg("loan assistant ready")

	runChatLoop(ctx, orchestrator, sessionID)
}

func buildStore(appCfg *AppConfig) statex.Store {
	if strings.TrimSpace(appCfg.UpstashRedisURL) == "" {
		log.Info().Msg("no redis configured, using in-memory session store")
		return statex.NewMemoryStore()
	}

	redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	store, err := statex.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		panic(err)
	}
	return store
}

func buildNotifier(appCfg *AppConfig) toolx.Notifier {
	if strings.TrimSpace(appCfg.NotifyURL) == "" {
		log.Info().Msg("no notify endpoint configured, otp delivery is local only")
		return nil
	}

	notifyCfg := configx.MustNew[notifyx.Config]("NOTIFY")
	return notifyx.MustNewPublisher(*notifyCfg)
}

func runChatLoop(ctx context.Context, orchestrator *turnx.Orchestrator, sessionID string) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Vehicle loan assistant. Type a message, or \"exit\" to quit.")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return
		}

		result := orchestrator.ProcessTurn(ctx, sessionID, line)
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("encode turn result")
			continue
		}
		fmt.Println(string(encoded))
	}
}
