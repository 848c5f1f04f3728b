// Command tripflow runs the TripFlow conversational core as an interactive
// console session: it tracks conversation state turn by turn, composes the
// instruction prompt, and optionally relays it to the LLM.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
	"github.com/tripflowai/tripflow/internal/catalog"
	"github.com/tripflowai/tripflow/internal/emotion"
	"github.com/tripflowai/tripflow/internal/genai"
	"github.com/tripflowai/tripflow/internal/instruction"
	"github.com/tripflowai/tripflow/internal/intent"
	"github.com/tripflowai/tripflow/internal/lockfile"
	"github.com/tripflowai/tripflow/internal/models"
	"github.com/tripflowai/tripflow/internal/store"
	"github.com/tripflowai/tripflow/internal/tracker"
	"github.com/tripflowai/tripflow/internal/util"
)

// DefaultBaseInstruction is the base prompt every composed instruction starts from.
const DefaultBaseInstruction = "You are TripFlow, a travel assistant for a Turkish travel agency. " +
	"Help the traveler plan, compare, and book their trip."

// Config holds environment configuration.
type Config struct {
	DatabaseURL   string
	OpenAIKey     string
	CatalogFile   string
	TemplatesFile string
	Debug         bool
}

// Flags holds command line flag values.
type Flags struct {
	dbDSN         *string
	openaiKey     *string
	catalogFile   *string
	templatesFile *string
	debug         *bool
	relay         *bool
}

func main() {
	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)
	initializeLogger(*flags.debug)

	if err := run(flags); err != nil {
		slog.Error("TripFlow failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("TripFlow exited successfully")
}

// initializeLogger sets up structured logging.
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		DatabaseURL:   os.Getenv("TRIPFLOW_DB_DSN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		CatalogFile:   os.Getenv("TRIPFLOW_CATALOG_FILE"),
		TemplatesFile: os.Getenv("TRIPFLOW_TEMPLATES_FILE"),
		Debug:         util.ParseBoolEnv("TRIPFLOW_DEBUG", false),
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN for the state store (overrides $TRIPFLOW_DB_DSN or $DATABASE_URL); empty means in-memory"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		catalogFile:   flag.String("catalog", config.CatalogFile, "YAML flow catalog override (overrides $TRIPFLOW_CATALOG_FILE)"),
		templatesFile: flag.String("templates", config.TemplatesFile, "YAML instruction template override (overrides $TRIPFLOW_TEMPLATES_FILE)"),
		debug:         flag.Bool("debug", config.Debug, "enable debug logging"),
		relay:         flag.Bool("relay", false, "relay composed instructions to the LLM and print its reply"),
	}
	flag.Parse()
	return flags
}

// buildStoreOptions constructs store configuration options.
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_set", true)
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

func run(flags Flags) error {
	if *flags.dbDSN != "" && store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		lock, err := lockfile.Acquire(filepath.Dir(*flags.dbDSN))
		if err != nil {
			return fmt.Errorf("failed to lock state directory: %w", err)
		}
		defer lock.Release()
	}

	st, err := store.New(buildStoreOptions(flags)...)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	flowCatalog := catalog.Default()
	if *flags.catalogFile != "" {
		flowCatalog, err = catalog.Load(*flags.catalogFile)
		if err != nil {
			return fmt.Errorf("failed to load flow catalog: %w", err)
		}
	}

	var classifier intent.Classifier = intent.NewKeywordClassifier()
	var genaiClient genai.ClientInterface
	if *flags.openaiKey != "" {
		client, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
		if err != nil {
			return fmt.Errorf("failed to initialize GenAI client: %w", err)
		}
		genaiClient = client
		classifier = intent.NewGenAIClassifier(client)
		slog.Info("Using GenAI intent classifier")
	} else {
		slog.Info("No OpenAI API key configured, using keyword intent classifier")
	}

	templates := instruction.DefaultTemplates()
	if *flags.templatesFile != "" {
		templates, err = instruction.LoadTemplates(*flags.templatesFile)
		if err != nil {
			return fmt.Errorf("failed to load instruction templates: %w", err)
		}
	}

	maxSessions := util.ParseIntEnv("TRIPFLOW_MAX_SESSIONS", tracker.DefaultMaxSessions)
	sessionTTL := util.ParseDurationEnv("TRIPFLOW_SESSION_TTL", tracker.DefaultSessionTTL)

	tr := tracker.New(classifier,
		tracker.WithCatalog(flowCatalog),
		tracker.WithStore(st),
		tracker.WithMaxSessions(maxSessions),
		tracker.WithSessionTTL(sessionTTL),
	)
	registry := instruction.NewRegistry(templates)
	effectivenessLog := instruction.NewEffectivenessLog(instruction.WithLogStore(st))
	engine := instruction.NewEngine(registry, effectivenessLog)

	return consoleLoop(tr, engine, effectivenessLog, genaiClient, *flags.relay)
}

// attachEmotion fills the optional emotional signal from the heuristic
// detector; a neutral read leaves the signal absent.
func attachEmotion(genCtx *models.GenerationContext, detector *emotion.Detector, sessionID, message string) {
	primary, confidence := detector.Detect(sessionID, message)
	if primary == "neutral" || confidence == 0 {
		return
	}
	genCtx.EmotionalState = &models.EmotionalState{Primary: primary, Confidence: confidence}
}

// consoleLoop reads user messages from stdin and prints the tracked state and
// composed instruction for each turn.
func consoleLoop(tr *tracker.Tracker, engine *instruction.Engine, effectivenessLog *instruction.EffectivenessLog, genaiClient genai.ClientInterface, relay bool) error {
	ctx := context.Background()
	sessionID := util.GenerateSessionID()
	detector := emotion.NewDetector()
	lastBotResponse := ""

	fmt.Printf("TripFlow console session %s\n", sessionID)
	fmt.Println("Commands: /state, /analytics, /score <quality> <engagement>, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if done := handleCommand(line, tr, effectivenessLog, sessionID); done {
				break
			}
			continue
		}

		state := tr.Update(ctx, tracker.UpdateRequest{
			SessionID:   sessionID,
			UserMessage: line,
			BotResponse: lastBotResponse,
		})

		genCtx := models.ContextFromState(state, intent.DetectLanguage(line))
		attachEmotion(&genCtx, detector, sessionID, line)
		set := engine.Generate(ctx, DefaultBaseInstruction, genCtx, sessionID)

		fmt.Printf("[phase=%s conversion=%.2f urgency=%s level=%s templates=%d]\n",
			state.CurrentPhase, state.ConversionProbability, state.UrgencyLevel,
			set.OptimizationLevel, len(set.EnhancedInstructions))

		if relay && genaiClient != nil {
			reply, err := genaiClient.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(set.ComposedInstruction),
				openai.UserMessage(line),
			})
			if err != nil {
				slog.Error("LLM relay failed", "error", err)
				continue
			}
			lastBotResponse = reply
			fmt.Println(reply)
		} else {
			fmt.Println(set.ComposedInstruction)
		}
	}
	return scanner.Err()
}

// handleCommand processes a console command; it reports whether to exit.
func handleCommand(line string, tr *tracker.Tracker, effectivenessLog *instruction.EffectivenessLog, sessionID string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/state":
		state := tr.GetState(sessionID)
		if state == nil {
			fmt.Println("no state yet")
			return false
		}
		fmt.Printf("phase=%s messages=%d conversion=%.2f urgency=%s info=%+v\n",
			state.CurrentPhase, state.MessageCount, state.ConversionProbability,
			state.UrgencyLevel, state.CollectedInfo)
	case "/analytics":
		analytics := effectivenessLog.Analytics()
		fmt.Printf("records=%d scored=%d meanEffectiveness=%.2f usage=%v levels=%v\n",
			analytics.TotalRecords, analytics.ScoredRecords, analytics.MeanEffectiveness,
			analytics.TemplateUsage, analytics.LevelDistribution)
	case "/score":
		if len(fields) != 3 {
			fmt.Println("usage: /score <quality 0-1> <engagement 0-1>")
			return false
		}
		quality, err1 := strconv.ParseFloat(fields[1], 64)
		engagement, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			fmt.Println("usage: /score <quality 0-1> <engagement 0-1>")
			return false
		}
		effectivenessLog.UpdateEffectiveness(sessionID, quality, engagement)
		fmt.Println("recorded")
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}
