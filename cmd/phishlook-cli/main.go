package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/phishlook/phishlook/internal/config"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/factory"
	"github.com/phishlook/phishlook/internal/heuristic"
	"github.com/phishlook/phishlook/internal/logging"
	"github.com/phishlook/phishlook/internal/mailparse"
	"github.com/phishlook/phishlook/internal/phishdb"
	"github.com/phishlook/phishlook/internal/utils"
	"github.com/phishlook/phishlook/internal/whitelist"
	"go.uber.org/zap"
)

var (
	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")

	// Analysis flags
	whitelistDomains = flag.String("whitelist", "", "Comma-separated list of whitelisted domains")
	dbPath           = flag.String("db", "", "Path to phishing URL database (JSON)")
	useAI            = flag.Bool("ai", false, "Also request an AI judgment")

	// LLM provider flags
	provider    = flag.String("provider", "openai", "LLM provider (bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Parse whitelisted domains
	var whitelistedDomains []string
	if *whitelistDomains != "" {
		whitelistedDomains = strings.Split(*whitelistDomains, ",")
		for i, domain := range whitelistedDomains {
			whitelistedDomains[i] = strings.TrimSpace(domain)
		}
	} else {
		whitelistedDomains = cfg.GetStringSlice("analysis.whitelisted_domains")
	}

	if len(whitelistedDomains) > 0 {
		logger.Info("Using whitelisted domains", zap.Strings("domains", whitelistedDomains))
	}

	whitelistChecker := whitelist.NewChecker(whitelistedDomains, logger)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	email, err := mailparse.RecordFromMessage(msg)
	if err != nil {
		logger.Fatal("Failed to extract email content", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.Sender)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	fmt.Printf("\n")

	startTime := time.Now()

	// Check if sender domain is whitelisted
	if whitelistChecker.IsWhitelisted(email.SenderEmail) {
		fmt.Printf("=== Results ===\n")
		fmt.Printf("Risk level: %s (sender domain is whitelisted)\n", core.RiskLow)
		fmt.Printf("Suspicion score: 0\n")
		fmt.Printf("Processing time: %v\n", time.Since(startTime))
		return
	}

	// Run the heuristic analysis
	detector := heuristic.NewDetector(logger)
	result, err := detector.Analyze(context.Background(), email)
	if err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}

	printResult(result, time.Since(startTime))

	// Check extracted links against the local phishing database
	if *dbPath != "" {
		checkLinks(logger, result)
	}

	// Optionally ask the AI judgment layer for a second opinion
	if *useAI {
		judgeEmail(cfg, logger, email)
	}
}

func printResult(result *core.AnalysisResult, duration time.Duration) {
	fmt.Printf("=== Results ===\n")
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	fmt.Printf("Suspicion score: %d\n", result.SuspicionScore)
	fmt.Printf("Explanation: %s\n", result.Explanation)
	fmt.Printf("Processing time: %v\n", duration)

	d := result.Details
	fmt.Printf("\n=== Signals ===\n")
	fmt.Printf("Pattern matches: urgency=%d authority=%d threats=%d credentials=%d rewards=%d (total %d)\n",
		d.Patterns.Urgency, d.Patterns.Authority, d.Patterns.Threats,
		d.Patterns.Credentials, d.Patterns.Rewards, d.Patterns.Total)
	fmt.Printf("Sentiment: raw=%.2f suspicion=%.2f\n", d.Sentiment.RawScore, d.Sentiment.Suspicion)
	fmt.Printf("Punctuation suspicion: %.2f\n", d.Punctuation.Suspicion)
	fmt.Printf("Links: %d suspicious of %d\n", d.Links.SuspiciousCount, d.Links.TotalCount)
	for _, link := range d.Links.Links {
		if link.IsSuspicious {
			fmt.Printf("  - %s (%s)\n", link.URL, strings.Join(link.Reasons, ", "))
		}
	}
	fmt.Printf("Attachments: %d suspicious of %d\n", d.Attachments.SuspiciousCount, d.Attachments.TotalCount)
	for _, att := range d.Attachments.Attachments {
		if att.IsSuspicious {
			fmt.Printf("  - %s [%s] (%s)\n", att.Filename, att.RiskLevel, strings.Join(att.Reasons, ", "))
		}
	}
}

func checkLinks(logger *zap.Logger, result *core.AnalysisResult) {
	store := phishdb.NewStore(logger)
	if err := store.LoadFile(*dbPath); err != nil {
		logger.Fatal("Failed to load phishing database", zap.Error(err))
	}

	urls := make([]string, 0, len(result.Details.Links.Links))
	for _, link := range result.Details.Links.Links {
		urls = append(urls, link.URL)
	}

	fmt.Printf("\n=== URL Database ===\n")
	if len(urls) == 0 {
		fmt.Printf("No links to check\n")
		return
	}

	for _, verdict := range store.CheckAll(urls) {
		if verdict.IsPhish {
			fmt.Printf("LISTED: %s (verified=%s online=%s target=%s)\n",
				verdict.URL, verdict.Verified, verdict.Online, verdict.Target)
		} else {
			fmt.Printf("not listed: %s\n", verdict.URL)
		}
	}
}

func judgeEmail(cfg *config.Config, logger *zap.Logger, email *core.EmailRecord) {
	textProcessor := utils.NewTextProcessor(logger)
	llmFactory := factory.NewLLMFactory(cfg, logger, textProcessor)
	llmClient, err := llmFactory.CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	if llmClient == nil {
		fmt.Printf("\n=== AI Judgment ===\nAI judgment layer disabled\n")
		return
	}

	startTime := time.Now()
	verdict, err := llmClient.JudgeEmail(context.Background(), email)
	if err != nil {
		logger.Fatal("AI judgment failed", zap.Error(err))
	}

	fmt.Printf("\n=== AI Judgment ===\n")
	fmt.Printf("Risk level: %s\n", verdict.RiskLevel)
	fmt.Printf("Confidence: %d\n", verdict.Confidence)
	if len(verdict.SuspiciousPatterns) > 0 {
		fmt.Printf("Suspicious patterns: %s\n", strings.Join(verdict.SuspiciousPatterns, ", "))
	}
	fmt.Printf("Explanation: %s\n", verdict.Explanation)
	fmt.Printf("Recommendation: %s\n", verdict.Recommendation)
	fmt.Printf("Model used: %s\n", verdict.ModelUsed)
	if verdict.Degraded {
		fmt.Printf("Degraded: model response could not be fully parsed\n")
	}
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", *provider)
	v.Set("llm.enabled", *useAI)

	// Set provider-specific configuration
	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	}

	// Set whitelisted domains
	if *whitelistDomains != "" {
		domains := strings.Split(*whitelistDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("analysis.whitelisted_domains", domains)
	} else {
		v.Set("analysis.whitelisted_domains", []string{})
	}

	return config.NewFromViper(v)
}
