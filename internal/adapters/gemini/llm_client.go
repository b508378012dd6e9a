package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	promptFormat  string
	textProcessor *utils.TextProcessor
}

// judgmentResponse is the structured verdict expected back from the model
type judgmentResponse struct {
	RiskLevel          string   `json:"risk_level"`
	Confidence         int      `json:"confidence"`
	SuspiciousPatterns []string `json:"suspicious_patterns"`
	Explanation        string   `json:"explanation"`
	Recommendation     string   `json:"recommendation"`
}

// NewGeminiClient creates a new Gemini judgment client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a phishing detection system. Analyze the following email and assess how likely it is to be a phishing attempt.
Respond with a JSON object containing:
- risk_level: one of "low", "medium", "high"
- confidence: integer between 0 and 100
- suspicious_patterns: array of strings naming the manipulation patterns you noticed
- explanation: string (brief explanation of your assessment)
- recommendation: string (what the recipient should do with this email)

Email:
From: %s <%s>
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// JudgeEmail asks the model for a structured phishing verdict
func (c *GeminiClient) JudgeEmail(ctx context.Context, email *core.EmailRecord) (*core.AIVerdict, error) {
	processedBody := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, email.Sender, email.SenderEmail, email.Subject, processedBody)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	judgment, ok := parseJudgment(responseText)
	if !ok {
		c.logger.Warn("Failed to parse Gemini judgment, returning degraded verdict",
			zap.String("model", c.modelName))
		return degradedVerdict(c.modelName), nil
	}

	return verdictFromResponse(judgment, c.modelName), nil
}

func parseJudgment(responseText string) (*judgmentResponse, bool) {
	var judgment judgmentResponse
	if err := json.Unmarshal([]byte(responseText), &judgment); err == nil {
		return &judgment, true
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, false
	}

	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &judgment); err != nil {
		return nil, false
	}
	return &judgment, true
}

func degradedVerdict(modelName string) *core.AIVerdict {
	return &core.AIVerdict{
		RiskLevel:          core.RiskMedium,
		Confidence:         30,
		SuspiciousPatterns: []string{"parsing failed"},
		Explanation:        "The AI response could not be parsed; treating as uncertain.",
		Recommendation:     "Review the email manually.",
		ModelUsed:          modelName,
		Degraded:           true,
		AnalyzedAt:         time.Now(),
	}
}

func verdictFromResponse(judgment *judgmentResponse, modelName string) *core.AIVerdict {
	confidence := judgment.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	level := core.RiskMedium
	switch strings.ToLower(strings.TrimSpace(judgment.RiskLevel)) {
	case "low":
		level = core.RiskLow
	case "high":
		level = core.RiskHigh
	}

	return &core.AIVerdict{
		RiskLevel:          level,
		Confidence:         confidence,
		SuspiciousPatterns: judgment.SuspiciousPatterns,
		Explanation:        judgment.Explanation,
		Recommendation:     judgment.Recommendation,
		ModelUsed:          modelName,
		AnalyzedAt:         time.Now(),
	}
}
