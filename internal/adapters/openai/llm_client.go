package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewOpenAIClient creates a new OpenAI judgment client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat:  judgmentPromptFormat,
	}
}

const judgmentPromptFormat = `You are a phishing detection system. Analyze the following email and assess how likely it is to be a phishing attempt.
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

Respond only with the JSON object and nothing else.`

// JudgeEmail asks the model for a structured phishing verdict
func (c *OpenAIClient) JudgeEmail(ctx context.Context, email *core.EmailRecord) (*core.AIVerdict, error) {
	processedBody := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, email.Sender, email.SenderEmail, email.Subject, processedBody)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

	judgment, ok := parseJudgment(responseText)
	if !ok {
		c.logger.Warn("Failed to parse OpenAI judgment, returning degraded verdict",
			zap.String("model", c.modelName))
		verdict := degradedVerdict(c.modelName)
		verdict.ProcessingID = resp.ID
		return verdict, nil
	}

	verdict := verdictFromResponse(judgment, c.modelName)
	verdict.ProcessingID = resp.ID
	return verdict, nil
}

// parseJudgment unmarshals the model output, retrying on the outermost JSON
// object when the model wrapped it in prose.
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

// degradedVerdict is the fallback for unparseable model output. It is a
// low-confidence middle-ground verdict, never a crash.
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

	return &core.AIVerdict{
		RiskLevel:          normalizeRiskLevel(judgment.RiskLevel),
		Confidence:         confidence,
		SuspiciousPatterns: judgment.SuspiciousPatterns,
		Explanation:        judgment.Explanation,
		Recommendation:     judgment.Recommendation,
		ModelUsed:          modelName,
		AnalyzedAt:         time.Now(),
	}
}

func normalizeRiskLevel(raw string) core.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return core.RiskLow
	case "high":
		return core.RiskHigh
	default:
		return core.RiskMedium
	}
}
