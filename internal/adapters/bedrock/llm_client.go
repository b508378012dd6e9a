package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/phishlook/phishlook/internal/core"
	"github.com/phishlook/phishlook/internal/utils"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
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

// NewBedrockClient creates a new Bedrock judgment client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	}
}

func (c *BedrockClient) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic.")
}

func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.Contains(c.modelID, "amazon.titan")
}

// JudgeEmail asks the model for a structured phishing verdict
func (c *BedrockClient) JudgeEmail(ctx context.Context, email *core.EmailRecord) (*core.AIVerdict, error) {
	processedBody := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, email.Sender, email.SenderEmail, email.Subject, processedBody)

	// Request payload depends on the model family
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractResponseText(resp.Body)
	if err != nil {
		return nil, err
	}

	judgment, ok := parseJudgment(responseText)
	if !ok {
		c.logger.Warn("Failed to parse Bedrock judgment, returning degraded verdict",
			zap.String("model", c.modelID))
		return degradedVerdict(c.modelID), nil
	}

	return verdictFromResponse(judgment, c.modelID), nil
}

// extractResponseText pulls the completion text out of the model-specific
// response envelope.
func (c *BedrockClient) extractResponseText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}

	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		return string(body), nil
	}
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

func degradedVerdict(modelID string) *core.AIVerdict {
	return &core.AIVerdict{
		RiskLevel:          core.RiskMedium,
		Confidence:         30,
		SuspiciousPatterns: []string{"parsing failed"},
		Explanation:        "The AI response could not be parsed; treating as uncertain.",
		Recommendation:     "Review the email manually.",
		ModelUsed:          modelID,
		Degraded:           true,
		AnalyzedAt:         time.Now(),
	}
}

func verdictFromResponse(judgment *judgmentResponse, modelID string) *core.AIVerdict {
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
		ModelUsed:          modelID,
		AnalyzedAt:         time.Now(),
	}
}
