package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pashuai/pashuai-backend/internal/apierr"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/types"
)

const (
	adviceFallback = "I apologize, I couldn't generate a response. Please try again."
	imageFallback  = "I apologize, I couldn't analyze the image. Please try again with a clearer image."
)

// HistoryEntry is one prior turn handed to the model, role-for-role.
type HistoryEntry struct {
	Role    string
	Content string
}

// AdvisorService turns conversation state into a single external model call
// and back. One non-streaming call per request; failures propagate to the
// route layer as upstream errors.
type AdvisorService interface {
	GenerateAdvice(ctx context.Context, userMessage string, history []HistoryEntry, language string) (string, error)
	AnalyzeImage(ctx context.Context, imageBytes []byte, mimeType, userMessage, language string) (string, error)
}

type advisorService struct {
	log    *logger.Logger
	client *openai.Client
	model  string
}

func NewAdvisorService(log *logger.Logger, apiKey, baseURL, model string) AdvisorService {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &advisorService{
		log:    log.With("service", "AdvisorService"),
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (s *advisorService) GenerateAdvice(ctx context.Context, userMessage string, history []HistoryEntry, language string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: adviceSystemPrompt(language),
	})
	for _, entry := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    historyRole(entry.Role),
			Content: entry.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", apierr.Upstream(fmt.Errorf("advice generation failed: %w", err))
	}
	return responseText(resp, adviceFallback), nil
}

func (s *advisorService) AnalyzeImage(ctx context.Context, imageBytes []byte, mimeType, userMessage, language string) (string, error) {
	caption := userMessage
	if strings.TrimSpace(caption) == "" {
		caption = "Please analyze this image and provide detailed agricultural insights."
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: imageSystemPrompt(language),
		},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: dataURL(mimeType, imageBytes),
					},
				},
				{
					Type: openai.ChatMessagePartTypeText,
					Text: caption,
				},
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", apierr.Upstream(fmt.Errorf("image analysis failed: %w", err))
	}
	return responseText(resp, imageFallback), nil
}

func historyRole(role string) string {
	if role == types.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

func responseText(resp openai.ChatCompletionResponse, fallback string) string {
	if len(resp.Choices) == 0 {
		return fallback
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return fallback
	}
	return text
}

func dataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func adviceSystemPrompt(language string) string {
	return fmt.Sprintf(`You are PashuAI, an expert agricultural AI assistant with deep knowledge of:
- Crop management (planting, irrigation, fertilization, harvesting)
- Livestock care (cattle, buffalo, goats - health, breeding, nutrition)
- Disease detection and prevention for crops and animals
- Market intelligence and pricing trends
- Weather patterns and their impact on agriculture
- Sustainable farming practices
- Indian agricultural seasons (Kharif, Rabi, Zaid)

Provide practical, actionable advice in %s.
Be concise but thorough. Use simple language that farmers can understand.
If discussing prices, use Indian Rupees (₹).
Consider Indian agricultural context and practices.`, LanguageName(language))
}

func imageSystemPrompt(language string) string {
	return fmt.Sprintf(`You are PashuAI, an expert agricultural AI assistant specializing in visual analysis of:
- Crop diseases, pests, and nutrient deficiencies
- Livestock health issues (cattle, buffalo, goats, sheep)
- Animal diseases and conditions
- Soil quality and conditions
- Plant growth stages and health
- Equipment and farming practices

Provide detailed analysis in %s:
1. Identify what you see in the image
2. Diagnose any issues, diseases, or problems
3. Explain the severity and potential impact
4. Provide specific treatment recommendations
5. Suggest preventive measures

Be specific, practical, and use simple language farmers can understand. If discussing costs, use Indian Rupees (₹).`, LanguageName(language))
}

var languageNames = map[string]string{
	"en":   "English",
	"hi":   "Hindi (हिन्दी)",
	"bn":   "Bengali (বাংলা)",
	"te":   "Telugu (తెలుగు)",
	"mr":   "Marathi (मराठी)",
	"ta":   "Tamil (தமிழ்)",
	"ur":   "Urdu (اردو)",
	"gu":   "Gujarati (ગુજરાતી)",
	"kn":   "Kannada (ಕನ್ನಡ)",
	"ml":   "Malayalam (മലയാളം)",
	"or":   "Odia (ଓଡ଼ିଆ)",
	"pa":   "Punjabi (ਪੰਜਾਬੀ)",
	"as":   "Assamese (অসমীয়া)",
	"bho":  "Bhojpuri (भोजपुरी)",
	"mag":  "Magahi (मगही)",
	"mai":  "Maithili (मैथिली)",
	"raj":  "Rajasthani (राजस्थानी)",
	"chhg": "Chhattisgarhi (छत्तीसगढ़ी)",
	"sd":   "Sindhi (سنڌي)",
	"ks":   "Kashmiri (كٲشُر)",
	"ne":   "Nepali (नेपाली)",
	"sa":   "Sanskrit (संस्कृतम्)",
	"kok":  "Konkani (कोंकणी)",
	"mni":  "Manipuri (ꯃꯩꯇꯩꯂꯣꯟ)",
	"sat":  "Santali (ᱥᱟᱱᱛᱟᱲᱤ)",
}

// LanguageName maps a language code to the display name used in prompts.
// Unknown codes fall back to English; the stored language value on the
// conversation is preserved verbatim regardless.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
