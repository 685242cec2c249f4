package services

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pashuai/pashuai-backend/internal/types"
)

func TestLanguageName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{code: "en", want: "English"},
		{code: "hi", want: "Hindi (हिन्दी)"},
		{code: "ta", want: "Tamil (தமிழ்)"},
		{code: "sat", want: "Santali (ᱥᱟᱱᱛᱟᱲᱤ)"},
		{code: "xx", want: "English"},
		{code: "", want: "English"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			if got := LanguageName(tc.code); got != tc.want {
				t.Errorf("LanguageName(%q) = %q, want %q", tc.code, got, tc.want)
			}
		})
	}
}

func TestLanguageTableSize(t *testing.T) {
	if len(languageNames) != 25 {
		t.Errorf("language table has %d entries, want 25", len(languageNames))
	}
}

func TestSystemPromptsEmbedLanguage(t *testing.T) {
	prompt := adviceSystemPrompt("hi")
	if !strings.Contains(prompt, "Hindi (हिन्दी)") {
		t.Error("advice prompt does not name the target language")
	}
	if !strings.Contains(prompt, "PashuAI") {
		t.Error("advice prompt lost the assistant identity")
	}

	imgPrompt := imageSystemPrompt("unknown-code")
	if !strings.Contains(imgPrompt, "English") {
		t.Error("image prompt did not fall back to English")
	}
}

func TestHistoryRole(t *testing.T) {
	if got := historyRole(types.RoleAssistant); got != openai.ChatMessageRoleAssistant {
		t.Errorf("historyRole(assistant) = %q", got)
	}
	if got := historyRole(types.RoleUser); got != openai.ChatMessageRoleUser {
		t.Errorf("historyRole(user) = %q", got)
	}
	// Anything unexpected is treated as a user turn rather than dropped.
	if got := historyRole("system"); got != openai.ChatMessageRoleUser {
		t.Errorf("historyRole(system) = %q", got)
	}
}

func TestResponseTextFallback(t *testing.T) {
	empty := openai.ChatCompletionResponse{}
	if got := responseText(empty, adviceFallback); got != adviceFallback {
		t.Errorf("empty response = %q, want fallback", got)
	}

	blank := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "   "}}},
	}
	if got := responseText(blank, imageFallback); got != imageFallback {
		t.Errorf("blank response = %q, want fallback", got)
	}

	ok := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "use neem oil"}}},
	}
	if got := responseText(ok, adviceFallback); got != "use neem oil" {
		t.Errorf("response = %q, want use neem oil", got)
	}
}

func TestDataURL(t *testing.T) {
	got := dataURL("image/png", []byte{0x89, 0x50})
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("dataURL = %q, want data:image/png;base64 prefix", got)
	}
}
