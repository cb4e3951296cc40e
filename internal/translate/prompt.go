package translate

import "fmt"

// BuildPrompt wraps text in the fixed Simplified Chinese to English
// translation instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf(
		`Translate the following text: "%s" from Simplified Chinese into English, ensuring a direct and accurate translation while preserving the original meaning and context. `+
			`Edit and restructure the sentence to flow naturally in English, but without changing the intended message. Keep special characters as they are and use Pinyin romanization for Chinese names or terms. `+
			`The translation should be clear and concise, with no added words or interpretations beyond the original text. Only return the translated text without any remarks or notes.`,
		text,
	)
}
