package analysis

import "fmt"

const placeholderPrompt = "Analyze this crop image and provide detailed information about the crop type, health, diseases, and recommendations. Use %s for the response."

const structuredPrompt = `Analyze this crop image and describe the crop type, its health, any diseases or pests, and recommendations.
Answer with a single JSON object and nothing else, using exactly these keys:
{
  "crop": "crop name",
  "variety": "variety name",
  "health": "overall health",
  "issues": ["problem", "..."],
  "recommendations": ["action", "..."],
  "growingConditions": {"soil": "...", "water": "...", "climate": "..."},
  "harvestInfo": {"time": "...", "yield": "..."}
}
Keep the keys in English and write every value in %s.`

// Prompt returns the instruction sent with the image for the given mapper mode.
// The language is embedded verbatim.
func Prompt(mode, language string) string {
	if mode == ModeStructured {
		return fmt.Sprintf(structuredPrompt, language)
	}
	return fmt.Sprintf(placeholderPrompt, language)
}

// TranslatePrompt builds the text-only translation instruction.
func TranslatePrompt(text, targetLanguage string) string {
	return fmt.Sprintf("Translate the following text to %s:\n\n%s", targetLanguage, text)
}
