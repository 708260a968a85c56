package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxInputChars is how many characters of the input text are sent to the
// model. Longer input is truncated silently.
const MaxInputChars = 25000

// SystemInstruction establishes strict-JSON behavior for every request.
const SystemInstruction = "You are a helpful assistant that extracts structured information from documentation. You strictly follow JSON output formats."

const promptHeader = `You are an expert technical writer and information architect.
Analyze the documentation content below and identify the product's key modules and their submodules.

STRICT OUTPUT FORMAT REQUIRED:
Return a JSON object with a single key "modules" containing an array of objects.
Each object must have exactly these keys:
- "module": the name of the module.
- "Description": a detailed description of the module.
- "Submodules": an object whose keys are submodule names and whose values are their detailed descriptions.
- "confidence_score": a number between 0.0 and 1.0 indicating your confidence in this extraction.

Example output:
{
  "modules": [
    {
      "module": "Account Settings",
      "Description": "Features and tools for managing account preferences.",
      "Submodules": {
        "Change Username": "Explains how to update your handle."
      },
      "confidence_score": 0.95
    }
  ]
}
`

// BuildPrompt returns the user instruction for text. The stated length is
// that of the full input; only the first maxChars characters are included.
func BuildPrompt(text string, maxChars int) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	fmt.Fprintf(&sb, "\nContent to analyze (Length: %d chars):\n", utf8.RuneCountInString(text))
	sb.WriteString(Truncate(text, maxChars))
	return sb.String()
}

// Truncate returns the first n characters of s without splitting a
// multi-byte character. A non-positive n returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
