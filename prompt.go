package ragblade

import "fmt"

// BuildPrompt wraps the user prompt with retrieved context. Without usable
// context the prompt passes through untouched.
func BuildPrompt(prompt, contextData string) string {
	if contextData == "" || contextData == NoRelevantInformation {
		return prompt
	}

	return fmt.Sprintf("Using this data: %s. Respond to this prompt: %s", contextData, prompt)
}

// BuildEnhancedPrompt adds structure and formatting instructions so the
// model produces responses a terminal formatter can render nicely.
func BuildEnhancedPrompt(prompt, contextData string) string {
	if contextData == "" || contextData == NoRelevantInformation {
		return fmt.Sprintf(enhancedPromptWithoutContext, prompt)
	}

	return fmt.Sprintf(enhancedPromptWithContext, contextData, prompt)
}

const enhancedPromptWithContext = `You are a helpful AI assistant. Please provide a well-structured, informative response based on the given context.

**Context Information:**
%s

**User Question:**
%s

**Formatting Instructions:**
- Use **bold text** for important terms, key concepts, and emphasis
- Use *italic text* for definitions, explanations, and subtle emphasis
- Use ` + "`inline code`" + ` for technical terms, commands, or code snippets
- Use bullet points or numbered lists for structured information
- Use headings (# ## ###) to organize longer responses

**Content Instructions:**
- Provide a clear, comprehensive answer based on the context
- If the context doesn't fully answer the question, mention what information might be missing
- Be concise but thorough

**Response:**`

const enhancedPromptWithoutContext = `You are a helpful AI assistant. Please provide a well-structured, informative response to the user's question.

**User Question:**
%s

**Formatting Instructions:**
- Use **bold text** for important terms, key concepts, and emphasis
- Use *italic text* for definitions, explanations, and subtle emphasis
- Use ` + "`inline code`" + ` for technical terms, commands, or code snippets
- Use bullet points or numbered lists for structured information
- Use headings (# ## ###) to organize longer responses

**Content Instructions:**
- Provide a clear, comprehensive answer
- If you're not certain about something, mention it clearly
- Be concise but thorough

**Response:**`
