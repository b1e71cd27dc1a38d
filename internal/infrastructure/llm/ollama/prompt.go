package ollama

func buildSummaryPrompt(text string) string {
	const maxSnippet = 4000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `Summarize the document below in 2-3 sentences.
Answer with the summary only, no preamble, no markdown.

Document:
` + snippet
}
