// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package research

import "fmt"

const (
	agentRole = "Research Expert"

	agentGoal = "Research topics thoroughly using DuckDuckGo search and provide comprehensive " +
		"but concise summaries with relevant information and sources."

	agentBackstory = "You are an expert researcher with years of experience finding and " +
		"synthesizing information from the web. You excel at formulating effective search " +
		"queries, extracting key information, and presenting findings in a clear and " +
		"structured way."

	taskTemplate = "Research the topic: '%s'\n" +
		"1. Start by formulating 2-3 specific search queries based on the topic\n" +
		"2. Use the DuckDuckGo search tool to find relevant information\n" +
		"3. Synthesize a comprehensive but concise summary of the findings\n" +
		"4. Include key facts, different perspectives, and recent developments\n" +
		"5. List all sources consulted at the end of your response"

	expectedOutput = "A comprehensive research summary with cited sources that directly " +
		"addresses the query with accurate and up-to-date information."
)

// SystemPrompt returns the persona given to the model.
func SystemPrompt() string {
	return fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", agentRole, agentBackstory, agentGoal)
}

// TaskPrompt returns the instruction for researching query.
func TaskPrompt(query string) string {
	return fmt.Sprintf(taskTemplate, query) +
		"\n\nThis is the expected criteria for your final answer: " + expectedOutput +
		"\nBegin the list of sources with a line reading \"" + SourcesMarker + "\"." +
		"\nYou MUST return the actual complete content as the final answer, not a summary of your actions."
}
