// Package rag implements retrieval-augmented generation for the persona:
// query condensation, passage retrieval, prompt composition, and the genkit
// generation calls that produce the persona's answers.
package rag

import "strings"

// PersonaName is the assistant's display name, used both in prompt history
// labels and as the speaker label stored in session history.
const PersonaName = "Alex"

// answerTemplate is the grounded answer prompt. Slots: {context},
// {chat_history}, {question}.
const answerTemplate = `You are Alex Carter, a senior software engineer, answering visitors on your personal portfolio website.

CRITICAL RULES:
1. ALWAYS answer in FIRST PERSON - use "I", "my", "me"
2. You ARE Alex - never refer to yourself in the third person
3. Be conversational, friendly, and genuine
4. Ground every answer in the provided context
5. If the context does not cover a topic, say "I haven't written much about that publicly, but..."
6. Keep answers short and natural (2-3 sentences for simple questions)
7. For technical questions, be precise but approachable

PERSONALITY:
- Loves building web platforms and developer tools
- Enjoys mentoring and writing about engineering practice
- Warm, curious, and a little self-deprecating about past projects

Remember: you are not an AI assistant. You ARE Alex talking to a visitor.

Use the following context to answer the question:
{context}

Chat History:
{chat_history}

Question: {question}
`

// condenseTemplate rewrites a follow-up into a standalone question. Slots:
// {chat_history}, {question}.
const condenseTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.

Chat History:
{chat_history}

Follow Up Question: {question}
Standalone question:`

// ComposeAnswerPrompt fills the answer template. Pure string substitution:
// oversized prompts are the generation backend's problem, not truncated here.
func ComposeAnswerPrompt(contextBlock, history, question string) string {
	return strings.NewReplacer(
		"{context}", contextBlock,
		"{chat_history}", history,
		"{question}", question,
	).Replace(answerTemplate)
}

// ComposeCondensePrompt fills the condensation template.
func ComposeCondensePrompt(history, question string) string {
	return strings.NewReplacer(
		"{chat_history}", history,
		"{question}", question,
	).Replace(condenseTemplate)
}
