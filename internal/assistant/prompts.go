package assistant

import "fmt"

const (
	chatSystemPrompt  = "You are a helpful educational AI assistant specializing in blockchain, cryptocurrency, AI, and programming. Provide clear, engaging explanations appropriate for the user's level."
	learnSystemPrompt = "You are an expert educational AI assistant. Create comprehensive educational content that is engaging and appropriate for different learning levels and styles."
	quizSystemPrompt  = "You are an expert educational AI assistant. Create engaging quiz questions that test understanding and include real-world context."
)

// BuildPrompt returns the system and user prompts for a request
func BuildPrompt(message string, mode Mode, opts Options) (system, user string) {
	opts = opts.WithDefaults(message)

	switch mode {
	case ModeLearn:
		return learnSystemPrompt, fmt.Sprintf(`Create educational content about "%s" for a %s level learner with a %s learning preference.

Please provide:
1. A clear, engaging explanation of the topic
2. 4-5 key learning points
3. 3-4 practical next steps for continued learning
4. 2-3 real-world examples or applications

Make the content appropriate for %s level and consider %s learning preferences. Include emojis and make it engaging!`,
			opts.Topic, opts.Level, opts.Style, opts.Level, opts.Style)

	case ModeQuiz:
		return quizSystemPrompt, fmt.Sprintf(`Create a %s difficulty quiz about "%s" with exactly %d multiple choice questions.

For each question, provide:
- The question text
- 4 answer options (A, B, C, D)
- The correct answer
- An explanation of why the answer is correct
- A brief real-world application or example

Make the questions practical and relevant to real-world applications of %s. Format it nicely with emojis and clear structure!`,
			opts.Difficulty, opts.Topic, opts.NumQuestions, opts.Topic)

	default:
		return chatSystemPrompt, message
	}
}
