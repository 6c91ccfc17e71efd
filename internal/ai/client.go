package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
)

const (
	temperature = 0.7
	maxTokens   = 4000

	systemMessage = "You are a helpful assistant that outputs JSON."
)

// Client talks to the xAI chat completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New creates a Client. A zero Timeout defaults to 60 seconds.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateQuizQuestions asks the model for one question per word at the
// given proficiency level.
func (c *Client) GenerateQuizQuestions(ctx context.Context, words []models.Word, level string) ([]GeneratedQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("ai").WithField("level", level)

	if c.apiKey == "" {
		log.Warn("XAI_API_KEY is not set, skipping generation")
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: buildPrompt(words, level)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/chat/completions"
	log.Debug("requesting %d questions from %s", len(words), url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("chat completion request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("chat completion response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("chat completion failed: status=%d, body=%s", resp.StatusCode, string(errBody))
		return nil, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, string(errBody))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode chat completion response: %v", err)
		return nil, err
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		log.Error("chat completion returned empty content")
		return nil, fmt.Errorf("chat completion returned empty content")
	}

	questions, err := parseQuestions(out.Choices[0].Message.Content)
	if err != nil {
		log.Error("failed to parse generated questions: %v", err)
		return nil, err
	}

	log.Info("generated %d quiz questions", len(questions))
	return questions, nil
}

// parseQuestions strips markdown fences the model sometimes emits and
// decodes the JSON array.
func parseQuestions(content string) ([]GeneratedQuestion, error) {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	return questions, nil
}

func buildPrompt(words []models.Word, level string) string {
	var lines []string
	for _, w := range words {
		meanings := make([]string, 0, len(w.Meanings))
		for _, m := range w.Meanings {
			meanings = append(meanings, m.Meaning)
		}
		entry, _ := json.Marshal(map[string]string{
			"id":            w.ID,
			"word":          w.Word,
			"pronunciation": w.Pronunciation,
			"partOfSpeech":  strings.Join(w.PartOfSpeech, ", "),
			"meanings":      strings.Join(meanings, ", "),
		})
		lines = append(lines, string(entry))
	}

	return fmt.Sprintf(promptTemplate, level, strings.Join(lines, "\n"))
}

const promptTemplate = `
You are an expert language tutor.
I have a list of words (in JSON format). For each word, generate a multiple-choice quiz question (A, B, C) to test the user's knowledge of the word.
The target proficiency level for the questions is: %s.

Words:
%s

Instructions:
1. For each word, select the most appropriate question type from these 3 options: 'matching', 'synonimOrAntonym', 'clouze'. Choose the type that best fits the word's characteristics (e.g., use 'clouze' if the word fits well in a sentence context, 'synonimOrAntonym' if it has clear synonyms/antonyms).
2. Create exactly one question per word based on the selected type.

Rules for Question Types:
- 'matching': The question must be a definition or description of the word's meaning. The options (A, B, C) must include the target word (correct) and two other random words (distractors).
- 'synonimOrAntonym': The question should ask to identify a synonym or antonym of the target word (e.g., "Which word is a synonym for...?"). The options (A, B, C) must be words.
- 'clouze': The question must be a sentence using the target word, but with the target word replaced by a blank "_____". The options (A, B, C) must include the target word (correct) and two other words that fit grammatically but are incorrect in context.

General Rules:
1. Provide 3 options: A, B, and C.
2. One option must be the correct answer, the other two should be plausible distractors (incorrect answers).
3. CRITICAL: Randomize the position of the correct answer content among 'answerA', 'answerB', and 'answerC'.
4. The 'correctAnswer' field MUST contain the letter ('A', 'B', or 'C') corresponding to the option that holds the correct answer.
   - Example: If the correct answer is in 'answerB', then 'correctAnswer' must be "B".
5. Return the result as a strictly valid JSON array of objects.

Output JSON Format:
[
  {
    "wordId": "id_of_the_word",
    "type": "matching", // or "synonimOrAntonym" or "clouze"
    "question": "The question text here?",
    "answerA": "Option A text",
    "answerB": "Option B text",
    "answerC": "Option C text",
    "correctAnswer": "A" // or "B" or "C"
  }
]

Do not include any markdown formatting (like ` + "```json" + `). Return only the raw JSON string.
`
