package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// cleaningPrompt instructs the model to behave as a pure text transform. The
// model is untrusted: everything it adds beyond the article is scrubbed
// afterwards by CleanArtifacts.
const cleaningPrompt = `You are a text extractor. Extract ONLY the article text from the HTML.

CRITICAL RULES:
1. DO NOT add any commentary, preambles, or explanations
2. DO NOT say "Here's the cleaned text" or "I've removed..."
3. DO NOT add "TAGS:" or tag sections
4. DO NOT add anything that wasn't in the original article
5. Output ONLY the article text exactly as written

KEEP:
- Article title/heading
- Article paragraphs (original wording)
- Subheadings
- Lists in the article

REMOVE:
- Share buttons
- Navigation
- Footer/header
- Ads
- Related articles
- Comments

OUTPUT:
Start with the title, then the article text.
Nothing else. No commentary. No tags.`

const summaryPrompt = `Summarize this article in 2-3 sentences. Focus on the main idea only.`

const summaryInputLimit = 4000

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiURL     string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
}

func NewClient(apiURL, model, apiKey string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		model:      model,
		apiKey:     apiKey,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one zero-temperature chat request and returns the generated
// text. Any non-200 status or malformed body is an error.
func (c *Client) Complete(system, user string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.0,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: HTTP %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices in response")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// llmClean is the remote-assisted strategy: chunked model calls over the
// precleaned container, per-chunk fallback on failure, then a deterministic
// artifact scrub. Any total failure degrades to the basic fallback.
func (p *Pipeline) llmClean(rawHTML string) string {
	if p.llm == nil {
		return p.BasicStrip(rawHTML)
	}

	pre := preclean(p.ArticleHTML(rawHTML))
	if pre == "" {
		return p.BasicStrip(rawHTML)
	}

	chunks := chunkText(pre, p.cfg.ChunkSize)
	outputs := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		out, err := p.llm.Complete(cleaningPrompt, chunk, 0)
		if err != nil || out == "" {
			log.Printf("[extract] llm chunk %d/%d failed, using fallback: %v", i+1, len(chunks), err)
			out = p.BasicStrip(chunk)
		}
		outputs = append(outputs, out)
	}

	result := CleanArtifacts(strings.Join(outputs, "\n"))
	result = reTag.ReplaceAllString(result, "")
	return normalizeBlock(result)
}

// Summary asks for a 2-3 sentence summary of the cleaned text. Best-effort:
// empty string on any failure or when no client is configured.
func (p *Pipeline) Summary(text string) string {
	if p.llm == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	sample := truncateRunes(text, summaryInputLimit)
	out, err := p.llm.Complete(summaryPrompt, sample, 512)
	if err != nil {
		log.Printf("[extract] summary failed: %v", err)
		return ""
	}
	return out
}

// preclean strips script/style/comments and collapses whitespace so the
// model sees dense markup instead of page noise.
func preclean(html string) string {
	html = reScript.ReplaceAllString(html, " ")
	html = reStyle.ReplaceAllString(html, " ")
	html = reComment.ReplaceAllString(html, " ")
	return collapse(html)
}

// chunkText splits on a fixed size so the remote service never rejects the
// request for input length. Splits respect rune boundaries.
func chunkText(s string, max int) []string {
	if len(s) <= max {
		return []string{s}
	}
	var chunks []string
	for len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			// Invalid UTF-8 can pass through the charset fallback; cut
			// mid-rune rather than loop forever.
			cut = max
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Generated commentary the model adds despite instructions. Preambles are
// whole matching lines; postambles and tag sections run to end of text.
var (
	artifactPreambles = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^.*here'?s? the cleaned (?:text|article|content).*\n?`),
		regexp.MustCompile(`(?im)^.*i'?ve (?:cleaned|removed|extracted).*\n?`),
		regexp.MustCompile(`(?im)^.*adhering to (?:your )?specifications.*\n?`),
		regexp.MustCompile(`(?im)^.*as requested.*\n?`),
		regexp.MustCompile(`(?im)^.*following (?:your )?instructions.*\n?`),
		regexp.MustCompile(`(?im)^read the .*\n?`),
	}
	artifactTagSection = regexp.MustCompile(`(?is)\n\s*tags?:\s*.*$`)
	artifactPostambles = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\n\s*i hope this helps.*$`),
		regexp.MustCompile(`(?is)\n\s*let me know if.*$`),
		regexp.MustCompile(`(?is)\n\s*please note.*$`),
		regexp.MustCompile(`(?is)\n\s*note:.*$`),
	}
)

// CleanArtifacts removes model commentary from generated text. Pure and
// deterministic; always applied to LLM output, separately testable.
func CleanArtifacts(text string) string {
	for _, re := range artifactPreambles {
		text = re.ReplaceAllString(text, "")
	}
	text = artifactTagSection.ReplaceAllString(text, "")
	for _, re := range artifactPostambles {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
