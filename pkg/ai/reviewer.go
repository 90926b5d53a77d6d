package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

//go:generate mockgen -destination=../../internal/mocks/ai_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/pkg/ai Reviewer

const (
	VerdictApprove     = "approve"
	VerdictReject      = "reject"
	VerdictNeedsReview = "needs_review"
)

// Result is the moderation verdict for one listing.
type Result struct {
	Verdict string   `json:"verdict"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// ListingInput is what the reviewer sees of a listing.
type ListingInput struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Price       float64  `json:"price"`
	Amenities   []string `json:"amenities,omitempty"`
	ImageCount  int      `json:"image_count"`
}

// Reviewer scores listings before an admin looks at them.
type Reviewer interface {
	Review(ctx context.Context, in ListingInput) (Result, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const systemPrompt = `You moderate student housing listings (rooms, PGs, hostels, flats and mess/meal services) in India.
Check the listing for spam, contact details or payment requests inside the description, offensive content,
unrealistic prices and missing essentials. Reply with JSON only:
{"verdict":"approve|reject|needs_review","score":<0..1 confidence the listing is genuine>,"reasons":["..."]}`

// OpenAIReviewer asks a chat model for a JSON verdict.
type OpenAIReviewer struct {
	client chatClient
	model  string
}

func NewOpenAIReviewer(apiKey, model string) *OpenAIReviewer {
	return &OpenAIReviewer{client: openai.NewClient(apiKey), model: model}
}

func (r *OpenAIReviewer) Review(ctx context.Context, in ListingInput) (Result, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return Result{}, err
	}
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai review: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ParseResult(""), nil
	}
	return ParseResult(resp.Choices[0].Message.Content), nil
}

// ParseResult decodes model output. Anything it cannot trust becomes needs_review.
func ParseResult(content string) Result {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var res Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &res); err != nil {
		return Result{Verdict: VerdictNeedsReview, Reasons: []string{"unparseable ai response"}}
	}
	res.Verdict = strings.ToLower(strings.TrimSpace(res.Verdict))
	switch res.Verdict {
	case VerdictApprove, VerdictReject, VerdictNeedsReview:
	default:
		res.Reasons = append(res.Reasons, "unknown verdict "+res.Verdict)
		res.Verdict = VerdictNeedsReview
	}
	if res.Score < 0 {
		res.Score = 0
	}
	if res.Score > 1 {
		res.Score = 1
	}
	return res
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Review(context.Context, ListingInput) (Result, error) {
	return Result{Verdict: VerdictNeedsReview, Reasons: []string{"ai review disabled"}}, nil
}

var (
	_ Reviewer = (*OpenAIReviewer)(nil)
	_ Reviewer = Disabled{}
)
