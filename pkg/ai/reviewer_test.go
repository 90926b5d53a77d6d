package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeChat struct {
	content string
	err     error
	got     openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func TestParseResult(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		verdict string
		score   float64
	}{
		{"approve", `{"verdict":"approve","score":0.92,"reasons":[]}`, VerdictApprove, 0.92},
		{"fenced", "```json\n{\"verdict\":\"REJECT\",\"score\":0.1,\"reasons\":[\"phone in text\"]}\n```", VerdictReject, 0.1},
		{"garbage", "I think it is fine", VerdictNeedsReview, 0},
		{"unknown verdict", `{"verdict":"maybe","score":0.5}`, VerdictNeedsReview, 0.5},
		{"score clamped", `{"verdict":"approve","score":7}`, VerdictApprove, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseResult(tc.in)
			if got.Verdict != tc.verdict || got.Score != tc.score {
				t.Fatalf("got %+v, want verdict=%s score=%v", got, tc.verdict, tc.score)
			}
		})
	}
}

func TestOpenAIReviewerSendsListing(t *testing.T) {
	fc := &fakeChat{content: `{"verdict":"approve","score":0.8,"reasons":["looks genuine"]}`}
	r := &OpenAIReviewer{client: fc, model: "gpt-test"}

	res, err := r.Review(context.Background(), ListingInput{Kind: "property", Title: "Sunny room near IIT", City: "Delhi"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Verdict != VerdictApprove {
		t.Fatalf("verdict = %s", res.Verdict)
	}
	if fc.got.Model != "gpt-test" || len(fc.got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", fc.got)
	}
	if !strings.Contains(fc.got.Messages[1].Content, "Sunny room near IIT") {
		t.Fatalf("listing not in prompt: %s", fc.got.Messages[1].Content)
	}
}

func TestOpenAIReviewerError(t *testing.T) {
	r := &OpenAIReviewer{client: &fakeChat{err: errors.New("rate limited")}, model: "m"}
	if _, err := r.Review(context.Background(), ListingInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestDisabled(t *testing.T) {
	res, _ := Disabled{}.Review(context.Background(), ListingInput{})
	if res.Verdict != VerdictNeedsReview || len(res.Reasons) != 1 {
		t.Fatalf("got %+v", res)
	}
}
