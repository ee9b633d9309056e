// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// enhance.go implements prompt enhancement: a single chat-completion call
// that rewrites the user's assembled prompt into a richer one. It is not
// part of the generation contract, but it shares the same key-resolution
// mechanism and endpoint override as the OpenAI-compatible adapter.
package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultEnhanceModel = "gpt-4o-mini"

	enhanceSystemPrompt = "You refine prompts for a knitwear design image generator. " +
		"Rewrite the user's prompt into one vivid, concrete English description of a sweater design: " +
		"yarn texture, stitch pattern, color palette, fit and presentation. " +
		"Keep every constraint from the original prompt. Reply with the rewritten prompt only."
)

// EnhancePrompt rewrites prompt through the OpenAI-compatible endpoint.
// The credential is resolved exactly like a generation call's.
func EnhancePrompt(ctx context.Context, resolver *CredentialResolver, s Settings, client *http.Client, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("imagegen: prompt cannot be empty")
	}

	credential := resolver.Resolve(s, ProviderOpenAI)
	if credential == "" {
		return "", errMissingCredential(ProviderOpenAI)
	}

	clientConfig := openai.DefaultConfig(credential)
	clientConfig.BaseURL = normalizeOpenAIBase(s.Endpoint(ProviderOpenAI))
	if client != nil {
		clientConfig.HTTPClient = client
	}

	resp, err := openai.NewClientWithConfig(clientConfig).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: defaultEnhanceModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: enhanceSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", translateOpenAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errMalformedResponse(ProviderOpenAI, "enhancement returned no content")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
