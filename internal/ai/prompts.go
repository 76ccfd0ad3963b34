package ai

import (
	"fmt"
	"strings"
)

// 各变体的系统提示词。生成链路把提示词当作不透明的字符串产物，
// 文案调整不影响任何调用契约。

const reviewSystemPrompt = `You are an expert at writing natural, convincing reviews of products and services.
Your reviews should be:
- Specific and detailed
- Balanced (positive points may sit next to neutral ones)
- Written in plain, conversational language
- Unique, never reading like machine-generated text`

const commentSystemPrompt = `You are skilled at writing short, natural comments that add to a discussion.
Comments should sound like a real person: direct, informal where appropriate, and never generic filler.`

const postSystemPrompt = `You are an experienced content writer producing short posts and articles.
Posts should have a clear point, a natural voice, and be tailored to the requested platform and audience.`

func buildReviewPrompt(jobContext, requirements, tone string) string {
	if tone == "" {
		tone = "positive"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", jobContext)
	fmt.Fprintf(&b, "Review requirements:\n- Tone: %s\n- Length: 100-300 words\n- Style: natural, human", tone)
	if requirements != "" {
		fmt.Fprintf(&b, "\n- Additional requirements: %s", requirements)
	}
	b.WriteString("\n\nWrite a review that fully satisfies the task.")
	return b.String()
}

func buildProductReviewPrompt(product string, rating int, keyPoints []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a review of the product: %s\nRating: %d/5 stars\n\n", product, rating)
	if len(keyPoints) > 0 {
		b.WriteString("Mention the following points:\n")
		for _, point := range keyPoints {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}
	b.WriteString("\nThe review should be natural and convincing.")
	return b.String()
}

func buildCommentPrompt(jobContext, requirements string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", jobContext)
	b.WriteString("Write a comment that addresses the task directly. Keep it concise and conversational.")
	if requirements != "" {
		fmt.Fprintf(&b, "\nAdditional requirements: %s", requirements)
	}
	return b.String()
}

func buildPostPrompt(jobContext, requirements string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", jobContext)
	b.WriteString("Write a post that fulfils the task. Structure it with a hook, a body and a closing thought.")
	if requirements != "" {
		fmt.Fprintf(&b, "\nAdditional requirements: %s", requirements)
	}
	return b.String()
}
