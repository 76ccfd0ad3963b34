package ai

import (
	"context"
	"log"
	"os"
	"strings"

	"freelance-assistant/internal/model"
)

// GenerateInput 是生成器变体的输入上下文。
// JobContext 为任务标题与描述拼接而成的文本。
type GenerateInput struct {
	JobContext   string
	Requirements string // 可选的附加要求
	Tone         string // 仅评论类生成器使用，缺省 positive
	MaxTokens    int
}

// Generator 是按内容类型划分的生成能力：构建提示词、调用补全服务、
// 清洗输出（通用内容的清洗约定即去除首尾空白）。
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (string, error)
}

// ReviewGenerator 生成评测类文本，feedback 分类也映射到这里。
type ReviewGenerator struct {
	client Completer
	logger *log.Logger
}

func NewReviewGenerator(client Completer) *ReviewGenerator {
	return &ReviewGenerator{client: client, logger: newGeneratorLogger()}
}

func (g *ReviewGenerator) Generate(ctx context.Context, in GenerateInput) (string, error) {
	g.logger.Printf("generating review")
	text, err := g.client.Complete(ctx, Request{
		Prompt:    buildReviewPrompt(in.JobContext, in.Requirements, in.Tone),
		System:    reviewSystemPrompt,
		MaxTokens: in.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return cleanContent(text), nil
}

// GenerateProductReview 按产品名与星级生成商品评测。
func (g *ReviewGenerator) GenerateProductReview(ctx context.Context, product string, rating int, keyPoints []string) (string, error) {
	g.logger.Printf("generating product review for %s", product)
	text, err := g.client.Complete(ctx, Request{
		Prompt: buildProductReviewPrompt(product, rating, keyPoints),
		System: reviewSystemPrompt,
	})
	if err != nil {
		return "", err
	}
	return cleanContent(text), nil
}

// CommentGenerator 生成评论类文本。
type CommentGenerator struct {
	client Completer
	logger *log.Logger
}

func NewCommentGenerator(client Completer) *CommentGenerator {
	return &CommentGenerator{client: client, logger: newGeneratorLogger()}
}

func (g *CommentGenerator) Generate(ctx context.Context, in GenerateInput) (string, error) {
	g.logger.Printf("generating comment")
	text, err := g.client.Complete(ctx, Request{
		Prompt:    buildCommentPrompt(in.JobContext, in.Requirements),
		System:    commentSystemPrompt,
		MaxTokens: in.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return cleanContent(text), nil
}

// PostGenerator 生成帖子 / 文章类文本。
type PostGenerator struct {
	client Completer
	logger *log.Logger
}

func NewPostGenerator(client Completer) *PostGenerator {
	return &PostGenerator{client: client, logger: newGeneratorLogger()}
}

func (g *PostGenerator) Generate(ctx context.Context, in GenerateInput) (string, error) {
	g.logger.Printf("generating post")
	text, err := g.client.Complete(ctx, Request{
		Prompt:    buildPostPrompt(in.JobContext, in.Requirements),
		System:    postSystemPrompt,
		MaxTokens: in.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return cleanContent(text), nil
}

// Registry 将内容类型映射到生成器变体，替代按名称查类的工厂。
type Registry struct {
	generators map[string]Generator
}

// NewRegistry 注册内置变体：review 与 feedback 共用评测生成器。
func NewRegistry(client Completer) *Registry {
	review := NewReviewGenerator(client)
	return &Registry{generators: map[string]Generator{
		model.CategoryReview:   review,
		model.CategoryFeedback: review,
		model.CategoryComment:  NewCommentGenerator(client),
		model.CategoryPost:     NewPostGenerator(client),
	}}
}

// Get 按分类（忽略大小写）解析生成器，未注册的分类返回
// UnsupportedCategoryError，调用方不能假定每个分类都有变体。
func (r *Registry) Get(category string) (Generator, error) {
	g, ok := r.generators[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, &model.UnsupportedCategoryError{Category: category}
	}
	return g, nil
}

// cleanContent 是通用内容的全部清洗逻辑：去除首尾空白。
// 提案有更严格的清洗，见 proposal.go。
func cleanContent(text string) string {
	return strings.TrimSpace(text)
}

func newGeneratorLogger() *log.Logger {
	return log.New(os.Stdout, "[generator] ", log.LstdFlags)
}
