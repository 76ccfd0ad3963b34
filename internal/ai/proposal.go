package ai

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// Profile 是可选的自由职业者画像，用于丰富提案提示词。
type Profile struct {
	Name       string   `yaml:"name" json:"name"`
	Skills     []string `yaml:"skills" json:"skills"`
	Experience string   `yaml:"experience" json:"experience"`
}

// ProposalInput 描述一次提案生成。Profile 与 Budget 可选。
type ProposalInput struct {
	JobTitle       string
	JobDescription string
	Profile        *Profile
	Budget         *float64
}

// ProposalGenerator 生成求职信文本，分长短两种策略。
// 提案的清洗比通用内容严格：剥离已知的开场客套，再按空行归并段落。
type ProposalGenerator struct {
	client Completer
	logger *log.Logger
}

// NewProposalGenerator 创建提案生成器。
func NewProposalGenerator(client Completer) *ProposalGenerator {
	return &ProposalGenerator{
		client: client,
		logger: log.New(os.Stdout, "[proposal] ", log.LstdFlags),
	}
}

// Generate 生成标准提案：4-6 个段落的结构化求职信。
func (g *ProposalGenerator) Generate(ctx context.Context, in ProposalInput) (string, error) {
	g.logger.Printf("generating proposal for job: %s", in.JobTitle)

	text, err := g.client.Complete(ctx, Request{
		Prompt:      buildProposalPrompt(in),
		System:      proposalSystemPrompt,
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return CleanProposal(text), nil
}

// GenerateShort 生成 2-3 句话的简短提案。
func (g *ProposalGenerator) GenerateShort(ctx context.Context, jobTitle, jobDescription string) (string, error) {
	g.logger.Printf("generating short proposal for: %s", jobTitle)

	text, err := g.client.Complete(ctx, Request{
		Prompt:      buildShortProposalPrompt(jobTitle, jobDescription),
		System:      shortProposalSystemPrompt,
		MaxTokens:   300,
		Temperature: 0.6,
	})
	if err != nil {
		return "", err
	}
	return CleanProposal(text), nil
}

const proposalSystemPrompt = `You are a seasoned freelancer with years of experience on international platforms.
Your specialty is quality written content: reviews, comments and articles.

When writing proposals (cover letters) you:
1. Show that you understand the task and the client's requirements
2. Highlight relevant experience and skills
3. Keep a professional yet friendly tone
4. Offer concrete solutions and approaches
5. Avoid stock phrases and platitudes
6. Write briefly and to the point

Always write in the language of the job description.`

const shortProposalSystemPrompt = `You are a professional freelancer who writes short, effective proposals.
Produce a brief but convincing cover letter of 2-3 sentences.`

func buildProposalPrompt(in ProposalInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a professional proposal (cover letter) for the following job:\n\n")
	fmt.Fprintf(&b, "JOB: %s\n\nJOB DESCRIPTION:\n%s\n", in.JobTitle, in.JobDescription)

	if in.Budget != nil {
		fmt.Fprintf(&b, "\nBUDGET: $%.2f\n", *in.Budget)
	}
	if in.Profile != nil {
		b.WriteString("\nFREELANCER PROFILE:\n")
		if in.Profile.Name != "" {
			fmt.Fprintf(&b, "Name: %s\n", in.Profile.Name)
		}
		if len(in.Profile.Skills) > 0 {
			fmt.Fprintf(&b, "Skills: %s\n", strings.Join(in.Profile.Skills, ", "))
		}
		if in.Profile.Experience != "" {
			fmt.Fprintf(&b, "Experience: %s\n", in.Profile.Experience)
		}
	}

	b.WriteString(`
Write a proposal that:
1. Addresses the client and shows you understand their needs
2. Highlights experience and skills relevant to this job
3. Proposes a concrete approach to the work
4. Offers to discuss details and answer questions
5. Keeps a professional yet friendly tone
6. Consists of 4-6 short paragraphs

Write only the proposal text, with no extra commentary or explanations.`)
	return b.String()
}

func buildShortProposalPrompt(jobTitle, jobDescription string) string {
	return fmt.Sprintf(`Job: %s

Description: %s

Write a short proposal (2-3 sentences) that:
1. Highlights your qualification for this job
2. Shows you understand the requirements
3. Expresses readiness to start

Write only the proposal text, with no extra commentary.`, jobTitle, jobDescription)
}

// 已知的开场客套语：若出现在开头则剥离。列表保留俄文条目，
// 面向俄语任务时模型偶尔会以它们开头。
var unwantedPhrases = []string{
	"Here is a proposal",
	"Here's a proposal",
	"Вот предложение",
	"Dear Client,",
	"Уважаемый клиент,",
}

// CleanProposal 执行提案清洗：剥离开头的已知客套语，
// 丢弃纯空白行，剩余各行以空行分隔为段落。
func CleanProposal(proposal string) string {
	proposal = strings.TrimSpace(proposal)

	for _, phrase := range unwantedPhrases {
		if strings.HasPrefix(proposal, phrase) {
			proposal = strings.TrimSpace(strings.TrimPrefix(proposal, phrase))
		}
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(proposal, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n\n")
}
