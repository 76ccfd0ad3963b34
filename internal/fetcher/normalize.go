package fetcher

import (
	"regexp"
	"strconv"
	"strings"

	"freelance-assistant/internal/model"

	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanText 折叠连续空白并去掉首尾空白。
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// stripMarkup 去除文本中的 HTML 标签，保留可见文字。
// RSS 描述字段通常带内嵌标记。
func stripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	node, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String()
}

var priceRe = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// extractPrice 扫描文本中的美元金额，取第一个匹配；无匹配返回 nil。
func extractPrice(text string) *float64 {
	match := priceRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// categoryKeywords 按优先级排列，命中即返回，兜底为 writing。
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{model.CategoryReview, []string{"review", "отзыв"}},
	{model.CategoryComment, []string{"comment", "комментарий"}},
	{model.CategoryFeedback, []string{"feedback", "обратная связь"}},
	{model.CategoryPost, []string{"post", "пост", "article", "статья"}},
}

func classifyCategory(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, entry := range categoryKeywords {
		for _, word := range entry.words {
			if strings.Contains(text, word) {
				return entry.category
			}
		}
	}
	return model.CategoryWriting
}

var (
	easyKeywords = []string{"simple", "quick", "easy", "short", "brief"}
	hardKeywords = []string{"complex", "detailed", "extensive", "professional", "expert"}
)

func estimateComplexity(title, description string) int {
	text := strings.ToLower(title + " " + description)
	if containsAny(text, easyKeywords) {
		return model.ComplexityEasy
	}
	if containsAny(text, hardKeywords) {
		return model.ComplexityHard
	}
	return model.ComplexityMedium
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
