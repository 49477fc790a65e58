package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/markaz/report-assistant/internal/entity"
)

const (
	defaultChartTitle  = "Real Estate Data Visualization"
	maxChartCategories = 10
)

// Keywords that explicitly request a visualization. Anything softer falls
// through to a text answer.
var visualizationKeywords = []string{
	"create chart", "make chart", "show chart", "display chart",
	"create graph", "make graph", "show graph", "display graph",
	"create plot", "make plot", "show plot", "display plot",
	"draw chart", "draw graph", "draw plot",
	"visualize", "visualise", "visualization", "visualisation",
	"chart of", "graph of", "plot of",
	"bar chart", "pie chart", "line chart", "scatter plot",
	"heatmap", "histogram",
}

// Question words that always mean a text answer, even when a chart keyword
// is also present.
var textOnlyKeywords = []string{
	"what is", "what are", "how much", "how many", "when", "where", "why",
	"summarize", "summary", "explain", "describe", "tell me about",
	"average", "total", "price", "rent", "cost", "value", "trends",
	"analysis", "overview", "insights", "details", "information",
}

// DetectVisualizationRequest reports whether the user explicitly asked for a
// chart. The text-only list wins on conflict so ordinary questions about
// values and trends never accidentally trigger the chart branch.
func DetectVisualizationRequest(input string) bool {
	lower := strings.ToLower(input)

	hasChartKeyword := false
	for _, kw := range visualizationKeywords {
		if strings.Contains(lower, kw) {
			hasChartKeyword = true
			break
		}
	}
	if !hasChartKeyword {
		return false
	}

	for _, kw := range textOnlyKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// DetectChartType picks the chart type from the request, defaulting to bar.
func DetectChartType(input string) string {
	lower := strings.ToLower(input)

	// Exact two-word forms take priority
	switch {
	case strings.Contains(lower, "bar chart"), strings.Contains(lower, "bar graph"):
		return entity.ChartBar
	case strings.Contains(lower, "pie chart"), strings.Contains(lower, "pie graph"):
		return entity.ChartPie
	case strings.Contains(lower, "line chart"), strings.Contains(lower, "line graph"):
		return entity.ChartLine
	case strings.Contains(lower, "scatter plot"), strings.Contains(lower, "scatter chart"):
		return entity.ChartScatter
	}

	switch {
	case containsAny(lower, "bar", "column", "vertical", "horizontal"):
		return entity.ChartBar
	case containsAny(lower, "pie", "circle", "donut", "sector"):
		return entity.ChartPie
	case containsAny(lower, "line"):
		return entity.ChartLine
	case containsAny(lower, "scatter", "point", "correlation"):
		return entity.ChartScatter
	}

	return entity.ChartBar
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Category/value patterns for real-estate financial data, most specific
// first. Group 1 is the category, group 2 the numeric value.
var chartDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^:=\n]+)[:=]\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`([^,\n]+),\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`([^:]+?)\s*Credit\s*directed:\s*KD\s*([\d,]+\.?\d*)\s*billion`),
	regexp.MustCompile(`([^:]+?)\s*Share:\s*([\d,]+\.?\d*)%`),
	regexp.MustCompile(`([^:]+?)\s*Total:\s*KD\s*([\d,]+\.?\d*)\s*billion`),
	regexp.MustCompile(`([^:]+?)\s*KD\s*([\d,]+\.?\d*)\s*billion`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)\s*billion`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)\s*million`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)\s*thousand`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)%`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)\s*units`),
	regexp.MustCompile(`([^:]+?)\s*([\d,]+\.?\d*)\s*properties`),
}

// Category fragments that mark citation noise rather than data.
var chartSkipWords = []string{"source:", "page", "file", "pdf", "report", "title"}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	categoryCleanRe = regexp.MustCompile(`[^\w\s\-&]`)
)

// ExtractChartData harvests (category, value) pairs from retrieved context
// text. Returns nil when no numeric data can be found; the caller answers
// with a warning instead of an empty chart.
func ExtractChartData(text, chartType string) *entity.ChartSpec {
	categories := make([]string, 0, 16)
	values := make([]float64, 0, 16)
	seen := make(map[string]bool)

	for _, pattern := range chartDataPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			category := cleanCategory(match[1])
			value, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
			if err != nil || value <= 0 || category == "" {
				continue
			}
			if len(category) <= 3 || hasSkipWord(category) || seen[category] {
				continue
			}
			seen[category] = true
			categories = append(categories, category)
			values = append(values, value)
		}
	}

	if len(values) == 0 {
		return nil
	}

	// Sort by value descending and cap the category count for readability
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	if len(idx) > maxChartCategories {
		idx = idx[:maxChartCategories]
	}

	spec := &entity.ChartSpec{
		Type:       chartType,
		Title:      defaultChartTitle,
		Categories: make([]string, len(idx)),
		Values:     make([]float64, len(idx)),
		Labels:     make([]string, len(idx)),
	}
	for i, j := range idx {
		spec.Categories[i] = categories[j]
		spec.Values[i] = values[j]
		spec.Labels[i] = fmt.Sprintf("%s: %s", categories[j], formatChartValue(values[j]))
	}
	return spec
}

func cleanCategory(raw string) string {
	category := whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	category = categoryCleanRe.ReplaceAllString(category, "")
	return strings.TrimSpace(category)
}

func hasSkipWord(category string) bool {
	lower := strings.ToLower(category)
	for _, skip := range chartSkipWords {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

func formatChartValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
