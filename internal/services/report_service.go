package services

import (
	"fmt"
	"strings"
	"time"

	"ai-trend-tracker/internal/models"
	"github.com/dustin/go-humanize"
)

const (
	reportFooter = "\n---\n⏰ Automated push by ai-trend-tracker"

	// DailyDisplayCap is the maximum number of items a daily digest renders,
	// regardless of how many are passed in.
	DailyDisplayCap = 5

	// WeeklyDisplayCap bounds the weekly top list independently of the
	// aggregator's configured limit.
	WeeklyDisplayCap = 10

	dailyDescriptionCap  = 100
	weeklyDescriptionCap = 80
)

var positionEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// FormatDaily renders the daily digest for an already ranked item list.
// At most DailyDisplayCap items are rendered.
func FormatDaily(items []*models.TrendRow, date time.Time) string {
	if len(items) > DailyDisplayCap {
		items = items[:DailyDisplayCap]
	}

	lines := []string{
		fmt.Sprintf("🔥 **Daily GitHub AI Trends Top %d**", len(items)),
		fmt.Sprintf("\n📅 %s", date.Format("2006-01-02")),
		"\n---\n",
	}

	for idx, item := range items {
		emoji := fmt.Sprintf("%d.", idx+1)
		if idx < len(positionEmojis) {
			emoji = positionEmojis[idx]
		}

		growth := ""
		if item.StarsGrowth > 0 {
			growth = fmt.Sprintf("+%d", item.StarsGrowth)
		}

		lines = append(lines,
			fmt.Sprintf("\n%s **%s** ⭐ %s (%s)", emoji, item.RepoName, humanize.Comma(int64(item.Stars)), growth),
			fmt.Sprintf("🏷 %s", item.Language),
			fmt.Sprintf("📝 %s", truncate(item.Description, dailyDescriptionCap)),
			fmt.Sprintf("💡 AI highlight: %s", item.AIRelevanceReason),
			fmt.Sprintf("🔗 [View project](%s)\n", item.URL),
		)
	}

	lines = append(lines, reportFooter)
	return strings.Join(lines, "\n")
}

// FormatWeekly renders the weekly report. The overview counters cover the full
// deduplicated set while the top list is capped at WeeklyDisplayCap items.
// An empty report produces a fixed no-data template.
func FormatWeekly(report *TrendReport, weekStart, weekEnd time.Time, trendsText string) string {
	if report.Empty {
		return formatEmptyWeekly(weekStart, weekEnd)
	}

	lines := []string{
		"📊 **Weekly AI Trends Report**",
		fmt.Sprintf("\n📅 %s ~ %s", weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02")),
		"\n## 📈 Weekly Overview",
		fmt.Sprintf("- Found **%d** AI-related projects", report.TotalProjects),
		fmt.Sprintf("- Total **%s** new stars", humanize.Comma(int64(report.TotalStarsGained))),
		fmt.Sprintf("\n## 🏆 Top %d Projects\n", WeeklyDisplayCap),
	}

	items := report.Items
	if len(items) > WeeklyDisplayCap {
		items = items[:WeeklyDisplayCap]
	}

	for idx, item := range items {
		growth := ""
		if item.StarsGrowth > 0 {
			growth = fmt.Sprintf("+%d", item.StarsGrowth)
		}
		lines = append(lines,
			fmt.Sprintf("%d. **%s** ⭐ %s (%s)", idx+1, item.RepoName, humanize.Comma(int64(item.Stars)), growth),
			fmt.Sprintf("   📝 %s", truncate(item.Description, weeklyDescriptionCap)),
			fmt.Sprintf("   🔗 [View project](%s)\n", item.URL),
		)
	}

	lines = append(lines,
		"\n## 🔥 Tech Trend Analysis",
		trendsText,
		"\n## 📊 Category Breakdown",
	)

	for _, cc := range report.CategoryCounts {
		if cc.Count > 0 {
			lines = append(lines, fmt.Sprintf("- %s %s: %d projects", cc.Emoji, cc.Name, cc.Count))
		}
	}

	lines = append(lines, reportFooter)
	return strings.Join(lines, "\n")
}

func formatEmptyWeekly(weekStart, weekEnd time.Time) string {
	return fmt.Sprintf(`📊 **Weekly AI Trends Report**

📅 %s ~ %s

⚠️ No AI trend data recorded this week
%s`, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"), reportFooter)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
