package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-trend-tracker/internal/llm"
	"ai-trend-tracker/internal/models"
	"ai-trend-tracker/internal/repositories"
	"ai-trend-tracker/pkg/config"
	"ai-trend-tracker/pkg/logger"
)

// FallbackTrendsText replaces the LLM trend analysis when the model is
// unavailable.
const FallbackTrendsText = "AI projects stayed active across multiple technology areas this week."

// PipelineService orchestrates scraping, classification, persistence,
// aggregation and delivery for the daily and weekly tasks.
type PipelineService struct {
	projectRepo *repositories.ProjectRepository
	trendRepo   *repositories.TrendRecordRepository
	pushRepo    *repositories.PushRecordRepository
	weeklyRepo  *repositories.WeeklyReportRepository
	aggregator  *AggregatorService
	classifier  *ClassifierService
	scraper     *ScraperService
	notifier    *NotifierService
	llm         llm.Client
	tasks       config.TasksConfig
}

func NewPipelineService(
	projectRepo *repositories.ProjectRepository,
	trendRepo *repositories.TrendRecordRepository,
	pushRepo *repositories.PushRecordRepository,
	weeklyRepo *repositories.WeeklyReportRepository,
	aggregator *AggregatorService,
	classifier *ClassifierService,
	scraper *ScraperService,
	notifier *NotifierService,
	llmClient llm.Client,
	tasks config.TasksConfig,
) *PipelineService {
	return &PipelineService{
		projectRepo: projectRepo,
		trendRepo:   trendRepo,
		pushRepo:    pushRepo,
		weeklyRepo:  weeklyRepo,
		aggregator:  aggregator,
		classifier:  classifier,
		scraper:     scraper,
		notifier:    notifier,
		llm:         llmClient,
		tasks:       tasks,
	}
}

// ClassifyAndPersist classifies the listings and stores the AI-related ones as
// observations for the given date and window. Returns the stored observation
// IDs in input order. Re-running for the same day resolves to the existing
// rows instead of creating duplicates.
func (s *PipelineService) ClassifyAndPersist(ctx context.Context, listings []models.Listing, date time.Time, window models.TrendWindow) ([]string, error) {
	classified := s.classifier.BatchFilter(ctx, listings)

	var ids []string
	for _, cl := range classified {
		project := &models.Project{
			RepoName:    cl.Listing.RepoName,
			Description: cl.Listing.Description,
			Language:    cl.Listing.Language,
			URL:         cl.Listing.URL,
			FirstSeen:   date,
		}
		projectID, err := s.projectRepo.Upsert(project)
		if err != nil {
			return ids, fmt.Errorf("failed to save project %s: %w", cl.Listing.RepoName, err)
		}

		record := &models.TrendRecord{
			ProjectID:         projectID,
			Date:              date,
			Stars:             cl.Listing.Stars,
			StarsGrowth:       cl.Listing.StarsGrowth,
			TrendType:         window,
			Ranking:           cl.Listing.Ranking,
			AIRelevanceReason: cl.Verdict.Reason,
		}
		recordID, err := s.trendRepo.Upsert(record)
		if err != nil {
			return ids, fmt.Errorf("failed to save trend record for %s: %w", cl.Listing.RepoName, err)
		}
		ids = append(ids, recordID)
	}

	return ids, nil
}

// SelectDailyItems returns the ranked, deduplicated items for one day with
// recently pushed projects filtered out, truncated to limit.
func (s *PipelineService) SelectDailyItems(date time.Time, limit int) ([]*models.TrendRow, error) {
	rows, err := s.trendRepo.GetRange(date, date)
	if err != nil {
		return nil, err
	}

	recentlyPushed, err := s.pushRepo.RecentlyPushed(s.tasks.PushLookbackDays, date)
	if err != nil {
		return nil, err
	}

	var selected []*models.TrendRow
	for _, row := range Deduplicate(rows) {
		if recentlyPushed[row.RepoName] {
			continue
		}
		selected = append(selected, row)
		if limit > 0 && len(selected) == limit {
			break
		}
	}
	if limit <= 0 {
		return nil, nil
	}

	return selected, nil
}

// BuildDailyDigest renders the daily digest text for the given date.
func (s *PipelineService) BuildDailyDigest(date time.Time, limit int) (string, error) {
	items, err := s.SelectDailyItems(date, limit)
	if err != nil {
		return "", err
	}
	return FormatDaily(items, date), nil
}

// BuildWeeklyDigest renders the weekly report text for the given week.
func (s *PipelineService) BuildWeeklyDigest(ctx context.Context, weekStart, weekEnd time.Time, limit int) (string, error) {
	_, _, text, err := s.buildWeekly(ctx, weekStart, weekEnd, limit)
	return text, err
}

func (s *PipelineService) buildWeekly(ctx context.Context, weekStart, weekEnd time.Time, limit int) (*TrendReport, string, string, error) {
	report, err := s.aggregator.Aggregate(weekStart, weekEnd, limit)
	if err != nil {
		return nil, "", "", err
	}

	trends := ""
	if !report.Empty {
		trends = s.analyzeTrends(ctx, report.Items)
	}

	return report, trends, FormatWeekly(report, weekStart, weekEnd, trends), nil
}

// analyzeTrends asks the LLM to summarize the top projects into a few trend
// bullets. On failure it falls back to a constant summary.
func (s *PipelineService) analyzeTrends(ctx context.Context, items []*models.TrendRow) string {
	top := items
	if len(top) > WeeklyDisplayCap {
		top = top[:WeeklyDisplayCap]
	}

	var summary []string
	for _, item := range top {
		summary = append(summary, fmt.Sprintf("- %s: %s (%s)", item.RepoName, item.Description, item.Language))
	}

	prompt := fmt.Sprintf(`Analyze this week's trending GitHub AI projects and summarize the technology trends in 2-3 bullet points, one sentence each:

%s`, strings.Join(summary, "\n"))

	messages := []llm.Message{
		{Role: "system", Content: "You are an expert AI technology trend analyst."},
		{Role: "user", Content: prompt},
	}

	trends, err := s.llm.ChatComplete(ctx, messages, 0.7, 300)
	if err != nil {
		logger.WithError(err).Warnf("LLM trend analysis failed, using fallback text")
		return FallbackTrendsText
	}
	return trends
}

// RunDaily executes the daily task: scrape both trending views, classify and
// persist, then push the top projects not already pushed in the lookback
// window. Delivery failure never rolls back persisted data.
func (s *PipelineService) RunDaily(ctx context.Context, date time.Time, dryRun bool) error {
	logger.Infof("Starting daily task for %s", date.Format("2006-01-02"))

	totalStored := 0
	for _, window := range []models.TrendWindow{models.TrendDaily, models.TrendWeekly} {
		listings, err := s.scraper.FetchTrending(ctx, window)
		if err != nil {
			logger.WithError(err).Errorf("Failed to fetch %s trending", window)
			continue
		}

		ids, err := s.ClassifyAndPersist(ctx, listings, date, window)
		if err != nil {
			s.alert(ctx, dryRun, fmt.Sprintf("⚠️ Daily task failed: %v", err))
			return err
		}
		totalStored += len(ids)
	}

	if totalStored == 0 {
		logger.Warnf("No AI projects found today")
		if !dryRun {
			s.notifier.SendMarkdown(ctx, "⚠️ No AI-related trending projects found today")
		}
		return nil
	}

	items, err := s.SelectDailyItems(date, s.tasks.DailyLimit)
	if err != nil {
		s.alert(ctx, dryRun, fmt.Sprintf("⚠️ Daily task failed: %v", err))
		return err
	}
	if len(items) == 0 {
		logger.Infof("All of today's AI projects were pushed recently, nothing to send")
		return nil
	}

	digest := FormatDaily(items, date)

	if dryRun {
		fmt.Printf("\nDRY RUN - Would send the following message:\n\n%s\n", digest)
		return nil
	}

	if !s.notifier.SendMarkdown(ctx, digest) {
		logger.Errorf("Failed to send daily report")
		return nil
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.RepoName
	}
	if err := s.pushRepo.SaveAll(names, date); err != nil {
		logger.WithError(err).Errorf("Failed to record push history")
	}

	logger.Infof("Daily report sent with %d projects", len(items))
	return nil
}

// RunWeekly executes the weekly task: aggregate the week's observations,
// analyze trends, persist the report as an audit record and deliver it.
func (s *PipelineService) RunWeekly(ctx context.Context, weekStart time.Time, dryRun bool) error {
	weekStart, weekEnd := WeekRange(weekStart)
	logger.Infof("Generating weekly report for %s to %s", weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))

	report, trends, text, err := s.buildWeekly(ctx, weekStart, weekEnd, s.tasks.WeeklyLimit)
	if err != nil {
		s.alert(ctx, dryRun, fmt.Sprintf("⚠️ Weekly report generation failed: %v", err))
		return err
	}

	if !report.Empty {
		weeklyReport := &models.WeeklyReport{
			WeekStart:  weekStart,
			WeekEnd:    weekEnd,
			Summary:    text,
			TechTrends: trends,
		}
		if err := s.weeklyRepo.Create(weeklyReport); err != nil {
			logger.WithError(err).Errorf("Failed to persist weekly report record")
		}
	}

	if err := s.saveHistory(weekEnd, text); err != nil {
		logger.WithError(err).Errorf("Failed to save weekly history file")
	}

	if dryRun {
		fmt.Printf("\nDRY RUN - Would send the following message:\n\n%s\n", text)
		return nil
	}

	if s.notifier.SendMarkdown(ctx, text) {
		logger.Infof("Weekly report sent successfully")
	} else {
		logger.Errorf("Failed to send weekly report")
	}
	return nil
}

func (s *PipelineService) saveHistory(weekEnd time.Time, text string) error {
	if err := os.MkdirAll("history", 0o755); err != nil {
		return err
	}
	path := filepath.Join("history", fmt.Sprintf("%s-weekly.md", weekEnd.Format("2006-01-02")))
	return os.WriteFile(path, []byte(text), 0o644)
}

func (s *PipelineService) alert(ctx context.Context, dryRun bool, message string) {
	if dryRun {
		return
	}
	s.notifier.SendMarkdown(ctx, message)
}

// PipelineStats is the introspection summary of the store.
type PipelineStats struct {
	TotalProjects     int                  `json:"total_projects"`
	TotalTrendRecords int                  `json:"total_trend_records"`
	RecentActivity    []*models.DailyCount `json:"recent_activity"`
}

// Stats returns project and observation counts plus recent per-day activity.
func (s *PipelineService) Stats() (*PipelineStats, error) {
	projects, err := s.projectRepo.Count()
	if err != nil {
		return nil, err
	}
	records, err := s.trendRepo.Count()
	if err != nil {
		return nil, err
	}
	recent, err := s.trendRepo.RecentActivity(7)
	if err != nil {
		return nil, err
	}

	return &PipelineStats{
		TotalProjects:     projects,
		TotalTrendRecords: records,
		RecentActivity:    recent,
	}, nil
}

// WeekRange returns the Monday..Friday window containing target.
func WeekRange(target time.Time) (time.Time, time.Time) {
	daysSinceMonday := (int(target.Weekday()) + 6) % 7
	weekStart := target.AddDate(0, 0, -daysSinceMonday)
	weekEnd := weekStart.AddDate(0, 0, 4)
	return weekStart, weekEnd
}
