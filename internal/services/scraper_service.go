package services

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ai-trend-tracker/internal/models"
	"ai-trend-tracker/pkg/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/net/html"
	"golang.org/x/oauth2"
)

const trendingBaseURL = "https://github.com/trending"

type ScraperService struct {
	httpClient *http.Client
	github     *github.Client
}

// NewScraperService creates a scraper. When token is non-empty, scraped star
// counts are refreshed with exact values from the GitHub API.
func NewScraperService(token string) *ScraperService {
	s := &ScraperService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		s.github = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	return s
}

// FetchTrending scrapes the trending page for the given window and returns
// the parsed listings in page order. Articles that fail to parse are skipped.
func (s *ScraperService) FetchTrending(ctx context.Context, since models.TrendWindow) ([]models.Listing, error) {
	url := fmt.Sprintf("%s?since=%s", trendingBaseURL, since)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trending page: %w", err)
	}

	listings := ParseTrendingPage(doc)
	if s.github != nil {
		s.enrichStars(ctx, listings)
	}

	logger.Infof("Scraped %d %s trending projects", len(listings), since)
	return listings, nil
}

// enrichStars replaces scraped star counts with exact values from the API.
// Lookup failures leave the scraped count in place.
func (s *ScraperService) enrichStars(ctx context.Context, listings []models.Listing) {
	for i, listing := range listings {
		parts := strings.SplitN(listing.RepoName, "/", 2)
		if len(parts) != 2 {
			continue
		}
		repo, _, err := s.github.Repositories.Get(ctx, parts[0], parts[1])
		if err != nil {
			logger.WithError(err).Warnf("Failed to fetch repo details for %s", listing.RepoName)
			continue
		}
		if repo.StargazersCount != nil {
			listings[i].Stars = *repo.StargazersCount
		}
	}
}

// ParseTrendingPage extracts listings from a parsed trending page document.
func ParseTrendingPage(doc *html.Node) []models.Listing {
	var listings []models.Listing

	ranking := 0
	for _, article := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "article" && hasClass(n, "Box-row")
	}) {
		ranking++
		listing, ok := parseArticle(article, ranking)
		if !ok {
			logger.Warnf("Failed to parse trending article %d", ranking)
			continue
		}
		listings = append(listings, listing)
	}

	return listings
}

func parseArticle(article *html.Node, ranking int) (models.Listing, bool) {
	h2 := find(article, func(n *html.Node) bool { return n.Data == "h2" })
	if h2 == nil {
		return models.Listing{}, false
	}
	link := find(h2, func(n *html.Node) bool { return n.Data == "a" })
	if link == nil {
		return models.Listing{}, false
	}

	href := attr(link, "href")
	if href == "" {
		return models.Listing{}, false
	}
	repoName := strings.Trim(href, "/")

	listing := models.Listing{
		RepoName: repoName,
		URL:      "https://github.com/" + repoName,
		Language: "Unknown",
		Ranking:  ranking,
	}

	if p := find(article, func(n *html.Node) bool { return n.Data == "p" }); p != nil {
		listing.Description = strings.TrimSpace(text(p))
	}

	if lang := find(article, func(n *html.Node) bool {
		return n.Data == "span" && attr(n, "itemprop") == "programmingLanguage"
	}); lang != nil {
		listing.Language = strings.TrimSpace(text(lang))
	}

	// Star count lives in the link to the stargazers page
	if stars := find(article, func(n *html.Node) bool {
		return n.Data == "a" && strings.HasSuffix(attr(n, "href"), "/stargazers")
	}); stars != nil {
		listing.Stars = ParseStarCount(text(stars))
	}

	if growth := find(article, func(n *html.Node) bool {
		return n.Data == "span" && hasClass(n, "float-sm-right")
	}); growth != nil {
		listing.StarsGrowth = ParseStarsGrowth(text(growth))
	}

	return listing, true
}

var starsGrowthPattern = regexp.MustCompile(`([\d,]+)\s*stars?`)

// ParseStarCount parses counts like "1,234" or "1.2k".
func ParseStarCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	if strings.Contains(strings.ToLower(s), "k") {
		num, err := strconv.ParseFloat(strings.ReplaceAll(strings.ToLower(s), "k", ""), 64)
		if err != nil {
			return 0
		}
		return int(num * 1000)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseStarsGrowth parses growth text like "123 stars today".
func ParseStarsGrowth(s string) int {
	match := starsGrowthPattern.FindStringSubmatch(s)
	if match == nil {
		return 0
	}
	return ParseStarCount(match[1])
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	if n.Type == html.ElementNode && match(n) {
		result = append(result, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result = append(result, findAll(c, match)...)
	}
	return result
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
