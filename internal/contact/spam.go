package contact

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// DefaultSpamThreshold is the score at or above which a submission is
// blocked. A business tuning value, overridable via configuration.
const DefaultSpamThreshold = 50

const (
	scoreSpamVocabulary = 25
	scoreTooManyURLs    = 30
	scoreShortUserAgent = 20
	scoreBotUserAgent   = 40

	maxEmbeddedURLs = 2
	minUserAgentLen = 20
)

var (
	spamVocabPattern = regexp.MustCompile(`(?i)\b(viagra|cialis|casino|lottery|jackpot|winner|congratulations you|free money|make money fast|work from home|bitcoin|crypto invest|forex|payday loan|seo service|backlinks|cheap followers|click here now)\b`)
	urlPattern       = regexp.MustCompile(`https?://`)
)

var botUserAgents = []string{
	"bot", "crawler", "spider", "scraper",
	"curl", "wget", "python-requests", "python-urllib",
	"scrapy", "httpclient", "go-http-client", "java/",
}

// AssessSpam scores a sanitized submission against the request headers.
// Pure rule evaluation: deterministic, no external calls. Reasons are for
// server-side logs only; the submitter sees a generic rejection.
func AssessSpam(sub SanitizedSubmission, headers http.Header, threshold int) SpamAssessment {
	if threshold <= 0 {
		threshold = DefaultSpamThreshold
	}

	var (
		score   int
		reasons []string
	)

	combined := strings.Join([]string{sub.Name, sub.Email, sub.Service, sub.Message}, " ")
	if spamVocabPattern.MatchString(combined) {
		score += scoreSpamVocabulary
		reasons = append(reasons, "spam vocabulary match")
	}

	if urls := len(urlPattern.FindAllStringIndex(sub.Message, -1)); urls > maxEmbeddedURLs {
		score += scoreTooManyURLs
		reasons = append(reasons, fmt.Sprintf("%d URLs in message", urls))
	}

	ua := strings.TrimSpace(headers.Get("User-Agent"))
	if len(ua) < minUserAgentLen {
		score += scoreShortUserAgent
		reasons = append(reasons, "missing or implausibly short User-Agent")
	}
	if matchesBotUserAgent(ua) {
		score += scoreBotUserAgent
		reasons = append(reasons, "bot User-Agent")
	}

	return SpamAssessment{
		Score:   score,
		IsSpam:  score >= threshold,
		Reasons: reasons,
	}
}

func matchesBotUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	lower := strings.ToLower(ua)
	for _, marker := range botUserAgents {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
