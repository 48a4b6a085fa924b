package robots

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/robots/cache"
)

// DefaultRobotsCacheTTL is the age at which a cached robots.txt verdict is
// considered stale and re-fetched.
const DefaultRobotsCacheTTL = 3600 * time.Second

// Robot is the policy port the crawl worker's state machine consults
// before every fetch (spec.md §4.2 "RobotsCheck"). CachedRobot is the
// only implementation; the interface exists so the crawl worker's task
// loop can be tested against a fake.
type Robot interface {
	Init(userAgent string)
	Decide(target url.URL) (Decision, error)
}

/*
CachedRobot decides whether a URL may be crawled.

Responsibilities:
  - Fetch robots.txt per host, once, and reuse the result for every
    subsequent URL on that host until the cache entry expires.
  - Enforce allow/disallow rules before a URL is admitted to the frontier.
  - Fail open: a robots.txt that cannot be fetched or parsed does not block
    crawling. The allow-all verdict is cached like any other so a host with
    a broken robots.txt is not re-fetched on every single URL.
*/
type CachedRobot struct {
	fetcher   *RobotsFetcher
	sink      metadata.MetadataSink
	userAgent string
	cacheTTL  time.Duration
}

func NewCachedRobot(sink metadata.MetadataSink) CachedRobot {
	return CachedRobot{sink: sink, cacheTTL: DefaultRobotsCacheTTL}
}

// Init wires the robot to an in-memory cache with the default TTL.
func (r *CachedRobot) Init(userAgent string) {
	r.InitWithCache(userAgent, cache.NewMemoryCache())
}

// InitWithCache wires the robot to the given cache implementation, letting
// callers share one cache across robots or substitute a test double.
func (r *CachedRobot) InitWithCache(userAgent string, c cache.Cache) {
	r.userAgent = userAgent
	r.fetcher = NewRobotsFetcher(r.sink, userAgent, c)
}

// InitWithTTL is InitWithCache plus an explicit cache TTL, used by callers
// that read ROBOTS_CACHE_EXPIRE from configuration.
func (r *CachedRobot) InitWithTTL(userAgent string, c cache.Cache, ttl time.Duration) {
	r.InitWithCache(userAgent, c)
	r.cacheTTL = ttl
}

// Decide reports whether target may be crawled under the robots.txt of its
// host. The robots.txt itself is fetched at most once per cacheTTL window;
// a fetch or parse failure fails open (allow) and the allow-all verdict is
// cached so a broken host is not re-fetched on every URL.
func (r CachedRobot) Decide(target url.URL) (Decision, error) {
	scheme := target.Scheme
	if scheme == "" {
		scheme = "https"
	}

	result, fetchErr := r.fetcher.Fetch(context.Background(), scheme, target.Host)
	if fetchErr != nil {
		r.sink.RecordError(
			time.Now(),
			"robots",
			"fetch_robots_txt",
			mapRobotsErrorToMetadataCause(fetchErr),
			fetchErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrHost, target.Host),
			},
		)
		r.fetcher.cacheAllowAll(scheme, target.Host)
		return Decision{Url: target, Allowed: true, Reason: EmptyRuleSet}, nil
	}

	if r.cacheTTL > 0 && time.Since(result.FetchedAt) > r.cacheTTL {
		r.fetcher.forget(scheme, target.Host)
		result, fetchErr = r.fetcher.Fetch(context.Background(), scheme, target.Host)
		if fetchErr != nil {
			r.fetcher.cacheAllowAll(scheme, target.Host)
			return Decision{Url: target, Allowed: true, Reason: EmptyRuleSet}, nil
		}
	}

	if result.Response.IsEmpty() {
		return Decision{Url: target, Allowed: true, Reason: EmptyRuleSet}, nil
	}

	rs := MapResponseToRuleSet(result.Response, r.userAgent, result.FetchedAt)
	return decide(rs, target), nil
}

// decide applies the longest-matching-rule algorithm over an already
// resolved ruleSet: the most specific (longest prefix) matching allow or
// disallow rule wins; ties favor allow.
func decide(rs ruleSet, target url.URL) Decision {
	decision := Decision{Url: target}
	if rs.crawlDelay != nil {
		decision.CrawlDelay = *rs.crawlDelay
	}

	if !rs.hasGroups {
		decision.Allowed = true
		decision.Reason = EmptyRuleSet
		return decision
	}
	if !rs.matchedGroup {
		decision.Allowed = true
		decision.Reason = UserAgentNotMatched
		return decision
	}

	path := target.Path
	if path == "" {
		path = "/"
	}

	bestAllowLen, allowMatched := longestMatch(rs.allowRules, path)
	bestDisallowLen, disallowMatched := longestMatch(rs.disallowRules, path)

	switch {
	case !allowMatched && !disallowMatched:
		decision.Allowed = true
		decision.Reason = NoMatchingRules
	case allowMatched && (!disallowMatched || bestAllowLen >= bestDisallowLen):
		decision.Allowed = true
		decision.Reason = AllowedByRobots
	default:
		decision.Allowed = false
		decision.Reason = DisallowedByRobots
	}
	return decision
}

// longestMatch returns the length of the longest rule prefix that matches
// path, and whether any rule matched at all. A trailing "$" anchors the
// rule to the exact end of path rather than allowing suffixes.
func longestMatch(rules []pathRule, path string) (int, bool) {
	best := -1
	matched := false
	for _, rule := range rules {
		pattern := rule.prefix
		anchored := strings.HasSuffix(pattern, "$")
		pattern = strings.TrimSuffix(pattern, "$")

		if matchesWildcard(pattern, path, anchored) {
			matched = true
			if len(pattern) > best {
				best = len(pattern)
			}
		}
	}
	return best, matched
}

// matchesWildcard matches a robots.txt path pattern against path, treating
// "*" as a wildcard matching any run of characters.
func matchesWildcard(pattern, path string, anchored bool) bool {
	segments := strings.Split(pattern, "*")
	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(path[pos:], seg)
		if idx == -1 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}
	if anchored {
		return pos == len(path)
	}
	return true
}
