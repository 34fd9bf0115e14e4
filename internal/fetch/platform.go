package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known publishing platform.
type Platform string

const (
	// PlatformMedium is medium.com and its custom-domain publications
	PlatformMedium Platform = "medium"
	// PlatformSubstack is a Substack newsletter
	PlatformSubstack Platform = "substack"
	// PlatformWordPress is a wordpress.com hosted blog
	PlatformWordPress Platform = "wordpress"
	// PlatformGhost is a Ghost(Pro) hosted blog
	PlatformGhost Platform = "ghost"
	// PlatformDevTo is the dev.to community
	PlatformDevTo Platform = "devto"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case host == "medium.com" || strings.HasSuffix(host, ".medium.com"):
		return PlatformMedium
	case strings.HasSuffix(host, ".substack.com"):
		return PlatformSubstack
	case strings.HasSuffix(host, ".wordpress.com"):
		return PlatformWordPress
	case strings.HasSuffix(host, ".ghost.io"):
		return PlatformGhost
	case host == "dev.to":
		return PlatformDevTo
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformMedium:
		return []string{"article section", "article"}
	case PlatformSubstack:
		return []string{".available-content .body", ".body.markup", "article"}
	case PlatformWordPress:
		return []string{".entry-content", ".post-content", "article"}
	case PlatformGhost:
		return []string{".gh-content", ".post-content", "article"}
	case PlatformDevTo:
		return []string{"#article-body", ".crayons-article__body", "article"}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Subscription and comment widgets
		"form",
		".subscribe",
		".newsletter",
		".comments",
		"#comments",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformMedium:
		return append(common, ".pw-post-byline-header", ".speechify-ignore")
	case PlatformSubstack:
		return append(common, ".subscription-widget-wrap", ".post-footer", ".button-wrapper")
	case PlatformWordPress:
		return append(common, ".sharedaddy", ".jp-relatedposts", ".wp-block-buttons")
	case PlatformGhost:
		return append(common, ".gh-post-upgrade-cta", ".gh-subscribe")
	case PlatformDevTo:
		return append(common, ".crayons-article__aside", "#reaction-drawer-trigger")
	default:
		return common
	}
}
