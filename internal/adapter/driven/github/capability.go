package github

import (
	"context"
	"strconv"
	"strings"

	"log/slog"
)

// minInlineMajor is the oldest GitHub Enterprise Server major version whose
// review-comments API accepts line-anchored comments the way this gateway
// issues them.
const minInlineMajor = 3

// SupportsInlineComments reports whether the host can render line-anchored
// review comments. github.com always can. Enterprise hosts are probed through
// the /meta endpoint's installed_version; when the version cannot be fetched
// or parsed the answer is false, never an error, so callers degrade to
// summary-only comments instead of failing the run.
func (c *Client) SupportsInlineComments(ctx context.Context) (bool, error) {
	if c.gh.BaseURL.Host == "api.github.com" {
		return true, nil
	}

	meta, resp, err := c.gh.Meta.Get(ctx)
	if err != nil {
		slog.Warn("probing host capabilities", "host", c.gh.BaseURL.Host, "error", err)
		return false, nil
	}

	logRateLimit(resp, "meta", 0, 1)

	version := meta.GetInstalledVersion()
	if version == "" {
		slog.Warn("host reports no installed version, assuming no inline comment support",
			"host", c.gh.BaseURL.Host)
		return false, nil
	}

	major, ok := majorVersion(version)
	if !ok {
		slog.Warn("unparseable installed version, assuming no inline comment support",
			"host", c.gh.BaseURL.Host, "version", version)
		return false, nil
	}

	return major >= minInlineMajor, nil
}

func majorVersion(version string) (int, bool) {
	head, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return major, true
}
