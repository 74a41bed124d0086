package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps config names to protocol resource types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// adDomains holds well-known ad and tracking hosts. Subdomains match too.
var adDomains = domainSet(
	"doubleclick.net", "googlesyndication.com", "googleadservices.com",
	"google-analytics.com", "googletagmanager.com", "googletagservices.com",
	"facebook.net", "adnxs.com", "adsrvr.org", "amazon-adsystem.com",
	"criteo.com", "criteo.net", "outbrain.com", "taboola.com", "moatads.com",
	"pubmatic.com", "rubiconproject.com", "scorecardresearch.com",
	"quantserve.com", "hotjar.com", "mixpanel.com", "segment.io", "segment.com",
	"ads-twitter.com", "chartbeat.com", "chartbeat.net", "zedo.com", "media.net",
	"bidswitch.net", "openx.net", "casalemedia.com", "demdex.net", "krxd.net",
	"bluekai.com", "mathtag.com", "serving-sys.com", "rlcdn.com",
	"sharethis.com", "addthis.com", "consensu.org",
)

func domainSet(domains ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

// isAdDomain reports whether host or any of its parent domains is listed.
func isAdDomain(host string) bool {
	host = strings.ToLower(host)
	for host != "" {
		if _, ok := adDomains[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			break
		}
		host = host[idx+1:]
	}
	return false
}

// requestFilter decides which subresource requests never leave the browser.
type requestFilter struct {
	types    map[proto.NetworkResourceType]struct{}
	blockAds bool
}

// newRequestFilter returns nil when there is nothing to block.
func newRequestFilter(blockedTypes []string, blockAds bool) *requestFilter {
	types := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := resourceTypes[name]; ok {
			types[rt] = struct{}{}
		}
	}
	if len(types) == 0 && !blockAds {
		return nil
	}
	return &requestFilter{types: types, blockAds: blockAds}
}

// blocks never rejects the main document.
func (f *requestFilter) blocks(rt proto.NetworkResourceType, rawURL string) bool {
	if rt == proto.NetworkResourceTypeDocument {
		return false
	}
	if _, ok := f.types[rt]; ok {
		return true
	}
	if f.blockAds {
		if u, err := url.Parse(rawURL); err == nil && isAdDomain(u.Hostname()) {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor applying the filter built from
// blockedTypes and blockAds. It returns the running router, or nil when
// nothing is blocked. The caller stops the router when the page closes.
func setupHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	filter := newRequestFilter(blockedTypes, blockAds)
	if filter == nil {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if filter.blocks(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()

	return router
}
