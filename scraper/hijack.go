package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps CLIPPER_BLOCKED_RESOURCES names to CDP resource types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// blockedHosts are the ad, analytics and recommendation-widget hosts seen
// on Korean news portals, grouped by operator. Subdomains match too.
var blockedHosts = [][]string{
	// Google ad stack and analytics, embedded by most press sites.
	{"doubleclick.net", "googlesyndication.com", "googleadservices.com",
		"google-analytics.com", "googletagmanager.com", "googletagservices.com"},
	// Naver and Kakao ad and log endpoints.
	{"wcs.naver.net", "gfp.veta.naver.com", "ad.daum.net"},
	// Domestic ad networks and related-article widgets.
	{"dable.io", "mobon.net", "realclick.co.kr", "adop.cc",
		"nasmedia.co.kr", "interworksmedia.co.kr"},
	// Domestic traffic counters.
	{"acecounter.com"},
	// Global widgets that Korean outlets also carry.
	{"taboola.com", "criteo.com", "criteo.net", "facebook.net"},
}

var adDomains = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, group := range blockedHosts {
		for _, h := range group {
			m[h] = struct{}{}
		}
	}
	return m
}()

// isAdDomain reports whether host or one of its parent domains is blocked.
func isAdDomain(host string) bool {
	for h := strings.ToLower(host); h != ""; {
		if _, ok := adDomains[h]; ok {
			return true
		}
		dot := strings.IndexByte(h, '.')
		if dot < 0 {
			return false
		}
		h = h[dot+1:]
	}
	return false
}

// setupHijack blocks the configured resource types and, when blockAds is
// set, requests to known ad and analytics hosts. The document itself and
// its scripts always load. Returns nil when there is nothing to block.
func setupHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := resourceTypes[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 && !blockAds {
		return nil
	}

	router := page.HijackRequests()

	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if ctx.Request.Type() == proto.NetworkResourceTypeDocument {
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		if blockAds {
			if u, err := url.Parse(ctx.Request.URL().String()); err == nil {
				if isAdDomain(u.Hostname()) {
					ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
					return
				}
			}
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()

	return router
}
