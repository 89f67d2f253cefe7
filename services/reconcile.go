package services

import (
	"strings"

	"wellness-backend/models"
)

// PoolView is a presentation-only sub-pool entry produced by ReconcilePools.
// It is never written back to the ledger.
type PoolView struct {
	ServiceName string `json:"serviceName"`
	Total       int    `json:"total"`
	Used        int    `json:"used"`
}

// serviceAliases maps each known service to the name fragments that signal
// it in a legacy package display name. Matching is case-insensitive.
var serviceAliases = map[string][]string{
	"Lymph":    {"lymph", "drainage"},
	"Massage":  {"massage", "aroma", "deep tissue"},
	"Skincare": {"skin", "facial", "face"},
	"Bodycare": {"body", "slim", "scrub"},
}

// combinedKeywords signal a combined/integrated offering spanning every
// known service.
var combinedKeywords = []string{
	"combo", "combined", "integrated", "total", "all-in", "full", "premium", "vip",
}

// inferServices decides which services a legacy package name implies.
// Two or more matched services win outright; a combined keyword (or no match
// at all) falls back to every known service; a single match stands alone.
func inferServices(name string, known []string) []string {
	lower := strings.ToLower(name)

	var matched []string
	for _, svc := range known {
		for _, alias := range serviceAliases[svc] {
			if strings.Contains(lower, alias) {
				matched = append(matched, svc)
				break
			}
		}
	}
	if len(matched) >= 2 {
		return matched
	}

	for _, kw := range combinedKeywords {
		if strings.Contains(lower, kw) {
			return known
		}
	}

	if len(matched) == 1 {
		return matched
	}
	return known
}

// ReconcilePools builds a deterministic sub-pool view for a purchase that
// lacks explicit pool rows (legacy data). The same inputs always produce the
// same map; nothing is persisted. usageCounts carries historical per-service
// consumption from the service_usage table.
func ReconcilePools(purchase *models.PackagePurchase, usageCounts map[string]int, known []string) []PoolView {
	services := inferServices(purchase.Name, known)

	if len(services) == 1 {
		return []PoolView{{
			ServiceName: services[0],
			Total:       purchase.TotalSessions,
			Used:        purchase.UsedSessions,
		}}
	}

	// Even split; the leftover sessions go to the earliest services in the
	// known ordering so the split is stable.
	n := len(services)
	base := purchase.TotalSessions / n
	extra := purchase.TotalSessions % n

	views := make([]PoolView, 0, n)
	for i, svc := range services {
		total := base
		if i < extra {
			total++
		}
		used := usageCounts[svc]
		if used > total {
			used = total
		}
		views = append(views, PoolView{ServiceName: svc, Total: total, Used: used})
	}
	return views
}
