package location

import (
	"strings"

	"github.com/yllada/vpn-access/common"
	"github.com/yllada/vpn-access/token"
)

// Options is the resolved entitlement of one scope: which tiers are
// reachable for the current client and under which quotas. Nil quota
// pointers mean the unlock method is not offered for the scope.
type Options struct {
	HasFree           bool `json:"hasFree" yaml:"has_free"`
	HasPremium        bool `json:"hasPremium" yaml:"has_premium"`
	Prompt            bool `json:"prompt" yaml:"prompt"`
	Normal            *int `json:"normal,omitempty" yaml:"normal,omitempty"`
	PremiumByPurchase bool `json:"premiumByPurchase" yaml:"premium_by_purchase"`
	PremiumByRewardAd *int `json:"premiumByRewardAd,omitempty" yaml:"premium_by_reward_ad,omitempty"`
	PremiumByTrial    *int `json:"premiumByTrial,omitempty" yaml:"premium_by_trial,omitempty"`
}

// Resolve builds the full scope hierarchy of a token and annotates every
// scope with the options available to the current client. clientCountry is
// the client's current two-letter country context; the tier class is taken
// from the token's public tag. Pure function: callers re-invoke it whenever
// the country context or the token changes.
func Resolve(tok *token.Token, clientCountry string) []Info {
	nodes := buildNodes(tok.ServerToken.ServerLocations)
	policy := tok.Policy(clientCountry)
	premiumClient := !tok.IsPublic()

	infos := make([]Info, len(nodes))
	for i, n := range nodes {
		infos[i] = n.info
		infos[i].Options = resolveOptions(n.leaves, policy, premiumClient)
	}
	return infos
}

// resolveOptions computes the entitlement of one scope from its leaves and
// the applicable policy. A nil policy grants nothing.
//
// A leaf is premium-reachable when it carries the premium tag or when its
// country is not granted free access by the policy; a leaf is free when it
// is neither. A scope offers a tier as soon as one of its leaves does.
func resolveOptions(leaves []serverLocation, policy *token.ClientPolicy, premiumClient bool) Options {
	var opts Options
	if policy == nil {
		return opts
	}

	hasFree, hasPremium := false, false
	for _, leaf := range leaves {
		if leafIsPremium(leaf, policy) {
			hasPremium = true
		} else {
			hasFree = true
		}
	}
	hasPremiumTag := hasTag(leaves, common.TagPremium)

	if premiumClient {
		// An already-premium client holds full entitlement end to end;
		// quotas and prompts never apply.
		opts.HasFree = hasFree
		opts.HasPremium = hasPremiumTag
		opts.Normal = intPtr(0)
		return opts
	}

	opts.HasFree = hasFree
	opts.HasPremium = hasPremium
	opts.Prompt = hasPremium
	if hasFree {
		opts.Normal = clonePtr(policy.Normal)
	}
	if hasPremium {
		opts.PremiumByPurchase = policy.PremiumByPurchase
		opts.PremiumByRewardAd = clonePtr(policy.PremiumByRewardAd)
		opts.PremiumByTrial = clonePtr(policy.PremiumByTrial)
	}
	return opts
}

// leafIsPremium reports whether a fleet entry requires premium access
// under the given policy.
func leafIsPremium(leaf serverLocation, policy *token.ClientPolicy) bool {
	if common.StringInSlice(common.TagPremium, leaf.tags) {
		return true
	}
	return !containsFold(policy.FreeLocations, leaf.countryCode)
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}

func clonePtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
