package location

import (
	"testing"

	"github.com/yllada/vpn-access/token"
)

// policyToken builds a two-policy public token over a mixed free/premium
// fleet, the shape the policy scenarios below all share.
func policyToken() *token.Token {
	return &token.Token{
		TokenID: "token-1",
		Tags:    []string{"#public"},
		ClientPolicies: []token.ClientPolicy{
			{
				CountryCode:       "*",
				FreeLocations:     []string{"US", "CA"},
				Normal:            intPtr(10),
				PremiumByPurchase: true,
				PremiumByRewardAd: intPtr(20),
				PremiumByTrial:    intPtr(30),
			},
			{
				CountryCode:       "CA",
				FreeLocations:     []string{"CA"},
				Normal:            intPtr(200),
				PremiumByPurchase: true,
				PremiumByTrial:    intPtr(300),
			},
		},
		ServerToken: token.ServerToken{
			ServerLocations: []string{
				"US", "US/California",
				"CA/Region1 [#premium]", "CA/Region2",
				"FR/Region1 [#premium]", "FR/Region2 [#premium]",
			},
		},
	}
}

func findScope(t *testing.T, infos []Info, serverLocation string) Info {
	t.Helper()
	for _, info := range infos {
		if info.ServerLocation == serverLocation {
			return info
		}
	}
	t.Fatalf("scope %s not found in %v", serverLocation, scopeStrings(infos))
	return Info{}
}

func TestResolve_FreeClient(t *testing.T) {
	infos := Resolve(policyToken(), "US")

	t.Run("top scope offers both tiers", func(t *testing.T) {
		opts := findScope(t, infos, "*/*").Options
		if !opts.HasFree || !opts.HasPremium || !opts.Prompt {
			t.Errorf("HasFree/HasPremium/Prompt = %v/%v/%v, want true/true/true",
				opts.HasFree, opts.HasPremium, opts.Prompt)
		}
		assertQuota(t, "Normal", opts.Normal, intPtr(10))
		assertQuota(t, "PremiumByRewardAd", opts.PremiumByRewardAd, intPtr(20))
		assertQuota(t, "PremiumByTrial", opts.PremiumByTrial, intPtr(30))
		if !opts.PremiumByPurchase {
			t.Error("PremiumByPurchase = false, want true")
		}
	})

	t.Run("all-free country offers no premium", func(t *testing.T) {
		opts := findScope(t, infos, "us/*").Options
		if !opts.HasFree || opts.HasPremium || opts.Prompt {
			t.Errorf("HasFree/HasPremium/Prompt = %v/%v/%v, want true/false/false",
				opts.HasFree, opts.HasPremium, opts.Prompt)
		}
		assertQuota(t, "Normal", opts.Normal, intPtr(10))
		assertQuota(t, "PremiumByRewardAd", opts.PremiumByRewardAd, nil)
		assertQuota(t, "PremiumByTrial", opts.PremiumByTrial, nil)
	})

	t.Run("all-premium country offers no free tier", func(t *testing.T) {
		opts := findScope(t, infos, "fr/*").Options
		if opts.HasFree || !opts.HasPremium || !opts.Prompt {
			t.Errorf("HasFree/HasPremium/Prompt = %v/%v/%v, want false/true/true",
				opts.HasFree, opts.HasPremium, opts.Prompt)
		}
		assertQuota(t, "Normal", opts.Normal, nil)
		assertQuota(t, "PremiumByRewardAd", opts.PremiumByRewardAd, intPtr(20))
		assertQuota(t, "PremiumByTrial", opts.PremiumByTrial, intPtr(30))
	})
}

// A country policy with a narrower free list turns otherwise free leaves
// premium: for clients under the CA policy the US servers cost premium
// even though no US leaf carries the premium tag.
func TestResolve_CountryPolicyOverride(t *testing.T) {
	infos := Resolve(policyToken(), "CA")

	opts := findScope(t, infos, "us/*").Options
	if opts.HasFree || !opts.HasPremium || !opts.Prompt {
		t.Errorf("HasFree/HasPremium/Prompt = %v/%v/%v, want false/true/true",
			opts.HasFree, opts.HasPremium, opts.Prompt)
	}
	assertQuota(t, "Normal", opts.Normal, nil)
	assertQuota(t, "PremiumByRewardAd", opts.PremiumByRewardAd, nil)
	assertQuota(t, "PremiumByTrial", opts.PremiumByTrial, intPtr(300))
}

func TestResolve_PremiumClient(t *testing.T) {
	tok := policyToken()
	tok.Tags = nil

	infos := Resolve(tok, "US")
	opts := findScope(t, infos, "fr/*").Options

	if opts.HasFree || !opts.HasPremium {
		t.Errorf("HasFree/HasPremium = %v/%v, want false/true", opts.HasFree, opts.HasPremium)
	}
	if opts.Prompt {
		t.Error("Prompt = true, want false")
	}
	assertQuota(t, "Normal", opts.Normal, intPtr(0))
	assertQuota(t, "PremiumByRewardAd", opts.PremiumByRewardAd, nil)
	assertQuota(t, "PremiumByTrial", opts.PremiumByTrial, nil)
	if opts.PremiumByPurchase {
		t.Error("PremiumByPurchase = true, want false")
	}
}

func TestResolve_NoApplicablePolicy(t *testing.T) {
	tok := policyToken()
	tok.ClientPolicies = []token.ClientPolicy{
		{CountryCode: "CA", FreeLocations: []string{"CA"}, Normal: intPtr(200)},
	}

	infos := Resolve(tok, "US")
	for _, info := range infos {
		if info.Options != (Options{}) {
			t.Errorf("%s: Options = %+v, want zero", info.ServerLocation, info.Options)
		}
	}
}

func TestResolve_EmptyFleet(t *testing.T) {
	tok := policyToken()
	tok.ServerToken.ServerLocations = nil

	if infos := Resolve(tok, "US"); len(infos) != 0 {
		t.Errorf("Resolve() = %v, want empty", scopeStrings(infos))
	}
}

func assertQuota(t *testing.T, name string, got, want *int) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %d, want nil", name, *got)
	case want != nil && got == nil:
		t.Errorf("%s = nil, want %d", name, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s = %d, want %d", name, *got, *want)
	}
}
