package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yllada/vpn-access/common"
)

func sampleToken() *Token {
	return &Token{
		TokenID:   "token-1",
		Name:      "Sample Server",
		SupportID: "42",
		Secret:    []byte{1, 2, 3, 4},
		Tags:      []string{"#public"},
		ClientPolicies: []ClientPolicy{
			{CountryCode: "*", FreeLocations: []string{"US"}},
			{CountryCode: "CA", FreeLocations: []string{"CA"}},
		},
		ServerToken: ServerToken{
			HostName:        "vpn.example.com",
			HostPort:        443,
			IsValidHostName: true,
			ServerLocations: []string{"us", "ca/region1 [#premium]"},
		},
	}
}

func TestAccessKeyRoundTrip(t *testing.T) {
	original := sampleToken()

	key, err := original.ToAccessKey()
	if err != nil {
		t.Fatalf("ToAccessKey() error = %v", err)
	}
	if len(key) <= len(AccessKeyScheme) || key[:len(AccessKeyScheme)] != AccessKeyScheme {
		t.Fatalf("ToAccessKey() = %q, want %q prefix", key, AccessKeyScheme)
	}

	parsed, err := FromAccessKey(key)
	if err != nil {
		t.Fatalf("FromAccessKey() error = %v", err)
	}
	if parsed.TokenID != original.TokenID {
		t.Errorf("TokenID = %q, want %q", parsed.TokenID, original.TokenID)
	}
	if parsed.ServerToken.HostName != original.ServerToken.HostName {
		t.Errorf("HostName = %q, want %q", parsed.ServerToken.HostName, original.ServerToken.HostName)
	}
	if len(parsed.ClientPolicies) != 2 {
		t.Errorf("ClientPolicies = %d entries, want 2", len(parsed.ClientPolicies))
	}
}

func TestFromAccessKey_SchemeOptional(t *testing.T) {
	key, err := sampleToken().ToAccessKey()
	if err != nil {
		t.Fatalf("ToAccessKey() error = %v", err)
	}

	parsed, err := FromAccessKey(key[len(AccessKeyScheme):])
	if err != nil {
		t.Fatalf("FromAccessKey() error = %v", err)
	}
	if parsed.TokenID != "token-1" {
		t.Errorf("TokenID = %q, want token-1", parsed.TokenID)
	}
}

func TestFromAccessKey_Invalid(t *testing.T) {
	missingID, _ := json.Marshal(Token{Name: "no id"})

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"scheme only", AccessKeyScheme},
		{"not base64", AccessKeyScheme + "!!not-base64!!"},
		{"not json", AccessKeyScheme + base64.URLEncoding.EncodeToString([]byte("hello"))},
		{"missing token id", AccessKeyScheme + base64.URLEncoding.EncodeToString(missingID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromAccessKey(tt.key); !errors.Is(err, common.ErrInvalidAccessKey) {
				t.Errorf("FromAccessKey(%q) error = %v, want ErrInvalidAccessKey", tt.key, err)
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	tok := sampleToken()
	if !tok.IsPublic() {
		t.Error("IsPublic() = false for #public token, want true")
	}

	tok.Tags = nil
	if tok.IsPublic() {
		t.Error("IsPublic() = true for untagged token, want false")
	}
}

func TestPolicy(t *testing.T) {
	tok := sampleToken()

	t.Run("exact match is case-insensitive", func(t *testing.T) {
		p := tok.Policy("ca")
		if p == nil || p.CountryCode != "CA" {
			t.Fatalf("Policy(ca) = %v, want CA policy", p)
		}
	})

	t.Run("falls back to wildcard", func(t *testing.T) {
		p := tok.Policy("FR")
		if p == nil || p.CountryCode != "*" {
			t.Fatalf("Policy(FR) = %v, want wildcard policy", p)
		}
	})

	t.Run("nil without wildcard", func(t *testing.T) {
		tok := sampleToken()
		tok.ClientPolicies = tok.ClientPolicies[1:]
		if p := tok.Policy("FR"); p != nil {
			t.Fatalf("Policy(FR) = %v, want nil", p)
		}
	})

	t.Run("nil without policies", func(t *testing.T) {
		tok := sampleToken()
		tok.ClientPolicies = nil
		if p := tok.Policy("US"); p != nil {
			t.Fatalf("Policy(US) = %v, want nil", p)
		}
	})
}

func TestClone(t *testing.T) {
	original := sampleToken()
	clone := original.Clone()

	clone.Name = "changed"
	clone.ServerToken.ServerLocations[0] = "de"
	clone.ClientPolicies[0].FreeLocations[0] = "DE"

	if original.Name != "Sample Server" {
		t.Errorf("original Name = %q, want unchanged", original.Name)
	}
	if original.ServerToken.ServerLocations[0] != "us" {
		t.Errorf("original ServerLocations[0] = %q, want unchanged", original.ServerToken.ServerLocations[0])
	}
	if original.ClientPolicies[0].FreeLocations[0] != "US" {
		t.Errorf("original FreeLocations[0] = %q, want unchanged", original.ClientPolicies[0].FreeLocations[0])
	}
}
