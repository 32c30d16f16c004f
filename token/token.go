// Package token defines the access credential model consumed by the
// entitlement engine: the token itself, the server fleet description, and
// the tiered-access client policies. Tokens arrive already authenticated;
// this package only models and (de)serializes them.
package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/yllada/vpn-access/common"
)

// AccessKeyScheme prefixes the serialized wire form of a token.
const AccessKeyScheme = "va://"

// ClientPolicy describes the tiered access an operator grants to clients
// located in a given country. A CountryCode of "*" is the fallback policy.
type ClientPolicy struct {
	// CountryCode is a two-letter code, or "*" for the default policy.
	CountryCode string `json:"countryCode" yaml:"country_code"`
	// FreeLocations lists country codes where this policy grants
	// unconditional free access.
	FreeLocations []string `json:"freeLocations,omitempty" yaml:"free_locations,omitempty"`
	// Normal is the free-tier quota, if any.
	Normal *int `json:"normal,omitempty" yaml:"normal,omitempty"`
	// PremiumByPurchase indicates premium can be unlocked by purchase.
	PremiumByPurchase bool `json:"premiumByPurchase,omitempty" yaml:"premium_by_purchase,omitempty"`
	// PremiumByRewardAd is the reward-ad premium quota, if any.
	PremiumByRewardAd *int `json:"premiumByRewardAd,omitempty" yaml:"premium_by_reward_ad,omitempty"`
	// PremiumByTrial is the trial premium quota, if any.
	PremiumByTrial *int `json:"premiumByTrial,omitempty" yaml:"premium_by_trial,omitempty"`
}

// ServerToken describes the server fleet a token grants access to.
type ServerToken struct {
	HostName        string    `json:"hostName,omitempty" yaml:"host_name,omitempty"`
	HostPort        int       `json:"hostPort,omitempty" yaml:"host_port,omitempty"`
	HostEndpoints   []string  `json:"hostEndpoints,omitempty" yaml:"host_endpoints,omitempty"`
	IsValidHostName bool      `json:"isValidHostName" yaml:"is_valid_host_name"`
	CertificateHash []byte    `json:"certificateHash,omitempty" yaml:"certificate_hash,omitempty"`
	Secret          []byte    `json:"secret,omitempty" yaml:"secret,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	// ServerLocations is the unordered raw location list, one entry per
	// "country[/region] [#tag ...]" string.
	ServerLocations []string `json:"serverLocations,omitempty" yaml:"server_locations,omitempty"`
}

// Token is a signed access credential. Signature verification happens
// before a token reaches this package.
type Token struct {
	TokenID        string         `json:"tokenId" yaml:"token_id"`
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	SupportID      string         `json:"supportId,omitempty" yaml:"support_id,omitempty"`
	IssuedAt       time.Time      `json:"issuedAt,omitempty" yaml:"issued_at,omitempty"`
	Secret         []byte         `json:"secret,omitempty" yaml:"secret,omitempty"`
	Tags           []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	ClientPolicies []ClientPolicy `json:"clientPolicies,omitempty" yaml:"client_policies,omitempty"`
	ServerToken    ServerToken    `json:"serverToken" yaml:"server_token"`
}

// IsPublic reports whether the token marks its holder as a free
// (non-premium) client.
func (t *Token) IsPublic() bool {
	return common.StringInSlice(common.TagPublic, t.Tags)
}

// Policy returns the client policy applicable to the given country code:
// an exact match if present, else the wildcard policy, else nil.
func (t *Token) Policy(countryCode string) *ClientPolicy {
	var fallback *ClientPolicy
	for i := range t.ClientPolicies {
		p := &t.ClientPolicies[i]
		if strings.EqualFold(p.CountryCode, countryCode) {
			return p
		}
		if p.CountryCode == common.CountryWildcard {
			fallback = p
		}
	}
	return fallback
}

// Clone returns a deep copy of the token. The resolver treats token
// snapshots as immutable, so callers clone before handing one out.
func (t *Token) Clone() *Token {
	data, err := json.Marshal(t)
	if err != nil {
		// Token is a plain data struct; marshal cannot fail on it.
		panic(err)
	}
	var clone Token
	if err := json.Unmarshal(data, &clone); err != nil {
		panic(err)
	}
	return &clone
}

// ToAccessKey serializes the token into its portable wire form.
func (t *Token) ToAccessKey() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", common.WrapError(err, "failed to serialize token")
	}
	return AccessKeyScheme + base64.URLEncoding.EncodeToString(data), nil
}

// FromAccessKey parses a token from its wire form. The scheme prefix is
// optional so raw base64 keys are also accepted.
func FromAccessKey(accessKey string) (*Token, error) {
	encoded := strings.TrimSpace(accessKey)
	encoded = strings.TrimPrefix(encoded, AccessKeyScheme)
	if encoded == "" {
		return nil, common.ErrInvalidAccessKey
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.WrapError(common.ErrInvalidAccessKey, err.Error())
	}

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, common.WrapError(common.ErrInvalidAccessKey, err.Error())
	}
	if t.TokenID == "" {
		return nil, common.WrapError(common.ErrInvalidAccessKey, "missing token id")
	}
	return &t, nil
}
