package location

import (
	"reflect"
	"testing"
)

func TestAggregateTags(t *testing.T) {
	tests := []struct {
		name   string
		leaves []serverLocation
		want   []string
	}{
		{
			name:   "no leaves",
			leaves: nil,
			want:   nil,
		},
		{
			name: "single leaf keeps own tags",
			leaves: []serverLocation{
				{countryCode: "us", region: "texas", tags: []string{"#tag1", "#tag2"}},
			},
			want: []string{"#tag1", "#tag2"},
		},
		{
			name: "tag on every leaf stays positive",
			leaves: []serverLocation{
				{countryCode: "us", region: "texas", tags: []string{"#tag1"}},
				{countryCode: "us", region: "california", tags: []string{"#tag1"}},
			},
			want: []string{"#tag1"},
		},
		{
			name: "tag on a strict subset is negated",
			leaves: []serverLocation{
				{countryCode: "us", region: "virginia", tags: []string{"#tag1", "#tag2"}},
				{countryCode: "us", region: "california", tags: []string{"#tag1", "#tag3"}},
			},
			want: []string{"#tag1", "~#tag2", "~#tag3"},
		},
		{
			name: "positives precede negations in encounter order",
			leaves: []serverLocation{
				{countryCode: "us", region: "virginia", tags: []string{"#partial", "#shared"}},
				{countryCode: "us", region: "california", tags: []string{"#shared"}},
			},
			want: []string{"#shared", "~#partial"},
		},
		{
			name: "untagged leaf negates every tag",
			leaves: []serverLocation{
				{countryCode: "ca", region: "region1", tags: []string{"#premium"}},
				{countryCode: "ca", region: "region2"},
			},
			want: []string{"~#premium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregateTags(tt.leaves)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("aggregateTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	leaves := []serverLocation{
		{countryCode: "ca", region: "region1", tags: []string{"#premium"}},
		{countryCode: "ca", region: "region2"},
	}

	if !hasTag(leaves, "#premium") {
		t.Error("hasTag(#premium) = false, want true")
	}
	if hasTag(leaves, "#public") {
		t.Error("hasTag(#public) = true, want false")
	}
}
