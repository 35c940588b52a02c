package rewards

import (
	"errors"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	cases := []struct {
		in   string
		want Platform
	}{
		{"linkedin", PlatformLinkedIn},
		{"LinkedIn", PlatformLinkedIn},
		{"  linkedin  ", PlatformLinkedIn},
		{"instagram", PlatformInstagram},
		{"INSTAGRAM", PlatformInstagram},
	}
	for _, c := range cases {
		got, err := ParsePlatform(c.in)
		if err != nil {
			t.Errorf("ParsePlatform(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePlatform(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParsePlatformUnknown(t *testing.T) {
	for _, in := range []string{"", "twitter", "facebook", "linked in"} {
		_, err := ParsePlatform(in)
		if !errors.Is(err, ErrUnknownPlatform) {
			t.Errorf("ParsePlatform(%q) error = %v, want ErrUnknownPlatform", in, err)
		}
	}
}

func TestFollowColumn(t *testing.T) {
	if got := PlatformLinkedIn.followColumn(); got != "followed_linkedin" {
		t.Errorf("linkedin column = %q", got)
	}
	if got := PlatformInstagram.followColumn(); got != "followed_instagram" {
		t.Errorf("instagram column = %q", got)
	}
}
