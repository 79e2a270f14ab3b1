package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queencity-ops/leadgen-cli/internal/config"
)

func fbConfig(groups ...string) config.FacebookConfig {
	return config.FacebookConfig{
		Groups:   groups,
		Keywords: []string{"furnace", "air duct"},
	}
}

func TestFacebookSource_NoGroups(t *testing.T) {
	s := NewFacebookSource(fbConfig(), &Credentials{Email: "a@b.c", Password: "x"})
	s.scrapeGroups = func(context.Context) ([]fbPost, error) {
		t.Fatal("browser must not launch without groups")
		return nil, nil
	}

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFacebookSource_NoCredentials(t *testing.T) {
	s := NewFacebookSource(fbConfig("https://www.facebook.com/groups/clthomeowners"), nil)
	s.scrapeGroups = func(context.Context) ([]fbPost, error) {
		t.Fatal("browser must not launch without credentials")
		return nil, nil
	}

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFacebookSource_Discover(t *testing.T) {
	group := "https://www.facebook.com/groups/clthomeowners"
	s := NewFacebookSource(fbConfig(group), &Credentials{Email: "a@b.c", Password: "x"})
	s.scrapeGroups = func(context.Context) ([]fbPost, error) {
		return []fbPost{
			{Author: "Jane Doe", Message: "Anyone know a good furnace cleaner?", Link: "https://www.facebook.com/groups/clthomeowners/posts/99", Group: group},
			{Author: "No Link", Message: "Our air ducts are so dusty lately, any recommendations?", Group: group},
		}, nil
	}

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Jane Doe", candidates[0].Name)
	assert.Equal(t, "Facebook: clthomeowners", candidates[0].Source)
	assert.Equal(t, "https://www.facebook.com/groups/clthomeowners/posts/99", candidates[0].ContactKey)

	// Without a permalink the contact key falls back to group+author.
	assert.Equal(t, group+"_No Link", candidates[1].ContactKey)
}

func TestDedupPosts(t *testing.T) {
	long := "this message is long enough that only its first fifty characters matter for dedup purposes"
	posts := []fbPost{
		{Author: "a", Message: long},
		{Author: "a", Message: long + " trailing difference ignored"},
		{Author: "b", Message: long},
		{Author: "a", Message: "different message"},
	}
	deduped := dedupPosts(posts)
	assert.Len(t, deduped, 3)
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "Facebook: clthomeowners",
		groupLabel("https://www.facebook.com/groups/clthomeowners"))
	assert.Equal(t, "Facebook: 123456",
		groupLabel("https://www.facebook.com/groups/123456/permalink/9"))
	assert.Equal(t, "Facebook: group", groupLabel("https://example.com/other"))
}

func TestIsChallengeURL(t *testing.T) {
	assert.True(t, isChallengeURL("https://www.facebook.com/checkpoint/?next="))
	assert.True(t, isChallengeURL("https://www.facebook.com/login?email="))
	assert.False(t, isChallengeURL("https://www.facebook.com/home.php"))
}
