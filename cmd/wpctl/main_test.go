package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/api"
	"github.com/wepublish/wepublish-api/pkg/publishing/config"
)

func newMemoryServices(t *testing.T) *config.Services {
	t.Helper()
	cfg, err := config.Load(config.WithEventLogging(false))
	require.NoError(t, err)
	services, err := cfg.BuildServices(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { services.Close() })
	return services
}

const seedYAML = `
articles:
  - title: Hello
    slug: hello
    tags: [news, local]
    publish: true
  - title: Later
    slug: later
    publish_at: 2099-01-01T08:00:00Z
  - title: Draft only
pages:
  - title: About
    slug: about
    shared: true
    properties:
      - key: layout
        value: wide
        public: true
`

func TestSeed(t *testing.T) {
	services := newMemoryServices(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, seed(ctx, services, strings.NewReader(seedYAML), &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], "published"))
	assert.True(t, strings.HasSuffix(lines[1], "pending"))
	assert.True(t, strings.HasSuffix(lines[2], "draft"))

	got, err := services.Articles.GetPublished(ctx, publishing.LookupRequest{Slug: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"news", "local"}, got.Revision.Tags)

	pages, err := services.Pages.List(ctx, cliSession, publishing.ListRequest{})
	require.NoError(t, err)
	require.Len(t, pages.Nodes, 1)
	assert.True(t, pages.Nodes[0].Shared)
	assert.Equal(t, "wide", pages.Nodes[0].Draft().Properties[0].Value)
}

func TestSeed_RejectsUnknownFields(t *testing.T) {
	services := newMemoryServices(t)
	err := seed(context.Background(), services, strings.NewReader("articles:\n  - titel: typo\n"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSeed_EmptyFile(t *testing.T) {
	services := newMemoryServices(t)
	assert.NoError(t, seed(context.Background(), services, strings.NewReader(""), &bytes.Buffer{}))
}

func TestList(t *testing.T) {
	services := newMemoryServices(t)
	ctx := context.Background()
	require.NoError(t, seed(ctx, services, strings.NewReader(seedYAML), &bytes.Buffer{}))

	var out bytes.Buffer
	published := true
	err := list(ctx, services.Articles, publishing.ListRequest{Filter: publishing.Filter{Published: &published}}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Hello")
	assert.NotContains(t, text, "Later")
	assert.Contains(t, text, "1 of 1")
}

func TestServiceFor(t *testing.T) {
	services := newMemoryServices(t)

	svc, err := serviceFor(services, "Pages")
	require.NoError(t, err)
	assert.Equal(t, publishing.KindPage, svc.Kind())

	_, err = serviceFor(services, "events")
	assert.Error(t, err)

	kind, err := kindFor("article")
	require.NoError(t, err)
	assert.Equal(t, publishing.KindArticle, kind)
}

func TestHistory(t *testing.T) {
	cfg, err := config.Load(config.WithEventLogging(false), config.WithArchiveURL("memory"))
	require.NoError(t, err)
	services, err := cfg.BuildServices(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { services.Close() })
	require.NotNil(t, services.Archive)

	ctx := context.Background()
	item, err := services.Articles.Create(ctx, cliSession, publishing.CreateRequest{
		RevisionInput: publishing.RevisionInput{Title: "Archived", Slug: "archived"},
	})
	require.NoError(t, err)
	_, err = services.Articles.Publish(ctx, cliSession, item.ID, publishing.PublishRequest{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, history(ctx, services.Archive, publishing.KindArticle, item.ID, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "AT"))
	assert.Contains(t, lines[1], "created")
	assert.Contains(t, lines[2], "published")
	assert.Contains(t, lines[2], "Archived")

	err = history(ctx, services.Archive, publishing.KindPage, item.ID, &out)
	assert.Error(t, err)
}

func TestMintToken(t *testing.T) {
	secret := []byte("cli-secret")
	now := time.Now().Truncate(time.Second)

	token, err := mintToken(secret, "editor-1", []string{"editor"}, time.Hour, now)
	require.NoError(t, err)

	parsed, err := api.NewTokenAuth(secret).Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "editor-1", parsed.Subject())
	assert.True(t, parsed.Expiration().Equal(now.Add(time.Hour)))

	_, err = api.NewTokenAuth([]byte("other")).Decode(token)
	assert.Error(t, err)
}
