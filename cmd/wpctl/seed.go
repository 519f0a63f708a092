package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/config"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout read by the seed command:
//
//	articles:
//	  - title: Hello
//	    slug: hello
//	    tags: [news]
//	    publish: true
//	pages:
//	  - title: About
//	    slug: about
//	    publish_at: 2030-01-01T08:00:00Z
type seedFile struct {
	Articles []seedItem `yaml:"articles"`
	Pages    []seedItem `yaml:"pages"`
}

type seedItem struct {
	publishing.CreateRequest `yaml:",inline"`

	Publish   bool       `yaml:"publish"`
	PublishAt *time.Time `yaml:"publish_at"`
}

func seed(ctx context.Context, services *config.Services, r io.Reader, out io.Writer) error {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, group := range []struct {
		svc   publishing.Service
		items []seedItem
	}{
		{services.Articles, file.Articles},
		{services.Pages, file.Pages},
	} {
		for i, entry := range group.items {
			item, err := seedOne(ctx, group.svc, entry)
			if err != nil {
				return fmt.Errorf("%s %d (%q): %w", group.svc.Kind(), i+1, entry.Title, err)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", item.Kind, item.ID, stateSummary(item))
		}
	}
	return nil
}

func seedOne(ctx context.Context, svc publishing.Service, entry seedItem) (*publishing.Item, error) {
	item, err := svc.Create(ctx, cliSession, entry.CreateRequest)
	if err != nil {
		return nil, err
	}
	if !entry.Publish && entry.PublishAt == nil {
		return item, nil
	}

	published, err := svc.Publish(ctx, cliSession, item.ID, publishing.PublishRequest{PublishAt: entry.PublishAt})
	if err != nil {
		return nil, err
	}
	return published, nil
}
