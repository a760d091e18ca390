package main

import (
	"github.com/bornholm/ownsearch/internal/command"
	"github.com/bornholm/ownsearch/internal/command/crawl"
	"github.com/bornholm/ownsearch/internal/command/schema"
	"github.com/bornholm/ownsearch/internal/command/search"
	"github.com/bornholm/ownsearch/internal/command/serve"
)

var version = "dev"

func main() {
	command.Main(
		"ownsearch",
		version,
		"Self-hosted site search: crawl, index and serve search results",
		serve.Serve(),
		crawl.Crawl(),
		search.Search(),
		schema.Schema(),
	)
}
