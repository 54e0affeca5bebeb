package main_test

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/mediacat/cmd/mediacat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"crawl", "schemas", "snapshots", "show", "diff", "delete"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_CrawlFlags(t *testing.T) {
	t.Parallel()

	t.Run("parses repeated categories and export options", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{
			"crawl",
			"-c", "food=http://www.bbc.co.uk/iplayer/categories/food/all",
			"-c", "films=http://www.bbc.co.uk/iplayer/categories/films/all",
			"--schema", "content-item",
			"--out", "catalog.xml",
			"--no-retry",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"food=http://www.bbc.co.uk/iplayer/categories/food/all",
			"films=http://www.bbc.co.uk/iplayer/categories/films/all",
		}, cli.Crawl.Category)
		assert.Equal(t, "content-item", cli.Crawl.Schema)
		assert.Equal(t, "catalog.xml", cli.Crawl.Out)
		assert.Equal(t, "auto", cli.Crawl.Format)
		assert.True(t, cli.Crawl.NoRetry)
	})

	t.Run("rejects unknown export format", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{"crawl", "--format", "csv"})
		require.Error(t, err)
	})
}
