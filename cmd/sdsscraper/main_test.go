package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sdsscraper/internal/downloader"
	"sdsscraper/internal/testserver"
	"sdsscraper/pkg/ui"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFilenameCommand(t *testing.T) {
	out, err := execute(t, "filename",
		testserver.DocumentURL("prd=ABC123~~lang=en"),
		testserver.DocumentURL("prd=DEF456~~EN"))
	require.NoError(t, err)
	assert.Equal(t, "abc123-lang=en.pdf\ndef456-en.pdf\n", out)

	_, err = execute(t, "filename")
	assert.Error(t, err, "at least one URL is required")
}

func TestExtractCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	htmlFile := filepath.Join(t.TempDir(), "pages.html")
	html := testserver.ListingHTML(0, "prd=A1~~EN", "prd=B2~~DE", "prd=A1~~EN", "prd=C|D")
	require.NoError(t, os.WriteFile(htmlFile, []byte(html), 0644))

	out, err := execute(t, "extract", "--html-file", htmlFile, "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		testserver.DocumentURL("prd=A1~~EN") + "\ta1-en.pdf",
		testserver.DocumentURL("prd=B2~~DE") + "\tb2-de.pdf",
	}, lines)
}

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sdsscraper.yaml")

	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--config", path)
	assert.Error(t, err, "existing file is not overwritten")

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "bio-rad-msds.html")
	assert.Contains(t, out, "concurrent_downloads: 20")
}

func TestChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addPageFlags(cmd)
	addExtractFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--start", "5", "--engine", "rod", "--headless=false"}))

	flags := changedFlags(cmd, pipelineFlags)
	assert.Equal(t, map[string]interface{}{
		"start-page": 5,
		"engine":     "rod",
		"headless":   false,
	}, flags)
}

func TestReportResult(t *testing.T) {
	var buf bytes.Buffer
	console := ui.NewConsole(&buf, true)
	tracker := ui.NewStatusTracker(0)
	tracker.SetTotal(3)

	reportResult(console, tracker, downloader.DownloadResult{
		Job:    downloader.DownloadJob{Filename: "abc123-en.pdf"},
		Status: downloader.StatusDownloaded,
		Size:   2048,
	}, false)
	assert.Equal(t, "[SAVED] abc123-en.pdf 2.0 KiB\n", buf.String())

	buf.Reset()
	reportResult(console, tracker, downloader.DownloadResult{
		Job:    downloader.DownloadJob{Filename: "def456-de.pdf"},
		Status: downloader.StatusSkipped,
	}, true)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\r\033[K[EXISTS] def456-de.pdf\n"))
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "new: 1 | skipped: 1 | failed: 0")
}
