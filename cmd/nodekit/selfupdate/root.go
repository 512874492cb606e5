package selfupdate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	libfetchurl "github.com/lucasew/fetchurl"
	"github.com/spf13/cobra"

	"nodekit/pkg/version"
)

const releaseAPI = "https://api.github.com/repos/nodekit-tools/nodekit/releases/latest"

// NewCommand builds the self-update subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update the nodekit binary to the latest release",
		RunE: func(c *cobra.Command, args []string) error {
			return runSelfUpdate(c)
		},
	}
}

type githubAsset struct {
	Name               string `json:"name"`
	Digest             string `json:"digest"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

func runSelfUpdate(cmd *cobra.Command) error {
	ctx := cmd.Context()

	installPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate current binary: %w", err)
	}
	installPath, err = filepath.EvalSymlinks(installPath)
	if err != nil {
		return fmt.Errorf("failed to resolve current binary: %w", err)
	}

	assetName := fmt.Sprintf("nodekit-%s-%s", runtime.GOOS, runtime.GOARCH)
	slog.Info("fetching release info", "url", releaseAPI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseAPI, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch release info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch release info: HTTP %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("failed to parse release info: %w", err)
	}

	var asset *githubAsset
	for i := range release.Assets {
		if release.Assets[i].Name == assetName {
			asset = &release.Assets[i]
			break
		}
	}
	if asset == nil {
		return fmt.Errorf("no asset %s in release %s", assetName, release.TagName)
	}

	algo, hash := "", ""
	if parts := strings.SplitN(asset.Digest, ":", 2); len(parts) == 2 {
		algo, hash = parts[0], parts[1]
	}
	if hash == "" {
		return fmt.Errorf("release asset %s carries no digest, refusing unverified update", assetName)
	}

	slog.Info("downloading release", "name", asset.Name, "version", release.TagName)

	tmpFile := installPath + ".tmp"
	out, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	fetcher := libfetchurl.NewFetcher(http.DefaultClient)
	err = fetcher.Fetch(ctx, libfetchurl.FetchOptions{
		URLs: []string{asset.BrowserDownloadURL},
		Algo: algo,
		Hash: hash,
		Out:  out,
	})
	closeErr := out.Close()
	if err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to download binary: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tmpFile)
		return closeErr
	}

	if err := os.Chmod(tmpFile, 0755); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpFile, installPath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to install binary: %w", err)
	}

	slog.Info("updated", "path", installPath, "version", release.TagName)
	return nil
}
