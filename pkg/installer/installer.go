// Package installer downloads, extracts and verifies the development
// headers for one Node.js version. The pipeline is idempotent: a failed
// run rolls the version directory back so the next run starts clean.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"

	"nodekit/pkg/checksum"
	"nodekit/pkg/download"
	"nodekit/pkg/fanout"
	"nodekit/pkg/release"
	"nodekit/pkg/semver"
)

var minimumVersion = semver.MustParse("0.8.0")

// Options configure a single install invocation.
type Options struct {
	// DevDir is the base directory; artifacts land in DevDir/<version>.
	DevDir string
	// DistURL overrides the release mirror.
	DistURL string
	// Ensure skips the install when the version directory already holds
	// a current artifact set.
	Ensure bool
	// Tarball is a locally supplied headers archive; when set no
	// archive download happens.
	Tarball string
	// NodeDir points at user-managed dev files; when set the pipeline
	// is a no-op for prerelease versions.
	NodeDir string
	// CAFile is a PEM bundle of extra trusted certificates.
	CAFile string
	// Proxy is an explicit proxy URL.
	Proxy string
	// Platform defaults to runtime.GOOS. "windows" additionally fetches
	// the per-architecture import libraries.
	Platform string
	// Progress draws a byte progress bar on stderr for the archive
	// download.
	Progress bool

	// noRetry marks that the permission fallback has already run.
	noRetry bool
}

// Install runs the pipeline for version and returns the resolved
// version string on success. On failure the version directory has been
// removed. One retry happens automatically: a permission error
// relocates the devdir under the system temp directory and reruns the
// whole attempt exactly once.
func Install(ctx context.Context, version string, opts Options) (string, error) {
	desc, err := release.Resolve(version, release.ResolveOptions{DistURL: opts.DistURL})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}
	if opts.Platform == "" {
		opts.Platform = runtime.GOOS
	}
	if opts.DevDir == "" {
		return "", ErrNoDevDir
	}

	if !desc.Semver.AtLeast(minimumVersion) {
		return "", ErrUnsupportedVersion
	}
	if desc.Semver.IsPrerelease() {
		switch {
		case opts.NodeDir != "":
			// The caller compiles against their own dev files; nothing
			// to fetch here.
			slog.Debug("prerelease with nodedir, nothing to install", "version", desc.Version)
			return desc.Version, nil
		case opts.Tarball != "":
			// A local archive stands in for the unpublished release.
		default:
			return "", ErrPrereleaseUnsupported
		}
	}

	res, err := attemptInstall(ctx, desc, opts)
	if err == nil || !errors.Is(err, fs.ErrPermission) || opts.noRetry {
		return res, err
	}

	tmpDir := filepath.Join(os.TempDir(), ".nodekit")
	slog.Warn("insufficient permissions, retrying under temporary directory",
		"devdir", opts.DevDir, "tmpdir", tmpDir)

	retry := opts
	retry.DevDir = tmpDir
	retry.noRetry = true

	cleanup := false
	if cwd, cwdErr := os.Getwd(); cwdErr == nil && filepath.Clean(cwd) == filepath.Clean(tmpDir) {
		cleanup = true
	}

	res, err = attemptInstall(ctx, desc, retry)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return "", err
	}
	if cleanup {
		// The fallback landed in the working directory; do not leave
		// the artifact set behind there.
		defer func() {
			_ = os.RemoveAll(filepath.Join(tmpDir, desc.VersionDir))
		}()
	}
	return res, nil
}

// attemptInstall is one full pass of the pipeline against a fixed
// configuration. All failures after the version directory exists funnel
// through a single rollback before returning.
func attemptInstall(ctx context.Context, desc release.Descriptor, opts Options) (string, error) {
	installDir := filepath.Join(opts.DevDir, desc.VersionDir)

	if opts.Ensure {
		proceed, err := needsInstall(installDir)
		if err != nil {
			return "", err
		}
		if !proceed {
			slog.Debug("already installed and current", "dir", installDir)
			return desc.Version, nil
		}
	}

	slog.Debug("install start", "version", desc.Version, "dir", installDir)
	if err := os.MkdirAll(installDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create install directory: %w", err)
	}

	if err := run(ctx, desc, opts, installDir); err != nil {
		slog.Debug("rolling back failed install", "dir", installDir, "err", err)
		if rmErr := os.RemoveAll(installDir); rmErr != nil {
			slog.Warn("rollback failed", "dir", installDir, "err", rmErr)
		}
		return "", err
	}

	slog.Info("installed", "version", desc.Version, "dir", installDir)
	return desc.Version, nil
}

// needsInstall implements the ensure short-circuit: install when the
// directory is absent or its marker is older than the current schema.
func needsInstall(installDir string) (bool, error) {
	if _, err := os.Stat(installDir); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to stat install directory: %w", err)
	}

	stored, err := readMarker(installDir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	if stored >= installVersion {
		return false, nil
	}
	slog.Debug("stale install, upgrading in place", "stored", stored, "required", installVersion)
	return true, nil
}

func run(ctx context.Context, desc release.Descriptor, opts Options, installDir string) error {
	windows := opts.Platform == "windows"
	localMode := opts.Tarball != ""

	// A locally supplied archive is trusted as-is; the manifest is
	// still fetched on windows because the import libraries are
	// downloaded separately and need verification.
	verify := !localMode || windows

	table := checksum.NewTable()
	fetcher := download.NewFetcher(download.Options{Proxy: opts.Proxy, CAFile: opts.CAFile})

	var archive io.ReadCloser
	var contentLength int64 = -1
	if localMode {
		f, err := os.Open(opts.Tarball)
		if err != nil {
			return fmt.Errorf("failed to open tarball: %w", err)
		}
		archive = f
	} else {
		resp, err := fetcher.Fetch(ctx, desc.HeadersURL)
		if err != nil {
			return err
		}
		archive = resp.Body
		contentLength = resp.ContentLength
	}

	hasher := checksum.NewHasher()
	stream := io.TeeReader(archive, hasher)
	if opts.Progress && !localMode {
		bar := progressbar.DefaultBytes(contentLength, "downloading headers")
		stream = io.TeeReader(stream, bar)
	}

	count, exErr := extractTarGz(stream, installDir, headersPredicate)
	if exErr == nil {
		// The tar reader stops at the end-of-archive record; drain any
		// trailing bytes so the hash covers the whole file.
		_, _ = io.Copy(io.Discard, stream)
	}
	archive.Close()
	if exErr != nil {
		if errors.Is(exErr, ErrExtract) {
			return exErr
		}
		if count == 0 {
			return fmt.Errorf("%w: %v", ErrPrematureClose, exErr)
		}
		return fmt.Errorf("failed to extract archive: %w", exErr)
	}
	if count == 0 {
		return fmt.Errorf("%w: archive contained no header files", ErrPrematureClose)
	}
	if !localMode {
		table.RecordObserved(desc.ArchiveFileName, hasher.Sum())
	}
	slog.Debug("extracted headers", "count", count, "dir", installDir)

	// Post-processing fan-out: marker write, import libraries and the
	// checksum manifest run concurrently over disjoint paths.
	var g fanout.Group
	g.Go(func() error {
		return writeMarker(installDir)
	})
	if windows {
		g.Go(func() error {
			return fetchArchLibs(ctx, fetcher, desc.Libs, installDir, table)
		})
	}
	if verify {
		g.Go(func() error {
			return fetchManifest(ctx, fetcher, desc.ShasumsURL, table)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if verify {
		if err := table.Verify(); err != nil {
			return err
		}
		slog.Debug("checksums verified", "version", desc.Version)
	}
	return nil
}

func fetchManifest(ctx context.Context, fetcher *download.Fetcher, url string, table *checksum.Table) error {
	resp, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to download checksum manifest: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read checksum manifest: %w", err)
	}
	table.SetExpected(checksum.ParseManifest(string(data)))
	return nil
}
