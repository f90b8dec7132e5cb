// Package archive builds the compressed tar archive that is persisted under a cache key.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/mholt/archives"
)

// longWindowSize is the zstd window used for long-distance matching. It is the
// largest window a stock zstd decoder accepts without --long.
const longWindowSize = 1 << 27

// Artifact is an archive file built by Create.
type Artifact struct {
	Path   string
	Method compression.Method
	Size   int64
}

// Manager handles archive creation relative to a workspace root.
type Manager struct {
	root string
}

// NewManager creates a Manager. Relative paths passed to Create are resolved
// against root.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Create archives paths, in order, into destDir/<method file name>. Entries of
// relative paths keep their relative name; absolute paths keep their absolute
// name. A failed build leaves no file behind.
func (am *Manager) Create(ctx context.Context, paths []string, method compression.Method, destDir string) (Artifact, error) {
	if len(paths) == 0 {
		return Artifact{}, errors.ErrNoPathsResolved
	}

	files, err := am.collect(ctx, paths)
	if err != nil {
		return Artifact{}, err
	}

	archivePath := filepath.Join(destDir, method.CacheFileName())
	file, err := os.Create(archivePath)
	if err != nil {
		return Artifact{}, errors.Wrapf(errors.ErrArchiveCreate, "create %s: %v", archivePath, err)
	}

	format := archives.CompressedArchive{
		Compression: codec(method),
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, file, files); err != nil {
		_ = file.Close()
		_ = os.Remove(archivePath)
		return Artifact{}, errors.Wrapf(errors.ErrArchiveCreate, "%v", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(archivePath)
		return Artifact{}, errors.Wrapf(errors.ErrArchiveCreate, "sync %s: %v", archivePath, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(archivePath)
		return Artifact{}, errors.Wrapf(errors.ErrArchiveCreate, "close %s: %v", archivePath, err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return Artifact{}, errors.Wrapf(errors.ErrArchiveCreate, "stat %s: %v", archivePath, err)
	}

	return Artifact{Path: archivePath, Method: method, Size: info.Size()}, nil
}

// List returns the entry names of an archive in stored order.
func (am *Manager) List(ctx context.Context, artifactPath string, method compression.Method) ([]string, error) {
	file, err := os.Open(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	format := archives.CompressedArchive{
		Compression: codec(method),
		Extraction:  archives.Tar{},
	}

	var names []string
	err = format.Extract(ctx, file, func(_ context.Context, info archives.FileInfo) error {
		names = append(names, strings.TrimSuffix(info.NameInArchive, "/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive %s: %w", artifactPath, err)
	}
	return names, nil
}

// collect gathers files per path so the archive order follows the path order.
func (am *Manager) collect(ctx context.Context, paths []string) ([]archives.FileInfo, error) {
	var files []archives.FileInfo
	for _, p := range paths {
		disk := filepath.FromSlash(p)
		if !filepath.IsAbs(disk) {
			disk = filepath.Join(am.root, disk)
		}
		batch, err := archives.FilesFromDisk(ctx, nil, map[string]string{
			disk: filepath.ToSlash(p),
		})
		if err != nil {
			return nil, errors.Wrapf(errors.ErrArchiveCreate, "read %s: %v", p, err)
		}
		files = append(files, batch...)
	}
	return files, nil
}

func codec(method compression.Method) archives.Compression {
	if !method.IsZstd() {
		return archives.Gz{}
	}
	if method == compression.Zstd {
		return archives.Zstd{EncoderOptions: []zstd.EOption{zstd.WithWindowSize(longWindowSize)}}
	}
	return archives.Zstd{}
}
