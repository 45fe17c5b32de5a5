package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mediafetch/internal/logging"
	"mediafetch/internal/model"
	"mediafetch/internal/util"
)

// Resolve finds the artifact a finished job produced. A path captured from
// the downloader's output wins while it still exists; otherwise the most
// recently modified complete file in dir is used.
func Resolve(ctx context.Context, captured, dir string) (model.Artifact, error) {
	if captured != "" {
		if fi, err := os.Stat(captured); err == nil && fi.Mode().IsRegular() {
			return artifactFrom(captured, fi), nil
		}
		logging.FromContext(ctx).Debug("printed path is gone, scanning directory", "name", filepath.Base(captured))
	}
	return Newest(ctx, dir)
}

// Newest returns the most recently modified regular file in dir, ignoring
// directories and files still being written. Entries that vanish or
// cannot be stat'ed are skipped.
func Newest(ctx context.Context, dir string) (model.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Artifact{}, fmt.Errorf("%w: %v", model.ErrArtifactNotFound, err)
	}

	var (
		best  model.Artifact
		found bool
	)
	for _, e := range entries {
		if e.IsDir() || util.IsPartial(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			logging.FromContext(ctx).Warn("skip entry", "name", e.Name(), "error", err)
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		if !found || fi.ModTime().After(best.ModTime) {
			best = artifactFrom(filepath.Join(dir, e.Name()), fi)
			found = true
		}
	}
	if !found {
		return model.Artifact{}, model.ErrArtifactNotFound
	}
	return best, nil
}

func artifactFrom(path string, fi os.FileInfo) model.Artifact {
	return model.Artifact{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
}
