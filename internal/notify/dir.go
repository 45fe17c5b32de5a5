package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirDeliverer delivers artifacts by copying them into Dir. It stands in
// for a chat upload when the CLI runs locally.
type DirDeliverer struct {
	Dir string
}

func (d DirDeliverer) SendArtifact(ctx context.Context, path string, meta Meta) error {
	if d.Dir == "" {
		return ErrNoDeliverer
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create delivery dir: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst := filepath.Join(d.Dir, filepath.Base(path))
	tmp, err := os.CreateTemp(d.Dir, ".deliver-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", meta.Title, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
