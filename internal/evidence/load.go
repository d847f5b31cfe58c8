package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/claimshield/claimshield/internal/hash"
)

// LoadRef builds a reference for the file at path, fingerprinting its
// contents. Directories are rejected because they cannot be uploaded.
func LoadRef(path string) (Ref, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Ref{}, fmt.Errorf("stat evidence %s: %w", path, err)
	}
	if fi.IsDir() {
		return Ref{}, fmt.Errorf("evidence %s is a directory", path)
	}
	digest, size, err := hash.DigestFile(path)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Name: filepath.Base(path), Path: path, Digest: digest, Size: size}, nil
}

// LoadRefs fingerprints every path concurrently. Slots with an empty path
// are skipped.
func LoadRefs(ctx context.Context, paths map[Slot]string) (map[Slot]Ref, error) {
	refs := make([]Ref, len(Slots))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range Slots {
		path := paths[s]
		if path == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref, err := LoadRef(path)
			if err != nil {
				return fmt.Errorf("%s evidence: %w", s, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[Slot]Ref, len(Slots))
	for i, s := range Slots {
		if paths[s] != "" {
			out[s] = refs[i]
		}
	}
	return out, nil
}
