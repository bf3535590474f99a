package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// writeFile creates a temporary file next to path, hands it to write and
// renames it to path. Any failure removes the temporary file.
func writeFile(path string, write func(f *os.File) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenDestination, path, err)
	}
	tmp := f.Name()
	if err = f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %w", ErrOpenDestination, path, err)
	}

	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp))
		}
	}()

	if err = write(f); err != nil {
		return multierr.Append(fmt.Errorf("writing %s: %w", path, err), f.Close())
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
