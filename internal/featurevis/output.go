package featurevis

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/banshee-data/featurevis/internal/config"
	"github.com/banshee-data/featurevis/internal/fsutil"
	"gonum.org/v1/plot/vg"
)

// File name prefixes, one per renderer.
const (
	agentKind = "agent_features"
	mapKind   = "map_features"
)

// Output is the destination shared by the agent and map renderers. It owns
// the output directory and a single save counter, so figures from either
// renderer form one gap-free sequence: agent_features_0000.png,
// map_features_0001.png, and so on.
//
// Output is safe for concurrent use. The counter is not persisted; a new
// Output starts at 0 and overwrites files left by an earlier process.
type Output struct {
	mu      sync.Mutex
	fs      fsutil.FileSystem
	dir     string
	width   vg.Length
	height  vg.Length
	dpi     int
	counter int
}

// NewOutput creates the output directory (if absent) and returns an Output
// that writes figures sized and placed according to cfg.
func NewOutput(fs fsutil.FileSystem, cfg *config.VisConfig) (*Output, error) {
	if cfg == nil {
		cfg = config.EmptyVisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid visualisation config: %w", err)
	}

	dir := cfg.GetOutputDir()
	if !fs.Exists(dir) {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
		diagf("created output dir %s", dir)
	}

	return &Output{
		fs:     fs,
		dir:    dir,
		width:  vg.Length(cfg.GetFigureWidthIn()) * vg.Inch,
		height: vg.Length(cfg.GetFigureHeightIn()) * vg.Inch,
		dpi:    cfg.GetDPI(),
	}, nil
}

// Dir returns the output directory.
func (o *Output) Dir() string {
	return o.dir
}

// Counter returns the sequence number the next saved figure will use.
func (o *Output) Counter() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counter
}

// FileName returns the file name used for figure n of the given kind.
func FileName(kind string, n int) string {
	return fmt.Sprintf("%s_%04d.png", kind, n)
}

// save renders fig and writes it as the next file in the sequence. The
// counter advances only once the file has been written and closed.
func (o *Output) save(kind string, fig *figure) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	path := filepath.Join(o.dir, FileName(kind, o.counter))

	// Encode fully before creating the file; drawing failures leave no trace.
	var buf bytes.Buffer
	if err := fig.writePNG(&buf, o.width, o.height, o.dpi); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}

	if err := o.writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	o.counter++
	diagf("saved %s (%d bytes)", path, buf.Len())
	return path, nil
}

// writeFile writes data to path, closing the file on every path and removing
// it again if any step fails.
func (o *Output) writeFile(path string, data []byte) (err error) {
	w, err := o.fs.Create(path)
	if err != nil {
		opsf("create %s failed: %v", path, err)
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			opsf("write %s failed: %v", path, err)
			if rerr := o.fs.Remove(path); rerr != nil {
				opsf("failed to remove partial file %s: %v", path, rerr)
			}
		}
	}()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
