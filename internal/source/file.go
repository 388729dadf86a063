package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"polydict/internal/config"
	"polydict/internal/structure"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// file：本地 GeoJSON 文件，按扩展名透明解压（.zst / .lz4）
type file struct {
	path string
	st   *structure.Structure
}

func createFile(_ context.Context, _ string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error) {
	path, err := cfg.String(config.Join(prefix, "path"))
	if err != nil {
		return nil, err
	}
	if _, err := keyName(st); err != nil {
		return nil, err
	}
	if check {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
	}
	return &file{path: path, st: st}, nil
}

func (s *file) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := readDecompressed(f, s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return featureRows(data, s.st, s.path)
}

func (s *file) Clone() Source { return &file{path: s.path, st: s.st} }

func (s *file) String() string { return "file: " + s.path }

// readDecompressed：按对象名后缀选择解压方式
func readDecompressed(r io.Reader, name string) ([]byte, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case strings.HasSuffix(name, ".lz4"):
		return io.ReadAll(lz4.NewReader(r))
	}
	data, err := io.ReadAll(r)
	if err == nil && len(data) == 0 {
		return nil, errors.New("empty input")
	}
	return data, err
}
