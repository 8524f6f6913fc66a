package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/luca-patrignani/monopoly-replica/ledger"
)

const blockExt = ".yml.zst"

func blockDir(dir, replica string) string {
	return filepath.Join(dir, replica, "blocks")
}

func blockPath(dir, replica string, index int) string {
	return filepath.Join(blockDir(dir, replica), fmt.Sprintf("%08d%s", index, blockExt))
}

// writeBlock stores b under path, replacing the file only once it is
// completely written.
func writeBlock(path string, b ledger.Block) error {
	data, err := ledger.EncodeBlock(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := compress(f, data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write block %d: %w", b.Index, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func compress(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if _, err := bw.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// readBlock decodes and verifies the block stored at path.
func readBlock(path string) (ledger.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.Block{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return ledger.Block{}, err
	}
	defer dec.Close()

	data, err := io.ReadAll(bufio.NewReader(dec))
	if err != nil {
		return ledger.Block{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	b, err := ledger.DecodeBlock(data)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// readBlocks loads every block of replica in index order. A replica without
// a block directory has no blocks.
func readBlocks(dir, replica string) ([]ledger.Block, error) {
	entries, err := os.ReadDir(blockDir(dir, replica))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), blockExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	blocks := make([]ledger.Block, 0, len(names))
	for _, name := range names {
		b, err := readBlock(filepath.Join(blockDir(dir, replica), name))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
