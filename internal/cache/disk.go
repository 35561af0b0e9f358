package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	artifactExt   = ".clip"
	indexFileName = "clips.index"

	// Artifacts smaller than this are stored uncompressed; mp3 payloads
	// rarely shrink anyway.
	compressThreshold = 1024
)

// DiskStore is a persistent Store keeping one file per artifact plus a gob
// index with creation timestamps and insertion sequence numbers. Writes go
// through a temp file and rename, so readers never observe a partial
// artifact.
type DiskStore struct {
	basePath string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.RWMutex
	index map[string]*diskEntry
}

// diskEntry is the on-disk index record for one artifact.
type diskEntry struct {
	Entry
	FilePath   string
	StoredSize int64
	Compressed bool
}

// NewDiskStore opens (or creates) a disk store rooted at basePath. A missing
// or corrupt index is rebuilt from the directory contents.
func NewDiskStore(basePath string, compressionLevel int) (*DiskStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	ds := &DiskStore{
		basePath: basePath,
		index:    make(map[string]*diskEntry),
	}

	if compressionLevel > 0 {
		var err error
		ds.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		ds.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	if err := ds.loadIndex(); err != nil {
		if err := ds.rebuildIndex(); err != nil {
			return nil, fmt.Errorf("failed to rebuild cache index: %w", err)
		}
	}

	return ds, nil
}

// Path returns the directory backing the store.
func (ds *DiskStore) Path() string {
	return ds.basePath
}

// Read returns the artifact bytes for key.
func (ds *DiskStore) Read(key string) ([]byte, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, ok := ds.index[key]
	if !ok {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// File vanished underneath us; drop the stale index entry.
			delete(ds.index, key)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	if entry.Compressed {
		if ds.decoder == nil {
			return nil, fmt.Errorf("artifact %s is compressed but compression is disabled", key)
		}
		decompressed, err := ds.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress artifact: %w", err)
		}
		data = decompressed
	}

	return data, nil
}

// Write stores data under e.Key, replacing any existing artifact.
func (ds *DiskStore) Write(e Entry, data []byte) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	dataToWrite := data
	compressed := false
	if ds.encoder != nil && len(data) > compressThreshold {
		c := ds.encoder.EncodeAll(data, nil)
		if len(c) < len(data) {
			dataToWrite = c
			compressed = true
		}
	}

	filePath := ds.artifactPath(e.Key)
	if err := writeFileAtomic(filePath, dataToWrite); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	e.Size = int64(len(data))
	ds.index[e.Key] = &diskEntry{
		Entry:      e,
		FilePath:   filePath,
		StoredSize: int64(len(dataToWrite)),
		Compressed: compressed,
	}

	return ds.saveIndex()
}

// Delete removes the entry and its artifact. The index entry is dropped
// even when artifact removal fails, so a failed delete cannot wedge
// eviction.
func (ds *DiskStore) Delete(key string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, ok := ds.index[key]
	if !ok {
		return nil
	}

	delete(ds.index, key)
	saveErr := ds.saveIndex()

	if err := os.Remove(entry.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return saveErr
}

// Forget drops the index entry for key without touching the artifact file.
// Used when the file was observed to be removed externally.
func (ds *DiskStore) Forget(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.index[key]; !ok {
		return
	}
	delete(ds.index, key)
	_ = ds.saveIndex()
}

// Contains reports whether an index entry exists for key.
func (ds *DiskStore) Contains(key string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	_, ok := ds.index[key]
	return ok
}

// List returns entries ordered by (Created, Seq).
func (ds *DiskStore) List() []Entry {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	entries := make([]Entry, 0, len(ds.index))
	for _, e := range ds.index {
		entries = append(entries, e.Entry)
	}
	sortEntries(entries)
	return entries
}

// Len returns the number of stored entries.
func (ds *DiskStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.index)
}

// StoredBytes returns the on-disk size of all artifacts.
func (ds *DiskStore) StoredBytes() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var total int64
	for _, e := range ds.index {
		total += e.StoredSize
	}
	return total
}

// Clear removes every artifact and resets the index.
func (ds *DiskStore) Clear() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	var firstErr error
	for _, entry := range ds.index {
		if err := os.Remove(entry.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}

	ds.index = make(map[string]*diskEntry)
	if err := ds.saveIndex(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Close persists the index.
func (ds *DiskStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return ds.saveIndex()
}

func (ds *DiskStore) artifactPath(key string) string {
	return filepath.Join(ds.basePath, key+artifactExt)
}

func (ds *DiskStore) loadIndex() error {
	file, err := os.Open(filepath.Join(ds.basePath, indexFileName))
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	index := make(map[string]*diskEntry)
	if err := gob.NewDecoder(file).Decode(&index); err != nil {
		return err
	}
	ds.index = index
	return nil
}

// rebuildIndex reconstructs bookkeeping from the artifact files themselves.
// Creation times come from file mtimes and sequence numbers from the
// resulting order, so eviction stays deterministic across restarts.
func (ds *DiskStore) rebuildIndex() error {
	ds.index = make(map[string]*diskEntry)

	dirEntries, err := os.ReadDir(ds.basePath)
	if err != nil {
		return err
	}

	type found struct {
		key  string
		path string
		info fs.FileInfo
	}
	var clips []found
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), artifactExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		clips = append(clips, found{
			key:  strings.TrimSuffix(de.Name(), artifactExt),
			path: filepath.Join(ds.basePath, de.Name()),
			info: info,
		})
	}

	entries := make([]Entry, 0, len(clips))
	paths := make(map[string]string, len(clips))
	sizes := make(map[string]int64, len(clips))
	for _, c := range clips {
		entries = append(entries, Entry{
			Key:     c.key,
			Size:    c.info.Size(),
			Created: c.info.ModTime(),
		})
		paths[c.key] = c.path
		sizes[c.key] = c.info.Size()
	}
	sortEntries(entries)

	for i, e := range entries {
		e.Seq = uint64(i)
		compressed := isZstdFrame(paths[e.Key])
		if compressed && ds.decoder == nil {
			// Can't serve this artifact; leave it unindexed so lookups
			// miss and the next write replaces it.
			continue
		}
		ds.index[e.Key] = &diskEntry{
			Entry:      e,
			FilePath:   paths[e.Key],
			StoredSize: sizes[e.Key],
			Compressed: compressed,
		}
	}

	return ds.saveIndex()
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// isZstdFrame sniffs the zstd magic number, distinguishing compressed
// artifacts from raw mp3 during an index rebuild.
func isZstdFrame(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck

	header := make([]byte, len(zstdMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return bytes.Equal(header, zstdMagic)
}

func (ds *DiskStore) saveIndex() error {
	indexPath := filepath.Join(ds.basePath, indexFileName)
	tempPath := indexPath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(file).Encode(ds.index)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath) //nolint:errcheck
		return closeErr
	}

	return os.Rename(tempPath, indexPath)
}

// writeFileAtomic writes data to a temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath) //nolint:errcheck
		return closeErr
	}

	return os.Rename(tempPath, path)
}

var _ Store = (*DiskStore)(nil)
