package client

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/nwaples/rardecode/v2"
)

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// maxArchiveEntrySize bounds how much of a single archive entry is read into memory.
const maxArchiveEntrySize = 16 << 20

// archiveEntry is a subtitle file extracted from an archive
type archiveEntry struct {
	Filename string
	Content  []byte
}

// isSubtitleFile reports whether name has an extension the pipeline can convert.
func isSubtitleFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".srt", ".vtt":
		return true
	default:
		return false
	}
}

// archiveKind returns "zip", "rar" or "" based on the leading magic bytes.
func archiveKind(content []byte) string {
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return "zip"
	case bytes.HasPrefix(content, rarMagic):
		return "rar"
	default:
		return ""
	}
}

// unwrapArchive extracts the first subtitle file (by name) from a ZIP or RAR archive.
// ok is false when content is not an archive.
func unwrapArchive(content []byte) (entry *archiveEntry, ok bool, err error) {
	switch archiveKind(content) {
	case "zip":
		entry, err = firstSubtitleInZip(content)
		return entry, true, err
	case "rar":
		entry, err = firstSubtitleInRar(content)
		return entry, true, err
	default:
		return nil, false, nil
	}
}

func firstSubtitleInZip(content []byte) (*archiveEntry, error) {
	logger := config.GetLogger()

	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	var candidates []*zip.File
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() || !isSubtitleFile(file.Name) {
			continue
		}
		candidates = append(candidates, file)
	}

	logger.Debug().
		Int("fileCount", len(zipReader.File)).
		Int("subtitleCount", len(candidates)).
		Msg("Searching for subtitle in ZIP archive")

	if len(candidates) == 0 {
		return nil, &apperrors.ErrNoSubtitleInArchive{Archive: "zip", FileCount: len(zipReader.File)}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	file := candidates[0]

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s in ZIP: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := readArchiveEntry(rc, "zip", file.Name, maxArchiveEntrySize)
	if err != nil {
		return nil, err
	}

	return &archiveEntry{Filename: path.Base(file.Name), Content: data}, nil
}

func firstSubtitleInRar(content []byte) (*archiveEntry, error) {
	logger := config.GetLogger()

	rarReader, err := rardecode.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open RAR archive: %w", err)
	}

	// RAR is read sequentially, so every subtitle entry is buffered and the
	// lowest name wins, matching the ZIP ordering.
	var (
		best      *archiveEntry
		bestName  string
		fileCount int
	)
	for {
		header, err := rarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read RAR archive: %w", err)
		}
		if header.IsDir {
			continue
		}
		fileCount++
		if !isSubtitleFile(header.Name) || (best != nil && header.Name >= bestName) {
			continue
		}

		data, err := readArchiveEntry(rarReader, "rar", header.Name, maxArchiveEntrySize)
		if err != nil {
			return nil, err
		}
		best = &archiveEntry{Filename: path.Base(header.Name), Content: data}
		bestName = header.Name
	}

	logger.Debug().
		Int("fileCount", fileCount).
		Bool("found", best != nil).
		Msg("Searched for subtitle in RAR archive")

	if best == nil {
		return nil, &apperrors.ErrNoSubtitleInArchive{Archive: "rar", FileCount: fileCount}
	}
	return best, nil
}

// readArchiveEntry reads at most limit bytes of an entry. A longer entry is an error,
// never a truncated subtitle.
func readArchiveEntry(r io.Reader, archive, name string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from %s: %w", name, strings.ToUpper(archive), err)
	}
	if int64(len(data)) > limit {
		return nil, &apperrors.ErrArchiveEntryTooLarge{Archive: archive, Name: name, Limit: limit}
	}
	return data, nil
}
