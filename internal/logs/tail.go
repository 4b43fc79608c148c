package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const maxLineBytes = 1024 * 1024

// TailResult holds lines read from a log file and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Latest returns the lexically greatest file in dir matching pattern. Daily
// log names embed an ISO date, so that is also the newest. It returns "" when
// nothing matches.
func Latest(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob log files: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

// Last returns up to limit trailing lines of path. A missing file yields no
// lines and offset zero. limit <= 0 skips straight to the end.
func Last(path string, limit int) (TailResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return TailResult{}, fmt.Errorf("seek log file: %w", err)
		}
		return TailResult{Offset: offset}, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	ring := make([]string, limit)
	count, idx := 0, 0
	var offset int64
	for scanner.Scan() {
		line := scanner.Text()
		offset += int64(len(scanner.Bytes())) + 1
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return TailResult{}, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return TailResult{}, fmt.Errorf("seek log file: %w", err)
	}
	// A final line without a newline is not counted twice.
	offset = min(offset, end)
	return TailResult{Lines: lines, Offset: offset}, nil
}

// ReadFrom returns the complete lines appended after offset. A partial last
// line is left for the next call. If the file shrank below offset it is read
// from the start.
func ReadFrom(path string, offset int64) (TailResult, error) {
	result := TailResult{Offset: offset}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return result, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		result.Lines = append(result.Lines, line[:len(line)-1])
	}
	result.Offset = offset
	return result, nil
}

// Follow polls path every interval and hands newly appended lines to emit
// until ctx ends. It returns nil on cancellation.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	return follow(ctx, path, offset, interval, emit, nil)
}

// FollowLatest behaves like Follow but also watches dir for a newer file
// matching pattern. Once path is drained it switches to that file and reads
// it from the start, so a follow that spans midnight moves on to the next
// day's log.
func FollowLatest(ctx context.Context, dir, pattern, path string, offset int64, interval time.Duration, emit func(string)) error {
	next := func(current string) (string, error) {
		latest, err := Latest(dir, pattern)
		if err != nil {
			return "", err
		}
		if latest == "" || latest <= current {
			return current, nil
		}
		return latest, nil
	}
	return follow(ctx, path, offset, interval, emit, next)
}

func follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string), next func(string) (string, error)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := ReadFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range result.Lines {
			emit(line)
		}
		offset = result.Offset

		if next != nil {
			newer, err := next(path)
			if err != nil {
				return err
			}
			if newer != path {
				path, offset = newer, 0
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
