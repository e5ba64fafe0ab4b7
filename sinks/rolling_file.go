package sinks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzip"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/formatters"
	"github.com/corelogio/corelog/internal/metrics"
	"github.com/corelogio/corelog/selflog"
)

// TimePeriod selects the rolling-file time-based rotation granularity.
type TimePeriod int

const (
	// PeriodNone disables time-based rotation.
	PeriodNone TimePeriod = iota
	PeriodDaily
	PeriodHourly
)

func (p TimePeriod) key(t time.Time) string {
	switch p {
	case PeriodDaily:
		return t.Format("2006-01-02")
	case PeriodHourly:
		return t.Format("2006-01-02.15")
	default:
		return ""
	}
}

// RollingFileOptions configures RollingFileTransport. The active rotation
// policy is derived from which knobs are non-zero: MaxBytes alone is
// size-only, Period alone is time-only, both together is hybrid (spec.md
// §4.5). A time-only rolled file is named stem.period.ext, so a second
// rotation within the same period renames over, and replaces, that
// period's earlier rolled file.
type RollingFileOptions struct {
	Path string

	MaxBytes int64
	Period   TimePeriod

	MaxFiles     int
	MaxTotalSize int64

	// Compress gzip-compresses a file as soon as it rolls, using
	// klauspost/compress (faster than the stdlib implementation it's
	// API-compatible with).
	Compress bool

	// WatchExternalChanges enables an fsnotify watch on the log directory
	// so an operator deleting or renaming the active file out from under
	// the process is detected and reported via selflog instead of writes
	// silently vanishing. Truncation is not detected, and the file is not
	// reopened.
	WatchExternalChanges bool
}

// RollingFileTransport is the size/time/hybrid rotating file transport.
// All write/rotate/cleanup operations hold a single mutex (spec.md §4.5).
type RollingFileTransport struct {
	mu sync.Mutex

	dir, stem, ext string
	opts           RollingFileOptions

	file   *os.File
	writer *bufio.Writer

	currentSize         int64
	lastPeriodString    string
	lastPeriodCheckTime time.Time
	sizeRollIndex       int
	rolledFileQueue     []string

	watcher *fsnotify.Watcher
}

var rolledNamePattern = struct {
	digitsOnly, ymd, ymdSeq, ymdHourSeq *regexp.Regexp
}{
	digitsOnly: regexp.MustCompile(`^\d+$`),
	ymd:        regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	ymdSeq:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.\d+$`),
	ymdHourSeq: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.\d{2}\.\d+$`),
}

// NewRollingFileTransport opens (or creates) the file at opts.Path,
// recovering any previously rolled files found alongside it so rotation
// sequence numbers and retention continue correctly across restarts.
func NewRollingFileTransport(opts RollingFileOptions) (*RollingFileTransport, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("corelog: rolling file path is required")
	}

	dir := filepath.Dir(opts.Path)
	fileName := filepath.Base(opts.Path)
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("corelog: create log directory: %w", err)
	}

	t := &RollingFileTransport{
		dir: dir, stem: stem, ext: ext,
		opts: opts,
	}

	now := time.Now()
	if opts.Period != PeriodNone {
		t.lastPeriodString = opts.Period.key(now)
		t.lastPeriodCheckTime = now
	}

	if err := t.recover(now); err != nil {
		return nil, err
	}
	if err := t.openCurrent(); err != nil {
		return nil, err
	}

	if opts.WatchExternalChanges {
		t.startWatch()
	}

	return t, nil
}

func (t *RollingFileTransport) openCurrent() error {
	f, err := os.OpenFile(t.opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("corelog: open log file: %w", err)
	}
	if info, err := f.Stat(); err == nil {
		t.currentSize = info.Size()
	}
	t.file = f
	t.writer = bufio.NewWriterSize(f, 64*1024)
	return nil
}

// recover enumerates dir for files matching stem.<middle>.ext, validates
// <middle> against the rolled-name grammar, seeds rolledFileQueue ordered
// by modification time, and derives sizeRollIndex so subsequent rotations
// continue the existing sequence instead of colliding with it.
func (t *RollingFileTransport) recover(now time.Time) error {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("corelog: list log directory: %w", err)
	}

	prefix := t.stem + "."
	suffix := t.ext
	type rolled struct {
		path    string
		modTime time.Time
		middle  string
	}
	var found []rolled

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base := name
		if t.opts.Compress && strings.HasSuffix(base, ".gz") {
			base = strings.TrimSuffix(base, ".gz")
		}
		if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, suffix) {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(base, prefix), suffix)
		if !validRolledMiddle(middle) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, rolled{path: filepath.Join(t.dir, name), modTime: info.ModTime(), middle: middle})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].modTime.Before(found[j].modTime) })

	currentPeriod := t.opts.Period.key(now)
	maxIdx := 0
	for _, r := range found {
		t.rolledFileQueue = append(t.rolledFileQueue, r.path)
		if idx, period, ok := parseSeqIndex(r.middle); ok {
			if t.opts.Period == PeriodHourly || t.opts.Period == PeriodDaily {
				if period == currentPeriod && idx > maxIdx {
					maxIdx = idx
				}
			} else if idx > maxIdx {
				maxIdx = idx
			}
		}
	}
	t.sizeRollIndex = maxIdx
	return nil
}

func validRolledMiddle(middle string) bool {
	return rolledNamePattern.digitsOnly.MatchString(middle) ||
		rolledNamePattern.ymd.MatchString(middle) ||
		rolledNamePattern.ymdSeq.MatchString(middle) ||
		rolledNamePattern.ymdHourSeq.MatchString(middle)
}

// parseSeqIndex extracts the trailing NNN sequence number from a rolled
// middle segment, if it has one, along with the period prefix (empty for
// size-only names).
func parseSeqIndex(middle string) (idx int, period string, ok bool) {
	if rolledNamePattern.digitsOnly.MatchString(middle) {
		n, err := strconv.Atoi(middle)
		if err != nil {
			return 0, "", false
		}
		return n, "", true
	}
	if rolledNamePattern.ymdSeq.MatchString(middle) {
		parts := strings.SplitN(middle, ".", 2)
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, "", false
		}
		return n, parts[0], true
	}
	if rolledNamePattern.ymdHourSeq.MatchString(middle) {
		i := strings.LastIndexByte(middle, '.')
		n, err := strconv.Atoi(middle[i+1:])
		if err != nil {
			return 0, "", false
		}
		return n, middle[:i], true
	}
	return 0, "", false
}

// WriteLine implements Transport.
func (t *RollingFileTransport) WriteLine(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRotateForTime(); err != nil {
		return err
	}

	n := int64(len(line) + 1)
	if t.opts.MaxBytes > 0 && t.currentSize+n > t.opts.MaxBytes && t.currentSize > 0 {
		if err := t.rotate(rotateSize); err != nil {
			return err
		}
	}

	if _, err := t.writer.WriteString(line); err != nil {
		return err
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return err
	}
	t.currentSize += n
	return nil
}

func (t *RollingFileTransport) maybeRotateForTime() error {
	if t.opts.Period == PeriodNone {
		return nil
	}
	now := time.Now()
	if now.Truncate(time.Second).Equal(t.lastPeriodCheckTime.Truncate(time.Second)) {
		return nil
	}
	t.lastPeriodCheckTime = now
	key := t.opts.Period.key(now)
	if key == t.lastPeriodString {
		return nil
	}
	if err := t.rotate(rotateTime); err != nil {
		return err
	}
	t.lastPeriodString = key
	return nil
}

type rotateReason int

const (
	rotateSize rotateReason = iota
	rotateTime
)

func (t *RollingFileTransport) rotate(reason rotateReason) error {
	if reason == rotateSize {
		metrics.FileRotations.WithLabelValues("size").Inc()
	} else {
		metrics.FileRotations.WithLabelValues("time").Inc()
	}
	if err := t.writer.Flush(); err != nil {
		return err
	}
	if err := t.file.Close(); err != nil {
		return err
	}

	hasSize := t.opts.MaxBytes > 0
	hasTime := t.opts.Period != PeriodNone

	var rolledName string
	switch {
	case hasSize && hasTime:
		if reason == rotateTime {
			t.sizeRollIndex = 0
		}
		t.sizeRollIndex++
		rolledName = fmt.Sprintf("%s.%s.%03d%s", t.stem, t.lastPeriodString, t.sizeRollIndex, t.ext)
	case hasTime:
		rolledName = fmt.Sprintf("%s.%s%s", t.stem, t.lastPeriodString, t.ext)
	case hasSize:
		t.sizeRollIndex++
		rolledName = fmt.Sprintf("%s.%03d%s", t.stem, t.sizeRollIndex, t.ext)
	default:
		rolledName = fmt.Sprintf("%s.%d%s", t.stem, time.Now().UnixNano(), t.ext)
	}

	rolledPath := filepath.Join(t.dir, rolledName)
	if err := os.Rename(t.opts.Path, rolledPath); err != nil {
		return fmt.Errorf("corelog: roll log file: %w", err)
	}

	if t.opts.Compress {
		if compressed, err := compressFile(rolledPath); err == nil {
			rolledPath = compressed
		} else {
			selflog.Printf("[rollingfile] compress failed for %s: %v", rolledPath, err)
		}
	}

	t.rolledFileQueue = append(t.rolledFileQueue, rolledPath)
	t.enforceRetention()

	t.currentSize = 0
	return t.openCurrent()
}

func compressFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := path + ".gz"
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return "", err
	}
	if err := gw.Close(); err != nil {
		return "", err
	}
	src.Close()
	os.Remove(path)
	return dstPath, nil
}

// enforceRetention applies maxFiles then maxTotalSize, deleting from the
// head of rolledFileQueue (the oldest file).
func (t *RollingFileTransport) enforceRetention() {
	if t.opts.MaxFiles > 0 {
		for len(t.rolledFileQueue) > t.opts.MaxFiles {
			t.popAndDeleteOldest()
		}
	}
	if t.opts.MaxTotalSize > 0 {
		for t.totalRolledSize() > t.opts.MaxTotalSize && len(t.rolledFileQueue) > 0 {
			t.popAndDeleteOldest()
		}
	}
}

func (t *RollingFileTransport) totalRolledSize() int64 {
	var total int64
	for _, p := range t.rolledFileQueue {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

func (t *RollingFileTransport) popAndDeleteOldest() {
	if len(t.rolledFileQueue) == 0 {
		return
	}
	oldest := t.rolledFileQueue[0]
	t.rolledFileQueue = t.rolledFileQueue[1:]
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		selflog.Printf("[rollingfile] retention delete failed for %s: %v", oldest, err)
	}
}

// Flush implements TransportFlusher.
func (t *RollingFileTransport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writer.Flush()
}

// Close implements TransportCloser.
func (t *RollingFileTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.watcher != nil {
		t.watcher.Close()
	}
	if err := t.writer.Flush(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}

// startWatch installs a best-effort fsnotify watch over the log directory.
// It only reports anomalies through selflog; it never attempts to repair
// the file out from under a concurrent writer.
func (t *RollingFileTransport) startWatch() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		selflog.Printf("[rollingfile] fsnotify unavailable: %v", err)
		return
	}
	if err := w.Add(t.dir); err != nil {
		selflog.Printf("[rollingfile] fsnotify watch failed: %v", err)
		w.Close()
		return
	}
	t.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == t.opts.Path && (ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0) {
					selflog.Printf("[rollingfile] active file %s was removed or renamed externally", t.opts.Path)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				selflog.Printf("[rollingfile] fsnotify error: %v", err)
			}
		}
	}()
}

// NewRollingFile builds a rolling-file sink with the default human-readable
// formatter.
func NewRollingFile(opts RollingFileOptions) (*TextSink, error) {
	return NewRollingFileWithFormatter(opts, formatters.NewHuman())
}

// NewRollingFileWithFormatter builds a rolling-file sink rendering entries
// through formatter before they reach the transport.
func NewRollingFileWithFormatter(opts RollingFileOptions, formatter core.Formatter) (*TextSink, error) {
	transport, err := NewRollingFileTransport(opts)
	if err != nil {
		return nil, err
	}
	return NewTextSink("rollingfile", formatter, transport), nil
}
