// Package journal records one compressed JSON line per tick so a session can
// be inspected after the fact with `soy replay`.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/soy/economy"
	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/rules"
)

// Entry is what the agent decided on one tick.
type Entry struct {
	Session   string        `json:"session"`
	Tick      int           `json:"tick"`
	Minerals  int           `json:"minerals"`
	FoodUsed  int           `json:"foodUsed"`
	FoodCap   int           `json:"foodCap"`
	Ledger    economy.Stats `json:"ledger"`
	OpenSlots int           `json:"openSlots"`
	Assigned  int           `json:"assigned"`
	Fired     []string      `json:"fired,omitempty"`
	Issued    []rules.Item  `json:"issued,omitempty"`
	Commands  []ipc.Command `json:"commands"`
	Alerts    []string      `json:"alerts,omitempty"`
	Invalid   string        `json:"invalid,omitempty"` // ledger validation failure
}

// Writer appends entries to a zstd-compressed JSONL file. Safe for
// concurrent use.
type Writer struct {
	mu      sync.Mutex
	session string
	path    string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// Create opens a new journal file in dir named after a fresh session id.
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	session := uuid.New().String()
	name := fmt.Sprintf("soy-%s-%s.jsonl.zst", time.Now().UTC().Format("20060102-150405"), session[:8])
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &Writer{
		session: session,
		path:    path,
		f:       f,
		enc:     enc,
		w:       bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func (w *Writer) Session() string { return w.session }
func (w *Writer) Path() string    { return w.path }

// Record appends e, stamped with this writer's session.
func (w *Writer) Record(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return os.ErrClosed
	}

	e.Session = w.session
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal tick %d: %w", e.Tick, err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and finalises the compressed stream.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	errs := []error{w.w.Flush(), w.enc.Close(), w.f.Close()}
	w.w, w.enc, w.f = nil, nil, nil
	return errors.Join(errs...)
}

// Reader streams entries back out of a journal file.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	return &Reader{f: f, dec: dec, sc: sc}, nil
}

// Next returns the next entry, or io.EOF at the end of the journal.
func (r *Reader) Next() (Entry, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Entry{}, err
		}
		return Entry{}, io.EOF
	}
	var e Entry
	if err := json.Unmarshal(r.sc.Bytes(), &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return e, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// ReadAll loads every entry of the journal at path.
func ReadAll(path string) ([]Entry, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
}
