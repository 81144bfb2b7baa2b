package balance

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nao1215/divbalance/internal/model"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Scanner folds the lines of a file into a running div depth and writes a
// diagnostic row for every line that contains a token.
//
// A Scanner holds no state between scans and can be reused, but it is not
// safe for concurrent use when its output writer is not.
type Scanner struct {
	// out receives one row per token line while the scan runs.
	out io.Writer

	// logger is used for debug logging only. Rows never go to the logger.
	logger *slog.Logger

	// start and end restrict folding to a 1-based inclusive line range.
	// Zero means unbounded on that side.
	start int
	end   int

	// blocks are named ranges whose local balance is reported.
	blocks []model.Block

	// now returns the scan timestamp.
	now func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithOutput sets the writer that receives diagnostic rows.
// A nil writer discards rows.
func WithOutput(w io.Writer) Option {
	return func(s *Scanner) {
		if w == nil {
			w = io.Discard
		}
		s.out = w
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRange restricts the fold to lines start..end (1-based, inclusive).
// Line numbers in rows stay absolute. Zero leaves that side unbounded.
func WithRange(start, end int) Option {
	return func(s *Scanner) {
		s.start = start
		s.end = end
	}
}

// WithBlocks sets named ranges whose local balance is computed.
func WithBlocks(blocks []model.Block) Option {
	return func(s *Scanner) {
		s.blocks = append([]model.Block(nil), blocks...)
	}
}

// withClock overrides the scan timestamp source.
func withClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// NewScanner creates a Scanner that writes rows to standard output.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		out:    os.Stdout,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckDivBalance scans the file at path, writes one row per token line to
// w and returns the final depth.
//
// Zero means every opening was matched by a closing in file order, a
// positive value counts unclosed openings and a negative value counts
// orphaned closings. File access and decoding errors are returned as is,
// wrapped with the path.
func CheckDivBalance(path string, w io.Writer) (int, error) {
	result, err := NewScanner(WithOutput(w)).ScanFile(path)
	if err != nil {
		return 0, err
	}
	return result.FinalDepth, nil
}

// ScanFile reads the whole file at path and scans it.
func (s *Scanner) ScanFile(path string) (*model.Result, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	result, err := s.scan(path, content)
	if err != nil {
		return nil, err
	}
	result.Digest = Digest(content)
	return result, nil
}

// ScanReader reads r fully and scans it. name is recorded as the result path.
func (s *Scanner) ScanReader(name string, r io.Reader) (*model.Result, error) {
	content, err := io.ReadAll(transform.NewReader(r, encoding.UTF8Validator))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	result, err := s.scan(name, content)
	if err != nil {
		return nil, err
	}
	result.Digest = Digest(content)
	return result, nil
}

// readFile reads and UTF-8 validates a file. The handle is closed on every
// return path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // Scanning user-provided paths is the purpose of the tool
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(transform.NewReader(f, encoding.UTF8Validator))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

// Digest returns the hex SHA3-256 of content.
func Digest(content []byte) string {
	sum := sha3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SplitLines splits content into lines the way a text-mode reader does:
// "\r\n" and "\r" are treated as "\n", and a trailing newline does not start
// an extra empty line. Line terminators are dropped.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	text := newlineReplacer.Replace(string(content))
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// scan folds content into a Result, writing rows as it goes.
func (s *Scanner) scan(path string, content []byte) (*model.Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	lines := SplitLines(content)
	result := model.NewResult(path)
	result.TotalLines = len(lines)
	result.Start, result.End = s.bounds(len(lines))

	s.logger.Debug("scanning file",
		"path", path,
		"lines", len(lines),
		"start", result.Start,
		"end", result.End,
	)

	var pending []int
	depth := 0
	for i := result.Start - 1; i < result.End; i++ {
		lineNo := i + 1
		tokens := Tokens(StripComments(lines[i]))
		if len(tokens) == 0 {
			continue
		}

		openings, closings := 0, 0
		for _, tok := range tokens {
			if tok.Kind == Opening {
				openings++
				pending = append(pending, lineNo)
				continue
			}
			closings++
			if len(pending) == 0 {
				result.Orphans = append(result.Orphans, lineNo)
				continue
			}
			pending = pending[:len(pending)-1]
		}

		depth += openings - closings
		record := model.LineRecord{
			Line:     lineNo,
			Openings: openings,
			Closings: closings,
			Depth:    depth,
			Preview:  model.Preview(lines[i]),
		}
		result.Records = append(result.Records, record)
		result.Openings += openings
		result.Closings += closings

		if _, err := fmt.Fprintln(s.out, record.String()); err != nil {
			return nil, fmt.Errorf("failed to write row for line %d: %w", lineNo, err)
		}
	}

	result.FinalDepth = depth
	result.Unclosed = pending
	result.Blocks = s.blockResults(lines)
	result.ScannedAt = s.now()

	s.logger.Debug("scan complete",
		"path", path,
		"finalDepth", depth,
		"status", result.Status().String(),
		"unclosed", len(result.Unclosed),
		"orphans", len(result.Orphans),
	)

	return result, nil
}

// validate checks the range and blocks before any line is read.
func (s *Scanner) validate() error {
	if s.start < 0 || s.end < 0 || (s.start > 0 && s.end > 0 && s.start > s.end) {
		return fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, s.start, s.end)
	}
	for _, b := range s.blocks {
		if b.Name == "" || b.Start < 1 || b.End < b.Start {
			return fmt.Errorf("%w: %q (%d-%d)", ErrInvalidBlock, b.Name, b.Start, b.End)
		}
	}
	return nil
}

// bounds resolves the configured range against the number of lines.
// The returned end is clamped so that start-1..end indexes lines safely.
func (s *Scanner) bounds(total int) (int, int) {
	start := s.start
	if start == 0 {
		start = 1
	}
	end := s.end
	if end == 0 || end > total {
		end = total
	}
	if start > end+1 {
		start = end + 1
	}
	return start, end
}

// blockResults computes the local balance of every block over the whole file.
func (s *Scanner) blockResults(lines []string) []model.BlockResult {
	if len(s.blocks) == 0 {
		return nil
	}

	results := make([]model.BlockResult, 0, len(s.blocks))
	for _, b := range s.blocks {
		br := model.BlockResult{Block: b}
		last := b.End
		if last > len(lines) {
			last = len(lines)
		}
		for i := b.Start - 1; i < last; i++ {
			stripped := StripComments(lines[i])
			br.Openings += CountOpenings(stripped)
			br.Closings += CountClosings(stripped)
		}
		br.Balance = br.Openings - br.Closings
		results = append(results, br)
	}
	return results
}
