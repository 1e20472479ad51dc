package runtime

import (
	"bytes"
	"strings"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultLicenseMarker appears in the tool's first line when it has no valid license.
const DefaultLicenseMarker = "License Error"

// DefaultToolNames are the banner literals of supported tool generations.
var DefaultToolNames = []string{"PC-lint for C/C++", "PC-lint Plus"}

// BannerConfig holds the literals used to classify the tool's first line.
type BannerConfig struct {
	LicenseMarker string   `yaml:"license_marker"`
	ToolNames     []string `yaml:"tool_names"`
}

func (c BannerConfig) withDefaults() BannerConfig {
	if c.LicenseMarker == "" {
		c.LicenseMarker = DefaultLicenseMarker
	}
	if len(c.ToolNames) == 0 {
		c.ToolNames = DefaultToolNames
	}
	return c
}

// BannerVerdict is the classification of the progress channel's leading line.
type BannerVerdict int

const (
	// BannerPending means no complete leading line has been read yet.
	BannerPending BannerVerdict = iota
	// BannerAccepted means the line names a supported tool.
	BannerAccepted
	// BannerLicenseError means the line carries the license marker.
	BannerLicenseError
	// BannerUnsupported means the line names no supported tool.
	BannerUnsupported
)

// String returns the verdict name.
func (v BannerVerdict) String() string {
	switch v {
	case BannerPending:
		return "pending"
	case BannerAccepted:
		return "accepted"
	case BannerLicenseError:
		return "license_error"
	case BannerUnsupported:
		return "unsupported_version"
	default:
		return "unknown"
	}
}

// Status maps a rejecting verdict to its run status.
// Accepted and pending verdicts map to RunStatusUnknown.
func (v BannerVerdict) Status() types.RunStatus {
	switch v {
	case BannerLicenseError:
		return types.RunStatusLicenseError
	case BannerUnsupported:
		return types.RunStatusUnsupportedVersion
	default:
		return types.RunStatusUnknown
	}
}

// ClassifyBanner classifies one leading line. The license marker is
// checked first; a licensed banner still names the tool.
func ClassifyBanner(line string, cfg BannerConfig) BannerVerdict {
	cfg = cfg.withDefaults()
	if strings.Contains(line, cfg.LicenseMarker) {
		return BannerLicenseError
	}
	for _, name := range cfg.ToolNames {
		if strings.Contains(line, name) {
			return BannerAccepted
		}
	}
	return BannerUnsupported
}

// BannerClassifier accumulates the progress channel until its first
// non-blank line is complete, then classifies it once.
type BannerClassifier struct {
	cfg     BannerConfig
	buf     []byte
	line    string
	verdict BannerVerdict
}

// NewBannerClassifier creates a classifier using cfg's literals.
func NewBannerClassifier(cfg BannerConfig) *BannerClassifier {
	return &BannerClassifier{cfg: cfg.withDefaults()}
}

// Feed consumes one read. Once the verdict is known, rest holds the bytes
// that followed the leading line; they are ordinary progress data.
// Feed after a verdict returns the verdict and the whole chunk.
func (b *BannerClassifier) Feed(chunk []byte) (verdict BannerVerdict, rest []byte) {
	if b.verdict != BannerPending {
		return b.verdict, chunk
	}

	b.buf = append(b.buf, chunk...)
	for {
		i := bytes.IndexByte(b.buf, '\n')
		if i < 0 {
			return BannerPending, nil
		}
		line := strings.TrimRight(string(b.buf[:i]), "\r")
		b.buf = b.buf[i+1:]
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.decide(line)
		rest, b.buf = b.buf, nil
		return b.verdict, rest
	}
}

// Close classifies whatever was buffered when the channel ended.
// A channel that closed without printing anything is unsupported.
func (b *BannerClassifier) Close() BannerVerdict {
	if b.verdict != BannerPending {
		return b.verdict
	}
	line := strings.TrimSpace(string(b.buf))
	b.buf = nil
	if line == "" {
		b.verdict = BannerUnsupported
		return b.verdict
	}
	b.decide(line)
	return b.verdict
}

func (b *BannerClassifier) decide(line string) {
	b.line = line
	b.verdict = ClassifyBanner(line, b.cfg)
}

// Verdict returns the current verdict.
func (b *BannerClassifier) Verdict() BannerVerdict {
	return b.verdict
}

// Line returns the raw leading line once classified.
func (b *BannerClassifier) Line() string {
	return b.line
}
