package domain

// Channel enumerates the distribution channels a batch targets.
type Channel string

const (
	ChannelInstagram   Channel = "instagram"
	ChannelFacebook    Channel = "facebook"
	ChannelTikTok      Channel = "tiktok"
	ChannelYouTube     Channel = "youtube"
	ChannelMarketplace Channel = "marketplace"
)

// FormatSpec holds the concrete generation parameters resolved from a
// channel/format pair.
type FormatSpec struct {
	Name        string
	Width       int
	Height      int
	DurationSec int
	MaxTokens   int
}

// AspectRatio renders the spec as a "W:H" ratio string for providers that
// take ratios instead of pixel grids.
func (f FormatSpec) AspectRatio() string {
	switch {
	case f.Width == f.Height:
		return "1:1"
	case f.Width > f.Height:
		return "16:9"
	default:
		return "9:16"
	}
}

// GenerationConfig is the per-batch configuration supplied by the operator.
type GenerationConfig struct {
	Channel     Channel
	ContentType ContentType
	Format      string
	Instruction string
	Locale      string
	RequestID   string
}

// GenerationRequest is the immutable per-item request handed to a provider
// adapter. Built once by the dispatcher, never mutated after submission.
type GenerationRequest struct {
	ItemID            string
	ItemName          string
	ItemDescription   string
	Channel           Channel
	ContentType       ContentType
	Format            FormatSpec
	Instruction       string
	ReferenceImageURL string
	RequestID         string
}

// BatchEntry pairs one input item with its outcome. Err is non-nil only when
// the entry failed; the record is still present and marked failed.
type BatchEntry struct {
	Record AssetRecord
	Err    error
}

// BatchResult aggregates per-item outcomes in input order.
type BatchResult struct {
	Entries    []BatchEntry
	Succeeded  int
	Processing int
	Failed     int
}

// RecoveryOutcome reports whether a bulk recovery pass changed one
// outstanding provider job.
type RecoveryOutcome struct {
	JobID   string
	Status  AssetStatus
	Updated bool
}
