// Package format derives concrete generation parameters and default
// instructions from a channel, content type, and platform format. Resolution
// is a pure lookup with content-type fallbacks; it never fails.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"adforge/internal/domain"
)

type formatKey struct {
	channel domain.Channel
	format  string
}

var formatTable = map[formatKey]domain.FormatSpec{
	{domain.ChannelInstagram, "square"}:    {Name: "square", Width: 1080, Height: 1080},
	{domain.ChannelInstagram, "portrait"}:  {Name: "portrait", Width: 1080, Height: 1350},
	{domain.ChannelInstagram, "story"}:     {Name: "story", Width: 1080, Height: 1920, DurationSec: 15},
	{domain.ChannelInstagram, "reel"}:      {Name: "reel", Width: 1080, Height: 1920, DurationSec: 30},
	{domain.ChannelFacebook, "square"}:     {Name: "square", Width: 1080, Height: 1080},
	{domain.ChannelFacebook, "landscape"}:  {Name: "landscape", Width: 1200, Height: 628},
	{domain.ChannelTikTok, "video"}:        {Name: "video", Width: 1080, Height: 1920, DurationSec: 15},
	{domain.ChannelYouTube, "video"}:       {Name: "video", Width: 1920, Height: 1080, DurationSec: 60},
	{domain.ChannelYouTube, "short"}:       {Name: "short", Width: 1080, Height: 1920, DurationSec: 30},
	{domain.ChannelYouTube, "thumbnail"}:   {Name: "thumbnail", Width: 1280, Height: 720},
	{domain.ChannelMarketplace, "listing"}: {Name: "listing", Width: 2000, Height: 2000},
	{domain.ChannelMarketplace, "gallery"}: {Name: "gallery", Width: 1600, Height: 1600},
}

// Content-type defaults used when the channel/format pair is unknown.
var contentTypeDefaults = map[domain.ContentType]domain.FormatSpec{
	domain.ContentTypeImage: {Name: "square", Width: 1080, Height: 1080},
	domain.ContentTypeVideo: {Name: "video", Width: 1080, Height: 1920, DurationSec: 30},
	domain.ContentTypeText:  {Name: "copy", MaxTokens: 2048},
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// Resolve returns the concrete format spec for a channel/format pair and a
// default instruction for the item. Unknown pairs fall back to the
// content-type default; Resolve never errors.
func Resolve(channel domain.Channel, contentType domain.ContentType, formatName, itemName, locale string) (domain.FormatSpec, string) {
	spec, ok := formatTable[formatKey{channel, strings.ToLower(strings.TrimSpace(formatName))}]
	if !ok {
		spec = contentTypeDefaults[contentType]
		if spec.Name == "" {
			spec = contentTypeDefaults[domain.ContentTypeImage]
		}
	}
	if contentType == domain.ContentTypeText && spec.MaxTokens == 0 {
		spec.MaxTokens = contentTypeDefaults[domain.ContentTypeText].MaxTokens
	}
	if contentType == domain.ContentTypeVideo && spec.DurationSec == 0 {
		spec.DurationSec = contentTypeDefaults[domain.ContentTypeVideo].DurationSec
	}
	return spec, DefaultInstruction(channel, contentType, itemName, locale)
}

// DefaultInstruction builds the instruction used when the operator supplies
// none. Indonesian copy mirrors the original campaign tooling; everything
// else gets English.
func DefaultInstruction(channel domain.Channel, contentType domain.ContentType, itemName, locale string) string {
	name := titleCaser.String(strings.TrimSpace(itemName))
	if name == "" {
		name = "the product"
	}
	if normalizeLocale(locale) == "id" {
		return indonesianInstruction(channel, contentType, name)
	}

	audience := channelAudience(channel)
	switch contentType {
	case domain.ContentTypeVideo:
		return fmt.Sprintf("Create a short promotional video featuring %s for %s. Energetic pacing, product in focus, no on-screen text.", name, audience)
	case domain.ContentTypeText:
		return fmt.Sprintf("Write persuasive marketing copy for %s aimed at %s. Friendly tone, concrete benefits, end with a call to action.", name, audience)
	default:
		return fmt.Sprintf("Create a clean product marketing photo of %s for %s. Natural proportions, sharp focus, uncluttered background.", name, audience)
	}
}

func indonesianInstruction(channel domain.Channel, contentType domain.ContentType, name string) string {
	audience := channelAudience(channel)
	switch contentType {
	case domain.ContentTypeVideo:
		return fmt.Sprintf("Buat video promosi singkat untuk %s di %s. Tempo energik, produk jadi fokus utama.", name, audience)
	case domain.ContentTypeText:
		return fmt.Sprintf("Tulis teks pemasaran persuasif untuk %s di %s. Nada ramah, akhiri dengan ajakan bertindak.", name, audience)
	default:
		return fmt.Sprintf("Buat foto pemasaran produk %s untuk %s. Pertahankan bentuk produk asli, proporsi natural, tidak blur.", name, audience)
	}
}

func channelAudience(channel domain.Channel) string {
	switch channel {
	case domain.ChannelInstagram:
		return "Instagram"
	case domain.ChannelFacebook:
		return "Facebook"
	case domain.ChannelTikTok:
		return "TikTok"
	case domain.ChannelYouTube:
		return "YouTube"
	case domain.ChannelMarketplace:
		return "an online marketplace listing"
	default:
		return "social media"
	}
}

func normalizeLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}
