package publish

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"edustream/internal/content"
)

const captionLimit = 280

var baseHashtags = []string{"#Engineering", "#Mechanics", "#STEM"}

var titleCaser = cases.Title(language.English)

// stripAccents folds accented letters to ASCII so hashtags stay
// clickable on every platform.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Hashtag turns free text into a single CamelCase hashtag, or ""
// when nothing usable remains.
func Hashtag(text string) string {
	folded, _, err := transform.String(stripAccents, text)
	if err == nil {
		text = folded
	}
	var b strings.Builder
	for _, word := range strings.Fields(titleCaser.String(text)) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// CaptionOverrides carries operator-supplied caption text and hashtags
// for a manual publish. Empty fields fall back to the generated values.
type CaptionOverrides struct {
	Caption  string
	Hashtags []string
}

// BuildCaption assembles the platform caption for an item: the
// script's tweet text (falling back to hook plus call to action), then
// the hashtag block, trimmed to the platform limit on a whole-word
// boundary.
func BuildCaption(topic string, scriptJSON string) string {
	return BuildCaptionWith(topic, scriptJSON, CaptionOverrides{})
}

// BuildCaptionWith is BuildCaption with operator overrides applied: a
// supplied caption replaces the script body, and supplied hashtags
// replace the default block.
func BuildCaptionWith(topic string, scriptJSON string, overrides CaptionOverrides) string {
	body := strings.TrimSpace(overrides.Caption)
	cta := ""
	if body == "" && scriptJSON != "" {
		if script, err := content.DecodeScript(scriptJSON); err == nil {
			body = strings.TrimSpace(script.TweetText)
			if body == "" {
				body = strings.TrimSpace(script.HookText)
				cta = strings.TrimSpace(script.CTAText)
			}
		}
	}
	if body == "" {
		body = strings.TrimSpace(topic)
	}

	parts := []string{body}
	if cta != "" {
		parts = append(parts, cta)
	}

	var tags []string
	if len(overrides.Hashtags) > 0 {
		tags = normalizeHashtags(overrides.Hashtags)
	} else {
		tags = make([]string, 0, len(baseHashtags)+1)
		if topicTag := Hashtag(topic); topicTag != "" {
			tags = append(tags, topicTag)
		}
		for _, tag := range baseHashtags {
			if len(tags) >= 4 {
				break
			}
			if !containsFold(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	if len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " "))
	}

	caption := strings.Join(parts, "\n\n")
	return truncateCaption(caption, captionLimit)
}

// normalizeHashtags cleans operator-supplied tags: bare words run
// through Hashtag, already-tagged entries are kept, duplicates and
// empties dropped.
func normalizeHashtags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		tag := ""
		if strings.HasPrefix(entry, "#") && !strings.ContainsAny(entry, " \t") {
			tag = entry
		} else {
			tag = Hashtag(entry)
		}
		if tag == "" || tag == "#" || containsFold(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func containsFold(tags []string, tag string) bool {
	for _, existing := range tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// truncateCaption trims to the rune limit without splitting a word.
func truncateCaption(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	r = r[:limit-1]
	cut := string(r)
	if idx := strings.LastIndexAny(cut, " \n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
