package domain

// VocabOption is one entry of a controlled vocabulary, with the display text
// shown to contributors alongside the canonical value.
type VocabOption struct {
	Value       string `json:"value"`
	Description string `json:"description"`
	Emoji       string `json:"emoji,omitempty"`
}

// CulturalReachNiche is the reach tier that requires a niche community name.
const CulturalReachNiche = "Niche Community"

// HumorTypes is the controlled vocabulary of humor classifications.
var HumorTypes = []VocabOption{
	{Value: "Irony/Sarcasm", Description: "The meme uses irony or sarcasm to convey humor, saying one thing but meaning another or using mocking tone", Emoji: "😏"},
	{Value: "Relatability", Description: "The meme reflects relatable everyday experiences, situations, or feelings that resonate with common human experiences", Emoji: "🤝"},
	{Value: "Absurd/Random", Description: "The meme is humorous due to its absurdity, randomness, or surreal illogical elements that defy expectations", Emoji: "🤪"},
	{Value: "Wordplay/Visual", Description: "The humor comes from clever wordplay, puns, visual elements, image composition, or creative juxtaposition", Emoji: "😜🖼️"},
	{Value: "Dark/Edgy", Description: "The meme uses dark, edgy, or provocative humor that touches on taboo, controversial, or sensitive topics", Emoji: "😈"},
	{Value: "Social Commentary", Description: "The meme comments on societal issues, cultural norms, politics, or social behaviors with critical or observational humor", Emoji: "📣"},
	{Value: "Wholesome", Description: "The meme conveys positive, heartwarming, uplifting feelings that inspire joy, kindness, or emotional warmth", Emoji: "🥰"},
	{Value: "Self-Deprecating", Description: "The meme makes fun of oneself, highlighting personal flaws, failures, or embarrassing situations in a humorous way", Emoji: "😅"},
	{Value: "Not Humorous", Description: "The meme is not intended to be funny; it is informational, serious, or earnest", Emoji: "😐"},
}

// Emotions is the controlled vocabulary of emotion tags (Plutchik's eight
// primary emotions).
var Emotions = []VocabOption{
	{Value: "Joy", Description: "The meme makes me feel happy, joyful, amused, or cheerful", Emoji: "😊"},
	{Value: "Trust", Description: "The meme evokes feelings of acceptance, reassurance, or connection with others", Emoji: "🤗"},
	{Value: "Fear", Description: "The meme causes feelings of worry, anxiety, unease, or apprehension", Emoji: "😰"},
	{Value: "Surprise", Description: "The meme is shocking, unexpected, or catches me off guard", Emoji: "😲"},
	{Value: "Sadness", Description: "The meme evokes feelings of melancholy, disappointment, or emotional heaviness", Emoji: "😢"},
	{Value: "Disgust", Description: "The meme triggers feelings of revulsion, distaste, or strong disapproval", Emoji: "🤢"},
	{Value: "Anger", Description: "The meme evokes feelings of frustration, annoyance, irritation, or outrage", Emoji: "😤"},
	{Value: "Anticipation", Description: "The meme creates feelings of expectation, interest, or excitement about what comes next", Emoji: "🤔"},
}

// ContextLevels is the controlled vocabulary of required-context tiers.
var ContextLevels = []VocabOption{
	{Value: "None", Description: "None (self-explanatory)"},
	{Value: "Basic", Description: "Basic Internet Knowledge"},
	{Value: "Pop Culture", Description: "Pop Culture Awareness"},
	{Value: "Current/Past Events", Description: "Current/Past Events Knowledge"},
	{Value: "Specialized Knowledge", Description: "Specialized Knowledge"},
	{Value: "Deep Context", Description: "Deep Context (very obscure references)"},
}

// CulturalReachOptions is the controlled vocabulary of cultural-reach tiers.
var CulturalReachOptions = []VocabOption{
	{Value: "Global", Description: "Global (understood worldwide)"},
	{Value: "Western", Description: "Western Culture"},
	{Value: "Regional", Description: "Regional (specific continent/region)"},
	{Value: "National", Description: "National (country-specific)"},
	{Value: "Local", Description: "Local (city/community specific)"},
	{Value: CulturalReachNiche, Description: "Niche Community"},
}

// TimeRangeOptions lists the accepted meme-era estimates.
var TimeRangeOptions = []string{
	"2021-2025", "2016-2020", "2010-2015", "Pre-2010", "Unknown",
}

// PlatformOptions lists the platforms a meme may have been found on.
var PlatformOptions = []string{
	"Reddit", "Instagram", "Twitter/X", "TikTok", "Discord", "9GAG", "Imgur",
	"WhatsApp", "Telegram", "Facebook", "Tumblr", "4chan",
	"Original Creation", "Other", "Unknown",
}

// MemeCountries lists the accepted origin countries for memes.
var MemeCountries = []string{
	"Unknown", "United States", "Germany", "United Kingdom", "France", "Spain",
	"Italy", "Canada", "Australia", "Japan", "South Korea", "China", "India",
	"Brazil", "Mexico", "Russia", "Global/International", "Other",
}

// ValidHumorType reports whether v is a recognized humor type.
func ValidHumorType(v string) bool {
	return inOptions(HumorTypes, v)
}

// ValidEmotion reports whether v is a recognized emotion tag.
func ValidEmotion(v string) bool {
	return inOptions(Emotions, v)
}

// ValidEmotions reports whether every entry of vs is a recognized emotion tag.
func ValidEmotions(vs []string) bool {
	for _, v := range vs {
		if !ValidEmotion(v) {
			return false
		}
	}
	return true
}

// ValidContextLevel reports whether v is a recognized context level.
func ValidContextLevel(v string) bool {
	return inOptions(ContextLevels, v)
}

// ValidCulturalReach reports whether v is a recognized cultural-reach tier.
func ValidCulturalReach(v string) bool {
	return inOptions(CulturalReachOptions, v)
}

// ValidTimeRange reports whether v is a recognized time range.
func ValidTimeRange(v string) bool {
	return inList(TimeRangeOptions, v)
}

// ValidPlatform reports whether v is a recognized platform.
func ValidPlatform(v string) bool {
	return inList(PlatformOptions, v)
}

// ValidMemeCountry reports whether v is a recognized origin country.
func ValidMemeCountry(v string) bool {
	return inList(MemeCountries, v)
}

func inOptions(opts []VocabOption, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func inList(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
