package keywords

// builtinStopwords suppresses filler words that repeat constantly in narration
// but never make a useful image query.
var builtinStopwords = []string{
	"a", "about", "after", "again", "all", "also", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "but", "by", "can",
	"could", "did", "do", "does", "doing", "down", "during", "each", "few",
	"for", "from", "further", "get", "going", "got", "had", "has", "have",
	"having", "he", "her", "here", "hers", "him", "his", "how", "i", "if",
	"in", "into", "is", "it", "its", "just", "like", "me", "more", "most",
	"my", "no", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "out", "over", "own", "re", "really", "said", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their",
	"them", "then", "there", "these", "they", "this", "those", "through",
	"to", "too", "under", "until", "up", "very", "was", "we", "were", "what",
	"when", "where", "which", "while", "who", "why", "will", "with", "would",
	"you", "your",
}
