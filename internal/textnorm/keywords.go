package textnorm

// stopwords are filler words never counted as keywords. Contractions appear
// without apostrophes because normalized text may still carry them either way.
var stopwords = newWordSet(
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"to", "of", "and", "or", "but", "in", "on", "at", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "from", "up", "down", "by", "as", "i",
	"my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself",
	"she", "her", "hers", "herself", "it", "its", "itself", "they",
	"them", "their", "theirs", "themselves", "what", "which", "who",
	"whom", "this", "that", "these", "those", "am", "have", "has", "had",
	"do", "does", "did", "will", "would", "shall", "should", "can",
	"could", "may", "might", "must", "ought", "im", "youre", "hes",
	"shes", "its", "were", "theyre", "ive", "youve", "weve", "theyve",
	"id", "youd", "hed", "shed", "wed", "theyd", "ill", "youll",
	"hell", "shell", "well", "theyll", "isnt", "arent", "wasnt",
	"werent", "hasnt", "havent", "hadnt", "doesnt", "dont", "didnt",
	"wont", "wouldnt", "shant", "shouldnt", "cant", "couldnt", "mustnt",
	"lets", "thats", "whos", "whats", "heres", "theres", "whens",
	"wheres", "whys", "hows",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// IsStopword reports whether the lowercase form of word is a filler word.
func IsStopword(word string) bool {
	_, ok := stopwords[Lower(word)]
	return ok
}

// ExtractKeywords splits text on whitespace and drops one-character tokens and
// stopwords. Order and duplicates are preserved, and tokens keep their
// original case and any punctuation still attached to them.
func ExtractKeywords(text string) []string {
	words := Split(text)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if Length(w) <= 1 || IsStopword(w) {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
