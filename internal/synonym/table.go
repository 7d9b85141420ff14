// Package synonym provides the fixed synonym table consulted by the semantic
// score. The table is directional: an entry for "happy" listing "glad" says
// nothing about "glad".
package synonym

import "github.com/speakeasy-practice/backend/internal/textnorm"

// Table maps a lowercase word to an ordered list of synonyms.
type Table map[string][]string

// Of returns the synonyms of word, matched case-insensitively. Unknown words
// yield nil.
func (t Table) Of(word string) []string {
	return t[textnorm.Lower(word)]
}

// Default returns the built-in table. Where the source data listed a word
// twice ("lose") the later list is kept. The map is shared; callers must not
// modify it.
func Default() Table {
	return defaultTable
}

var defaultTable = Table{
	"good":        {"great", "excellent", "fine", "nice", "wonderful"},
	"bad":         {"poor", "terrible", "awful", "horrible", "unpleasant"},
	"happy":       {"glad", "joyful", "pleased", "delighted", "content"},
	"sad":         {"unhappy", "depressed", "down", "miserable", "gloomy"},
	"big":         {"large", "huge", "enormous", "gigantic", "massive"},
	"small":       {"little", "tiny", "miniature", "petite", "compact"},
	"beautiful":   {"pretty", "lovely", "gorgeous", "attractive", "stunning"},
	"ugly":        {"unattractive", "hideous", "unsightly", "plain", "homely"},
	"smart":       {"intelligent", "clever", "bright", "brilliant", "wise"},
	"stupid":      {"dumb", "foolish", "idiotic", "silly", "dense"},
	"fast":        {"quick", "rapid", "swift", "speedy", "hasty"},
	"slow":        {"sluggish", "unhurried", "leisurely", "gradual", "tardy"},
	"hot":         {"warm", "boiling", "heated", "burning", "fiery"},
	"cold":        {"cool", "chilly", "freezing", "icy", "frosty"},
	"easy":        {"simple", "effortless", "straightforward", "uncomplicated", "painless"},
	"difficult":   {"hard", "challenging", "tough", "complicated", "complex"},
	"interesting": {"engaging", "fascinating", "intriguing", "compelling", "captivating"},
	"boring":      {"dull", "tedious", "monotonous", "uninteresting", "tiresome"},
	"important":   {"significant", "crucial", "essential", "vital", "critical"},
	"unimportant": {"insignificant", "trivial", "minor", "negligible", "inconsequential"},
	"like":        {"enjoy", "love", "adore", "appreciate", "fancy"},
	"dislike":     {"hate", "detest", "loathe", "despise", "abhor"},
	"begin":       {"start", "commence", "initiate", "launch", "embark"},
	"end":         {"finish", "conclude", "terminate", "complete", "cease"},
	"create":      {"make", "produce", "generate", "form", "construct"},
	"destroy":     {"demolish", "ruin", "wreck", "annihilate", "obliterate"},
	"increase":    {"grow", "rise", "expand", "enlarge", "escalate"},
	"decrease":    {"reduce", "shrink", "diminish", "lessen", "decline"},
	"buy":         {"purchase", "acquire", "obtain", "procure", "get"},
	"sell":        {"vend", "trade", "market", "auction", "peddle"},
	"find":        {"discover", "locate", "uncover", "detect", "spot"},
	"help":        {"assist", "aid", "support", "back", "abet"},
	"hinder":      {"impede", "obstruct", "hamper", "thwart", "block"},
	"remember":    {"recall", "recollect", "reminisce", "retain", "mind"},
	"forget":      {"overlook", "omit", "neglect", "disregard", "ignore"},
	"talk":        {"speak", "converse", "chat", "communicate", "discuss"},
	"listen":      {"hear", "heed", "attend", "note", "mind"},
	"watch":       {"observe", "view", "witness", "see", "notice"},
	"hide":        {"conceal", "cover", "mask", "cloak", "veil"},
	"laugh":       {"chuckle", "giggle", "snicker", "cackle", "guffaw"},
	"cry":         {"weep", "sob", "wail", "whimper", "bawl"},
	"walk":        {"stroll", "stride", "saunter", "amble", "trudge"},
	"run":         {"sprint", "dash", "race", "jog", "bolt"},
	"eat":         {"consume", "devour", "ingest", "dine", "feast"},
	"drink":       {"sip", "gulp", "swallow", "imbibe", "quaff"},
	"sleep":       {"slumber", "doze", "nap", "rest", "snooze"},
	"wake":        {"awaken", "rouse", "stir", "arise", "get up"},
	"live":        {"exist", "survive", "subsist", "reside", "dwell"},
	"die":         {"perish", "expire", "decease", "pass away", "succumb"},
	"work":        {"labor", "toil", "exert", "function", "operate"},
	"play":        {"frolic", "sport", "game", "recreate", "romp"},
	"learn":       {"study", "discover", "grasp", "comprehend", "master"},
	"teach":       {"instruct", "educate", "train", "tutor", "coach"},
	"think":       {"ponder", "contemplate", "reflect", "meditate", "muse"},
	"feel":        {"sense", "perceive", "experience", "undergo", "endure"},
	"see":         {"view", "observe", "notice", "spot", "perceive"},
	"hear":        {"listen", "detect", "catch", "overhear", "eavesdrop"},
	"touch":       {"feel", "handle", "stroke", "pat", "caress"},
	"smell":       {"sniff", "scent", "whiff", "inhale", "detect"},
	"taste":       {"sample", "savor", "flavor", "relish", "experience"},
	"give":        {"donate", "present", "offer", "provide", "supply"},
	"take":        {"grab", "seize", "grasp", "clutch", "snatch"},
	"come":        {"arrive", "approach", "near", "reach", "appear"},
	"go":          {"leave", "depart", "exit", "withdraw", "retire"},
	"stay":        {"remain", "linger", "abide", "continue", "persist"},
	"leave":       {"depart", "exit", "withdraw", "retire", "abandon"},
	"open":        {"unlock", "unfasten", "release", "free", "loosen"},
	"close":       {"shut", "seal", "fasten", "secure", "lock"},
	"start":       {"begin", "commence", "initiate", "launch", "embark"},
	"stop":        {"cease", "halt", "pause", "discontinue", "terminate"},
	"move":        {"shift", "transfer", "relocate", "displace", "reposition"},
	"rest":        {"relax", "repose", "recline", "ease", "unwind"},
	"change":      {"alter", "modify", "adjust", "vary", "transform"},
	"remain":      {"stay", "continue", "persist", "endure", "abide"},
	"grow":        {"develop", "increase", "expand", "enlarge", "mature"},
	"shrink":      {"contract", "reduce", "decrease", "diminish", "lessen"},
	"rise":        {"ascend", "climb", "mount", "scale", "soar"},
	"fall":        {"drop", "plunge", "plummet", "descend", "tumble"},
	"win":         {"triumph", "succeed", "prevail", "conquer", "overcome"},
	"lose":        {"fail", "forfeit", "surrender", "yield", "succumb"},
	"love":        {"adore", "cherish", "treasure", "worship", "idolize"},
	"hate":        {"detest", "loathe", "abhor", "despise", "execrate"},
	"fine":        {"good", "well", "ok", "okay", "alright"},
	"thank":       {"appreciate", "grateful", "thankful"},
	"how":         {"what way", "in what manner", "by what means"},
	"about":       {"regarding", "concerning", "on", "of"},
	"you":         {"yourself", "yourselves"},
}
