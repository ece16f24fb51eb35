package importer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mauv0809/ranking-tribble/internal/club"
)

// normalizeName lowercases, drops everything but letters and spaces and
// collapses whitespace.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// answersTo reports whether the player's name or any alternate name
// normalises to name.
func answersTo(p club.Player, name string) bool {
	if name == "" {
		return false
	}
	if normalizeName(p.Name) == name {
		return true
	}
	for _, alt := range p.AlternateNames {
		if normalizeName(alt) == name {
			return true
		}
	}
	return false
}

// findCandidates walks the match levels in confidence order and returns the
// first level that produced any candidate. A row carrying a player code is
// never matched by name: an unknown code names a new player.
func findCandidates(row Row, players []club.Player) (MatchLevel, []club.Player) {
	levels := []struct {
		level MatchLevel
		value string
		match func(p club.Player, v string) bool
	}{
		{LevelCode, row.PlayerCode, func(p club.Player, v string) bool { return p.Code == v }},
		{LevelRatingID, row.ExternalRatingID, func(p club.Player, v string) bool { return p.ExternalRatingID != "" && p.ExternalRatingID == v }},
		{LevelEmail, strings.ToLower(row.Email), func(p club.Player, v string) bool { return p.Email != "" && strings.ToLower(p.Email) == v }},
		{LevelName, normalizeName(row.PlayerName), answersTo},
	}
	for _, l := range levels {
		if l.level == LevelName && row.PlayerCode != "" {
			break
		}
		if l.value == "" {
			continue
		}
		var found []club.Player
		for _, p := range players {
			if l.match(p, l.value) {
				found = append(found, p)
			}
		}
		if len(found) > 0 {
			return l.level, found
		}
	}
	return LevelNone, nil
}

// toCandidates scores players against the row name, best first.
func toCandidates(row Row, players []club.Player) []Candidate {
	candidates := make([]Candidate, 0, len(players))
	for _, p := range players {
		confidence := nameSimilarity(row.PlayerName, p.Name)
		for _, alt := range p.AlternateNames {
			if s := nameSimilarity(row.PlayerName, alt); s > confidence {
				confidence = s
			}
		}
		candidates = append(candidates, Candidate{
			PlayerID:         p.ID,
			Code:             p.Code,
			Name:             p.Name,
			Country:          p.Country,
			Gender:           string(p.Gender),
			Email:            p.Email,
			ExternalRatingID: p.ExternalRatingID,
			Confidence:       confidence,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates
}

// identical reports whether every player field the row carries equals the
// candidate's value.
func identical(row Row, p club.Player) bool {
	if normalizeName(row.PlayerName) != normalizeName(p.Name) {
		return false
	}
	if !strings.EqualFold(row.Country, p.Country) {
		return false
	}
	if g := normalizeGender(row.Gender); g == "" || g != string(p.Gender) {
		return false
	}
	if row.PlayerCode != "" && row.PlayerCode != p.Code {
		return false
	}
	if row.Email != "" && !strings.EqualFold(row.Email, p.Email) {
		return false
	}
	if row.ExternalRatingID != "" && row.ExternalRatingID != p.ExternalRatingID {
		return false
	}
	return true
}

// nameSimilarity averages edit-distance and token similarity of two names,
// in [0, 1].
func nameSimilarity(a, b string) float64 {
	a, b = normalizeName(a), normalizeName(b)
	if a == "" || b == "" {
		return 0
	}
	return (stringSimilarity(a, b) + tokenSimilarity(a, b)) / 2
}

func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	r1, r2 := []rune(s1), []rune(s2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

// tokenSimilarity is the share of name components with a close counterpart.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1, tokens2 := strings.Fields(s1), strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	var matchCount int
	for _, t1 := range tokens1 {
		for _, t2 := range tokens2 {
			if stringSimilarity(t1, t2) > 0.8 {
				matchCount++
				break
			}
		}
	}

	maxTokens := len(tokens1)
	if len(tokens2) > maxTokens {
		maxTokens = len(tokens2)
	}
	return float64(matchCount) / float64(maxTokens)
}

func levenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
