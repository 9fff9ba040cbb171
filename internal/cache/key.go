package cache

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/phrazzld/career-coach/internal/domain"
)

// ProfileKey derives a stable key for an artifact kind and a profile.
// Case, surrounding whitespace and skill order do not change the key.
func ProfileKey(kind string, profile domain.CareerProfile) string {
	p := profile.Normalized()
	skills := make([]string, len(p.TechSkills))
	for i, s := range p.TechSkills {
		skills[i] = strings.ToLower(s)
	}
	slices.Sort(skills)

	d := xxhash.New()
	for _, part := range []string{
		strings.ToLower(p.CareerSummary),
		strings.ToLower(p.JobRole),
		strings.Join(skills, "\x1f"),
	} {
		_, _ = d.WriteString(part)
		_, _ = d.WriteString("\x1e")
	}
	return kind + ":" + strconv.FormatUint(d.Sum64(), 16)
}
