// Package domain holds the career profile, stored resumes, the generated
// coaching artifacts and the heuristics used to describe a profile in prompts.
package domain
