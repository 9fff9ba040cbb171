// Package gemini implements generation.TextGenerator on Google's Gemini API.
package gemini
