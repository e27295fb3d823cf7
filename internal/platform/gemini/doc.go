// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It turns a subtopic into study content: an article,
// a flashcard deck and a quiz, requested as structured JSON output.
package gemini
