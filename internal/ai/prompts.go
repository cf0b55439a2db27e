package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt builders for the content features. Each prompt asks for bare JSON
// and callers run the response through StripCodeFence before decoding.

const jsonSectionShape = `[{"title": "string", "instructions": "string", "questions": [{"text": "string", "type": "OBJ|FILL|THEORY", "options": ["string"], "correct_answer": "string", "marks": 1}]}]`

const jsonQuestionShape = `{"text": "string", "type": "OBJ|FILL|THEORY", "options": ["string"], "correct_answer": "string", "marks": 1}`

func GenerateQuestionsPrompt(subject, topic, difficulty, questionType string, count int, lessonPlan string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Act as a professional teacher in a Nigerian school. Create an exam section for Subject: %s, Topic: %s, Difficulty: %s.

Context:
- The questions must strictly follow the Nigerian School Curriculum (UBE/WAEC/NECO standards).
- Ensure cultural relevance to Nigeria where applicable (e.g., use Nigerian names like Emeka, Musa, Tolu, or local cities/context).
- Language should be formal British English as used in Nigerian education.

Generate %d questions of type %s.
If type is OBJ (Objective), provide 4 options (A-D) and the correct answer.`, subject, topic, difficulty, count, questionType)

	if lessonPlan != "" {
		fmt.Fprintf(&b, "\n\nUse the following Teacher's Lesson Plan / Notes to tailor the questions specifically to what was taught:\n%q\n", lessonPlan)
	}

	fmt.Fprintf(&b, "\nReturn ONLY a JSON array of sections (usually just one), no markdown, with this shape:\n%s", jsonSectionShape)
	return b.String()
}

func OCRPrompt() string {
	return fmt.Sprintf(`Analyze this image of a handwritten exam.
1. Extract all questions.
2. Correct any spelling or grammar errors (Standard British English).
3. Categorize them into sections if apparent, otherwise create a "General" section.
4. Determine the question type (OBJ, FILL, THEORY) automatically.
5. Output ONLY JSON, no markdown, with this shape:
%s`, jsonSectionShape)
}

func RefinePrompt(text, mode string) string {
	switch mode {
	case "FIX":
		return fmt.Sprintf("Fix formatting and spelling (British English/Nigerian Context): %s", text)
	case "REWRITE":
		return fmt.Sprintf("Rewrite this question to be more clear, professional, and standard for Nigerian schools: %s", text)
	default: // MARKING
		return fmt.Sprintf("Generate a brief marking scheme answer for: %s", text)
	}
}

func RewriteQuestionPrompt(questionJSON, mode, questionType string) string {
	var instruction string
	switch mode {
	case "HARDER":
		instruction = "Rewrite this question to require higher-order thinking (Analyze/Evaluate)."
	case "CONTEXT":
		instruction = "Rewrite this question using Nigerian cultural context (names, places, food, scenarios)."
	default: // TYPE_SWAP
		if questionType == "OBJ" {
			instruction = "Convert this to a Fill-in-the-blank question."
		} else {
			instruction = "Convert this to a Multiple Choice question with 4 options."
		}
	}

	return fmt.Sprintf(`Original Question: %s.
Instruction: %s
Return ONLY JSON, no markdown, in the exact same structure as the original question:
%s`, questionJSON, instruction, jsonQuestionShape)
}

func CompliancePrompt(sectionsJSON string) string {
	return fmt.Sprintf(`Act as an Exam Officer. Audit this exam paper JSON against these rules:
1. Must have clear instructions.
2. Must be balanced in difficulty.
3. Maximum 50 OBJ questions.
4. Theory section must have at least 2 questions.

Paper Data: %s

Return ONLY JSON, no markdown: {"score": number (0-100), "issues": ["string"], "suggestions": ["string"]}`, sectionsJSON)
}

func AnalyzeMetadataPrompt(text string) string {
	return fmt.Sprintf(`Analyze this exam question: %q.
Determine the Difficulty Level (Easy, Medium, Hard) and Bloom's Taxonomy Level (Remember, Understand, Apply, Analyze, Evaluate, Create).
Return ONLY JSON, no markdown: {"difficulty": "Medium", "blooms": "Apply"}`, text)
}

func ImproveDistractorsPrompt(text, correctAnswer string, options []string) string {
	optionsJSON, _ := json.Marshal(options)
	if correctAnswer == "" {
		correctAnswer = "Unknown"
	}
	return fmt.Sprintf(`Analyze this multiple choice question: %q.
Correct Answer: %q.
Current Options: %s.

Task: Generate 3 plausible but incorrect distractors based on common student misconceptions.
Return ONLY a JSON array of 4 strings (1 correct answer + 3 improved distractors), no markdown. Ensure the correct answer is included.`, text, correctAnswer, optionsJSON)
}

func RubricPrompt(subject, text string, marks int) string {
	if subject == "" {
		subject = "General"
	}
	return fmt.Sprintf(`Generate a detailed marking rubric for this %s theory question: %q.
Marks: %d.
Structure it with criteria and score bands. Return plain text only.`, subject, text, marks)
}
