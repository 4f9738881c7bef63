package model

// QuizQuestion is the fixed structured-output shape requested from the
// generation model: a question, four options, the correct index and a short
// explanation.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}
