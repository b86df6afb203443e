package model

// Question is immutable reference data: a prompt with exactly four options
// and the index (0-3) of the correct one.
type Question struct {
	ID           int       `json:"id"`
	Text         string    `json:"text"`
	Options      [4]string `json:"options"`
	CorrectIndex int       `json:"-"`
}

// PublicQuestion is a question as presented to a candidate, without the
// correct index.
type PublicQuestion struct {
	ID      int       `json:"id"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
}

// Public strips the answer key from a question.
func (q *Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
}

// AddQuestionRequest is the payload for curating a new question.
type AddQuestionRequest struct {
	Text         string    `json:"text" binding:"required,min=1,max=2000"`
	Options      [4]string `json:"options" binding:"required"`
	CorrectIndex int       `json:"correct_index" binding:"min=0,max=3"`
}
